package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
)

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	List(ctx context.Context, userID *uint) ([]domain.Order, error)
}

type OrderStatusWriter interface {
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error
}

type OrderItemReader interface {
	ListByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.OrderItem, error)
}

type PaymentReader interface {
	FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint]domain.Payment, error)
}

type TokenIssuer interface {
	EnsureSnapToken(ctx context.Context, order *domain.Order) (string, error)
}

type OrderService struct {
	orders   OrderReader
	status   OrderStatusWriter
	items    OrderItemReader
	payments PaymentReader
	tokens   TokenIssuer
	logger   *zap.Logger
}

func NewOrderService(
	orders OrderReader,
	status OrderStatusWriter,
	items OrderItemReader,
	payments PaymentReader,
	tokens TokenIssuer,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		status:   status,
		items:    items,
		payments: payments,
		tokens:   tokens,
		logger:   logger,
	}
}

// List returns every order for admins and the caller's own orders
// otherwise, newest first.
func (s *OrderService) List(ctx context.Context, actor domain.User) ([]domain.Order, error) {
	var userID *uint
	if !actor.IsAdmin() {
		userID = &actor.ID
	}
	orders, err := s.orders.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Show loads one order and makes sure a gateway payment has a snap token.
// A failing gateway surfaces as a GatewayError.
func (s *OrderService) Show(ctx context.Context, actor domain.User, id uint) (*domain.Order, string, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.EnsureSnapToken(ctx, order)
	if err != nil {
		s.logger.Error("snap token request failed", zap.Uint("orderId", order.ID), zap.Error(err))
		return nil, "", err
	}
	return order, token, nil
}

func (s *OrderService) Get(ctx context.Context, actor domain.User, id uint) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	orders := []domain.Order{*order}
	if err := s.attach(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.User, id uint, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, processing, completed, cancelled, failed",
		})
	}
	if err := s.status.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	s.logger.Info("order status updated", zap.Uint("orderId", id), zap.String("status", string(status)))
	return s.Get(ctx, actor, id)
}

func (s *OrderService) attach(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.items.ListByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	payments, err := s.payments.FindByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if p, ok := payments[orders[i].ID]; ok {
			orders[i].Payment = &p
		}
	}
	return nil
}
