package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
)

type CreatePaymentRequest struct {
	OrderID       uint   `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentService struct {
	tx       Transactor
	orders   OrderRepository
	payments PaymentRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewPaymentService(tx Transactor, orders OrderRepository, payments PaymentRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:       tx,
		orders:   orders,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *PaymentService) List(ctx context.Context, actor domain.User) ([]domain.Payment, error) {
	if actor.IsAdmin() {
		return s.payments.List(ctx, nil)
	}
	return s.payments.List(ctx, &actor.ID)
}

func (s *PaymentService) Get(ctx context.Context, actor domain.User, id uint) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment with id %d not found", id))
	}
	payment.Order = order
	return payment, nil
}

func (s *PaymentService) GetByOrder(ctx context.Context, actor domain.User, orderID uint) (*domain.Payment, error) {
	order, err := s.ownedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := s.payments.FindByOrderID(ctx, nil, order.ID)
	if err != nil {
		return nil, err
	}
	payment.Order = order
	return payment, nil
}

// Create records a payment for an order that has none. The amount always
// equals the order total.
func (s *PaymentService) Create(ctx context.Context, actor domain.User, req CreatePaymentRequest) (*domain.Payment, error) {
	var details []apperrors.ValidationDetail
	if req.OrderID == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "order_id", Message: "order_id is required"})
	}
	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		details = append(details, apperrors.ValidationDetail{Field: "payment_method", Message: "payment_method is invalid"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	order, err := s.ownedOrder(ctx, actor, req.OrderID)
	if err != nil {
		return nil, err
	}

	_, err = s.payments.Insert(ctx, nil, domain.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.PaymentStatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment created", zap.Uint("orderId", order.ID), zap.String("method", req.PaymentMethod))

	payment, err := s.payments.FindByOrderID(ctx, nil, order.ID)
	if err != nil {
		return nil, err
	}
	payment.Order = order
	return payment, nil
}

// UpdateStatus is the administrative override. Paid moves the order to
// processing and failed fails it; pending leaves the order alone.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) (*domain.Payment, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, paid, failed",
		})
	}

	var payment *domain.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// lock the order before the payment, as reconciliation does
		current, err := s.payments.FindByID(ctx, nil, id)
		if err != nil {
			return err
		}
		order, err := s.orders.FindByIDForUpdate(ctx, tx, current.OrderID)
		if err != nil {
			return err
		}
		p, err := s.payments.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		p.Status = status
		var orderStatus domain.OrderStatus
		switch status {
		case domain.PaymentStatusPaid:
			if p.PaidAt == nil {
				paidAt := s.now().UTC()
				p.PaidAt = &paidAt
			}
			orderStatus = domain.OrderStatusProcessing
		case domain.PaymentStatusFailed:
			orderStatus = domain.OrderStatusFailed
		}

		if err := s.payments.Update(ctx, tx, *p); err != nil {
			return err
		}
		if orderStatus != "" && order.Status != orderStatus {
			if err := s.orders.UpdateStatus(ctx, tx, order.ID, orderStatus); err != nil {
				return err
			}
			order.Status = orderStatus
		}
		p.Order = order
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment status overridden", zap.Uint("paymentId", id), zap.String("status", string(status)))
	return payment, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, actor domain.User, orderID uint) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
	}
	return order, nil
}
