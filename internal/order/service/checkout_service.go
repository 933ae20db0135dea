package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	"cozycup/internal/dto"
	apperrors "cozycup/internal/errors"
)

type MenuItemRepository interface {
	FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error)
	UpdateStock(ctx context.Context, tx *sql.Tx, id uint, stock int) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
}

type OrderItemRepository interface {
	InsertMany(ctx context.Context, tx *sql.Tx, orderID uint, items []domain.OrderItem) error
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error)
}

type UserRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.User, error)
	ListAdmins(ctx context.Context, tx *sql.Tx) ([]domain.User, error)
}

type NotificationRepository interface {
	InsertMany(ctx context.Context, tx *sql.Tx, notifications []domain.Notification) error
}

type CheckoutService struct {
	menuItems     MenuItemRepository
	orders        OrderRepository
	orderItems    OrderItemRepository
	payments      PaymentRepository
	users         UserRepository
	notifications NotificationRepository
	strictStock   bool
	logger        *zap.Logger
	now           func() time.Time
}

func NewCheckoutService(
	menuItems MenuItemRepository,
	orders OrderRepository,
	orderItems OrderItemRepository,
	payments PaymentRepository,
	users UserRepository,
	notifications NotificationRepository,
	strictStock bool,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		menuItems:     menuItems,
		orders:        orders,
		orderItems:    orderItems,
		payments:      payments,
		users:         users,
		notifications: notifications,
		strictStock:   strictStock,
		logger:        logger,
		now:           time.Now,
	}
}

// PlaceOrder writes the order, its items, the stock decrements and a
// pending payment through tx. ids must be the distinct menu item ids of
// req in ascending order. Any error leaves the caller to roll back.
func (s *CheckoutService) PlaceOrder(
	ctx context.Context,
	tx *sql.Tx,
	customer domain.User,
	req dto.CheckoutRequest,
	ids []uint,
) (*dto.CheckoutResult, error) {
	// lock menu rows in id order
	locked, err := s.menuItems.FindByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	menu := make(map[uint]domain.MenuItem, len(locked))
	for _, m := range locked {
		menu[m.ID] = m
	}

	requested := make(map[uint]int, len(ids))
	for _, line := range req.Lines {
		requested[line.MenuItemID] += line.Quantity
	}

	stock := make(map[uint]int, len(ids))
	for _, id := range ids {
		item, ok := menu[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", id))
		}
		if !item.IsAvailable {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "menu_item_id",
				Message: fmt.Sprintf("%s is not available", item.Name),
			})
		}
		left, enough := item.StockAfter(requested[id])
		if !enough {
			if s.strictStock {
				return nil, apperrors.NewConflictError(fmt.Sprintf("insufficient stock for %s", item.Name))
			}
			s.logger.Warn("stock clamped to zero",
				zap.Uint("menuItemId", id),
				zap.Int("stock", item.Stock),
				zap.Int("requested", requested[id]),
			)
		}
		stock[id] = left
	}

	// build lines with server prices
	items := make([]domain.OrderItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		item := menu[line.MenuItemID]
		if line.Price != nil && !line.Price.Equal(item.Price) {
			s.logger.Warn("client price ignored",
				zap.Uint("menuItemId", item.ID),
				zap.String("clientPrice", line.Price.String()),
				zap.String("menuPrice", item.Price.String()),
			)
		}
		items = append(items, domain.OrderItem{
			MenuItemID:   item.ID,
			MenuItemName: item.Name,
			Quantity:     line.Quantity,
			Price:        item.Price,
			Subtotal:     domain.LineSubtotal(item.Price, line.Quantity),
			Notes:        line.Notes,
		})
	}

	now := s.now().UTC()
	order := domain.Order{
		UserID:      customer.ID,
		OrderNumber: domain.NewOrderNumber(now),
		TotalAmount: domain.OrderTotal(items),
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.ID, err = s.orders.Insert(ctx, tx, order)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = now
	}
	if err := s.orderItems.InsertMany(ctx, tx, order.ID, items); err != nil {
		return nil, err
	}
	order.Items = items

	for _, id := range ids {
		if err := s.menuItems.UpdateStock(ctx, tx, id, stock[id]); err != nil {
			return nil, err
		}
	}

	payment := domain.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	payment.ID, err = s.payments.Insert(ctx, tx, payment)
	if err != nil {
		return nil, err
	}
	order.Payment = &payment

	result := &dto.CheckoutResult{Order: &order}
	if req.NotifyAdmins {
		// token claims may omit the name
		buyer, err := s.users.FindByIDTx(ctx, tx, customer.ID)
		if err != nil {
			return nil, err
		}
		admins, err := s.users.ListAdmins(ctx, tx)
		if err != nil {
			return nil, err
		}
		notifications := make([]domain.Notification, 0, len(admins))
		for _, admin := range admins {
			notifications = append(notifications, domain.NewOrderNotification(admin.ID, order, buyer.DisplayName()))
		}
		if err := s.notifications.InsertMany(ctx, tx, notifications); err != nil {
			return nil, err
		}
		result.Customer = *buyer
		result.Admins = admins
	}

	s.logger.Info("order placed",
		zap.Uint("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("itemCount", len(items)),
	)
	return result, nil
}
