package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/payment/gateway"
)

type TokenService struct {
	payments PaymentRepository
	users    UserRepository
	gateway  Gateway
	logger   *zap.Logger
	now      func() time.Time
}

func NewTokenService(payments PaymentRepository, users UserRepository, gw Gateway, logger *zap.Logger) *TokenService {
	return &TokenService{
		payments: payments,
		users:    users,
		gateway:  gw,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureSnapToken returns the order's snap token, requesting and storing a
// new one when the payment has none yet. Cash payments never get a token.
// order.Payment is updated in place.
func (s *TokenService) EnsureSnapToken(ctx context.Context, order *domain.Order) (string, error) {
	if order.Payment == nil {
		payment, err := s.ensurePayment(ctx, order)
		if err != nil {
			return "", err
		}
		order.Payment = payment
	}

	payment := order.Payment
	if payment.HasSnapToken() {
		return *payment.SnapToken, nil
	}
	if payment.PaymentMethod == domain.PaymentMethodCash || payment.Status != domain.PaymentStatusPending {
		return "", nil
	}

	gatewayOrderID := domain.GatewayOrderID(order.OrderNumber, s.now())
	token, err := s.gateway.IssueSnapToken(ctx, gateway.SnapRequest{
		GatewayOrderID: gatewayOrderID,
		GrossAmount:    order.TotalAmount,
		Customer:       s.customer(ctx, order.UserID),
		Items:          snapItems(order.Items),
	})
	if err != nil {
		return "", err
	}

	if err := s.payments.SetSnapToken(ctx, payment.ID, token.Token, gatewayOrderID); err != nil {
		return "", err
	}
	payment.SnapToken = &token.Token
	payment.GatewayOrderID = &gatewayOrderID

	s.logger.Info("snap token stored", zap.Uint("orderId", order.ID), zap.String("gatewayOrderId", gatewayOrderID))
	return token.Token, nil
}

func (s *TokenService) ensurePayment(ctx context.Context, order *domain.Order) (*domain.Payment, error) {
	payment, err := s.payments.FindByOrderID(ctx, nil, order.ID)
	if err == nil {
		return payment, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	_, err = s.payments.Insert(ctx, nil, domain.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: domain.DefaultGatewayMethod,
		Status:        domain.PaymentStatusPending,
	})
	if err != nil {
		// created concurrently by reconciliation
		if _, ok := apperrors.IsConflictError(err); !ok {
			return nil, err
		}
	}
	return s.payments.FindByOrderID(ctx, nil, order.ID)
}

func (s *TokenService) customer(ctx context.Context, userID uint) gateway.Customer {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("customer details unavailable for snap token", zap.Uint("userId", userID), zap.Error(err))
		return gateway.Customer{}
	}
	c := gateway.Customer{Name: user.Name, Email: user.Email}
	if user.Phone != nil {
		c.Phone = *user.Phone
	}
	return c
}

func snapItems(items []domain.OrderItem) []gateway.Item {
	out := make([]gateway.Item, 0, len(items))
	for _, it := range items {
		name := it.MenuItemName
		if name == "" {
			name = "Item " + strconv.FormatUint(uint64(it.MenuItemID), 10)
		}
		out = append(out, gateway.Item{
			ID:       strconv.FormatUint(uint64(it.MenuItemID), 10),
			Name:     name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return out
}
