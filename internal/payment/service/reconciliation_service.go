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

// StatusUpdate is a provider transaction status for one order, taken from
// either a webhook notification or a client poll.
type StatusUpdate struct {
	OrderRef          string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	TransactionID     string
	TransactionTime   *time.Time
}

type ReconcileResult struct {
	Order   *domain.Order         `json:"order"`
	Payment *domain.Payment       `json:"payment"`
	Outcome domain.PaymentOutcome `json:"-"`
	Applied bool                  `json:"applied"`
}

type ReconciliationService struct {
	tx           Transactor
	orders       OrderRepository
	payments     PaymentRepository
	gateway      Gateway
	verifyPolled bool
	logger       *zap.Logger
	now          func() time.Time
}

func NewReconciliationService(
	tx Transactor,
	orders OrderRepository,
	payments PaymentRepository,
	gw Gateway,
	verifyPolled bool,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		tx:           tx,
		orders:       orders,
		payments:     payments,
		gateway:      gw,
		verifyPolled: verifyPolled,
		logger:       logger,
		now:          time.Now,
	}
}

// Reconcile applies a verified webhook notification.
func (s *ReconciliationService) Reconcile(ctx context.Context, upd StatusUpdate) (*ReconcileResult, error) {
	return s.reconcile(ctx, nil, upd)
}

// ReconcilePolled applies a status reported by a client. Only the order's
// owner or an admin may do so; other callers get NotFound. With verification
// on, the provider's view replaces the client's, and a paid status the
// provider cannot confirm is refused unless an admin reports it.
func (s *ReconciliationService) ReconcilePolled(ctx context.Context, actor domain.User, upd StatusUpdate) (*ReconcileResult, error) {
	if s.verifyPolled {
		verified, err := s.providerStatus(ctx, actor, upd)
		if err != nil {
			return nil, err
		}
		switch {
		case verified != nil:
			upd = *verified
		case !actor.IsAdmin() && resolveOutcome(upd) == domain.OutcomePaid:
			s.logger.Warn("unconfirmed paid status refused",
				zap.String("orderRef", upd.OrderRef),
				zap.Uint("userId", actor.ID),
			)
			return nil, apperrors.NewConflictError("payment has not been confirmed by the payment provider")
		}
	}
	return s.reconcile(ctx, &actor, upd)
}

// providerStatus fetches the provider's own view of the transaction. It
// returns nil when the payment never reached the provider.
func (s *ReconciliationService) providerStatus(ctx context.Context, actor domain.User, upd StatusUpdate) (*StatusUpdate, error) {
	order, err := s.findOrder(ctx, nil, upd.OrderRef)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(actor, order); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, nil
	}

	payment, err := s.payments.FindByOrderID(ctx, nil, order.ID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, nil
		}
		return nil, err
	}
	if payment.GatewayOrderID == nil || *payment.GatewayOrderID == "" {
		return nil, nil
	}

	st, err := s.gateway.CheckTransaction(ctx, *payment.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("polled status verified with provider",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("clientStatus", upd.TransactionStatus),
		zap.String("providerStatus", st.TransactionStatus),
	)

	return &StatusUpdate{
		OrderRef:          *payment.GatewayOrderID,
		TransactionStatus: st.TransactionStatus,
		FraudStatus:       st.FraudStatus,
		PaymentType:       st.PaymentType,
		TransactionID:     st.TransactionID,
		TransactionTime:   st.TransactionTime,
	}, nil
}

func resolveOutcome(upd StatusUpdate) domain.PaymentOutcome {
	status, ok := domain.ParseTransactionStatus(upd.TransactionStatus)
	if !ok {
		return domain.OutcomeIgnore
	}
	return domain.ResolveTransaction(status, upd.FraudStatus)
}

func (s *ReconciliationService) reconcile(ctx context.Context, actor *domain.User, upd StatusUpdate) (*ReconcileResult, error) {
	outcome := resolveOutcome(upd)

	var result *ReconcileResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.findOrder(ctx, tx, upd.OrderRef)
		if err != nil {
			return err
		}
		if actor != nil {
			if err := checkOwner(*actor, order); err != nil {
				return err
			}
		}

		payment, err := s.loadOrCreatePayment(ctx, tx, order, upd.PaymentType)
		if err != nil {
			return err
		}

		result = &ReconcileResult{Order: order, Payment: payment, Outcome: outcome}
		if reason := s.skipReason(outcome, payment, upd.TransactionTime); reason != "" {
			s.logger.Info("status update ignored",
				zap.String("orderNumber", order.OrderNumber),
				zap.String("transactionStatus", upd.TransactionStatus),
				zap.String("paymentStatus", string(payment.Status)),
				zap.String("reason", reason),
			)
			return nil
		}

		if err := s.apply(ctx, tx, order, payment, outcome, upd); err != nil {
			return err
		}
		result.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Order.Payment = result.Payment
	return result, nil
}

// findOrder resolves a provider order reference. The provider id is the
// order number with a unique suffix appended, so both forms are tried.
func (s *ReconciliationService) findOrder(ctx context.Context, tx *sql.Tx, ref string) (*domain.Order, error) {
	for _, number := range domain.OrderNumberCandidates(ref) {
		order, err := s.orders.FindByOrderNumber(ctx, tx, number)
		if err == nil {
			return order, nil
		}
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", ref))
}

func (s *ReconciliationService) loadOrCreatePayment(ctx context.Context, tx *sql.Tx, order *domain.Order, method string) (*domain.Payment, error) {
	payment, err := s.payments.FindByOrderID(ctx, tx, order.ID)
	if err == nil {
		return payment, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	if method == "" {
		method = domain.DefaultGatewayMethod
	}
	p := domain.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: method,
		Status:        domain.PaymentStatusPending,
	}
	if _, err := s.payments.Insert(ctx, tx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment created during reconciliation", zap.Uint("orderId", order.ID), zap.String("method", method))

	return s.payments.FindByOrderID(ctx, tx, order.ID)
}

func (s *ReconciliationService) skipReason(outcome domain.PaymentOutcome, payment *domain.Payment, at *time.Time) string {
	switch {
	case outcome == domain.OutcomeIgnore:
		return "unhandled transaction status"
	case at != nil && payment.ProviderStatusAt != nil && at.Before(*payment.ProviderStatusAt):
		return "stale notification"
	case !outcome.Supersedes(payment.Status):
		return "payment already " + string(payment.Status)
	}
	return ""
}

func (s *ReconciliationService) apply(ctx context.Context, tx *sql.Tx, order *domain.Order, payment *domain.Payment, outcome domain.PaymentOutcome, upd StatusUpdate) error {
	previous := payment.Status
	payment.Status = outcome.PaymentStatus()

	if outcome == domain.OutcomePaid {
		if payment.PaidAt == nil {
			paidAt := s.now().UTC()
			payment.PaidAt = &paidAt
		}
		if upd.PaymentType != "" {
			payment.PaymentMethod = upd.PaymentType
		}
	}
	if upd.TransactionID != "" {
		txID := upd.TransactionID
		payment.TransactionID = &txID
	}
	providerStatus := upd.TransactionStatus
	payment.ProviderStatus = &providerStatus
	if upd.TransactionTime != nil {
		at := upd.TransactionTime.UTC()
		payment.ProviderStatusAt = &at
	}

	if err := s.payments.Update(ctx, tx, *payment); err != nil {
		return err
	}

	next := outcome.OrderStatus()
	if order.Status != next && (previous != payment.Status || order.Status == domain.OrderStatusPending) {
		if err := s.orders.UpdateStatus(ctx, tx, order.ID, next); err != nil {
			return err
		}
		order.Status = next
	}

	s.logger.Info("payment status reconciled",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("outcome", outcome.String()),
		zap.String("paymentStatus", string(payment.Status)),
		zap.String("orderStatus", string(order.Status)),
	)
	return nil
}

func checkOwner(actor domain.User, order *domain.Order) error {
	if actor.IsAdmin() || order.UserID == actor.ID {
		return nil
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", order.OrderNumber))
}
