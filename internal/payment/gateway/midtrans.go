package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cozycup/internal/config"
	apperrors "cozycup/internal/errors"
)

type Midtrans struct {
	enabledPayments []snap.SnapPaymentType
	timeout         time.Duration
	logger          *zap.Logger

	createTransaction func(*snap.Request) (*snap.Response, *midtrans.Error)
	checkTransaction  func(string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

func NewMidtrans(cfg config.MidtransConfig, logger *zap.Logger) *Midtrans {
	env := midtrans.Sandbox
	if cfg.IsProduction() {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.ServerKey, env)

	var coreClient coreapi.Client
	coreClient.New(cfg.ServerKey, env)

	payments := make([]snap.SnapPaymentType, 0, len(cfg.EnabledPayments))
	for _, p := range cfg.EnabledPayments {
		payments = append(payments, snap.SnapPaymentType(p))
	}

	return &Midtrans{
		enabledPayments:   payments,
		timeout:           cfg.RequestTimeout,
		logger:            logger,
		createTransaction: snapClient.CreateTransaction,
		checkTransaction:  coreClient.CheckTransaction,
	}
}

func (m *Midtrans) IssueSnapToken(ctx context.Context, req SnapRequest) (*SnapToken, error) {
	snapReq := buildSnapRequest(req, m.enabledPayments)

	resp, err := call(ctx, m.timeout, func() (*snap.Response, *midtrans.Error) {
		return m.createTransaction(snapReq)
	})
	if err != nil {
		return nil, apperrors.NewGatewayError("failed to create payment token", err)
	}
	if resp == nil || resp.Token == "" {
		return nil, apperrors.NewGatewayError("failed to create payment token", errors.New("empty token in gateway response"))
	}

	m.logger.Info("snap token created", zap.String("gatewayOrderId", req.GatewayOrderID))
	return &SnapToken{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (m *Midtrans) CheckTransaction(ctx context.Context, gatewayOrderID string) (*TransactionStatus, error) {
	resp, err := call(ctx, m.timeout, func() (*coreapi.TransactionStatusResponse, *midtrans.Error) {
		return m.checkTransaction(gatewayOrderID)
	})
	if err != nil {
		return nil, apperrors.NewGatewayError("failed to check transaction status", err)
	}
	if resp == nil {
		return nil, apperrors.NewGatewayError("failed to check transaction status", errors.New("empty gateway response"))
	}

	return &TransactionStatus{
		OrderID:           resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		PaymentType:       resp.PaymentType,
		TransactionID:     resp.TransactionID,
		TransactionTime:   ParseTransactionTime(resp.TransactionTime),
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
	}, nil
}

type result[T any] struct {
	value T
	err   *midtrans.Error
}

// call runs fn bounded by ctx and timeout. The client library has no
// context support, so an abandoned call finishes in the background.
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, *midtrans.Error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result[T], 1)
	go func() {
		v, err := fn()
		done <- result[T]{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("gateway call aborted: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return zero, r.err
		}
		return r.value, nil
	}
}

// buildSnapRequest converts amounts to whole rupiah. Item details are only
// sent when they add up to the gross amount, which the provider enforces.
func buildSnapRequest(req SnapRequest, payments []snap.SnapPaymentType) *snap.Request {
	gross := req.GrossAmount.Round(0).IntPart()

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.GatewayOrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		EnabledPayments: payments,
	}

	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	sum := decimal.Zero
	for _, it := range req.Items {
		price := it.Price.Round(0)
		sum = sum.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, midtrans.ItemDetails{
			ID:    it.ID,
			Name:  truncate(it.Name, 50),
			Price: price.IntPart(),
			Qty:   int32(it.Quantity),
		})
	}
	if len(items) > 0 && sum.IntPart() == gross {
		snapReq.Items = &items
	}

	return snapReq
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
