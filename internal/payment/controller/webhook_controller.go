package controller

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/httpx"
	"cozycup/internal/payment/gateway"
	"cozycup/internal/payment/service"
)

const maxNotificationBytes = 64 << 10

type SignatureVerifier interface {
	Verify(orderID, statusCode, grossAmount, signature string) bool
}

type notificationRequest struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

type WebhookController struct {
	reconciler Reconciler
	verifier   SignatureVerifier
	logger     *zap.Logger
}

func NewWebhookController(reconciler Reconciler, verifier SignatureVerifier, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		reconciler: reconciler,
		verifier:   verifier,
		logger:     logger,
	}
}

// Notify receives the provider's server-to-server notification. Nothing is
// written unless the signature matches.
func (c *WebhookController) Notify(w http.ResponseWriter, r *http.Request) {
	logger := httpx.Logger(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxNotificationBytes)

	var req notificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		httpx.WriteError(w, r, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "order_id",
			Message: "order_id is required",
		}))
		return
	}

	if !c.verifier.Verify(req.OrderID, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		logger.Warn("notification signature rejected", zap.String("orderId", req.OrderID))
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("invalid signature"))
		return
	}

	// transaction_status is outside the signature; it must agree with the signed status_code
	status, _ := domain.ParseTransactionStatus(req.TransactionStatus)
	if outcome := domain.ResolveTransaction(status, req.FraudStatus); !outcome.MatchesStatusCode(req.StatusCode) {
		logger.Warn("notification status does not match status code",
			zap.String("orderId", req.OrderID),
			zap.String("transactionStatus", req.TransactionStatus),
			zap.String("statusCode", req.StatusCode),
		)
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("invalid signature"))
		return
	}

	result, err := c.reconciler.Reconcile(r.Context(), service.StatusUpdate{
		OrderRef:          req.OrderID,
		TransactionStatus: req.TransactionStatus,
		FraudStatus:       req.FraudStatus,
		PaymentType:       req.PaymentType,
		TransactionID:     req.TransactionID,
		TransactionTime:   gateway.ParseTransactionTime(req.TransactionTime),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	logger.Info("notification processed",
		zap.String("orderId", req.OrderID),
		zap.String("transactionStatus", req.TransactionStatus),
		zap.Bool("applied", result.Applied),
	)
	httpx.RespondMessage(w, r, http.StatusOK, "OK", nil)
}
