package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/httpx"
	"cozycup/internal/middleware"
	"cozycup/internal/payment/service"
)

type PaymentService interface {
	List(ctx context.Context, actor domain.User) ([]domain.Payment, error)
	Get(ctx context.Context, actor domain.User, id uint) (*domain.Payment, error)
	GetByOrder(ctx context.Context, actor domain.User, orderID uint) (*domain.Payment, error)
	Create(ctx context.Context, actor domain.User, req service.CreatePaymentRequest) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) (*domain.Payment, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, upd service.StatusUpdate) (*service.ReconcileResult, error)
	ReconcilePolled(ctx context.Context, actor domain.User, upd service.StatusUpdate) (*service.ReconcileResult, error)
}

type PaymentController struct {
	payments   PaymentService
	reconciler Reconciler
	logger     *zap.Logger
}

func NewPaymentController(payments PaymentService, reconciler Reconciler, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		payments:   payments,
		reconciler: reconciler,
		logger:     logger,
	}
}

type updateStatusRequest struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

type adminStatusRequest struct {
	Status string `json:"status"`
}

func actor(r *http.Request) (domain.User, bool) {
	p, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return domain.User{}, false
	}
	return p.User(), true
}

func (c *PaymentController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(r)
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	payments, err := c.payments.List(r.Context(), user)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, payments)
}

func (c *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(r)
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	payment, err := c.payments.Get(r.Context(), user, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, payment)
}

func (c *PaymentController) GetByOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(r)
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	orderID, err := httpx.PathID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	payment, err := c.payments.GetByOrder(r.Context(), user, orderID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, payment)
}

func (c *PaymentController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(r)
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	var req service.CreatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	payment, err := c.payments.Create(r.Context(), user, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusCreated, "Payment created successfully", payment)
}

func (c *PaymentController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req adminStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	payment, err := c.payments.UpdateStatus(r.Context(), id, domain.PaymentStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Payment status updated successfully", payment)
}

// UpdateFromClient handles the status the payment widget reports back after
// the customer finishes paying.
func (c *PaymentController) UpdateFromClient(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(r)
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var details []apperrors.ValidationDetail
	if strings.TrimSpace(req.OrderID) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "order_id", Message: "order_id is required"})
	}
	if strings.TrimSpace(req.TransactionStatus) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "transaction_status", Message: "transaction_status is required"})
	}
	if len(details) > 0 {
		httpx.WriteError(w, r, apperrors.NewValidationError("validation failed", details...))
		return
	}

	result, err := c.reconciler.ReconcilePolled(r.Context(), user, service.StatusUpdate{
		OrderRef:          req.OrderID,
		TransactionStatus: req.TransactionStatus,
		PaymentType:       req.PaymentType,
		TransactionID:     req.TransactionID,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Payment status updated", result)
}
