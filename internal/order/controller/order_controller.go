package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	"cozycup/internal/dto"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/httpx"
	"cozycup/internal/middleware"
)

type CheckoutUseCase interface {
	PlaceOrder(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error)
}

type OrderService interface {
	List(ctx context.Context, actor domain.User) ([]domain.Order, error)
	Show(ctx context.Context, actor domain.User, id uint) (*domain.Order, string, error)
	UpdateStatus(ctx context.Context, actor domain.User, id uint, status domain.OrderStatus) (*domain.Order, error)
}

type OrderController struct {
	checkout CheckoutUseCase
	orders   OrderService
	logger   *zap.Logger
}

func NewOrderController(checkout CheckoutUseCase, orders OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{
		checkout: checkout,
		orders:   orders,
		logger:   logger,
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	p, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return domain.User{}, false
	}
	return p.User(), true
}

// Checkout places an order from the cart and returns the snap token when the
// gateway issued one.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.CheckoutCartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	result, err := c.checkout.PlaceOrder(r.Context(), user, dto.CheckoutRequest{
		Lines:         toLines(req.Cart),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		LinesField:    "cart",
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	resp := dto.CheckoutResponse{
		Success: true,
		Message: "Order placed successfully",
		Data:    result.Order,
		TraceID: httpx.TraceID(r.Context()),
	}
	if result.SnapToken != "" {
		resp.SnapToken = &result.SnapToken
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// Create places an order from server prices and notifies the admins.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = domain.DefaultGatewayMethod
	}

	result, err := c.checkout.PlaceOrder(r.Context(), user, dto.CheckoutRequest{
		Lines:         toLines(req.Items),
		PaymentMethod: method,
		NotifyAdmins:  true,
		LinesField:    "items",
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusCreated, "Order created successfully", result.Order)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := c.orders.List(r.Context(), user)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, orders)
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, token, err := c.orders.Show(r.Context(), user, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	detail := dto.OrderDetail{Order: order}
	if token != "" {
		detail.SnapToken = &token
	}
	httpx.Respond(w, r, http.StatusOK, detail)
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), user, id, domain.OrderStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Order status updated successfully", order)
}

func toLines(in []dto.CartLine) []dto.CheckoutLine {
	lines := make([]dto.CheckoutLine, len(in))
	for i, l := range in {
		lines[i] = l.ToCheckoutLine()
	}
	return lines
}
