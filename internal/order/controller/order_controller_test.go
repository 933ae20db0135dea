package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cozycup/internal/domain"
	"cozycup/internal/dto"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/middleware"
)

type mockCheckoutUseCase struct {
	PlaceOrderFunc func(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error)
}

func (m *mockCheckoutUseCase) PlaceOrder(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
	return m.PlaceOrderFunc(ctx, customer, req)
}

type mockOrderService struct {
	ListFunc         func(ctx context.Context, actor domain.User) ([]domain.Order, error)
	ShowFunc         func(ctx context.Context, actor domain.User, id uint) (*domain.Order, string, error)
	UpdateStatusFunc func(ctx context.Context, actor domain.User, id uint, status domain.OrderStatus) (*domain.Order, error)
}

func (m *mockOrderService) List(ctx context.Context, actor domain.User) ([]domain.Order, error) {
	return m.ListFunc(ctx, actor)
}

func (m *mockOrderService) Show(ctx context.Context, actor domain.User, id uint) (*domain.Order, string, error) {
	return m.ShowFunc(ctx, actor, id)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, actor domain.User, id uint, status domain.OrderStatus) (*domain.Order, error) {
	return m.UpdateStatusFunc(ctx, actor, id, status)
}

var principal = &middleware.Principal{UserID: 5, Name: "Sari", Role: domain.RoleCustomer}

func router(c *OrderController) http.Handler {
	r := chi.NewRouter()
	r.Post("/checkout", c.Checkout)
	r.Get("/orders", c.List)
	r.Post("/orders", c.Create)
	r.Get("/orders/{id}", c.Show)
	r.Patch("/orders/{id}/status", c.UpdateStatus)
	return r
}

func do(h http.Handler, method, target, body string, user *middleware.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleOrder() *domain.Order {
	return &domain.Order{ID: 42, UserID: 5, OrderNumber: "ORD-20240101-ABCDEF1234", TotalAmount: decimal.NewFromInt(30000), Status: domain.OrderStatusPending}
}

func TestOrderController_Checkout(t *testing.T) {
	var got dto.CheckoutRequest
	uc := &mockCheckoutUseCase{PlaceOrderFunc: func(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
		got = req
		assert.Equal(t, "Sari", customer.Name)
		return &dto.CheckoutResult{Order: sampleOrder(), SnapToken: "snap-1"}, nil
	}}
	h := router(NewOrderController(uc, &mockOrderService{}, zap.NewNop()))

	rec := do(h, http.MethodPost, "/checkout",
		`{"cart":[{"menu_item_id":1,"quantity":2,"price":15000,"notes":"less sugar"}],"payment_method":"gopay"}`, principal)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, got.Lines, 1)
	assert.Equal(t, uint(1), got.Lines[0].MenuItemID)
	assert.True(t, got.Lines[0].Price.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "less sugar", *got.Lines[0].Notes)
	assert.Equal(t, "gopay", got.PaymentMethod)
	assert.False(t, got.NotifyAdmins)
	assert.Equal(t, "cart", got.LinesField)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "snap-1", body["snap_token"])
	assert.Equal(t, "ORD-20240101-ABCDEF1234", body["data"].(map[string]any)["order_number"])
}

func TestOrderController_CheckoutCashHasNullToken(t *testing.T) {
	uc := &mockCheckoutUseCase{PlaceOrderFunc: func(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
		return &dto.CheckoutResult{Order: sampleOrder()}, nil
	}}
	h := router(NewOrderController(uc, &mockOrderService{}, zap.NewNop()))

	rec := do(h, http.MethodPost, "/checkout", `{"cart":[{"menu_item_id":1,"quantity":2}],"payment_method":"cash"}`, principal)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"snap_token":null`)
}

func TestOrderController_CreateDefaultsAndNotifies(t *testing.T) {
	var got dto.CheckoutRequest
	uc := &mockCheckoutUseCase{PlaceOrderFunc: func(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
		got = req
		return &dto.CheckoutResult{Order: sampleOrder()}, nil
	}}
	h := router(NewOrderController(uc, &mockOrderService{}, zap.NewNop()))

	rec := do(h, http.MethodPost, "/orders", `{"items":[{"menu_item_id":1,"quantity":1}]}`, principal)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.DefaultGatewayMethod, got.PaymentMethod)
	assert.True(t, got.NotifyAdmins)
	assert.Equal(t, "items", got.LinesField)
}

func TestOrderController_CheckoutErrors(t *testing.T) {
	uc := &mockCheckoutUseCase{PlaceOrderFunc: func(ctx context.Context, customer domain.User, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
		return nil, apperrors.NewNotFoundError("menu item with id 9 not found")
	}}
	h := router(NewOrderController(uc, &mockOrderService{}, zap.NewNop()))

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/checkout", `{}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/checkout", `{not json`, principal).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/checkout", `{"cart":[{"menu_item_id":9,"quantity":1}],"payment_method":"cash"}`, principal).Code)
}

func TestOrderController_Show(t *testing.T) {
	svc := &mockOrderService{ShowFunc: func(ctx context.Context, actor domain.User, id uint) (*domain.Order, string, error) {
		switch id {
		case 42:
			return sampleOrder(), "snap-1", nil
		case 43:
			return nil, "", apperrors.NewGatewayError("failed to create payment token", nil)
		}
		return nil, "", apperrors.NewNotFoundError("order not found")
	}}
	h := router(NewOrderController(&mockCheckoutUseCase{}, svc, zap.NewNop()))

	rec := do(h, http.MethodGet, "/orders/42", "", principal)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "snap-1", data["snap_token"])
	assert.NotNil(t, data["order"])

	assert.Equal(t, http.StatusBadGateway, do(h, http.MethodGet, "/orders/43", "", principal).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/orders/44", "", principal).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/orders/abc", "", principal).Code)
}

func TestOrderController_ListAndUpdateStatus(t *testing.T) {
	svc := &mockOrderService{
		ListFunc: func(ctx context.Context, actor domain.User) ([]domain.Order, error) {
			return []domain.Order{*sampleOrder()}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, actor domain.User, id uint, status domain.OrderStatus) (*domain.Order, error) {
			if !status.Valid() {
				return nil, apperrors.NewValidationError("validation failed")
			}
			o := sampleOrder()
			o.Status = status
			return o, nil
		},
	}
	h := router(NewOrderController(&mockCheckoutUseCase{}, svc, zap.NewNop()))
	admin := &middleware.Principal{UserID: 1, Role: domain.RoleAdmin}

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/orders", "", principal).Code)

	rec := do(h, http.MethodPatch, "/orders/42/status", `{"status":"completed"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPatch, "/orders/42/status", `{"status":"lost"}`, admin).Code)
}
