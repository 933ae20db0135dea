package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/middleware"
	"cozycup/internal/review/service"
)

type mockReviewService struct {
	ListForMenuItemFunc func(ctx context.Context, menuItemID uint) (*service.MenuItemReviews, error)
	ListMineFunc        func(ctx context.Context, userID uint) ([]domain.Review, error)
	ListAllFunc         func(ctx context.Context) ([]domain.Review, error)
	UpsertFunc          func(ctx context.Context, userID uint, req service.ReviewRequest) (*domain.Review, error)
	UpdateFunc          func(ctx context.Context, userID, id uint, req service.ReviewRequest) (*domain.Review, error)
	DeleteFunc          func(ctx context.Context, userID, id uint) error
}

func (m *mockReviewService) ListForMenuItem(ctx context.Context, menuItemID uint) (*service.MenuItemReviews, error) {
	return m.ListForMenuItemFunc(ctx, menuItemID)
}

func (m *mockReviewService) ListMine(ctx context.Context, userID uint) ([]domain.Review, error) {
	return m.ListMineFunc(ctx, userID)
}

func (m *mockReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	return m.ListAllFunc(ctx)
}

func (m *mockReviewService) Upsert(ctx context.Context, userID uint, req service.ReviewRequest) (*domain.Review, error) {
	return m.UpsertFunc(ctx, userID, req)
}

func (m *mockReviewService) Update(ctx context.Context, userID, id uint, req service.ReviewRequest) (*domain.Review, error) {
	return m.UpdateFunc(ctx, userID, id, req)
}

func (m *mockReviewService) Delete(ctx context.Context, userID, id uint) error {
	return m.DeleteFunc(ctx, userID, id)
}

func newTestRouter(svc ReviewService, principal *middleware.Principal) http.Handler {
	c := NewReviewController(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/reviews/menu-item/{menuItemId}", c.ListForMenuItem)
	r.Group(func(r chi.Router) {
		if principal != nil {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), *principal)))
				})
			})
		}
		r.Post("/reviews", c.Upsert)
		r.Put("/reviews/{id}", c.Update)
		r.Delete("/reviews/{id}", c.Delete)
		r.Get("/reviews/user/me", c.ListMine)
	})
	return r
}

func TestReviewController_ListForMenuItem(t *testing.T) {
	svc := &mockReviewService{
		ListForMenuItemFunc: func(ctx context.Context, menuItemID uint) (*service.MenuItemReviews, error) {
			if menuItemID != 1 {
				return nil, apperrors.NewNotFoundError("menu item not found")
			}
			return &service.MenuItemReviews{
				Reviews:       []domain.Review{{ID: 1, Rating: 5, UserName: "Sari"}},
				AverageRating: 5,
				TotalReviews:  1,
			}, nil
		},
	}
	h := newTestRouter(svc, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/menu-item/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data service.MenuItemReviews `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.TotalReviews)
	assert.Equal(t, 5.0, body.Data.AverageRating)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/menu-item/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewController_RequiresPrincipal(t *testing.T) {
	h := newTestRouter(&mockReviewService{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"menu_item_id":1,"rating":5}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewController_Upsert(t *testing.T) {
	svc := &mockReviewService{
		UpsertFunc: func(ctx context.Context, userID uint, req service.ReviewRequest) (*domain.Review, error) {
			assert.Equal(t, uint(5), userID)
			assert.Equal(t, uint(1), req.MenuItemID)
			if req.Rating > domain.MaxRating {
				return nil, apperrors.NewValidationError("invalid review",
					apperrors.ValidationDetail{Field: "rating", Message: "must be between 1 and 5"})
			}
			return &domain.Review{ID: 3, UserID: userID, MenuItemID: req.MenuItemID, Rating: req.Rating}, nil
		},
	}
	h := newTestRouter(svc, &middleware.Principal{UserID: 5, Role: domain.RoleCustomer})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"menu_item_id":1,"rating":5}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Review saved"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"menu_item_id":1,"rating":9}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating"`)
}

func TestReviewController_DeleteOthersReview(t *testing.T) {
	svc := &mockReviewService{
		DeleteFunc: func(ctx context.Context, userID, id uint) error {
			return apperrors.NewNotFoundError("review with id 3 not found")
		},
	}
	h := newTestRouter(svc, &middleware.Principal{UserID: 6, Role: domain.RoleCustomer})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/reviews/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
