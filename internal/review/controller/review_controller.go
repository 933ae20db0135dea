package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/httpx"
	"cozycup/internal/middleware"
	"cozycup/internal/review/service"
)

type ReviewService interface {
	ListForMenuItem(ctx context.Context, menuItemID uint) (*service.MenuItemReviews, error)
	ListMine(ctx context.Context, userID uint) ([]domain.Review, error)
	ListAll(ctx context.Context) ([]domain.Review, error)
	Upsert(ctx context.Context, userID uint, req service.ReviewRequest) (*domain.Review, error)
	Update(ctx context.Context, userID, id uint, req service.ReviewRequest) (*domain.Review, error)
	Delete(ctx context.Context, userID, id uint) error
}

type ReviewController struct {
	service ReviewService
	logger  *zap.Logger
}

func NewReviewController(service ReviewService, logger *zap.Logger) *ReviewController {
	return &ReviewController{service: service, logger: logger}
}

func (c *ReviewController) ListForMenuItem(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := httpx.PathID(r, "menuItemId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	reviews, err := c.service.ListForMenuItem(r.Context(), menuItemID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, reviews)
}

func (c *ReviewController) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	reviews, err := c.service.ListMine(r.Context(), user.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, reviews)
}

func (c *ReviewController) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.service.ListAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, reviews)
}

func (c *ReviewController) Upsert(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	var req service.ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	review, err := c.service.Upsert(r.Context(), user.UserID, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusCreated, "Review saved", review)
}

func (c *ReviewController) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req service.ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	review, err := c.service.Update(r.Context(), user.UserID, id, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Review updated", review)
}

func (c *ReviewController) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := c.service.Delete(r.Context(), user.UserID, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Review deleted", nil)
}
