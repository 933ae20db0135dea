package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/httpx"
	"cozycup/internal/middleware"
)

type NotificationService interface {
	List(ctx context.Context, userID uint) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

type NotificationController struct {
	service NotificationService
	logger  *zap.Logger
}

func NewNotificationController(service NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{service: service, logger: logger}
}

func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	notifications, err := c.service.List(r.Context(), user.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	httpx.Respond(w, r, http.StatusOK, notifications)
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := c.service.MarkRead(r.Context(), id, user.UserID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Notification marked as read", nil)
}
