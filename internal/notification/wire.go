package notification

import (
	"database/sql"

	"go.uber.org/zap"

	"cozycup/internal/notification/controller"
	"cozycup/internal/notification/repository"
	"cozycup/internal/notification/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.NotificationController {
	repo := repository.NewMySQLNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	return controller.NewNotificationController(svc, logger)
}
