package review

import (
	"database/sql"

	"go.uber.org/zap"

	menurepo "cozycup/internal/menu/repository"
	"cozycup/internal/review/controller"
	"cozycup/internal/review/repository"
	"cozycup/internal/review/service"
)

func NewModule(db *sql.DB, menu service.MenuInvalidator, logger *zap.Logger) *controller.ReviewController {
	repo := repository.NewMySQLReviewRepository(db)
	items := menurepo.NewMySQLMenuItemRepository(db)
	svc := service.NewReviewService(repo, items, menu, logger)
	return controller.NewReviewController(svc, logger)
}
