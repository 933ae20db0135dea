package menu

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"cozycup/internal/infrastructure/cache"
	"cozycup/internal/menu/repository"
)

type Module struct {
	Controller *Controller
	Service    Service
}

func NewModule(db *sql.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Module {
	categoryRepo := repository.NewMySQLCategoryRepository(db)
	itemRepo := repository.NewMySQLMenuItemRepository(db)
	svc := NewService(categoryRepo, itemRepo, c, ttl, logger)
	return &Module{
		Controller: NewController(svc, logger),
		Service:    svc,
	}
}
