package menu

import (
	"context"

	"cozycup/internal/domain"
	"cozycup/internal/menu/repository"
)

type Service interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uint) (*domain.Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uint, req CategoryRequest) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	ListAvailable(ctx context.Context, categoryID *uint) ([]domain.MenuItem, error)
	ListAll(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id uint) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, req MenuItemRequest) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uint, req MenuItemRequest) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint) error

	InvalidateMenu(ctx context.Context)
}

type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (uint, error)
	Update(ctx context.Context, c domain.Category) error
	Delete(ctx context.Context, id uint) error
}

type MenuItemRepository interface {
	List(ctx context.Context, filter repository.MenuFilter) ([]domain.MenuItem, error)
	FindByID(ctx context.Context, id uint) (*domain.MenuItem, error)
	Create(ctx context.Context, m domain.MenuItem) (uint, error)
	Update(ctx context.Context, m domain.MenuItem) error
	Delete(ctx context.Context, id uint) error
}
