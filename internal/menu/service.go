package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/infrastructure/cache"
	"cozycup/internal/menu/repository"
)

const (
	maxNameLength = 150
	cacheOp       = "menu"
)

var maxPrice = decimal.RequireFromString("9999999999.99")

type menuService struct {
	categories CategoryRepository
	items      MenuItemRepository
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

func NewService(categories CategoryRepository, items MenuItemRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) Service {
	return &menuService{
		categories: categories,
		items:      items,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

func (s *menuService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return s.categories.List(ctx, activeOnly)
}

func (s *menuService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *menuService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	c := domain.Category{IsActive: true}
	applyCategory(&c, req)
	if err := validateCategory(c); err != nil {
		return nil, err
	}

	id, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.InvalidateMenu(ctx)
	return s.categories.FindByID(ctx, id)
}

func (s *menuService) UpdateCategory(ctx context.Context, id uint, req CategoryRequest) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCategory(c, req)
	if err := validateCategory(*c); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, *c); err != nil {
		return nil, err
	}
	s.InvalidateMenu(ctx)
	return s.categories.FindByID(ctx, id)
}

func (s *menuService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateMenu(ctx)
	return nil
}

func applyCategory(c *domain.Category, req CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	c.Image = req.Image
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func validateCategory(c domain.Category) error {
	var details []apperrors.ValidationDetail
	if c.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	} else if len(c.Name) > maxNameLength {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name must not exceed 150 characters"})
	}
	if c.Image != nil && !validImageURL(*c.Image) {
		details = append(details, apperrors.ValidationDetail{Field: "image", Message: "image must be an http(s) URL"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// ListAvailable serves the public menu, from cache when possible.
func (s *menuService) ListAvailable(ctx context.Context, categoryID *uint) ([]domain.MenuItem, error) {
	key := s.cache.GenerateKey(cacheOp, "all")
	if categoryID != nil {
		key = s.cache.GenerateKey(cacheOp, "category:"+strconv.FormatUint(uint64(*categoryID), 10))
	}

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("menu cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var items []domain.MenuItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
		s.logger.Warn("discarding undecodable menu cache entry", zap.String("key", key))
	}

	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return nil, err
		}
	}

	items, err := s.items.List(ctx, repository.MenuFilter{CategoryID: categoryID, AvailableOnly: true})
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
			s.logger.Warn("menu cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

func (s *menuService) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	return s.items.List(ctx, repository.MenuFilter{})
}

func (s *menuService) GetMenuItem(ctx context.Context, id uint) (*domain.MenuItem, error) {
	return s.items.FindByID(ctx, id)
}

func (s *menuService) CreateMenuItem(ctx context.Context, req MenuItemRequest) (*domain.MenuItem, error) {
	var details []apperrors.ValidationDetail
	if req.CategoryID == nil {
		details = append(details, apperrors.ValidationDetail{Field: "category_id", Message: "category_id is required"})
	}
	if req.Name == nil {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if req.Price == nil {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price is required"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	m := domain.MenuItem{IsAvailable: true}
	applyMenuItem(&m, req)
	if err := s.validateMenuItem(ctx, m); err != nil {
		return nil, err
	}

	id, err := s.items.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.InvalidateMenu(ctx)
	return s.items.FindByID(ctx, id)
}

func (s *menuService) UpdateMenuItem(ctx context.Context, id uint, req MenuItemRequest) (*domain.MenuItem, error) {
	m, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMenuItem(m, req)
	if err := s.validateMenuItem(ctx, *m); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, *m); err != nil {
		return nil, err
	}
	s.InvalidateMenu(ctx)
	return s.items.FindByID(ctx, id)
}

func (s *menuService) DeleteMenuItem(ctx context.Context, id uint) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateMenu(ctx)
	return nil
}

// InvalidateMenu drops every cached menu listing. Failures are logged only;
// entries expire on their own.
func (s *menuService) InvalidateMenu(ctx context.Context) {
	prefix := s.cache.GenerateKey(cacheOp, "")
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

func applyMenuItem(m *domain.MenuItem, req MenuItemRequest) {
	if req.CategoryID != nil {
		m.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		m.Description = req.Description
	}
	if req.Price != nil {
		m.Price = *req.Price
	}
	if req.Image != nil {
		m.Image = req.Image
	}
	if req.Stock != nil {
		m.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		m.IsAvailable = *req.IsAvailable
	}
}

func (s *menuService) validateMenuItem(ctx context.Context, m domain.MenuItem) error {
	var details []apperrors.ValidationDetail
	if m.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	} else if len(m.Name) > maxNameLength {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name must not exceed 150 characters"})
	}
	if m.Price.IsNegative() || m.Price.GreaterThan(maxPrice) {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must be between 0 and 9999999999.99"})
	}
	if m.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "stock", Message: "stock must be non-negative"})
	}
	if m.Image != nil && !validImageURL(*m.Image) {
		details = append(details, apperrors.ValidationDetail{Field: "image", Message: "image must be an http(s) URL"})
	}
	if m.CategoryID == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "category_id", Message: "category_id must be a positive integer"})
	} else if _, err := s.categories.FindByID(ctx, m.CategoryID); err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return err
		}
		details = append(details, apperrors.ValidationDetail{Field: "category_id", Message: fmt.Sprintf("category %d does not exist", m.CategoryID)})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validImageURL(raw string) bool {
	if raw == "" {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
