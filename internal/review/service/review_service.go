package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
)

const maxCommentLength = 1000

type ReviewRepository interface {
	Upsert(ctx context.Context, rv domain.Review) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Review, error)
	Update(ctx context.Context, rv domain.Review) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]domain.Review, error)
	ListByMenuItem(ctx context.Context, menuItemID uint) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Review, error)
}

type MenuItemFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.MenuItem, error)
}

// MenuInvalidator drops cached menu listings, which embed rating aggregates.
type MenuInvalidator interface {
	InvalidateMenu(ctx context.Context)
}

type ReviewRequest struct {
	MenuItemID uint    `json:"menu_item_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment"`
}

type MenuItemReviews struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
}

type ReviewService struct {
	reviews   ReviewRepository
	menuItems MenuItemFinder
	menu      MenuInvalidator
	logger    *zap.Logger
}

func NewReviewService(reviews ReviewRepository, menuItems MenuItemFinder, menu MenuInvalidator, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, menuItems: menuItems, menu: menu, logger: logger}
}

func (s *ReviewService) ListForMenuItem(ctx context.Context, menuItemID uint) (*MenuItemReviews, error) {
	if _, err := s.menuItems.FindByID(ctx, menuItemID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	return &MenuItemReviews{
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
		TotalReviews:  len(reviews),
	}, nil
}

func averageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return domain.RoundRating(float64(sum) / float64(len(reviews)))
}

func (s *ReviewService) ListMine(ctx context.Context, userID uint) ([]domain.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

func (s *ReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.List(ctx)
}

// Upsert creates the caller's review of a menu item, or replaces the rating
// and comment of the one they already wrote.
func (s *ReviewService) Upsert(ctx context.Context, userID uint, req ReviewRequest) (*domain.Review, error) {
	var details []apperrors.ValidationDetail
	if req.MenuItemID == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "menu_item_id", Message: "is required"})
	}
	details = append(details, validateRating(req.Rating, req.Comment)...)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid review", details...)
	}

	if _, err := s.menuItems.FindByID(ctx, req.MenuItemID); err != nil {
		return nil, err
	}

	id, err := s.reviews.Upsert(ctx, domain.Review{
		UserID:     userID,
		MenuItemID: req.MenuItemID,
		Rating:     req.Rating,
		Comment:    normalizeComment(req.Comment),
	})
	if err != nil {
		return nil, err
	}
	s.menu.InvalidateMenu(ctx)
	s.logger.Info("review saved",
		zap.Uint("reviewId", id),
		zap.Uint("userId", userID),
		zap.Uint("menuItemId", req.MenuItemID),
		zap.Int("rating", req.Rating),
	)
	return s.reviews.FindByID(ctx, id)
}

func (s *ReviewService) Update(ctx context.Context, userID, id uint, req ReviewRequest) (*domain.Review, error) {
	if details := validateRating(req.Rating, req.Comment); len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid review", details...)
	}
	rv, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rv.Rating = req.Rating
	rv.Comment = normalizeComment(req.Comment)
	if err := s.reviews.Update(ctx, *rv); err != nil {
		return nil, err
	}
	s.menu.InvalidateMenu(ctx)
	return s.reviews.FindByID(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.menu.InvalidateMenu(ctx)
	return nil
}

// owned hides reviews of other users behind a not found error.
func (s *ReviewService) owned(ctx context.Context, userID, id uint) (*domain.Review, error) {
	rv, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %d not found", id))
	}
	return rv, nil
}

func validateRating(rating int, comment *string) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	if !domain.ValidRating(rating) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "rating",
			Message: fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating),
		})
	}
	if comment != nil && utf8.RuneCountInString(*comment) > maxCommentLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "comment",
			Message: fmt.Sprintf("must be at most %d characters", maxCommentLength),
		})
	}
	return details
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
