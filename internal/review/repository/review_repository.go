package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
)

type MySQLReviewRepository struct {
	db *sql.DB
}

func NewMySQLReviewRepository(db *sql.DB) *MySQLReviewRepository {
	return &MySQLReviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.user_id, r.menu_item_id, r.rating, r.comment, r.created_at, r.updated_at, u.name, m.name
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN menu_items m ON m.id = r.menu_item_id`

func scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.MenuItemID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.UserName, &rv.MenuItemName)
	return rv, err
}

// Upsert keeps one review per user and menu item, overwriting rating and
// comment of an existing one.
func (r *MySQLReviewRepository) Upsert(ctx context.Context, rv domain.Review) (uint, error) {
	query := `
		INSERT INTO reviews (user_id, menu_item_id, rating, comment) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), rating = VALUES(rating), comment = VALUES(comment)
	`
	res, err := r.db.ExecContext(ctx, query, rv.UserID, rv.MenuItemID, rv.Rating, rv.Comment)
	if err != nil {
		return 0, fmt.Errorf("upserting review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLReviewRepository) FindByID(ctx context.Context, id uint) (*domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying review: %w", err)
	}
	return &rv, nil
}

func (r *MySQLReviewRepository) Update(ctx context.Context, rv domain.Review) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET rating = ?, comment = ? WHERE id = ?`, rv.Rating, rv.Comment, rv.ID)
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("review with id %d not found", rv.ID))
}

func (r *MySQLReviewRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("review with id %d not found", id))
}

func (r *MySQLReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, reviewSelect+` ORDER BY r.created_at DESC, r.id DESC`)
}

func (r *MySQLReviewRepository) ListByMenuItem(ctx context.Context, menuItemID uint) ([]domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.menu_item_id = ? ORDER BY r.created_at DESC, r.id DESC`, menuItemID)
}

func (r *MySQLReviewRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC`, userID)
}

func (r *MySQLReviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}
	return reviews, nil
}

func requireAffected(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}
