package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/infrastructure/mysql"
)

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

const categoryColumns = `id, name, description, image, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *MySQLCategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *MySQLCategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by id: %w", err)
	}
	return &c, nil
}

func (r *MySQLCategoryRepository) Create(ctx context.Context, c domain.Category) (uint, error) {
	query := `INSERT INTO categories (name, description, image, is_active) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.Image, c.IsActive)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("category %q already exists", c.Name))
		}
		return 0, fmt.Errorf("inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLCategoryRepository) Update(ctx context.Context, c domain.Category) error {
	query := `UPDATE categories SET name = ?, description = ?, image = ?, is_active = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.Image, c.IsActive, c.ID)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return apperrors.NewConflictError(fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("updating category: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("category with id %d not found", c.ID))
}

func (r *MySQLCategoryRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("category with id %d not found", id))
}

// UpsertByName is used by the seeder.
func (r *MySQLCategoryRepository) UpsertByName(ctx context.Context, c domain.Category) (uint, error) {
	query := `
		INSERT INTO categories (name, description, image, is_active) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), description = VALUES(description), image = VALUES(image), is_active = VALUES(is_active)
	`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.Image, c.IsActive)
	if err != nil {
		return 0, fmt.Errorf("upserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
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
