package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/infrastructure/mysql"
)

type MySQLMenuItemRepository struct {
	db *sql.DB
}

func NewMySQLMenuItemRepository(db *sql.DB) *MySQLMenuItemRepository {
	return &MySQLMenuItemRepository{db: db}
}

// MenuFilter narrows List. A nil CategoryID lists every category.
type MenuFilter struct {
	CategoryID    *uint
	AvailableOnly bool
}

const menuItemWithRatingQuery = `
	SELECT m.id, m.category_id, m.name, m.description, m.price, m.image, m.stock, m.is_available,
	       m.created_at, m.updated_at, c.name,
	       COALESCE(AVG(r.rating), 0), COUNT(r.id)
	FROM menu_items m
	JOIN categories c ON c.id = m.category_id
	LEFT JOIN reviews r ON r.menu_item_id = m.id
`

func scanMenuItemWithRating(row interface{ Scan(...any) error }) (domain.MenuItem, error) {
	var m domain.MenuItem
	var avg float64
	err := row.Scan(
		&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price, &m.Image, &m.Stock, &m.IsAvailable,
		&m.CreatedAt, &m.UpdatedAt, &m.CategoryName,
		&avg, &m.TotalReviews,
	)
	m.AverageRating = domain.RoundRating(avg)
	return m, err
}

func (r *MySQLMenuItemRepository) List(ctx context.Context, filter MenuFilter) ([]domain.MenuItem, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		where = append(where, "m.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.AvailableOnly {
		where = append(where, "m.is_available = 1", "c.is_active = 1")
	}

	query := menuItemWithRatingQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY m.id, c.name ORDER BY m.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItemWithRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}
	return items, nil
}

func (r *MySQLMenuItemRepository) FindByID(ctx context.Context, id uint) (*domain.MenuItem, error) {
	query := menuItemWithRatingQuery + " WHERE m.id = ? GROUP BY m.id, c.name"

	m, err := scanMenuItemWithRating(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying menu item by id: %w", err)
	}
	return &m, nil
}

func (r *MySQLMenuItemRepository) Create(ctx context.Context, m domain.MenuItem) (uint, error) {
	query := `
		INSERT INTO menu_items (category_id, name, description, price, image, stock, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, m.CategoryID, m.Name, m.Description, m.Price, m.Image, m.Stock, m.IsAvailable)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("menu item %q already exists", m.Name))
		}
		return 0, fmt.Errorf("inserting menu item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLMenuItemRepository) Update(ctx context.Context, m domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET category_id = ?, name = ?, description = ?, price = ?, image = ?, stock = ?, is_available = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, m.CategoryID, m.Name, m.Description, m.Price, m.Image, m.Stock, m.IsAvailable, m.ID)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return apperrors.NewConflictError(fmt.Sprintf("menu item %q already exists", m.Name))
		}
		return fmt.Errorf("updating menu item: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("menu item with id %d not found", m.ID))
}

func (r *MySQLMenuItemRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("menu item with id %d not found", id))
}

// FindByIDsForUpdate locks the given rows in ascending id order so that
// concurrent checkouts acquire locks in the same sequence.
func (r *MySQLMenuItemRepository) FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, category_id, name, description, price, image, stock, is_available, created_at, updated_at
		FROM menu_items
		WHERE id IN (%s)
		ORDER BY id
		FOR UPDATE`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(
			&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price, &m.Image, &m.Stock, &m.IsAvailable,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}
	return items, nil
}

func (r *MySQLMenuItemRepository) UpdateStock(ctx context.Context, tx *sql.Tx, id uint, stock int) error {
	res, err := tx.ExecContext(ctx, `UPDATE menu_items SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("updating menu item stock: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("menu item with id %d not found", id))
}

// UpsertByName is used by the seeder.
func (r *MySQLMenuItemRepository) UpsertByName(ctx context.Context, m domain.MenuItem) (uint, error) {
	query := `
		INSERT INTO menu_items (category_id, name, description, price, image, stock, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), category_id = VALUES(category_id),
			description = VALUES(description), price = VALUES(price), image = VALUES(image),
			stock = VALUES(stock), is_available = VALUES(is_available)
	`
	res, err := r.db.ExecContext(ctx, query, m.CategoryID, m.Name, m.Description, m.Price, m.Image, m.Stock, m.IsAvailable)
	if err != nil {
		return 0, fmt.Errorf("upserting menu item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}
