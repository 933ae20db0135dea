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

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `id, user_id, order_number, total_amount, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
	query := `INSERT INTO orders (user_id, order_number, total_amount, status) VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query, order.UserID, order.OrderNumber, order.TotalAmount, order.Status)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("order number %s already exists", order.OrderNumber))
		}
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return r.findOne(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id,
		fmt.Sprintf("order with id %d not found", id))
}

func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	return r.findOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id,
		fmt.Sprintf("order with id %d not found", id))
}

// FindByOrderNumber locks the row when called inside a transaction.
func (r *MySQLOrderRepository) FindByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = ?`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	return r.findOne(ctx, mysql.Conn(r.db, tx), query, orderNumber,
		fmt.Sprintf("order %s not found", orderNumber))
}

func (r *MySQLOrderRepository) findOne(ctx context.Context, q mysql.DBTX, query string, arg any, notFound string) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return &o, nil
}

// List returns orders newest first, restricted to userID when it is set.
func (r *MySQLOrderRepository) List(ctx context.Context, userID *uint) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	return orders, nil
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`

	result, err := mysql.Conn(r.db, tx).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}
