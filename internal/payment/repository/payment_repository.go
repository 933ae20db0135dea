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

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

const paymentColumns = `p.id, p.order_id, p.amount, p.payment_method, p.status, p.snap_token, p.gateway_order_id,
	p.transaction_id, p.provider_status, p.provider_status_at, p.paid_at, p.created_at, p.updated_at`

func scanPayment(row interface{ Scan(...any) error }, extra ...any) (domain.Payment, error) {
	var p domain.Payment
	dest := []any{
		&p.ID, &p.OrderID, &p.Amount, &p.PaymentMethod, &p.Status, &p.SnapToken, &p.GatewayOrderID,
		&p.TransactionID, &p.ProviderStatus, &p.ProviderStatusAt, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

// Insert reports a second payment for the same order as a conflict.
func (r *MySQLPaymentRepository) Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error) {
	query := `
		INSERT INTO payments (order_id, amount, payment_method, status, snap_token, gateway_order_id, transaction_id, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := mysql.Conn(r.db, tx).ExecContext(ctx, query,
		p.OrderID, p.Amount, p.PaymentMethod, p.Status, p.SnapToken, p.GatewayOrderID, p.TransactionID, p.PaidAt)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictError("payment already exists for this order")
		}
		return 0, fmt.Errorf("inserting payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLPaymentRepository) FindByID(ctx context.Context, tx *sql.Tx, id uint) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = ?`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	return r.findOne(ctx, mysql.Conn(r.db, tx), query, id, fmt.Sprintf("payment with id %d not found", id))
}

// FindByOrderID locks the row when called inside a transaction.
func (r *MySQLPaymentRepository) FindByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.order_id = ?`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	return r.findOne(ctx, mysql.Conn(r.db, tx), query, orderID, fmt.Sprintf("payment for order %d not found", orderID))
}

func (r *MySQLPaymentRepository) findOne(ctx context.Context, q mysql.DBTX, query string, arg any, notFound string) (*domain.Payment, error) {
	p, err := scanPayment(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment: %w", err)
	}
	return &p, nil
}

func (r *MySQLPaymentRepository) FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint]domain.Payment, error) {
	out := make(map[uint]domain.Payment, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.order_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		out[p.OrderID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}
	return out, nil
}

// List returns payments newest first together with a summary of their
// order, restricted to orders of userID when it is set.
func (r *MySQLPaymentRepository) List(ctx context.Context, userID *uint) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `, o.user_id, o.order_number, o.total_amount, o.status
		FROM payments p
		JOIN orders o ON o.id = p.order_id`
	var args []any
	if userID != nil {
		query += ` WHERE o.user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var o domain.Order
		p, err := scanPayment(rows, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.Status)
		if err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		o.ID = p.OrderID
		p.Order = &o
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}
	return payments, nil
}

// Update writes the mutable payment fields.
func (r *MySQLPaymentRepository) Update(ctx context.Context, tx *sql.Tx, p domain.Payment) error {
	query := `
		UPDATE payments
		SET payment_method = ?, status = ?, transaction_id = ?, provider_status = ?, provider_status_at = ?, paid_at = ?
		WHERE id = ?
	`
	res, err := mysql.Conn(r.db, tx).ExecContext(ctx, query,
		p.PaymentMethod, p.Status, p.TransactionID, p.ProviderStatus, p.ProviderStatusAt, p.PaidAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating payment: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("payment with id %d not found", p.ID))
}

func (r *MySQLPaymentRepository) SetSnapToken(ctx context.Context, id uint, token, gatewayOrderID string) error {
	query := `UPDATE payments SET snap_token = ?, gateway_order_id = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, token, gatewayOrderID, id)
	if err != nil {
		return fmt.Errorf("storing snap token: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("payment with id %d not found", id))
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
