package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cozycup/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) InsertMany(ctx context.Context, tx *sql.Tx, orderID uint, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	placeholders := make([]string, len(items))
	args := make([]any, 0, len(items)*6)
	for i, item := range items {
		placeholders[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args, orderID, item.MenuItemID, item.Quantity, item.Price, item.Subtotal, item.Notes)
	}
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price, subtotal, notes) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order items: %w", err)
	}
	return nil
}

// ListByOrderIDs groups the items of the given orders by order id.
func (r *MySQLOrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.OrderItem, error) {
	out := make(map[uint][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT oi.id, oi.order_id, oi.menu_item_id, m.name, oi.quantity, oi.price, oi.subtotal, oi.notes, oi.created_at
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.order_id IN (%s)
		ORDER BY oi.order_id, oi.id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.MenuItemID, &item.MenuItemName, &item.Quantity,
			&item.Price, &item.Subtotal, &item.Notes, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}
	return out, nil
}
