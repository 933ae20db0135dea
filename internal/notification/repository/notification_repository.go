package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

// InsertMany writes all notifications with a single statement inside tx.
func (r *MySQLNotificationRepository) InsertMany(ctx context.Context, tx *sql.Tx, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	placeholders := make([]string, len(notifications))
	args := make([]any, 0, len(notifications)*3)
	for i, n := range notifications {
		placeholders[i] = "(?, ?, ?)"
		args = append(args, n.UserID, n.Title, n.Message)
	}
	query := `INSERT INTO notifications (user_id, title, message) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting notifications: %w", err)
	}
	return nil
}

func (r *MySQLNotificationRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}
	return notifications, nil
}

// MarkRead only touches notifications owned by userID; anything else is
// reported as not found.
func (r *MySQLNotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("notification with id %d not found", id))
	}
	return nil
}
