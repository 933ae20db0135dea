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

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.FindByIDTx(ctx, nil, id)
}

// FindByIDTx reads through tx when one is given.
func (r *MySQLUserRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.User, error) {
	query := `SELECT id, name, email, phone, role FROM users WHERE id = ?`

	var u domain.User
	err := mysql.Conn(r.db, tx).QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return &u, nil
}

// ListAdmins reads through tx when one is given so the fan-out sees the same
// snapshot as the rest of the checkout.
func (r *MySQLUserRepository) ListAdmins(ctx context.Context, tx *sql.Tx) ([]domain.User, error) {
	query := `SELECT id, name, email, phone, role FROM users WHERE role = ? ORDER BY id`

	rows, err := mysql.Conn(r.db, tx).QueryContext(ctx, query, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("querying admins: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role); err != nil {
			return nil, fmt.Errorf("scanning admin: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admins: %w", err)
	}
	return users, nil
}

// UpsertByEmail inserts the user or refreshes name, phone and role of the
// existing row with the same email.
func (r *MySQLUserRepository) UpsertByEmail(ctx context.Context, u domain.User) (uint, error) {
	query := `
		INSERT INTO users (name, email, phone, role) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), name = VALUES(name), phone = VALUES(phone), role = VALUES(role)
	`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.Phone, u.Role)
	if err != nil {
		return 0, fmt.Errorf("upserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}
