package service

import (
	"context"
	"database/sql"

	"cozycup/internal/domain"
	"cozycup/internal/infrastructure/mysql"
	"cozycup/internal/payment/gateway"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn mysql.TxFunc) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	FindByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error)
	FindByID(ctx context.Context, tx *sql.Tx, id uint) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) (*domain.Payment, error)
	List(ctx context.Context, userID *uint) ([]domain.Payment, error)
	Update(ctx context.Context, tx *sql.Tx, p domain.Payment) error
	SetSnapToken(ctx context.Context, id uint, token, gatewayOrderID string) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

type Gateway interface {
	IssueSnapToken(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapToken, error)
	CheckTransaction(ctx context.Context, gatewayOrderID string) (*gateway.TransactionStatus, error)
}
