package service

import (
	"context"
	"database/sql"
	"fmt"

	"cozycup/internal/domain"
	apperrors "cozycup/internal/errors"
	"cozycup/internal/infrastructure/mysql"
	"cozycup/internal/payment/gateway"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn mysql.TxFunc) error {
	return fn(ctx, nil)
}

// lockingTransactor hands out a non-nil tx so fakes can tell locking reads
// from plain ones. The tx is never used.
type lockingTransactor struct{}

func (lockingTransactor) WithinTx(ctx context.Context, fn mysql.TxFunc) error {
	return fn(ctx, new(sql.Tx))
}

// lockLog records the rows read inside a transaction, in order.
type lockLog struct {
	rows []string
}

func (l *lockLog) record(tx *sql.Tx, row string) {
	if l != nil && tx != nil {
		l.rows = append(l.rows, row)
	}
}

type fakeOrders struct {
	byID   map[uint]*domain.Order
	writes int
	locks  *lockLog
}

func newFakeOrders(orders ...domain.Order) *fakeOrders {
	f := &fakeOrders{byID: map[uint]*domain.Order{}}
	for i := range orders {
		o := orders[i]
		f.byID[o.ID] = &o
	}
	return f
}

func (f *fakeOrders) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	f.locks.record(tx, "order")
	return f.FindByID(ctx, id)
}

func (f *fakeOrders) FindByOrderNumber(ctx context.Context, tx *sql.Tx, number string) (*domain.Order, error) {
	f.locks.record(tx, "order")
	for _, o := range f.byID {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError("order not found")
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error {
	o, ok := f.byID[id]
	if !ok {
		return apperrors.NewNotFoundError("order not found")
	}
	o.Status = status
	f.writes++
	return nil
}

type fakePayments struct {
	byID   map[uint]*domain.Payment
	nextID uint
	writes int
	locks  *lockLog
}

func newFakePayments(payments ...domain.Payment) *fakePayments {
	f := &fakePayments{byID: map[uint]*domain.Payment{}, nextID: 100}
	for i := range payments {
		p := payments[i]
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakePayments) Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error) {
	for _, existing := range f.byID {
		if existing.OrderID == p.OrderID {
			return 0, apperrors.NewConflictError("payment already exists for this order")
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.byID[p.ID] = &p
	f.writes++
	return p.ID, nil
}

func (f *fakePayments) FindByID(ctx context.Context, tx *sql.Tx, id uint) (*domain.Payment, error) {
	f.locks.record(tx, "payment")
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment with id %d not found", id))
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) FindByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) (*domain.Payment, error) {
	f.locks.record(tx, "payment")
	for _, p := range f.byID {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment for order %d not found", orderID))
}

func (f *fakePayments) List(ctx context.Context, userID *uint) ([]domain.Payment, error) {
	out := []domain.Payment{}
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePayments) Update(ctx context.Context, tx *sql.Tx, p domain.Payment) error {
	if _, ok := f.byID[p.ID]; !ok {
		return apperrors.NewNotFoundError("payment not found")
	}
	f.byID[p.ID] = &p
	f.writes++
	return nil
}

func (f *fakePayments) SetSnapToken(ctx context.Context, id uint, token, gatewayOrderID string) error {
	p, ok := f.byID[id]
	if !ok {
		return apperrors.NewNotFoundError("payment not found")
	}
	p.SnapToken = &token
	p.GatewayOrderID = &gatewayOrderID
	f.writes++
	return nil
}

type fakeUsers struct {
	byID map[uint]domain.User
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &u, nil
}

type mockGateway struct {
	IssueSnapTokenFunc   func(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapToken, error)
	CheckTransactionFunc func(ctx context.Context, gatewayOrderID string) (*gateway.TransactionStatus, error)
}

func (m *mockGateway) IssueSnapToken(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapToken, error) {
	return m.IssueSnapTokenFunc(ctx, req)
}

func (m *mockGateway) CheckTransaction(ctx context.Context, gatewayOrderID string) (*gateway.TransactionStatus, error) {
	return m.CheckTransactionFunc(ctx, gatewayOrderID)
}

func strPtr(s string) *string { return &s }
