package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cozycup/internal/domain"
	"cozycup/internal/dto"
	apperrors "cozycup/internal/errors"
)

type mockMenuItemRepository struct {
	FindByIDsForUpdateFunc func(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error)
	UpdateStockFunc        func(ctx context.Context, tx *sql.Tx, id uint, stock int) error
}

func (m *mockMenuItemRepository) FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error) {
	return m.FindByIDsForUpdateFunc(ctx, tx, ids)
}

func (m *mockMenuItemRepository) UpdateStock(ctx context.Context, tx *sql.Tx, id uint, stock int) error {
	return m.UpdateStockFunc(ctx, tx, id, stock)
}

type mockOrderRepository struct {
	InsertFunc func(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
}

func (m *mockOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
	return m.InsertFunc(ctx, tx, order)
}

type mockOrderItemRepository struct {
	InsertManyFunc func(ctx context.Context, tx *sql.Tx, orderID uint, items []domain.OrderItem) error
}

func (m *mockOrderItemRepository) InsertMany(ctx context.Context, tx *sql.Tx, orderID uint, items []domain.OrderItem) error {
	return m.InsertManyFunc(ctx, tx, orderID, items)
}

type mockPaymentRepository struct {
	InsertFunc func(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error)
}

func (m *mockPaymentRepository) Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error) {
	return m.InsertFunc(ctx, tx, p)
}

type mockUserRepository struct {
	FindByIDTxFunc func(ctx context.Context, tx *sql.Tx, id uint) (*domain.User, error)
	ListAdminsFunc func(ctx context.Context, tx *sql.Tx) ([]domain.User, error)
}

func (m *mockUserRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.User, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

func (m *mockUserRepository) ListAdmins(ctx context.Context, tx *sql.Tx) ([]domain.User, error) {
	return m.ListAdminsFunc(ctx, tx)
}

type mockNotificationRepository struct {
	InsertManyFunc func(ctx context.Context, tx *sql.Tx, notifications []domain.Notification) error
}

func (m *mockNotificationRepository) InsertMany(ctx context.Context, tx *sql.Tx, notifications []domain.Notification) error {
	return m.InsertManyFunc(ctx, tx, notifications)
}

// recorder captures every write the checkout makes.
type recorder struct {
	order         *domain.Order
	items         []domain.OrderItem
	stock         map[uint]int
	payment       *domain.Payment
	notifications []domain.Notification
}

func (r *recorder) writes() int {
	n := len(r.items) + len(r.stock) + len(r.notifications)
	if r.order != nil {
		n++
	}
	if r.payment != nil {
		n++
	}
	return n
}

func kopiSusu() domain.MenuItem {
	return domain.MenuItem{ID: 1, Name: "Kopi Susu", Price: decimal.NewFromInt(15000), Stock: 10, IsAvailable: true}
}

func newTestCheckoutService(menu []domain.MenuItem, strict bool, rec *recorder) *CheckoutService {
	rec.stock = map[uint]int{}
	s := NewCheckoutService(
		&mockMenuItemRepository{
			FindByIDsForUpdateFunc: func(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error) {
				var out []domain.MenuItem
				for _, m := range menu {
					for _, id := range ids {
						if m.ID == id {
							out = append(out, m)
						}
					}
				}
				return out, nil
			},
			UpdateStockFunc: func(ctx context.Context, tx *sql.Tx, id uint, stock int) error {
				rec.stock[id] = stock
				return nil
			},
		},
		&mockOrderRepository{InsertFunc: func(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
			rec.order = &order
			return 42, nil
		}},
		&mockOrderItemRepository{InsertManyFunc: func(ctx context.Context, tx *sql.Tx, orderID uint, items []domain.OrderItem) error {
			rec.items = items
			return nil
		}},
		&mockPaymentRepository{InsertFunc: func(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error) {
			rec.payment = &p
			return 7, nil
		}},
		&mockUserRepository{
			FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id uint) (*domain.User, error) {
				if id != customer.ID {
					return nil, apperrors.NewNotFoundError("user not found")
				}
				stored := customer
				return &stored, nil
			},
			ListAdminsFunc: func(ctx context.Context, tx *sql.Tx) ([]domain.User, error) {
				return []domain.User{{ID: 100, Name: "Admin", Email: "admin@cozycup.local", Role: domain.RoleAdmin}}, nil
			},
		},
		&mockNotificationRepository{InsertManyFunc: func(ctx context.Context, tx *sql.Tx, n []domain.Notification) error {
			rec.notifications = n
			return nil
		}},
		strict,
		zap.NewNop(),
	)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	return s
}

var customer = domain.User{ID: 5, Name: "Sari", Email: "sari@example.com", Role: domain.RoleCustomer}

func TestPlaceOrder_CashCart(t *testing.T) {
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu()}, false, rec)
	price := decimal.NewFromInt(15000)

	res, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 2, Price: &price}},
		PaymentMethod: "cash",
	}, []uint{1})
	require.NoError(t, err)

	order := res.Order
	assert.Equal(t, uint(42), order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(30000)))
	assert.Regexp(t, `^ORD-20240101-[0-9A-F]{10}$`, order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	require.Len(t, rec.items, 1)
	assert.True(t, rec.items[0].Subtotal.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, uint(42), rec.items[0].OrderID)
	assert.Equal(t, 8, rec.stock[1])

	require.NotNil(t, rec.payment)
	assert.Equal(t, domain.PaymentStatusPending, rec.payment.Status)
	assert.Equal(t, "cash", rec.payment.PaymentMethod)
	assert.True(t, rec.payment.Amount.Equal(order.TotalAmount))
	assert.Equal(t, uint(7), order.Payment.ID)

	assert.Empty(t, rec.notifications)
	assert.Empty(t, res.Admins)
}

func TestPlaceOrder_MissingMenuItemWritesNothing(t *testing.T) {
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu()}, false, rec)

	_, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 1}, {MenuItemID: 99, Quantity: 1}},
		PaymentMethod: "cash",
	}, []uint{1, 99})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Zero(t, rec.writes())
}

func TestPlaceOrder_UnavailableItem(t *testing.T) {
	item := kopiSusu()
	item.IsAvailable = false
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{item}, false, rec)

	_, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 1}},
		PaymentMethod: "cash",
	}, []uint{1})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Zero(t, rec.writes())
}

func TestPlaceOrder_ClampsStockByDefault(t *testing.T) {
	item := kopiSusu()
	item.Stock = 3
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{item}, false, rec)

	_, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 1, Quantity: 2}},
		PaymentMethod: "cash",
	}, []uint{1})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.stock[1])
	assert.Len(t, rec.items, 2)
}

func TestPlaceOrder_StrictStockConflicts(t *testing.T) {
	item := kopiSusu()
	item.Stock = 1
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{item}, true, rec)

	_, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 2}},
		PaymentMethod: "cash",
	}, []uint{1})

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Zero(t, rec.writes())
}

func TestPlaceOrder_ServerPriceWins(t *testing.T) {
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu()}, false, rec)
	cheap := decimal.NewFromInt(1)

	res, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 1, Price: &cheap}},
		PaymentMethod: "qris",
	}, []uint{1})
	require.NoError(t, err)
	assert.True(t, res.Order.TotalAmount.Equal(decimal.NewFromInt(15000)))
}

func TestPlaceOrder_NotifiesAdmins(t *testing.T) {
	latte := domain.MenuItem{ID: 2, Name: "Latte", Price: decimal.NewFromInt(20000), Stock: 5, IsAvailable: true}
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu(), latte}, false, rec)

	res, err := s.PlaceOrder(context.Background(), nil, customer, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 2, Quantity: 1}, {MenuItemID: 1, Quantity: 2}},
		PaymentMethod: "midtrans",
		NotifyAdmins:  true,
	}, []uint{1, 2})
	require.NoError(t, err)

	require.Len(t, rec.notifications, 1)
	n := rec.notifications[0]
	assert.Equal(t, uint(100), n.UserID)
	assert.Equal(t, "New order #42", n.Title)
	assert.Equal(t, "Order from Sari: Latte × 1, Kopi Susu × 2", n.Message)
	assert.Len(t, res.Admins, 1)
	assert.True(t, res.Order.TotalAmount.Equal(decimal.NewFromInt(50000)))
}

func TestPlaceOrder_NotificationUsesStoredName(t *testing.T) {
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu()}, false, rec)
	// token without a name claim
	anonymous := domain.User{ID: customer.ID, Role: domain.RoleCustomer}

	res, err := s.PlaceOrder(context.Background(), nil, anonymous, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 2}},
		PaymentMethod: "midtrans",
		NotifyAdmins:  true,
	}, []uint{1})
	require.NoError(t, err)

	require.Len(t, rec.notifications, 1)
	assert.Equal(t, "Order from Sari: Kopi Susu × 2", rec.notifications[0].Message)
	assert.Equal(t, "Sari", res.Customer.Name)
}

func TestPlaceOrder_UnknownBuyerRollsBack(t *testing.T) {
	rec := &recorder{}
	s := newTestCheckoutService([]domain.MenuItem{kopiSusu()}, false, rec)

	_, err := s.PlaceOrder(context.Background(), nil, domain.User{ID: 77}, dto.CheckoutRequest{
		Lines:         []dto.CheckoutLine{{MenuItemID: 1, Quantity: 1}},
		PaymentMethod: "midtrans",
		NotifyAdmins:  true,
	}, []uint{1})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Empty(t, rec.notifications)
}
