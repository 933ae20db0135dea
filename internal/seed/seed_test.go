package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cozycup/internal/domain"
)

type recordingStore struct {
	users      []domain.User
	categories []domain.Category
	items      []domain.MenuItem
}

func (s *recordingStore) UpsertByEmail(_ context.Context, u domain.User) (uint, error) {
	s.users = append(s.users, u)
	return uint(len(s.users)), nil
}

type categoryStore struct{ *recordingStore }

func (s categoryStore) UpsertByName(_ context.Context, c domain.Category) (uint, error) {
	s.categories = append(s.categories, c)
	return uint(len(s.categories)), nil
}

type itemStore struct{ *recordingStore }

func (s itemStore) UpsertByName(_ context.Context, m domain.MenuItem) (uint, error) {
	s.items = append(s.items, m)
	return uint(len(s.items)), nil
}

func TestDefault(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	require.NotEmpty(t, data.Users)
	assert.Equal(t, "admin", data.Users[0].Role)
	require.NotEmpty(t, data.Categories)
	for _, c := range data.Categories {
		assert.NotEmpty(t, c.Items, c.Name)
	}
}

func TestParse_RejectsBadRows(t *testing.T) {
	_, err := Parse([]byte("users:\n  - name: Nobody\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("categories:\n  - name: Drinks\n    items:\n      - {name: Free, price: \"0\"}\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("users: [unclosed"))
	assert.Error(t, err)
}

func TestSeeder_Apply(t *testing.T) {
	raw := []byte(`
users:
  - {name: Admin, email: admin@example.com, role: admin}
  - {name: Guest, email: guest@example.com, role: superuser}
categories:
  - name: Drinks
    items:
      - {name: Latte, price: "25000.00", stock: 10}
      - {name: Mocha, price: "27000.50", stock: 0, available: false}
`)
	data, err := Parse(raw)
	require.NoError(t, err)

	store := &recordingStore{}
	s := NewSeeder(store, categoryStore{store}, itemStore{store}, zap.NewNop())
	require.NoError(t, s.Apply(context.Background(), data))

	require.Len(t, store.users, 2)
	assert.Equal(t, domain.RoleAdmin, store.users[0].Role)
	assert.Equal(t, domain.RoleCustomer, store.users[1].Role)
	assert.Nil(t, store.users[0].Phone)

	require.Len(t, store.categories, 1)
	assert.True(t, store.categories[0].IsActive)

	require.Len(t, store.items, 2)
	assert.Equal(t, uint(1), store.items[0].CategoryID)
	assert.True(t, store.items[0].IsAvailable)
	assert.False(t, store.items[1].IsAvailable)
	assert.True(t, decimal.RequireFromString("27000.5").Equal(store.items[1].Price))
}
