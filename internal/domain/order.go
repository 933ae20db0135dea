package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"user_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Items   []OrderItem `json:"order_items,omitempty"`
	Payment *Payment    `json:"payment,omitempty"`
	User    *User       `json:"user,omitempty"`
}

// OrderItem snapshots the unit price at order time so later menu price
// changes do not rewrite order history.
type OrderItem struct {
	ID           uint            `json:"id"`
	OrderID      uint            `json:"order_id"`
	MenuItemID   uint            `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Notes        *string         `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
}

func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal sums the subtotals of items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

const orderNumberPrefix = "ORD"

// NewOrderNumber returns ORD-YYYYMMDD-XXXXXXXXXX with a random upper-case
// segment taken from a v4 uuid.
func NewOrderNumber(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.Format("20060102"), random)
}

// GatewayOrderID derives the id sent to the payment provider. The provider
// rejects reused ids, so every token request gets a fresh unix suffix.
func GatewayOrderID(orderNumber string, now time.Time) string {
	return fmt.Sprintf("%s-%d", orderNumber, now.Unix())
}

// OrderNumberCandidates lists the order numbers a provider order reference
// may point at: the reference itself, then the reference without its
// trailing "-suffix" segment.
func OrderNumberCandidates(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	candidates := []string{ref}
	if i := strings.LastIndex(ref, "-"); i > 0 {
		candidates = append(candidates, ref[:i])
	}
	return candidates
}
