package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// SnapRequest describes the payment intent for one order attempt.
type SnapRequest struct {
	GatewayOrderID string
	GrossAmount    decimal.Decimal
	Customer       Customer
	Items          []Item
}

type SnapToken struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the provider's view of a transaction.
type TransactionStatus struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	TransactionID     string
	TransactionTime   *time.Time
	StatusCode        string
	GrossAmount       string
}

type Gateway interface {
	IssueSnapToken(ctx context.Context, req SnapRequest) (*SnapToken, error)
	CheckTransaction(ctx context.Context, gatewayOrderID string) (*TransactionStatus, error)
}

// Provider timestamps are reported in Western Indonesia Time.
var providerLocation = time.FixedZone("WIB", 7*60*60)

const providerTimeLayout = "2006-01-02 15:04:05"

// ParseTransactionTime parses a provider timestamp, returning nil when it
// is empty or malformed.
func ParseTransactionTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(providerTimeLayout, raw, providerLocation)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
