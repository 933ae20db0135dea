package dto

import (
	"github.com/shopspring/decimal"

	"cozycup/internal/domain"
)

// CheckoutLine is one cart line. Price is what the client displayed; the
// stored price always comes from the menu.
type CheckoutLine struct {
	MenuItemID uint
	Quantity   int
	Price      *decimal.Decimal
	Notes      *string
}

type CheckoutRequest struct {
	Lines         []CheckoutLine
	PaymentMethod string
	NotifyAdmins  bool

	// LinesField is the body key the lines came from, used in validation
	// details. Empty means "items".
	LinesField string
}

// CheckoutResult carries Customer as stored in the users table whenever
// admins are notified.
type CheckoutResult struct {
	Order     *domain.Order
	Customer  domain.User
	Admins    []domain.User
	SnapToken string
}
