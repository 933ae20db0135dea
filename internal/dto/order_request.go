package dto

import "github.com/shopspring/decimal"

type CartLine struct {
	MenuItemID uint             `json:"menu_item_id"`
	Quantity   int              `json:"quantity"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// CheckoutCartRequest is the body of POST /checkout.
type CheckoutCartRequest struct {
	Cart          []CartLine `json:"cart"`
	PaymentMethod string     `json:"payment_method"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Items         []CartLine `json:"items"`
	PaymentMethod string     `json:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (l CartLine) ToCheckoutLine() CheckoutLine {
	return CheckoutLine{
		MenuItemID: l.MenuItemID,
		Quantity:   l.Quantity,
		Price:      l.Price,
		Notes:      l.Notes,
	}
}
