package menu

import "github.com/shopspring/decimal"

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
}

// MenuItemRequest serves both create and partial update; on update only
// the fields present in the body are changed.
type MenuItemRequest struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock"`
	IsAvailable *bool            `json:"is_available"`
}
