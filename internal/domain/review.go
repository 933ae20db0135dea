package domain

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	MenuItemID uint      `json:"menu_item_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	UserName     string `json:"user_name,omitempty"`
	MenuItemName string `json:"menu_item_name,omitempty"`
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
