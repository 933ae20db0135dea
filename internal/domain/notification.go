package domain

import (
	"fmt"
	"strings"
	"time"
)

type Notification struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrderNotification builds the message admins receive for a new order,
// e.g. "Order from Ana: Latte × 2, Croissant × 1".
func NewOrderNotification(adminID uint, order Order, customerName string) Notification {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s × %d", item.MenuItemName, item.Quantity))
	}
	return Notification{
		UserID:  adminID,
		Title:   fmt.Sprintf("New order #%d", order.ID),
		Message: fmt.Sprintf("Order from %s: %s", customerName, strings.Join(lines, ", ")),
	}
}
