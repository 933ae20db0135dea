package dto

import "cozycup/internal/domain"

// CheckoutResponse carries the snap token next to the envelope data so the
// client can open the payment widget straight away.
type CheckoutResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Data      *domain.Order `json:"data"`
	SnapToken *string       `json:"snap_token"`
	TraceID   string        `json:"traceId,omitempty"`
}

type OrderDetail struct {
	Order     *domain.Order `json:"order"`
	SnapToken *string       `json:"snap_token"`
}
