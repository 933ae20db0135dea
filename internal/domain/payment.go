package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// DefaultGatewayMethod is recorded when the provider does not report a payment type.
const DefaultGatewayMethod = "midtrans"

const PaymentMethodCash = "cash"

var paymentMethods = map[string]struct{}{
	"cash":          {},
	"transfer":      {},
	"ewallet":       {},
	"card":          {},
	"qris":          {},
	"gopay":         {},
	"bank_transfer": {},
	"shopeepay":     {},
	"credit_card":   {},
	"midtrans":      {},
}

func ValidPaymentMethod(method string) bool {
	_, ok := paymentMethods[method]
	return ok
}

type Payment struct {
	ID               uint            `json:"id"`
	OrderID          uint            `json:"order_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	Status           PaymentStatus   `json:"status"`
	SnapToken        *string         `json:"snap_token"`
	GatewayOrderID   *string         `json:"gateway_order_id"`
	TransactionID    *string         `json:"transaction_id"`
	ProviderStatus   *string         `json:"provider_status"`
	ProviderStatusAt *time.Time      `json:"provider_status_at"`
	PaidAt           *time.Time      `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Order *Order `json:"order,omitempty"`
}

func (p Payment) HasSnapToken() bool {
	return p.SnapToken != nil && *p.SnapToken != ""
}

// TransactionStatus is the provider's transaction vocabulary.
type TransactionStatus string

const (
	TransactionSettlement TransactionStatus = "settlement"
	TransactionCapture    TransactionStatus = "capture"
	TransactionPending    TransactionStatus = "pending"
	TransactionDeny       TransactionStatus = "deny"
	TransactionExpire     TransactionStatus = "expire"
	TransactionCancel     TransactionStatus = "cancel"
)

func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch ts := TransactionStatus(s); ts {
	case TransactionSettlement, TransactionCapture, TransactionPending,
		TransactionDeny, TransactionExpire, TransactionCancel:
		return ts, true
	}
	return "", false
}

const FraudStatusAccept = "accept"

// PaymentOutcome is the local effect of a provider status.
type PaymentOutcome int

const (
	OutcomeIgnore PaymentOutcome = iota
	OutcomePending
	OutcomePaid
	OutcomeFailed
)

func (o PaymentOutcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomePaid:
		return "paid"
	case OutcomeFailed:
		return "failed"
	}
	return "ignore"
}

// PaymentStatus returns the payment status an outcome writes. It is only
// meaningful for outcomes other than OutcomeIgnore.
func (o PaymentOutcome) PaymentStatus() PaymentStatus {
	switch o {
	case OutcomePaid:
		return PaymentStatusPaid
	case OutcomeFailed:
		return PaymentStatusFailed
	}
	return PaymentStatusPending
}

// OrderStatus returns the order status that follows a payment outcome.
func (o PaymentOutcome) OrderStatus() OrderStatus {
	switch o {
	case OutcomePaid:
		return OrderStatusProcessing
	case OutcomeFailed:
		return OrderStatusFailed
	}
	return OrderStatusPending
}

// ResolveTransaction maps a provider status onto a local outcome. A capture
// counts as paid only once the fraud check accepted it; unknown statuses are
// ignored rather than rejected.
func ResolveTransaction(status TransactionStatus, fraudStatus string) PaymentOutcome {
	switch status {
	case TransactionSettlement:
		return OutcomePaid
	case TransactionCapture:
		if fraudStatus == FraudStatusAccept {
			return OutcomePaid
		}
		return OutcomeIgnore
	case TransactionPending:
		return OutcomePending
	case TransactionDeny, TransactionExpire, TransactionCancel:
		return OutcomeFailed
	}
	return OutcomeIgnore
}

// MatchesStatusCode reports whether the provider's status_code agrees with
// the outcome. The code is covered by the notification signature while the
// transaction status is not, so a mismatch means the body was altered.
// Ignored outcomes are never checked.
func (o PaymentOutcome) MatchesStatusCode(statusCode string) bool {
	switch o {
	case OutcomePaid:
		return statusCode == "200"
	case OutcomePending:
		return statusCode == "201"
	case OutcomeFailed:
		// expiry is reported as 407 by some payment types
		return statusCode == "202" || statusCode == "407"
	}
	return true
}

// Supersedes reports whether outcome may overwrite the current payment
// status. Paid is terminal except for repeats of paid; failed may still be
// overwritten by a late paid but never by pending.
func (o PaymentOutcome) Supersedes(current PaymentStatus) bool {
	switch current {
	case PaymentStatusPaid:
		return o == OutcomePaid
	case PaymentStatusFailed:
		return o != OutcomePending
	}
	return true
}
