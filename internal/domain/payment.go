package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus classifies how much of a trip's actual cost has been paid.
// It is always derived from the sum of payments against the actual total,
// never stored as an independent source of truth.
type PaymentStatus string

const (
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
)

// DerivePaymentStatus computes the payment status from the amount paid so
// far against the trip's total actual cost.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// Payment represents a single payment recorded against a trip.
type Payment struct {
	ID     string
	TripID string
	Amount decimal.Decimal
	PaidAt time.Time
}
