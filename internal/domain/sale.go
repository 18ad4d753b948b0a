package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusFailed    SaleStatus = "failed"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// Terminal reports whether a status accepts no further transitions.
// Refunded is reachable from completed, so completed is not terminal
// for the refund path but is for everything else.
func (s SaleStatus) Terminal() bool {
	switch s {
	case SaleStatusCancelled, SaleStatusFailed, SaleStatusRefunded:
		return true
	}
	return false
}

// Sale is one ticket-purchase attempt and its lifecycle record. A row is
// created in pending before any money moves and is only mutated through
// conditional status transitions.
type Sale struct {
	ID           string
	EventID      string
	TicketTypeID string
	UserID       string
	Quantity     int

	// Monetary fields are captured at purchase time and never re-derived.
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
	PlatformFee   decimal.Decimal
	ProcessingFee decimal.Decimal
	TotalAmount   decimal.Decimal

	// Buyer contact snapshot for receipts, independent of later profile edits.
	BuyerName  string
	BuyerEmail string
	BuyerPhone string

	PaymentStatus           SaleStatus
	StripeCheckoutSessionID string
	StripePaymentIntentID   string

	CreatedAt   time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time
}

// SaleTransition describes a conditional status change. Nil stamp fields
// leave the stored value untouched.
type SaleTransition struct {
	To              SaleStatus
	PaidAt          *time.Time
	CancelledAt     *time.Time
	RefundedAt      *time.Time
	PaymentIntentID *string
}
