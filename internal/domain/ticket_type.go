package domain

import "github.com/shopspring/decimal"

// TicketType represents a purchasable ticket category for an event.
// QuantitySold only ever moves through the store's atomic increment.
type TicketType struct {
	ID             string
	EventID        string
	Name           string
	Description    string
	Price          decimal.Decimal
	Quantity       int
	QuantitySold   int
	MinPerPurchase int
	MaxPerPurchase int
}

// Remaining reports how many units are still sellable.
func (t TicketType) Remaining() int {
	return t.Quantity - t.QuantitySold
}
