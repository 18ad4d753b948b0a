package domain

import "errors"

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrOrganizerNotFound      = errors.New("organizer not found")
	ErrTicketTypeNotFound     = errors.New("ticket type not found")
	ErrFeeSettingsNotFound    = errors.New("ticket settings not found for this event")
	ErrSaleNotFound           = errors.New("sale not found")
	ErrSaleNotOwned           = errors.New("sale does not belong to current user")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInvalidCapacity        = errors.New("invalid capacity")
	ErrInvalidFeePayer        = errors.New("invalid fee payer")
	ErrInvalidID              = errors.New("invalid id")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrOwnEventPurchase       = errors.New("organizers cannot buy tickets to their own events")
	ErrPayoutsNotConfigured   = errors.New("organizer has not configured payouts")
	ErrEventTitleRequired     = errors.New("event title required")
	ErrTicketTypeNameRequired = errors.New("ticket type name required")
	ErrOrganizerNameRequired  = errors.New("organizer name required")
)
