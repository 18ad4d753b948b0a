package domain

import "time"

// Event represents a ticketed event published by an organizer.
type Event struct {
	ID          string
	OrganizerID string
	Title       string
	StartsAt    time.Time
}

// Organizer owns events and receives the seller side of each charge
// through its connected payment account.
type Organizer struct {
	ID                   string
	UserID               string
	Name                 string
	StripeAccountID      string
	StripeChargesEnabled bool
}
