package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// CatalogRepository reads the ticketing catalog for checkout and owns the
// one shared mutable counter, quantity_sold.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetTicketTypeWithEvent(ctx context.Context, ticketTypeID string) (domain.TicketType, domain.Event, error) {
	const query = `
SELECT t.id, t.event_id, t.name, t.description, t.price, t.quantity, t.quantity_sold,
	t.min_per_purchase, t.max_per_purchase,
	e.id, e.organizer_id, e.title, e.starts_at
FROM ticket_types t
JOIN events e ON e.id = t.event_id
WHERE t.id = $1`

	var (
		t     domain.TicketType
		e     domain.Event
		price pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query, ticketTypeID).Scan(
		&t.ID, &t.EventID, &t.Name, &t.Description, &price, &t.Quantity, &t.QuantitySold,
		&t.MinPerPurchase, &t.MaxPerPurchase,
		&e.ID, &e.OrganizerID, &e.Title, &e.StartsAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.Event{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, domain.Event{}, fmt.Errorf("get ticket type: %w", err)
	}
	t.Price = fromNumeric(price)
	return t, e, nil
}

func (r *CatalogRepository) GetOrganizer(ctx context.Context, organizerID string) (domain.Organizer, error) {
	const query = `
SELECT id, user_id, name, COALESCE(stripe_account_id, ''), stripe_charges_enabled
FROM organizers
WHERE id = $1`

	var o domain.Organizer
	err := r.pool.QueryRow(ctx, query, organizerID).Scan(
		&o.ID, &o.UserID, &o.Name, &o.StripeAccountID, &o.StripeChargesEnabled,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Organizer{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Organizer{}, domain.ErrOrganizerNotFound
		}
		return domain.Organizer{}, fmt.Errorf("get organizer: %w", err)
	}
	return o, nil
}

func (r *CatalogRepository) GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error) {
	const query = `
SELECT event_id, platform_fee_percentage, payment_processing_fee_percentage,
	payment_processing_fee_fixed, fee_payer
FROM event_ticket_settings
WHERE event_id = $1`

	var (
		s                             domain.FeeSettings
		platformPct, procPct, procFix pgtype.Numeric
		feePayer                      string
	)
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&s.EventID, &platformPct, &procPct, &procFix, &feePayer,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.FeeSettings{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.FeeSettings{}, domain.ErrFeeSettingsNotFound
		}
		return domain.FeeSettings{}, fmt.Errorf("get fee settings: %w", err)
	}
	s.PlatformFeePercentage = fromNumeric(platformPct)
	s.ProcessingFeePercentage = fromNumeric(procPct)
	s.ProcessingFeeFixed = fromNumeric(procFix)
	s.FeePayer = domain.FeePayer(feePayer)
	return s, nil
}

// IncrementSold adds quantity to the sold counter atomically at the
// storage layer, never via read-modify-write, and refuses to move past
// capacity. Callers invoke it at most once per completed sale.
func (r *CatalogRepository) IncrementSold(ctx context.Context, ticketTypeID string, quantity int) error {
	const stmt = `
UPDATE ticket_types
SET quantity_sold = quantity_sold + $2
WHERE id = $1 AND quantity_sold + $2 <= quantity`

	tag, err := r.pool.Exec(ctx, stmt, ticketTypeID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("increment sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM ticket_types WHERE id = $1)`
		var exists bool
		if err := r.pool.QueryRow(ctx, existsQuery, ticketTypeID).Scan(&exists); err != nil {
			return fmt.Errorf("check ticket type: %w", err)
		}
		if !exists {
			return domain.ErrTicketTypeNotFound
		}
		return domain.ErrInsufficientCapacity
	}
	return nil
}
