package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateOrganizer(ctx context.Context, organizer domain.Organizer) error {
	const stmt = `
INSERT INTO organizers (id, user_id, name, stripe_account_id, stripe_charges_enabled)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt,
		organizer.ID,
		organizer.UserID,
		organizer.Name,
		nullableText(organizer.StripeAccountID),
		organizer.StripeChargesEnabled,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create organizer: %w", err)
	}
	return nil
}

func (r *AdminRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, organizer_id, title, starts_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, stmt, event.ID, event.OrganizerID, event.Title, event.StartsAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrganizerNotFound
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, organizer_id, title, starts_at
FROM events
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.OrganizerID, &event.Title, &event.StartsAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *AdminRepository) CreateTicketType(ctx context.Context, ticketType domain.TicketType) error {
	const stmt = `
INSERT INTO ticket_types (id, event_id, name, description, price, quantity, min_per_purchase, max_per_purchase)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, stmt,
		ticketType.ID,
		ticketType.EventID,
		ticketType.Name,
		ticketType.Description,
		toNumeric(ticketType.Price),
		ticketType.Quantity,
		ticketType.MinPerPurchase,
		ticketType.MaxPerPurchase,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, eventID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}

	const query = `
SELECT id, event_id, name, description, price, quantity, quantity_sold, min_per_purchase, max_per_purchase
FROM ticket_types
WHERE event_id = $1
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var ticketTypes []domain.TicketType
	for rows.Next() {
		var (
			t     domain.TicketType
			price pgtype.Numeric
		)
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Description, &price,
			&t.Quantity, &t.QuantitySold, &t.MinPerPurchase, &t.MaxPerPurchase); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		t.Price = fromNumeric(price)
		ticketTypes = append(ticketTypes, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate ticket types: %w", rows.Err())
	}
	return ticketTypes, nil
}

func (r *AdminRepository) UpsertFeeSettings(ctx context.Context, settings domain.FeeSettings) error {
	const stmt = `
INSERT INTO event_ticket_settings (event_id, platform_fee_percentage, payment_processing_fee_percentage, payment_processing_fee_fixed, fee_payer)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (event_id) DO UPDATE SET
	platform_fee_percentage = EXCLUDED.platform_fee_percentage,
	payment_processing_fee_percentage = EXCLUDED.payment_processing_fee_percentage,
	payment_processing_fee_fixed = EXCLUDED.payment_processing_fee_fixed,
	fee_payer = EXCLUDED.fee_payer`

	_, err := r.pool.Exec(ctx, stmt,
		settings.EventID,
		toNumeric(settings.PlatformFeePercentage),
		toNumeric(settings.ProcessingFeePercentage),
		toNumeric(settings.ProcessingFeeFixed),
		string(settings.FeePayer),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("upsert fee settings: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error) {
	catalog := CatalogRepository{pool: r.pool}
	return catalog.GetFeeSettings(ctx, eventID)
}
