package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// SaleRepository is the persistent sale ledger. All status mutations go
// through conditional updates keyed on the current payment_status; the
// row-level atomicity of that compare-and-set is the only concurrency
// mechanism the lifecycle needs.
type SaleRepository struct {
	pool *pgxpool.Pool
}

func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

func (r *SaleRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const saleColumns = `
id, event_id, ticket_type_id, user_id, quantity,
unit_price, subtotal, platform_fee, payment_processing_fee, total_amount,
buyer_name, buyer_email, buyer_phone,
payment_status, stripe_checkout_session_id, stripe_payment_intent_id,
created_at, paid_at, cancelled_at, refunded_at`

func (r *SaleRepository) CreatePendingSale(ctx context.Context, sale domain.Sale) error {
	const stmt = `
INSERT INTO ticket_sales (
	id, event_id, ticket_type_id, user_id, quantity,
	unit_price, subtotal, platform_fee, payment_processing_fee, total_amount,
	buyer_name, buyer_email, buyer_phone, payment_status, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, stmt,
		sale.ID,
		sale.EventID,
		sale.TicketTypeID,
		sale.UserID,
		sale.Quantity,
		toNumeric(sale.UnitPrice),
		toNumeric(sale.Subtotal),
		toNumeric(sale.PlatformFee),
		toNumeric(sale.ProcessingFee),
		toNumeric(sale.TotalAmount),
		sale.BuyerName,
		sale.BuyerEmail,
		nullableText(sale.BuyerPhone),
		string(domain.SaleStatusPending),
		sale.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTicketTypeNotFound
		}
		return fmt.Errorf("create pending sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) SetCheckoutSession(ctx context.Context, saleID, sessionID string) error {
	const stmt = `UPDATE ticket_sales SET stripe_checkout_session_id = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, saleID, sessionID)
	if err != nil {
		return fmt.Errorf("set checkout session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

func (r *SaleRepository) GetSale(ctx context.Context, saleID string) (domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM ticket_sales WHERE id = $1`

	sale, err := r.scanSale(r.queryRow(ctx, query, saleID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Sale{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Sale{}, domain.ErrSaleNotFound
		}
		return domain.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

func (r *SaleRepository) GetSaleBySessionID(ctx context.Context, sessionID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM ticket_sales WHERE stripe_checkout_session_id = $1`

	sale, err := r.scanSale(r.queryRow(ctx, query, sessionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale by session: %w", err)
	}
	return &sale, nil
}

func (r *SaleRepository) GetSaleByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM ticket_sales WHERE stripe_payment_intent_id = $1`

	sale, err := r.scanSale(r.queryRow(ctx, query, paymentIntentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale by payment intent: %w", err)
	}
	return &sale, nil
}

// TransitionSale applies the status change only when the current status
// is in from. It reports whether the write applied; a transition that no
// longer matches is not an error.
func (r *SaleRepository) TransitionSale(ctx context.Context, saleID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error) {
	const stmt = `
UPDATE ticket_sales
SET payment_status = $2,
	paid_at = COALESCE($3, paid_at),
	cancelled_at = COALESCE($4, cancelled_at),
	refunded_at = COALESCE($5, refunded_at),
	stripe_payment_intent_id = COALESCE($6, stripe_payment_intent_id)
WHERE id = $1 AND payment_status = ANY($7)`

	tag, err := r.exec(ctx, stmt,
		saleID,
		string(tr.To),
		tr.PaidAt,
		tr.CancelledAt,
		tr.RefundedAt,
		tr.PaymentIntentID,
		statusStrings(from),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("transition sale: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TransitionSaleByPaymentIntent is TransitionSale keyed on the stored
// external payment-intent identifier.
func (r *SaleRepository) TransitionSaleByPaymentIntent(ctx context.Context, paymentIntentID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error) {
	const stmt = `
UPDATE ticket_sales
SET payment_status = $2,
	paid_at = COALESCE($3, paid_at),
	cancelled_at = COALESCE($4, cancelled_at),
	refunded_at = COALESCE($5, refunded_at)
WHERE stripe_payment_intent_id = $1 AND payment_status = ANY($6)`

	tag, err := r.exec(ctx, stmt,
		paymentIntentID,
		string(tr.To),
		tr.PaidAt,
		tr.CancelledAt,
		tr.RefundedAt,
		statusStrings(from),
	)
	if err != nil {
		return false, fmt.Errorf("transition sale by intent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CancelPendingBefore sweeps pending sales created before cutoff into
// cancelled. The status predicate keeps it idempotent against the
// webhook's own expiry transition.
func (r *SaleRepository) CancelPendingBefore(ctx context.Context, cutoff, cancelledAt time.Time) (int64, error) {
	const stmt = `
UPDATE ticket_sales
SET payment_status = 'cancelled', cancelled_at = $2
WHERE payment_status = 'pending' AND created_at < $1`

	tag, err := r.exec(ctx, stmt, cutoff, cancelledAt)
	if err != nil {
		return 0, fmt.Errorf("cancel pending before: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SaleRepository) scanSale(row pgx.Row) (domain.Sale, error) {
	var (
		s                                domain.Sale
		unitPrice, subtotal, platformFee pgtype.Numeric
		processingFee, totalAmount       pgtype.Numeric
		phone, sessionID, intentID       *string
		status                           string
	)
	err := row.Scan(
		&s.ID, &s.EventID, &s.TicketTypeID, &s.UserID, &s.Quantity,
		&unitPrice, &subtotal, &platformFee, &processingFee, &totalAmount,
		&s.BuyerName, &s.BuyerEmail, &phone,
		&status, &sessionID, &intentID,
		&s.CreatedAt, &s.PaidAt, &s.CancelledAt, &s.RefundedAt,
	)
	if err != nil {
		return domain.Sale{}, err
	}

	s.UnitPrice = fromNumeric(unitPrice)
	s.Subtotal = fromNumeric(subtotal)
	s.PlatformFee = fromNumeric(platformFee)
	s.ProcessingFee = fromNumeric(processingFee)
	s.TotalAmount = fromNumeric(totalAmount)
	s.PaymentStatus = domain.SaleStatus(status)
	if phone != nil {
		s.BuyerPhone = *phone
	}
	if sessionID != nil {
		s.StripeCheckoutSessionID = *sessionID
	}
	if intentID != nil {
		s.StripePaymentIntentID = *intentID
	}
	return s, nil
}

func statusStrings(statuses []domain.SaleStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return out
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *SaleRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SaleRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
