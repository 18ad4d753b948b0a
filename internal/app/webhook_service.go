package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v82"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/payments"
)

// ErrInvalidSignature is returned when the webhook payload does not carry
// a valid processor signature. It is the endpoint's only authentication.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type WebhookLedger interface {
	GetSale(ctx context.Context, saleID string) (domain.Sale, error)
	TransitionSale(ctx context.Context, saleID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error)
	TransitionSaleByPaymentIntent(ctx context.Context, paymentIntentID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error)
}

type WebhookInventory interface {
	IncrementSold(ctx context.Context, ticketTypeID string, quantity int) error
}

// WebhookService reconciles processor events against the sale ledger.
// Delivery is at-least-once, so every branch is idempotent: a transition
// that no longer matches its source status is a logged no-op, never an
// error, and the caller still acknowledges the event.
type WebhookService struct {
	ledger    WebhookLedger
	inventory WebhookInventory
	provider  payments.Provider
	clock     clock.Clock
}

func NewWebhookService(ledger WebhookLedger, inventory WebhookInventory, provider payments.Provider, clk clock.Clock) *WebhookService {
	return &WebhookService{
		ledger:    ledger,
		inventory: inventory,
		provider:  provider,
		clock:     clk,
	}
}

// Process verifies and applies one webhook delivery. A returned error
// means the delivery should be retried by the processor; expected no-op
// conditions return nil.
func (s *WebhookService) Process(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	log.Printf("webhook: received event type=%s id=%s", event.Type, event.ID)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleSessionCompleted(ctx, event)
	case "checkout.session.expired":
		return s.handleSessionExpired(ctx, event)
	case "payment_intent.succeeded":
		// Informational; checkout.session.completed is authoritative for paid.
		return nil
	case "payment_intent.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	case "charge.refunded":
		return s.handleChargeRefunded(ctx, event)
	default:
		log.Printf("webhook: unhandled event type=%s", event.Type)
		return nil
	}
}

func (s *WebhookService) handleSessionCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	saleID := session.Metadata["ticket_sale_id"]
	if saleID == "" {
		log.Printf("webhook: no ticket_sale_id in metadata for session %s", session.ID)
		return nil
	}

	sale, err := s.ledger.GetSale(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			log.Printf("webhook: sale %s not found for session %s", saleID, session.ID)
			return nil
		}
		return err
	}
	if sale.PaymentStatus == domain.SaleStatusCompleted {
		log.Printf("webhook: sale %s already completed", saleID)
		return nil
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		session.Status != stripe.CheckoutSessionStatusComplete {
		log.Printf("webhook: session %s completed but not paid (status=%s)", session.ID, session.PaymentStatus)
		return nil
	}

	paidAt := s.clock.Now()
	var intentID *string
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		intentID = &session.PaymentIntent.ID
	}

	applied, err := s.ledger.TransitionSale(ctx, saleID,
		[]domain.SaleStatus{domain.SaleStatusPending},
		domain.SaleTransition{
			To:              domain.SaleStatusCompleted,
			PaidAt:          &paidAt,
			PaymentIntentID: intentID,
		})
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent writer (replay or client fallback) won the race.
		log.Printf("webhook: completion for sale %s already applied", saleID)
		return nil
	}

	if err := s.inventory.IncrementSold(ctx, sale.TicketTypeID, sale.Quantity); err != nil {
		if errors.Is(err, domain.ErrInsufficientCapacity) {
			// The sale is already completed and paid; retrying cannot fix
			// capacity. Leave the counter alone for manual reconciliation.
			log.Printf("webhook: OVERSOLD ticket type %s on sale %s (qty %d)", sale.TicketTypeID, saleID, sale.Quantity)
			return nil
		}
		return err
	}

	log.Printf("webhook: sale %s marked completed", saleID)
	return nil
}

func (s *WebhookService) handleSessionExpired(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	saleID := session.Metadata["ticket_sale_id"]
	if saleID == "" {
		log.Printf("webhook: no ticket_sale_id in metadata for expired session %s", session.ID)
		return nil
	}

	cancelledAt := s.clock.Now()
	applied, err := s.ledger.TransitionSale(ctx, saleID,
		[]domain.SaleStatus{domain.SaleStatusPending},
		domain.SaleTransition{
			To:          domain.SaleStatusCancelled,
			CancelledAt: &cancelledAt,
		})
	if err != nil {
		return err
	}
	if applied {
		log.Printf("webhook: sale %s marked cancelled (session expired)", saleID)
	}
	return nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("parse payment intent: %w", err)
	}

	// Only a pending sale can fail; a terminal status stays put.
	applied, err := s.ledger.TransitionSaleByPaymentIntent(ctx, intent.ID,
		[]domain.SaleStatus{domain.SaleStatusPending},
		domain.SaleTransition{To: domain.SaleStatusFailed})
	if err != nil {
		return err
	}
	if applied {
		log.Printf("webhook: sale for intent %s marked failed", intent.ID)
	}
	return nil
}

func (s *WebhookService) handleChargeRefunded(ctx context.Context, event stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return fmt.Errorf("parse charge: %w", err)
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		log.Printf("webhook: refunded charge %s has no payment intent", charge.ID)
		return nil
	}

	refundedAt := s.clock.Now()
	applied, err := s.ledger.TransitionSaleByPaymentIntent(ctx, charge.PaymentIntent.ID,
		[]domain.SaleStatus{domain.SaleStatusCompleted},
		domain.SaleTransition{
			To:         domain.SaleStatusRefunded,
			RefundedAt: &refundedAt,
		})
	if err != nil {
		return err
	}
	if applied {
		log.Printf("webhook: sale for intent %s marked refunded", charge.PaymentIntent.ID)
	}
	return nil
}
