package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/payments"
)

type CheckoutCatalog interface {
	GetTicketTypeWithEvent(ctx context.Context, ticketTypeID string) (domain.TicketType, domain.Event, error)
	GetOrganizer(ctx context.Context, organizerID string) (domain.Organizer, error)
	GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error)
}

type CheckoutLedger interface {
	CreatePendingSale(ctx context.Context, sale domain.Sale) error
	SetCheckoutSession(ctx context.Context, saleID, sessionID string) error
}

// CheckoutService brokers hosted checkout sessions: it computes the
// authoritative charge, records the sale attempt before any external
// call, and hands back the processor's redirect URL.
type CheckoutService struct {
	catalog  CheckoutCatalog
	ledger   CheckoutLedger
	provider payments.Provider
	clock    clock.Clock

	currency   string
	successURL string
	cancelURL  string
}

func NewCheckoutService(catalog CheckoutCatalog, ledger CheckoutLedger, provider payments.Provider, clk clock.Clock, opts ...CheckoutServiceOption) *CheckoutService {
	svc := &CheckoutService{
		catalog:    catalog,
		ledger:     ledger,
		provider:   provider,
		clock:      clk,
		currency:   "brl",
		successURL: "http://localhost:5173/ticket-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  "http://localhost:5173/event/{EVENT_ID}?payment=cancelled",
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CheckoutServiceOption func(*CheckoutService)

// WithCurrency overrides the charge currency.
func WithCurrency(currency string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		if currency != "" {
			s.currency = strings.ToLower(currency)
		}
	}
}

// WithRedirectURLs overrides the success and cancel redirect targets.
// The success URL should carry the {CHECKOUT_SESSION_ID} placeholder and
// the cancel URL may carry {EVENT_ID}.
func WithRedirectURLs(successURL, cancelURL string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		if successURL != "" {
			s.successURL = successURL
		}
		if cancelURL != "" {
			s.cancelURL = cancelURL
		}
	}
}

// Buyer is the authenticated purchaser with the profile contact fields
// snapshotted onto the sale.
type Buyer struct {
	UserID string
	Email  string
	Name   string
	Phone  string
}

type CreateCheckoutInput struct {
	TicketTypeID string
	EventID      string
	Quantity     int
	Buyer        Buyer
}

type CreateCheckoutResult struct {
	SaleID    string
	SessionID string
	URL       string
}

// UpstreamError wraps upstream processor failures so transports can
// distinguish them from internal errors. The pending sale row created
// before the upstream call is intentionally left in place; the sweeper
// cancels it later.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "payment provider error: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

func (s *CheckoutService) CreateCheckout(ctx context.Context, in CreateCheckoutInput) (CreateCheckoutResult, error) {
	if in.Quantity <= 0 {
		return CreateCheckoutResult{}, domain.ErrInvalidQuantity
	}
	if in.TicketTypeID == "" || in.EventID == "" {
		return CreateCheckoutResult{}, domain.ErrInvalidID
	}

	ticketType, event, err := s.catalog.GetTicketTypeWithEvent(ctx, in.TicketTypeID)
	if err != nil {
		return CreateCheckoutResult{}, err
	}
	if event.ID != in.EventID {
		return CreateCheckoutResult{}, domain.ErrTicketTypeNotFound
	}

	organizer, err := s.catalog.GetOrganizer(ctx, event.OrganizerID)
	if err != nil {
		return CreateCheckoutResult{}, err
	}
	if organizer.UserID == in.Buyer.UserID {
		return CreateCheckoutResult{}, domain.ErrOwnEventPurchase
	}
	if organizer.StripeAccountID == "" || !organizer.StripeChargesEnabled {
		return CreateCheckoutResult{}, domain.ErrPayoutsNotConfigured
	}

	if err := validateQuantity(ticketType, in.Quantity); err != nil {
		return CreateCheckoutResult{}, err
	}

	settings, err := s.catalog.GetFeeSettings(ctx, event.ID)
	if err != nil {
		return CreateCheckoutResult{}, err
	}

	// Never trust a client-submitted total; the server recomputes.
	fees := domain.CalculateFees(ticketType.Price, in.Quantity, settings)

	customerID, err := s.provider.EnsureCustomer(ctx, in.Buyer.Email, in.Buyer.UserID)
	if err != nil {
		return CreateCheckoutResult{}, &UpstreamError{Err: err}
	}

	buyerName := in.Buyer.Name
	if buyerName == "" {
		buyerName = in.Buyer.Email
	}

	sale := domain.Sale{
		ID:            newID(),
		EventID:       event.ID,
		TicketTypeID:  ticketType.ID,
		UserID:        in.Buyer.UserID,
		Quantity:      in.Quantity,
		UnitPrice:     ticketType.Price,
		Subtotal:      fees.Subtotal,
		PlatformFee:   fees.PlatformFee,
		ProcessingFee: fees.ProcessingFee,
		TotalAmount:   fees.TotalAmount,
		BuyerName:     buyerName,
		BuyerEmail:    in.Buyer.Email,
		BuyerPhone:    in.Buyer.Phone,
		PaymentStatus: domain.SaleStatusPending,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.ledger.CreatePendingSale(ctx, sale); err != nil {
		return CreateCheckoutResult{}, fmt.Errorf("create pending sale: %w", err)
	}

	session, err := s.provider.CreateSession(ctx, payments.CreateSessionParams{
		CustomerID:         customerID,
		ProductName:        ticketType.Name + " - " + event.Title,
		ProductDescription: ticketType.Description,
		Currency:           s.currency,
		AmountMinorUnits:   fees.TotalMinorUnits(),
		ApplicationFee:     fees.ApplicationFeeMinorUnits(),
		DestinationAccount: organizer.StripeAccountID,
		SuccessURL:         s.successURL,
		CancelURL:          strings.ReplaceAll(s.cancelURL, "{EVENT_ID}", event.ID),
		Metadata: map[string]string{
			"ticket_sale_id": sale.ID,
			"event_id":       event.ID,
			"user_id":        in.Buyer.UserID,
			"organizer_id":   organizer.ID,
		},
	})
	if err != nil {
		// The pending row stays behind as the record of the attempt.
		return CreateCheckoutResult{}, &UpstreamError{Err: err}
	}

	if err := s.ledger.SetCheckoutSession(ctx, sale.ID, session.ID); err != nil {
		// The session exists and the webhook can still find the sale via
		// metadata, so report and continue.
		log.Printf("checkout: failed to store session id on sale %s: %v", sale.ID, err)
	}

	return CreateCheckoutResult{
		SaleID:    sale.ID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func validateQuantity(t domain.TicketType, quantity int) error {
	if t.MinPerPurchase > 0 && quantity < t.MinPerPurchase {
		return domain.ErrInvalidQuantity
	}
	if t.MaxPerPurchase > 0 && quantity > t.MaxPerPurchase {
		return domain.ErrInvalidQuantity
	}
	// Best-effort early check; the atomic increment at completion time is
	// the authoritative capacity guard.
	if quantity > t.Remaining() {
		return domain.ErrInsufficientCapacity
	}
	return nil
}
