package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/payments"
)

type ConfirmLedger interface {
	GetSaleBySessionID(ctx context.Context, sessionID string) (*domain.Sale, error)
	TransitionSale(ctx context.Context, saleID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error)
}

type ConfirmInventory interface {
	IncrementSold(ctx context.Context, ticketTypeID string, quantity int) error
}

// ConfirmService backs the post-redirect confirmation view. The webhook
// may not have landed when the buyer returns, so sale lookup retries with
// growing backoff, and VerifyPayment can complete a still-pending sale as
// a lesser-authority catch-up write through the same conditional
// transition the webhook uses.
type ConfirmService struct {
	ledger    ConfirmLedger
	inventory ConfirmInventory
	provider  payments.Provider
	clock     clock.Clock

	attempts    int
	backoffStep time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewConfirmService(ledger ConfirmLedger, inventory ConfirmInventory, provider payments.Provider, clk clock.Clock, opts ...ConfirmServiceOption) *ConfirmService {
	svc := &ConfirmService{
		ledger:      ledger,
		inventory:   inventory,
		provider:    provider,
		clock:       clk,
		attempts:    5,
		backoffStep: 400 * time.Millisecond,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ConfirmServiceOption func(*ConfirmService)

// WithLookupRetry overrides the retry schedule for sale lookup.
func WithLookupRetry(attempts int, backoffStep time.Duration) ConfirmServiceOption {
	return func(s *ConfirmService) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoffStep > 0 {
			s.backoffStep = backoffStep
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AwaitSale looks up the sale for a checkout session, retrying while the
// webhook race settles. The wait grows by one backoff step per attempt.
func (s *ConfirmService) AwaitSale(ctx context.Context, sessionID, userID string) (domain.Sale, error) {
	if sessionID == "" {
		return domain.Sale{}, domain.ErrInvalidID
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		sale, err := s.ledger.GetSaleBySessionID(ctx, sessionID)
		if err != nil {
			return domain.Sale{}, err
		}
		if sale != nil {
			if sale.UserID != userID {
				return domain.Sale{}, domain.ErrSaleNotOwned
			}
			return *sale, nil
		}
		if attempt == s.attempts {
			break
		}
		if err := s.sleep(ctx, time.Duration(attempt)*s.backoffStep); err != nil {
			return domain.Sale{}, err
		}
	}
	return domain.Sale{}, domain.ErrSaleNotFound
}

type VerifyPaymentResult struct {
	SaleID        string
	PaymentStatus domain.SaleStatus
	Paid          bool
}

// VerifyPayment checks a session's payment state directly with the
// processor and, when the session is paid but the sale is still pending,
// applies the completion transition itself. Whichever of this path and
// the webhook writes first wins; the loser is a no-op.
func (s *ConfirmService) VerifyPayment(ctx context.Context, sessionID, userID string) (VerifyPaymentResult, error) {
	if sessionID == "" {
		return VerifyPaymentResult{}, domain.ErrInvalidID
	}

	sale, err := s.ledger.GetSaleBySessionID(ctx, sessionID)
	if err != nil {
		return VerifyPaymentResult{}, err
	}
	if sale == nil {
		return VerifyPaymentResult{}, domain.ErrSaleNotFound
	}
	if sale.UserID != userID {
		return VerifyPaymentResult{}, domain.ErrSaleNotOwned
	}

	if sale.PaymentStatus == domain.SaleStatusCompleted {
		return VerifyPaymentResult{SaleID: sale.ID, PaymentStatus: sale.PaymentStatus, Paid: true}, nil
	}
	if sale.PaymentStatus.Terminal() {
		return VerifyPaymentResult{SaleID: sale.ID, PaymentStatus: sale.PaymentStatus}, nil
	}

	status, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return VerifyPaymentResult{}, &UpstreamError{Err: err}
	}
	if !status.Paid {
		return VerifyPaymentResult{SaleID: sale.ID, PaymentStatus: sale.PaymentStatus}, nil
	}

	paidAt := s.clock.Now()
	var intentID *string
	if status.PaymentIntentID != "" {
		intentID = &status.PaymentIntentID
	}

	applied, err := s.ledger.TransitionSale(ctx, sale.ID,
		[]domain.SaleStatus{domain.SaleStatusPending},
		domain.SaleTransition{
			To:              domain.SaleStatusCompleted,
			PaidAt:          &paidAt,
			PaymentIntentID: intentID,
		})
	if err != nil {
		return VerifyPaymentResult{}, err
	}
	if applied {
		log.Printf("verify: sale %s completed via client fallback", sale.ID)
		if err := s.inventory.IncrementSold(ctx, sale.TicketTypeID, sale.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientCapacity) {
				log.Printf("verify: OVERSOLD ticket type %s on sale %s (qty %d)", sale.TicketTypeID, sale.ID, sale.Quantity)
			} else {
				return VerifyPaymentResult{}, err
			}
		}
	}

	return VerifyPaymentResult{SaleID: sale.ID, PaymentStatus: domain.SaleStatusCompleted, Paid: true}, nil
}
