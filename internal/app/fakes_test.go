package app

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/payments"
)

// fakeSaleLedger backs the checkout, webhook, confirm and sweeper tests
// with an in-memory ticket_sales table.
type fakeSaleLedger struct {
	sales      map[string]*domain.Sale
	createErr  error
	sessionErr error
}

func newFakeSaleLedger(sales ...domain.Sale) *fakeSaleLedger {
	f := &fakeSaleLedger{sales: make(map[string]*domain.Sale)}
	for i := range sales {
		sale := sales[i]
		f.sales[sale.ID] = &sale
	}
	return f
}

func (f *fakeSaleLedger) CreatePendingSale(_ context.Context, sale domain.Sale) error {
	if f.createErr != nil {
		return f.createErr
	}
	stored := sale
	f.sales[sale.ID] = &stored
	return nil
}

func (f *fakeSaleLedger) SetCheckoutSession(_ context.Context, saleID, sessionID string) error {
	if f.sessionErr != nil {
		return f.sessionErr
	}
	sale, ok := f.sales[saleID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	sale.StripeCheckoutSessionID = sessionID
	return nil
}

func (f *fakeSaleLedger) GetSale(_ context.Context, saleID string) (domain.Sale, error) {
	sale, ok := f.sales[saleID]
	if !ok {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return *sale, nil
}

func (f *fakeSaleLedger) GetSaleBySessionID(_ context.Context, sessionID string) (*domain.Sale, error) {
	for _, sale := range f.sales {
		if sale.StripeCheckoutSessionID == sessionID {
			copied := *sale
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSaleLedger) TransitionSale(_ context.Context, saleID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error) {
	sale, ok := f.sales[saleID]
	if !ok {
		return false, nil
	}
	return f.apply(sale, from, tr), nil
}

func (f *fakeSaleLedger) TransitionSaleByPaymentIntent(_ context.Context, paymentIntentID string, from []domain.SaleStatus, tr domain.SaleTransition) (bool, error) {
	for _, sale := range f.sales {
		if sale.StripePaymentIntentID == paymentIntentID {
			return f.apply(sale, from, tr), nil
		}
	}
	return false, nil
}

func (f *fakeSaleLedger) CancelPendingBefore(_ context.Context, cutoff, cancelledAt time.Time) (int64, error) {
	var swept int64
	for _, sale := range f.sales {
		if sale.PaymentStatus != domain.SaleStatusPending {
			continue
		}
		if !sale.CreatedAt.Before(cutoff) {
			continue
		}
		sale.PaymentStatus = domain.SaleStatusCancelled
		stamp := cancelledAt
		sale.CancelledAt = &stamp
		swept++
	}
	return swept, nil
}

func (f *fakeSaleLedger) apply(sale *domain.Sale, from []domain.SaleStatus, tr domain.SaleTransition) bool {
	matched := false
	for _, status := range from {
		if sale.PaymentStatus == status {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	sale.PaymentStatus = tr.To
	if tr.PaidAt != nil {
		sale.PaidAt = tr.PaidAt
	}
	if tr.CancelledAt != nil {
		sale.CancelledAt = tr.CancelledAt
	}
	if tr.RefundedAt != nil {
		sale.RefundedAt = tr.RefundedAt
	}
	if tr.PaymentIntentID != nil {
		sale.StripePaymentIntentID = *tr.PaymentIntentID
	}
	return true
}

// fakeInventory tracks sold counters per ticket type. A zero capacity
// entry means unlimited.
type fakeInventory struct {
	capacity map[string]int
	sold     map[string]int
	err      error
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		capacity: make(map[string]int),
		sold:     make(map[string]int),
	}
}

func (f *fakeInventory) IncrementSold(_ context.Context, ticketTypeID string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	if limit, ok := f.capacity[ticketTypeID]; ok && f.sold[ticketTypeID]+quantity > limit {
		return domain.ErrInsufficientCapacity
	}
	f.sold[ticketTypeID] += quantity
	return nil
}

type fakeProvider struct {
	customerID string
	ensureErr  error

	session       payments.Session
	createErr     error
	createdParams []payments.CreateSessionParams

	status   payments.SessionStatus
	getErr   error
	getCalls int

	event        stripe.Event
	constructErr error
}

func (f *fakeProvider) EnsureCustomer(_ context.Context, _, _ string) (string, error) {
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	return f.customerID, nil
}

func (f *fakeProvider) CreateSession(_ context.Context, p payments.CreateSessionParams) (payments.Session, error) {
	if f.createErr != nil {
		return payments.Session{}, f.createErr
	}
	f.createdParams = append(f.createdParams, p)
	return f.session, nil
}

func (f *fakeProvider) GetSession(_ context.Context, _ string) (payments.SessionStatus, error) {
	f.getCalls++
	if f.getErr != nil {
		return payments.SessionStatus{}, f.getErr
	}
	return f.status, nil
}

func (f *fakeProvider) ConstructWebhookEvent(_ []byte, _ string) (stripe.Event, error) {
	if f.constructErr != nil {
		return stripe.Event{}, f.constructErr
	}
	return f.event, nil
}
