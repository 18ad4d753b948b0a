package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Session is a created hosted checkout page.
type Session struct {
	ID  string
	URL string
}

// SessionStatus is the paid/unpaid view of an existing session.
type SessionStatus struct {
	ID              string
	PaymentIntentID string
	Paid            bool
}

// CreateSessionParams carries everything needed for one hosted checkout.
// Metadata is echoed back on webhook events and is the only correlation
// between the processor and the sale ledger.
type CreateSessionParams struct {
	CustomerID         string
	ProductName        string
	ProductDescription string
	Currency           string
	AmountMinorUnits   int64
	ApplicationFee     int64
	DestinationAccount string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// Provider is the payment processor surface the services depend on.
type Provider interface {
	EnsureCustomer(ctx context.Context, email, userID string) (string, error)
	CreateSession(ctx context.Context, p CreateSessionParams) (Session, error)
	GetSession(ctx context.Context, id string) (SessionStatus, error)
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeClient implements Provider against the Stripe API.
type StripeClient struct {
	webhookSecret string
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{webhookSecret: webhookSecret}
}

// EnsureCustomer resolves the Stripe customer for an email, creating one
// when none exists. One customer per email; reused across purchases.
func (c *StripeClient) EnsureCustomer(ctx context.Context, email, userID string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)

	iter := customer.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}

	createParams := &stripe.CustomerParams{Email: stripe.String(email)}
	createParams.Context = ctx
	createParams.AddMetadata("user_id", userID)

	created, err := customer.New(createParams)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return created.ID, nil
}

func (c *StripeClient) CreateSession(ctx context.Context, p CreateSessionParams) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(p.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: descriptionOrNil(p.ProductDescription),
					},
					UnitAmount: stripe.Int64(p.AmountMinorUnits),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.DestinationAccount != "" {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.ApplicationFee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		}
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

func (c *StripeClient) GetSession(ctx context.Context, id string) (SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(id, params)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("retrieve checkout session: %w", err)
	}

	status := SessionStatus{
		ID:   sess.ID,
		Paid: sessionPaid(sess.PaymentStatus, sess.Status),
	}
	if sess.PaymentIntent != nil {
		status.PaymentIntentID = sess.PaymentIntent.ID
	}
	return status, nil
}

func (c *StripeClient) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}

func sessionPaid(paymentStatus stripe.CheckoutSessionPaymentStatus, status stripe.CheckoutSessionStatus) bool {
	return paymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		status == stripe.CheckoutSessionStatusComplete
}

func descriptionOrNil(description string) *string {
	if description == "" {
		return nil
	}
	return stripe.String(description)
}
