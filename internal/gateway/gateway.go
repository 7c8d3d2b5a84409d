// Package gateway abstracts the external payment provider. The core only
// ever talks to the Client interface; the Stripe adapter lives alongside it.
package gateway

import "context"

// Webhook event types the core reacts to. Anything else is ignored.
const (
	EventAccountUpdated    = "account.updated"
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutFailed    = "checkout.session.async_payment_failed"
	EventCheckoutPending   = "checkout.session.async_payment_pending"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutParams describes a checkout session to create. Amounts are in
// cents; the fee is withheld for the platform, the rest is transferred to
// the destination account.
type CheckoutParams struct {
	AmountCents        int64
	FeeCents           int64
	Description        string
	DestinationAccount string
	Metadata           map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

type Client interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// CreateConnectAccount provisions a connected account and returns its id.
	CreateConnectAccount(ctx context.Context, email string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
}

// WebhookEvent is the normalized inbound gateway notification.
type WebhookEvent struct {
	Type            string
	SessionID       string
	PaymentIntentID string
	Metadata        map[string]string

	// account.updated fields.
	AccountID        string
	Email            string
	DetailsSubmitted bool
}
