package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/account"
	"github.com/stripe/stripe-go/v79/accountlink"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeURLs are the redirect targets baked into sessions and onboarding links.
type StripeURLs struct {
	SuccessURL string
	CancelURL  string
	RefreshURL string
	ReturnURL  string
}

// StripeClient implements Client on the Stripe API.
type StripeClient struct {
	urls StripeURLs
}

func NewStripeClient(apiKey string, urls StripeURLs) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{urls: urls}
}

func (c *StripeClient) CreateCheckoutSession(_ context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyEUR)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.Description),
				},
				UnitAmount: stripe.Int64(p.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(c.urls.SuccessURL),
		CancelURL:  stripe.String(c.urls.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		},
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

func (c *StripeClient) CreateConnectAccount(_ context.Context, email string) (string, error) {
	acct, err := account.New(&stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String("FR"),
		Email:   stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create connect account: %w", err)
	}
	return acct.ID, nil
}

func (c *StripeClient) CreateOnboardingLink(_ context.Context, accountID string) (string, error) {
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(c.urls.RefreshURL),
		ReturnURL:  stripe.String(c.urls.ReturnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return link.URL, nil
}

// webhookObject mirrors the fields the core reads off a webhook payload.
type webhookObject struct {
	ID               string            `json:"id"`
	PaymentIntent    string            `json:"payment_intent"`
	Metadata         map[string]string `json:"metadata"`
	DetailsSubmitted bool              `json:"details_submitted"`
	Email            string            `json:"email"`
}

// ParseWebhook verifies the signature and normalizes the event.
func ParseWebhook(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	var obj webhookObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("decode webhook object: %w", err)
	}

	out := &WebhookEvent{
		Type:            string(event.Type),
		SessionID:       obj.ID,
		PaymentIntentID: obj.PaymentIntent,
		Metadata:        obj.Metadata,
	}
	if out.Type == EventAccountUpdated {
		out.AccountID = obj.ID
		out.Email = obj.Email
		out.DetailsSubmitted = obj.DetailsSubmitted
		out.SessionID = ""
	}
	return out, nil
}
