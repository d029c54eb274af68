package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrNotConfigured    = errors.New("stripe not configured")
	ErrInvalidSignature = errors.New("invalid stripe signature")
)

type CheckoutRequest struct {
	VendorID    string
	UserID      string
	VendorName  string
	AmountCents int64
	Currency    string
	Days        int
}

type Checkout struct {
	SessionID string
	URL       string
}

type WebhookEvent struct {
	Type          string
	SessionID     string
	PaymentStatus string
	Metadata      map[string]string
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

type StripeGateway struct {
	sessions      *session.Client
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeGateway(secretKey, webhookSecret, successURL, cancelURL string) *StripeGateway {
	if secretKey == "" {
		return nil
	}
	return &StripeGateway{
		sessions:      &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	if g == nil {
		return Checkout{}, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Negocio destacado %d días: %s", req.Days, req.VendorName)),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(req.VendorID),
	}
	params.Context = ctx
	params.AddMetadata("vendor_id", req.VendorID)
	params.AddMetadata("user_id", req.UserID)

	s, err := g.sessions.New(params)
	if err != nil {
		return Checkout{}, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return Checkout{SessionID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	if g == nil {
		return WebhookEvent{}, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to parse session: %w", err)
	}
	out.SessionID = cs.ID
	out.PaymentStatus = string(cs.PaymentStatus)
	out.Metadata = cs.Metadata
	return out, nil
}
