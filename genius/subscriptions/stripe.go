package subscriptions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
)

// checkout metadata key carrying our user id back through the webhook
const metadataUserID = "userId"

// webhook event types that change subscription state
const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventInvoicePaid       = "invoice.payment_succeeded"
)

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	PriceID       string

	// where Stripe sends the user back after checkout or the portal
	ReturnURL string

	// overrides the Stripe API endpoint, used by tests
	APIBaseURL string
}

// handles checkout, customer portal and webhooks through Stripe
type StripeBilling struct {
	client            *client.API
	config            StripeConfig
	fetchSubscription func(ctx context.Context, id string) (*stripe.Subscription, error)
}

// creates a new Stripe billing client
func NewStripeBilling(config StripeConfig) (*StripeBilling, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("stripe API key is required")
	}

	if config.WebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}

	if config.PriceID == "" {
		return nil, fmt.Errorf("stripe price id is required")
	}

	var backends *stripe.Backends
	if config.APIBaseURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL:               stripe.String(config.APIBaseURL),
				MaxNetworkRetries: stripe.Int64(0),
			}),
		}
	}

	sc := &client.API{}
	sc.Init(config.APIKey, backends)

	s := &StripeBilling{
		client: sc,
		config: config,
	}
	s.fetchSubscription = s.getSubscription

	return s, nil
}

// starts a subscription checkout for a user without one
func (s *StripeBilling) CheckoutURL(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL:               stripe.String(s.config.ReturnURL),
		CancelURL:                stripe.String(s.config.ReturnURL),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		BillingAddressCollection: stripe.String("auto"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)

	session, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

// opens the billing portal for an existing customer
func (s *StripeBilling) PortalURL(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.config.ReturnURL),
	}
	params.Context = ctx

	session, err := s.client.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing portal session: %w", err)
	}

	return session.URL, nil
}

// verifies a webhook and returns the subscription change it carries,
// nil for events that don't affect subscriptions
func (s *StripeBilling) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Update, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidWebhook)
	}

	switch event.Type {
	case eventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}

		userID := session.Metadata[metadataUserID]
		if userID == "" {
			return nil, fmt.Errorf("checkout session %s has no user id", session.ID)
		}

		if session.Subscription == nil || session.Subscription.ID == "" {
			return nil, fmt.Errorf("checkout session %s has no subscription", session.ID)
		}

		update, err := s.updateFromSubscription(ctx, UpdateCreated, session.Subscription.ID)
		if err != nil {
			return nil, err
		}

		update.UserID = userID
		return update, nil

	case eventInvoicePaid:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("failed to decode invoice: %w", err)
		}

		// one-off invoices have no subscription
		if invoice.Subscription == nil || invoice.Subscription.ID == "" {
			return nil, nil
		}

		return s.updateFromSubscription(ctx, UpdateRenewed, invoice.Subscription.ID)

	default:
		return nil, nil
	}
}

func (s *StripeBilling) updateFromSubscription(ctx context.Context, kind UpdateKind, subscriptionID string) (*Update, error) {
	sub, err := s.fetchSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription %s: %w", subscriptionID, err)
	}

	update := &Update{
		Kind:             kind,
		SubscriptionID:   sub.ID,
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}

	if sub.Customer != nil {
		update.CustomerID = sub.Customer.ID
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		update.PriceID = sub.Items.Data[0].Price.ID
	}

	return update, nil
}

func (s *StripeBilling) getSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	return s.client.Subscriptions.Get(id, params)
}
