// Package payment wraps the card gateway. The rest of the service only
// sees two operations: create an intent for an order, and turn a signed
// webhook payload into a payment-status update.
package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/forno/pizza-shop-api/internal/model"
)

var (
	ErrNotCardOrder       = errors.New("order is not set for card payment")
	ErrSignatureInvalid   = errors.New("webhook signature verification failed")
	ErrUnhandledEventType = errors.New("unhandled event type")
)

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook event reduced to what the order lifecycle
// needs.
type Event struct {
	OrderID       string
	IntentID      string
	PaymentStatus model.PaymentStatus
}

type Gateway struct {
	api           *client.API
	webhookSecret string
}

func NewGateway(secretKey, webhookSecret string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api, webhookSecret: webhookSecret}
}

// CreateIntent creates a payment intent sized to the order's total.
// The order id travels in the intent metadata and comes back on every
// webhook event.
func (g *Gateway) CreateIntent(order *model.Order) (*Intent, error) {
	if order.PaymentMethod != model.PaymentMethodStripe {
		return nil, ErrNotCardOrder
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toCents(order.TotalPrice)),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(fmt.Sprintf("Order #%s - %d items", order.ID, len(order.Products))),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_email", order.UserEmail)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the payload signature and maps the event to a
// payment status. A bad signature or an event kind we do not handle is
// an error; no state should change for either.
func (g *Gateway) ParseWebhook(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	status, ok := MapEventType(string(event.Type))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEventType, event.Type)
	}

	var pi stripe.PaymentIntent
	if err := pi.UnmarshalJSON(event.Data.Raw); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	return &Event{
		OrderID:       pi.Metadata["order_id"],
		IntentID:      pi.ID,
		PaymentStatus: status,
	}, nil
}

// MapEventType maps webhook event types to payment statuses: a
// canceled intent counts as a failed payment.
func MapEventType(eventType string) (model.PaymentStatus, bool) {
	switch eventType {
	case "payment_intent.succeeded":
		return model.PaymentStatusPaid, true
	case "payment_intent.payment_failed", "payment_intent.canceled":
		return model.PaymentStatusFailed, true
	}
	return "", false
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
