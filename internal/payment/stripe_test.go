package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/forno/pizza-shop-api/internal/model"
)

func TestMapEventType(t *testing.T) {
	cases := []struct {
		eventType string
		want      model.PaymentStatus
		handled   bool
	}{
		{"payment_intent.succeeded", model.PaymentStatusPaid, true},
		{"payment_intent.payment_failed", model.PaymentStatusFailed, true},
		{"payment_intent.canceled", model.PaymentStatusFailed, true},
		{"charge.refunded", "", false},
		{"checkout.session.completed", "", false},
	}
	for _, tc := range cases {
		got, ok := MapEventType(tc.eventType)
		assert.Equal(t, tc.handled, ok, tc.eventType)
		assert.Equal(t, tc.want, got, tc.eventType)
	}
}

func TestCreateIntent_RejectsCashOrders(t *testing.T) {
	g := NewGateway("sk_test_dummy", "whsec_dummy")
	_, err := g.CreateIntent(&model.Order{PaymentMethod: model.PaymentMethodCash})
	assert.ErrorIs(t, err, ErrNotCardOrder)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	g := NewGateway("sk_test_dummy", "whsec_dummy")
	_, err := g.ParseWebhook([]byte(`{}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(4400), toCents(decimal.NewFromInt(44)))
	assert.Equal(t, int64(1999), toCents(decimal.NewFromFloat(19.99)))
	assert.Equal(t, int64(1000), toCents(decimal.NewFromFloat(9.995)))
}
