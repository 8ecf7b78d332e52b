package mail

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/keighl/postmark"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forno/pizza-shop-api/internal/model"
)

type fakePostmark struct {
	sent []postmark.Email
	err  error
}

func (f *fakePostmark) SendEmail(email postmark.Email) (postmark.EmailResponse, error) {
	if f.err != nil {
		return postmark.EmailResponse{}, f.err
	}
	f.sent = append(f.sent, email)
	return postmark.EmailResponse{}, nil
}

func testOrder() *model.Order {
	return &model.Order{
		ID:            uuid.New(),
		UserEmail:     "mario@example.com",
		PaymentMethod: model.PaymentMethodCash,
		SubTotal:      decimal.NewFromInt(39),
		DeliveryFee:   decimal.NewFromInt(5),
		TotalPrice:    decimal.NewFromInt(44),
		Products: []model.OrderProduct{
			{ProductName: "Margherita", Quantity: 2},
		},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	fake := &fakePostmark{}
	svc := &Service{client: fake, from: "orders@pizzashop.dev"}

	order := testOrder()
	require.NoError(t, svc.SendOrderConfirmation(order))
	require.Len(t, fake.sent, 1)

	email := fake.sent[0]
	assert.Equal(t, "mario@example.com", email.To)
	assert.Equal(t, "orders@pizzashop.dev", email.From)
	assert.Contains(t, email.Subject, order.ID.String())
	assert.Contains(t, email.HtmlBody, "Margherita x2")
	assert.Contains(t, email.HtmlBody, "$44.00")
	assert.Contains(t, email.TextBody, "- Margherita x2")
	assert.Contains(t, email.TextBody, "Total: $44.00")
	assert.NotContains(t, email.TextBody, "<")
}

func TestSendStatusUpdate(t *testing.T) {
	fake := &fakePostmark{}
	svc := &Service{client: fake, from: "orders@pizzashop.dev"}

	require.NoError(t, svc.SendStatusUpdate(testOrder(), model.OrderStatusDelivered))
	require.Len(t, fake.sent, 1)
	assert.Contains(t, fake.sent[0].HtmlBody, "has been delivered")
	assert.Contains(t, fake.sent[0].TextBody, "has been delivered")
	assert.NotContains(t, fake.sent[0].TextBody, "<")
}

func TestSendFailurePropagates(t *testing.T) {
	fake := &fakePostmark{err: errors.New("postmark down")}
	svc := &Service{client: fake, from: "orders@pizzashop.dev"}

	err := svc.SendOrderConfirmation(testOrder())
	assert.Error(t, err)
}
