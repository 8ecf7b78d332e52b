// Package mail sends transactional email through Postmark. Callers treat
// every send as best-effort: failures are logged by the notification
// worker, never surfaced to the customer-facing request.
package mail

import (
	"fmt"
	"strings"

	"github.com/keighl/postmark"

	"github.com/forno/pizza-shop-api/internal/model"
)

// Sender is what the notification worker depends on; tests swap in a
// recording fake.
type Sender interface {
	SendOrderConfirmation(order *model.Order) error
	SendStatusUpdate(order *model.Order, status model.OrderStatus) error
}

type postmarkClient interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

type Service struct {
	client postmarkClient
	from   string
}

func NewService(serverToken, from string) *Service {
	return &Service{client: postmark.NewClient(serverToken, ""), from: from}
}

func (s *Service) send(to, subject, htmlBody, textBody string) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *Service) SendOrderConfirmation(order *model.Order) error {
	subject := fmt.Sprintf("Order Confirmation #%s", order.ID)

	var htmlItems, textItems strings.Builder
	for _, op := range order.Products {
		fmt.Fprintf(&htmlItems, "<li>%s x%d</li>", op.ProductName, op.Quantity)
		fmt.Fprintf(&textItems, "- %s x%d\n", op.ProductName, op.Quantity)
	}

	htmlBody := fmt.Sprintf(
		"<h1>Thank you for your order!</h1>"+
			"<p><strong>Order ID:</strong> #%s</p>"+
			"<ul>%s</ul>"+
			"<p><strong>Subtotal:</strong> $%s<br>"+
			"<strong>Delivery:</strong> $%s<br>"+
			"<strong>Total:</strong> $%s</p>"+
			"<p>Payment method: %s</p>"+
			"<p>We'll start preparing your order right away. "+
			"You'll receive updates on your order status.</p>",
		order.ID, htmlItems.String(),
		order.SubTotal.StringFixed(2), order.DeliveryFee.StringFixed(2),
		order.TotalPrice.StringFixed(2), order.PaymentMethod,
	)
	textBody := fmt.Sprintf(
		"Thank you for your order!\n\n"+
			"Order ID: #%s\n\n"+
			"%s\n"+
			"Subtotal: $%s\n"+
			"Delivery: $%s\n"+
			"Total: $%s\n\n"+
			"Payment method: %s\n\n"+
			"We'll start preparing your order right away. "+
			"You'll receive updates on your order status.\n",
		order.ID, textItems.String(),
		order.SubTotal.StringFixed(2), order.DeliveryFee.StringFixed(2),
		order.TotalPrice.StringFixed(2), order.PaymentMethod,
	)
	return s.send(order.UserEmail, subject, htmlBody, textBody)
}

var statusLines = map[model.OrderStatus]string{
	model.OrderStatusPending:   "We have received your order.",
	model.OrderStatusConfirmed: "Your order has been confirmed and will be prepared soon.",
	model.OrderStatusPreparing: "Your order is being prepared right now.",
	model.OrderStatusReady:     "Your order is ready for delivery.",
	model.OrderStatusDelivered: "Your order has been delivered. Enjoy!",
	model.OrderStatusCancelled: "Your order has been cancelled.",
}

func (s *Service) SendStatusUpdate(order *model.Order, status model.OrderStatus) error {
	subject := fmt.Sprintf("Order #%s update: %s", order.ID, status)

	line, ok := statusLines[status]
	if !ok {
		line = fmt.Sprintf("Your order status is now %s.", status)
	}

	htmlBody := fmt.Sprintf(
		"<h1>Order Update</h1>"+
			"<p><strong>Order ID:</strong> #%s</p>"+
			"<p>%s</p>"+
			"<p><strong>Total:</strong> $%s</p>",
		order.ID, line, order.TotalPrice.StringFixed(2),
	)
	textBody := fmt.Sprintf(
		"Order Update\n\n"+
			"Order ID: #%s\n\n"+
			"%s\n\n"+
			"Total: $%s\n",
		order.ID, line, order.TotalPrice.StringFixed(2),
	)
	return s.send(order.UserEmail, subject, htmlBody, textBody)
}
