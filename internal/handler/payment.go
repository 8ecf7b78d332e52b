package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/payment"
	"github.com/forno/pizza-shop-api/internal/repository"
	"github.com/forno/pizza-shop-api/internal/service"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	gateway      *payment.Gateway
	orderRepo    repository.OrderRepository
	orderService *service.OrderService
}

func NewPaymentHandler(gateway *payment.Gateway, orderRepo repository.OrderRepository, orderService *service.OrderService) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, orderRepo: orderRepo, orderService: orderService}
}

// CreateIntent creates a Stripe payment intent for a pending card order
// and hands the client secret back to the storefront.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderRepo.GetByID(c.Request.Context(), req.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	intent, err := h.gateway.CreateIntent(order)
	if err != nil {
		if errors.Is(err, payment.ErrNotCardOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order is not a card payment order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment intent"})
		return
	}

	// Remember the intent so webhook retries and support lookups can
	// correlate it with the order.
	if err := h.orderService.UpdatePaymentStatus(c.Request.Context(), order.ID, order.PaymentStatus, intent.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment intent"})
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

// Webhook receives Stripe events. Signature failures are rejected
// without touching any order. Event types outside the payment intent
// lifecycle are acknowledged so Stripe stops retrying them.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.gateway.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrUnhandledEventType) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order reference in event metadata"})
		return
	}

	if err := h.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, event.PaymentStatus, event.IntentID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update payment status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "payment_status": string(event.PaymentStatus)})
}
