package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/pricing"
	"github.com/forno/pizza-shop-api/internal/repository"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrInvalidProduct     = errors.New("invalid product in cart")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidPayment     = errors.New("invalid payment status")
)

// ValidationError carries field-level messages back to the checkout form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

const (
	notificationQueue = "order.notifications"
	ordersCacheKey    = "admin:orders"
	ordersCacheTTL    = 30 * time.Second
)

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	amqpCh      *amqp.Channel
	redisClient *redis.Client
	log         *slog.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, amqpCh *amqp.Channel, redisClient *redis.Client, log *slog.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		amqpCh:      amqpCh,
		redisClient: redisClient,
		log:         log,
	}
}

// validateOrder mirrors the checkout form's rules. It must pass before
// any persistence call happens.
func validateOrder(req dto.CreateOrderRequest) *ValidationError {
	fields := make(map[string]string)

	if req.UserEmail == "" {
		fields["user_email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.UserEmail); err != nil {
		fields["user_email"] = "Please enter a valid email address"
	}
	if req.Phone == "" {
		fields["phone"] = "Phone number is required"
	} else if len(req.Phone) < 10 {
		fields["phone"] = "Phone number must be at least 10 digits"
	}
	if req.StreetAddress == "" {
		fields["street_address"] = "Street address is required"
	} else if len(req.StreetAddress) < 10 {
		fields["street_address"] = "Address must be at least 10 characters"
	}
	if req.PostalCode == "" {
		fields["postal_code"] = "Postal code is required"
	} else if len(req.PostalCode) < 3 {
		fields["postal_code"] = "Postal code must be at least 3 characters"
	}
	if req.City == "" {
		fields["city"] = "City is required"
	} else if len(req.City) < 2 {
		fields["city"] = "City must be at least 2 characters"
	}
	if req.Country == "" {
		fields["country"] = "Country is required"
	} else if len(req.Country) < 2 {
		fields["country"] = "Country must be at least 2 characters"
	}
	if len(req.CartItems) == 0 {
		fields["cart_items"] = "Cart must contain at least one item"
	}
	if !req.PaymentMethod.Valid() {
		fields["payment_method"] = "Payment method must be CASH_ON_DELIVERY or STRIPE"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates the checkout payload, prices the cart from the
// database (client totals are never trusted), persists the order with
// its lines in one transaction, and publishes a confirmation
// notification as a best-effort side effect.
func (s *OrderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if verr := validateOrder(req); verr != nil {
		return nil, verr
	}

	var lines []pricing.Line
	var orderProducts []model.OrderProduct
	for _, item := range req.CartItems {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, ErrInvalidProduct
		}

		line := pricing.Line{BasePrice: product.BasePrice, Quantity: item.Quantity}
		if item.SizeID != nil {
			size := findSize(product.Sizes, *item.SizeID)
			if size == nil {
				return nil, ErrInvalidProduct
			}
			line.SizeDelta = size.Price
		}
		for _, extraID := range item.ExtraIDs {
			extra := findExtra(product.Extras, extraID)
			if extra == nil {
				return nil, ErrInvalidProduct
			}
			line.ExtraDeltas = append(line.ExtraDeltas, extra.Price)
		}
		lines = append(lines, line)

		// Size and extra selections price the line but are not
		// persisted per order product, matching the storefront's
		// minimal order_products shape.
		orderProducts = append(orderProducts, model.OrderProduct{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			BasePrice:   product.BasePrice,
			Quantity:    item.Quantity,
		})
	}

	subTotal := pricing.SubTotal(lines)
	order := &model.Order{
		UserEmail:     req.UserEmail,
		Phone:         req.Phone,
		StreetAddress: req.StreetAddress,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Country:       req.Country,
		Status:        model.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		Paid:          false,
		SubTotal:      subTotal,
		DeliveryFee:   pricing.DeliveryFee,
		TotalPrice:    pricing.GrandTotal(subTotal),
		Notes:         req.Notes,
		Products:      orderProducts,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrOrderAlreadyExists
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, ErrInvalidProduct
		default:
			return nil, fmt.Errorf("create order: %w", err)
		}
	}

	s.publish(ctx, model.NotificationMessage{
		Kind:    model.NotificationOrderConfirmation,
		OrderID: order.ID,
	})
	s.invalidateOrdersCache(ctx)

	resp := toOrderResponse(order)
	return &resp, nil
}

// UpdateStatus persists the new status and notifies the customer.
// No transition table is enforced; setting the same status twice
// converges to the same persisted state.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	s.publish(ctx, model.NotificationMessage{
		Kind:    model.NotificationStatusUpdate,
		OrderID: orderID,
		Status:  status,
	})
	s.invalidateOrdersCache(ctx)
	return nil
}

// UpdatePaymentStatus is driven by the payment webhook and the intent
// bridge, never by the end customer. paid is derived, not accepted.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, intentID string) error {
	if !status.Valid() {
		return ErrInvalidPayment
	}
	paid := status == model.PaymentStatusPaid
	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status, paid, intentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("update payment status: %w", err)
	}
	s.invalidateOrdersCache(ctx)
	return nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) List(ctx context.Context) (*dto.OrderListResponse, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, ordersCacheKey).Result(); err == nil {
			var resp dto.OrderListResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	resp := &dto.OrderListResponse{Total: len(orders)}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, ordersCacheKey, data, ordersCacheTTL)
		}
	}
	return resp, nil
}

func (s *OrderService) ListByStatus(ctx context.Context, status model.OrderStatus) (*dto.OrderListResponse, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	orders, err := s.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	resp := &dto.OrderListResponse{Total: len(orders)}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}
	return resp, nil
}

func (s *OrderService) Stats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return &dto.OrderStatsResponse{
		StatusCounts: stats.StatusCounts,
		TotalOrders:  stats.TotalOrders,
		TotalRevenue: stats.TotalRevenue,
	}, nil
}

// publish is fire and forget: a notification failure never fails the
// order operation that triggered it.
func (s *OrderService) publish(ctx context.Context, msg model.NotificationMessage) {
	if s.amqpCh == nil {
		return
	}
	body, err := json.Marshal(msg)
	if err != nil {
		s.logError("marshal notification", err)
		return
	}
	err = s.amqpCh.PublishWithContext(ctx, "", notificationQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		s.logError("publish notification", err)
	}
}

func (s *OrderService) invalidateOrdersCache(ctx context.Context) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, ordersCacheKey)
	}
}

func (s *OrderService) logError(msg string, err error) {
	if s.log != nil {
		s.log.Error(msg, "error", err)
	}
}

func findSize(sizes []model.Size, id uuid.UUID) *model.Size {
	for i := range sizes {
		if sizes[i].ID == id {
			return &sizes[i]
		}
	}
	return nil
}

func findExtra(extras []model.Extra, id uuid.UUID) *model.Extra {
	for i := range extras {
		if extras[i].ID == id {
			return &extras[i]
		}
	}
	return nil
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                    order.ID,
		UserEmail:             order.UserEmail,
		Phone:                 order.Phone,
		StreetAddress:         order.StreetAddress,
		PostalCode:            order.PostalCode,
		City:                  order.City,
		Country:               order.Country,
		Status:                order.Status,
		PaymentMethod:         order.PaymentMethod,
		PaymentStatus:         order.PaymentStatus,
		Paid:                  order.Paid,
		SubTotal:              order.SubTotal,
		DeliveryFee:           order.DeliveryFee,
		TotalPrice:            order.TotalPrice,
		StripePaymentIntentID: order.StripePaymentIntentID,
		Notes:                 order.Notes,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	for _, op := range order.Products {
		resp.Products = append(resp.Products, dto.OrderProductResponse{
			ProductID:   op.ProductID,
			ProductName: op.ProductName,
			Quantity:    op.Quantity,
			BasePrice:   op.BasePrice,
		})
	}
	return resp
}
