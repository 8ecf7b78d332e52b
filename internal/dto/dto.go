package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forno/pizza-shop-api/internal/model"
)

// --- Auth ---

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- User ---

type UserResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          model.UserRole `json:"role"`
	Phone         string         `json:"phone"`
	StreetAddress string         `json:"street_address"`
	PostalCode    string         `json:"postal_code"`
	City          string         `json:"city"`
	Country       string         `json:"country"`
	Image         string         `json:"image"`
	CreatedAt     time.Time      `json:"created_at"`
}

type UpdateUserRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	StreetAddress *string `json:"street_address"`
	PostalCode    *string `json:"postal_code"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	Image         *string `json:"image"`
}

type ChangeRoleRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

type CreateSuperAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// --- Category ---

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// --- Product ---

type VariantRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Image       string           `json:"image"`
	BasePrice   decimal.Decimal  `json:"base_price" binding:"required"`
	CategoryID  uuid.UUID        `json:"category_id" binding:"required"`
	Sizes       []VariantRequest `json:"sizes"`
	Extras      []VariantRequest `json:"extras"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	// Sizes and extras are edited as a sub-form of the product form and
	// replace the existing set when present.
	Sizes  []VariantRequest `json:"sizes"`
	Extras []VariantRequest `json:"extras"`
}

type VariantResponse struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	BasePrice   decimal.Decimal   `json:"base_price"`
	CategoryID  uuid.UUID         `json:"category_id"`
	Sizes       []VariantResponse `json:"sizes"`
	Extras      []VariantResponse `json:"extras"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type MenuCategoryResponse struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Products []ProductResponse `json:"products"`
}

// --- Order ---

type CartItemRequest struct {
	ProductID uuid.UUID   `json:"product_id" binding:"required"`
	Quantity  int         `json:"quantity" binding:"required,min=1"`
	SizeID    *uuid.UUID  `json:"size_id"`
	ExtraIDs  []uuid.UUID `json:"extra_ids"`
}

type CreateOrderRequest struct {
	UserEmail     string              `json:"user_email"`
	Phone         string              `json:"phone"`
	StreetAddress string              `json:"street_address"`
	PostalCode    string              `json:"postal_code"`
	City          string              `json:"city"`
	Country       string              `json:"country"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Notes         string              `json:"notes"`
	CartItems     []CartItemRequest   `json:"cart_items"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

type OrderProductResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

type OrderResponse struct {
	ID                    uuid.UUID              `json:"id"`
	UserEmail             string                 `json:"user_email"`
	Phone                 string                 `json:"phone"`
	StreetAddress         string                 `json:"street_address"`
	PostalCode            string                 `json:"postal_code"`
	City                  string                 `json:"city"`
	Country               string                 `json:"country"`
	Status                model.OrderStatus      `json:"status"`
	PaymentMethod         model.PaymentMethod    `json:"payment_method"`
	PaymentStatus         model.PaymentStatus    `json:"payment_status"`
	Paid                  bool                   `json:"paid"`
	SubTotal              decimal.Decimal        `json:"sub_total"`
	DeliveryFee           decimal.Decimal        `json:"delivery_fee"`
	TotalPrice            decimal.Decimal        `json:"total_price"`
	StripePaymentIntentID string                 `json:"stripe_payment_intent_id,omitempty"`
	Notes                 string                 `json:"notes,omitempty"`
	Products              []OrderProductResponse `json:"products"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

type OrderStatsResponse struct {
	StatusCounts map[model.OrderStatus]int `json:"status_counts"`
	TotalOrders  int                       `json:"total_orders"`
	TotalRevenue decimal.Decimal           `json:"total_revenue"`
}

// --- Payment ---

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// --- Upload ---

type UploadResponse struct {
	URL string `json:"url"`
}
