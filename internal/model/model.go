package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRole string

const (
	RoleUser       UserRole = "USER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status. No transition table is
// enforced: any status may follow any status via the admin update.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodStripe
}

type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Password      string
	Role          UserRole
	Phone         string
	StreetAddress string
	PostalCode    string
	City          string
	Country       string
	Image         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Image       string
	BasePrice   decimal.Decimal
	CategoryID  uuid.UUID
	Sizes       []Size
	Extras      []Extra
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Size is a product variant priced as a delta on the base price.
type Size struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
}

// Extra is an optional add-on priced as a delta on the base price.
type Extra struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
}

// Order snapshots the customer's contact and address at checkout time.
// It does not reference a live User row.
type Order struct {
	ID                    uuid.UUID
	UserEmail             string
	Phone                 string
	StreetAddress         string
	PostalCode            string
	City                  string
	Country               string
	Status                OrderStatus
	PaymentMethod         PaymentMethod
	PaymentStatus         PaymentStatus
	Paid                  bool
	SubTotal              decimal.Decimal
	DeliveryFee           decimal.Decimal
	TotalPrice            decimal.Decimal
	StripePaymentIntentID string
	Notes                 string
	Products              []OrderProduct
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type OrderProduct struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	// ProductName and BasePrice are joined in on reads for display and
	// emails; they are not columns of order_products.
	ProductName string
	BasePrice   decimal.Decimal
}

type NotificationKind string

const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationStatusUpdate      NotificationKind = "status_update"
)

// NotificationMessage is the payload published to the notification queue.
type NotificationMessage struct {
	Kind    NotificationKind `json:"kind"`
	OrderID uuid.UUID        `json:"order_id"`
	Status  OrderStatus      `json:"status,omitempty"`
}
