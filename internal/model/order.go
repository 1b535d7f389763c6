package model

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a customer order. Only the payment and delivery status
// fields change after creation.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user" db:"user_id"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      float64         `json:"itemsPrice" db:"items_price"`
	ShippingPrice   float64         `json:"shippingPrice" db:"shipping_price"`
	TaxPrice        float64         `json:"taxPrice" db:"tax_price"`
	TotalPrice      float64         `json:"totalPrice" db:"total_price"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	IsDelivered     bool            `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a snapshot of a product at the time the order was placed.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"product" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"qty" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	Image     string    `json:"image" db:"image"`
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	Address    string `json:"address" db:"shipping_address" validate:"required"`
	City       string `json:"city" db:"shipping_city" validate:"required"`
	PostalCode string `json:"postalCode" db:"shipping_postal_code" validate:"required"`
	Country    string `json:"country" db:"shipping_country" validate:"required"`
}

// PaymentResult is the payment provider's confirmation of a paid order.
type PaymentResult struct {
	ID           string `json:"id" db:"payment_id" validate:"required"`
	Status       string `json:"status" db:"payment_status" validate:"required"`
	UpdateTime   string `json:"update_time" db:"payment_update_time"`
	EmailAddress string `json:"email_address" db:"payment_email" validate:"omitempty,email"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" validate:"required"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product" validate:"required"`
	Quantity  int       `json:"qty" validate:"required,gt=0"`
}
