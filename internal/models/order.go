package models

import "time"

// Address is a denormalized shipping address copied onto the order at
// checkout so later catalog edits cannot rewrite history.
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	ZipCode string `json:"zip_code"`
}

// Order represents a product order created at checkout.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	TrackingID      string      `json:"tracking_id"`
	Status          string      `json:"status"`
	Total           float64     `json:"total"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingAddress Address     `json:"shipping_address"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is a snapshot of a product line at checkout time.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address        `json:"shipping_address" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required,oneof=CARD TRANSFER CASH_ON_DELIVERY"`
}

// PaymentRequest represents the data needed to pay for an order.
type PaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

// AdminUpdateOrderRequest represents the data an admin can use to update an order.
type AdminUpdateOrderRequest struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
}
