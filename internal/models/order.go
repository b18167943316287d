package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}

	return false
}

// Cancellable reports whether the server accepts a cancel transition.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

type OrderItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID            int64           `json:"id"`
	Status        OrderStatus     `json:"status"`
	StatusDisplay string          `json:"status_display,omitempty"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	PostalCode    string          `json:"postal_code,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []OrderItem     `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatusLabel prefers the server's display name for the status.
func (o *Order) StatusLabel() string {
	if o.StatusDisplay != "" {
		return o.StatusDisplay
	}

	if o.Status == "" {
		return "Unknown"
	}

	return strings.ToUpper(string(o.Status[:1])) + string(o.Status[1:])
}

type CreateOrderRequest struct {
	FullName   string `json:"full_name"   validate:"required,max=200"`
	Phone      string `json:"phone"       validate:"required,max=20"`
	Email      string `json:"email"       validate:"required,email"`
	Address    string `json:"address"     validate:"required"`
	City       string `json:"city"        validate:"required,max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Notes      string `json:"notes,omitempty"`
}

type OrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}
