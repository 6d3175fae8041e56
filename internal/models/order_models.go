package models

import (
	"strings"
	"time"
)

// OrderStatus is the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod is how an order was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentWallet PaymentMethod = "WALLET"
	PaymentCard   PaymentMethod = "CARD"
	PaymentQRIS   PaymentMethod = "QRIS"
)

// ParsePaymentMethod normalises a method name; ok is false for unknown methods.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentWallet, PaymentCard, PaymentQRIS:
		return m, true
	}
	return "", false
}

// Order is a bill: F&B items and/or a table charge.
type Order struct {
	ID            int64          `json:"id" db:"id"`
	SessionID     *int64         `json:"session_id,omitempty" db:"session_id"`
	MemberID      *int64         `json:"member_id,omitempty" db:"member_id"`
	CustomerName  *string        `json:"customer_name,omitempty" db:"customer_name"`
	PromoID       *int64         `json:"promo_id,omitempty" db:"promo_id"`
	Subtotal      int64          `json:"subtotal" db:"subtotal"`
	Discount      int64          `json:"discount" db:"discount"`
	Total         int64          `json:"total" db:"total"`
	Status        OrderStatus    `json:"status" db:"status"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty" db:"payment_method"`
	PaidAt        *time.Time     `json:"paid_at,omitempty" db:"paid_at"`
	CreatedBy     *int64         `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	Items         []OrderItem    `json:"items,omitempty"`
}

// OrderItem is a snapshot of a product at order time. ProductID is nil for table charges.
type OrderItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"order_id" db:"order_id"`
	ProductID   *int64  `json:"product_id,omitempty" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	UnitPrice   int64   `json:"unit_price" db:"unit_price"`
	Quantity    int     `json:"quantity" db:"quantity"`
	LineTotal   int64   `json:"line_total" db:"line_total"`
	Notes       *string `json:"notes,omitempty" db:"notes"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	SessionID *int64  `form:"session_id"`
	MemberID  *int64  `form:"member_id"`
	Status    *string `form:"status"`
	Date      *string `form:"date"` // YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
