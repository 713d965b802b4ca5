package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// OrderStatus represents the payment state of an order
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusFailed         OrderStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed out of s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusFailed:
		return true
	}
	return false
}

// PaymentMethod is how the customer settles an order. Empty means the
// default PayNow/card flow.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
)

// Customer is the contact snapshot captured at checkout
type Customer struct {
	FullName string `db:"customer_name" json:"fullName"`
	Email    string `db:"customer_email" json:"email"`
	Phone    string `db:"customer_phone" json:"phone"`
}

// OrderItem is a denormalized snapshot of a catalog product at order time.
// Later catalog edits never change a placed order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderItems is the jsonb-backed item list of an order
type OrderItems []OrderItem

// Value implements driver.Valuer for jsonb storage
func (i OrderItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

// Scan implements sql.Scanner for jsonb storage
func (i *OrderItems) Scan(src interface{}) error {
	if src == nil {
		*i = nil
		return nil
	}

	b, ok := src.([]byte)

	if !ok {
		return fmt.Errorf("unsupported type %T for OrderItems", src)
	}

	return json.Unmarshal(b, i)
}

// Order is the central entity: an immutable-at-core record of purchase
// intent tracked through the payment state machine. Items and totals are
// write-once; only Status (and operationally PaymentMethod) transition after
// creation.
type Order struct {
	ID string `db:"id" json:"id"`
	// OrderID is the unique human-readable reference, immutable
	OrderID  string `db:"order_id" json:"orderId"`
	Customer      `json:"customer"`
	Items         OrderItems    `db:"items" json:"items"`
	Subtotal      float64       `db:"subtotal" json:"subtotal"`
	VAT           float64       `db:"vat" json:"vat"`
	Total         float64       `db:"total" json:"total"`
	Currency      string        `db:"currency" json:"currency"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod,omitempty"`
	// PaynowReference correlates asynchronous payment confirmations to the
	// order; initialized equal to OrderID
	PaynowReference string      `db:"paynow_reference" json:"paynowReference"`
	Status          OrderStatus `db:"status" json:"status"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// RoundMoney rounds to cents
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewOrder creates a pending order with totals computed once from the item
// snapshot at the given VAT rate.
func NewOrder(customer Customer, items OrderItems, currency string, method PaymentMethod, vatRate float64) *Order {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}

	subtotal = RoundMoney(subtotal)
	vat := RoundMoney(subtotal * vatRate)

	orderID := GenerateOrderID()
	now := GetCurrentTime()

	return &Order{
		ID:              GenerateID("ord"),
		OrderID:         orderID,
		Customer:        customer,
		Items:           items,
		Subtotal:        subtotal,
		VAT:             vat,
		Total:           RoundMoney(subtotal + vat),
		Currency:        currency,
		PaymentMethod:   method,
		PaynowReference: orderID,
		Status:          OrderStatusPendingPayment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
