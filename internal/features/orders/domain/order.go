package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrForbidden is returned when a shopper asks for someone else's order.
	ErrForbidden = errors.New("order belongs to another user")
	// ErrInvalidStatusTransition is returned when the requested status cannot follow the current one.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrAlreadyPaid is returned when payment is confirmed twice.
	ErrAlreadyPaid = errors.New("order already paid")
	// ErrInvalidOrder is returned when a checkout or status request is malformed.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrRequestInProgress is returned when an idempotency key is still held by an unfinished request.
	ErrRequestInProgress = errors.New("request with this idempotency key is still in progress")
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusProcessing indicates the order has been placed but not yet shipped.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled indicates the order was called off before delivery.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo reports whether next may follow s. Delivered and Cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is where the order is sent.
type ShippingAddress struct {
	// Address is the street address.
	Address string `json:"address"`
	// City is the city of the shipping address.
	City string `json:"city"`
	// PostalCode is the postal or ZIP code.
	PostalCode string `json:"postal_code"`
	// Country is the destination country.
	Country string `json:"country"`
}

// PaymentResult is the confirmation reported by the payment provider.
type PaymentResult struct {
	// ID is the provider's transaction identifier.
	ID string `json:"id"`
	// Status is the provider's status string (e.g., COMPLETED).
	Status string `json:"status"`
	// UpdateTime is the provider's timestamp for the confirmation.
	UpdateTime string `json:"update_time"`
	// EmailAddress is the payer's email.
	EmailAddress string `json:"email_address"`
}

// OrderItem represents an individual line within an order.
type OrderItem struct {
	// ProductID references the catalog product.
	ProductID string `json:"product_id"`
	// Name is the product name at the time of purchase.
	Name string `json:"name"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// UnitPrice is the server-side price charged per unit.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// Size is the selected size, if any.
	Size string `json:"size,omitempty"`
	// Color is the selected color, if any.
	Color string `json:"color,omitempty"`
}

// LineTotal is the unit price times the quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order in the system.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"id"`
	// UserID is the shopper who placed the order.
	UserID string `json:"user_id"`
	// Items contains the purchased lines.
	Items []OrderItem `json:"order_items"`
	// ShippingAddress is the delivery destination.
	ShippingAddress ShippingAddress `json:"shipping_address"`
	// PaymentMethod is the method chosen at checkout (e.g., PayPal).
	PaymentMethod string `json:"payment_method"`
	// ItemsPrice is the sum of all line totals.
	ItemsPrice decimal.Decimal `json:"items_price"`
	// ShippingPrice is the shipping charge.
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	// TaxPrice is the tax charged on the items.
	TaxPrice decimal.Decimal `json:"tax_price"`
	// DiscountPrice is the coupon discount applied.
	DiscountPrice decimal.Decimal `json:"discount_price"`
	// TotalPrice is what the customer pays.
	TotalPrice decimal.Decimal `json:"total_price"`
	// CouponCode is the redeemed coupon, kept for display and audit.
	CouponCode string `json:"coupon_code,omitempty"`
	// IsPaid is set once payment is confirmed.
	IsPaid bool `json:"is_paid"`
	// PaidAt is when payment was confirmed.
	PaidAt *time.Time `json:"paid_at,omitempty"`
	// PaymentResult is the provider confirmation.
	PaymentResult *PaymentResult `json:"payment_result,omitempty"`
	// Status is the fulfilment state.
	Status OrderStatus `json:"status"`
	// IsDelivered is set when the order reaches Delivered.
	IsDelivered bool `json:"is_delivered"`
	// DeliveredAt is when the order reached Delivered.
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	// CreatedAt is the timestamp when the order was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp of the last change.
	UpdatedAt time.Time `json:"updated_at"`
}

// TransitionTo moves the order to next, stamping delivery when it arrives.
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, o.Status, next)
	}

	o.Status = next
	o.UpdatedAt = now
	if next == OrderStatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	return nil
}

// MarkPaid records a payment confirmation. Cancelled orders cannot be paid.
func (o *Order) MarkPaid(result PaymentResult, now time.Time) error {
	if o.IsPaid {
		return ErrAlreadyPaid
	}
	if o.Status == OrderStatusCancelled {
		return fmt.Errorf("%w: cannot pay a cancelled order", ErrInvalidStatusTransition)
	}

	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &result
	o.UpdatedAt = now
	return nil
}
