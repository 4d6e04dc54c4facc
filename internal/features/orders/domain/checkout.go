package domain

import (
	"fmt"
	"strings"
)

// CartItem is one line of a checkout request. Prices are never taken from the client.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Checkout is everything needed to place an order.
type Checkout struct {
	UserID          string
	Items           []CartItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	CouponCode      string
}

// Validate rejects empty carts and non-positive quantities.
func (c Checkout) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidOrder)
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: no order items", ErrInvalidOrder)
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidOrder, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrder, i)
		}
	}
	return nil
}
