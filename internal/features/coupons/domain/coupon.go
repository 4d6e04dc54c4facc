package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon's amount is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Coupon is a redeemable discount code with a validity window and an optional usage cap.
type Coupon struct {
	Code            string          `json:"code"`
	DiscountType    DiscountType    `json:"discount_type"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	MinimumPurchase decimal.Decimal `json:"minimum_purchase"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	UsageLimit      *int            `json:"usage_limit"` // nil means unlimited
	UsedCount       int             `json:"used_count"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NormalizeCode trims and upper-cases a code. Every lookup and store goes through it.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid reports whether the coupon is redeemable at now. Both window bounds are inclusive.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	if c.UsageLimit == nil {
		return true
	}
	return c.UsedCount < *c.UsageLimit
}

// ComputeDiscount returns the discount for a purchase that already satisfies the coupon's
// preconditions. Percentage discounts are rounded to cents; fixed discounts never exceed the purchase.
func (c *Coupon) ComputeDiscount(purchase decimal.Decimal) (decimal.Decimal, error) {
	if purchase.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative purchase amount %s", ErrInvalidCouponUsage, purchase)
	}
	if purchase.LessThan(c.MinimumPurchase) {
		return decimal.Zero, fmt.Errorf("%w: purchase %s below minimum %s", ErrInvalidCouponUsage, purchase, c.MinimumPurchase)
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = purchase.Mul(c.DiscountAmount).Div(hundred).Round(2)
	case DiscountTypeFixed:
		discount = c.DiscountAmount
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown discount type %q", ErrInvalidCouponUsage, c.DiscountType)
	}

	if discount.GreaterThan(purchase) {
		discount = purchase
	}
	return discount, nil
}

// Apply checks validity and the minimum purchase, then computes the discount.
// Failures carry the coupon code and the reason the coupon was declined.
func (c *Coupon) Apply(purchase decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !c.IsValid(now) {
		return decimal.Zero, &CouponError{Code: c.Code, Err: ErrCouponExpiredOrInactive}
	}
	if purchase.LessThan(c.MinimumPurchase) {
		return decimal.Zero, &MinimumPurchaseError{Code: c.Code, Required: c.MinimumPurchase, Actual: purchase}
	}
	return c.ComputeDiscount(purchase)
}

// Validate enforces the data-model invariants on create and update.
func (c *Coupon) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidCoupon)
	}
	if c.DiscountType != DiscountTypePercentage && c.DiscountType != DiscountTypeFixed {
		return fmt.Errorf("%w: discount type must be percentage or fixed", ErrInvalidCoupon)
	}
	if c.DiscountAmount.IsNegative() {
		return fmt.Errorf("%w: discount amount must not be negative", ErrInvalidCoupon)
	}
	if c.DiscountType == DiscountTypePercentage && c.DiscountAmount.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentage discount must be between 0 and 100", ErrInvalidCoupon)
	}
	if c.MinimumPurchase.IsNegative() {
		return fmt.Errorf("%w: minimum purchase must not be negative", ErrInvalidCoupon)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidCoupon)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", ErrInvalidCoupon)
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return fmt.Errorf("%w: usage limit must not be negative", ErrInvalidCoupon)
	}
	if c.UsedCount < 0 {
		return fmt.Errorf("%w: used count must not be negative", ErrInvalidCoupon)
	}
	return nil
}

// Verification is the preview returned when a shopper checks a code against a cart amount.
type Verification struct {
	Code               string          `json:"code"`
	DiscountType       DiscountType    `json:"discount_type"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	Discount           decimal.Decimal `json:"discount"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
}
