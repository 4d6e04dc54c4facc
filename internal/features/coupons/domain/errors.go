package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound          = errors.New("coupon not found")
	ErrCouponExpiredOrInactive = errors.New("coupon expired or inactive")
	ErrMinimumPurchaseNotMet   = errors.New("minimum purchase not met")
	ErrInvalidCoupon           = errors.New("invalid coupon")
	ErrCouponExists            = errors.New("coupon already exists")

	// ErrInvalidCouponUsage means the discount calculator was called without its preconditions holding.
	ErrInvalidCouponUsage = errors.New("invalid coupon usage")
)

// CouponError attaches the offending code to a coupon failure.
type CouponError struct {
	Code string
	Err  error
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %s: %v", e.Code, e.Err)
}

func (e *CouponError) Unwrap() error {
	return e.Err
}

// MinimumPurchaseError reports how far a purchase fell short of the coupon threshold.
type MinimumPurchaseError struct {
	Code     string
	Required decimal.Decimal
	Actual   decimal.Decimal
}

func (e *MinimumPurchaseError) Error() string {
	return fmt.Sprintf("coupon %s: %v: requires %s, got %s", e.Code, ErrMinimumPurchaseNotMet, e.Required.StringFixed(2), e.Actual.StringFixed(2))
}

func (e *MinimumPurchaseError) Unwrap() error {
	return ErrMinimumPurchaseNotMet
}
