package ports

import (
	"context"
	"time"

	"heroshop/internal/features/coupons/domain"

	"github.com/shopspring/decimal"
)

// CouponService defines the primary port for coupon operations.
type CouponService interface {
	Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error)
	Update(ctx context.Context, code string, coupon *domain.Coupon) (*domain.Coupon, error)
	Delete(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Verify(ctx context.Context, code string, amount decimal.Decimal) (*domain.Verification, error)
}

// CouponRepository defines the secondary port for coupon storage.
// Codes passed in are already normalized.
type CouponRepository interface {
	// FindByCode returns nil without error when no coupon has the code.
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// Create fails with domain.ErrCouponExists when the code is taken.
	Create(ctx context.Context, coupon *domain.Coupon) error
	// Update fails with domain.ErrCouponNotFound when the code does not exist.
	Update(ctx context.Context, coupon *domain.Coupon) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]domain.Coupon, error)
	// Redeem increments the usage counter only if the coupon is still valid at now.
	// It fails with domain.ErrCouponExpiredOrInactive when the conditional update matches nothing.
	Redeem(ctx context.Context, code string, now time.Time) error
}
