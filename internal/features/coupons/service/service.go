package service

import (
	"context"
	"fmt"

	"heroshop/internal/core/clock"
	"heroshop/internal/core/logger"
	"heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/coupons/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponServiceImpl implements ports.CouponService.
type CouponServiceImpl struct {
	repo  ports.CouponRepository
	clock clock.Clock
}

// NewCouponService creates a new CouponServiceImpl.
func NewCouponService(repo ports.CouponRepository, clk clock.Clock) *CouponServiceImpl {
	return &CouponServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

// Create validates and stores a new coupon. The usage counter always starts at zero.
func (s *CouponServiceImpl) Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	now := s.clock.Now()
	coupon.Code = domain.NormalizeCode(coupon.Code)
	coupon.UsedCount = 0
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	if err := coupon.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("service: failed to create coupon: %w", err)
	}

	logger.Get().Info("Coupon created", zap.String("code", coupon.Code))
	return coupon, nil
}

// Update replaces the editable fields of an existing coupon. The code in the path wins over the body,
// and the usage counter is carried over from the stored record.
func (s *CouponServiceImpl) Update(ctx context.Context, code string, coupon *domain.Coupon) (*domain.Coupon, error) {
	existing, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	coupon.Code = existing.Code
	coupon.UsedCount = existing.UsedCount
	coupon.CreatedAt = existing.CreatedAt
	coupon.UpdatedAt = s.clock.Now()

	if err := coupon.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, fmt.Errorf("service: failed to update coupon: %w", err)
	}

	return coupon, nil
}

// Delete removes a coupon.
func (s *CouponServiceImpl) Delete(ctx context.Context, code string) error {
	code = domain.NormalizeCode(code)
	if err := s.repo.Delete(ctx, code); err != nil {
		return fmt.Errorf("service: failed to delete coupon: %w", err)
	}

	logger.Get().Info("Coupon deleted", zap.String("code", code))
	return nil
}

// Get retrieves a coupon by code, matching case-insensitively.
func (s *CouponServiceImpl) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	code = domain.NormalizeCode(code)
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, &domain.CouponError{Code: code, Err: domain.ErrCouponNotFound}
	}

	return coupon, nil
}

// List returns every coupon.
func (s *CouponServiceImpl) List(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list coupons: %w", err)
	}

	return coupons, nil
}

// Verify previews the discount a code would give on amount. It never redeems the coupon.
func (s *CouponServiceImpl) Verify(ctx context.Context, code string, amount decimal.Decimal) (*domain.Verification, error) {
	coupon, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	discount, err := coupon.Apply(amount, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return &domain.Verification{
		Code:               coupon.Code,
		DiscountType:       coupon.DiscountType,
		DiscountAmount:     coupon.DiscountAmount,
		Discount:           discount,
		TotalAfterDiscount: amount.Sub(discount),
	}, nil
}
