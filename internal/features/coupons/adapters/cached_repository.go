package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"heroshop/internal/core/cache"
	"heroshop/internal/core/database"
	"heroshop/internal/core/logger"
	"heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/coupons/ports"

	"go.uber.org/zap"
)

const couponKeyPrefix = "coupon:"

// CachedCouponRepository is a read-through cache in front of another CouponRepository.
// Every write and redemption evicts the cached entry. Cache failures are logged and never
// fail the request; the backing store stays authoritative.
type CachedCouponRepository struct {
	next  ports.CouponRepository
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedCouponRepository wraps next with a cache whose entries live for ttl.
func NewCachedCouponRepository(next ports.CouponRepository, c cache.Cache, ttl time.Duration) *CachedCouponRepository {
	return &CachedCouponRepository{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   logger.Named("coupon_cache"),
	}
}

func couponKey(code string) string {
	return couponKeyPrefix + code
}

// FindByCode serves from the cache when possible and fills it on a miss.
func (r *CachedCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	data, err := r.cache.Get(ctx, couponKey(code))
	if err == nil {
		var coupon domain.Coupon
		if err := json.Unmarshal(data, &coupon); err == nil {
			return &coupon, nil
		}
		r.log.Warn("Discarding unreadable cached coupon", zap.String("code", code))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("Coupon cache read failed", zap.String("code", code), zap.Error(err))
	}

	coupon, err := r.next.FindByCode(ctx, code)
	if err != nil || coupon == nil {
		return coupon, err
	}

	if data, err := json.Marshal(coupon); err == nil {
		if err := r.cache.Set(ctx, couponKey(code), data, r.ttl); err != nil {
			r.log.Warn("Coupon cache write failed", zap.String("code", code), zap.Error(err))
		}
	}
	return coupon, nil
}

// Create stores the coupon and evicts any stale entry for its code.
func (r *CachedCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	if err := r.next.Create(ctx, coupon); err != nil {
		return err
	}
	r.evict(ctx, coupon.Code)
	return nil
}

// Update writes through and evicts.
func (r *CachedCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	if err := r.next.Update(ctx, coupon); err != nil {
		return err
	}
	r.evict(ctx, coupon.Code)
	return nil
}

// Delete removes the coupon and its cached entry.
func (r *CachedCouponRepository) Delete(ctx context.Context, code string) error {
	if err := r.next.Delete(ctx, code); err != nil {
		return err
	}
	r.evict(ctx, code)
	return nil
}

// List always reads from the backing store.
func (r *CachedCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	return r.next.List(ctx)
}

// Redeem increments usage in the backing store and evicts so the next read sees the new count.
// Inside a transaction the eviction waits for the commit, otherwise a concurrent read could cache
// the count from before the increment.
func (r *CachedCouponRepository) Redeem(ctx context.Context, code string, now time.Time) error {
	if err := r.next.Redeem(ctx, code, now); err != nil {
		return err
	}
	database.AfterCommit(ctx, func() { r.evict(context.WithoutCancel(ctx), code) })
	return nil
}

func (r *CachedCouponRepository) evict(ctx context.Context, code string) {
	if err := r.cache.Delete(ctx, couponKey(code)); err != nil {
		r.log.Warn("Coupon cache eviction failed", zap.String("code", code), zap.Error(err))
	}
}
