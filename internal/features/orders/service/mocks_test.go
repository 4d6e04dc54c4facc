package service

import (
	"context"
	"time"

	"heroshop/internal/core/pagination"
	coupondomain "heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/orders/domain"
	productdomain "heroshop/internal/features/products/domain"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of ports.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, page pagination.Page) ([]domain.Order, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) SavePayment(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) SaveStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	return m.Called(ctx, order, from).Error(0)
}

// MockProductStore is a mock implementation of ports.ProductStore
type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) FindByID(ctx context.Context, id string) (*productdomain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productdomain.Product), args.Error(1)
}

func (m *MockProductStore) DecrementStock(ctx context.Context, id string, qty int) (*productdomain.Product, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productdomain.Product), args.Error(1)
}

// MockCouponStore is a mock implementation of ports.CouponStore
type MockCouponStore struct {
	mock.Mock
}

func (m *MockCouponStore) FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupondomain.Coupon), args.Error(1)
}

func (m *MockCouponStore) Redeem(ctx context.Context, code string, now time.Time) error {
	return m.Called(ctx, code, now).Error(0)
}

// MockIdempotencyStore is a mock implementation of ports.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	return m.Called(ctx, key, orderID).Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// inlineTx runs the unit of work directly and counts how often it was asked to.
type inlineTx struct {
	calls int
}

func (t *inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
