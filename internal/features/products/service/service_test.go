package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"heroshop/internal/core/clock"
	"heroshop/internal/core/pagination"
	"heroshop/internal/features/products/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ports.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, page pagination.Page) ([]domain.Product, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, clock.Fixed(now))
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()

		created, err := svc.Create(ctx, &domain.Product{Name: "Hero Tee", Price: decimal.NewFromInt(25), Stock: 4})
		require.NoError(t, err)

		_, parseErr := uuid.Parse(created.ID)
		assert.NoError(t, parseErr)
		assert.True(t, created.InStock)
		assert.Equal(t, now, created.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("ZeroStockNotInStock", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, clock.Fixed(now))
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		created, err := svc.Create(ctx, &domain.Product{Name: "Sold Out Cape", Price: decimal.NewFromInt(40)})
		require.NoError(t, err)
		assert.False(t, created.InStock)
	})

	t.Run("Invalid", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, clock.Fixed(now))

		_, err := svc.Create(ctx, &domain.Product{Name: "", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, clock.Fixed(now))

	repo.On("FindByID", ctx, "missing").Return(nil, nil).Once()
	repo.On("FindByID", ctx, "broken").Return(nil, errors.New("db error")).Once()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Get(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, clock.Fixed(now))

	created := now.Add(-24 * time.Hour)
	repo.On("FindByID", ctx, "p1").Return(&domain.Product{ID: "p1", Name: "Old", CreatedAt: created}, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == "p1" && p.Name == "New" && !p.InStock
	})).Return(nil).Once()

	updated, err := svc.Update(ctx, "p1", &domain.Product{ID: "ignored", Name: "New", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, created, updated.CreatedAt)
	repo.AssertExpectations(t)
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, clock.Fixed(now))
	page := pagination.New(2, 10)

	repo.On("List", ctx, page).Return([]domain.Product{{ID: "p11"}}, int64(11), nil).Once()

	result, err := svc.List(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Len(t, result.Items, 1)
}
