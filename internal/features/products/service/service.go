package service

import (
	"context"
	"fmt"

	"heroshop/internal/core/clock"
	"heroshop/internal/core/pagination"
	"heroshop/internal/features/products/domain"
	"heroshop/internal/features/products/ports"

	"github.com/google/uuid"
)

// ProductServiceImpl implements ports.ProductService.
type ProductServiceImpl struct {
	repo  ports.ProductRepository
	clock clock.Clock
}

// NewProductService creates a new ProductServiceImpl.
func NewProductService(repo ports.ProductRepository, clk clock.Clock) *ProductServiceImpl {
	return &ProductServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

// Get retrieves a product by id.
func (s *ProductServiceImpl) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get product: %w", err)
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return product, nil
}

// List returns one page of the catalog.
func (s *ProductServiceImpl) List(ctx context.Context, page pagination.Page) (*pagination.Result[domain.Product], error) {
	products, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return &pagination.Result[domain.Product]{
		Items: products,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

// Create assigns an id and stores a new product.
func (s *ProductServiceImpl) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	product.ID = uuid.NewString()
	product.InStock = product.Stock > 0
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces the catalog fields of an existing product.
func (s *ProductServiceImpl) Update(ctx context.Context, id string, product *domain.Product) (*domain.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	product.ID = existing.ID
	product.InStock = product.Stock > 0
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return product, nil
}
