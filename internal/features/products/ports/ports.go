package ports

import (
	"context"

	"heroshop/internal/core/pagination"
	"heroshop/internal/features/products/domain"
)

// ProductService defines the primary port for catalog operations.
type ProductService interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, page pagination.Page) (*pagination.Result[domain.Product], error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, product *domain.Product) (*domain.Product, error)
}

// ProductRepository defines the secondary port for product storage.
type ProductRepository interface {
	// FindByID returns nil without error when the product does not exist.
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	List(ctx context.Context, page pagination.Page) ([]domain.Product, int64, error)
	// DecrementStock removes qty units only if at least qty are available, returning the updated product.
	DecrementStock(ctx context.Context, id string, qty int) (*domain.Product, error)
}
