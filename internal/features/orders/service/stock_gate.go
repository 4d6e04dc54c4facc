package service

import (
	"context"
	"fmt"

	"heroshop/internal/features/orders/domain"
	"heroshop/internal/features/orders/ports"
	productdomain "heroshop/internal/features/products/domain"
)

// CheckStock verifies every line in order and stops at the first one that cannot be served.
// It only reads; the products it returns line up with items.
func CheckStock(ctx context.Context, items []domain.CartItem, lookup ports.ProductLookup) ([]*productdomain.Product, error) {
	products := make([]*productdomain.Product, 0, len(items))
	for _, item := range items {
		product, err := lookup.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("stock gate: failed to load product %s: %w", item.ProductID, err)
		}
		if product == nil {
			return nil, &productdomain.ProductNotFoundError{ProductID: item.ProductID}
		}
		if item.Quantity > product.Stock {
			return nil, &productdomain.OutOfStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
		products = append(products, product)
	}
	return products, nil
}
