package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("out of stock")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a catalog item. Stock is decremented when orders are placed.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discount_price"` // zero means no sale price
	Stock         int             `json:"stock"`
	InStock       bool            `json:"in_stock"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// UnitPrice is the price charged per unit: the sale price when it undercuts the list price.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return p.DiscountPrice
	}
	return p.Price
}

// Validate checks catalog invariants and normalizes the name.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.DiscountPrice.IsNegative() {
		return fmt.Errorf("%w: discount price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

// ProductNotFoundError names the product a line item referenced.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s: %v", e.ProductID, ErrProductNotFound)
}

func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// OutOfStockError reports a line item whose quantity exceeds the available stock.
type OutOfStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s: %v: requested %d, available %d", e.ProductID, ErrOutOfStock, e.Requested, e.Available)
}

func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}
