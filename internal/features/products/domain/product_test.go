package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_UnitPrice(t *testing.T) {
	tests := []struct {
		name          string
		price         string
		discountPrice string
		want          string
	}{
		{name: "no sale", price: "25", discountPrice: "0", want: "25"},
		{name: "on sale", price: "25", discountPrice: "19.99", want: "19.99"},
		{name: "sale not cheaper", price: "25", discountPrice: "30", want: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tt.price), DiscountPrice: decimal.RequireFromString(tt.discountPrice)}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.UnitPrice()))
		})
	}
}

func TestProduct_Validate(t *testing.T) {
	valid := func() Product {
		return Product{Name: " Cape ", Price: decimal.NewFromInt(20), Stock: 3}
	}

	p := valid()
	assert.NoError(t, p.Validate())
	assert.Equal(t, "Cape", p.Name)

	for name, mutate := range map[string]func(p *Product){
		"empty name":        func(p *Product) { p.Name = "  " },
		"negative price":    func(p *Product) { p.Price = decimal.NewFromInt(-1) },
		"negative discount": func(p *Product) { p.DiscountPrice = decimal.NewFromInt(-1) },
		"negative stock":    func(p *Product) { p.Stock = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProduct)
		})
	}
}

func TestOutOfStockError(t *testing.T) {
	var err error = &OutOfStockError{ProductID: "p2", Requested: 5, Available: 3}

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, "product p2: out of stock: requested 5, available 3", err.Error())

	var target *OutOfStockError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 3, target.Available)
}
