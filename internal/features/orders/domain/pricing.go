package domain

import "github.com/shopspring/decimal"

// PricingPolicy holds the shipping and tax rules applied to every order.
type PricingPolicy struct {
	// ShippingFlatFee is charged when the items total is below the free-shipping threshold.
	ShippingFlatFee decimal.Decimal
	// FreeShippingThreshold is the items total from which shipping is free.
	FreeShippingThreshold decimal.Decimal
	// TaxRate is applied to the items total (0.15 means 15%).
	TaxRate decimal.Decimal
}

// NewPricingPolicy builds a policy from configuration values.
func NewPricingPolicy(flatFee, freeThreshold, taxRate float64) PricingPolicy {
	return PricingPolicy{
		ShippingFlatFee:       decimal.NewFromFloat(flatFee),
		FreeShippingThreshold: decimal.NewFromFloat(freeThreshold),
		TaxRate:               decimal.NewFromFloat(taxRate),
	}
}

// Totals are the derived money fields of an order.
type Totals struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	DiscountPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Quote prices an items total and a discount. The total never drops below zero.
func (p PricingPolicy) Quote(itemsPrice, discount decimal.Decimal) Totals {
	shipping := p.ShippingFlatFee
	if itemsPrice.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := itemsPrice.Mul(p.TaxRate).Round(2)

	total := itemsPrice.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		DiscountPrice: discount,
		TotalPrice:    total,
	}
}

// Apply copies the totals onto the order.
func (t Totals) Apply(o *Order) {
	o.ItemsPrice = t.ItemsPrice
	o.ShippingPrice = t.ShippingPrice
	o.TaxPrice = t.TaxPrice
	o.DiscountPrice = t.DiscountPrice
	o.TotalPrice = t.TotalPrice
}
