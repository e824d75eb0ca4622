package entities

import (
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/larder/pkg/schema"
)

// DefaultCurrency is applied to products created without a currency.
const DefaultCurrency = "SEK"

// Product is a sellable item identified by SKU.
type Product struct {
	ID       string
	SKU      string
	Price    decimal.Decimal
	Currency string
	Version  *string
	Tag      *string
}

// ProductSchema declares the fields of Product.
var ProductSchema = &schema.Schema[Product]{
	Entity: "product",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "sku", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "price", Kind: schema.Decimal, Default: decimal.Zero, Check: schema.NonNegative},
		{Name: "currency", Kind: schema.String, Default: DefaultCurrency, Check: schema.Length(3)},
		{Name: "version", Kind: schema.String},
		{Name: "tag", Kind: schema.String},
	},
	Build: func(v schema.Values) Product {
		return Product{
			ID:       v.String("id"),
			SKU:      v.String("sku"),
			Price:    v.Decimal("price"),
			Currency: v.String("currency"),
			Version:  v.StringPtr("version"),
			Tag:      v.StringPtr("tag"),
		}
	},
}

// NewProduct validates fields and builds a Product.
func NewProduct(fields map[string]any) (Product, error) {
	return ProductSchema.New(fields)
}

func (p Product) EntityID() string { return p.ID }

func (p Product) Values() schema.Values {
	return schema.Values{
		"id":       p.ID,
		"sku":      p.SKU,
		"price":    p.Price,
		"currency": p.Currency,
		"version":  schema.OptString(p.Version),
		"tag":      schema.OptString(p.Tag),
	}
}
