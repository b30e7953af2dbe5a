package domain

import "github.com/shopspring/decimal"

func init() {
	// the storefront reads prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShipping          = decimal.RequireFromString("5.99")

	hundred = decimal.NewFromInt(100)
)

// Cents rounds to two places, half away from zero.
func Cents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
