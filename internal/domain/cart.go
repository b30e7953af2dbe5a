package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product;index" json:"productRef"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Missing   bool      `gorm:"-" json:"missing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CartTotals struct {
	Items        []CartItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"itemCount"`
	MissingCount int             `json:"missingCount"`
}

// ComputeTotals prices the cart from the live product rows at the unit price
// the storefront shows. Lines whose product no longer resolves are flagged
// Missing and contribute nothing.
func ComputeTotals(items []CartItem) CartTotals {
	t := CartTotals{Items: items, Subtotal: decimal.Zero}
	for i := range items {
		it := &items[i]
		if it.Product == nil {
			it.Missing = true
			t.MissingCount++
			continue
		}
		t.Subtotal = t.Subtotal.Add(it.Product.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
		t.ItemCount += it.Quantity
	}
	t.Subtotal = Cents(t.Subtotal)
	t.Tax = Cents(t.Subtotal.Mul(TaxRate))
	switch {
	case t.ItemCount == 0:
		t.Shipping = decimal.Zero
	case t.Subtotal.GreaterThanOrEqual(FreeShippingThreshold):
		t.Shipping = decimal.Zero
	default:
		t.Shipping = FlatShipping
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.Shipping)
	return t
}
