package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductInactive
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string          `gorm:"size:180;uniqueIndex;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Status      ProductStatus   `gorm:"type:varchar(10);default:active;index" json:"status"`
	ML          string          `gorm:"column:ml;size:60" json:"ml"`
	Discount    int             `gorm:"not null;default:0" json:"discount"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,1);default:0" json:"rating"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;index" json:"categoryId"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category"`
	Image       string          `gorm:"size:255" json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// EffectivePrice is price * (100 - discount) / 100, unrounded.
func (p *Product) EffectivePrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(100 - p.Discount))).Div(hundred)
}

// UnitPrice is the effective price rounded to cents, as shown and charged.
func (p *Product) UnitPrice() decimal.Decimal { return Cents(p.EffectivePrice()) }

func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		EffectivePrice decimal.Decimal `json:"effectivePrice"`
	}{alias(p), p.UnitPrice()})
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status must be active or inactive", ErrInvalidInput)
	}
	if p.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	return nil
}

type ProductPatch struct {
	Name        Optional[string]
	Description Optional[string]
	Price       Optional[decimal.Decimal]
	Stock       Optional[int]
	Status      Optional[ProductStatus]
	ML          Optional[string]
	Discount    Optional[int]
	CategoryID  Optional[uuid.UUID]
	Image       Optional[string]
}

func (p *Product) Apply(patch ProductPatch) {
	if v, ok := patch.Name.Get(); ok {
		p.Name = v
	}
	if v, ok := patch.Description.Get(); ok {
		p.Description = v
	}
	if v, ok := patch.Price.Get(); ok {
		p.Price = v
	}
	if v, ok := patch.Stock.Get(); ok {
		p.Stock = v
	}
	if v, ok := patch.Status.Get(); ok {
		p.Status = v
	}
	if v, ok := patch.ML.Get(); ok {
		p.ML = v
	}
	if v, ok := patch.Discount.Get(); ok {
		p.Discount = v
	}
	if v, ok := patch.CategoryID.Get(); ok {
		p.CategoryID = v
		p.Category = nil
	}
	if v, ok := patch.Image.Get(); ok {
		p.Image = v
	}
}

const CatalogPageSize = 12

type ProductFilter struct {
	Category   string
	Query      string
	Sort       string // price_asc, price_desc, name, rating, newest
	Page       int
	PageSize   int
	ActiveOnly bool
}

type CatalogPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	PageSize int       `json:"pageSize"`
}
