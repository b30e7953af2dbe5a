package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/cosmetica/internal/domain"
)

// seedCatalog fills an empty database with a small demo catalog.
func seedCatalog(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	cats := map[string]*domain.Category{
		"Skincare":  {ID: uuid.New(), Name: "Skincare", Status: domain.CategoryActive},
		"Makeup":    {ID: uuid.New(), Name: "Makeup", Status: domain.CategoryActive},
		"Fragrance": {ID: uuid.New(), Name: "Fragrance", Status: domain.CategoryActive},
	}
	prods := []struct {
		name, cat, price, ml string
		discount, stock      int
	}{
		{"Hydrating Serum", "Skincare", "24.90", "30 ml", 10, 40},
		{"Gentle Cleanser", "Skincare", "12.50", "150 ml", 0, 60},
		{"Night Repair Cream", "Skincare", "39.00", "50 ml", 15, 25},
		{"Matte Lipstick", "Makeup", "9.99", "", 0, 80},
		{"Volume Mascara", "Makeup", "14.00", "10 ml", 5, 50},
		{"Eau de Parfum Rose", "Fragrance", "68.00", "100 ml", 20, 15},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cats {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}
		for _, p := range prods {
			row := &domain.Product{
				ID:         uuid.New(),
				Name:       p.name,
				Price:      decimal.RequireFromString(p.price),
				Stock:      p.stock,
				Status:     domain.ProductActive,
				ML:         p.ml,
				Discount:   p.discount,
				CategoryID: cats[p.cat].ID,
			}
			if err := tx.Omit("Category").Create(row).Error; err != nil {
				return err
			}
		}
		log.Info().Int("categories", len(cats)).Int("products", len(prods)).Msg("seeded demo catalog")
		return nil
	})
}
