package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/cosmetica/internal/domain"
)

// NewGormConfig is shared by every connection the service opens. Foreign keys
// are not created: products may outlive their category and cart or wishlist
// rows may outlive their product.
func NewGormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(level),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.User{}, &domain.CartItem{}, &domain.WishlistItem{},
	)
}
