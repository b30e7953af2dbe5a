package domain

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product;index" json:"productRef"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"productId"`
	Missing   bool      `gorm:"-" json:"missing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoveResult reports a move from wishlist to cart. Skipped holds the wishlist
// entries left in place because their product no longer exists.
type MoveResult struct {
	Moved   int         `json:"moved"`
	Skipped []uuid.UUID `json:"skipped"`
	Cart    []CartItem  `json:"cart"`
}
