package domain

import (
	"context"

	"github.com/google/uuid"
)

type CategoryRepo interface {
	Create(ctx context.Context, c *Category) error
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepo interface {
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CartItem, error)
	// AddOrIncrement inserts a quantity-1 line or bumps the existing one.
	AddOrIncrement(ctx context.Context, userID, productID uuid.UUID) (*CartItem, bool, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) (*CartItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// MoveToWishlist deletes the line and saves its product to the wishlist atomically.
	MoveToWishlist(ctx context.Context, id uuid.UUID) (*WishlistItem, error)
}

type WishlistRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*WishlistItem, error)
	Create(ctx context.Context, w *WishlistItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// MoveToCart moves the given entries (all of the user's when ids is nil)
	// into the cart in a single transaction.
	MoveToCart(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*MoveResult, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
