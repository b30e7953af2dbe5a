package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/phenrril/cosmetica/internal/domain"
)

type WishlistUC struct {
	Wishlist domain.WishlistRepo
	Products domain.ProductRepo
}

var errWishlistItemNotFound = fmt.Errorf("%w: wishlist item not found", domain.ErrNotFound)

func (uc *WishlistUC) AddItem(ctx context.Context, pr domain.Principal, userID, productID uuid.UUID) (*domain.WishlistItem, error) {
	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: productId is required", domain.ErrInvalidInput)
	}
	if err := ensureProduct(ctx, uc.Products, productID); err != nil {
		return nil, err
	}
	w := &domain.WishlistItem{UserID: userID, ProductID: productID}
	if err := uc.Wishlist.Create(ctx, w); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: Item already in wishlist", domain.ErrDuplicate)
		}
		return nil, err
	}
	return uc.Wishlist.FindByID(ctx, w.ID)
}

func (uc *WishlistUC) RemoveItem(ctx context.Context, pr domain.Principal, id uuid.UUID) error {
	w, err := uc.Wishlist.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return errWishlistItemNotFound
	}
	if err != nil {
		return err
	}
	if !pr.CanActFor(w.UserID) {
		return errWishlistItemNotFound
	}
	err = uc.Wishlist.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return errWishlistItemNotFound
	}
	return err
}

func (uc *WishlistUC) Clear(ctx context.Context, pr domain.Principal, userID uuid.UUID) (int64, error) {
	if err := authorize(pr, userID); err != nil {
		return 0, err
	}
	return uc.Wishlist.ClearByUser(ctx, userID)
}

func (uc *WishlistUC) List(ctx context.Context, pr domain.Principal, userID uuid.UUID) ([]domain.WishlistItem, error) {
	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	return uc.Wishlist.ListByUser(ctx, userID)
}

// MoveAllToCart moves every wishlist entry of the user into the cart in one
// transaction. Entries whose product is gone stay put and are reported.
func (uc *WishlistUC) MoveAllToCart(ctx context.Context, pr domain.Principal, userID uuid.UUID) (res *domain.MoveResult, err error) {
	ctx, span := startSpan(ctx, "wishlist.move_all_to_cart", userID)
	defer func() { endSpan(span, err) }()

	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	return uc.Wishlist.MoveToCart(ctx, userID, nil)
}

// MoveSelectedToCart is MoveAllToCart restricted to ids. Any id that is not
// one of the user's entries aborts the whole move.
func (uc *WishlistUC) MoveSelectedToCart(ctx context.Context, pr domain.Principal, userID uuid.UUID, ids []uuid.UUID) (res *domain.MoveResult, err error) {
	ctx, span := startSpan(ctx, "wishlist.move_selected_to_cart", userID, attribute.Int("wishlist.selected", len(ids)))
	defer func() { endSpan(span, err) }()

	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no wishlist items selected", domain.ErrInvalidInput)
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	res, err = uc.Wishlist.MoveToCart(ctx, userID, unique)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errWishlistItemNotFound
	}
	return res, err
}
