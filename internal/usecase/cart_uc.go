package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/phenrril/cosmetica/internal/domain"
)

type CartUC struct {
	Cart     domain.CartRepo
	Products domain.ProductRepo
}

var errCartItemNotFound = fmt.Errorf("%w: cart item not found", domain.ErrNotFound)

// AddItem puts one unit of the product in the user's cart. The bool reports
// whether a new line was created rather than an existing one incremented.
func (uc *CartUC) AddItem(ctx context.Context, pr domain.Principal, userID, productID uuid.UUID) (item *domain.CartItem, created bool, err error) {
	ctx, span := startSpan(ctx, "cart.add_item", userID, attribute.String("product.id", productID.String()))
	defer func() { endSpan(span, err) }()

	if err := authorize(pr, userID); err != nil {
		return nil, false, err
	}
	if productID == uuid.Nil {
		return nil, false, fmt.Errorf("%w: productId is required", domain.ErrInvalidInput)
	}
	if err := ensureProduct(ctx, uc.Products, productID); err != nil {
		return nil, false, err
	}
	return uc.Cart.AddOrIncrement(ctx, userID, productID)
}

// UpdateQuantity sets the line quantity. Stock is not consulted.
func (uc *CartUC) UpdateQuantity(ctx context.Context, pr domain.Principal, lineID uuid.UUID, qty int) (*domain.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}
	if _, err := uc.ownedLine(ctx, pr, lineID); err != nil {
		return nil, err
	}
	return uc.Cart.UpdateQuantity(ctx, lineID, qty)
}

func (uc *CartUC) RemoveItem(ctx context.Context, pr domain.Principal, lineID uuid.UUID) error {
	if _, err := uc.ownedLine(ctx, pr, lineID); err != nil {
		return err
	}
	err := uc.Cart.Delete(ctx, lineID)
	if errors.Is(err, domain.ErrNotFound) {
		return errCartItemNotFound
	}
	return err
}

func (uc *CartUC) Clear(ctx context.Context, pr domain.Principal, userID uuid.UUID) (int64, error) {
	if err := authorize(pr, userID); err != nil {
		return 0, err
	}
	return uc.Cart.ClearByUser(ctx, userID)
}

func (uc *CartUC) List(ctx context.Context, pr domain.Principal, userID uuid.UUID) ([]domain.CartItem, error) {
	if err := authorize(pr, userID); err != nil {
		return nil, err
	}
	return uc.Cart.ListByUser(ctx, userID)
}

func (uc *CartUC) Summary(ctx context.Context, pr domain.Principal, userID uuid.UUID) (*domain.CartTotals, error) {
	items, err := uc.List(ctx, pr, userID)
	if err != nil {
		return nil, err
	}
	t := domain.ComputeTotals(items)
	return &t, nil
}

// MoveToWishlist saves the line's product for later and drops the line.
func (uc *CartUC) MoveToWishlist(ctx context.Context, pr domain.Principal, lineID uuid.UUID) (w *domain.WishlistItem, err error) {
	ctx, span := startSpan(ctx, "cart.move_to_wishlist", pr.UserID, attribute.String("cart_item.id", lineID.String()))
	defer func() { endSpan(span, err) }()

	if _, err := uc.ownedLine(ctx, pr, lineID); err != nil {
		return nil, err
	}
	w, err = uc.Cart.MoveToWishlist(ctx, lineID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errCartItemNotFound
	}
	return w, err
}

// ownedLine hides lines of other users behind not found.
func (uc *CartUC) ownedLine(ctx context.Context, pr domain.Principal, lineID uuid.UUID) (*domain.CartItem, error) {
	line, err := uc.Cart.FindByID(ctx, lineID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if !pr.CanActFor(line.UserID) {
		return nil, errCartItemNotFound
	}
	return line, nil
}

func authorize(pr domain.Principal, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	if !pr.CanActFor(userID) {
		return domain.ErrForbidden
	}
	return nil
}

func ensureProduct(ctx context.Context, products domain.ProductRepo, id uuid.UUID) error {
	_, err := products.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	return err
}
