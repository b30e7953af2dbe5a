package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/cosmetica/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	list := []domain.CartItem{}
	if err := r.db.WithContext(ctx).Preload("Product.Category").
		Where("user_id = ?", userID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Missing = list[i].Product == nil
	}
	return list, nil
}

func (r *CartRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	var it domain.CartItem
	if err := r.db.WithContext(ctx).Preload("Product.Category").First(&it, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	it.Missing = it.Product == nil
	return &it, nil
}

func (r *CartRepo) AddOrIncrement(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, bool, error) {
	var (
		item    domain.CartItem
		created bool
	)
	run := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, err = addOrIncrement(tx, userID, productID, &item)
			return err
		})
	}
	err := run()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent add inserted the line first
		err = run()
	}
	if err != nil {
		return nil, false, translate(err)
	}
	out, err := r.FindByID(ctx, item.ID)
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func addOrIncrement(tx *gorm.DB, userID, productID uuid.UUID, item *domain.CartItem) (bool, error) {
	err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(item).Error
	switch {
	case err == nil:
		item.Quantity++
		return false, tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
			Updates(map[string]any{"quantity": gorm.Expr("quantity + ?", 1), "updated_at": time.Now()}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		*item = domain.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: 1}
		return true, tx.Create(item).Error
	}
	return false, err
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) (*domain.CartItem, error) {
	res := r.db.WithContext(ctx).Model(&domain.CartItem{}).Where("id = ?", id).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *CartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepo) ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartRepo) MoveToWishlist(ctx context.Context, id uuid.UUID) (*domain.WishlistItem, error) {
	var saved domain.WishlistItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line domain.CartItem
		if err := tx.First(&line, "id = ?", id).Error; err != nil {
			return err
		}
		err := tx.Where("user_id = ? AND product_id = ?", line.UserID, line.ProductID).First(&saved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			saved = domain.WishlistItem{ID: uuid.New(), UserID: line.UserID, ProductID: line.ProductID}
			err = tx.Create(&saved).Error
		}
		if err != nil {
			return err
		}
		return tx.Delete(&domain.CartItem{}, "id = ?", line.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &saved, nil
}
