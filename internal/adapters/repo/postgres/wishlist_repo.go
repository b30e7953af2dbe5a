package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/cosmetica/internal/domain"
)

type WishlistRepo struct {
	db   *gorm.DB
	cart *CartRepo
}

func NewWishlistRepo(db *gorm.DB) *WishlistRepo {
	return &WishlistRepo{db: db, cart: NewCartRepo(db)}
}

func (r *WishlistRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WishlistItem, error) {
	list := []domain.WishlistItem{}
	if err := r.db.WithContext(ctx).Preload("Product.Category").
		Where("user_id = ?", userID).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Missing = list[i].Product == nil
	}
	return list, nil
}

func (r *WishlistRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.WishlistItem, error) {
	var w domain.WishlistItem
	if err := r.db.WithContext(ctx).Preload("Product.Category").First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	w.Missing = w.Product == nil
	return &w, nil
}

func (r *WishlistRepo) Create(ctx context.Context, w *domain.WishlistItem) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Omit("Product").Create(w).Error)
}

func (r *WishlistRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.WishlistItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WishlistRepo) ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.WishlistItem{})
	return res.RowsAffected, res.Error
}

func (r *WishlistRepo) MoveToCart(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*domain.MoveResult, error) {
	res := &domain.MoveResult{Skipped: []uuid.UUID{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := []domain.WishlistItem{}
		q := tx.Where("user_id = ?", userID)
		if ids != nil {
			q = q.Where("id IN ?", ids)
		}
		if err := q.Order("created_at asc").Find(&entries).Error; err != nil {
			return err
		}
		if ids != nil && len(entries) != len(ids) {
			return domain.ErrNotFound
		}
		if len(entries) == 0 {
			return nil
		}

		pids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			pids = append(pids, e.ProductID)
		}
		var found []uuid.UUID
		if err := tx.Model(&domain.Product{}).Where("id IN ?", pids).Pluck("id", &found).Error; err != nil {
			return err
		}
		live := make(map[uuid.UUID]bool, len(found))
		for _, id := range found {
			live[id] = true
		}

		for _, e := range entries {
			if !live[e.ProductID] {
				res.Skipped = append(res.Skipped, e.ID)
				continue
			}
			var line domain.CartItem
			if _, err := addOrIncrement(tx, userID, e.ProductID, &line); err != nil {
				return err
			}
			if err := tx.Delete(&domain.WishlistItem{}, "id = ?", e.ID).Error; err != nil {
				return err
			}
			res.Moved++
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	cart, err := r.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res.Cart = cart
	return res, nil
}
