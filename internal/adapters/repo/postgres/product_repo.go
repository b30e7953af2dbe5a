package postgres

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/cosmetica/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	list := []domain.Product{}
	if err := r.db.WithContext(ctx).Preload("Category").Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// List serves the storefront catalog. Category status is read at query time,
// so deactivating a category hides its products without touching them.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	list := []domain.Product{}
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
	if f.ActiveOnly {
		q = q.Where("products.status = ? AND categories.category_status = ?", domain.ProductActive, domain.CategoryActive)
	}
	if f.Category != "" {
		q = q.Where("categories.category_name = ?", f.Category)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(categories.category_name) LIKE ?)", like, like)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	switch f.Sort {
	case "price_asc":
		q = q.Order("products.price asc")
	case "price_desc":
		q = q.Order("products.price desc")
	case "name":
		q = q.Order("products.name asc")
	case "rating":
		q = q.Order("products.rating desc").Order("products.name asc")
	default:
		q = q.Order("products.created_at desc")
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = domain.CatalogPageSize
	}
	if f.Page > math.MaxInt/f.PageSize {
		return list, total, nil
	}
	offset := (f.Page - 1) * f.PageSize
	if err := q.Select("products.*").Offset(offset).Limit(f.PageSize).Preload("Category").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
