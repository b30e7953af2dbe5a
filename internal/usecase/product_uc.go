package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/cosmetica/internal/domain"
)

type ProductUC struct {
	Products   domain.ProductRepo
	Categories domain.CategoryRepo
	Storage    domain.FileStorage
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Status      domain.ProductStatus
	ML          string
	Discount    int
	CategoryID  uuid.UUID
}

func (uc *ProductUC) Create(ctx context.Context, in ProductInput, img *domain.Upload) (*domain.Product, error) {
	p := &domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      in.Status,
		ML:          in.ML,
		Discount:    in.Discount,
		CategoryID:  in.CategoryID,
	}
	if p.Status == "" {
		p.Status = domain.ProductActive
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cat, err := uc.activeCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, p.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if img != nil {
		file, err := uc.Storage.Save(ctx, domain.MediaProductImage, img.Filename, img.Body)
		if err != nil {
			return nil, err
		}
		p.Image = file
	}
	if err := uc.Products.Create(ctx, p); err != nil {
		uc.discard(ctx, p.Image)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: product name already exists", domain.ErrDuplicate)
		}
		return nil, err
	}
	p.Category = cat
	return p, nil
}

// Update applies a partial edit. The category is only re-validated when the
// patch changes it, so a product may keep pointing at a category that has
// since gone inactive.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, img *domain.Upload) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := patch.Name.Get(); ok {
		patch.Name = domain.Some(strings.TrimSpace(v))
	}
	oldName, oldImage := p.Name, p.Image
	p.Apply(patch)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if v, ok := patch.CategoryID.Get(); ok {
		cat, err := uc.activeCategory(ctx, v)
		if err != nil {
			return nil, err
		}
		p.Category = cat
	}
	if p.Name != oldName {
		if err := uc.ensureNameFree(ctx, p.Name, p.ID); err != nil {
			return nil, err
		}
	}
	if img != nil {
		file, err := uc.Storage.Save(ctx, domain.MediaProductImage, img.Filename, img.Body)
		if err != nil {
			return nil, err
		}
		p.Image = file
	}
	if err := uc.Products.Save(ctx, p); err != nil {
		if img != nil {
			uc.discard(ctx, p.Image)
		}
		return nil, err
	}
	if oldImage != p.Image {
		uc.discard(ctx, oldImage)
	}
	return p, nil
}

// Delete removes the product and its image. Cart and wishlist rows that
// reference it are left in place and resolve as missing.
func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Products.Delete(ctx, id); err != nil {
		return err
	}
	uc.discard(ctx, p.Image)
	return nil
}

// Get resolves the product together with its category; a dangling category
// reference is reported as not found.
func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if p.Category == nil {
		return nil, fmt.Errorf("%w: category not found", domain.ErrNotFound)
	}
	return p, nil
}

func (uc *ProductUC) ListAll(ctx context.Context) ([]domain.Product, error) {
	return uc.Products.ListAll(ctx)
}

// Catalog lists what the storefront may show: active products in active
// categories, in fixed-size pages.
func (uc *ProductUC) Catalog(ctx context.Context, f domain.ProductFilter) (*domain.CatalogPage, error) {
	f.ActiveOnly = true
	f.PageSize = domain.CatalogPageSize
	if f.Page < 1 {
		f.Page = 1
	}
	list, total, err := uc.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &domain.CatalogPage{Products: list, Total: total, Page: f.Page, Pages: pages, PageSize: f.PageSize}, nil
}

func (uc *ProductUC) activeCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	cat, err := uc.Categories.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInactiveCategory
	}
	if err != nil {
		return nil, err
	}
	if !cat.IsActive() {
		return nil, domain.ErrInactiveCategory
	}
	return cat, nil
}

func (uc *ProductUC) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := uc.Products.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("%w: product name already exists", domain.ErrDuplicate)
	}
	return nil
}

func (uc *ProductUC) discard(ctx context.Context, file string) {
	if file == "" {
		return
	}
	if err := uc.Storage.Remove(ctx, domain.MediaProductImage, file); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("remove product image")
	}
}
