package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/cosmetica/internal/domain"
)

type CategoryUC struct {
	Categories domain.CategoryRepo
	Storage    domain.FileStorage
}

type CategoryInput struct {
	Name   string
	Status domain.CategoryStatus
}

func (uc *CategoryUC) Create(ctx context.Context, in CategoryInput, img *domain.Upload) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: categoryName is required", domain.ErrInvalidInput)
	case img == nil:
		return nil, fmt.Errorf("%w: categoryImage is required", domain.ErrInvalidInput)
	case !in.Status.Valid():
		return nil, fmt.Errorf("%w: categoryStatus must be Active or Inactive", domain.ErrInvalidInput)
	}
	if err := uc.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	file, err := uc.Storage.Save(ctx, domain.MediaCategoryImage, img.Filename, img.Body)
	if err != nil {
		return nil, err
	}
	c := &domain.Category{ID: uuid.New(), Name: name, Status: in.Status, Image: file}
	if err := uc.Categories.Create(ctx, c); err != nil {
		uc.discard(ctx, file)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category name already exists", domain.ErrDuplicate)
		}
		return nil, err
	}
	return c, nil
}

func (uc *CategoryUC) List(ctx context.Context) ([]domain.Category, error) {
	return uc.Categories.List(ctx)
}

func (uc *CategoryUC) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return uc.Categories.FindByID(ctx, id)
}

// Update applies the patch. A new image replaces the stored one; without it the
// previous image is kept.
func (uc *CategoryUC) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch, img *domain.Upload) (*domain.Category, error) {
	c, err := uc.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := patch.Name.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%w: categoryName cannot be empty", domain.ErrInvalidInput)
		}
		if v != c.Name {
			if err := uc.ensureNameFree(ctx, v, c.ID); err != nil {
				return nil, err
			}
		}
		patch.Name = domain.Some(v)
	}
	if v, ok := patch.Status.Get(); ok && !v.Valid() {
		return nil, fmt.Errorf("%w: categoryStatus must be Active or Inactive", domain.ErrInvalidInput)
	}

	old := c.Image
	if img != nil {
		file, err := uc.Storage.Save(ctx, domain.MediaCategoryImage, img.Filename, img.Body)
		if err != nil {
			return nil, err
		}
		patch.Image = domain.Some(file)
	}
	c.Apply(patch)
	if err := uc.Categories.Save(ctx, c); err != nil {
		if img != nil {
			uc.discard(ctx, c.Image)
		}
		return nil, err
	}
	if img != nil && old != c.Image {
		uc.discard(ctx, old)
	}
	return c, nil
}

// Delete removes the category only. Products keep their dangling reference.
func (uc *CategoryUC) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := uc.Categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Categories.Delete(ctx, id); err != nil {
		return err
	}
	uc.discard(ctx, c.Image)
	return nil
}

func (uc *CategoryUC) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := uc.Categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("%w: category name already exists", domain.ErrDuplicate)
	}
	return nil
}

func (uc *CategoryUC) discard(ctx context.Context, file string) {
	if err := uc.Storage.Remove(ctx, domain.MediaCategoryImage, file); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("remove category image")
	}
}
