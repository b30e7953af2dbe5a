package httpserver

import (
	"net/http"
	"strings"

	"github.com/phenrril/cosmetica/internal/domain"
	"github.com/phenrril/cosmetica/internal/usecase"
)

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCachedJSON(w, r, list)
}

func (s *Server) apiCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "category")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.Categories.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// categoryStatus accepts any casing of Active/Inactive.
func categoryStatus(raw string) domain.CategoryStatus {
	switch strings.ToLower(raw) {
	case "active":
		return domain.CategoryActive
	case "inactive":
		return domain.CategoryInactive
	}
	return domain.CategoryStatus(raw)
}

func (s *Server) apiCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	img, f, err := formFile(r, "categoryImage")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	in := usecase.CategoryInput{
		Name:   formString(r, "categoryName").OrElse(""),
		Status: categoryStatus(formString(r, "categoryStatus").OrElse("")),
	}
	c, err := s.Categories.Create(r.Context(), in, img)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Category added successfully", "category": c})
}

func (s *Server) apiCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "category")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	img, f, err := formFile(r, "categoryImage")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	var patch domain.CategoryPatch
	if v, ok := formValue(r, "categoryName"); ok && v != "" {
		patch.Name = domain.Some(v)
	}
	if v, ok := formValue(r, "categoryStatus"); ok && v != "" {
		patch.Status = domain.Some(categoryStatus(v))
	}
	c, err := s.Categories.Update(r.Context(), id, patch, img)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category updated successfully", "category": c})
}

func (s *Server) apiCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "category")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Categories.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category deleted successfully"})
}
