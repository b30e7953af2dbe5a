package httpserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/cosmetica/internal/domain"
	"github.com/phenrril/cosmetica/internal/usecase"
)

var errRequiredProductFields = fmt.Errorf("%w: name, price, stock and category are required", domain.ErrInvalidInput)

// storefront sort names map onto the catalog's
var sortAliases = map[string]string{
	"price-low":  "price_asc",
	"price-high": "price_desc",
	"price_asc":  "price_asc",
	"price_desc": "price_desc",
	"name":       "name",
	"rating":     "rating",
	"newest":     "newest",
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	defer timed(r, "db")()
	list, err := s.Products.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(q.Get("page"), "-") {
		page = math.MaxInt
	}
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	f := domain.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    search,
		Sort:     sortAliases[q.Get("sort")],
		Page:     page,
	}
	stop := timed(r, "db")
	res, err := s.Products.Catalog(r.Context(), f)
	stop()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCachedJSON(w, r, res)
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stop := timed(r, "db")
	p, err := s.Products.Get(r.Context(), id)
	stop()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCachedJSON(w, r, p)
}

func productInput(r *http.Request) (usecase.ProductInput, error) {
	var in usecase.ProductInput
	name, _ := formValue(r, "name")
	price, err := formDecimal(r, "price")
	if err != nil {
		return in, err
	}
	stock, err := formInt(r, "stock")
	if err != nil {
		return in, err
	}
	category, err := formUUID(r, "category")
	if err != nil {
		return in, err
	}
	if name == "" || !price.Set || !stock.Set || !category.Set {
		return in, errRequiredProductFields
	}
	discount, err := formInt(r, "discount")
	if err != nil {
		return in, err
	}
	in.Name = name
	in.Price = price.Value
	in.Stock = stock.Value
	in.CategoryID = category.Value
	in.Discount = discount.OrElse(0)
	in.Description = formString(r, "description").OrElse("")
	in.ML = formString(r, "ml").OrElse("")
	in.Status = domain.ProductStatus(strings.ToLower(formString(r, "status").OrElse("")))
	return in, nil
}

func productPatch(r *http.Request) (domain.ProductPatch, error) {
	var p domain.ProductPatch
	var err error
	if p.Price, err = formDecimal(r, "price"); err != nil {
		return p, err
	}
	if p.Stock, err = formInt(r, "stock"); err != nil {
		return p, err
	}
	if p.Discount, err = formInt(r, "discount"); err != nil {
		return p, err
	}
	if p.CategoryID, err = formUUID(r, "category"); err != nil {
		return p, err
	}
	p.Name = formString(r, "name")
	p.Description = formString(r, "description")
	p.ML = formString(r, "ml")
	if v, ok := formValue(r, "status"); ok && v != "" {
		p.Status = domain.Some(domain.ProductStatus(strings.ToLower(v)))
	}
	return p, nil
}

func (s *Server) apiProductCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := productInput(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	img, f, err := formFile(r, "image")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	p, err := s.Products.Create(r.Context(), in, img)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Product added successfully", "product": p})
}

func (s *Server) apiProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	patch, err := productPatch(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	img, f, err := formFile(r, "image")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(f)
	p, err := s.Products.Update(r.Context(), id, patch, img)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product updated successfully", "product": p})
}

func (s *Server) apiProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Products.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product deleted successfully"})
}

func (s *Server) apiProductsExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=products-"+time.Now().Format("20060102")+".xlsx")
	if err := s.CatalogIO.Export(r.Context(), w); err != nil {
		// headers are gone once the workbook starts streaming
		log.Error().Err(err).Msg("export products")
	}
}

func (s *Server) apiProductsImport(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	up, f, err := formFile(r, "file")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if up == nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer closeFile(f)
	rep, err := s.CatalogIO.Import(r.Context(), up.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
