package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/cosmetica/internal/domain"
)

const catalogSheet = "Products"

var catalogColumns = []string{"name", "description", "price", "stock", "status", "ml", "discount", "category", "image"}

// CatalogIO moves the product catalog in and out of xlsx workbooks.
type CatalogIO struct {
	Products   *ProductUC
	Categories domain.CategoryRepo
}

type ImportReport struct {
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Skipped int            `json:"skipped"`
	Errors  []ImportRowErr `json:"errors"`
}

type ImportRowErr struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (c *CatalogIO) Export(ctx context.Context, w io.Writer) error {
	list, err := c.Products.ListAll(ctx)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), catalogSheet); err != nil {
		return err
	}
	header := make([]any, len(catalogColumns))
	for i, h := range catalogColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return err
	}
	for i, p := range list {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		price, _ := p.Price.Float64()
		row := []any{p.Name, p.Description, price, p.Stock, string(p.Status), p.ML, p.Discount, category, p.Image}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Import upserts products by name from the first sheet. Rows that fail
// validation are skipped and reported; the rest are applied.
func (c *CatalogIO) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx file", domain.ErrInvalidInput)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", domain.ErrInvalidInput)
	}
	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "price", "stock", "category"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidInput, required)
		}
	}

	rep := &ImportReport{Errors: []ImportRowErr{}}
	categories := map[string]*domain.Category{}
	for i, row := range rows[1:] {
		get := func(name string) (string, bool) {
			idx, ok := col[name]
			if !ok || idx >= len(row) {
				return "", false
			}
			return strings.TrimSpace(row[idx]), true
		}
		name, _ := get("name")
		if name == "" {
			continue
		}
		rowNum := i + 2
		skip := func(reason string) {
			rep.Skipped++
			rep.Errors = append(rep.Errors, ImportRowErr{Row: rowNum, Name: name, Reason: reason})
		}

		in, err := parseCatalogRow(get)
		if err != nil {
			skip(err.Error())
			continue
		}
		catName, _ := get("category")
		cat, ok := categories[catName]
		if !ok {
			cat, err = c.Categories.FindByName(ctx, catName)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return rep, err
			}
			categories[catName] = cat
		}
		if cat == nil {
			skip(fmt.Sprintf("category %q not found", catName))
			continue
		}
		in.Name = name
		in.CategoryID = cat.ID

		existing, err := c.Products.Products.FindByName(ctx, name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if _, err := c.Products.Create(ctx, in, nil); err != nil {
				if isClientErr(err) {
					skip(err.Error())
					continue
				}
				return rep, err
			}
			rep.Created++
		case err != nil:
			return rep, err
		default:
			patch := domain.ProductPatch{
				Price:      domain.Some(in.Price),
				Stock:      domain.Some(in.Stock),
				CategoryID: domain.Some(in.CategoryID),
			}
			if v, ok := get("description"); ok {
				patch.Description = domain.Some(v)
			}
			if _, ok := get("status"); ok {
				patch.Status = domain.Some(in.Status)
			}
			if v, ok := get("ml"); ok {
				patch.ML = domain.Some(v)
			}
			if _, ok := get("discount"); ok {
				patch.Discount = domain.Some(in.Discount)
			}
			if _, err := c.Products.Update(ctx, existing.ID, patch, nil); err != nil {
				if isClientErr(err) {
					skip(err.Error())
					continue
				}
				return rep, err
			}
			rep.Updated++
		}
	}
	log.Info().Int("created", rep.Created).Int("updated", rep.Updated).Int("skipped", rep.Skipped).Msg("catalog import")
	return rep, nil
}

func parseCatalogRow(get func(string) (string, bool)) (ProductInput, error) {
	var in ProductInput
	raw, _ := get("price")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return in, fmt.Errorf("invalid price %q", raw)
	}
	in.Price = price
	raw, _ = get("stock")
	if in.Stock, err = strconv.Atoi(raw); err != nil {
		return in, fmt.Errorf("invalid stock %q", raw)
	}
	if raw, ok := get("discount"); ok && raw != "" {
		if in.Discount, err = strconv.Atoi(raw); err != nil {
			return in, fmt.Errorf("invalid discount %q", raw)
		}
	}
	in.Status = domain.ProductActive
	if raw, ok := get("status"); ok && raw != "" {
		in.Status = domain.ProductStatus(strings.ToLower(raw))
	}
	in.Description, _ = get("description")
	in.ML, _ = get("ml")
	return in, nil
}

func isClientErr(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrInactiveCategory)
}
