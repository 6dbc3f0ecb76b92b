package batch

import (
	"context"
	"fmt"
	"maps"
	"strconv"

	"spareparts/catalog/internal/assembler"
	"spareparts/catalog/internal/domain"

	"github.com/valyala/fasttemplate"
)

// Template expands into one row per brand × variant × repeat. Text fields may use
// the placeholders {brand}, {brand_slug}, {variant}, {variant_slug} and {n}.
type Template struct {
	Row      `yaml:",inline"`
	Brands   []string `yaml:"brands"`
	Variants []string `yaml:"variants"`
	Repeat   int      `yaml:"repeat"`
}

// PriceListSource turns an HTML price list into rows.
type PriceListSource interface {
	FetchPriceList(ctx context.Context, location string) ([]Row, error)
}

// Expand returns the template's rows in brand, variant, repeat order.
func (t Template) Expand() []Row {
	brands := t.Brands
	if len(brands) == 0 {
		brands = []string{t.Brand}
	}
	variants := t.Variants
	if len(variants) == 0 {
		variants = []string{""}
	}
	repeat := max(t.Repeat, 1)

	rows := make([]Row, 0, len(brands)*len(variants)*repeat)
	for _, brand := range brands {
		for _, variant := range variants {
			for n := 1; n <= repeat; n++ {
				vars := map[string]interface{}{
					"brand":        brand,
					"brand_slug":   assembler.Slug(brand),
					"variant":      variant,
					"variant_slug": assembler.Slug(variant),
					"n":            strconv.Itoa(n),
				}
				rows = append(rows, t.render(brand, vars))
			}
		}
	}
	return rows
}

func (t Template) render(brand string, vars map[string]interface{}) Row {
	expand := func(s string) string {
		if s == "" {
			return s
		}
		return fasttemplate.ExecuteStringStd(s, "{", "}", vars)
	}
	expandAll := func(in []string) []string {
		if in == nil {
			return nil
		}
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = expand(s)
		}
		return out
	}

	row := t.Row
	row.Brand = brand
	row.PartNo = expand(row.PartNo)
	row.Prefix = expand(row.Prefix)
	row.Name = expand(row.Name)
	row.Category = expand(row.Category)
	row.Compatibility = expandAll(row.Compatibility)
	row.Tags = expandAll(row.Tags)
	if row.Specifications != nil {
		specs := maps.Clone(row.Specifications)
		for k, v := range specs {
			specs[k] = expand(v)
		}
		row.Specifications = specs
	}
	return row
}

// RawParts flattens the batch into assembler input: literal rows first, then
// generated rows, then price list rows, all merged with the batch defaults.
func (b *Batch) RawParts(ctx context.Context, prices PriceListSource) ([]domain.RawPart, error) {
	rows := make([]Row, 0, len(b.Parts))
	rows = append(rows, b.Parts...)
	for _, t := range b.Generate {
		// Placeholders in defaults render per brand like the template's own fields.
		t.Row = t.Row.withDefaults(b.Defaults)
		rows = append(rows, t.Expand()...)
	}

	if b.PriceList != "" {
		if prices == nil {
			return nil, fmt.Errorf("%s: price list %s configured but no source available: %w", b.Source, b.PriceList, ErrInvalidBatch)
		}
		listed, err := prices.FetchPriceList(ctx, b.PriceListLocation())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Source, err)
		}
		rows = append(rows, listed...)
	}

	out := make([]domain.RawPart, 0, len(rows))
	for _, row := range rows {
		raw, err := row.withDefaults(b.Defaults).toRaw()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Source, err)
		}
		out = append(out, raw)
	}
	return out, nil
}
