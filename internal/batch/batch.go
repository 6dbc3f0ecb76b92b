package batch

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"spareparts/catalog/internal/domain"

	"gopkg.in/yaml.v3"
)

var ErrInvalidBatch = errors.New("invalid batch")

// Batch is one YAML file of part rows destined for a single subcategory.
type Batch struct {
	Category    CategoryRef     `yaml:"category"`
	Subcategory *SubcategoryRef `yaml:"subcategory"`
	Target      string          `yaml:"target"` // Existing subcategory id to append to
	Defaults    Row             `yaml:"defaults"`
	Tiers       TierOverrides   `yaml:"tiers"`
	Parts       []Row           `yaml:"parts"`
	Generate    []Template      `yaml:"generate"`
	PriceList   string          `yaml:"price_list"` // Local HTML file or http(s) URL

	// Source is the file the batch was read from.
	Source string `yaml:"-"`
}

type CategoryRef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type SubcategoryRef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type TierOverrides struct {
	MinimumOrder domain.Tiers[int]    `yaml:"minimum_order"`
	LeadTime     domain.Tiers[string] `yaml:"lead_time"`
}

// Row is a literal part row. Empty fields fall back to the batch defaults.
type Row struct {
	PartNo         string            `yaml:"part_no"`
	Prefix         string            `yaml:"prefix"`
	Name           string            `yaml:"name"`
	Brand          string            `yaml:"brand"`
	Category       string            `yaml:"category"`
	Compatibility  []string          `yaml:"compatibility"`
	Specifications map[string]string `yaml:"specifications"`
	Price          int               `yaml:"price"`
	Bulk           int               `yaml:"bulk"`
	PriceRange     []int             `yaml:"price_range"`
	Quantity       int               `yaml:"quantity"`
	QuantityRange  []int             `yaml:"quantity_range"`
	MinimumOrder   int               `yaml:"minimum_order"`
	LeadTime       string            `yaml:"lead_time"`
	Stock          string            `yaml:"stock"`
	Location       string            `yaml:"location"`
	Warranty       string            `yaml:"warranty"`
	Tags           []string          `yaml:"tags"`
}

// LoadFile decodes and validates one batch file. Unknown keys are rejected.
func LoadFile(path string) (*Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var b Batch
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode batch %s: %w", path, err)
	}
	b.Source = path

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadDir loads every *.yaml / *.yml file in dir in lexical order.
func LoadDir(dir string) ([]*Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches in %s: %w", dir, err)
	}

	var batches []*Batch
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (b *Batch) Validate() error {
	switch {
	case b.Subcategory == nil && b.Target == "":
		return fmt.Errorf("%s: one of subcategory or target is required: %w", b.Source, ErrInvalidBatch)
	case b.Subcategory != nil && b.Target != "":
		return fmt.Errorf("%s: subcategory and target are exclusive: %w", b.Source, ErrInvalidBatch)
	case b.Subcategory != nil && b.Subcategory.ID == "":
		return fmt.Errorf("%s: subcategory id is required: %w", b.Source, ErrInvalidBatch)
	}
	for i, t := range b.Generate {
		if t.Repeat < 0 {
			return fmt.Errorf("%s: generate[%d] has negative repeat: %w", b.Source, i, ErrInvalidBatch)
		}
	}
	return nil
}

// Name is the file name without extension, used in logs and reports.
func (b *Batch) Name() string {
	base := filepath.Base(b.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PriceListLocation resolves a relative price list path against the batch file.
func (b *Batch) PriceListLocation() string {
	loc := b.PriceList
	if loc == "" || strings.Contains(loc, "://") || filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(filepath.Dir(b.Source), loc)
}

// withDefaults fills the row's empty fields from d.
func (r Row) withDefaults(d Row) Row {
	out := r
	str := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	num := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}

	str(&out.Prefix, d.Prefix)
	str(&out.Brand, d.Brand)
	str(&out.Category, d.Category)
	str(&out.LeadTime, d.LeadTime)
	str(&out.Stock, d.Stock)
	str(&out.Location, d.Location)
	str(&out.Warranty, d.Warranty)
	num(&out.MinimumOrder, d.MinimumOrder)

	// Literal values and ranges default as pairs so a row's own range is not
	// shadowed by a default literal.
	if out.Price == 0 && len(out.PriceRange) == 0 {
		out.Price, out.Bulk, out.PriceRange = d.Price, d.Bulk, slices.Clone(d.PriceRange)
	}
	if out.Quantity == 0 && len(out.QuantityRange) == 0 {
		out.Quantity, out.QuantityRange = d.Quantity, slices.Clone(d.QuantityRange)
	}

	if out.Compatibility == nil {
		out.Compatibility = slices.Clone(d.Compatibility)
	}
	if out.Tags == nil {
		out.Tags = slices.Clone(d.Tags)
	}
	if out.Specifications == nil {
		out.Specifications = maps.Clone(d.Specifications)
	}
	return out
}

func (r Row) toRaw() (domain.RawPart, error) {
	priceRange, err := toRange(r.PriceRange)
	if err != nil {
		return domain.RawPart{}, fmt.Errorf("price_range of %q: %w", r.Name, err)
	}
	quantityRange, err := toRange(r.QuantityRange)
	if err != nil {
		return domain.RawPart{}, fmt.Errorf("quantity_range of %q: %w", r.Name, err)
	}

	return domain.RawPart{
		PartNo:         r.PartNo,
		Prefix:         r.Prefix,
		Name:           r.Name,
		Brand:          r.Brand,
		Category:       r.Category,
		Compatibility:  r.Compatibility,
		Specifications: r.Specifications,
		Price:          r.Price,
		Bulk:           r.Bulk,
		PriceRange:     priceRange,
		Quantity:       r.Quantity,
		QuantityRange:  quantityRange,
		MinimumOrder:   r.MinimumOrder,
		LeadTime:       r.LeadTime,
		Stock:          r.Stock,
		Location:       r.Location,
		Warranty:       r.Warranty,
		Tags:           r.Tags,
	}, nil
}

func toRange(bounds []int) (domain.Range, error) {
	switch len(bounds) {
	case 0:
		return domain.Range{}, nil
	case 1:
		return domain.Range{Min: bounds[0], Max: bounds[0]}, nil
	case 2:
		return domain.Range{Min: bounds[0], Max: bounds[1]}, nil
	default:
		return domain.Range{}, fmt.Errorf("expected [min, max], got %d values: %w", len(bounds), ErrInvalidBatch)
	}
}
