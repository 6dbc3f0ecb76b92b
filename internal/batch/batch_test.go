package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spareparts/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const electricalBatch = `
category: {id: generators, name: Generator Parts}
subcategory:
  id: electrical-components
  name: Electrical Components & Sensors
  description: Starters, sensors, switches, gauges, and electrical parts
defaults:
  category: Sensor
  warranty: 12 months
  tags: [electrical]
tiers:
  minimum_order:
    steps:
      - {above: 20000, value: 2}
      - {above: 5000, value: 4}
    default: 10
parts:
  - part_no: "3957597"
    name: Starter Motor - Cummins 6BT (12V 5kW)
    brand: Delco Remy
    category: Starter Motor
    compatibility: [6BT5.9, 6BTA5.9]
    specifications: {voltage: 12V, power: 5.0kW}
    price: 35000
    bulk: 32000
    quantity: 18
  - part_no: "4921517"
    name: Oil Pressure Sensor - Cummins 6BT/ISBe
    brand: Cummins
    price: 3850
    bulk: 3500
    quantity: 85
generate:
  - prefix: FF
    name: "{variant} - {brand}"
    category: Filters
    brands: [Cummins, Volvo Penta]
    variants: [Oil Filter, Fuel Filter]
    repeat: 2
    compatibility: ["{brand} Diesel Engines"]
    specifications: {type: "{variant}", micronRating: 10 micron}
    price_range: [1500, 5000]
    quantity_range: [50, 200]
    tags: [filter, "{variant_slug}", "{brand_slug}"]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

type fakePriceList struct {
	rows     []Row
	err      error
	location string
}

func (f *fakePriceList) FetchPriceList(_ context.Context, location string) ([]Row, error) {
	f.location = location
	return f.rows, f.err
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "04-electrical.yaml", electricalBatch)

	b, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "04-electrical", b.Name())
	assert.Equal(t, "generators", b.Category.ID)
	require.NotNil(t, b.Subcategory)
	assert.Equal(t, "electrical-components", b.Subcategory.ID)
	assert.Len(t, b.Parts, 2)
	require.Len(t, b.Generate, 1)
	assert.Equal(t, "FF", b.Generate[0].Prefix)
	assert.Equal(t, 10, b.Tiers.MinimumOrder.Default)
	assert.True(t, b.Tiers.LeadTime.IsZero())
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "typo.yaml", "target: filters\nparts:\n  - part_number: X\n")

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_Validation(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"neither.yaml": "parts: []\n",
		"both.yaml":    "target: filters\nsubcategory: {id: x, name: X}\n",
		"noid.yaml":    "subcategory: {name: X}\n",
		"repeat.yaml":  "target: filters\ngenerate:\n  - {prefix: P, repeat: -1}\n",
	}
	for name, body := range cases {
		_, err := LoadFile(writeFile(t, dir, name, body))
		assert.ErrorIs(t, err, ErrInvalidBatch, name)
	}
}

func TestLoadDir_LexicalOrderAndYAMLOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02-b.yaml", "target: b\n")
	writeFile(t, dir, "01-a.yml", "target: a\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	batches, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "a", batches[0].Target)
	assert.Equal(t, "b", batches[1].Target)
}

func TestRawParts_MergesDefaultsAndExpandsTemplates(t *testing.T) {
	b, err := LoadFile(writeFile(t, t.TempDir(), "electrical.yaml", electricalBatch))
	require.NoError(t, err)

	raws, err := b.RawParts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, raws, 2+2*2*2)

	starter := raws[0]
	assert.Equal(t, "3957597", starter.PartNo)
	assert.Equal(t, "Starter Motor", starter.Category)
	assert.Equal(t, 35000, starter.Price)
	assert.Equal(t, []string{"electrical"}, starter.Tags)
	assert.Equal(t, "12 months", starter.Warranty)

	sensor := raws[1]
	assert.Equal(t, "Sensor", sensor.Category, "category falls back to the batch default")

	generated := raws[2:]
	wantNames := []string{
		"Oil Filter - Cummins", "Oil Filter - Cummins",
		"Fuel Filter - Cummins", "Fuel Filter - Cummins",
		"Oil Filter - Volvo Penta", "Oil Filter - Volvo Penta",
		"Fuel Filter - Volvo Penta", "Fuel Filter - Volvo Penta",
	}
	for i, raw := range generated {
		assert.Equal(t, wantNames[i], raw.Name)
		assert.Equal(t, "FF", raw.Prefix)
		assert.Empty(t, raw.PartNo)
		assert.Equal(t, domain.Range{Min: 1500, Max: 5000}, raw.PriceRange)
		assert.Equal(t, domain.Range{Min: 50, Max: 200}, raw.QuantityRange)
	}
	volvo := generated[6]
	assert.Equal(t, "Volvo Penta", volvo.Brand)
	assert.Equal(t, []string{"Volvo Penta Diesel Engines"}, volvo.Compatibility)
	assert.Equal(t, map[string]string{"type": "Fuel Filter", "micronRating": "10 micron"}, volvo.Specifications)
	assert.Equal(t, []string{"filter", "fuel-filter", "volvo-penta"}, volvo.Tags)
}

func TestRawParts_TemplatesDoNotShareSpecifications(t *testing.T) {
	tmpl := Template{
		Row:    Row{Prefix: "PST", Name: "Piston Kit - {brand} Series {n}", Specifications: map[string]string{"bore": "{n}"}},
		Brands: []string{"Perkins"},
		Repeat: 3,
	}

	rows := tmpl.Expand()
	require.Len(t, rows, 3)
	assert.Equal(t, "Piston Kit - Perkins Series 3", rows[2].Name)
	assert.Equal(t, "1", rows[0].Specifications["bore"])
	assert.Equal(t, "3", rows[2].Specifications["bore"])
	assert.Equal(t, "{n}", tmpl.Specifications["bore"])
}

func TestRawParts_TemplateRendersDefaultBrand(t *testing.T) {
	body := `
target: oil-filters
defaults:
  brand: Cummins
  compatibility: ["{brand} Engines"]
generate:
  - prefix: OF
    name: "Oil Filter - {brand}"
    tags: ["{brand_slug}"]
    price: 2500
    repeat: 2
`
	b, err := LoadFile(writeFile(t, t.TempDir(), "oil.yaml", body))
	require.NoError(t, err)

	raws, err := b.RawParts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	for _, raw := range raws {
		assert.Equal(t, "Cummins", raw.Brand)
		assert.Equal(t, "Oil Filter - Cummins", raw.Name)
		assert.Equal(t, []string{"Cummins Engines"}, raw.Compatibility)
		assert.Equal(t, []string{"cummins"}, raw.Tags)
	}
	assert.Equal(t, "Oil Filter - {brand}", b.Generate[0].Name)
}

func TestRawParts_PriceList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "batteries.yaml", "target: batteries\nprice_list: supplier.html\ndefaults: {brand: Century, warranty: 6 months}\n")
	b, err := LoadFile(path)
	require.NoError(t, err)

	source := &fakePriceList{rows: []Row{{PartNo: "BAT-12V-100", Name: "Battery 12V 100Ah", Price: 18500, Bulk: 17000, Quantity: 45}}}
	raws, err := b.RawParts(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "supplier.html"), source.location)
	require.Len(t, raws, 1)
	assert.Equal(t, "Century", raws[0].Brand)
	assert.Equal(t, "6 months", raws[0].Warranty)

	_, err = b.RawParts(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidBatch)

	source.err = errors.New("boom")
	_, err = b.RawParts(context.Background(), source)
	require.Error(t, err)
}

func TestRawParts_BadRange(t *testing.T) {
	b := &Batch{Target: "x", Parts: []Row{{Prefix: "P", PriceRange: []int{1, 2, 3}}}}

	_, err := b.RawParts(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidBatch)
}

func TestPriceListLocation(t *testing.T) {
	b := &Batch{Source: filepath.Join("batches", "x.yaml")}

	b.PriceList = "https://supplier.example/prices.html"
	assert.Equal(t, b.PriceList, b.PriceListLocation())

	b.PriceList = "lists/prices.html"
	assert.Equal(t, filepath.Join("batches", "lists", "prices.html"), b.PriceListLocation())
}

func TestWithDefaults_RowRangeWinsOverDefaultLiteral(t *testing.T) {
	row := Row{PriceRange: []int{100, 200}}.withDefaults(Row{Price: 5, Bulk: 4, Quantity: 9})

	assert.Zero(t, row.Price)
	assert.Equal(t, []int{100, 200}, row.PriceRange)
	assert.Equal(t, 9, row.Quantity)
}

func TestSampleBatches(t *testing.T) {
	batches, err := LoadDir(filepath.Join("..", "..", "batches"))
	require.NoError(t, err)
	require.Len(t, batches, 3)

	filters, err := batches[0].RawParts(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, filters, 6*5*2)

	pistons, err := batches[1].RawParts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, pistons, 3*4)
	assert.Equal(t, "Piston Kit - Perkins Series 2", pistons[5].Name)
	assert.Equal(t, map[string]string{"material": "Forged Aluminum"}, pistons[5].Specifications)
}
