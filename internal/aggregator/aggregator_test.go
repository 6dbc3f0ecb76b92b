package aggregator

import (
	"testing"

	"spareparts/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog() *domain.Catalog {
	return &domain.Catalog{
		Version:    "3.0.0",
		TotalParts: 2,
		Categories: []domain.Category{{
			ID:   "generators",
			Name: "Generator Parts",
			Subcategories: []domain.Subcategory{{
				ID:    "filters",
				Name:  "Filters",
				Parts: []domain.Part{{PartNo: "FF10000"}, {PartNo: "FF10001"}},
			}},
		}},
	}
}

func TestAppendSubcategories_AppendsInOrderAndRecounts(t *testing.T) {
	catalog := seedCatalog()
	before := catalog.TotalParts

	total, err := AppendSubcategories(catalog, "generators",
		domain.Subcategory{ID: "electrical-components", Parts: []domain.Part{{PartNo: "3957597"}, {PartNo: "3957598"}}},
		domain.Subcategory{ID: "control-panels", Parts: []domain.Part{{PartNo: "DSE7320"}}},
	)
	require.NoError(t, err)

	assert.Equal(t, 5, total)
	assert.Equal(t, 5, catalog.TotalParts)
	assert.GreaterOrEqual(t, total, before)

	subs := catalog.Categories[0].Subcategories
	require.Len(t, subs, 3)
	assert.Equal(t, []string{"filters", "electrical-components", "control-panels"},
		[]string{subs[0].ID, subs[1].ID, subs[2].ID})
}

func TestAppendSubcategories_KeepsDuplicateIDs(t *testing.T) {
	catalog := seedCatalog()

	_, err := AppendSubcategories(catalog, "generators", domain.Subcategory{ID: "filters", Parts: []domain.Part{{PartNo: "X"}}})
	require.NoError(t, err)

	subs := catalog.Categories[0].Subcategories
	require.Len(t, subs, 2)
	assert.Equal(t, "filters", subs[1].ID)
	assert.Equal(t, 3, catalog.TotalParts)
}

func TestAppendSubcategories_EmptyNodeGetsPartsSlice(t *testing.T) {
	catalog := seedCatalog()

	total, err := AppendSubcategories(catalog, "generators", domain.Subcategory{ID: "empty"})
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.NotNil(t, catalog.Categories[0].Subcategories[1].Parts)
}

func TestAppendSubcategories_UnknownCategory(t *testing.T) {
	catalog := seedCatalog()

	_, err := AppendSubcategories(catalog, "solar", domain.Subcategory{ID: "panels"})
	require.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Equal(t, 2, catalog.TotalParts)
}

func TestAppendParts(t *testing.T) {
	catalog := seedCatalog()

	total, err := AppendParts(catalog, "generators", "filters", []domain.Part{{PartNo: "FF10002"}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "FF10002", catalog.Categories[0].Subcategories[0].Parts[2].PartNo)

	_, err = AppendParts(catalog, "generators", "missing", nil)
	require.ErrorIs(t, err, ErrSubcategoryNotFound)

	_, err = AppendParts(catalog, "missing", "filters", nil)
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestAppendParts_FixesStaleTotal(t *testing.T) {
	catalog := seedCatalog()
	catalog.TotalParts = 1247

	total, err := AppendParts(catalog, "generators", "filters", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestEnsureCategory(t *testing.T) {
	catalog := seedCatalog()

	cat, err := EnsureCategory(catalog, "generators", "")
	require.NoError(t, err)
	assert.Equal(t, "Generator Parts", cat.Name)

	_, err = EnsureCategory(catalog, "solar", "")
	require.ErrorIs(t, err, ErrCategoryNotFound)

	cat, err = EnsureCategory(catalog, "solar", "Solar Equipment")
	require.NoError(t, err)
	assert.Equal(t, "solar", cat.ID)
	require.Len(t, catalog.Categories, 2)
	assert.NotNil(t, catalog.Categories[1].Subcategories)
}
