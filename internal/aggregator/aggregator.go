package aggregator

import (
	"errors"
	"fmt"

	"spareparts/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
)

// EnsureCategory returns the category with the given id, appending a new empty
// node when the catalog has none and a name is known.
func EnsureCategory(catalog *domain.Catalog, id, name string) (*domain.Category, error) {
	if cat := catalog.FindCategory(id); cat != nil {
		return cat, nil
	}
	if name == "" {
		return nil, fmt.Errorf("%s: %w", id, ErrCategoryNotFound)
	}

	catalog.Categories = append(catalog.Categories, domain.Category{
		ID:            id,
		Name:          name,
		Subcategories: []domain.Subcategory{},
	})
	log.Infof("📁 Created category %s (%s)", id, name)
	return &catalog.Categories[len(catalog.Categories)-1], nil
}

// AppendSubcategories adds the nodes to the end of the category and recomputes
// the catalog total. Subcategories sharing an id are all kept.
func AppendSubcategories(catalog *domain.Catalog, categoryID string, subcategories ...domain.Subcategory) (int, error) {
	cat := catalog.FindCategory(categoryID)
	if cat == nil {
		return 0, fmt.Errorf("%s: %w", categoryID, ErrCategoryNotFound)
	}

	for _, sc := range subcategories {
		if existing := cat.FindSubcategory(sc.ID); existing != nil {
			log.Warnf("⚠️ Category %s already has a subcategory %s, keeping both", categoryID, sc.ID)
		}
		if sc.Parts == nil {
			sc.Parts = []domain.Part{}
		}
		cat.Subcategories = append(cat.Subcategories, sc)
	}

	return catalog.Recount(), nil
}

// AppendParts adds a raw batch to the first subcategory with the given id and
// recomputes the catalog total.
func AppendParts(catalog *domain.Catalog, categoryID, subcategoryID string, parts []domain.Part) (int, error) {
	cat := catalog.FindCategory(categoryID)
	if cat == nil {
		return 0, fmt.Errorf("%s: %w", categoryID, ErrCategoryNotFound)
	}
	sc := cat.FindSubcategory(subcategoryID)
	if sc == nil {
		return 0, fmt.Errorf("%s/%s: %w", categoryID, subcategoryID, ErrSubcategoryNotFound)
	}

	sc.Parts = append(sc.Parts, parts...)
	return catalog.Recount(), nil
}
