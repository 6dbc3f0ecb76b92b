package domain

import "github.com/samber/lo"

// Catalog is the root document read by the storefront.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	TotalParts  int        `json:"totalParts"` // Denormalized, see CountParts
	Categories  []Category `json:"categories"`

	Extra Extra `json:"-"`
}

type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon,omitempty"`
	Description   string        `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`

	Extra Extra `json:"-"`
}

// Subcategory ids are unique by convention only.
type Subcategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Parts       []Part `json:"parts"`

	Extra Extra `json:"-"`
}

type (
	catalogJSON     Catalog
	categoryJSON    Category
	subcategoryJSON Subcategory
)

// UnmarshalJSON keeps members the model does not name so Save writes them back.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var fields catalogJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*c = Catalog(fields)
	return nil
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(catalogJSON(c), c.Extra)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var fields categoryJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*c = Category(fields)
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(categoryJSON(c), c.Extra)
}

func (s *Subcategory) UnmarshalJSON(data []byte) error {
	var fields subcategoryJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*s = Subcategory(fields)
	return nil
}

func (s Subcategory) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(subcategoryJSON(s), s.Extra)
}

// CountParts sums the parts of every subcategory in every category.
func (c *Catalog) CountParts() int {
	return lo.SumBy(c.Categories, func(cat Category) int {
		return cat.CountParts()
	})
}

func (c *Category) CountParts() int {
	return lo.SumBy(c.Subcategories, func(sc Subcategory) int {
		return len(sc.Parts)
	})
}

// Recount refreshes TotalParts and returns the new value.
func (c *Catalog) Recount() int {
	c.TotalParts = c.CountParts()
	return c.TotalParts
}

func (c *Catalog) FindCategory(id string) *Category {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i]
		}
	}
	return nil
}

// FindSubcategory returns the first subcategory with the given id.
func (c *Category) FindSubcategory(id string) *Subcategory {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == id {
			return &c.Subcategories[i]
		}
	}
	return nil
}
