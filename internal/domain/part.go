package domain

// Part is one sellable SKU.
type Part struct {
	PartNo         string         `json:"partNo"`
	Name           string         `json:"name"`
	Brand          string         `json:"brand"`
	Category       string         `json:"category"` // Free-text classification, not the structural Category
	Compatibility  []string       `json:"compatibility"`
	Specifications map[string]any `json:"specifications"`
	Pricing        Pricing        `json:"pricing"`
	Inventory      Inventory      `json:"inventory"`
	Warranty       string         `json:"warranty"`
	Tags           []string       `json:"tags"`
	Media          *Media         `json:"media,omitempty"`
	Certifications []string       `json:"certifications,omitempty"`

	Extra Extra `json:"-"`
}

type Pricing struct {
	Currency     string `json:"currency"`
	RetailPrice  int    `json:"retailPrice"`
	BulkPrice    int    `json:"bulkPrice"`
	MinimumOrder int    `json:"minimumOrder"`

	Extra Extra `json:"-"`
}

type Inventory struct {
	Stock        string `json:"stock"` // "In Stock"
	Quantity     int    `json:"quantity"`
	Location     string `json:"location"` // "Nairobi Warehouse"
	LeadTime     string `json:"leadTime"` // "Same Day", "1-2 Days", ...
	ReorderPoint *int   `json:"reorderPoint,omitempty"`

	Extra Extra `json:"-"`
}

type Media struct {
	Images    []string `json:"images,omitempty"`
	Datasheet string   `json:"datasheet,omitempty"`

	Extra Extra `json:"-"`
}

type (
	partJSON      Part
	pricingJSON   Pricing
	inventoryJSON Inventory
	mediaJSON     Media
)

func (p *Part) UnmarshalJSON(data []byte) error {
	var fields partJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*p = Part(fields)
	return nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(partJSON(p), p.Extra)
}

func (p *Pricing) UnmarshalJSON(data []byte) error {
	var fields pricingJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*p = Pricing(fields)
	return nil
}

func (p Pricing) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(pricingJSON(p), p.Extra)
}

func (i *Inventory) UnmarshalJSON(data []byte) error {
	var fields inventoryJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*i = Inventory(fields)
	return nil
}

func (i Inventory) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(inventoryJSON(i), i.Extra)
}

func (m *Media) UnmarshalJSON(data []byte) error {
	var fields mediaJSON
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*m = Media(fields)
	return nil
}

func (m Media) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(mediaJSON(m), m.Extra)
}

// Range is an inclusive integer interval used by the randomized assembly mode.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// RawPart is the compact input row turned into a Part by the assembler.
// Either PartNo or Prefix must be set. Literal Price/Quantity win over ranges.
type RawPart struct {
	PartNo         string
	Prefix         string
	Name           string
	Brand          string
	Category       string
	Compatibility  []string
	Specifications map[string]string
	Price          int
	Bulk           int
	PriceRange     Range
	Quantity       int
	QuantityRange  Range
	MinimumOrder   int    // Overrides the price tiering when > 0
	LeadTime       string // Overrides the quantity tiering when set
	Stock          string
	Location       string
	Warranty       string
	Tags           []string
}
