package assembler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"spareparts/catalog/internal/domain"
)

var (
	ErrMissingPartNumber = errors.New("part needs either a part number or a prefix")
	ErrInvalidRange      = errors.New("range minimum exceeds maximum")
)

// Policy holds the house defaults applied to every assembled part.
type Policy struct {
	Currency      string
	Stock         string
	Location      string
	Warranty      string
	MinimumOrder  domain.Tiers[int]
	LeadTime      domain.Tiers[string]
	BulkLowRatio  float64 // Bulk price floor as a share of the drawn retail price
	BulkHighRatio float64
}

func DefaultPolicy() Policy {
	return Policy{
		Currency:      "KES",
		Stock:         "In Stock",
		Location:      "Nairobi Warehouse",
		Warranty:      "12 months",
		MinimumOrder:  domain.DefaultMinimumOrderTiers(),
		LeadTime:      domain.DefaultLeadTimeTiers(),
		BulkLowRatio:  0.80,
		BulkHighRatio: 0.85,
	}
}

type randomizer struct {
	mutex sync.Mutex
	rng   *rand.Rand
}

// between returns a uniform integer in [lo, hi].
func (r *randomizer) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return lo + r.rng.IntN(hi-lo+1)
}

// Assembler turns RawPart rows into catalog Parts.
type Assembler struct {
	counter *Counter
	policy  Policy
	random  *randomizer
}

func New(counter *Counter, policy Policy, rng *rand.Rand) *Assembler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Assembler{
		counter: counter,
		policy:  policy,
		random:  &randomizer{rng: rng},
	}
}

// WithTiers returns an assembler sharing this one's counter and random source but
// using the given tier tables. Zero tables keep the current ones.
func (a *Assembler) WithTiers(minimumOrder domain.Tiers[int], leadTime domain.Tiers[string]) *Assembler {
	policy := a.policy
	if !minimumOrder.IsZero() {
		policy.MinimumOrder = minimumOrder
	}
	if !leadTime.IsZero() {
		policy.LeadTime = leadTime
	}
	return &Assembler{counter: a.counter, policy: policy, random: a.random}
}

func (a *Assembler) Policy() Policy {
	return a.policy
}

// Assemble builds one Part. Only the prefix form advances the counter.
func (a *Assembler) Assemble(raw domain.RawPart) (domain.Part, error) {
	if raw.PartNo == "" && raw.Prefix == "" {
		return domain.Part{}, fmt.Errorf("%q: %w", raw.Name, ErrMissingPartNumber)
	}
	for _, r := range []domain.Range{raw.PriceRange, raw.QuantityRange} {
		if r.Min > r.Max {
			return domain.Part{}, fmt.Errorf("%q: [%d, %d]: %w", raw.Name, r.Min, r.Max, ErrInvalidRange)
		}
	}

	partNo := raw.PartNo
	if partNo == "" {
		partNo = fmt.Sprintf("%s%d", raw.Prefix, a.counter.Next())
	}

	retail, bulk := a.price(raw)
	quantity := a.quantity(raw)

	minimumOrder := raw.MinimumOrder
	if minimumOrder <= 0 {
		minimumOrder = a.policy.MinimumOrder.Resolve(retail)
	}
	leadTime := raw.LeadTime
	if leadTime == "" {
		leadTime = a.policy.LeadTime.Resolve(quantity)
	}

	tags := slices.Clone(raw.Tags)
	if len(tags) == 0 {
		tags = DefaultTags(raw.Brand)
	}

	compatibility := slices.Clone(raw.Compatibility)
	if compatibility == nil {
		compatibility = []string{}
	}

	specs := make(map[string]any, len(raw.Specifications))
	for k, v := range raw.Specifications {
		specs[k] = v
	}

	return domain.Part{
		PartNo:         partNo,
		Name:           raw.Name,
		Brand:          raw.Brand,
		Category:       raw.Category,
		Compatibility:  compatibility,
		Specifications: specs,
		Pricing: domain.Pricing{
			Currency:     a.policy.Currency,
			RetailPrice:  retail,
			BulkPrice:    bulk,
			MinimumOrder: minimumOrder,
		},
		Inventory: domain.Inventory{
			Stock:    orDefault(raw.Stock, a.policy.Stock),
			Quantity: quantity,
			Location: orDefault(raw.Location, a.policy.Location),
			LeadTime: leadTime,
		},
		Warranty: orDefault(raw.Warranty, a.policy.Warranty),
		Tags:     tags,
	}, nil
}

// AssembleAll assembles rows in order and stops at the first error.
func (a *Assembler) AssembleAll(rows []domain.RawPart) ([]domain.Part, error) {
	parts := make([]domain.Part, 0, len(rows))
	for _, raw := range rows {
		part, err := a.Assemble(raw)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// price prefers a literal retail/bulk pair. In range mode the retail price is drawn
// from the range and the bulk price from the configured share of it.
func (a *Assembler) price(raw domain.RawPart) (int, int) {
	if raw.Price > 0 || raw.PriceRange.IsZero() {
		bulk := raw.Bulk
		if bulk <= 0 {
			bulk = raw.Price
		}
		return raw.Price, bulk
	}

	retail := a.random.between(raw.PriceRange.Min, raw.PriceRange.Max)
	if raw.Bulk > 0 {
		return retail, raw.Bulk
	}
	lo := int(float64(retail) * a.policy.BulkLowRatio)
	hi := int(float64(retail) * a.policy.BulkHighRatio)
	return retail, a.random.between(lo, hi)
}

func (a *Assembler) quantity(raw domain.RawPart) int {
	if raw.Quantity > 0 || raw.QuantityRange.IsZero() {
		return raw.Quantity
	}
	return a.random.between(raw.QuantityRange.Min, raw.QuantityRange.Max)
}

// DefaultTags is the tag list used for rows that bring none.
func DefaultTags(brand string) []string {
	tags := []string{"spare-part"}
	if slug := Slug(brand); slug != "" {
		tags = append(tags, slug)
	}
	return tags
}

// Slug lowercases s and joins its words with dashes.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
