package domain

// Tier maps every input strictly above Above to Value.
type Tier[T any] struct {
	Above int `mapstructure:"above" yaml:"above"`
	Value T   `mapstructure:"value" yaml:"value"`
}

// Tiers is an ordered threshold table. Steps are checked in order and the first
// one whose threshold is exceeded wins; Default applies when none is.
type Tiers[T comparable] struct {
	Steps   []Tier[T] `mapstructure:"steps" yaml:"steps"`
	Default T         `mapstructure:"default" yaml:"default"`
}

func (t Tiers[T]) Resolve(input int) T {
	for _, step := range t.Steps {
		if input > step.Above {
			return step.Value
		}
	}
	return t.Default
}

func (t Tiers[T]) IsZero() bool {
	var zero T
	return len(t.Steps) == 0 && t.Default == zero
}

// DefaultMinimumOrderTiers is the price-based minimum order table used by the
// bulk category batches.
func DefaultMinimumOrderTiers() Tiers[int] {
	return Tiers[int]{
		Steps: []Tier[int]{
			{Above: 100000, Value: 1},
			{Above: 40000, Value: 2},
			{Above: 10000, Value: 4},
		},
		Default: 6,
	}
}

func DefaultLeadTimeTiers() Tiers[string] {
	return Tiers[string]{
		Steps: []Tier[string]{
			{Above: 200, Value: "Same Day"},
			{Above: 50, Value: "1-2 Days"},
		},
		Default: "1 Week",
	}
}
