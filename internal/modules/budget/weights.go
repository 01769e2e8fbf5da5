package budget

const (
	// DefaultScale is the weight scale used when none is given.
	DefaultScale int64 = 1000
	// MaxScale keeps weight·income² inside int64 for any valid income.
	MaxScale int64 = 100_000
)

// Weight returns max(1, round(scale / (value + 1))), rounding halves to even.
// Negative values, which only the derived total_wants can take, weigh 1.
func Weight(value, scale int64) int64 {
	if value < 0 || scale <= 0 {
		return 1
	}
	den := value + 1
	q, r := scale/den, scale%den
	switch {
	case 2*r > den:
		q++
	case 2*r == den && q%2 == 1:
		q++
	}
	return max(q, 1)
}

// Weights holds one weight per category.
type Weights struct {
	Scale  int64
	values [numCategories]int64
}

// ComputeWeights derives the weight of every category from the current
// allocation.
func ComputeWeights(current CurrentAllocation, scale int64) (Weights, error) {
	if scale < 1 || scale > MaxScale {
		return Weights{}, invalid("scale", "must be within [1, %d], got %d", MaxScale, scale)
	}
	w := Weights{Scale: scale}
	for i, c := range categoryOrder {
		w.values[i] = Weight(current.Get(c), scale)
	}
	return w, nil
}

// Get returns the weight of c.
func (w Weights) Get(c Category) int64 {
	i, ok := categoryIndex[c]
	if !ok {
		return 0
	}
	return w.values[i]
}

// Map returns the weights keyed by category name.
func (w Weights) Map() map[string]int64 {
	out := make(map[string]int64, numCategories)
	for i, c := range categoryOrder {
		out[string(c)] = w.values[i]
	}
	return out
}
