// Package budget computes recommended monthly budget allocations.
//
// An allocation assigns a dollar amount to each of nine fixed categories.
// The optimizer keeps every amount on its category's step grid, enforces the
// savings floor and the needs and wants ceilings, and otherwise stays as close
// as possible to the current allocation, weighting each category's squared
// deviation by how little is currently spent on it.
package budget

// Category names one budget line.
type Category string

// The nine budget categories, in their fixed order.
const (
	Transport  Category = "transport_expenditure"
	Food       Category = "food_expenditure"
	Housing    Category = "housing_expenditure"
	Insurance  Category = "insurance_expenditure"
	OtherNeeds Category = "other_needs_expenditure"
	Investment Category = "investment_expenditure"
	Savings    Category = "monthly_savings"
	TotalNeeds Category = "total_needs"
	TotalWants Category = "total_wants"
)

// IncomeKey is the input key carrying monthly take-home income.
const IncomeKey = "monthly_take_home"

const numCategories = 9

var categoryOrder = [numCategories]Category{
	Transport,
	Food,
	Housing,
	Insurance,
	OtherNeeds,
	Investment,
	Savings,
	TotalNeeds,
	TotalWants,
}

var needsCategories = []Category{Transport, Food, Housing, Insurance, OtherNeeds}

var categoryIndex = func() map[Category]int {
	idx := make(map[Category]int, numCategories)
	for i, c := range categoryOrder {
		idx[c] = i
	}
	return idx
}()

// Categories returns the nine categories in order.
func Categories() []Category {
	out := make([]Category, numCategories)
	copy(out, categoryOrder[:])
	return out
}

// NeedsCategories returns the five lines that add up to total_needs.
func NeedsCategories() []Category {
	return append([]Category(nil), needsCategories...)
}

// SuppliedCategories returns the seven categories read from input. The two
// totals are derived.
func SuppliedCategories() []Category {
	out := make([]Category, 0, numCategories-2)
	for _, c := range categoryOrder {
		if !c.Derived() {
			out = append(out, c)
		}
	}
	return out
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, bool) {
	c := Category(name)
	_, ok := categoryIndex[c]
	return c, ok
}

// StepFactor is the dollar granularity of the category: 10 for transport,
// 50 for everything else.
func (c Category) StepFactor() int64 {
	if c == Transport {
		return 10
	}
	return 50
}

// IsNeed reports whether the category counts toward total_needs.
func (c Category) IsNeed() bool {
	switch c {
	case Transport, Food, Housing, Insurance, OtherNeeds:
		return true
	}
	return false
}

// Derived reports whether the category is computed rather than supplied.
func (c Category) Derived() bool {
	return c == TotalNeeds || c == TotalWants
}

func (c Category) String() string {
	return string(c)
}

func (c Category) index() int {
	return categoryIndex[c]
}
