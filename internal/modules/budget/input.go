package budget

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxIncome caps monthly income so that weight·income² stays inside int64.
	MaxIncome int64 = 1_000_000
	// MaxAmount caps any supplied category amount.
	MaxAmount int64 = 1_000_000_000
)

const (
	// maxExponent bounds the decimal exponent of an amount, in both directions.
	maxExponent = 18
	// maxNumericLength bounds the length of an amount written as text.
	maxNumericLength = 64
)

var maxAmountDecimal = decimal.NewFromInt(MaxAmount)

// CurrentAllocation is a fully populated current budget: the seven supplied
// categories, the two derived totals, and income.
type CurrentAllocation struct {
	Income  int64
	amounts [numCategories]int64
}

// NewCurrentAllocation validates supplied amounts and derives total_needs and
// total_wants. Categories missing from supplied default to 0; derived
// categories in supplied are ignored.
func NewCurrentAllocation(income int64, supplied map[Category]int64) (CurrentAllocation, error) {
	if income < 0 {
		return CurrentAllocation{}, invalid(IncomeKey, "must be non-negative, got %d", income)
	}
	if income > MaxIncome {
		return CurrentAllocation{}, invalid(IncomeKey, "must not exceed %d, got %d", MaxIncome, income)
	}

	a := CurrentAllocation{Income: income}
	for _, c := range SuppliedCategories() {
		v := supplied[c]
		if v < 0 {
			return CurrentAllocation{}, invalid(string(c), "must be non-negative, got %d", v)
		}
		if v > MaxAmount {
			return CurrentAllocation{}, invalid(string(c), "must not exceed %d, got %d", MaxAmount, v)
		}
		a.amounts[c.index()] = v
	}

	var needs int64
	for _, c := range needsCategories {
		needs += a.amounts[c.index()]
	}
	a.amounts[TotalNeeds.index()] = needs
	a.amounts[TotalWants.index()] = income - needs - a.amounts[Savings.index()]
	return a, nil
}

// Normalize reads a raw current-allocation mapping. Recognized keys are the
// seven supplied categories and monthly_take_home; every other key is
// ignored. Missing or null recognized keys count as 0. Fractional dollars are
// rounded half away from zero.
func Normalize(values map[string]interface{}) (CurrentAllocation, error) {
	income, err := dollarsAt(values, IncomeKey)
	if err != nil {
		return CurrentAllocation{}, err
	}

	supplied := make(map[Category]int64, numCategories)
	for _, c := range SuppliedCategories() {
		v, err := dollarsAt(values, string(c))
		if err != nil {
			return CurrentAllocation{}, err
		}
		supplied[c] = v
	}
	return NewCurrentAllocation(income, supplied)
}

// Get returns the current amount of c.
func (a CurrentAllocation) Get(c Category) int64 {
	i, ok := categoryIndex[c]
	if !ok {
		return 0
	}
	return a.amounts[i]
}

// Map returns all nine categories keyed by name.
func (a CurrentAllocation) Map() map[string]int64 {
	out := make(map[string]int64, numCategories)
	for i, c := range categoryOrder {
		out[string(c)] = a.amounts[i]
	}
	return out
}

// Values returns the input form of the allocation, including income, suitable
// for Normalize.
func (a CurrentAllocation) Values() map[string]interface{} {
	out := make(map[string]interface{}, numCategories)
	for _, c := range SuppliedCategories() {
		out[string(c)] = a.Get(c)
	}
	out[IncomeKey] = a.Income
	return out
}

func dollarsAt(values map[string]interface{}, key string) (int64, error) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return 0, nil
	}
	d, err := toDecimal(raw)
	if err != nil {
		return 0, invalid(key, "%v", err)
	}
	// Comparing or rounding rescales to a common exponent
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return 0, invalid(key, "exponent %d is outside [-%d, %d]", exp, maxExponent, maxExponent)
	}
	if d.Sign() < 0 {
		return 0, invalid(key, "must be non-negative, got %s", d.String())
	}
	if d.GreaterThan(maxAmountDecimal) {
		return 0, invalid(key, "magnitude exceeds %d", MaxAmount)
	}
	return d.Round(0).IntPart(), nil
}

func toDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case bool:
		return decimal.Zero, fmt.Errorf("boolean %t is not a dollar amount", v)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return decimal.NewFromInt(int64(v)), nil
	case uint16:
		return decimal.NewFromInt(int64(v)), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return parseDecimal(string(v))
	case string:
		return parseDecimal(v)
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", raw)
	}
}

func fromUint(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%v is not a dollar amount", f)
	}
	return decimal.NewFromFloat(f), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxNumericLength {
		return decimal.Zero, fmt.Errorf("numeric text longer than %d characters", maxNumericLength)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not numeric", s)
	}
	return d, nil
}
