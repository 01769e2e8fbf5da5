package budget

import (
	"errors"
	"fmt"
)

// Rules holds the percentage-of-income limits of a budget.
type Rules struct {
	SavingsFloorPct int64 `json:"savings_floor_pct" yaml:"savings_floor_pct"`
	NeedsCeilingPct int64 `json:"needs_ceiling_pct" yaml:"needs_ceiling_pct"`
	WantsCeilingPct int64 `json:"wants_ceiling_pct" yaml:"wants_ceiling_pct"`
}

// DefaultRules returns the 20/50/30 rule: at least 20% saved, at most 50% on
// needs and at most 30% on wants.
func DefaultRules() Rules {
	return Rules{SavingsFloorPct: 20, NeedsCeilingPct: 50, WantsCeilingPct: 30}
}

// Validate checks that every percentage lies within [0, 100].
func (r Rules) Validate() error {
	for _, f := range []struct {
		name string
		pct  int64
	}{
		{"savings_floor_pct", r.SavingsFloorPct},
		{"needs_ceiling_pct", r.NeedsCeilingPct},
		{"wants_ceiling_pct", r.WantsCeilingPct},
	} {
		if f.pct < 0 || f.pct > 100 {
			return invalid(f.name, "must be within [0, 100], got %d", f.pct)
		}
	}
	return nil
}

// Limits are the dollar limits the rules give for one income.
type Limits struct {
	SavingsFloor int64 `json:"savings_floor" yaml:"savings_floor"`
	NeedsCeiling int64 `json:"needs_ceiling" yaml:"needs_ceiling"`
	WantsCeiling int64 `json:"wants_ceiling" yaml:"wants_ceiling"`
}

// Limits computes the dollar limits for income, flooring each percentage.
func (r Rules) Limits(income int64) Limits {
	return Limits{
		SavingsFloor: income * r.SavingsFloorPct / 100,
		NeedsCeiling: income * r.NeedsCeilingPct / 100,
		WantsCeiling: income * r.WantsCeilingPct / 100,
	}
}

// Check verifies an allocation against every hard constraint: step
// multiples within [0, income], both sum identities and the three limits.
// All violations are reported together.
func (r Rules) Check(allocation map[string]int64, income int64) error {
	var errs []error
	get := func(c Category) int64 {
		v, ok := allocation[string(c)]
		if !ok {
			errs = append(errs, fmt.Errorf("%s is missing", c))
		}
		return v
	}

	values := make(map[Category]int64, numCategories)
	for _, c := range categoryOrder {
		v := get(c)
		values[c] = v
		if v < 0 || v > income {
			errs = append(errs, fmt.Errorf("%s = %d is outside [0, %d]", c, v, income))
		}
		if v%c.StepFactor() != 0 {
			errs = append(errs, fmt.Errorf("%s = %d is not a multiple of %d", c, v, c.StepFactor()))
		}
	}

	var needs int64
	for _, c := range needsCategories {
		needs += values[c]
	}
	if needs != values[TotalNeeds] {
		errs = append(errs, fmt.Errorf("needs lines sum to %d but total_needs = %d", needs, values[TotalNeeds]))
	}
	if total := values[TotalNeeds] + values[TotalWants] + values[Savings]; total != income {
		errs = append(errs, fmt.Errorf("needs + wants + savings = %d, income = %d", total, income))
	}

	limits := r.Limits(income)
	if values[Savings] < limits.SavingsFloor {
		errs = append(errs, fmt.Errorf("monthly_savings = %d is below the floor %d", values[Savings], limits.SavingsFloor))
	}
	if values[TotalNeeds] > limits.NeedsCeiling {
		errs = append(errs, fmt.Errorf("total_needs = %d exceeds the ceiling %d", values[TotalNeeds], limits.NeedsCeiling))
	}
	if values[TotalWants] > limits.WantsCeiling {
		errs = append(errs, fmt.Errorf("total_wants = %d exceeds the ceiling %d", values[TotalWants], limits.WantsCeiling))
	}

	return errors.Join(errs...)
}
