package testing

// ReferenceInput is the documented reference household: 4000 take-home,
// with extra keys the optimizer must ignore.
func ReferenceInput() map[string]interface{} {
	return map[string]interface{}{
		"transport_expenditure":   100,
		"food_expenditure":        100,
		"housing_expenditure":     1000,
		"insurance_expenditure":   100,
		"other_needs_expenditure": 700,
		"investment_expenditure":  300,
		"monthly_savings":         700,
		"monthly_take_home":       4000,
		"age":                     35,
		"number_of_kids":          2,
		"planning_to_buy_home":    true,
	}
}

// ReferenceOptimum is the optimal allocation for ReferenceInput under the
// default 20/50/30 rules and scale 1000. Its loss is 20000.
func ReferenceOptimum() map[string]int64 {
	return map[string]int64{
		"transport_expenditure":   100,
		"food_expenditure":        100,
		"housing_expenditure":     1000,
		"insurance_expenditure":   100,
		"other_needs_expenditure": 700,
		"investment_expenditure":  300,
		"monthly_savings":         800,
		"total_needs":             2000,
		"total_wants":             1200,
	}
}
