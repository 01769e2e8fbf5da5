package budget

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/aristath/budgetopt/internal/testing"
)

func TestNormalize_DerivesTotals(t *testing.T) {
	current, err := Normalize(testingpkg.ReferenceInput())
	require.NoError(t, err)

	assert.Equal(t, int64(4000), current.Income)
	assert.Equal(t, int64(2000), current.Get(TotalNeeds))
	assert.Equal(t, int64(1300), current.Get(TotalWants))
	assert.Equal(t, int64(700), current.Get(Savings))
	assert.Len(t, current.Map(), 9)
}

func TestNormalize_MissingKeysDefaultToZero(t *testing.T) {
	current, err := Normalize(map[string]interface{}{
		"monthly_take_home": 2000,
		"food_expenditure":  nil,
	})
	require.NoError(t, err)

	for _, c := range SuppliedCategories() {
		assert.Zero(t, current.Get(c), c)
	}
	assert.Equal(t, int64(2000), current.Get(TotalWants))

	empty, err := Normalize(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Income)
	assert.Zero(t, empty.Get(TotalWants))
}

func TestNormalize_NumericForms(t *testing.T) {
	current, err := Normalize(map[string]interface{}{
		"monthly_take_home":       "3000",
		"transport_expenditure":   json.Number("120.5"),
		"food_expenditure":        float32(99.5),
		"housing_expenditure":     decimal.RequireFromString("1000.49"),
		"insurance_expenditure":   uint16(80),
		"other_needs_expenditure": int64(40),
		"monthly_savings":         " 250 ",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), current.Income)
	assert.Equal(t, int64(121), current.Get(Transport), "half rounds away from zero")
	assert.Equal(t, int64(100), current.Get(Food))
	assert.Equal(t, int64(1000), current.Get(Housing))
	assert.Equal(t, int64(80), current.Get(Insurance))
	assert.Equal(t, int64(40), current.Get(OtherNeeds))
	assert.Equal(t, int64(250), current.Get(Savings))
}

func TestNormalize_NegativeDerivedWants(t *testing.T) {
	current, err := Normalize(map[string]interface{}{
		"monthly_take_home":   1000,
		"housing_expenditure": 900,
		"monthly_savings":     300,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-200), current.Get(TotalWants))
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		field string
	}{
		{"negative income", map[string]interface{}{"monthly_take_home": -1}, IncomeKey},
		{"income above cap", map[string]interface{}{"monthly_take_home": MaxIncome + 1}, IncomeKey},
		{"negative allocation", map[string]interface{}{"monthly_take_home": 100, "food_expenditure": -50}, "food_expenditure"},
		{"boolean allocation", map[string]interface{}{"monthly_take_home": 100, "monthly_savings": true}, "monthly_savings"},
		{"NaN", map[string]interface{}{"monthly_take_home": math.NaN()}, IncomeKey},
		{"infinity", map[string]interface{}{"monthly_take_home": 100, "housing_expenditure": math.Inf(1)}, "housing_expenditure"},
		{"non-numeric string", map[string]interface{}{"monthly_take_home": "lots"}, IncomeKey},
		{"unsupported type", map[string]interface{}{"monthly_take_home": []int{1}}, IncomeKey},
		{"huge amount", map[string]interface{}{"monthly_take_home": 100, "food_expenditure": 1e12}, "food_expenditure"},
		{"tiny exponent", map[string]interface{}{"monthly_take_home": 100, "food_expenditure": json.Number("1e-100000000")}, "food_expenditure"},
		{"huge exponent", map[string]interface{}{"monthly_take_home": "1e100000000"}, IncomeKey},
		{"too many decimals", map[string]interface{}{"monthly_take_home": json.Number("100.0000000000000000001")}, IncomeKey},
		{"overlong digits", map[string]interface{}{"monthly_take_home": strings.Repeat("9", 10000)}, IncomeKey},
		{"negative fraction", map[string]interface{}{"monthly_take_home": 100, "monthly_savings": -0.4}, "monthly_savings"},
		{"negative fraction text", map[string]interface{}{"monthly_take_home": json.Number("-0.2")}, IncomeKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := Normalize(tt.input)
			assert.Less(t, time.Since(start), time.Second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCurrentAllocation_ValuesRoundTrip(t *testing.T) {
	current, err := Normalize(testingpkg.ReferenceInput())
	require.NoError(t, err)

	again, err := Normalize(current.Values())
	require.NoError(t, err)
	assert.Equal(t, current, again)
}
