package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.n))
	}
}

func TestFormatDollarsAndDelta(t *testing.T) {
	assert.Equal(t, "$4,000", FormatDollars(4000))
	assert.Equal(t, "-$50", FormatDollars(-50))
	assert.Equal(t, "+100", FormatDelta(100))
	assert.Equal(t, "-1,100", FormatDelta(-1100))
	assert.Equal(t, "·", FormatDelta(0))
	assert.Equal(t, "20.0%", FormatPercent(0.2))
}

func TestIncomeShares(t *testing.T) {
	amounts := []float64{800, 2000, 1200}
	assert.InDeltaSlice(t, []float64{0.2, 0.5, 0.3}, incomeShares(amounts, 4000), 1e-9)
	assert.Equal(t, []float64{800, 2000, 1200}, amounts)
	assert.Equal(t, []float64{0, 0, 0}, incomeShares(amounts, 0))
}

func TestWeightedMeanChange(t *testing.T) {
	before := []float64{0, 100, 300}
	after := []float64{100, 100, 200}

	assert.InDelta(t, 25.0, weightedMeanChange(before, after, []float64{1, 3, 0}), 1e-9)
	assert.InDelta(t, 200.0/3, weightedMeanChange(before, after, []float64{1, 1, 1}), 1e-9)
	assert.Zero(t, weightedMeanChange(before, after, []float64{0, 0, 0}))
}
