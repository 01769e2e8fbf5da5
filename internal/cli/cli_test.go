package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aristath/budgetopt/internal/modules/budget"
	testingpkg "github.com/aristath/budgetopt/internal/testing"
)

func writeYAML(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := yaml.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test", &out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCategories(t *testing.T) {
	out, err := run(t, "", "categories", "-o", "json")
	require.NoError(t, err)

	var infos []budget.CategoryInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Equal(t, budget.DescribeCategories(), infos)

	out, err = run(t, "", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "other_needs_expenditure")
	assert.Contains(t, out, "total_needs")
	assert.Contains(t, out, "derived")
}

func TestOptimize_JSON(t *testing.T) {
	file := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())

	out, err := run(t, "", "optimize", "--file", file, "-o", "json")
	require.NoError(t, err)

	var got struct {
		RunID      string           `json:"run_id"`
		Status     string           `json:"status"`
		Allocation map[string]int64 `json:"allocation"`
		Loss       *int64           `json:"loss"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, "OPTIMAL", got.Status)
	assert.Equal(t, testingpkg.ReferenceOptimum(), got.Allocation)
	require.NotNil(t, got.Loss)
	assert.Equal(t, int64(20000), *got.Loss)
}

func TestOptimize_Table(t *testing.T) {
	file := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())

	out, err := run(t, "", "optimize", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "OPTIMAL")
	assert.Contains(t, out, "monthly_savings")
	assert.Contains(t, out, "$800")
	assert.Contains(t, out, "Loss 20,000")
	assert.Contains(t, out, "savings >= $800")
}

func TestOptimize_YAMLFromStdin(t *testing.T) {
	input := `{"monthly_take_home": 4000, "housing_expenditure": 1000, "monthly_savings": 700,
"transport_expenditure": 100, "food_expenditure": 100, "insurance_expenditure": 100,
"other_needs_expenditure": 700, "investment_expenditure": 300}`

	out, err := run(t, input, "optimize", "--file", "-", "-o", "yaml")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "OPTIMAL", got["status"])
	assert.Contains(t, got, "run_id")
	allocation, ok := got["allocation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 800, allocation["monthly_savings"])
}

func TestOptimize_Infeasible(t *testing.T) {
	file := writeYAML(t, "current.yaml", map[string]int{"monthly_take_home": 10})

	out, err := run(t, "", "optimize", "--file", file)
	assert.ErrorIs(t, err, ErrNoBudget)
	assert.Contains(t, out, "INFEASIBLE")
}

func TestOptimize_RuleFlags(t *testing.T) {
	file := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())

	out, err := run(t, "", "optimize", "--file", file, "--savings-floor", "25", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Allocation map[string]int64 `json:"allocation"`
		Limits     budget.Limits    `json:"limits"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(1000), got.Limits.SavingsFloor)
	assert.GreaterOrEqual(t, got.Allocation["monthly_savings"], int64(1000))
}

func TestOptimize_Errors(t *testing.T) {
	good := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())
	bad := writeYAML(t, "bad.yaml", map[string]interface{}{"monthly_take_home": true})

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing file flag", []string{"optimize"}, nil},
		{"unreadable file", []string{"optimize", "-f", filepath.Join(t.TempDir(), "none.yaml")}, nil},
		{"unknown output", []string{"optimize", "-f", good, "-o", "xml"}, nil},
		{"invalid amount", []string{"optimize", "-f", bad}, budget.ErrInvalidInput},
		{"invalid scale", []string{"optimize", "-f", good, "--scale", "0"}, budget.ErrInvalidInput},
		{"invalid time limit", []string{"optimize", "-f", good, "--time-limit", "0"}, budget.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestWeights(t *testing.T) {
	file := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())

	out, err := run(t, "", "weights", "--file", file, "--scale", "10000", "-o", "json")
	require.NoError(t, err)

	var report budget.WeightsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(10000), report.Scale)
	assert.Equal(t, int64(99), report.Weights["food_expenditure"])

	out, err = run(t, "", "weights", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "scale 1,000")
	assert.Contains(t, out, "Income $4,000")
}

func TestCheck_AcceptsOptimizeOutput(t *testing.T) {
	current := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())

	out, err := run(t, "", "optimize", "--file", current, "-o", "yaml")
	require.NoError(t, err)
	proposal := filepath.Join(t.TempDir(), "proposal.yaml")
	require.NoError(t, os.WriteFile(proposal, []byte(out), 0644))

	out, err = run(t, "", "check", "--file", current, "--proposal", proposal)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
	assert.NotContains(t, out, "INVALID")
	assert.Contains(t, out, "Loss 20,000")
}

func TestCheck_ReportsViolations(t *testing.T) {
	current := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())
	allocation := testingpkg.ReferenceOptimum()
	allocation["monthly_savings"] = 700
	allocation["total_wants"] = 1300
	proposal := writeYAML(t, "proposal.yaml", allocation)

	out, err := run(t, "", "check", "-f", current, "-p", proposal, "-o", "json")
	assert.ErrorIs(t, err, ErrProposalRejected)

	var report budget.CheckReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Len(t, report.Violations, 2)
	assert.Nil(t, report.Loss)

	out, err = run(t, "", "check", "-f", current, "-p", proposal)
	assert.ErrorIs(t, err, ErrProposalRejected)
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "exceeds the ceiling 1200")
}

func TestCheck_UnknownCategory(t *testing.T) {
	current := writeYAML(t, "current.yaml", testingpkg.ReferenceInput())
	proposal := writeYAML(t, "proposal.yaml", map[string]int{"holidays": 100})

	_, err := run(t, "", "check", "-f", current, "-p", proposal)
	assert.ErrorIs(t, err, budget.ErrInvalidInput)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}
