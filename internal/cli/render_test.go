package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Budget",
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"monthly_savings", "$800"},
			{"---"},
			{"total_wants", "$1,200"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "Budget")
	assert.True(t, strings.HasPrefix(lines[1], "╭"))
	assert.Contains(t, lines[2], "Category")
	assert.Contains(t, lines[4], "monthly_savings │   $800")
	assert.True(t, strings.HasPrefix(lines[5], "├"))
	assert.True(t, strings.HasPrefix(lines[7], "╰"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}
