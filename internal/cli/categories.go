package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/budgetopt/internal/modules/budget"
)

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the budget categories and their dollar steps",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			infos := budget.DescribeCategories()
			return a.emit(infos, func() string {
				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					var kind []string
					if info.Need {
						kind = append(kind, "need")
					}
					if info.Derived {
						kind = append(kind, "derived")
					}
					rows = append(rows, []string{
						info.Name,
						"$" + strconv.FormatInt(info.StepFactor, 10),
						strings.Join(kind, ", "),
					})
				}
				return RenderTable(Table{
					Title:   "Categories",
					Headers: []string{"Category", "Step", "Kind"},
					Rows:    rows,
				})
			})
		},
	}
}
