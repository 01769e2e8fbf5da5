package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/budgetopt/internal/modules/budget"
)

func newWeightsCommand(a *app) *cobra.Command {
	var (
		file  string
		scale int64
	)

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show how strongly each category resists change",
		Long: "Each category is weighted by how small it is relative to the largest\n" +
			"current category. Small categories are expensive to move.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := readMapping(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			req := budget.WeightsRequest{Current: current}
			if cmd.Flags().Changed("scale") {
				req.Scale = &scale
			}

			report, err := a.service.Weights(req)
			if err != nil {
				return err
			}
			return a.emit(report, func() string { return renderWeights(report) })
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Current allocation as YAML or JSON (- for stdin)")
	cmd.Flags().Int64Var(&scale, "scale", budget.DefaultScale, "Weight scale")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func renderWeights(report *budget.WeightsReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("WEIGHTS  scale %s", FormatNumber(report.Scale))))
	b.WriteString("\n")

	rows := make([][]string, 0, 9)
	for _, c := range budget.Categories() {
		rows = append(rows, []string{
			string(c),
			FormatDollars(report.Current[string(c)]),
			FormatNumber(report.Weights[string(c)]),
		})
	}
	b.WriteString(RenderTable(Table{
		Headers: []string{"Category", "Current", "Weight"},
		Rows:    rows,
	}))
	fmt.Fprintf(&b, "  Income %s\n", FormatDollars(report.Income))
	return b.String()
}
