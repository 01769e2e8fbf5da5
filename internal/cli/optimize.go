package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/budgetopt/internal/modules/budget"
)

// ErrNoBudget is returned after reporting a run that found no allocation.
var ErrNoBudget = errors.New("no feasible budget found")

type optimizeFlags struct {
	file      string
	scale     int64
	timeLimit float64
	rules     budget.Rules
}

func newOptimizeCommand(a *app) *cobra.Command {
	f := &optimizeFlags{rules: budget.DefaultRules()}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Find the closest budget that satisfies the rules",
		Example: "  budgetctl optimize --file current.yaml\n" +
			"  budgetctl optimize -f current.json --scale 10000 -o json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := readMapping(f.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			req := budget.Request{Current: current}
			flags := cmd.Flags()
			if flags.Changed("scale") {
				req.Scale = &f.scale
			}
			if flags.Changed("time-limit") {
				req.TimeLimitSeconds = &f.timeLimit
			}
			if flags.Changed("savings-floor") || flags.Changed("needs-ceiling") || flags.Changed("wants-ceiling") {
				req.Rules = &f.rules
			}

			run, err := a.service.Optimize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.emit(run, func() string { return renderRun(run) }); err != nil {
				return err
			}
			if !run.Solved() {
				return ErrNoBudget
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "Current allocation as YAML or JSON (- for stdin)")
	fl.Int64Var(&f.scale, "scale", budget.DefaultScale, "Weight scale")
	fl.Float64Var(&f.timeLimit, "time-limit", budget.DefaultTimeLimit.Seconds(), "Search time limit in seconds")
	fl.Int64Var(&f.rules.SavingsFloorPct, "savings-floor", f.rules.SavingsFloorPct, "Minimum savings, percent of income")
	fl.Int64Var(&f.rules.NeedsCeilingPct, "needs-ceiling", f.rules.NeedsCeilingPct, "Maximum needs, percent of income")
	fl.Int64Var(&f.rules.WantsCeilingPct, "wants-ceiling", f.rules.WantsCeilingPct, "Maximum wants, percent of income")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func renderRun(run *budget.Run) string {
	var b strings.Builder

	status := run.Status.String()
	if run.Solved() {
		b.WriteString(RenderTitle("BUDGET  " + goodStyle.Render(status)))
	} else {
		b.WriteString(RenderTitle("BUDGET  " + badStyle.Render(status)))
	}
	b.WriteString("\n")

	if !run.Solved() {
		reason := run.Stats.StopReason
		if reason == "" {
			reason = "no allocation satisfies the rules"
		}
		fmt.Fprintf(&b, "  Income %s: %s\n", FormatDollars(run.Income), reason)
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  run %s", run.RunID)))
		b.WriteString("\n")
		return b.String()
	}

	categories := budget.Categories()
	before := make([]float64, len(categories))
	after := make([]float64, len(categories))
	weights := make([]float64, len(categories))
	for i, c := range categories {
		before[i] = float64(run.Current[string(c)])
		after[i] = float64(run.Allocation[string(c)])
		weights[i] = float64(run.Weights[string(c)])
	}
	shares := incomeShares(after, run.Income)

	rows := make([][]string, 0, len(categories)+4)
	for i, c := range categories {
		if c.Derived() && (i == 0 || !categories[i-1].Derived()) {
			rows = append(rows, []string{"---"})
		}
		rows = append(rows, []string{
			string(c),
			FormatDollars(run.Current[string(c)]),
			FormatDollars(run.Allocation[string(c)]),
			FormatDelta(run.Allocation[string(c)] - run.Current[string(c)]),
			FormatPercent(shares[i]),
			FormatNumber(run.Weights[string(c)]),
		})
	}
	b.WriteString(RenderTable(Table{
		Headers: []string{"Category", "Current", "Proposed", "Change", "Share", "Weight"},
		Rows:    rows,
	}))

	fmt.Fprintf(&b, "  Income %s  Loss %s  Mean change %s\n",
		FormatDollars(run.Income),
		FormatNumber(*run.Loss),
		FormatDollars(int64(weightedMeanChange(before, after, weights)+0.5)),
	)
	fmt.Fprintf(&b, "  Limits: savings >= %s, needs <= %s, wants <= %s\n",
		FormatDollars(run.Limits.SavingsFloor),
		FormatDollars(run.Limits.NeedsCeiling),
		FormatDollars(run.Limits.WantsCeiling),
	)
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  run %s  %s nodes in %.1fms",
		run.RunID, FormatNumber(run.Stats.Nodes), run.Stats.WallTimeMS)))
	b.WriteString("\n")
	return b.String()
}
