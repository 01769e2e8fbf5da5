package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/budgetopt/internal/modules/budget"
)

// ErrProposalRejected is returned after reporting a proposal that breaks at
// least one rule.
var ErrProposalRejected = errors.New("proposal breaks the budget rules")

func newCheckCommand(a *app) *cobra.Command {
	var (
		file     string
		proposal string
		scale    int64
		rules    = budget.DefaultRules()
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a proposed budget against the rules",
		Long: "The proposal lists all nine categories. The output of\n" +
			"'budgetctl optimize -o yaml' is accepted as a proposal as well.",
		Example: "  budgetctl check --file current.yaml --proposal proposal.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := readMapping(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			proposed, err := readMapping(proposal, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if nested, ok := proposed["allocation"].(map[string]interface{}); ok {
				proposed = nested
			}

			req := budget.CheckRequest{Current: current, Proposal: proposed}
			flags := cmd.Flags()
			if flags.Changed("scale") {
				req.Scale = &scale
			}
			if flags.Changed("savings-floor") || flags.Changed("needs-ceiling") || flags.Changed("wants-ceiling") {
				req.Rules = &rules
			}

			report, err := a.service.Check(req)
			if err != nil {
				return err
			}
			if err := a.emit(report, func() string { return renderCheck(report) }); err != nil {
				return err
			}
			if !report.Valid {
				return ErrProposalRejected
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&file, "file", "f", "", "Current allocation as YAML or JSON (- for stdin)")
	fl.StringVarP(&proposal, "proposal", "p", "", "Proposed allocation as YAML or JSON")
	fl.Int64Var(&scale, "scale", budget.DefaultScale, "Weight scale used for the loss")
	fl.Int64Var(&rules.SavingsFloorPct, "savings-floor", rules.SavingsFloorPct, "Minimum savings, percent of income")
	fl.Int64Var(&rules.NeedsCeilingPct, "needs-ceiling", rules.NeedsCeilingPct, "Maximum needs, percent of income")
	fl.Int64Var(&rules.WantsCeilingPct, "wants-ceiling", rules.WantsCeilingPct, "Maximum wants, percent of income")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("proposal")
	return cmd
}

func renderCheck(report *budget.CheckReport) string {
	var b strings.Builder
	if report.Valid {
		b.WriteString(RenderTitle("CHECK  " + goodStyle.Render("VALID")))
	} else {
		b.WriteString(RenderTitle("CHECK  " + badStyle.Render("INVALID")))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  Income %s  savings >= %s  needs <= %s  wants <= %s\n",
		FormatDollars(report.Income),
		FormatDollars(report.Limits.SavingsFloor),
		FormatDollars(report.Limits.NeedsCeiling),
		FormatDollars(report.Limits.WantsCeiling),
	)
	for _, v := range report.Violations {
		b.WriteString(badStyle.Render("  ✗ "))
		b.WriteString(v)
		b.WriteString("\n")
	}
	if report.Loss != nil {
		fmt.Fprintf(&b, "  Loss %s\n", FormatNumber(*report.Loss))
	}
	return b.String()
}
