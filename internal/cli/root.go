package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/pkg/logger"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Options holds the persistent flags shared by every command.
type Options struct {
	Output   string
	LogLevel string
	Verbose  bool
}

type app struct {
	opts    *Options
	out     io.Writer
	errOut  io.Writer
	log     zerolog.Logger
	service *budget.Service
}

// NewRootCommand builds the budgetctl command tree. Results go to out, logs
// to errOut.
func NewRootCommand(version string, out, errOut io.Writer) *cobra.Command {
	a := &app{opts: &Options{}, out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Rebalance a monthly budget under the 50/30/20 rule",
		Long: "budgetctl finds the whole-dollar budget closest to your current spending\n" +
			"that keeps needs, wants and savings within their share of take-home pay.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.Output, "output", "o", OutputTable, "Output format: table, json or yaml")
	pf.StringVar(&a.opts.LogLevel, "log-level", "warn", "Log level: trace, debug, info, warn or error")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "Shorthand for --log-level=debug")

	cmd.AddCommand(
		newOptimizeCommand(a),
		newWeightsCommand(a),
		newCategoriesCommand(a),
		newCheckCommand(a),
	)
	return cmd
}

// Execute runs budgetctl with the process arguments and exits non-zero on
// failure.
func Execute(version string) {
	// Ctrl-C stops a running search; the best allocation so far is reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(version, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, badStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	switch a.opts.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.opts.Output)
	}

	level := a.opts.LogLevel
	if a.opts.Verbose {
		level = "debug"
	}
	a.log = logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: a.errOut,
	})

	optimizer := budget.NewOptimizer(a.log, budget.WithSearchLog(level == "trace"))
	a.service = budget.NewService(optimizer, nil, nil, nil, a.log)
	return nil
}

// emit writes v as JSON or YAML, or calls table for the table format.
func (a *app) emit(v interface{}, table func() string) error {
	switch a.opts.Output {
	case OutputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(a.out, table())
		return err
	}
}
