package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/pkg/cp"
)

// DefaultTimeLimit bounds a single search when no limit is configured.
const DefaultTimeLimit = 10 * time.Second

// SolveStats describes the search behind a result.
type SolveStats struct {
	Nodes      int64   `json:"nodes" yaml:"nodes"`
	Failures   int64   `json:"failures" yaml:"failures"`
	Solutions  int64   `json:"solutions" yaml:"solutions"`
	RootBound  int64   `json:"root_bound" yaml:"root_bound"`
	BestBound  int64   `json:"best_bound" yaml:"best_bound"`
	WallTimeMS float64 `json:"wall_time_ms" yaml:"wall_time_ms"`
	StopReason string  `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty"`
}

// Result is the outcome of one optimization. Allocation and Loss are nil
// when no allocation satisfies the constraints or the search hit a limit
// before finding one.
type Result struct {
	Status     cp.Status        `json:"status" yaml:"status"`
	Allocation map[string]int64 `json:"allocation" yaml:"allocation"`
	Loss       *int64           `json:"loss" yaml:"loss"`
	Income     int64            `json:"income" yaml:"income"`
	Current    map[string]int64 `json:"current" yaml:"current"`
	Weights    map[string]int64 `json:"weights" yaml:"weights"`
	Scale      int64            `json:"scale" yaml:"scale"`
	Limits     Limits           `json:"limits" yaml:"limits"`
	Stats      SolveStats       `json:"stats" yaml:"stats"`
}

// Solved reports whether the result carries an allocation.
func (r *Result) Solved() bool {
	return r != nil && r.Allocation != nil
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithTimeLimit bounds the wall-clock time of each search. Zero disables
// the limit.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Optimizer) {
		o.timeLimit = d
	}
}

// WithMaxNodes bounds the number of search nodes. Zero disables the limit.
func WithMaxNodes(n int64) Option {
	return func(o *Optimizer) {
		o.maxNodes = n
	}
}

// WithRules replaces the default 20/50/30 rules.
func WithRules(r Rules) Option {
	return func(o *Optimizer) {
		o.rules = r
	}
}

// WithSearchLog logs every incumbent and the search summary.
func WithSearchLog(enabled bool) Option {
	return func(o *Optimizer) {
		o.logSearch = enabled
	}
}

// Optimizer turns current allocations into recommended ones. It holds only
// configuration; every call builds a fresh model.
type Optimizer struct {
	log       zerolog.Logger
	rules     Rules
	timeLimit time.Duration
	maxNodes  int64
	logSearch bool
}

// NewOptimizer creates an optimizer with the default rules and time limit.
func NewOptimizer(log zerolog.Logger, opts ...Option) *Optimizer {
	o := &Optimizer{
		log:       log.With().Str("component", "budget_optimizer").Logger(),
		rules:     DefaultRules(),
		timeLimit: DefaultTimeLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// With returns a copy of the optimizer with extra options applied.
func (o *Optimizer) With(opts ...Option) *Optimizer {
	clone := *o
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// Rules returns the rules the optimizer enforces.
func (o *Optimizer) Rules() Rules {
	return o.rules
}

// TimeLimit returns the configured search time limit.
func (o *Optimizer) TimeLimit() time.Duration {
	return o.timeLimit
}

// Optimize normalizes raw input, derives weights with the given scale and
// solves. Invalid input returns a *ValidationError; an engine failure
// returns a *SolverError. An infeasible budget is not an error: the result
// then has no allocation.
func (o *Optimizer) Optimize(ctx context.Context, values map[string]interface{}, scale int64) (*Result, error) {
	current, err := Normalize(values)
	if err != nil {
		return nil, err
	}
	weights, err := ComputeWeights(current, scale)
	if err != nil {
		return nil, err
	}
	return o.Solve(ctx, current, weights)
}

// Solve runs the search for an already normalized allocation.
func (o *Optimizer) Solve(ctx context.Context, current CurrentAllocation, weights Weights) (*Result, error) {
	if err := o.rules.Validate(); err != nil {
		return nil, err
	}

	model := BuildModel(current, weights, o.rules)
	solver := cp.NewSolver(cp.Params{
		TimeLimit: o.timeLimit,
		MaxNodes:  o.maxNodes,
		LogSearch: o.logSearch,
		Logger:    o.log,
	})

	resp, err := solver.Solve(ctx, model.CP())
	if err != nil {
		return nil, &SolverError{Status: resp.Status, Err: err}
	}

	result := &Result{
		Status:  resp.Status,
		Income:  current.Income,
		Current: current.Map(),
		Weights: weights.Map(),
		Scale:   weights.Scale,
		Limits:  model.Limits(),
		Stats: SolveStats{
			Nodes:      resp.Stats.Nodes,
			Failures:   resp.Stats.Failures,
			Solutions:  resp.Stats.Solutions,
			RootBound:  finiteBound(model.RootBound()),
			BestBound:  finiteBound(resp.BestBound),
			WallTimeMS: float64(resp.Stats.WallTime.Microseconds()) / 1000,
			StopReason: resp.Stats.StopReason,
		},
	}

	if !resp.Status.HasSolution() {
		o.log.Info().
			Str("status", resp.Status.String()).
			Int64("income", current.Income).
			Str("stop_reason", resp.Stats.StopReason).
			Msg("No allocation found")
		return result, nil
	}

	allocation := model.Allocation(resp)
	if err := o.rules.Check(allocation, current.Income); err != nil {
		return nil, &SolverError{Status: resp.Status, Err: fmt.Errorf("solution violates budget rules: %w", err)}
	}
	loss := LossOf(allocation, current, weights)
	if loss != resp.Objective {
		o.log.Warn().
			Int64("loss", loss).
			Int64("objective", resp.Objective).
			Msg("Recomputed loss differs from solver objective")
	}

	result.Allocation = allocation
	result.Loss = &loss

	o.log.Debug().
		Str("status", resp.Status.String()).
		Int64("loss", loss).
		Int64("nodes", resp.Stats.Nodes).
		Msg("Allocation found")
	return result, nil
}

func finiteBound(b int64) int64 {
	if b >= infeasibleBound {
		return 0
	}
	return b
}

// LossOf returns Σ weight·(allocation − current)² over the nine categories.
func LossOf(allocation map[string]int64, current CurrentAllocation, weights Weights) int64 {
	var loss int64
	for _, c := range categoryOrder {
		dev := allocation[string(c)] - current.Get(c)
		loss += weights.Get(c) * dev * dev
	}
	return loss
}
