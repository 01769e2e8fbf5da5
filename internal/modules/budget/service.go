package budget

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/events"
)

// MaxRequestTimeLimit caps the time limit a single request may ask for.
const MaxRequestTimeLimit = 5 * time.Minute

// SettingsProvider supplies the defaults a request does not override.
type SettingsProvider interface {
	WeightScale() int64
	SolverTimeLimit() time.Duration
	SolverMaxNodes() int64
	Rules() Rules
}

// Recorder receives per-run measurements.
type Recorder interface {
	ObserveOptimization(status string, elapsed time.Duration, nodes int64)
	ObserveLoss(loss int64)
}

// Request is one optimization request. Nil fields fall back to settings.
type Request struct {
	Current          map[string]interface{} `json:"current" yaml:"current"`
	Scale            *int64                 `json:"scale,omitempty" yaml:"scale,omitempty"`
	TimeLimitSeconds *float64               `json:"time_limit_seconds,omitempty" yaml:"time_limit_seconds,omitempty"`
	Rules            *Rules                 `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Run is a result tagged with the id used in logs and events.
type Run struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Result `yaml:",inline"`
}

// Service runs optimizations on behalf of the API: it resolves settings,
// records metrics and emits events around each Optimizer call.
type Service struct {
	optimizer    *Optimizer
	settings     SettingsProvider
	recorder     Recorder
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a budget service. settings, recorder and eventManager
// may be nil.
func NewService(
	optimizer *Optimizer,
	settings SettingsProvider,
	recorder Recorder,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	if settings == nil {
		settings = staticSettings{}
	}
	return &Service{
		optimizer:    optimizer,
		settings:     settings,
		recorder:     recorder,
		eventManager: eventManager,
		log:          log.With().Str("service", "budget").Logger(),
	}
}

// DefaultScale returns the scale used when a request has none.
func (s *Service) DefaultScale() int64 {
	return s.settings.WeightScale()
}

// DefaultRules returns the rules used when a request has none.
func (s *Service) DefaultRules() Rules {
	return s.settings.Rules()
}

// Optimize runs one request. Errors are *ValidationError or *SolverError;
// an infeasible budget is a successful run without an allocation.
func (s *Service) Optimize(ctx context.Context, req Request) (*Run, error) {
	if req.Current == nil {
		return nil, invalid("current", "is required")
	}

	scale := s.settings.WeightScale()
	if req.Scale != nil {
		scale = *req.Scale
	}
	timeLimit := s.settings.SolverTimeLimit()
	if req.TimeLimitSeconds != nil {
		limit, err := requestTimeLimit(*req.TimeLimitSeconds)
		if err != nil {
			return nil, err
		}
		timeLimit = limit
	}
	rules := s.settings.Rules()
	if req.Rules != nil {
		rules = *req.Rules
	}

	opt := s.optimizer.With(
		WithTimeLimit(timeLimit),
		WithMaxNodes(s.settings.SolverMaxNodes()),
		WithRules(rules),
	)

	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	result, err := opt.Optimize(ctx, req.Current, scale)
	elapsed := time.Since(start)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			log.Debug().Err(err).Msg("Rejected optimization request")
			return nil, err
		}
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("Optimization failed")
		s.observe("ERROR", elapsed, 0)
		if s.eventManager != nil {
			s.eventManager.EmitError("budget", err, map[string]interface{}{"run_id": runID})
		}
		return nil, err
	}

	s.observe(result.Status.String(), elapsed, result.Stats.Nodes)
	durationMS := float64(elapsed.Microseconds()) / 1000

	if result.Solved() {
		if s.recorder != nil {
			s.recorder.ObserveLoss(*result.Loss)
		}
		log.Info().
			Str("status", result.Status.String()).
			Int64("income", result.Income).
			Int64("loss", *result.Loss).
			Int64("nodes", result.Stats.Nodes).
			Dur("elapsed", elapsed).
			Msg("Budget optimized")
		if s.eventManager != nil {
			s.eventManager.EmitTyped("budget", &events.BudgetOptimizedData{
				RunID:      runID,
				Status:     result.Status.String(),
				Income:     result.Income,
				Loss:       *result.Loss,
				Allocation: result.Allocation,
				Nodes:      result.Stats.Nodes,
				DurationMS: durationMS,
			})
		}
	} else {
		log.Info().
			Str("status", result.Status.String()).
			Int64("income", result.Income).
			Str("stop_reason", result.Stats.StopReason).
			Dur("elapsed", elapsed).
			Msg("No feasible budget")
		if s.eventManager != nil {
			s.eventManager.EmitTyped("budget", &events.BudgetInfeasibleData{
				RunID:      runID,
				Status:     result.Status.String(),
				Income:     result.Income,
				StopReason: result.Stats.StopReason,
				DurationMS: durationMS,
			})
		}
	}

	return &Run{RunID: runID, Result: *result}, nil
}

func (s *Service) observe(status string, elapsed time.Duration, nodes int64) {
	if s.recorder != nil {
		s.recorder.ObserveOptimization(status, elapsed, nodes)
	}
}

func requestTimeLimit(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || seconds <= 0 || seconds > MaxRequestTimeLimit.Seconds() {
		return 0, invalid("time_limit_seconds", "must be within (0, %g]", MaxRequestTimeLimit.Seconds())
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// staticSettings serves the built-in defaults.
type staticSettings struct{}

func (staticSettings) WeightScale() int64             { return DefaultScale }
func (staticSettings) SolverTimeLimit() time.Duration { return DefaultTimeLimit }
func (staticSettings) SolverMaxNodes() int64          { return 0 }
func (staticSettings) Rules() Rules                   { return DefaultRules() }
