package cp

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Status is the outcome of a solve.
type Status int

const (
	// Unknown means a limit stopped the search before any solution was found.
	Unknown Status = iota
	// ModelInvalid means the model failed validation.
	ModelInvalid
	// Feasible means a solution was found but optimality was not proven.
	Feasible
	// Infeasible means the search proved that no solution exists.
	Infeasible
	// Optimal means the returned solution is proven optimal.
	Optimal
)

var statusNames = map[Status]string{
	Unknown:      "UNKNOWN",
	ModelInvalid: "MODEL_INVALID",
	Feasible:     "FEASIBLE",
	Infeasible:   "INFEASIBLE",
	Optimal:      "OPTIMAL",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// HasSolution reports whether a solution is attached to the response.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Params configures a search.
type Params struct {
	TimeLimit time.Duration  // zero means no limit
	MaxNodes  int64          // zero means no limit
	LogSearch bool           // log incumbents and the final summary
	Logger    zerolog.Logger // used when LogSearch is set
}

// Stats describes the work done by a search.
type Stats struct {
	Nodes      int64         `json:"nodes"`
	Failures   int64         `json:"failures"`
	Solutions  int64         `json:"solutions"`
	WallTime   time.Duration `json:"wall_time"`
	StopReason string        `json:"stop_reason,omitempty"`
}

// Response is the result of Solve.
type Response struct {
	Status    Status
	Objective int64
	// BestBound is a proven lower bound on the objective. It equals
	// Objective when Status is Optimal.
	BestBound int64
	Stats     Stats
	values    []int64
}

// Value returns the value of v in the solution. It returns 0 when the
// response carries no solution.
func (r *Response) Value(v IntVar) int64 {
	if r == nil || v.index < 0 || v.index >= len(r.values) {
		return 0
	}
	return r.values[v.index]
}

// Solver runs branch-and-bound searches over models.
type Solver struct {
	params Params
}

// NewSolver creates a solver with the given parameters.
func NewSolver(params Params) *Solver {
	return &Solver{params: params}
}

// Solve searches m for a solution minimizing its objective, or for any
// solution when no objective is set. Reaching a limit or a cancelled context
// is not an error: the response is Feasible with the best solution found,
// or Unknown. An invalid model is reported as an error wrapping
// ErrModelInvalid.
func (s *Solver) Solve(ctx context.Context, m *Model) (*Response, error) {
	start := time.Now()
	if err := m.Validate(); err != nil {
		return &Response{Status: ModelInvalid}, fmt.Errorf("%w: %v", ErrModelInvalid, err)
	}

	srch := newSearch(ctx, s.params, m, start)
	srch.run()

	resp := &Response{Stats: srch.stats}
	resp.Stats.WallTime = time.Since(start)
	switch {
	case srch.found && !srch.limitHit:
		resp.Status = Optimal
	case srch.found:
		resp.Status = Feasible
	case srch.limitHit:
		resp.Status = Unknown
	default:
		resp.Status = Infeasible
	}
	if srch.found {
		resp.values = srch.best
		resp.Objective = srch.bestObj
	}
	if resp.Status == Optimal {
		resp.BestBound = resp.Objective
	} else {
		resp.BestBound = srch.rootBound
	}

	if s.params.LogSearch {
		s.params.Logger.Info().
			Str("model", m.name).
			Str("status", resp.Status.String()).
			Int64("objective", resp.Objective).
			Int64("best_bound", resp.BestBound).
			Int64("nodes", resp.Stats.Nodes).
			Int64("solutions", resp.Stats.Solutions).
			Dur("wall_time", resp.Stats.WallTime).
			Str("stop_reason", resp.Stats.StopReason).
			Msg("Search finished")
	}
	return resp, nil
}
