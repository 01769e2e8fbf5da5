package budget

import (
	"errors"
	"fmt"
)

// CategoryInfo describes one category for clients.
type CategoryInfo struct {
	Name       string `json:"name" yaml:"name"`
	StepFactor int64  `json:"step_factor" yaml:"step_factor"`
	Need       bool   `json:"need" yaml:"need"`
	Derived    bool   `json:"derived" yaml:"derived"`
}

// DescribeCategories lists the nine categories in order.
func DescribeCategories() []CategoryInfo {
	out := make([]CategoryInfo, 0, numCategories)
	for _, c := range categoryOrder {
		out = append(out, CategoryInfo{
			Name:       string(c),
			StepFactor: c.StepFactor(),
			Need:       c.IsNeed(),
			Derived:    c.Derived(),
		})
	}
	return out
}

// WeightsRequest asks for the weights of a current allocation.
type WeightsRequest struct {
	Current map[string]interface{} `json:"current" yaml:"current"`
	Scale   *int64                 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// WeightsReport is the normalized allocation with its weights.
type WeightsReport struct {
	Scale   int64            `json:"scale" yaml:"scale"`
	Income  int64            `json:"income" yaml:"income"`
	Current map[string]int64 `json:"current" yaml:"current"`
	Weights map[string]int64 `json:"weights" yaml:"weights"`
}

// CheckRequest asks whether a proposed allocation is admissible for the
// income of a current allocation.
type CheckRequest struct {
	Current  map[string]interface{} `json:"current" yaml:"current"`
	Proposal map[string]interface{} `json:"proposal" yaml:"proposal"`
	Scale    *int64                 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Rules    *Rules                 `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// CheckReport lists every rule a proposal breaks. Loss is set only for a
// valid proposal.
type CheckReport struct {
	Valid      bool             `json:"valid" yaml:"valid"`
	Violations []string         `json:"violations" yaml:"violations"`
	Income     int64            `json:"income" yaml:"income"`
	Limits     Limits           `json:"limits" yaml:"limits"`
	Proposal   map[string]int64 `json:"proposal" yaml:"proposal"`
	Loss       *int64           `json:"loss" yaml:"loss"`
}

// Weights normalizes the request and computes its weights.
func (s *Service) Weights(req WeightsRequest) (*WeightsReport, error) {
	current, weights, err := s.weigh(req.Current, req.Scale)
	if err != nil {
		return nil, err
	}
	return &WeightsReport{
		Scale:   weights.Scale,
		Income:  current.Income,
		Current: current.Map(),
		Weights: weights.Map(),
	}, nil
}

func (s *Service) weigh(values map[string]interface{}, scale *int64) (CurrentAllocation, Weights, error) {
	if values == nil {
		return CurrentAllocation{}, Weights{}, invalid("current", "is required")
	}
	current, err := Normalize(values)
	if err != nil {
		return CurrentAllocation{}, Weights{}, err
	}
	sc := s.settings.WeightScale()
	if scale != nil {
		sc = *scale
	}
	weights, err := ComputeWeights(current, sc)
	if err != nil {
		return CurrentAllocation{}, Weights{}, err
	}
	return current, weights, nil
}

// Check verifies a proposal against the rules. Rule violations are part of
// the report; only malformed input is an error.
func (s *Service) Check(req CheckRequest) (*CheckReport, error) {
	if req.Proposal == nil {
		return nil, invalid("proposal", "is required")
	}

	rules := s.settings.Rules()
	if req.Rules != nil {
		rules = *req.Rules
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	current, weights, err := s.weigh(req.Current, req.Scale)
	if err != nil {
		return nil, err
	}

	proposal, err := ParseProposal(req.Proposal)
	if err != nil {
		return nil, err
	}

	out := &CheckReport{
		Valid:      true,
		Violations: []string{},
		Income:     current.Income,
		Limits:     rules.Limits(current.Income),
		Proposal:   proposal,
	}
	if err := rules.Check(proposal, current.Income); err != nil {
		out.Violations = violations(err)
	}
	out.Violations = append(out.Violations, deviationViolations(proposal, current)...)
	if len(out.Violations) > 0 {
		out.Valid = false
		return out, nil
	}

	loss := LossOf(proposal, current, weights)
	out.Loss = &loss
	return out, nil
}

// ParseProposal reads a proposed allocation. Unknown keys are rejected.
func ParseProposal(values map[string]interface{}) (map[string]int64, error) {
	out := make(map[string]int64, len(values))
	for key := range values {
		if _, ok := ParseCategory(key); !ok {
			return nil, invalid(key, "is not a budget category")
		}
		v, err := dollarsAt(values, key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// deviationViolations reports categories moved by more than the income, the
// same range BuildModel gives each deviation.
func deviationViolations(proposal map[string]int64, current CurrentAllocation) []string {
	var out []string
	for _, c := range categoryOrder {
		v, ok := proposal[string(c)]
		if !ok {
			continue
		}
		was := current.Get(c)
		if dev := v - was; dev > current.Income || dev < -current.Income {
			out = append(out, fmt.Sprintf("%s = %d is more than the income %d away from the current %d", c, v, current.Income, was))
		}
	}
	return out
}

func violations(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{fmt.Sprint(err)}
}
