package budget

import (
	"fmt"

	"github.com/aristath/budgetopt/pkg/cp"
)

// Model is the integer program for one optimization call.
//
// Per category it holds a unit variable, an effective amount equal to
// unit·step, a deviation from the current amount and the squared deviation.
// The objective minimizes the weighted sum of squared deviations.
type Model struct {
	cp      *cp.Model
	current CurrentAllocation
	weights Weights
	rules   Rules
	limits  Limits

	units     [numCategories]cp.IntVar
	effective [numCategories]cp.IntVar
	deviation [numCategories]cp.IntVar
	squared   [numCategories]cp.IntVar

	dual *dualBound
}

// BuildModel constructs the model for a validated current allocation.
func BuildModel(current CurrentAllocation, weights Weights, rules Rules) *Model {
	income := current.Income
	m := &Model{
		cp:      cp.NewModel("budget"),
		current: current,
		weights: weights,
		rules:   rules,
		limits:  rules.Limits(income),
	}
	model := m.cp

	for i, c := range categoryOrder {
		step := c.StepFactor()
		name := string(c)

		m.units[i] = model.NewIntVar(0, income/step, name+"_units")
		m.effective[i] = model.NewIntVar(0, income, name)
		model.AddEquality([]cp.Term{
			{Var: m.effective[i], Coef: 1},
			{Var: m.units[i], Coef: -step},
		}, 0)

		m.deviation[i] = model.NewIntVar(-income, income, name+"_deviation")
		model.AddEquality([]cp.Term{
			{Var: m.deviation[i], Coef: 1},
			{Var: m.effective[i], Coef: -1},
		}, -current.Get(c))

		m.squared[i] = model.NewIntVar(0, income*income, name+"_squared")
		model.AddMultiplicationEquality(m.squared[i], m.deviation[i], m.deviation[i])
	}

	needs := make([]cp.Term, 0, len(needsCategories)+1)
	for _, c := range needsCategories {
		needs = append(needs, cp.Term{Var: m.effective[c.index()], Coef: 1})
	}
	needs = append(needs, cp.Term{Var: m.effective[TotalNeeds.index()], Coef: -1})
	model.AddEquality(needs, 0)

	model.AddEquality([]cp.Term{
		{Var: m.effective[TotalNeeds.index()], Coef: 1},
		{Var: m.effective[TotalWants.index()], Coef: 1},
		{Var: m.effective[Savings.index()], Coef: 1},
	}, income)

	model.AddGreaterOrEqual([]cp.Term{{Var: m.effective[Savings.index()], Coef: 1}}, m.limits.SavingsFloor)
	model.AddLessOrEqual([]cp.Term{{Var: m.effective[TotalNeeds.index()], Coef: 1}}, m.limits.NeedsCeiling)
	model.AddLessOrEqual([]cp.Term{{Var: m.effective[TotalWants.index()], Coef: 1}}, m.limits.WantsCeiling)

	objective := make([]cp.Term, 0, numCategories)
	for i, c := range categoryOrder {
		objective = append(objective, cp.Term{Var: m.squared[i], Coef: weights.Get(c)})
	}
	model.Minimize(objective)
	model.AddDecisionStrategy(m.units[:]...)

	m.dual = newDualBound(m)
	model.SetObjectiveBound(m.dual.Bound)
	for i, hint := range m.dual.Hints() {
		model.AddHint(m.units[i], hint)
	}

	return m
}

// CP returns the underlying constraint model.
func (m *Model) CP() *cp.Model {
	return m.cp
}

// Limits returns the dollar limits the model enforces.
func (m *Model) Limits() Limits {
	return m.limits
}

// RootBound returns the dual lower bound on the loss before any search.
func (m *Model) RootBound() int64 {
	return m.dual.root
}

// Allocation reads the effective amounts from a solved response.
func (m *Model) Allocation(resp *cp.Response) map[string]int64 {
	out := make(map[string]int64, numCategories)
	for i, c := range categoryOrder {
		out[string(c)] = resp.Value(m.effective[i])
	}
	return out
}

// String describes the model size for logs.
func (m *Model) String() string {
	return fmt.Sprintf("budget model: income=%d vars=%d", m.current.Income, m.cp.NumVars())
}
