// Package cp is a small integer constraint engine: interval domains, bounds
// propagation over linear and multiplication constraints, and a depth-first
// branch-and-bound search minimizing a linear objective.
//
// The engine is deterministic. The same model and parameters always explore
// the same tree and return the same solution.
package cp

import (
	"errors"
	"fmt"
)

// ErrModelInvalid is returned when a model cannot be solved as built
// (empty domains, foreign variables, values that could overflow).
var ErrModelInvalid = errors.New("model invalid")

// IntVar is a handle on an integer variable of a Model.
type IntVar struct {
	index int
	model *Model
}

// Index returns the position of the variable inside its model.
func (v IntVar) Index() int {
	return v.index
}

// Term is Coef·Var inside a linear expression.
type Term struct {
	Var  IntVar
	Coef int64
}

// BoundFunc returns a lower bound on the objective over every assignment that
// fits the given domains. Returning a value that is not a valid lower bound
// makes the search unsound.
type BoundFunc func(View) int64

// View is a read-only look at the current domains during search.
type View struct {
	domains []Domain
}

// NewView wraps domains indexed like the model's variables. It lets a
// BoundFunc be evaluated outside a search.
func NewView(domains []Domain) View {
	return View{domains: domains}
}

// InitialView returns a view of the model's initial domains.
func (m *Model) InitialView() View {
	d := make([]Domain, len(m.domains))
	copy(d, m.domains)
	return View{domains: d}
}

// Domain returns the current domain of v.
func (w View) Domain(v IntVar) Domain {
	return w.domains[v.index]
}

// Min returns the current lower bound of v.
func (w View) Min(v IntVar) int64 {
	return w.domains[v.index].Min
}

// Max returns the current upper bound of v.
func (w View) Max(v IntVar) int64 {
	return w.domains[v.index].Max
}

type term struct {
	v int
	c int64
}

type linearSpec struct {
	terms  []term
	lo, hi int64
	hasLo  bool
	hasHi  bool
}

type productSpec struct {
	z, x, y int
}

// Model holds variables, constraints, an optional objective and search
// directives. A Model is not safe for concurrent mutation, but it is not
// modified by Solve and may be solved several times.
type Model struct {
	name      string
	domains   []Domain
	names     []string
	linear    []linearSpec
	products  []productSpec
	objective []term
	minimize  bool
	strategy  []int
	hints     map[int]int64
	bound     BoundFunc
	errs      []error
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:  name,
		hints: make(map[int]int64),
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int {
	return len(m.domains)
}

// VarName returns the name given to v at creation.
func (m *Model) VarName(v IntVar) string {
	if !m.owns(v) {
		return ""
	}
	return m.names[v.index]
}

// Domain returns the initial domain of v.
func (m *Model) Domain(v IntVar) Domain {
	if !m.owns(v) {
		return Domain{Min: 1, Max: 0}
	}
	return m.domains[v.index]
}

// NewIntVar creates a variable with domain [lo, hi].
func (m *Model) NewIntVar(lo, hi int64, name string) IntVar {
	m.domains = append(m.domains, Domain{Min: lo, Max: hi})
	m.names = append(m.names, name)
	return IntVar{index: len(m.domains) - 1, model: m}
}

// NewConstant creates a variable fixed to value.
func (m *Model) NewConstant(value int64) IntVar {
	return m.NewIntVar(value, value, fmt.Sprintf("const_%d", value))
}

// AddLinear adds lo <= Σ terms <= hi.
func (m *Model) AddLinear(terms []Term, lo, hi int64) {
	m.addLinear(terms, lo, hi, true, true)
}

// AddEquality adds Σ terms == rhs.
func (m *Model) AddEquality(terms []Term, rhs int64) {
	m.addLinear(terms, rhs, rhs, true, true)
}

// AddLessOrEqual adds Σ terms <= rhs.
func (m *Model) AddLessOrEqual(terms []Term, rhs int64) {
	m.addLinear(terms, 0, rhs, false, true)
}

// AddGreaterOrEqual adds Σ terms >= rhs.
func (m *Model) AddGreaterOrEqual(terms []Term, rhs int64) {
	m.addLinear(terms, rhs, 0, true, false)
}

// AddMultiplicationEquality adds target == x · y. Passing the same variable
// twice expresses a square.
func (m *Model) AddMultiplicationEquality(target, x, y IntVar) {
	if !m.checkVars("multiplication", target, x, y) {
		return
	}
	m.products = append(m.products, productSpec{z: target.index, x: x.index, y: y.index})
}

// Minimize sets the objective to minimize Σ terms.
func (m *Model) Minimize(terms []Term) {
	ts, ok := m.convert("objective", terms)
	if !ok {
		return
	}
	m.objective = ts
	m.minimize = true
}

// AddDecisionStrategy appends vars to the branching order. Variables are
// branched on in the order given; variables never named here follow in
// creation order.
func (m *Model) AddDecisionStrategy(vars ...IntVar) {
	if !m.checkVars("decision strategy", vars...) {
		return
	}
	for _, v := range vars {
		m.strategy = append(m.strategy, v.index)
	}
}

// AddHint sets the value tried first when branching on v. Values are then
// tried outward from the hint.
func (m *Model) AddHint(v IntVar, value int64) {
	if !m.checkVars("hint", v) {
		return
	}
	m.hints[v.index] = value
}

// ClearHints removes every hint.
func (m *Model) ClearHints() {
	m.hints = make(map[int]int64)
}

// SetObjectiveBound installs a problem-specific lower bound used to prune
// nodes once an incumbent exists.
func (m *Model) SetObjectiveBound(fn BoundFunc) {
	m.bound = fn
}

// Validate checks the model for empty domains, foreign variables and
// expressions whose magnitude could overflow int64 during propagation.
func (m *Model) Validate() error {
	errs := append([]error(nil), m.errs...)

	for i, d := range m.domains {
		if d.Empty() {
			errs = append(errs, fmt.Errorf("variable %s has empty domain [%d, %d]", m.names[i], d.Min, d.Max))
			continue
		}
		if abs(d.Min) > MaxMagnitude || abs(d.Max) > MaxMagnitude {
			errs = append(errs, fmt.Errorf("variable %s domain [%d, %d] exceeds magnitude %d", m.names[i], d.Min, d.Max, MaxMagnitude))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i, c := range m.linear {
		if (c.hasLo && abs(c.lo) > MaxMagnitude) || (c.hasHi && abs(c.hi) > MaxMagnitude) {
			errs = append(errs, fmt.Errorf("linear constraint %d: bound exceeds magnitude %d", i, MaxMagnitude))
		}
		if !m.activityFits(c.terms) {
			errs = append(errs, fmt.Errorf("linear constraint %d: activity may overflow", i))
		}
	}
	for i, p := range m.products {
		if !mulFits(m.domains[p.x].maxAbs(), m.domains[p.y].maxAbs(), maxActivity) {
			errs = append(errs, fmt.Errorf("multiplication constraint %d: product may overflow", i))
		}
	}
	if m.minimize && !m.activityFits(m.objective) {
		errs = append(errs, errors.New("objective may overflow"))
	}

	return errors.Join(errs...)
}

func (m *Model) activityFits(terms []term) bool {
	var total int64
	for _, t := range terms {
		a := abs(t.c)
		if a > MaxMagnitude {
			return false
		}
		if !mulFits(a, m.domains[t.v].maxAbs(), maxActivity) {
			return false
		}
		total += a * m.domains[t.v].maxAbs()
		if total > maxActivity {
			return false
		}
	}
	return true
}

func (m *Model) addLinear(terms []Term, lo, hi int64, hasLo, hasHi bool) {
	ts, ok := m.convert("linear constraint", terms)
	if !ok {
		return
	}
	m.linear = append(m.linear, linearSpec{terms: ts, lo: lo, hi: hi, hasLo: hasLo, hasHi: hasHi})
}

// convert merges duplicate variables and drops zero coefficients.
func (m *Model) convert(what string, terms []Term) ([]term, bool) {
	out := make([]term, 0, len(terms))
	pos := make(map[int]int, len(terms))
	for _, t := range terms {
		if !m.checkVars(what, t.Var) {
			return nil, false
		}
		if i, seen := pos[t.Var.index]; seen {
			out[i].c += t.Coef
			continue
		}
		pos[t.Var.index] = len(out)
		out = append(out, term{v: t.Var.index, c: t.Coef})
	}

	kept := out[:0]
	for _, t := range out {
		if t.c != 0 {
			kept = append(kept, t)
		}
	}
	return kept, true
}

func (m *Model) owns(v IntVar) bool {
	return v.model == m && v.index >= 0 && v.index < len(m.domains)
}

func (m *Model) checkVars(what string, vars ...IntVar) bool {
	for _, v := range vars {
		if !m.owns(v) {
			m.errs = append(m.errs, fmt.Errorf("%s references a variable of another model", what))
			return false
		}
	}
	return true
}
