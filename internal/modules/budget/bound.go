package budget

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/aristath/budgetopt/pkg/cp"
)

const (
	// multiplierLimit clamps the Lagrange multipliers so every dual term
	// stays well inside int64.
	multiplierLimit = 1e11
	// infeasibleBound is returned for domains that hold no lattice value.
	infeasibleBound int64 = math.MaxInt64 / 2
	// dualEvaluations caps the Nelder-Mead function evaluations per model.
	dualEvaluations = 4000
)

// span is an inclusive range of step multiples.
type span struct {
	lo, hi int64
}

// dualBound is the Lagrangian relaxation of the two sum equalities:
//
//	L(λ, μ) = Σ_c min_x [w_c·(x − cur_c)² + a_c·x] − μ·income
//
// with a_c = λ for the needs lines, μ − λ for total_needs, μ for total_wants
// and savings, and 0 for investment. Each minimum runs over the multiples of
// the category step inside its current domain, so L is a valid lower bound on
// the loss for any multipliers.
type dualBound struct {
	income    int64
	weights   [numCategories]int64
	current   [numCategories]int64
	steps     [numCategories]int64
	effective [numCategories]cp.IntVar

	lambda, mu int64
	root       int64
	hints      [numCategories]int64
}

func newDualBound(m *Model) *dualBound {
	b := &dualBound{
		income:    m.current.Income,
		effective: m.effective,
	}
	for i, c := range categoryOrder {
		b.weights[i] = m.weights.Get(c)
		b.current[i] = m.current.Get(c)
		b.steps[i] = c.StepFactor()
	}

	spans, ok := b.rootSpans(m.limits)
	if !ok {
		b.root = infeasibleBound
		return b
	}
	b.tune(spans)
	b.root = b.exact(b.lambda, b.mu, spans)
	for i := range spans {
		x := b.argmin(i, b.coefficient(i, b.lambda, b.mu), spans[i])
		b.hints[i] = x / b.steps[i]
	}
	return b
}

// Bound evaluates the tuned dual function on the current search domains.
func (b *dualBound) Bound(v cp.View) int64 {
	var spans [numCategories]span
	for i := range spans {
		d := v.Domain(b.effective[i])
		s, ok := b.lattice(i, d.Min, d.Max)
		if !ok {
			return infeasibleBound
		}
		spans[i] = s
	}
	return b.exact(b.lambda, b.mu, spans)
}

// Hints returns the unit value of each category at the dual minimizer.
func (b *dualBound) Hints() [numCategories]int64 {
	return b.hints
}

// rootSpans are the effective domains implied before search by the
// deviation range, the income and the three limits.
func (b *dualBound) rootSpans(limits Limits) ([numCategories]span, bool) {
	var spans [numCategories]span
	for i, c := range categoryOrder {
		lo := max(0, b.current[i]-b.income)
		hi := min(b.income, b.current[i]+b.income)
		switch c {
		case Savings:
			lo = max(lo, limits.SavingsFloor)
		case TotalNeeds:
			hi = min(hi, limits.NeedsCeiling)
		case TotalWants:
			hi = min(hi, limits.WantsCeiling)
		}
		s, ok := b.lattice(i, lo, hi)
		if !ok {
			return spans, false
		}
		spans[i] = s
	}
	return spans, true
}

func (b *dualBound) lattice(i int, lo, hi int64) (span, bool) {
	step := b.steps[i]
	s := span{lo: ceilDiv(lo, step) * step, hi: floorDiv(hi, step) * step}
	return s, s.lo <= s.hi
}

func (b *dualBound) coefficient(i int, lambda, mu int64) int64 {
	switch categoryOrder[i] {
	case Transport, Food, Housing, Insurance, OtherNeeds:
		return lambda
	case TotalNeeds:
		return mu - lambda
	case TotalWants, Savings:
		return mu
	default:
		return 0
	}
}

// argmin returns the lattice point of s minimizing w·(x − cur)² + a·x. The
// function is convex, so the minimum sits next to the continuous minimizer;
// probing two points on each side absorbs floating point error.
func (b *dualBound) argmin(i int, a int64, s span) int64 {
	step := b.steps[i]
	w := b.weights[i]
	center := float64(b.current[i]) - float64(a)/(2*float64(w))
	k0 := int64(math.Floor(center / float64(step)))
	k0 = min(max(k0, s.lo/step-2), s.hi/step+2)

	best, bestVal := s.lo, int64(math.MaxInt64)
	for k := k0 - 1; k <= k0+2; k++ {
		x := min(max(k*step, s.lo), s.hi)
		dev := x - b.current[i]
		val := w*dev*dev + a*x
		if val < bestVal {
			best, bestVal = x, val
		}
	}
	return best
}

func (b *dualBound) exact(lambda, mu int64, spans [numCategories]span) int64 {
	total := -mu * b.income
	for i := range spans {
		a := b.coefficient(i, lambda, mu)
		x := b.argmin(i, a, spans[i])
		dev := x - b.current[i]
		total += b.weights[i]*dev*dev + a*x
	}
	return total
}

// tune maximizes the dual over (λ, μ) with Nelder-Mead on the negated
// function, then keeps whichever of the rounded optimum and the origin
// gives the higher exact bound.
func (b *dualBound) tune(spans [numCategories]span) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			lambda, mu := clampMultiplier(x[0]), clampMultiplier(x[1])
			return -float64(b.exact(lambda, mu, spans))
		},
	}

	simplex := float64(b.maxStep()) * float64(b.maxWeight())
	result, err := optimize.Minimize(problem, []float64{0, 0}, &optimize.Settings{
		FuncEvaluations: dualEvaluations,
	}, &optimize.NelderMead{SimplexSize: simplex})

	b.lambda, b.mu = 0, 0
	if err != nil || result == nil {
		return
	}
	lambda, mu := clampMultiplier(result.X[0]), clampMultiplier(result.X[1])
	if b.exact(lambda, mu, spans) > b.exact(0, 0, spans) {
		b.lambda, b.mu = lambda, mu
	}
}

func (b *dualBound) maxStep() int64 {
	var m int64
	for _, s := range b.steps {
		m = max(m, s)
	}
	return m
}

func (b *dualBound) maxWeight() int64 {
	var m int64 = 1
	for _, w := range b.weights {
		m = max(m, w)
	}
	return m
}

func clampMultiplier(x float64) int64 {
	if math.IsNaN(x) {
		return 0
	}
	return int64(math.Round(math.Max(-multiplierLimit, math.Min(multiplierLimit, x))))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
