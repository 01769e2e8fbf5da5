package cp

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// limitCheckInterval is how many nodes pass between clock and context checks.
	limitCheckInterval = 256
	// maxMultiple caps the inferred lattice step of a variable.
	maxMultiple int64 = 1 << 30
)

type search struct {
	ctx      context.Context
	params   Params
	log      zerolog.Logger
	deadline time.Time

	model     *Model
	props     []propagator
	cut       *linearProp
	objective []term
	bound     BoundFunc
	mult      []int64
	order     []int
	hints     map[int]int64

	best      []int64
	bestObj   int64
	found     bool
	rootBound int64

	stats    Stats
	stopped  bool
	limitHit bool
}

func newSearch(ctx context.Context, params Params, m *Model, start time.Time) *search {
	s := &search{
		ctx:       ctx,
		params:    params,
		log:       zerolog.Nop(),
		model:     m,
		objective: m.objective,
		bound:     m.bound,
		hints:     m.hints,
	}
	if params.LogSearch {
		s.log = params.Logger
	}
	if params.TimeLimit > 0 {
		s.deadline = start.Add(params.TimeLimit)
	}

	for _, c := range m.linear {
		s.props = append(s.props, &linearProp{terms: c.terms, lo: c.lo, hi: c.hi, hasLo: c.hasLo, hasHi: c.hasHi})
	}
	for _, p := range m.products {
		s.props = append(s.props, &productProp{z: p.z, x: p.x, y: p.y})
	}
	if m.minimize {
		s.cut = &linearProp{terms: m.objective}
		s.props = append(s.props, s.cut)
	}

	s.mult = inferMultiples(m)
	s.order = branchOrder(m)
	return s
}

// inferMultiples finds variables defined as x == k·y by a two-term equality
// with a unit coefficient on x. Such x can only take multiples of k.
func inferMultiples(m *Model) []int64 {
	mult := make([]int64, len(m.domains))
	for i := range mult {
		mult[i] = 1
	}
	for _, c := range m.linear {
		if len(c.terms) != 2 || !c.hasLo || !c.hasHi || c.lo != 0 || c.hi != 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			x, y := c.terms[i], c.terms[1-i]
			if abs(x.c) != 1 {
				continue
			}
			k := abs(y.c)
			l := mult[x.v] / gcd(mult[x.v], k)
			if mulFits(l, k, maxMultiple) {
				mult[x.v] = l * k
			}
		}
	}
	return mult
}

func branchOrder(m *Model) []int {
	seen := make([]bool, len(m.domains))
	order := make([]int, 0, len(m.domains))
	for _, v := range m.strategy {
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
	}
	for v := range m.domains {
		if !seen[v] {
			order = append(order, v)
		}
	}
	return order
}

func (s *search) run() {
	root := make([]Domain, len(s.model.domains))
	copy(root, s.model.domains)
	for v := range root {
		if _, ok := tighten(root, s.mult, v, root[v].Min, root[v].Max); !ok {
			s.stats.StopReason = "empty lattice"
			return
		}
	}

	trial := make([]Domain, len(root))
	copy(trial, root)
	if !s.propagate(trial) {
		s.stats.StopReason = "root propagation failed"
		return
	}
	s.rootBound = s.lowerBound(trial)

	s.dfs(root)
}

func (s *search) dfs(d []Domain) {
	if s.checkLimits() {
		return
	}
	s.stats.Nodes++

	if !s.propagate(d) || s.prune(d) {
		s.stats.Failures++
		return
	}

	v := s.nextVar(d)
	if v < 0 {
		s.record(d)
		return
	}
	s.branch(d, v)
}

// branch tries the values of v outward from its pivot. After each new
// incumbent the node is propagated again so the remaining values see the
// tighter objective cut.
func (s *search) branch(d []Domain, v int) {
	step := s.mult[v]
	pivot := s.pivot(v, d[v])
	solutions := s.stats.Solutions

	try := func(val int64) bool {
		if !d[v].Contains(val) {
			return true
		}
		child := make([]Domain, len(d))
		copy(child, d)
		child[v] = Domain{Min: val, Max: val}
		s.dfs(child)
		if s.stopped {
			return false
		}
		if s.stats.Solutions != solutions {
			solutions = s.stats.Solutions
			if !s.propagate(d) || s.prune(d) {
				return false
			}
		}
		return true
	}

	for k := int64(0); ; k++ {
		up, down := pivot+k*step, pivot-k*step
		if up > d[v].Max && down < d[v].Min {
			return
		}
		if !try(up) {
			return
		}
		if k > 0 && !try(down) {
			return
		}
	}
}

// pivot is the lattice value of v closest to its hint, or the lower bound
// when v has no hint.
func (s *search) pivot(v int, dom Domain) int64 {
	hint, ok := s.hints[v]
	if !ok {
		return dom.Min
	}
	h := dom.Clamp(hint)
	m := s.mult[v]
	if m <= 1 {
		return h
	}
	below := floorDiv(h, m) * m
	above := below + m
	if below < dom.Min {
		return above
	}
	if above > dom.Max || h-below <= above-h {
		return below
	}
	return above
}

func (s *search) nextVar(d []Domain) int {
	for _, v := range s.order {
		if !d[v].Fixed() {
			return v
		}
	}
	return -1
}

func (s *search) propagate(d []Domain) bool {
	for {
		changed := false
		for _, p := range s.props {
			ch, ok := p.propagate(d, s.mult)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if !changed {
			return true
		}
	}
}

// prune reports whether the custom bound proves the node cannot beat the
// incumbent.
func (s *search) prune(d []Domain) bool {
	if !s.found || s.bound == nil || s.cut == nil {
		return false
	}
	return s.bound(View{domains: d}) >= s.bestObj
}

func (s *search) lowerBound(d []Domain) int64 {
	if s.cut == nil {
		return 0
	}
	var lb int64
	for _, t := range s.objective {
		lo, _ := termRange(d[t.v], t.c)
		lb += lo
	}
	if s.bound != nil {
		lb = max(lb, s.bound(View{domains: d}))
	}
	return lb
}

func (s *search) record(d []Domain) {
	var obj int64
	for _, t := range s.objective {
		obj += t.c * d[t.v].Min
	}
	if s.found && obj >= s.bestObj {
		return
	}

	s.best = make([]int64, len(d))
	for i, dom := range d {
		s.best[i] = dom.Min
	}
	s.bestObj = obj
	s.found = true
	s.stats.Solutions++

	s.log.Debug().
		Int64("objective", obj).
		Int64("nodes", s.stats.Nodes).
		Msg("New incumbent")

	if s.cut == nil {
		s.stopped = true
		return
	}
	s.cut.hasHi = true
	s.cut.hi = obj - 1
}

func (s *search) checkLimits() bool {
	if s.stopped {
		return true
	}
	if s.params.MaxNodes > 0 && s.stats.Nodes >= s.params.MaxNodes {
		s.stop("node limit")
		return true
	}
	if s.stats.Nodes%limitCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.stop("context: " + err.Error())
			return true
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			s.stop("time limit")
			return true
		}
	}
	return false
}

func (s *search) stop(reason string) {
	s.stopped = true
	s.limitHit = true
	s.stats.StopReason = reason
}
