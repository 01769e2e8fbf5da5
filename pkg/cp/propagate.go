package cp

// propagator narrows domains in place. It returns ok=false when it proves the
// current domains hold no solution.
type propagator interface {
	propagate(d []Domain, mult []int64) (changed, ok bool)
}

// tighten intersects the domain of v with [lo, hi] and rounds the bounds onto
// the multiples of mult[v].
func tighten(d []Domain, mult []int64, v int, lo, hi int64) (changed, ok bool) {
	cur := d[v]
	lo = max(lo, cur.Min)
	hi = min(hi, cur.Max)
	if m := mult[v]; m > 1 {
		lo = ceilDiv(lo, m) * m
		hi = floorDiv(hi, m) * m
	}
	if lo > hi {
		return false, false
	}
	if lo == cur.Min && hi == cur.Max {
		return false, true
	}
	d[v] = Domain{Min: lo, Max: hi}
	return true, true
}

func termRange(d Domain, c int64) (int64, int64) {
	if c >= 0 {
		return c * d.Min, c * d.Max
	}
	return c * d.Max, c * d.Min
}

type linearProp struct {
	terms  []term
	lo, hi int64
	hasLo  bool
	hasHi  bool
}

func (c *linearProp) propagate(d []Domain, mult []int64) (bool, bool) {
	var minSum, maxSum int64
	for _, t := range c.terms {
		lo, hi := termRange(d[t.v], t.c)
		minSum += lo
		maxSum += hi
	}
	if c.hasHi && minSum > c.hi {
		return false, false
	}
	if c.hasLo && maxSum < c.lo {
		return false, false
	}
	if c.hasLo && c.hasHi && c.lo == c.hi && !c.divisible(d, mult) {
		return false, false
	}

	changed := false
	for _, t := range c.terms {
		dom := d[t.v]
		if dom.Fixed() {
			continue
		}
		tlo, thi := termRange(dom, t.c)
		newLo, newHi := dom.Min, dom.Max
		if c.hasHi {
			r := c.hi - (minSum - tlo)
			if t.c > 0 {
				newHi = min(newHi, floorDiv(r, t.c))
			} else {
				newLo = max(newLo, ceilDiv(r, t.c))
			}
		}
		if c.hasLo {
			q := c.lo - (maxSum - thi)
			if t.c > 0 {
				newLo = max(newLo, ceilDiv(q, t.c))
			} else {
				newHi = min(newHi, floorDiv(q, t.c))
			}
		}
		ch, ok := tighten(d, mult, t.v, newLo, newHi)
		if !ok {
			return false, false
		}
		changed = changed || ch
	}
	return changed, true
}

// divisible checks that the right-hand side of an equality, minus the fixed
// terms, is a multiple of the gcd of what the free terms can still produce.
func (c *linearProp) divisible(d []Domain, mult []int64) bool {
	rest := c.lo
	var g int64
	for _, t := range c.terms {
		dom := d[t.v]
		if dom.Fixed() {
			rest -= t.c * dom.Min
			continue
		}
		step := abs(t.c)
		if m := mult[t.v]; m > 1 && mulFits(step, m, MaxMagnitude) {
			step *= m
		}
		g = gcd(g, step)
	}
	if g == 0 {
		return rest == 0
	}
	return rest%g == 0
}

type productProp struct {
	z, x, y int
}

func (p *productProp) propagate(d []Domain, mult []int64) (bool, bool) {
	if p.x == p.y {
		return p.square(d, mult)
	}

	x, y := d[p.x], d[p.y]
	c1, c2, c3, c4 := x.Min*y.Min, x.Min*y.Max, x.Max*y.Min, x.Max*y.Max
	changed, ok := tighten(d, mult, p.z, min(c1, c2, c3, c4), max(c1, c2, c3, c4))
	if !ok {
		return false, false
	}

	z := d[p.z]
	if y := d[p.y]; y.Fixed() && y.Min != 0 {
		ch, ok := divideInto(d, mult, p.x, z, y.Min)
		if !ok {
			return false, false
		}
		changed = changed || ch
	}
	if x := d[p.x]; x.Fixed() && x.Min != 0 {
		ch, ok := divideInto(d, mult, p.y, z, x.Min)
		if !ok {
			return false, false
		}
		changed = changed || ch
	}
	return changed, true
}

// divideInto narrows v using z == v·k for a fixed non-zero k.
func divideInto(d []Domain, mult []int64, v int, z Domain, k int64) (bool, bool) {
	if k > 0 {
		return tighten(d, mult, v, ceilDiv(z.Min, k), floorDiv(z.Max, k))
	}
	return tighten(d, mult, v, ceilDiv(z.Max, k), floorDiv(z.Min, k))
}

func (p *productProp) square(d []Domain, mult []int64) (bool, bool) {
	x := d[p.x]
	var lo, hi int64
	switch {
	case x.Min >= 0:
		lo, hi = x.Min*x.Min, x.Max*x.Max
	case x.Max <= 0:
		lo, hi = x.Max*x.Max, x.Min*x.Min
	default:
		lo, hi = 0, max(x.Min*x.Min, x.Max*x.Max)
	}
	changed, ok := tighten(d, mult, p.z, lo, hi)
	if !ok {
		return false, false
	}

	z := d[p.z]
	x = d[p.x]
	r := isqrt(z.Max)
	newLo, newHi := max(x.Min, -r), min(x.Max, r)
	if z.Min > 0 {
		// |x| >= k: drop the open interval (-k, k).
		k := ceilSqrt(z.Min)
		if newLo > -k {
			newLo = max(newLo, k)
		}
		if newHi < k {
			newHi = min(newHi, -k)
		}
	}
	ch, ok := tighten(d, mult, p.x, newLo, newHi)
	if !ok {
		return false, false
	}
	return changed || ch, true
}
