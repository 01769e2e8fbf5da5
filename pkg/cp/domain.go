package cp

import "math"

// MaxMagnitude bounds every variable domain and constraint constant. Keeping
// values below 2^60 leaves headroom for the sums the propagators compute.
const MaxMagnitude int64 = 1 << 60

// maxActivity bounds the absolute value of any linear expression a model may
// build, so that partial sums never overflow int64.
const maxActivity int64 = 1 << 62

// Domain is a closed integer interval [Min, Max].
type Domain struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Fixed reports whether the domain holds exactly one value.
func (d Domain) Fixed() bool {
	return d.Min == d.Max
}

// Empty reports whether the domain holds no value.
func (d Domain) Empty() bool {
	return d.Min > d.Max
}

// Contains reports whether v lies in the domain.
func (d Domain) Contains(v int64) bool {
	return v >= d.Min && v <= d.Max
}

// Clamp returns the value of the domain closest to v.
func (d Domain) Clamp(v int64) int64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

func (d Domain) maxAbs() int64 {
	return max(abs(d.Min), abs(d.Max))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// floorDiv returns floor(a / b) for b != 0.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ceilDiv returns ceil(a / b) for b != 0.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

func gcd(a, b int64) int64 {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// mulFits reports whether a*b fits under limit in absolute value. Both
// arguments must be non-negative.
func mulFits(a, b, limit int64) bool {
	if a == 0 || b == 0 {
		return true
	}
	return a <= limit/b
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// ceilSqrt returns ceil(sqrt(n)) for n >= 0.
func ceilSqrt(n int64) int64 {
	r := isqrt(n)
	if r*r < n {
		r++
	}
	return r
}
