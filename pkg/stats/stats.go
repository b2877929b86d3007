// Package stats provides the deterministic, side-effect-free statistics
// helpers shared by the trait calculators.
package stats

import "math"

const Epsilon = 1e-9

// Mean returns the arithmetic mean, 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, 0 for samples of size < 2.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// CoefficientOfVariation returns stddev/mean. A mean of (almost) zero makes
// the ratio undefined; ok is false in that case and the caller decides how to
// treat maximal variability.
func CoefficientOfVariation(values []float64) (cv float64, ok bool) {
	mean := Mean(values)
	if math.Abs(mean) < Epsilon {
		return 0, false
	}
	return StdDev(values) / mean, true
}

// Rate returns matching/total, 0 when total is 0.
func Rate(matching, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matching) / float64(total)
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// GreaterOrEqual compares with epsilon tolerance at the boundary.
func GreaterOrEqual(a, b float64) bool {
	return a > b || math.Abs(a-b) < Epsilon
}

// Case is one (predicate, transform) pair of a piecewise mapping.
type Case struct {
	When func(x float64) bool
	Then func(x float64) float64
}

// Piecewise evaluates the cases top to bottom and applies the first matching
// transform. The fallback is used when no case matches.
func Piecewise(x float64, cases []Case, fallback func(x float64) float64) float64 {
	for _, c := range cases {
		if c.When(x) {
			return c.Then(x)
		}
	}
	return fallback(x)
}
