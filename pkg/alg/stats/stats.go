// Package stats provides the statistical reductions used by the aggregate
// tables: medians, weighted medians, and significant-digit rounding.
package stats

import (
	"cmp"
	"slices"
)

// Median returns the middle value of values, averaging the two middle values
// for an even count. The input is not modified. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Weighted is a value carrying a non-negative weight.
type Weighted struct {
	Value  float64
	Weight float64
}

// WeightedMedian orders samples by descending value and returns the value of
// the first sample at which the cumulative weight reaches half of the total.
// Returns 0 when there are no samples or the total weight is not positive.
func WeightedMedian(samples []Weighted) float64 {
	var total float64

	for _, s := range samples {
		total += s.Weight
	}

	if total <= 0 {
		return 0
	}

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Weighted) int {
		return cmp.Compare(b.Value, a.Value)
	})

	half := total / 2

	var acc float64

	for _, s := range sorted {
		acc += s.Weight
		if acc >= half {
			return s.Value
		}
	}

	return sorted[len(sorted)-1].Value
}

// RoundSignificant rounds v to one significant decimal digit,
// e.g. 1234 → 1000, 87 → 90, 95 → 100. Zero stays zero.
func RoundSignificant(v int64) int64 {
	if v == 0 {
		return 0
	}

	sign := int64(1)
	if v < 0 {
		sign = -1
		v = -v
	}

	scale := int64(1)
	for v/scale >= 10 {
		scale *= 10
	}

	digit := (v + scale/2) / scale

	return sign * digit * scale
}

// Min returns the smallest element in values.
// Returns the zero value of T for an empty slice.
func Min[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Min(values)
}

// Max returns the largest element in values.
// Returns the zero value of T for an empty slice.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Max(values)
}

// Ratio returns num/den and false when den is zero.
func Ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}

	return num / den, true
}
