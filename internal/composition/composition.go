// Package composition rescales nuclide fraction sets and classifies them by
// the MCNP sign convention: negative fractions are weight fractions,
// non-negative ones are atomic fractions.
package composition

import (
	"math"

	"kika/internal/nuclide"
)

// FractionType classifies a fraction set.
type FractionType string

const (
	Empty  FractionType = "empty"
	Atomic FractionType = "atomic"
	Weight FractionType = "weight"
)

// Fraction pairs a nuclide with its signed fraction.
type Fraction struct {
	ID    nuclide.ID
	Value float64
}

// AbsoluteSum returns the sum of |Value| over fractions.
func AbsoluteSum(fractions []Fraction) float64 {
	var total float64
	for _, f := range fractions {
		total += math.Abs(f.Value)
	}
	return total
}

// Normalize returns a copy of fractions scaled so their absolute values sum
// to one. Signs and order are preserved. A set whose absolute sum is zero
// is returned unchanged.
func Normalize(fractions []Fraction) []Fraction {
	out := make([]Fraction, len(fractions))
	copy(out, fractions)

	total := AbsoluteSum(fractions)
	if total == 0 {
		return out
	}

	for i := range out {
		out[i].Value /= total
	}
	return out
}

// Kind derives the fraction type. Any negative value marks the whole set as
// weight fractions.
func Kind(fractions []Fraction) FractionType {
	if len(fractions) == 0 {
		return Empty
	}
	for _, f := range fractions {
		if f.Value < 0 {
			return Weight
		}
	}
	return Atomic
}

// MixedSigns reports whether the set contains both strictly positive and
// strictly negative values.
func MixedSigns(fractions []Fraction) bool {
	var positive, negative bool
	for _, f := range fractions {
		switch {
		case f.Value > 0:
			positive = true
		case f.Value < 0:
			negative = true
		}
	}
	return positive && negative
}
