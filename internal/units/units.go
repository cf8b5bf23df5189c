// Package units converts material temperatures and densities between the
// units used by transport codes.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnsupportedUnit is returned for unit names outside the recognised set.
	ErrUnsupportedUnit = errors.New("unsupported unit")
	// ErrInvalidComposition is returned when a composition-dependent
	// conversion has no usable average atomic mass.
	ErrInvalidComposition = errors.New("invalid composition")
)

const (
	// BoltzmannMeVPerK is k_B in MeV/K (CODATA 2018).
	BoltzmannMeVPerK = 8.617333262e-11
	// AvogadroPerBarnCm is N_A scaled by 1e-24 cm2/barn, turning
	// g/cm3 divided by g/mol into atoms/barn-cm.
	AvogadroPerBarnCm = 0.602214076
)

// TemperatureUnit names a temperature unit.
type TemperatureUnit string

const (
	Kelvin TemperatureUnit = "K"
	MeV    TemperatureUnit = "MeV"
)

// DensityUnit names a density unit.
type DensityUnit string

const (
	GramsPerCm3    DensityUnit = "g/cm3"
	AtomsPerBarnCm DensityUnit = "atoms/barn-cm"
)

// ParseTemperatureUnit accepts "K", "kelvin" and "MeV", ignoring case.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "k", "kelvin":
		return Kelvin, nil
	case "mev":
		return MeV, nil
	}
	return "", fmt.Errorf("%w: temperature unit %q", ErrUnsupportedUnit, s)
}

// ParseDensityUnit accepts "g/cm3", "g/cc", "atoms/barn-cm" and
// "atoms/b-cm", ignoring case.
func ParseDensityUnit(s string) (DensityUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g/cm3", "g/cc", "g/cm^3":
		return GramsPerCm3, nil
	case "atoms/barn-cm", "atoms/b-cm", "atom/b-cm":
		return AtomsPerBarnCm, nil
	}
	return "", fmt.Errorf("%w: density unit %q", ErrUnsupportedUnit, s)
}

func (u TemperatureUnit) valid() bool { return u == Kelvin || u == MeV }

func (u DensityUnit) valid() bool { return u == GramsPerCm3 || u == AtomsPerBarnCm }

// Temperature converts value between K and MeV with E = k_B * T. Equal
// units return value untouched.
func Temperature(value float64, from, to TemperatureUnit) (float64, error) {
	if !from.valid() {
		return 0, fmt.Errorf("%w: temperature unit %q", ErrUnsupportedUnit, string(from))
	}
	if !to.valid() {
		return 0, fmt.Errorf("%w: temperature unit %q", ErrUnsupportedUnit, string(to))
	}
	if from == to {
		return value, nil
	}
	if from == Kelvin {
		return value * BoltzmannMeVPerK, nil
	}
	return value / BoltzmannMeVPerK, nil
}

// Density converts value between g/cm3 and atoms/barn-cm. The conversion
// depends on the composition through averageAtomicMass (g/mol), which is
// ignored when the units are equal.
func Density(value float64, from, to DensityUnit, averageAtomicMass float64) (float64, error) {
	if !from.valid() {
		return 0, fmt.Errorf("%w: density unit %q", ErrUnsupportedUnit, string(from))
	}
	if !to.valid() {
		return 0, fmt.Errorf("%w: density unit %q", ErrUnsupportedUnit, string(to))
	}
	if from == to {
		return value, nil
	}
	if math.IsNaN(averageAtomicMass) || math.IsInf(averageAtomicMass, 0) || averageAtomicMass <= 0 {
		return 0, fmt.Errorf("%w: average atomic mass %v", ErrInvalidComposition, averageAtomicMass)
	}
	if from == GramsPerCm3 {
		return value * AvogadroPerBarnCm / averageAtomicMass, nil
	}
	return value * averageAtomicMass / AvogadroPerBarnCm, nil
}
