package material

import (
	"fmt"
	"math"

	"kika/internal/composition"
	"kika/internal/nuclide"
	"kika/internal/units"
)

// AverageAtomicMass estimates the mean molar mass (g/mol) of the
// composition from nuclide.ApproximateMass. Atomic fractions give the
// arithmetic mean, weight fractions the harmonic mean. Isotopes enter with
// their mass number and natural elements with their abundance-weighted mass
// number, so the result approximates the true molar mass.
func (m *Material) AverageAtomicMass() (float64, error) {
	var weights, weighted float64
	kind := m.FractionType()
	for _, n := range m.nuclides {
		f := math.Abs(n.Fraction)
		mass := nuclide.ApproximateMass(n.ID)
		weights += f
		if kind == composition.Weight {
			weighted += f / mass
		} else {
			weighted += f * mass
		}
	}
	if weights == 0 || weighted == 0 {
		return 0, fmt.Errorf("%w: no non-zero fractions", units.ErrInvalidComposition)
	}
	if kind == composition.Weight {
		return weights / weighted, nil
	}
	return weighted / weights, nil
}

// SetDensity stores a density in the given unit.
func (m *Material) SetDensity(value float64, unit units.DensityUnit) error {
	if _, err := units.Density(0, unit, unit, 0); err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fmt.Errorf("%w: %v %s", ErrInvalidDensity, value, unit)
	}
	m.Density = &value
	m.DensityUnit = unit
	return nil
}

// ClearDensity removes the stored density, keeping the unit.
func (m *Material) ClearDensity() {
	m.Density = nil
}

// SetTemperature stores a temperature in the given unit. Both recognised
// units are absolute scales, so any negative value is rejected.
func (m *Material) SetTemperature(value float64, unit units.TemperatureUnit) error {
	if _, err := units.Temperature(0, unit, unit); err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %v %s", ErrInvalidTemperature, value, unit)
	}
	m.Temperature = &value
	m.TemperatureUnit = unit
	return nil
}

// ClearTemperature removes the stored temperature, keeping the unit.
func (m *Material) ClearTemperature() {
	m.Temperature = nil
}

// ConvertDensity re-expresses the stored density in unit to. A material
// without a density only has its unit switched.
func (m *Material) ConvertDensity(to units.DensityUnit) error {
	if m.Density == nil {
		if _, err := units.Density(0, to, to, 0); err != nil {
			return err
		}
		m.DensityUnit = to
		return nil
	}
	if m.DensityUnit == to {
		_, err := units.Density(*m.Density, to, to, 0)
		return err
	}

	mass, err := m.AverageAtomicMass()
	if err != nil {
		return err
	}
	converted, err := units.Density(*m.Density, m.DensityUnit, to, mass)
	if err != nil {
		return err
	}
	m.Density = &converted
	m.DensityUnit = to
	return nil
}

// ConvertTemperature re-expresses the stored temperature in unit to.
func (m *Material) ConvertTemperature(to units.TemperatureUnit) error {
	if m.Temperature == nil {
		if _, err := units.Temperature(0, to, to); err != nil {
			return err
		}
		m.TemperatureUnit = to
		return nil
	}
	converted, err := units.Temperature(*m.Temperature, m.TemperatureUnit, to)
	if err != nil {
		return err
	}
	m.Temperature = &converted
	m.TemperatureUnit = to
	return nil
}

// ToWeightFractions converts atomic fractions a_i into weight fractions
// a_i*M_i / sum(a_j*M_j), stored negative. Weight and empty compositions
// are left alone.
func (m *Material) ToWeightFractions() error {
	if m.FractionType() != composition.Atomic {
		return nil
	}
	var total float64
	for _, n := range m.nuclides {
		total += n.Fraction * nuclide.ApproximateMass(n.ID)
	}
	if total == 0 {
		return fmt.Errorf("%w: atomic fractions sum to zero", units.ErrInvalidComposition)
	}
	for i, n := range m.nuclides {
		w := n.Fraction * nuclide.ApproximateMass(n.ID) / total
		if w != 0 {
			w = -w
		}
		m.nuclides[i].Fraction = w
	}
	return nil
}

// ToAtomicFractions converts weight fractions w_i into atomic fractions
// (w_i/M_i) / sum(w_j/M_j), stored positive. Atomic and empty compositions
// are left alone.
func (m *Material) ToAtomicFractions() error {
	if m.FractionType() != composition.Weight {
		return nil
	}
	var total float64
	for _, n := range m.nuclides {
		total += math.Abs(n.Fraction) / nuclide.ApproximateMass(n.ID)
	}
	if total == 0 {
		return fmt.Errorf("%w: weight fractions sum to zero", units.ErrInvalidComposition)
	}
	for i, n := range m.nuclides {
		m.nuclides[i].Fraction = math.Abs(n.Fraction) / nuclide.ApproximateMass(n.ID) / total
	}
	return nil
}

// ConvertFractions switches the composition to the requested type.
func (m *Material) ConvertFractions(to composition.FractionType) error {
	switch to {
	case composition.Weight:
		return m.ToWeightFractions()
	case composition.Atomic:
		return m.ToAtomicFractions()
	}
	return fmt.Errorf("%w: %q", ErrInvalidFractionType, string(to))
}
