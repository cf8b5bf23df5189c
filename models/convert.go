package models

import (
	"fmt"
	"sort"

	"kika/internal/material"
	"kika/internal/nuclide"
	"kika/internal/units"
)

// Aggregate rebuilds the in-memory composition from a persisted row. The
// stored nuclide order is restored from Position.
func (m Material) Aggregate() (*material.Material, error) {
	agg := material.New(m.MaterialID, m.Name)
	agg.Libraries = material.Libraries{Neutron: m.NLib, Photon: m.PLib, Dosimetry: m.YLib}

	rows := make([]MaterialNuclide, len(m.Nuclides))
	copy(rows, m.Nuclides)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	for _, row := range rows {
		libs := material.Libraries{Neutron: row.NLib, Photon: row.PLib, Dosimetry: row.YLib}
		if err := agg.AddNuclide(nuclide.ID(row.ZAID), row.Fraction, libs); err != nil {
			return nil, fmt.Errorf("material %d: %w", m.MaterialID, err)
		}
	}

	densityUnit, err := units.ParseDensityUnit(firstNonBlank(m.DensityUnit, string(units.GramsPerCm3)))
	if err != nil {
		return nil, fmt.Errorf("material %d: %w", m.MaterialID, err)
	}
	agg.DensityUnit = densityUnit
	if m.Density != nil {
		if err := agg.SetDensity(*m.Density, densityUnit); err != nil {
			return nil, fmt.Errorf("material %d: %w", m.MaterialID, err)
		}
	}

	temperatureUnit, err := units.ParseTemperatureUnit(firstNonBlank(m.TemperatureUnit, string(units.Kelvin)))
	if err != nil {
		return nil, fmt.Errorf("material %d: %w", m.MaterialID, err)
	}
	agg.TemperatureUnit = temperatureUnit
	if m.Temperature != nil {
		if err := agg.SetTemperature(*m.Temperature, temperatureUnit); err != nil {
			return nil, fmt.Errorf("material %d: %w", m.MaterialID, err)
		}
	}

	return agg, nil
}

// Apply copies the aggregate state onto the row, replacing its nuclides.
// The row keeps its primary key so callers can persist it as an update.
func (m *Material) Apply(agg *material.Material) {
	m.MaterialID = agg.ID
	m.Name = agg.Name
	m.Density = agg.Density
	m.DensityUnit = string(agg.DensityUnit)
	m.Temperature = agg.Temperature
	m.TemperatureUnit = string(agg.TemperatureUnit)
	m.NLib = agg.Libraries.Neutron
	m.PLib = agg.Libraries.Photon
	m.YLib = agg.Libraries.Dosimetry

	entries := agg.Nuclides()
	m.Nuclides = make([]MaterialNuclide, 0, len(entries))
	for i, n := range entries {
		m.Nuclides = append(m.Nuclides, MaterialNuclide{
			MaterialRecordID: m.ID,
			ZAID:             int(n.ID),
			Fraction:         n.Fraction,
			Position:         i,
			NLib:             n.Libraries.Neutron,
			PLib:             n.Libraries.Photon,
			YLib:             n.Libraries.Dosimetry,
		})
	}
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
