package material

import (
	"fmt"
	"strings"

	"kika/internal/composition"
	"kika/internal/nuclide"
	"kika/internal/units"
)

// Info summarises a material for display.
type Info struct {
	MaterialID          int                      `json:"material_id"`
	Name                string                   `json:"name"`
	NuclideCount        int                      `json:"nuclide_count"`
	FractionType        composition.FractionType `json:"fraction_type"`
	MixedSigns          bool                     `json:"mixed_signs"`
	NaturalElementCount int                      `json:"natural_element_count"`
	NaturalElements     []nuclide.ID             `json:"natural_elements"`
	UniqueElements      []int                    `json:"unique_elements"`
	HasLibraries        bool                     `json:"has_libraries"`
	Density             *float64                 `json:"density,omitempty"`
	DensityUnit         units.DensityUnit        `json:"density_unit"`
	Temperature         *float64                 `json:"temperature,omitempty"`
	TemperatureUnit     units.TemperatureUnit    `json:"temperature_unit"`
	AverageAtomicMass   *float64                 `json:"average_atomic_mass,omitempty"`
}

// Info computes the current summary.
func (m *Material) Info() Info {
	natural := m.NaturalElements()
	if natural == nil {
		natural = []nuclide.ID{}
	}

	info := Info{
		MaterialID:          m.ID,
		Name:                m.Name,
		NuclideCount:        len(m.nuclides),
		FractionType:        m.FractionType(),
		MixedSigns:          m.MixedSigns(),
		NaturalElementCount: len(natural),
		NaturalElements:     natural,
		UniqueElements:      m.UniqueElements(),
		HasLibraries:        m.hasLibraries(),
		Density:             m.Density,
		DensityUnit:         m.DensityUnit,
		Temperature:         m.Temperature,
		TemperatureUnit:     m.TemperatureUnit,
	}
	if mass, err := m.AverageAtomicMass(); err == nil {
		info.AverageAtomicMass = &mass
	}
	return info
}

func (m *Material) hasLibraries() bool {
	if !m.Libraries.Empty() {
		return true
	}
	for _, n := range m.nuclides {
		if !n.Libraries.Empty() {
			return true
		}
	}
	return false
}

// MCNPCard renders the material as an MCNP material card. Nuclide lines
// use the neutron library suffix when one is set; material-level defaults
// go on the header as nlib/plib/ylib keywords.
func (m *Material) MCNPCard() string {
	var b strings.Builder
	if name := strings.TrimSpace(m.Name); name != "" {
		fmt.Fprintf(&b, "c %s\n", name)
	}
	if m.Density != nil {
		fmt.Fprintf(&b, "c density %.6g %s\n", *m.Density, m.DensityUnit)
	}

	fmt.Fprintf(&b, "m%d", m.ID)
	if m.Libraries.Neutron != "" {
		fmt.Fprintf(&b, " nlib=%s", m.Libraries.Neutron)
	}
	if m.Libraries.Photon != "" {
		fmt.Fprintf(&b, " plib=%s", m.Libraries.Photon)
	}
	if m.Libraries.Dosimetry != "" {
		fmt.Fprintf(&b, " ylib=%s", m.Libraries.Dosimetry)
	}
	b.WriteByte('\n')

	for _, n := range m.nuclides {
		zaid := fmt.Sprintf("%d", int(n.ID))
		if n.Libraries.Neutron != "" {
			zaid += "." + n.Libraries.Neutron
		}
		fmt.Fprintf(&b, "      %-12s %.6e\n", zaid, n.Fraction)
	}
	return b.String()
}
