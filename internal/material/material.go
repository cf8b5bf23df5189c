// Package material holds a material's nuclide composition and enforces the
// invariants that keep it usable by transport codes: unique nuclides,
// positive densities and physical temperatures.
//
// A Material is a plain value object. It performs no I/O and is not safe for
// concurrent mutation; callers serialize access to a single instance.
package material

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"kika/internal/composition"
	"kika/internal/nuclide"
	"kika/internal/units"
)

var (
	ErrDuplicateNuclide    = errors.New("nuclide already present in material")
	ErrNuclideNotFound     = errors.New("nuclide not found in material")
	ErrInvalidDensity      = errors.New("density must be positive")
	ErrInvalidTemperature  = errors.New("temperature below absolute zero")
	ErrInvalidFractionType = errors.New("fraction type must be atomic or weight")
	ErrNoNaturalAbundance  = errors.New("no natural isotopic composition for element")
)

// Libraries carries the optional cross-section library suffixes attached
// to a nuclide or, as defaults, to a whole material.
type Libraries struct {
	Neutron   string `json:"nlib,omitempty" yaml:"nlib,omitempty"`
	Photon    string `json:"plib,omitempty" yaml:"plib,omitempty"`
	Dosimetry string `json:"ylib,omitempty" yaml:"ylib,omitempty"`
}

// Empty reports whether no library is set.
func (l Libraries) Empty() bool {
	return l.Neutron == "" && l.Photon == "" && l.Dosimetry == ""
}

// Nuclide is one entry of a composition.
type Nuclide struct {
	ID        nuclide.ID
	Fraction  float64
	Libraries Libraries
}

// Material is the composition record.
type Material struct {
	ID              int
	Name            string
	Libraries       Libraries
	Density         *float64
	DensityUnit     units.DensityUnit
	Temperature     *float64
	TemperatureUnit units.TemperatureUnit

	nuclides []Nuclide
	index    map[nuclide.ID]int
}

// New returns an empty material.
func New(id int, name string) *Material {
	return &Material{
		ID:              id,
		Name:            name,
		DensityUnit:     units.GramsPerCm3,
		TemperatureUnit: units.Kelvin,
		index:           map[nuclide.ID]int{},
	}
}

// FromNuclides seeds a material from an existing entry list, rejecting
// malformed and repeated identifiers.
func FromNuclides(id int, name string, entries []Nuclide) (*Material, error) {
	m := New(id, name)
	for _, entry := range entries {
		if err := m.AddNuclide(entry.ID, entry.Fraction, entry.Libraries); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Nuclides returns a copy of the entries in insertion order.
func (m *Material) Nuclides() []Nuclide {
	out := make([]Nuclide, len(m.nuclides))
	copy(out, m.nuclides)
	return out
}

// Len returns the number of nuclides.
func (m *Material) Len() int {
	return len(m.nuclides)
}

// Nuclide looks up a single entry.
func (m *Material) Nuclide(id nuclide.ID) (Nuclide, bool) {
	i, ok := m.index[id]
	if !ok {
		return Nuclide{}, false
	}
	return m.nuclides[i], true
}

// AddNuclide appends an entry.
func (m *Material) AddNuclide(id nuclide.ID, fraction float64, libs Libraries) error {
	if err := nuclide.Validate(id); err != nil {
		return err
	}
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return fmt.Errorf("fraction for %s must be finite", nuclide.Display(id))
	}
	if m.index == nil {
		m.index = map[nuclide.ID]int{}
	}
	if _, exists := m.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNuclide, nuclide.Display(id))
	}
	m.index[id] = len(m.nuclides)
	m.nuclides = append(m.nuclides, Nuclide{ID: id, Fraction: fraction, Libraries: libs})
	return nil
}

// RemoveNuclide drops an entry. Removing an absent nuclide is a no-op.
func (m *Material) RemoveNuclide(id nuclide.ID) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.nuclides = append(m.nuclides[:i], m.nuclides[i+1:]...)
	m.reindex()
}

// SetFraction replaces the fraction of an existing entry.
func (m *Material) SetFraction(id nuclide.ID, fraction float64) error {
	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNuclideNotFound, nuclide.Display(id))
	}
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return fmt.Errorf("fraction for %s must be finite", nuclide.Display(id))
	}
	m.nuclides[i].Fraction = fraction
	return nil
}

// SetLibraries replaces the library tags of an existing entry.
func (m *Material) SetLibraries(id nuclide.ID, libs Libraries) error {
	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNuclideNotFound, nuclide.Display(id))
	}
	m.nuclides[i].Libraries = libs
	return nil
}

func (m *Material) reindex() {
	m.index = make(map[nuclide.ID]int, len(m.nuclides))
	for i, n := range m.nuclides {
		m.index[n.ID] = i
	}
}

func (m *Material) fractions() []composition.Fraction {
	out := make([]composition.Fraction, len(m.nuclides))
	for i, n := range m.nuclides {
		out[i] = composition.Fraction{ID: n.ID, Value: n.Fraction}
	}
	return out
}

// FractionType is "empty", "weight" when any fraction is negative, and
// "atomic" otherwise.
func (m *Material) FractionType() composition.FractionType {
	return composition.Kind(m.fractions())
}

// MixedSigns flags a composition that carries both positive and negative
// fractions. Such a set is classified as weight but is almost always an
// editing mistake.
func (m *Material) MixedSigns() bool {
	return composition.MixedSigns(m.fractions())
}

// Normalize rescales fractions in place so their absolute values sum to one.
func (m *Material) Normalize() {
	normalized := composition.Normalize(m.fractions())
	for i := range m.nuclides {
		m.nuclides[i].Fraction = normalized[i].Value
	}
}

// NaturalElements lists the natural-element identifiers in insertion order.
func (m *Material) NaturalElements() []nuclide.ID {
	var out []nuclide.ID
	for _, n := range m.nuclides {
		if n.ID.IsNatural() {
			out = append(out, n.ID)
		}
	}
	return out
}

// ExpandNaturalElements replaces natural-element entries with their
// naturally occurring isotopes. With no symbols every natural entry is
// expanded; otherwise only the named elements are, and names without a
// natural entry in the material are ignored. Atomic fractions split by
// abundance, weight fractions by abundance times mass number. Isotopes the
// material already lists are skipped and keep their own fraction. Each new
// isotope inherits the libraries of the element it came from.
//
// The material is left untouched when any element to expand has no
// tabulated composition.
func (m *Material) ExpandNaturalElements(symbols ...string) error {
	targets := map[nuclide.ID]struct{}{}
	if len(symbols) == 0 {
		for _, id := range m.NaturalElements() {
			targets[id] = struct{}{}
		}
	}
	for _, symbol := range symbols {
		z, ok := nuclide.AtomicNumber(symbol)
		if !ok {
			return fmt.Errorf("%w: unknown element %q", nuclide.ErrInvalidIdentifier, symbol)
		}
		id, err := nuclide.New(z, 0)
		if err != nil {
			return err
		}
		if _, present := m.index[id]; present {
			targets[id] = struct{}{}
		}
	}

	isotopes := make(map[nuclide.ID][]nuclide.Isotope, len(targets))
	for id := range targets {
		list, ok := nuclide.NaturalIsotopes(id.Z())
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoNaturalAbundance, nuclide.Display(id))
		}
		isotopes[id] = list
	}
	if len(isotopes) == 0 {
		return nil
	}

	weight := m.FractionType() == composition.Weight
	expanded := make([]Nuclide, 0, len(m.nuclides))
	for _, n := range m.nuclides {
		list, ok := isotopes[n.ID]
		if !ok {
			expanded = append(expanded, n)
			continue
		}
		var norm float64
		for _, iso := range list {
			if weight {
				norm += iso.Abundance * float64(iso.ID.A())
			} else {
				norm += iso.Abundance
			}
		}
		for _, iso := range list {
			if _, present := m.index[iso.ID]; present {
				continue
			}
			share := iso.Abundance / norm
			if weight {
				share *= float64(iso.ID.A())
			}
			expanded = append(expanded, Nuclide{ID: iso.ID, Fraction: n.Fraction * share, Libraries: n.Libraries})
		}
	}
	m.nuclides = expanded
	m.reindex()
	return nil
}

// NaturalElementCount counts natural-element entries.
func (m *Material) NaturalElementCount() int {
	return len(m.NaturalElements())
}

// UniqueElements returns the distinct atomic numbers in ascending order.
func (m *Material) UniqueElements() []int {
	seen := map[int]struct{}{}
	for _, n := range m.nuclides {
		seen[n.ID.Z()] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Ints(out)
	return out
}

// UniqueElementCount counts distinct atomic numbers.
func (m *Material) UniqueElementCount() int {
	return len(m.UniqueElements())
}

// Clone returns a deep copy.
func (m *Material) Clone() *Material {
	c := *m
	c.nuclides = m.Nuclides()
	if m.Density != nil {
		d := *m.Density
		c.Density = &d
	}
	if m.Temperature != nil {
		t := *m.Temperature
		c.Temperature = &t
	}
	c.reindex()
	return &c
}
