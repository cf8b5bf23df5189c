// Package presets loads material definitions from YAML or JSON documents.
// The same document format backs the built-in preset library and the
// material files accepted by the kika CLI.
package presets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"kika/internal/material"
	"kika/internal/nuclide"
	"kika/internal/units"
)

//go:embed presets.yaml
var builtin []byte

// ErrUnknownPreset is returned by Library.Get for missing keys.
var ErrUnknownPreset = errors.New("unknown preset")

// Document is the top-level file layout.
type Document struct {
	Materials []Preset `yaml:"materials" json:"materials"`
}

// Preset describes one material.
type Preset struct {
	Key             string             `yaml:"key" json:"key"`
	Name            string             `yaml:"name" json:"name"`
	MaterialID      int                `yaml:"material_id" json:"material_id"`
	Density         *float64           `yaml:"density,omitempty" json:"density,omitempty"`
	DensityUnit     string             `yaml:"density_unit,omitempty" json:"density_unit,omitempty"`
	Temperature     *float64           `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	TemperatureUnit string             `yaml:"temperature_unit,omitempty" json:"temperature_unit,omitempty"`
	Libraries       material.Libraries `yaml:"libs,omitempty" json:"libs,omitempty"`
	Nuclides        []Entry            `yaml:"nuclides" json:"nuclides"`
}

// Entry is one nuclide line. Either ZAID or Nuclide ("U-235", "Fe") must
// be set.
type Entry struct {
	ZAID      int                `yaml:"zaid,omitempty" json:"zaid,omitempty"`
	Nuclide   string             `yaml:"nuclide,omitempty" json:"nuclide,omitempty"`
	Fraction  float64            `yaml:"fraction" json:"fraction"`
	Libraries material.Libraries `yaml:"libs,omitempty" json:"libs,omitempty"`
}

// Resolve returns the nuclide named by the entry. When both zaid and nuclide
// are given they must agree.
func (e Entry) Resolve() (nuclide.ID, error) {
	switch {
	case e.ZAID != 0 && strings.TrimSpace(e.Nuclide) != "":
		parsed, err := nuclide.Parse(e.Nuclide)
		if err != nil {
			return 0, err
		}
		if parsed != nuclide.ID(e.ZAID) {
			return 0, fmt.Errorf("%w: zaid %d disagrees with %q", nuclide.ErrInvalidIdentifier, e.ZAID, e.Nuclide)
		}
		return parsed, nil
	case e.ZAID != 0:
		id := nuclide.ID(e.ZAID)
		return id, nuclide.Validate(id)
	default:
		return nuclide.Parse(e.Nuclide)
	}
}

// Build validates the preset and returns a fresh aggregate.
func (p Preset) Build() (*material.Material, error) {
	if p.MaterialID <= 0 {
		return nil, fmt.Errorf("preset %q: material_id must be positive", p.Key)
	}

	m := material.New(p.MaterialID, strings.TrimSpace(p.Name))
	m.Libraries = p.Libraries

	for i, entry := range p.Nuclides {
		id, err := entry.Resolve()
		if err != nil {
			return nil, fmt.Errorf("preset %q nuclide %d: %w", p.Key, i+1, err)
		}
		if err := m.AddNuclide(id, entry.Fraction, entry.Libraries); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Key, err)
		}
	}

	if p.DensityUnit != "" {
		unit, err := units.ParseDensityUnit(p.DensityUnit)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Key, err)
		}
		m.DensityUnit = unit
	}
	if p.Density != nil {
		if err := m.SetDensity(*p.Density, m.DensityUnit); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Key, err)
		}
	}

	if p.TemperatureUnit != "" {
		unit, err := units.ParseTemperatureUnit(p.TemperatureUnit)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Key, err)
		}
		m.TemperatureUnit = unit
	}
	if p.Temperature != nil {
		if err := m.SetTemperature(*p.Temperature, m.TemperatureUnit); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Key, err)
		}
	}

	return m, nil
}

// FromMaterial is the inverse of Build. Nuclides are written by zaid.
func FromMaterial(key string, m *material.Material) Preset {
	p := Preset{
		Key:             key,
		Name:            m.Name,
		MaterialID:      m.ID,
		Density:         m.Density,
		DensityUnit:     string(m.DensityUnit),
		Temperature:     m.Temperature,
		TemperatureUnit: string(m.TemperatureUnit),
		Libraries:       m.Libraries,
	}
	for _, n := range m.Nuclides() {
		p.Nuclides = append(p.Nuclides, Entry{ZAID: int(n.ID), Fraction: n.Fraction, Libraries: n.Libraries})
	}
	return p
}

// Parse decodes a document. JSON is tried when the payload starts with '{',
// otherwise YAML.
func Parse(data []byte) (Document, error) {
	var doc Document
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}

// LoadFile reads a YAML or JSON document from disk.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Library is a keyed, read-only set of presets.
type Library struct {
	presets map[string]Preset
}

// NewLibrary indexes presets by key, rejecting blank and repeated keys and
// presets that fail to build.
func NewLibrary(presets ...Preset) (*Library, error) {
	lib := &Library{presets: make(map[string]Preset, len(presets))}
	for _, p := range presets {
		if err := lib.add(p); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (l *Library) add(p Preset) error {
	key := strings.ToLower(strings.TrimSpace(p.Key))
	if key == "" {
		return fmt.Errorf("preset %q: key must not be empty", p.Name)
	}
	if _, exists := l.presets[key]; exists {
		return fmt.Errorf("preset %q defined twice", key)
	}
	if _, err := p.Build(); err != nil {
		return err
	}
	p.Key = key
	l.presets[key] = p
	return nil
}

// Builtin returns the embedded preset library.
func Builtin() (*Library, error) {
	doc, err := Parse(builtin)
	if err != nil {
		return nil, fmt.Errorf("builtin presets: %w", err)
	}
	return NewLibrary(doc.Materials...)
}

// Load returns the builtin library extended with the presets in path.
// An empty path yields the builtin library alone.
func Load(path string) (*Library, error) {
	lib, err := Builtin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return lib, nil
	}
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Materials {
		if err := lib.add(p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return lib, nil
}

// Get returns the preset stored under key.
func (l *Library) Get(key string) (Preset, error) {
	p, ok := l.presets[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	return p, nil
}

// List returns presets sorted by material id, then key.
func (l *Library) List() []Preset {
	out := make([]Preset, 0, len(l.presets))
	for _, p := range l.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaterialID != out[j].MaterialID {
			return out[i].MaterialID < out[j].MaterialID
		}
		return out[i].Key < out[j].Key
	})
	return out
}
