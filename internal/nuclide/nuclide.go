// Package nuclide encodes and decodes nuclide identifiers in the ZZAAA
// convention used by MCNP and ACE libraries: Z*1000 + A, where A == 0
// denotes the natural element.
package nuclide

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned for identifiers whose (Z, A) pair cannot
// round-trip through the Z*1000 + A encoding.
var ErrInvalidIdentifier = errors.New("invalid nuclide identifier")

const (
	// MaxMassNumber is the largest A that fits the encoding without
	// corrupting Z.
	MaxMassNumber = 999
	zScale        = 1000

	// maxEncodableZ keeps Z*1000 + A inside int.
	maxEncodableZ = math.MaxInt/zScale - 1
)

// ID describes a nuclide in ZZAAA format.
type ID int

// New builds the identifier for atomic number z and mass number a.
func New(z, a int) (ID, error) {
	if z < 1 || z > maxEncodableZ {
		return 0, fmt.Errorf("%w: atomic number %d outside 1..%d", ErrInvalidIdentifier, z, maxEncodableZ)
	}
	if a < 0 || a > MaxMassNumber {
		return 0, fmt.Errorf("%w: mass number %d outside 0..%d", ErrInvalidIdentifier, a, MaxMassNumber)
	}
	return ID(z*zScale + a), nil
}

// Validate reports whether id is a well-formed positive identifier.
func Validate(id ID) error {
	if id < zScale {
		return fmt.Errorf("%w: %d", ErrInvalidIdentifier, int(id))
	}
	return nil
}

// Decompose splits id into its atomic and mass numbers.
func Decompose(id ID) (z, a int) {
	return int(id) / zScale, int(id) % zScale
}

// Z returns the atomic number.
func (id ID) Z() int {
	return int(id) / zScale
}

// A returns the mass number, 0 for natural elements.
func (id ID) A() int {
	return int(id) % zScale
}

// IsNatural is true when id names an element-averaged natural nuclide.
func (id ID) IsNatural() bool {
	return id.A() == 0
}

// IsNatural reports whether id has mass number 0.
func IsNatural(id ID) bool {
	return id.IsNatural()
}

// String implements fmt.Stringer using the display form.
func (id ID) String() string {
	return Display(id)
}

// Display renders id as "U-235" or "C-nat". Atomic numbers outside the
// element table fall back to "Z{Z}".
func Display(id ID) string {
	z, a := Decompose(id)
	symbol, ok := Symbol(z)
	if !ok {
		return "Z" + strconv.Itoa(z)
	}
	if a == 0 {
		return symbol + "-nat"
	}
	return symbol + "-" + strconv.Itoa(a)
}

// ApproximateMass estimates the molar mass of id in g/mol. Specific
// isotopes use their mass number. Natural elements use the
// abundance-weighted mass number, or 2*Z for elements without a natural
// isotopic composition.
func ApproximateMass(id ID) float64 {
	z, a := Decompose(id)
	if a != 0 {
		return float64(a)
	}
	if mass, ok := NaturalMass(z); ok {
		return mass
	}
	return float64(2 * z)
}

// Parse accepts "U-235", "U235", "u235", "C-nat", "Fe" (natural) or a raw
// integer identifier such as "92235".
func Parse(s string) (ID, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}

	if n, err := strconv.Atoi(value); err == nil {
		id := ID(n)
		if err := Validate(id); err != nil {
			return 0, err
		}
		return id, nil
	}

	split := strings.IndexAny(value, "-0123456789")
	symbol, rest := value, ""
	if split >= 0 {
		symbol, rest = value[:split], strings.TrimPrefix(value[split:], "-")
	}

	z, ok := AtomicNumber(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: unknown element %q", ErrInvalidIdentifier, symbol)
	}

	switch strings.ToLower(rest) {
	case "", "nat", "0":
		return New(z, 0)
	}

	a, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: mass number %q", ErrInvalidIdentifier, rest)
	}
	return New(z, a)
}
