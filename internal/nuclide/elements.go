package nuclide

import "strings"

// symbols is indexed by atomic number; index 0 is unused.
var symbols = [...]string{
	"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// MaxAtomicNumber is the heaviest element in the symbol table.
const MaxAtomicNumber = len(symbols) - 1

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, MaxAtomicNumber)
	for z := 1; z <= MaxAtomicNumber; z++ {
		m[strings.ToLower(symbols[z])] = z
	}
	return m
}()

// Symbol returns the periodic-table symbol for atomic number z.
func Symbol(z int) (string, bool) {
	if z < 1 || z > MaxAtomicNumber {
		return "", false
	}
	return symbols[z], true
}

// AtomicNumber looks up an element symbol, ignoring case.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := atomicNumbers[strings.ToLower(strings.TrimSpace(symbol))]
	return z, ok
}

// Common nuclides used by the built-in presets and tests.
const (
	H1    ID = 1001
	H2    ID = 1002
	C     ID = 6000
	O16   ID = 8016
	U235  ID = 92235
	U238  ID = 92238
	Pu239 ID = 94239
)
