package handlers

import (
	"net/http"

	"kika/internal/nuclide"
)

type nuclideLookupResponse struct {
	ZAID            int     `json:"zaid"`
	Z               int     `json:"z"`
	A               int     `json:"a"`
	Symbol          string  `json:"symbol,omitempty"`
	Nuclide         string  `json:"nuclide"`
	Natural         bool    `json:"natural"`
	ApproximateMass float64 `json:"approximate_mass"`
}

// NuclideLookup decodes /api/nuclides/{key} where key is a ZZAAA number or
// a symbolic name such as "U-235" or "Fe".
func NuclideLookup(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	segments := splitPath(r, "/api/nuclides")
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	id, err := nuclide.Parse(segments[0])
	if err != nil {
		writeDomainError(r.Context(), w, err, "resolve nuclide")
		return
	}

	symbol, _ := nuclide.Symbol(id.Z())
	writeJSON(w, http.StatusOK, nuclideLookupResponse{
		ZAID:            int(id),
		Z:               id.Z(),
		A:               id.A(),
		Symbol:          symbol,
		Nuclide:         nuclide.Display(id),
		Natural:         id.IsNatural(),
		ApproximateMass: nuclide.ApproximateMass(id),
	})
}
