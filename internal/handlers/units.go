package handlers

import (
	"net/http"
	"strings"

	applog "kika/internal/log"
	"kika/internal/material"
	"kika/internal/units"
)

type unitConversionPayload struct {
	Quantity          string           `json:"quantity"`
	Value             *float64         `json:"value"`
	From              string           `json:"from"`
	To                string           `json:"to"`
	AverageAtomicMass *float64         `json:"average_atomic_mass"`
	Nuclides          []nuclidePayload `json:"nuclides"`
}

type unitConversionResponse struct {
	Value             float64  `json:"value"`
	Unit              string   `json:"unit"`
	AverageAtomicMass *float64 `json:"average_atomic_mass,omitempty"`
}

// UnitConversion converts a single temperature or density value without
// touching stored materials. Density conversions take the average atomic
// mass directly or derive it from an inline nuclide list.
func UnitConversion(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var payload unitConversionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "convert units")
		return
	}
	if payload.Value == nil {
		writeDomainError(ctx, w, validationError("value is required"), "convert units")
		return
	}

	var response unitConversionResponse
	var err error
	switch strings.ToLower(strings.TrimSpace(payload.Quantity)) {
	case "temperature":
		response, err = convertTemperatureValue(payload)
	case "density":
		response, err = convertDensityValue(payload)
	default:
		err = validationError("quantity must be temperature or density")
	}
	if err != nil {
		writeDomainError(ctx, w, err, "convert units")
		return
	}

	applog.Debug(ctx, "units converted", "quantity", payload.Quantity, "from", payload.From, "to", response.Unit)
	writeJSON(w, http.StatusOK, response)
}

func convertTemperatureValue(payload unitConversionPayload) (unitConversionResponse, error) {
	from, err := units.ParseTemperatureUnit(payload.From)
	if err != nil {
		return unitConversionResponse{}, err
	}
	to, err := units.ParseTemperatureUnit(payload.To)
	if err != nil {
		return unitConversionResponse{}, err
	}
	value, err := units.Temperature(*payload.Value, from, to)
	if err != nil {
		return unitConversionResponse{}, err
	}
	return unitConversionResponse{Value: value, Unit: string(to)}, nil
}

func convertDensityValue(payload unitConversionPayload) (unitConversionResponse, error) {
	from, err := units.ParseDensityUnit(payload.From)
	if err != nil {
		return unitConversionResponse{}, err
	}
	to, err := units.ParseDensityUnit(payload.To)
	if err != nil {
		return unitConversionResponse{}, err
	}

	var mass float64
	switch {
	case payload.AverageAtomicMass != nil:
		mass = *payload.AverageAtomicMass
	case len(payload.Nuclides) > 0:
		agg := material.New(0, "")
		for _, entry := range payload.Nuclides {
			if err := addNuclideFromPayload(agg, entry); err != nil {
				return unitConversionResponse{}, err
			}
		}
		mass, err = agg.AverageAtomicMass()
		if err != nil {
			return unitConversionResponse{}, err
		}
	}

	value, err := units.Density(*payload.Value, from, to, mass)
	if err != nil {
		return unitConversionResponse{}, err
	}
	response := unitConversionResponse{Value: value, Unit: string(to)}
	if mass > 0 {
		response.AverageAtomicMass = &mass
	}
	return response, nil
}
