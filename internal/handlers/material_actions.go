package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"kika/internal/composition"
	applog "kika/internal/log"
	"kika/internal/material"
	"kika/internal/nuclide"
	"kika/internal/store"
	"kika/internal/units"
	"kika/models"
)

type nuclideUpdatePayload struct {
	Fraction  *float64            `json:"fraction"`
	Libraries *material.Libraries `json:"libs"`
}

type expandPayload struct {
	Elements []string `json:"elements"`
}

type convertPayload struct {
	FractionType    *string `json:"fraction_type"`
	DensityUnit     *string `json:"density_unit"`
	TemperatureUnit *string `json:"temperature_unit"`
}

func materialNuclides(w http.ResponseWriter, r *http.Request, materialID int, rest []string) {
	switch len(rest) {
	case 0:
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		addMaterialNuclide(w, r, materialID)
	case 1:
		id, err := nuclide.Parse(rest[0])
		if err != nil {
			writeDomainError(r.Context(), w, err, "resolve nuclide")
			return
		}
		switch r.Method {
		case http.MethodPut, http.MethodPatch:
			updateMaterialNuclide(w, r, materialID, id)
		case http.MethodDelete:
			removeMaterialNuclide(w, r, materialID, id)
		default:
			w.Header().Set("Allow", "PUT, PATCH, DELETE")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func addMaterialNuclide(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	var payload nuclidePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "add nuclide")
		return
	}

	response, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		return addNuclideFromPayload(agg, payload)
	})
	if err != nil {
		writeDomainError(ctx, w, err, "add nuclide")
		return
	}
	applog.Debug(ctx, "nuclide added", "materialID", materialID, "nuclides", len(response.Nuclides))
	writeJSON(w, http.StatusCreated, response)
}

func updateMaterialNuclide(w http.ResponseWriter, r *http.Request, materialID int, id nuclide.ID) {
	ctx := r.Context()
	var payload nuclideUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "update nuclide")
		return
	}
	if payload.Fraction == nil && payload.Libraries == nil {
		writeDomainError(ctx, w, validationError("fraction or libs is required"), "update nuclide")
		return
	}

	response, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		if payload.Fraction != nil {
			if err := agg.SetFraction(id, *payload.Fraction); err != nil {
				return err
			}
		}
		if payload.Libraries != nil {
			return agg.SetLibraries(id, *payload.Libraries)
		}
		return nil
	})
	if err != nil {
		writeDomainError(ctx, w, err, "update nuclide")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// removeMaterialNuclide succeeds whether or not the nuclide was present.
func removeMaterialNuclide(w http.ResponseWriter, r *http.Request, materialID int, id nuclide.ID) {
	ctx := r.Context()
	if _, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		agg.RemoveNuclide(id)
		return nil
	}); err != nil {
		writeDomainError(ctx, w, err, "remove nuclide")
		return
	}
	applog.Debug(ctx, "nuclide removed", "materialID", materialID, "zaid", int(id))
	w.WriteHeader(http.StatusNoContent)
}

func normalizeMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	response, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		agg.Normalize()
		return nil
	})
	if err != nil {
		writeDomainError(ctx, w, err, "normalize material")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// expandMaterial splits natural elements into isotopes. An empty body
// expands every natural element.
func expandMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	var payload expandPayload
	if err := decodeOptionalJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "expand material")
		return
	}

	response, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		return agg.ExpandNaturalElements(payload.Elements...)
	})
	if err != nil {
		writeDomainError(ctx, w, err, "expand material")
		return
	}
	applog.Debug(ctx, "natural elements expanded", "materialID", materialID, "nuclides", len(response.Nuclides))
	writeJSON(w, http.StatusOK, response)
}

func convertMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	var payload convertPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "convert material")
		return
	}
	if payload.FractionType == nil && payload.DensityUnit == nil && payload.TemperatureUnit == nil {
		writeDomainError(ctx, w, validationError("one of fraction_type, density_unit or temperature_unit is required"), "convert material")
		return
	}

	response, err := mutateMaterial(ctx, materialID, func(_ *models.Material, agg *material.Material) error {
		if payload.FractionType != nil {
			kind := composition.FractionType(strings.ToLower(strings.TrimSpace(*payload.FractionType)))
			if err := agg.ConvertFractions(kind); err != nil {
				return err
			}
		}
		if payload.DensityUnit != nil {
			unit, err := units.ParseDensityUnit(*payload.DensityUnit)
			if err != nil {
				return err
			}
			if err := agg.ConvertDensity(unit); err != nil {
				return err
			}
		}
		if payload.TemperatureUnit != nil {
			unit, err := units.ParseTemperatureUnit(*payload.TemperatureUnit)
			if err != nil {
				return err
			}
			if err := agg.ConvertTemperature(unit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeDomainError(ctx, w, err, "convert material")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func materialInfo(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	_, agg, err := store.Load(ctx, database, materialID)
	if err != nil {
		writeDomainError(ctx, w, err, "load material")
		return
	}
	writeJSON(w, http.StatusOK, agg.Info())
}

func materialCard(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	_, agg, err := store.Load(ctx, database, materialID)
	if err != nil {
		writeDomainError(ctx, w, err, "load material")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, agg.MCNPCard()); err != nil {
		applog.Error(ctx, "failed to write mcnp card", "materialID", materialID, "error", err)
	}
}
