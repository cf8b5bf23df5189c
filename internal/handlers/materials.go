package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "kika/internal/log"
	"kika/internal/material"
	"kika/internal/nuclide"
	"kika/internal/presets"
	"kika/internal/store"
	"kika/internal/units"
	"kika/models"
)

type nuclidePayload struct {
	ZAID      int                 `json:"zaid"`
	Nuclide   string              `json:"nuclide"`
	Fraction  *float64            `json:"fraction"`
	Libraries *material.Libraries `json:"libs"`
}

type materialPayload struct {
	MaterialID      *int                `json:"material_id"`
	Name            *string             `json:"name"`
	Notes           *string             `json:"notes"`
	Density         optionalFloat       `json:"density"`
	DensityUnit     *string             `json:"density_unit"`
	Temperature     optionalFloat       `json:"temperature"`
	TemperatureUnit *string             `json:"temperature_unit"`
	Libraries       *material.Libraries `json:"libs"`
	Nuclides        *[]nuclidePayload   `json:"nuclides"`
}

// optionalFloat tells an absent field apart from an explicit null.
type optionalFloat struct {
	Set   bool
	Value *float64
}

func (o *optionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type nuclideResponse struct {
	ZAID      int                `json:"zaid"`
	Nuclide   string             `json:"nuclide"`
	Fraction  float64            `json:"fraction"`
	Natural   bool               `json:"natural"`
	Libraries material.Libraries `json:"libs"`
}

type materialResponse struct {
	ID              uint               `json:"id,omitempty"`
	MaterialID      int                `json:"material_id"`
	Name            string             `json:"name"`
	Notes           string             `json:"notes,omitempty"`
	Source          string             `json:"source,omitempty"`
	FractionType    string             `json:"fraction_type"`
	Density         *float64           `json:"density"`
	DensityUnit     string             `json:"density_unit"`
	Temperature     *float64           `json:"temperature"`
	TemperatureUnit string             `json:"temperature_unit"`
	Libraries       material.Libraries `json:"libs"`
	Nuclides        []nuclideResponse  `json:"nuclides"`
	CreatedAt       *time.Time         `json:"created_at,omitempty"`
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`
}

// MaterialResource serves the material collection and every per-material
// sub-resource under /api/materials.
func MaterialResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Error(r.Context(), "material resource requested without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	segments := splitPath(r, "/api/materials")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listMaterials(w, r)
		case http.MethodPost:
			createMaterial(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	materialID, err := strconv.Atoi(segments[0])
	if err != nil || materialID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			showMaterial(w, r, materialID)
		case http.MethodPut, http.MethodPatch:
			updateMaterial(w, r, materialID)
		case http.MethodDelete:
			deleteMaterial(w, r, materialID)
		default:
			w.Header().Set("Allow", "GET, PUT, PATCH, DELETE")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch action := segments[1]; {
	case action == "nuclides":
		materialNuclides(w, r, materialID, segments[2:])
	case action == "normalize" && len(segments) == 2:
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		normalizeMaterial(w, r, materialID)
	case action == "expand" && len(segments) == 2:
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		expandMaterial(w, r, materialID)
	case action == "convert" && len(segments) == 2:
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		convertMaterial(w, r, materialID)
	case action == "info" && len(segments) == 2:
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		materialInfo(w, r, materialID)
	case action == "mcnp" && len(segments) == 2:
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		materialCard(w, r, materialID)
	default:
		http.NotFound(w, r)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func listMaterials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := store.List(ctx, database)
	if err != nil {
		writeDomainError(ctx, w, err, "list materials")
		return
	}

	response := make([]materialResponse, 0, len(records))
	for _, record := range records {
		agg, err := record.Aggregate()
		if err != nil {
			writeDomainError(ctx, w, err, "list materials")
			return
		}
		response = append(response, projectMaterial(record, agg))
	}
	applog.Debug(ctx, "materials listed", "count", len(response))
	writeJSON(w, http.StatusOK, response)
}

func showMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	record, agg, err := store.Load(ctx, database, materialID)
	if err != nil {
		writeDomainError(ctx, w, err, "load material")
		return
	}
	writeJSON(w, http.StatusOK, projectMaterial(record, agg))
}

func createMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload materialPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "create material")
		return
	}
	if payload.MaterialID == nil || *payload.MaterialID <= 0 {
		writeDomainError(ctx, w, validationError("material_id must be a positive integer"), "create material")
		return
	}
	if payload.Name == nil {
		writeDomainError(ctx, w, validationError("name is required"), "create material")
		return
	}

	record := models.Material{Source: "api"}
	agg := material.New(*payload.MaterialID, "")
	if err := applyMaterialPayload(&record, agg, payload); err != nil {
		writeDomainError(ctx, w, err, "create material")
		return
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return store.Create(ctx, tx, &record, agg)
	}); err != nil {
		writeDomainError(ctx, w, err, "create material")
		return
	}

	applog.Debug(ctx, "material created", "materialID", agg.ID, "nuclides", agg.Len())
	writeJSON(w, http.StatusCreated, projectMaterial(record, agg))
}

func updateMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	var payload materialPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "update material")
		return
	}
	if payload.MaterialID != nil && *payload.MaterialID != materialID {
		writeDomainError(ctx, w, validationError("material_id %d does not match path", *payload.MaterialID), "update material")
		return
	}

	response, err := mutateMaterial(ctx, materialID, func(record *models.Material, agg *material.Material) error {
		return applyMaterialPayload(record, agg, payload)
	})
	if err != nil {
		writeDomainError(ctx, w, err, "update material")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func deleteMaterial(w http.ResponseWriter, r *http.Request, materialID int) {
	ctx := r.Context()
	if err := store.Delete(ctx, database, materialID); err != nil {
		writeDomainError(ctx, w, err, "delete material")
		return
	}
	applog.Debug(ctx, "material deleted", "materialID", materialID)
	w.WriteHeader(http.StatusNoContent)
}

// applyMaterialPayload folds the fields present in payload into the row and
// aggregate. Absent fields are left untouched.
func applyMaterialPayload(record *models.Material, agg *material.Material, payload materialPayload) error {
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return validationError("name cannot be blank")
		}
		agg.Name = name
	}
	if payload.Notes != nil {
		record.Notes = strings.TrimSpace(*payload.Notes)
	}
	if payload.Libraries != nil {
		agg.Libraries = *payload.Libraries
	}

	if err := applyDensity(agg, payload.Density, payload.DensityUnit); err != nil {
		return err
	}
	if err := applyTemperature(agg, payload.Temperature, payload.TemperatureUnit); err != nil {
		return err
	}

	if payload.Nuclides != nil {
		for _, existing := range agg.Nuclides() {
			agg.RemoveNuclide(existing.ID)
		}
		for _, entry := range *payload.Nuclides {
			if err := addNuclideFromPayload(agg, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyDensity stores a sent value in the sent or current unit, clears it on
// an explicit null, and converts the stored value when only a unit is sent.
func applyDensity(agg *material.Material, value optionalFloat, unitName *string) error {
	unit := agg.DensityUnit
	if unitName != nil {
		parsed, err := units.ParseDensityUnit(*unitName)
		if err != nil {
			return err
		}
		unit = parsed
	}
	switch {
	case value.Value != nil:
		return agg.SetDensity(*value.Value, unit)
	case value.Set:
		agg.ClearDensity()
		agg.DensityUnit = unit
	case unitName != nil:
		return agg.ConvertDensity(unit)
	}
	return nil
}

// applyTemperature mirrors applyDensity for the temperature field.
func applyTemperature(agg *material.Material, value optionalFloat, unitName *string) error {
	unit := agg.TemperatureUnit
	if unitName != nil {
		parsed, err := units.ParseTemperatureUnit(*unitName)
		if err != nil {
			return err
		}
		unit = parsed
	}
	switch {
	case value.Value != nil:
		return agg.SetTemperature(*value.Value, unit)
	case value.Set:
		agg.ClearTemperature()
		agg.TemperatureUnit = unit
	case unitName != nil:
		return agg.ConvertTemperature(unit)
	}
	return nil
}

func addNuclideFromPayload(agg *material.Material, entry nuclidePayload) error {
	id, err := presets.Entry{ZAID: entry.ZAID, Nuclide: entry.Nuclide}.Resolve()
	if err != nil {
		return err
	}
	if entry.Fraction == nil {
		return validationError("fraction is required for %s", nuclide.Display(id))
	}
	var libs material.Libraries
	if entry.Libraries != nil {
		libs = *entry.Libraries
	}
	return agg.AddNuclide(id, *entry.Fraction, libs)
}

// mutateMaterial loads a material, applies mutate to it and persists the
// result inside a single transaction.
func mutateMaterial(ctx context.Context, materialID int, mutate func(*models.Material, *material.Material) error) (materialResponse, error) {
	var response materialResponse
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, agg, err := store.Load(ctx, tx, materialID)
		if err != nil {
			return err
		}
		if err := mutate(&record, agg); err != nil {
			return err
		}
		if err := store.Save(ctx, tx, &record, agg); err != nil {
			return err
		}
		response = projectMaterial(record, agg)
		return nil
	})
	return response, err
}

func projectMaterial(record models.Material, agg *material.Material) materialResponse {
	response := materialResponse{
		ID:              record.ID,
		MaterialID:      agg.ID,
		Name:            agg.Name,
		Notes:           record.Notes,
		Source:          record.Source,
		FractionType:    string(agg.FractionType()),
		Density:         agg.Density,
		DensityUnit:     string(agg.DensityUnit),
		Temperature:     agg.Temperature,
		TemperatureUnit: string(agg.TemperatureUnit),
		Libraries:       agg.Libraries,
		Nuclides:        make([]nuclideResponse, 0, agg.Len()),
	}
	if !record.CreatedAt.IsZero() {
		created := record.CreatedAt
		response.CreatedAt = &created
	}
	if !record.UpdatedAt.IsZero() {
		updated := record.UpdatedAt
		response.UpdatedAt = &updated
	}
	for _, n := range agg.Nuclides() {
		response.Nuclides = append(response.Nuclides, nuclideResponse{
			ZAID:      int(n.ID),
			Nuclide:   nuclide.Display(n.ID),
			Fraction:  n.Fraction,
			Natural:   n.ID.IsNatural(),
			Libraries: n.Libraries,
		})
	}
	return response
}
