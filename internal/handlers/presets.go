package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "kika/internal/log"
	"kika/internal/presets"
	"kika/internal/store"
	"kika/models"
)

type presetSummary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	MaterialID   int    `json:"material_id"`
	NuclideCount int    `json:"nuclide_count"`
}

type instantiatePayload struct {
	MaterialID *int    `json:"material_id"`
	Name       *string `json:"name"`
}

// PresetResource lists presets, renders one as a material and stores
// copies of presets as new materials.
func PresetResource(w http.ResponseWriter, r *http.Request) {
	if library == nil {
		applog.Error(r.Context(), "preset resource requested without library")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	segments := splitPath(r, "/api/presets")
	switch {
	case len(segments) == 0:
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		listPresets(w, r)
	case len(segments) == 1:
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		showPreset(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "instantiate":
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		instantiatePreset(w, r, segments[0])
	default:
		http.NotFound(w, r)
	}
}

func listPresets(w http.ResponseWriter, r *http.Request) {
	list := library.List()
	response := make([]presetSummary, 0, len(list))
	for _, p := range list {
		response = append(response, presetSummary{
			Key:          p.Key,
			Name:         p.Name,
			MaterialID:   p.MaterialID,
			NuclideCount: len(p.Nuclides),
		})
	}
	applog.Debug(r.Context(), "presets listed", "count", len(response))
	writeJSON(w, http.StatusOK, response)
}

func showPreset(w http.ResponseWriter, r *http.Request, key string) {
	ctx := r.Context()
	preset, err := library.Get(key)
	if err != nil {
		writeDomainError(ctx, w, err, "load preset")
		return
	}
	agg, err := preset.Build()
	if err != nil {
		writeDomainError(ctx, w, err, "build preset")
		return
	}
	writeJSON(w, http.StatusOK, projectMaterial(models.Material{Source: presetSource(preset)}, agg))
}

func instantiatePreset(w http.ResponseWriter, r *http.Request, key string) {
	ctx := r.Context()
	if database == nil {
		applog.Error(ctx, "preset instantiation requested without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	var payload instantiatePayload
	if err := decodeOptionalJSON(r, &payload); err != nil {
		writeDomainError(ctx, w, err, "instantiate preset")
		return
	}

	preset, err := library.Get(key)
	if err != nil {
		writeDomainError(ctx, w, err, "instantiate preset")
		return
	}
	agg, err := preset.Build()
	if err != nil {
		writeDomainError(ctx, w, err, "instantiate preset")
		return
	}
	if payload.MaterialID != nil {
		if *payload.MaterialID <= 0 {
			writeDomainError(ctx, w, validationError("material_id must be a positive integer"), "instantiate preset")
			return
		}
		agg.ID = *payload.MaterialID
	}
	if payload.Name != nil {
		if name := strings.TrimSpace(*payload.Name); name != "" {
			agg.Name = name
		}
	}

	record := models.Material{Source: presetSource(preset)}
	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return store.Create(ctx, tx, &record, agg)
	}); err != nil {
		writeDomainError(ctx, w, err, "instantiate preset")
		return
	}

	applog.Debug(ctx, "preset instantiated", "preset", preset.Key, "materialID", agg.ID)
	writeJSON(w, http.StatusCreated, projectMaterial(record, agg))
}

func presetSource(p presets.Preset) string {
	return "preset:" + p.Key
}
