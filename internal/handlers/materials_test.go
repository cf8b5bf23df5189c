package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kika/internal/presets"
	"kika/internal/units"
	"kika/models"
)

func withMaterialTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	originalDB, originalLib := database, library

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.Material{}, &models.MaterialNuclide{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	lib, err := presets.Builtin()
	if err != nil {
		t.Fatalf("failed to load presets: %v", err)
	}

	Configure(db, lib)
	t.Cleanup(func() {
		database, library = originalDB, originalLib
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func serve(t *testing.T, handler http.HandlerFunc, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeMaterial(t *testing.T, w *httptest.ResponseRecorder) materialResponse {
	t.Helper()
	var resp materialResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode material response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func createWater(t *testing.T) materialResponse {
	t.Helper()
	w := serve(t, MaterialResource, http.MethodPost, "/api/materials", map[string]any{
		"material_id": 1,
		"name":        "Water",
		"density":     1.0,
		"libs":        map[string]string{"nlib": "80c"},
		"nuclides": []map[string]any{
			{"zaid": 1001, "fraction": 2},
			{"nuclide": "O-16", "fraction": 1},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeMaterial(t, w)
}

func TestMaterialCRUD(t *testing.T) {
	db := withMaterialTestDatabase(t)

	created := createWater(t)
	if created.MaterialID != 1 || created.FractionType != "atomic" || len(created.Nuclides) != 2 {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if created.Nuclides[1].ZAID != 8016 || created.Nuclides[1].Nuclide != "O-16" {
		t.Fatalf("unexpected nuclide order: %+v", created.Nuclides)
	}
	if created.DensityUnit != "g/cm3" || created.TemperatureUnit != "K" {
		t.Fatalf("unexpected default units: %+v", created)
	}

	w := serve(t, MaterialResource, http.MethodGet, "/api/materials", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list []materialResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 material, got %d", len(list))
	}

	w = serve(t, MaterialResource, http.MethodPut, "/api/materials/1", map[string]any{
		"name":  "Light water",
		"notes": "room temperature",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decodeMaterial(t, w)
	if updated.Name != "Light water" || updated.Notes != "room temperature" || len(updated.Nuclides) != 2 {
		t.Fatalf("unexpected update response: %+v", updated)
	}

	w = serve(t, MaterialResource, http.MethodDelete, "/api/materials/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	var remaining int64
	db.Unscoped().Model(&models.MaterialNuclide{}).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected nuclide rows to be removed, found %d", remaining)
	}

	w = serve(t, MaterialResource, http.MethodGet, "/api/materials/1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	// The id is free again after deletion.
	createWater(t)
}

func TestCreateMaterialRejectsInvalidInput(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	cases := []struct {
		name    string
		payload map[string]any
		status  int
	}{
		{"duplicate id", map[string]any{"material_id": 1, "name": "Again"}, http.StatusConflict},
		{"missing id", map[string]any{"name": "No id"}, http.StatusBadRequest},
		{"missing name", map[string]any{"material_id": 2}, http.StatusBadRequest},
		{"bad unit", map[string]any{"material_id": 2, "name": "x", "density": 1, "density_unit": "kg/m3"}, http.StatusBadRequest},
		{"negative temperature", map[string]any{"material_id": 2, "name": "x", "temperature": -1}, http.StatusBadRequest},
		{"bad nuclide", map[string]any{"material_id": 2, "name": "x", "nuclides": []map[string]any{{"zaid": 12, "fraction": 1}}}, http.StatusBadRequest},
		{"duplicate nuclide", map[string]any{"material_id": 2, "name": "x", "nuclides": []map[string]any{{"zaid": 1001, "fraction": 1}, {"nuclide": "H-1", "fraction": 1}}}, http.StatusConflict},
		{"unknown field", map[string]any{"material_id": 2, "name": "x", "colour": "blue"}, http.StatusBadRequest},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, MaterialResource, http.MethodPost, "/api/materials", tt.payload)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected json error body, got %q", w.Body.String())
			}
		})
	}
}

func TestMaterialNuclideSubresource(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	w := serve(t, MaterialResource, http.MethodPost, "/api/materials/1/nuclides", map[string]any{
		"nuclide": "U-235", "fraction": 0.001, "libs": map[string]string{"nlib": "81c"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeMaterial(t, w); len(got.Nuclides) != 3 || got.Nuclides[2].Libraries.Neutron != "81c" {
		t.Fatalf("unexpected nuclides after add: %+v", got.Nuclides)
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/1/nuclides", map[string]any{"zaid": 92235, "fraction": 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate nuclide, got %d", w.Code)
	}

	w = serve(t, MaterialResource, http.MethodPut, "/api/materials/1/nuclides/U-235", map[string]any{"fraction": 0.002})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeMaterial(t, w); got.Nuclides[2].Fraction != 0.002 {
		t.Fatalf("fraction not updated: %+v", got.Nuclides[2])
	}

	w = serve(t, MaterialResource, http.MethodPut, "/api/materials/1/nuclides/94239", map[string]any{"fraction": 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for absent nuclide, got %d", w.Code)
	}

	for i := 0; i < 2; i++ {
		w = serve(t, MaterialResource, http.MethodDelete, "/api/materials/1/nuclides/92235", nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete %d: expected status 204, got %d", i, w.Code)
		}
	}

	w = serve(t, MaterialResource, http.MethodGet, "/api/materials/1", nil)
	if got := decodeMaterial(t, w); len(got.Nuclides) != 2 {
		t.Fatalf("expected 2 nuclides after removal, got %+v", got.Nuclides)
	}

	w = serve(t, MaterialResource, http.MethodDelete, "/api/materials/9/nuclides/92235", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for missing material, got %d", w.Code)
	}
}

func TestNormalizeAndConvertMaterial(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	w := serve(t, MaterialResource, http.MethodPost, "/api/materials/1/normalize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	normalized := decodeMaterial(t, w)
	var sum float64
	for _, n := range normalized.Nuclides {
		sum += n.Fraction
	}
	if sum < 1-1e-12 || sum > 1+1e-12 {
		t.Fatalf("expected fractions to sum to 1, got %v", sum)
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/1/convert", map[string]any{
		"fraction_type":    "weight",
		"density_unit":     "atoms/barn-cm",
		"temperature_unit": "MeV",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	converted := decodeMaterial(t, w)
	if converted.FractionType != "weight" || converted.DensityUnit != "atoms/barn-cm" || converted.TemperatureUnit != "MeV" {
		t.Fatalf("unexpected conversion result: %+v", converted)
	}
	for _, n := range converted.Nuclides {
		if n.Fraction >= 0 {
			t.Fatalf("expected negative weight fraction, got %+v", n)
		}
	}
	if converted.Density == nil || *converted.Density <= 0 {
		t.Fatalf("expected converted density, got %v", converted.Density)
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/1/convert", map[string]any{"fraction_type": "volume"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/1/convert", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty conversion, got %d", w.Code)
	}
}

func TestMaterialInfoAndCard(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	w := serve(t, MaterialResource, http.MethodGet, "/api/materials/1/info", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var info struct {
		NuclideCount      int      `json:"nuclide_count"`
		FractionType      string   `json:"fraction_type"`
		UniqueElements    []int    `json:"unique_elements"`
		HasLibraries      bool     `json:"has_libraries"`
		AverageAtomicMass *float64 `json:"average_atomic_mass"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode info: %v", err)
	}
	if info.NuclideCount != 2 || info.FractionType != "atomic" || len(info.UniqueElements) != 2 || !info.HasLibraries {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.AverageAtomicMass == nil || *info.AverageAtomicMass != 6 {
		t.Fatalf("expected average atomic mass 6, got %v", info.AverageAtomicMass)
	}

	w = serve(t, MaterialResource, http.MethodGet, "/api/materials/1/mcnp", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "m1 nlib=80c") || !strings.Contains(w.Body.String(), "      1001 ") {
		t.Fatalf("unexpected card:\n%s", w.Body.String())
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/1/info", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", w.Code)
	}
}

func TestMaterialResourceRouting(t *testing.T) {
	withMaterialTestDatabase(t)

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/api/materials/abc", http.StatusBadRequest},
		{http.MethodGet, "/api/materials/0", http.StatusBadRequest},
		{http.MethodGet, "/api/materials/1/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/materials", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/materials/1/nuclides/Qq-1", http.StatusBadRequest},
	}
	for _, tt := range cases {
		w := serve(t, MaterialResource, tt.method, tt.target, nil)
		if w.Code != tt.status {
			t.Fatalf("%s %s: expected status %d, got %d", tt.method, tt.target, tt.status, w.Code)
		}
	}

	database = nil
	w := serve(t, MaterialResource, http.MethodGet, "/api/materials", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without database, got %d", w.Code)
	}
}

func TestUpdateUnitOnlyConvertsStoredValue(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	w := serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"density_unit": "atoms/barn-cm"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decodeMaterial(t, w)
	if updated.DensityUnit != "atoms/barn-cm" || updated.Density == nil {
		t.Fatalf("unexpected density after unit change: %+v", updated)
	}
	if math.Abs(*updated.Density-0.100369) > 1e-6 {
		t.Fatalf("expected density converted to about 0.100369, got %v", *updated.Density)
	}

	w = serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"temperature": 600})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	w = serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"temperature_unit": "MeV"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	updated = decodeMaterial(t, w)
	if updated.TemperatureUnit != "MeV" || updated.Temperature == nil {
		t.Fatalf("unexpected temperature after unit change: %+v", updated)
	}
	if math.Abs(*updated.Temperature-600*units.BoltzmannMeVPerK) > 1e-15 {
		t.Fatalf("expected temperature converted to MeV, got %v", *updated.Temperature)
	}

	// A value sent with its unit is stored as given.
	w = serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"density": 2.5, "density_unit": "g/cm3"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if updated = decodeMaterial(t, w); updated.Density == nil || *updated.Density != 2.5 || updated.DensityUnit != "g/cm3" {
		t.Fatalf("unexpected explicit density: %+v", updated)
	}
}

func TestUpdateNullClearsPhysicalState(t *testing.T) {
	withMaterialTestDatabase(t)
	createWater(t)

	w := serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"temperature": 300})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/materials/1", strings.NewReader(`{"density": null, "temperature": null}`))
	rec := httptest.NewRecorder()
	MaterialResource(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cleared := decodeMaterial(t, rec)
	if cleared.Density != nil || cleared.Temperature != nil {
		t.Fatalf("expected density and temperature cleared, got %+v", cleared)
	}
	if cleared.DensityUnit != "g/cm3" || cleared.TemperatureUnit != "K" {
		t.Fatalf("clearing should keep units: %+v", cleared)
	}

	w = serve(t, MaterialResource, http.MethodGet, "/api/materials/1", nil)
	if reloaded := decodeMaterial(t, w); reloaded.Density != nil || reloaded.Temperature != nil {
		t.Fatalf("cleared values were not persisted: %+v", reloaded)
	}

	w = serve(t, MaterialResource, http.MethodPatch, "/api/materials/1", map[string]any{"name": "Still water"})
	if untouched := decodeMaterial(t, w); untouched.Density != nil || untouched.Name != "Still water" {
		t.Fatalf("absent fields should be left alone: %+v", untouched)
	}
}

func TestExpandMaterial(t *testing.T) {
	withMaterialTestDatabase(t)

	w := serve(t, MaterialResource, http.MethodPost, "/api/materials", map[string]any{
		"material_id": 7,
		"name":        "Steel",
		"nuclides": []map[string]any{
			{"nuclide": "Fe", "fraction": -0.7},
			{"nuclide": "Cr", "fraction": -0.2},
			{"nuclide": "C", "fraction": -0.1},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/7/expand", map[string]any{"elements": []string{"Fe", "Cr"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	expanded := decodeMaterial(t, w)
	if len(expanded.Nuclides) != 9 || expanded.FractionType != "weight" {
		t.Fatalf("unexpected expansion: %+v", expanded)
	}
	if last := expanded.Nuclides[len(expanded.Nuclides)-1]; last.ZAID != 6000 || !last.Natural {
		t.Fatalf("carbon should stay natural and last, got %+v", last)
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/7/expand", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	for _, n := range decodeMaterial(t, w).Nuclides {
		if n.Natural {
			t.Fatalf("expected every natural element expanded, found %+v", n)
		}
	}

	w = serve(t, MaterialResource, http.MethodPost, "/api/materials", map[string]any{
		"material_id": 8,
		"name":        "Technetium",
		"nuclides":    []map[string]any{{"nuclide": "Tc", "fraction": 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	w = serve(t, MaterialResource, http.MethodPost, "/api/materials/8/expand", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without abundance data, got %d", w.Code)
	}
	w = serve(t, MaterialResource, http.MethodGet, "/api/materials/7/expand", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", w.Code)
	}
}
