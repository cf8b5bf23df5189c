package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "kika/internal/log"
	"kika/internal/material"
	"kika/internal/nuclide"
	"kika/internal/presets"
	"kika/internal/store"
	"kika/internal/units"
)

const maxPayloadBytes = 1 << 20

var (
	database *gorm.DB
	library  *presets.Library

	errValidation = errors.New("validation failed")
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(db *gorm.DB, lib *presets.Library) {
	database = db
	library = lib
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errValidation, fmt.Sprintf(format, args...))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return validationError("invalid request payload: %v", err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return validationError("invalid request payload: %v", err)
	}
	return nil
}

// statusFor maps domain and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, material.ErrNuclideNotFound),
		errors.Is(err, presets.ErrUnknownPreset):
		return http.StatusNotFound
	case errors.Is(err, material.ErrDuplicateNuclide),
		errors.Is(err, store.ErrMaterialExists):
		return http.StatusConflict
	case errors.Is(err, errValidation),
		errors.Is(err, nuclide.ErrInvalidIdentifier),
		errors.Is(err, units.ErrUnsupportedUnit),
		errors.Is(err, units.ErrInvalidComposition),
		errors.Is(err, material.ErrInvalidDensity),
		errors.Is(err, material.ErrInvalidTemperature),
		errors.Is(err, material.ErrInvalidFractionType),
		errors.Is(err, material.ErrNoNaturalAbundance):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeDomainError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.Error(ctx, "request failed", "action", action, "error", err)
		writeJSONError(w, status, "unable to "+action)
		return
	}
	applog.Debug(ctx, "request rejected", "action", action, "status", status, "error", err)
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// splitPath trims prefix from the request path and returns the remaining
// non-empty segments.
func splitPath(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
