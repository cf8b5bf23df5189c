package server

import (
	"context"
	"net/http"

	"kika/internal/handlers"
	applog "kika/internal/log"
)

func newRouter(m *metrics) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.Handle("/metrics", m.handler())
	applog.Debug(context.Background(), "route registered", "path", "/metrics")
	mux.HandleFunc("/api/materials", handlers.MaterialResource)
	mux.HandleFunc("/api/materials/", handlers.MaterialResource)
	applog.Debug(context.Background(), "route registered", "path", "/api/materials")
	mux.HandleFunc("/api/nuclides/", handlers.NuclideLookup)
	applog.Debug(context.Background(), "route registered", "path", "/api/nuclides/")
	mux.HandleFunc("/api/units/convert", handlers.UnitConversion)
	applog.Debug(context.Background(), "route registered", "path", "/api/units/convert")
	mux.HandleFunc("/api/presets", handlers.PresetResource)
	mux.HandleFunc("/api/presets/", handlers.PresetResource)
	applog.Debug(context.Background(), "route registered", "path", "/api/presets")
	return mux
}
