package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "kika/internal/log"
)

const requestIDHeader = "X-Request-ID"

// withRequestID tags every request with an id, reusing a caller supplied
// X-Request-ID when present.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kika",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kika",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route, method := routeLabel(r.URL.Path), methodLabel(r.Method)
		m.requests.WithLabelValues(route, method, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		applog.Debug(r.Context(), "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

var (
	materialActions = map[string]bool{
		"nuclides": true, "normalize": true, "expand": true,
		"convert": true, "info": true, "mcnp": true,
	}
	presetActions = map[string]bool{"instantiate": true}

	standardMethods = map[string]bool{
		http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
		http.MethodPut: true, http.MethodPatch: true, http.MethodDelete: true,
		http.MethodOptions: true,
	}
)

// routeLabel maps a request path onto a fixed set of route templates,
// e.g. /api/materials/12/info becomes /api/materials/:id/info. Paths that
// match no served route are labelled "other".
func routeLabel(path string) string {
	switch path {
	case "/healthz", "/metrics":
		return path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "api" {
		return "other"
	}

	resource, rest := segments[1], segments[2:]
	label := "/api/" + resource
	switch resource {
	case "units":
		if len(rest) == 1 && rest[0] == "convert" {
			return label + "/convert"
		}
	case "nuclides":
		if len(rest) == 1 {
			return label + "/:id"
		}
	case "materials":
		switch {
		case len(rest) == 0:
			return label
		case len(rest) == 1:
			return label + "/:id"
		case len(rest) == 2 && materialActions[rest[1]]:
			return label + "/:id/" + rest[1]
		case len(rest) == 3 && rest[1] == "nuclides":
			return label + "/:id/nuclides/:id"
		}
	case "presets":
		switch {
		case len(rest) == 0:
			return label
		case len(rest) == 1:
			return label + "/:id"
		case len(rest) == 2 && presetActions[rest[1]]:
			return label + "/:id/" + rest[1]
		}
	}
	return "other"
}

func methodLabel(method string) string {
	if standardMethods[method] {
		return method
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
