// Package transport holds the HTTP plumbing shared by every service.
package transport

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Masterminds/semver"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tinmancoding/calculator-as-a-service/internal/logging"
	"github.com/tinmancoding/calculator-as-a-service/internal/metrics"
)

// Version is the release of the service mesh reported by every service.
var Version = semver.MustParse("1.0.0")

// Info describes a service on its root endpoint and probes.
type Info struct {
	Service   string
	Hostname  string
	Endpoints map[string]string
}

type statusResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Hostname string `json:"hostname"`
}

type rootResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Hostname  string            `json:"hostname"`
	Endpoints map[string]string `json:"endpoints"`
}

// NewRouter returns a chi router with request IDs, access logging, panic
// recovery and metrics installed, serving /, /health, /ready and /metrics.
// Callers add their own routes.
func NewRouter(info Info, log zerolog.Logger, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log))
	r.Use(RequestIDMiddleware)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int(logging.STATUS, status).
			Int("size", size).
			Dur(logging.DURATION, duration).
			Msg("request")
	}))
	r.Use(Recover)
	r.Use(m.Middleware)

	endpoints := map[string]string{
		"health": "GET /health",
		"ready":  "GET /ready",
	}
	for k, v := range info.Endpoints {
		endpoints[k] = v
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, rootResponse{
			Service:   info.Service,
			Version:   Version.String(),
			Hostname:  info.Hostname,
			Endpoints: endpoints,
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, statusResponse{"healthy", info.Service, info.Hostname})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, statusResponse{"ready", info.Service, info.Hostname})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

// Recover turns a panic into a generic 500 response and logs the details.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			WriteError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
