/**
 * @description
 * Internal ops HTTP surface for the reconciliation-service: a health check
 * and manual sweep triggers for operators. The cron scheduler remains the
 * primary execution path; the triggers exist for incident response.
 */
package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// JobRunner is the subset of the jobs runner the ops API can trigger.
type JobRunner interface {
	ProcessOverdueQuotations()
	ProcessWarningDecay()
}

// Handlers holds the dependencies for the ops endpoints.
type Handlers struct {
	jobs   JobRunner
	logger *slog.Logger
}

// NewHandlers creates the ops handlers.
func NewHandlers(jobs JobRunner, logger *slog.Logger) *Handlers {
	return &Handlers{jobs: jobs, logger: logger}
}

// NewRouter builds the chi router for the ops server.
func NewRouter(h *Handlers, internalAPIKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Reconciliation service is healthy"))
	})

	r.Route("/internal/jobs", func(r chi.Router) {
		r.Use(InternalAPIKeyMiddleware(internalAPIKey))
		r.Post("/overdue-quotations/run", h.RunOverdueQuotations)
		r.Post("/warning-decay/run", h.RunWarningDecay)
	})

	return r
}

// RunOverdueQuotations kicks off the overdue sweep in the background.
func (h *Handlers) RunOverdueQuotations(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("overdue quotations sweep triggered manually")
	go h.jobs.ProcessOverdueQuotations()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"started"}`))
}

// RunWarningDecay kicks off the warning decay sweep in the background.
func (h *Handlers) RunWarningDecay(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("warning decay sweep triggered manually")
	go h.jobs.ProcessWarningDecay()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"started"}`))
}

// InternalAPIKeyMiddleware guards internal routes with a shared key. When no
// key is configured the routes are disabled rather than left open.
func InternalAPIKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	trimmedKey := strings.TrimSpace(expectedKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if trimmedKey == "" {
				http.Error(w, "Internal API is not configured", http.StatusServiceUnavailable)
				return
			}

			provided := r.Header.Get("X-Internal-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(trimmedKey)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
