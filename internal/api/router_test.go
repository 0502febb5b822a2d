package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type jobRunnerStub struct {
	overdueRan chan struct{}
	decayRan   chan struct{}
}

func newJobRunnerStub() *jobRunnerStub {
	return &jobRunnerStub{
		overdueRan: make(chan struct{}, 1),
		decayRan:   make(chan struct{}, 1),
	}
}

func (s *jobRunnerStub) ProcessOverdueQuotations() { s.overdueRan <- struct{}{} }
func (s *jobRunnerStub) ProcessWarningDecay()      { s.decayRan <- struct{}{} }

func newTestRouter(runner JobRunner, apiKey string) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandlers(runner, logger), apiKey)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(newJobRunnerStub(), "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health endpoint, got %d", rec.Code)
	}
}

func TestManualTrigger_RequiresInternalAPIKey(t *testing.T) {
	runner := newJobRunnerStub()
	router := newTestRouter(runner, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-quotations/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without internal key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-quotations/run", nil)
	req.Header.Set("X-Internal-API-Key", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong internal key, got %d", rec.Code)
	}
}

func TestManualTrigger_DisabledWithoutConfiguredKey(t *testing.T) {
	router := newTestRouter(newJobRunnerStub(), "")

	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/warning-decay/run", nil)
	req.Header.Set("X-Internal-API-Key", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when no internal key is configured, got %d", rec.Code)
	}
}

func TestManualTrigger_RunsJobs(t *testing.T) {
	runner := newJobRunnerStub()
	router := newTestRouter(runner, "secret")

	for path, ran := range map[string]chan struct{}{
		"/internal/jobs/overdue-quotations/run": runner.overdueRan,
		"/internal/jobs/warning-decay/run":      runner.decayRan,
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Internal-API-Key", "secret")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202 from %s, got %d", path, rec.Code)
		}
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatalf("job for %s did not run", path)
		}
	}
}
