package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/ufo-sightings-etl/internal/adapter/http"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPipeline struct {
	err    error
	report *pipeline.Report
}

func (m *mockPipeline) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockPipeline) LastRun() (pipeline.Report, bool) {
	if m.report == nil {
		return pipeline.Report{}, false
	}
	return *m.report, true
}

func newTestServer(p *mockPipeline) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockPipeline{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockPipeline{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(&mockPipeline{err: fmt.Errorf("pipeline has not completed a run yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "pipeline has not completed a run yet", body["error"])
}

func TestLastRunReturns404BeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(&mockPipeline{}), "/runs/last")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLastRunReturnsReport(t *testing.T) {
	report := &pipeline.Report{
		RunID:      "run-1",
		StartedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC),
		Extracted:  10,
		Loaded:     7,
		Retention: []domain.StageStat{
			{Stage: "hoax-madar", In: 9, Out: 7, Subset: domain.SubsetHoaxes, Excluded: 2},
		},
	}
	rec := serve(newTestServer(&mockPipeline{report: report}), "/runs/last")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body pipeline.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, 7, body.Loaded)
	require.Len(t, body.Retention, 1)
	assert.Equal(t, domain.SubsetHoaxes, body.Retention[0].Subset)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockPipeline{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
