package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
)

// stubRunner records submissions instead of running the pipeline.
type stubRunner struct {
	subs chan pipeline.Submission
}

func newStubRunner() *stubRunner {
	return &stubRunner{subs: make(chan pipeline.Submission, 1)}
}

func (r *stubRunner) Run(ctx context.Context, sub pipeline.Submission) (*pipeline.MergeOutput, error) {
	r.subs <- sub
	return &pipeline.MergeOutput{JobID: sub.JobID}, nil
}

func newTestServer(t *testing.T) (*Server, *jobstore.MemoryStore, *stubRunner) {
	t.Helper()
	jobs := jobstore.NewMemoryStore()
	runner := newStubRunner()
	srv := New("127.0.0.1", 0, Deps{Jobs: jobs, Runner: runner, Version: "test"})
	return srv, jobs, runner
}

func TestServer_NotFoundEnvelope(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeMethodNotAllowed, body.Error.Code)
}

func TestServer_Port(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"default port", 8080},
		{"custom port", 9000},
		{"zero port", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New("127.0.0.1", tt.port, Deps{})
			assert.Equal(t, tt.port, srv.Port())
		})
	}
}

func TestSubmitJob(t *testing.T) {
	srv, jobs, runner := newTestServer(t)

	body := `{"documentKey":"uploads/a.xlsx","sourceLanguage":"Japanese","targetLanguage":"English"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp submitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	_, err := uuid.Parse(resp.JobID)
	assert.NoError(t, err)
	assert.Equal(t, jobstore.StatusPending, resp.Status)

	// The record is registered before the handler returns.
	record, err := jobs.Get(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.xlsx", record.DocumentKey)

	// The pipeline was started with the same submission.
	select {
	case sub := <-runner.subs:
		assert.Equal(t, resp.JobID, sub.JobID)
		assert.Equal(t, "English", sub.TargetLanguage)
	case <-time.After(2 * time.Second):
		t.Fatal("runner was never invoked")
	}
}

func TestSubmitJob_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing document", `{"sourceLanguage":"ja","targetLanguage":"en"}`},
		{"missing languages", `{"documentKey":"a.xlsx"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, jobs, _ := newTestServer(t)

			req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body HTTPErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, CodeInvalidArgument, body.Error.Code)

			// No half-registered jobs.
			_, err := jobs.Get(context.Background(), "any")
			assert.Error(t, err)
		})
	}
}

func TestGetJob(t *testing.T) {
	srv, jobs, _ := newTestServer(t)
	require.NoError(t, jobs.Create(context.Background(), &jobstore.Record{
		JobID:       "job-1",
		DocumentKey: "uploads/a.xlsx",
		Status:      jobstore.StatusTranslating,
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var record jobstore.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, jobstore.StatusTranslating, record.Status)
}

func TestGetJob_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/ghost", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
}

func TestServer_RoutesRegistered(t *testing.T) {
	srv, _, _ := newTestServer(t)

	endpoints := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/version", http.StatusOK},
	}
	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, ep.want, rec.Code)
		})
	}
}
