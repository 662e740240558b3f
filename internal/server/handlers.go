package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
)

// submitRequest is the POST /v1/jobs body.
type submitRequest struct {
	DocumentKey    string `json:"documentKey"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// submitResponse is the 202 body for an accepted job.
type submitResponse struct {
	JobID  string          `json:"jobId"`
	Status jobstore.Status `json:"status"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "request body is not valid JSON")
		return
	}
	if req.DocumentKey == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "documentKey is required")
		return
	}
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "sourceLanguage and targetLanguage are required")
		return
	}

	sub := pipeline.Submission{
		JobID:          uuid.NewString(),
		DocumentKey:    req.DocumentKey,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	}

	rec := &jobstore.Record{
		JobID:          sub.JobID,
		DocumentKey:    sub.DocumentKey,
		SourceLanguage: sub.SourceLanguage,
		TargetLanguage: sub.TargetLanguage,
	}
	if err := s.deps.Jobs.Create(r.Context(), rec); err != nil {
		s.deps.Logger.Error("failed to register job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to register job")
		return
	}

	// The job outlives the request, so it runs on its own context.
	go func() {
		if _, err := s.deps.Runner.Run(context.Background(), sub); err != nil {
			s.deps.Logger.Error("job run failed",
				zap.String("job_id", sub.JobID),
				zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, submitResponse{
		JobID:  sub.JobID,
		Status: jobstore.StatusPending,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	rec, err := s.deps.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "job not found")
			return
		}
		s.deps.Logger.Error("failed to load job record",
			zap.String("job_id", jobID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load job")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	version := s.deps.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": version})
}
