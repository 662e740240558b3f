// Package server exposes the translation job API over HTTP.
//
// Endpoints:
//
//	POST /v1/jobs          submit a document for translation
//	GET  /v1/jobs/{jobID}  fetch a job record with progress
//	GET  /healthz          liveness probe
//	GET  /version          build info
//
// Job submission is asynchronous: the handler registers the job, starts the
// pipeline in the background, and returns 202 immediately. Clients poll the
// job record for progress and the download URL.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/pipeline"
)

// Runner executes a translation job end to end.
type Runner interface {
	Run(ctx context.Context, sub pipeline.Submission) (*pipeline.MergeOutput, error)
}

// Deps are the collaborators the server needs.
type Deps struct {
	Jobs    jobstore.Store
	Runner  Runner
	Version string
	Logger  *zap.Logger
}

// Server is the HTTP front end for job submission and status.
type Server struct {
	host   string
	port   int
	deps   Deps
	router chi.Router
	http   *http.Server
}

// New creates a server bound to host:port.
func New(host string, port int, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{host: host, port: port, deps: deps}
	s.router = s.buildRouter()
	return s
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Start serves until ctx is canceled, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", s.handleSubmitJob)
		r.Get("/{jobID}", s.handleGetJob)
	})

	return r
}
