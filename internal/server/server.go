// Package server exposes the dataset store, outlier filters, dataset library
// and comparison charts over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/compare"
	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/outlier"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options holds analysis parameters and limits for request handling.
type Options struct {
	ConfigsDir     string
	Bins           int
	Sigma          float64
	IQRFactor      float64
	MaxUploadBytes int64
	CompareWorkers int
}

// DefaultOptions returns the parameters used when none are configured.
func DefaultOptions() Options {
	return Options{
		Bins:           analysis.DefaultBins,
		Sigma:          outlier.DefaultSigma,
		IQRFactor:      outlier.DefaultIQRFactor,
		MaxUploadBytes: 32 << 20,
		CompareWorkers: compare.DefaultWorkers,
	}
}

// Server wires handlers to a store and a library.
type Server struct {
	router *chi.Mux
	store  *store.Store
	lib    *library.Library
	opt    Options
	log    *logging.Logger
}

// New creates a server. The store is shared by every request.
func New(st *store.Store, lib *library.Library, opt Options, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{router: chi.NewRouter(), store: st, lib: lib, opt: opt, log: log}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(allowCORS)
}

func (s *Server) setupRoutes() {
	// Current dataset
	s.router.Post("/upload", s.handleUpload)
	s.router.Get("/dataset-summary", s.handleSummary)
	s.router.Get("/dataset", s.handleDataset)
	s.router.Get("/attributes", s.handleAttributes)
	s.router.Post("/remove-attributes", s.handleRemoveAttributes)
	s.router.Post("/undo-remove", s.handleUndo)
	s.router.Get("/attribute-details/{attribute}", s.handleAttributeDetails)
	s.router.Post("/remove-outliers", s.handleRemoveOutliers)
	s.router.Post("/save-dataset", s.handleSaveDataset)

	// Dataset library
	s.router.Route("/datasets", func(r chi.Router) {
		r.Post("/upload", s.handleLibraryUpload)
		r.Get("/list", s.handleLibraryList)
		r.Delete("/delete/{fileName}", s.handleLibraryDelete)
		r.Get("/attributes/{fileName}", s.handleLibraryAttributes)
		r.Post("/chart-data", s.handleChartData)
	})

	// Saved comparisons
	s.router.Route("/configurations", func(r chi.Router) {
		r.Post("/save", s.handleSaveConfiguration)
		r.Get("/load/{configName}", s.handleLoadConfiguration)
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
