package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/service"
)

const shutdownTimeout = 15 * time.Second

// Options carries the HTTP-facing settings from config.
type Options struct {
	ExportFilename string
	MaxUploadBytes int64
}

type Server struct {
	service  *service.AuditService
	metrics  http.Handler
	opts     Options
	validate *validator.Validate
	mux      *http.ServeMux
	logger   *zap.Logger
}

func NewServer(svc *service.AuditService, metrics http.Handler, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		service:  svc,
		metrics:  metrics,
		opts:     opts,
		validate: newValidator(),
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", s.metrics)

	s.mux.HandleFunc("GET /buildings", s.handleListBuildings)
	s.mux.HandleFunc("GET /buildings/current", s.handleCurrentBuilding)
	s.mux.HandleFunc("POST /buildings/select", s.handleSelectBuilding)

	s.mux.HandleFunc("GET /functional-areas", s.handleFunctionalAreas)
	s.mux.HandleFunc("GET /catalogue", s.handleCatalogue)
	s.mux.HandleFunc("GET /units", s.handleUnits)

	s.mux.HandleFunc("GET /assets", s.handleListAssets)
	s.mux.HandleFunc("POST /assets", s.handleAddAsset)
	s.mux.HandleFunc("PATCH /assets/{id}", s.handleUpdateAsset)
	s.mux.HandleFunc("DELETE /assets/{id}", s.handleRemoveAsset)
	s.mux.HandleFunc("POST /assets/{id}/photo", s.handleUploadPhoto)
	s.mux.HandleFunc("GET /assets/{id}/photo", s.handleGetPhoto)
	s.mux.HandleFunc("POST /assets/{id}/location", s.handleRecordLocation)

	s.mux.HandleFunc("POST /import/buildings-csv", s.handleImportBuildingsCSV)
	s.mux.HandleFunc("POST /import/workbook", s.handleImportWorkbook)
	s.mux.HandleFunc("GET /export", s.handleExport)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
