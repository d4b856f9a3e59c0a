// Package httpapi exposes price-list analysis over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	POST /v1/analyze    multipart upload, field "file"
//	POST /v1/merge      multipart upload, field "files" (two or more)
//
// Responses are JSON. Import failures map to status codes by kind:
// unsupported extension 415, invalid or incomplete container 422,
// incompatible headers 409, missing reader 501.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xniw/pricelist"
	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/internal/config"
)

// multipartOverhead is allowed on top of the file payload for boundaries
// and part headers.
const multipartOverhead = 1 << 20

// Server serves the analysis API.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	router chi.Router
}

// New creates a server. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/merge", s.handleMerge)
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r, "file", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(files) != 1 {
		s.writeError(w, r, badRequest("expected exactly one file in field %q", "file"))
		return
	}

	imp, err := s.importer(files[0]).Analyze()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewImportResponse(imp))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r, "files", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(files) < 2 {
		s.writeError(w, r, badRequest("merge needs at least two files in field %q, got %d", "files", len(files)))
		return
	}

	sources := make([]*pricelist.Importer, len(files))
	for i, f := range files {
		sources[i] = s.importer(f)
	}
	res, err := pricelist.Merge(r.Context(), sources,
		pricelist.WithConcurrency(s.cfg.MergeConcurrency),
		pricelist.WithMergeLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewMergeResponse(res))
}

func (s *Server) importer(f upload) *pricelist.Importer {
	return pricelist.FromBytes(f.name, f.data).
		WithConfig(s.cfg.Analyzer()).
		WithMaxFileSize(s.cfg.MaxFileSize).
		WithLogger(s.logger)
}

type upload struct {
	name string
	data []byte
}

// readUploads parses the multipart body and returns the files in field. The
// body may hold expected files of MaxFileSize each, or 16 when expected is 0.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string, expected int) ([]upload, error) {
	if limit := s.bodyLimit(expected); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		}
		return nil, badRequest("parsing multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[field]
	files := make([]upload, 0, len(headers))
	for _, fh := range headers {
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, badRequest("reading %s: %v", fh.Filename, err)
		}
		files = append(files, upload{name: fh.Filename, data: data})
	}
	return files, nil
}

func (s *Server) bodyLimit(files int) int64 {
	if s.cfg.MaxFileSize == 0 {
		return 0
	}
	if files <= 0 {
		files = 16
	}
	return s.cfg.MaxFileSize*int64(files) + multipartOverhead
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// requestError is a client error outside the import taxonomy.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Source    string `json:"source,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if kind := importerr.KindOf(err); kind != importerr.KindNone {
		resp.Kind = kind.String()
	}
	var incompatible *importerr.IncompatibleHeaderError
	if errors.As(err, &incompatible) {
		resp.Source = incompatible.Source
	}

	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Error("request failed", zap.Error(err), zap.String("request_id", resp.RequestID))
	} else {
		s.logger.Debug("request rejected", zap.Error(err), zap.Int("status", status))
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status
	}

	switch importerr.KindOf(err) {
	case importerr.KindUnsupportedExtension:
		return http.StatusUnsupportedMediaType
	case importerr.KindInvalidFormat, importerr.KindMissingComponent:
		return http.StatusUnprocessableEntity
	case importerr.KindIncompatibleHeader:
		return http.StatusConflict
	case importerr.KindMissingOptionalSupport:
		return http.StatusNotImplemented
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newID returns an identifier for one analysis response.
func newID() string {
	return uuid.NewString()
}
