// CLAUDE:SUMMARY HTTP API — extraction with content-hash caching, metadata, formats, health.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Renopop/RAG-v7/docpipe"
	"github.com/Renopop/RAG-v7/pptx"
	"github.com/Renopop/RAG-v7/safeio"
	"github.com/Renopop/RAG-v7/store"
)

// Server serves the extraction API.
type Server struct {
	cfg       *Config
	logger    *slog.Logger
	extractor *pptx.Extractor
	store     *store.Store
	router    *chi.Mux
}

// New creates a Server. The extraction cache is opened at cfg.DBPath.
func New(cfg *Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		extractor: pptx.New(pptx.Config{OCR: cfg.OCR, Logger: logger}),
		store:     st,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Post("/api/v1/extract", s.handleExtract)
	r.Get("/api/v1/metadata", s.handleMetadata)
	r.Get("/api/v1/formats", s.handleFormats)
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the cache store. Run closes it on shutdown; Close is for
// callers that only used Handler.
func (s *Server) Close() error { return s.store.Close() }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.router}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("server stopping")
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		return s.store.Close()
	case err := <-errc:
		s.store.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type extractRequest struct {
	Path     string `json:"path"`
	ForceOCR bool   `json:"force_ocr"`
}

type extractResponse struct {
	pptx.Result
	Cached bool   `json:"cached"`
	SHA256 string `json:"sha256,omitempty"`
}

// handleExtract runs (or replays) the presentation extraction for a path.
// Results are cached by content hash: an unchanged file never reprocesses.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	path, err := s.resolvePath(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Path = path

	sha, err := store.HashFile(req.Path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found: "+req.Path)
		return
	}

	// Forced OCR bypasses the cache: the cached record may be classic.
	if !req.ForceOCR {
		if rec, err := s.store.Get(r.Context(), sha); err == nil {
			s.logger.Debug("extraction cache hit", "path", req.Path, "sha256", sha)
			writeJSON(w, http.StatusOK, extractResponse{Result: recordResult(rec), Cached: true, SHA256: sha})
			return
		}
	}

	res := s.extractor.ProcessWithOCR(r.Context(), req.Path, req.ForceOCR)
	if res.Method == "error" {
		writeJSON(w, http.StatusUnprocessableEntity, extractResponse{Result: res, SHA256: sha})
		return
	}

	rec := store.Record{
		SHA256:         sha,
		Path:           req.Path,
		Format:         "pptx",
		Method:         res.Method,
		Text:           res.Text,
		SlidesCount:    res.SlidesCount,
		ImagesCount:    res.ImagesCount,
		ImagesOCR:      res.ImagesOCR,
		ProcessingTime: res.ProcessingTime,
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.logger.Warn("extraction cache write failed", "path", req.Path, "error", err)
	} else if s.cfg.CacheCap > 0 {
		if removed, err := s.store.Prune(r.Context(), s.cfg.CacheCap); err != nil {
			s.logger.Warn("extraction cache prune failed", "error", err)
		} else if removed > 0 {
			s.logger.Debug("extraction cache pruned", "removed", removed, "cap", s.cfg.CacheCap)
		}
	}

	writeJSON(w, http.StatusOK, extractResponse{Result: res, SHA256: sha})
}

// resolvePath confines request paths to the configured root directory.
// Without a root, the path is used as given.
func (s *Server) resolvePath(path string) (string, error) {
	if s.cfg.RootDir == "" {
		return path, nil
	}
	return safeio.ResolvePath(s.cfg.RootDir, path)
}

// recordResult rebuilds an extraction result from a cached record.
func recordResult(rec store.Record) pptx.Result {
	return pptx.Result{
		Text:           rec.Text,
		Method:         rec.Method,
		SlidesCount:    rec.SlidesCount,
		ImagesCount:    rec.ImagesCount,
		ImagesOCR:      rec.ImagesOCR,
		OCRUsed:        rec.Method == "ocr",
		ProcessingTime: rec.ProcessingTime,
	}
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	path, err := s.resolvePath(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	md, err := pptx.ExtractMetadata(path)
	if err != nil {
		if errors.Is(err, pptx.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"formats": docpipe.SupportedFormats()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
