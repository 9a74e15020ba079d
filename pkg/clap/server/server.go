// Package server exposes the captioning engine over HTTP.
//
// Endpoints:
//
//	POST /api/caption   multipart upload (file, top_k, model) -> caption JSON
//	GET  /api/tags      active tag vocabulary
//	GET  /api/recent    recently produced captions
//	GET  /healthz       liveness probe
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clapety/clapety/pkg/clap"
	"github.com/clapety/clapety/pkg/history"
)

const (
	// MaxTopK bounds the per-request tag count.
	MaxTopK = 50

	// DefaultMaxUploadBytes bounds multipart upload size.
	DefaultMaxUploadBytes = 64 << 20
)

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Cache supplies encoders by model identifier.
	Cache *clap.Cache

	// DefaultModel is used when a request does not name one.
	DefaultModel string

	// Vocabulary is the active tag set. Nil selects the default.
	Vocabulary *clap.Vocabulary

	// History records served captions. Nil disables history; /api/recent
	// then returns an empty list.
	History history.Store

	// MaxUploadBytes bounds request size. Zero means
	// [DefaultMaxUploadBytes].
	MaxUploadBytes int64

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server handles caption requests over HTTP.
type Server struct {
	cfg   Config
	log   *slog.Logger
	vocab *clap.Vocabulary

	mu      sync.Mutex
	engines map[string]*clap.Engine
}

// New creates a Server. Cache and DefaultModel are required.
func New(cfg Config) (*Server, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("server: Cache is required")
	}
	if cfg.DefaultModel == "" {
		return nil, fmt.Errorf("server: DefaultModel is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = clap.DefaultVocabulary()
	}
	return &Server{
		cfg:     cfg,
		log:     cfg.Logger,
		vocab:   vocab,
		engines: make(map[string]*clap.Engine),
	}, nil
}

// Handler returns the HTTP routing for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/caption", s.handleCaption)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("caption server starting", "addr", s.cfg.Addr, "model", s.cfg.DefaultModel)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// engineFor returns the engine for a model, creating it on first use.
// Engines share the vocabulary, so tag vectors are computed once per
// model.
func (s *Server) engineFor(ctx context.Context, modelID string) (*clap.Engine, error) {
	s.mu.Lock()
	if e, ok := s.engines[modelID]; ok {
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	enc, err := s.cfg.Cache.Acquire(ctx, modelID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[modelID]; ok {
		return e, nil
	}
	e := clap.NewEngine(enc, s.vocab)
	s.engines[modelID] = e
	return e, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags":  s.vocab.Tags(),
		"count": s.vocab.Len(),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := 20
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	recs := []*history.Record{}
	if s.cfg.History != nil {
		var err error
		recs, err = s.cfg.History.Recent(r.Context(), n)
		if err != nil {
			s.log.Error("history read failed", "error", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if recs == nil {
			recs = []*history.Record{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"captions": recs})
}

func (s *Server) handleCaption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqID := uuid.NewString()
	w.Header().Set("X-Request-Id", reqID)
	log := s.log.With("request_id", reqID)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	// Request validation happens before any model work: a bad top_k or
	// an unsupported file must not trigger an encoder load.
	topK := clap.DefaultTopK
	if v := r.FormValue("top_k"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > MaxTopK {
			http.Error(w, fmt.Sprintf("top_k must be between 1 and %d", MaxTopK), http.StatusBadRequest)
			return
		}
		topK = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		http.Error(w, "empty file upload", http.StatusBadRequest)
		return
	}
	if !clap.SupportedExtension(header.Filename) {
		http.Error(w, fmt.Sprintf("unsupported file type %q", header.Filename), http.StatusBadRequest)
		return
	}

	modelID := r.FormValue("model")
	if modelID == "" {
		modelID = s.cfg.DefaultModel
	}

	engine, err := s.engineFor(r.Context(), modelID)
	if err != nil {
		log.Error("model load failed", "model", modelID, "error", err)
		http.Error(w, "model unavailable", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	rec, err := engine.CaptionReader(r.Context(), header.Filename, filepath.Ext(header.Filename), file, topK)
	if err != nil {
		var de *clap.DecodeError
		if errors.As(err, &de) {
			log.Warn("decode failed", "file", header.Filename, "error", err)
			http.Error(w, "could not decode audio", http.StatusBadRequest)
			return
		}
		log.Error("caption failed", "file", header.Filename, "error", err)
		http.Error(w, "caption failed", http.StatusInternalServerError)
		return
	}
	log.Info("captioned upload",
		"file", header.Filename,
		"model", modelID,
		"caption", rec.Caption,
		"elapsed", time.Since(start))

	if s.cfg.History != nil {
		h := &history.Record{
			File:    rec.File,
			Caption: rec.Caption,
			Tags:    rec.Tags,
			Model:   rec.Model,
		}
		if err := s.cfg.History.Append(r.Context(), h); err != nil {
			log.Warn("history append failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, captionResponse{CaptionRecord: rec, TopK: topK})
}

// captionResponse echoes the effective top_k alongside the record.
type captionResponse struct {
	*clap.CaptionRecord
	TopK int `json:"top_k"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
