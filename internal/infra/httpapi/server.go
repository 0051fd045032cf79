package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"calmmate/internal/domain"
)

// maxUploadBytes bounds one recording upload.
const maxUploadBytes = 10 * 1024 * 1024

// Analyzer runs the analysis pipeline for an uploaded recording.
type Analyzer interface {
	Analyze(ctx context.Context, id string) (domain.Analysis, error)
}

// Speaker synthesizes reply text into a stored voice artifact.
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
}

// Uploader persists a recording and returns its identifier.
type Uploader interface {
	Put(data []byte, declaredExt string) (string, error)
}

type Server struct {
	addr        string
	uploads     Uploader
	analyzer    Analyzer
	speaker     Speaker
	repliesDir  string
	corsOrigins []string

	server      *http.Server
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
}

func NewServer(addr string, uploads Uploader, analyzer Analyzer, speaker Speaker, repliesDir string, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		addr:        addr,
		uploads:     uploads,
		analyzer:    analyzer,
		speaker:     speaker,
		repliesDir:  repliesDir,
		corsOrigins: corsOrigins,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		logger:      logger,
	}

	s.mux.HandleFunc("POST /upload_audio", s.rateLimiter.Middleware(s.handleUpload))
	s.mux.HandleFunc("GET /analyze_audio/{file_id}", s.rateLimiter.Middleware(s.handleAnalyze))
	s.mux.HandleFunc("POST /speak", s.rateLimiter.Middleware(s.handleSpeak))
	// No rate limiting on health or generated replies
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /voice_replies/", http.StripPrefix("/voice_replies/", http.FileServer(http.Dir(repliesDir))))

	return s
}

// Handler exposes the routed handler with CORS applied, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.withCORS(s.mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty audio"})
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")

	id, err := s.uploads.Put(data, ext)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("audio uploaded", "id", id, "bytes", len(data), "ext", ext)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "file_id": id})
}

type analyzeResponse struct {
	Transcript string  `json:"transcript"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Reply      string  `json:"reply"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("file_id")

	analysis, err := s.analyzer.Analyze(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Transcript: analysis.Transcript,
		Emotion:    analysis.Emotion.Label,
		Confidence: analysis.Emotion.Confidence,
		Reply:      analysis.Reply,
	})
}

type speakRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var payload speakRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	defer r.Body.Close()

	id, err := s.speaker.Speak(r.Context(), payload.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"file_id": id})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "calmmate backend running"})
}

// writeError maps the error taxonomy onto HTTP statuses. User-correctable
// conditions carry their actionable message through; upstream failures are
// logged with detail but answered generically.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsUserCorrectable(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "analysis failed, please try again"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
