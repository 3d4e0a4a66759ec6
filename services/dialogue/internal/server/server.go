package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"dialoguehub/internal/ratelimit"
	"dialoguehub/internal/util"
	"dialoguehub/pkg/domain"
	"dialoguehub/services/dialogue/internal/app"
)

const livenessMessage = "Dialogue Backend is running!"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// StartupErr is set when a dependency failed to initialize (for example
	// malformed storage credentials). Every /api route then answers 500.
	StartupErr       error
	HighlightLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies   *util.TrustedProxies
	MaxBodyBytes     int64
}

// Server exposes HTTP endpoints for the dialogue service.
type Server struct {
	app            *app.App
	startupErr     error
	limiter        *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	maxBodyBytes   int64
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	startupErr := cfg.StartupErr
	if startupErr == nil && cfg.App == nil {
		startupErr = errors.New("app not configured")
	}
	s := &Server{
		app:            cfg.App,
		startupErr:     startupErr,
		limiter:        cfg.HighlightLimiter,
		trustedProxies: cfg.TrustedProxies,
		maxBodyBytes:   maxBodyBytes,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("dialogue", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.Handle("/api/dialogues", s.withApp(s.handleDialogues))
	s.mux.Handle("/api/dialogues/", s.withApp(s.handleDialogueByNumber))
	s.mux.Handle("/api/file/", s.withApp(s.handleStream("/api/file/")))
	s.mux.Handle("/api/audio/", s.withApp(s.handleStream("/api/audio/")))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, livenessMessage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": s.modeName()})
}

func (s *Server) modeName() string {
	if s.app == nil {
		return ""
	}
	return string(s.app.Mode())
}

func (s *Server) withApp(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.startupErr != nil {
			util.LoggerFromContext(r.Context()).Error("service not ready", "err", s.startupErr)
			writeError(w, http.StatusInternalServerError, s.startupErr.Error())
			return
		}
		next(w, r)
	})
}

func (s *Server) handleDialogues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	list, err := s.app.ListDialogues(r.Context())
	if err != nil {
		s.internalError(w, r, "list dialogues", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// /api/dialogues/{number} or /api/dialogues/{number}/highlights
func (s *Server) handleDialogueByNumber(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/dialogues/")
	parts := strings.Split(path, "/")
	if parts[0] == "" || len(parts) > 2 {
		notFound(w, "not found")
		return
	}
	number, err := app.ParseNumber(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dialogue number")
		return
	}
	if len(parts) == 2 {
		if parts[1] != "highlights" {
			notFound(w, "not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSaveHighlights(w, r, number)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	content, err := s.app.GetDialogue(r.Context(), number)
	if err != nil {
		s.internalError(w, r, "get dialogue", err, "number", number)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleSaveHighlights(w http.ResponseWriter, r *http.Request, number int) {
	if s.limiter != nil {
		decision, err := s.limiter.Take(r.Context(), util.ClientIP(r, s.trustedProxies))
		if err != nil {
			util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "err", err)
		}
		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
	}
	var highlights []domain.Highlight
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxBodyBytes)).Decode(&highlights); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.app.SaveHighlights(r.Context(), number, highlights)
	if err != nil {
		s.internalError(w, r, "save highlights", err, "number", number)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...any) {
	args := append([]any{"op", op, "err", err}, attrs...)
	util.LoggerFromContext(r.Context()).Error("request failed", args...)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeFor(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCodeFor(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch message {
	case "invalid dialogue number":
		return "DIALOGUE_INVALID_NUMBER"
	case "invalid json body":
		return "DIALOGUE_INVALID_REQUEST"
	case "error streaming file":
		return "FILE_STREAM_FAILED"
	case "too many requests":
		return "SYSTEM_RATE_LIMITED"
	case "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "DIALOGUE_INVALID_REQUEST"
	case http.StatusNotFound:
		return "SYSTEM_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "SYSTEM_RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
