// Package api serves reader sessions and the rendered view over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/dgallion1/tinywiki/internal/config"
	"github.com/dgallion1/tinywiki/internal/session"
)

// Server is the HTTP host shell for tinywiki viewers.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	log      *slog.Logger
	cfg      *config.Config
	exports  *LatencyStats
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Manager, log *slog.Logger, cfg *config.Config) *Server {
	s := &Server{
		sessions: sessions,
		log:      log,
		cfg:      cfg,
		exports:  NewLatencyStats(time.Hour),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimit > 0 {
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(s.cfg.RateBurst, 1)), s.log))
	}

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/view", s.handleView)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/import", s.handleImport)
		r.Get("/api/stats", s.handleStats)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/document", s.handleReplaceDocument)

			r.Post("/sections/{index}/select", s.handleSelect)
			r.Post("/sections/{index}/toggle", s.handleToggle)
			r.Post("/sections/{index}/speech", s.handleSpeech)
			r.Get("/sections/{index}/fragments", s.handleFragments)
			r.Post("/back", s.handleBack)
			r.Post("/forward", s.handleForward)
			r.Delete("/speech", s.handleStopSpeech)

			r.Get("/glossary", s.handleGlossary)
			r.Get("/share", s.handleShare)
			r.Get("/export/{format}", s.handleExport)
			r.Post("/related", s.handleRelated)
			r.Post("/reset", s.handleReset)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
