package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/conversation"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/inbox"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	AllowedOrigins []string
	// Gatherer backs /metrics. The endpoint is not mounted when nil.
	Gatherer prometheus.Gatherer
}

type Server struct {
	router    *chi.Mux
	engine    *conversation.Engine
	inbox     *inbox.Service
	store     storage.Storage
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
	startedAt time.Time
}

func New(cfg Config, engine *conversation.Engine, inboxSvc *inbox.Service, store storage.Storage, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router:    r,
		engine:    engine,
		inbox:     inboxSvc,
		store:     store,
		logger:    logger,
		gatherer:  cfg.Gatherer,
		startedAt: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		// Chat sessions
		r.Post("/chat/sessions", s.handleCreateSession)
		r.Get("/chat/sessions", s.handleListSessions)
		r.Get("/chat/sessions/{id}", s.handleGetSession)
		r.Post("/chat/sessions/{id}/messages", s.handleSendMessage)
		r.Patch("/chat/sessions/{id}/status", s.handleSetStatus)

		// Emails
		r.Post("/emails/classify", s.handleClassifyEmails)
		r.Post("/emails/reclassify", s.handleReclassifyEmails)
		r.Post("/emails", s.handleIngestEmail)
		r.Get("/emails", s.handleListEmails)
		r.Get("/emails/{id}", s.handleGetEmail)

		// Category rules
		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleSaveCategory)
		r.Delete("/categories/{name}", s.handleDeleteCategory)

		r.Get("/resources", s.handleListResources)
	})
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeStoreError maps repository and engine errors to status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, conversation.ErrInvalidStatus):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, ErrorResponse{Error: msg})
}
