// Package server exposes headless dashboard sessions over an HTTP JSON API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/mapview"
	"github.com/sells-group/housing-dashboard/internal/orchestrator"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/render"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = eris.New("server: too many sessions")

// Options configures the API.
type Options struct {
	Viewport       projector.Size
	Layout         projector.TooltipLayout
	AllowedOrigins []string
	// MaxSessions caps concurrent sessions. Zero means 1000.
	MaxSessions int
}

// Server holds the shared store and the live sessions.
type Server struct {
	store *feature.Store
	opts  Options
	log   *zap.Logger
	newID func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a server over a loaded store.
func New(store *feature.Store, opts Options) *Server {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		store:    store,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "server")),
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

// NewSession creates and registers a session.
func (s *Server) NewSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.opts.MaxSessions {
		return nil, eris.Wrapf(ErrTooManySessions, "limit %d", s.opts.MaxSessions)
	}
	sess := NewSession(s.newID(), s.store, s.opts.Viewport, s.opts.Layout)
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Session looks up a live session.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// DeleteSession drops a session. Reports whether it existed.
func (s *Server) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/events", s.handlePostEvent)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Meta describes the loaded datasets and the selectable controls.
type Meta struct {
	Years      selection.YearDomain  `json:"years"`
	Layers     []selection.Layer     `json:"layers"`
	Thresholds []int                 `json:"thresholds"`
	Charts     []projector.ChartName `json:"charts"`
	Datasets   map[string]int        `json:"datasets"`
}

func (s *Server) meta() Meta {
	minYear, maxYear := s.store.YearRange()
	return Meta{
		Years:      selection.YearDomain{Min: minYear, Max: maxYear},
		Layers:     selection.Layers,
		Thresholds: selection.Thresholds,
		Charts:     projector.Charts,
		Datasets: map[string]int{
			"tracts": s.store.Tracts.Len(),
			"zones":  s.store.Zones.Len(),
			"burden": s.store.Burden.Len(),
			"income": s.store.Income.Len(),
		},
	}
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot render.Snapshot `json:"snapshot"`
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.meta())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.NewSession()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.log.Info("session created", zap.String("session", sess.ID))
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Snapshot: sess.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, eris.New("session not found"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Snapshot: sess.Snapshot()})
}

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, eris.New("session not found"))
		return
	}
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.Wrap(ErrBadRequest, "invalid request body"))
		return
	}
	snap, err := sess.ApplySnapshot(req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Snapshot: snap})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.DeleteSession(id) {
		writeError(w, http.StatusNotFound, eris.New("session not found"))
		return
	}
	s.log.Info("session deleted", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, orchestrator.ErrUnknownEvent),
		errors.Is(err, selection.ErrInvalidLayer),
		errors.Is(err, selection.ErrInvalidThreshold),
		errors.Is(err, mapview.ErrEmptyBounds):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
