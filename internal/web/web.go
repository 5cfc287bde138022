package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"availcal/internal/config"
	appLog "availcal/internal/log"
	"availcal/internal/schedule"
	"availcal/internal/session"
)

const maxBodyBytes = 1 << 20

// Server provides the HTTP API over editing sessions.
type Server struct {
	cfg      *config.Config
	loc      *time.Location
	sessions *session.Registry
	mux      *http.ServeMux

	// seed is the template sessions start from when no preset is asked for.
	seed schedule.WeekSchedule
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, loc *time.Location, sessions *session.Registry) *Server {
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{
		cfg:      cfg,
		loc:      loc,
		sessions: sessions,
		mux:      http.NewServeMux(),
		seed:     schedule.NewWeekSchedule(),
	}
	if cfg != nil {
		seed, err := cfg.SeedWeek()
		if err != nil {
			appLog.Error("invalid seed schedule, starting sessions empty", err)
		} else {
			s.seed = seed
		}
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="availcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve runs an HTTP server on cfg.Listen until ctx is canceled, then shuts
// it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/presets", s.handlePresets)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleGetSession))
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	// Weekly template.
	s.mux.HandleFunc("PUT /api/sessions/{id}/days/{day}", s.withSession(s.handleSetDay))
	s.mux.HandleFunc("POST /api/sessions/{id}/days/{day}/ranges", s.withSession(s.handleAddRange))
	s.mux.HandleFunc("PATCH /api/sessions/{id}/days/{day}/ranges/{index}", s.withSession(s.handleUpdateRange))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/days/{day}/ranges/{index}", s.withSession(s.handleRemoveRange))
	s.mux.HandleFunc("POST /api/sessions/{id}/days/{day}/copy", s.withSession(s.handleCopyDay))
	s.mux.HandleFunc("POST /api/sessions/{id}/clear", s.withSession(s.handleClearAll))
	s.mux.HandleFunc("POST /api/sessions/{id}/preset", s.withSession(s.handleApplyPreset))
	s.mux.HandleFunc("GET /api/sessions/{id}/validate", s.withSession(s.handleValidate))

	// Daily overrides.
	s.mux.HandleFunc("PUT /api/sessions/{id}/overrides/{date}", s.withSession(s.handleSetOverride))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/overrides/{date}", s.withSession(s.handleClearOverride))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/overrides", s.withSession(s.handleClearOverrides))
	s.mux.HandleFunc("GET /api/sessions/{id}/effective/{date}", s.withSession(s.handleEffective))

	// Navigation.
	s.mux.HandleFunc("POST /api/sessions/{id}/nav/{dir}", s.withSession(s.handleNavigate))

	// Blackouts.
	s.mux.HandleFunc("GET /api/sessions/{id}/blackouts", s.withSession(s.handleListBlackouts))
	s.mux.HandleFunc("POST /api/sessions/{id}/blackouts", s.withSession(s.handleAddBlackout))
	s.mux.HandleFunc("POST /api/sessions/{id}/blackouts/import", s.withSession(s.handleImportBlackouts))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/blackouts/{bid}", s.withSession(s.handleRemoveBlackout))

	// iCalendar export.
	s.mux.HandleFunc("GET /api/sessions/{id}/calendar.ics", s.withSession(s.handleExport))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schedule.Presets())
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves {id} and answers 404 for unknown sessions.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, sess)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
