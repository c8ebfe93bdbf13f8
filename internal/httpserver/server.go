// internal/httpserver/server.go
//
// HTTP server wiring for the CartoObscura backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Daily game endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me.
//   - Display preference endpoints: /prefs/theme.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; guests play under an anonymous cookie ID.

package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/config"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/store"
)

// Server bundles router, persistence, DB handle, and runtime settings.
type Server struct {
	r            *chi.Mux
	store        store.Store
	db           *sql.DB
	clientOrigin string
	jwtSecret    string
	cookieName   string
}

// New constructs a Server, installs middleware, and registers routes.
// A nil cfg falls back to the environment defaults.
func New(st store.Store, db *sql.DB, cfg *config.Config) *Server {
	if cfg == nil {
		cfg, _ = config.Load()
	}
	s := &Server{
		r:            chi.NewRouter(),
		store:        st,
		db:           db,
		clientOrigin: cfg.ClientOrigin,
		jwtSecret:    cfg.JWTSecret,
		cookieName:   cfg.CookieName,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"cartoobscura-go","endpoints":["/health","POST /daily/new","POST /daily/pin","POST /daily/submit","POST /daily/advance","GET /daily/summary","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Daily game — OPTIONAL AUTH (guests play under the anon cookie).
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Display preferences — OPTIONAL AUTH for the same reason.
	s.mountPrefs(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats (require auth).
	s.mountAuthRoutes()

	// JSON 404 for easier debugging.
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the single configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.clientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
