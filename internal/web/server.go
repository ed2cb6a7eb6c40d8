// Package web provides the HTTP server, HTML pages and JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datasweeper/internal/config"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
	"github.com/JonMunkholm/datasweeper/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the sweeper.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	metrics  *metrics.Metrics
	validate *validator.Validate
	limiter  *rateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server. m may be nil, in which case /metrics is not
// served and requests are not measured.
func NewServer(cfg *config.Config, service *core.Service, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Post("/upload", s.handleUpload)
	s.router.Route("/files/{id}", func(r chi.Router) {
		r.Get("/", s.handleFilePage)
		r.Get("/download", s.handleDownload)
		r.Post("/discard", s.handleDiscard)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/files", s.handleAPIUpload)
		r.Get("/files", s.handleAPIListFiles)
		r.Get("/files/{id}", s.handleAPIFile)
		r.Post("/files/{id}/preview", s.handleAPIPreview)
		r.Post("/files/{id}/convert", s.handleAPIConvert)
		r.Delete("/files/{id}", s.handleAPIDiscard)
		r.Get("/history", s.handleAPIHistory)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and the rate limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
