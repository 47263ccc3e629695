// Package api serves the collection over HTTP: a chi REST router plus a
// websocket change feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/rifty/internal/api/websocket"
	"github.com/ramonehamilton/rifty/internal/events"
	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	addr       string
	timeout    time.Duration
	origins    []string

	wsHub      *websocket.Hub
	collection *facade.Collection
	limiter    *rate.Limiter
	latency    *metrics.Histogram
	logger     *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Addr           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimit      float64 // mutations per second
	RateBurst      int
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "localhost:8080",
		CORSOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
		RequestTimeout: 30 * time.Second,
		RateLimit:      20,
		RateBurst:      40,
	}
}

// NewServer creates a server over collection and starts its websocket hub.
// When dispatcher is non-nil the hub is registered on it so committed
// changes reach clients. Shutdown stops the hub.
func NewServer(cfg *Config, collection *facade.Collection, dispatcher *events.Dispatcher, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:     chi.NewRouter(),
		addr:       cfg.Addr,
		timeout:    cfg.RequestTimeout,
		origins:    cfg.CORSOrigins,
		wsHub:      websocket.NewHub(logger),
		collection: collection,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		latency:    metrics.NewHistogram(metrics.DefaultMaxSamples),
		logger:     logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultConfig().RequestTimeout
	}
	go s.wsHub.Run()
	if dispatcher != nil {
		dispatcher.Register(websocket.NewObserver(s.wsHub))
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(jsonContentType)
}

// jsonContentType rejects POST and PUT bodies that are not JSON.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// timed records how long each mutation takes to commit.
func (s *Server) timed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.latency.Record(time.Since(start))
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in a goroutine.
// The listener is opened before returning so bind errors are reported.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the API server and the websocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// WebSocketHub returns the hub feeding /ws.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
