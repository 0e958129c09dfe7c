// Package server exposes the dashboard cards over HTTP.
//
// Routes:
//
//	GET /                                             endpoint index
//	GET /api/embed/{owner}/{repo}.svg                 repository card
//	GET /api/contributor/{owner}/{repo}/{user}.svg    contributor card
//	GET /api/activity/{owner}/{repo}.svg              commit activity chart
//	GET /api/repobeats/{owner}/{repo}.svg             dashboard
//	GET /api/modern/{owner}/{repo}.svg                dark dashboard
//	GET /api/stats/{owner}/{repo}.json                aggregate as JSON
//	GET /api/text?text=...                            animated typing text
//	GET /healthz                                      liveness
//	GET /metrics                                      Prometheus metrics
//
// Cards accept ?theme=default|dark. Invalid path parameters answer 400, any
// other failure 500, both with a {"detail": "..."} body.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/repostats/pkg/pipeline"
	"github.com/matzehuels/repostats/pkg/render"
)

// DefaultShutdownTimeout bounds the graceful drain on Serve cancellation.
const DefaultShutdownTimeout = 10 * time.Second

// Server routes requests to a pipeline.Runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	metrics http.Handler
	maxAge  time.Duration
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves h on /metrics instead of the default Prometheus
// registry.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// WithMaxAge sets the Cache-Control max-age of card responses, so image
// proxies refresh no more often than the cache does.
func WithMaxAge(d time.Duration) Option { return func(s *Server) { s.maxAge = d } }

// New creates a Server. A nil logger discards.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		runner:  runner,
		logger:  logger,
		metrics: promhttp.Handler(),
		maxAge:  pipeline.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, s.logRequests, middleware.Recoverer, cors)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/embed/{owner}/{file}", s.handleRepoCard(render.KindRepoStats))
		r.Get("/activity/{owner}/{file}", s.handleRepoCard(render.KindCommitActivity))
		r.Get("/repobeats/{owner}/{file}", s.handleRepoCard(render.KindRepobeats))
		r.Get("/modern/{owner}/{file}", s.handleRepoCard(render.KindModern))
		r.Get("/contributor/{owner}/{repo}/{file}", s.handleContributorCard)
		r.Get("/stats/{owner}/{file}", s.handleStats)
		r.Get("/text", s.handleText)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests for up to DefaultShutdownTimeout.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
