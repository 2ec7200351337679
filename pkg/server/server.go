// Package server exposes the token-protected trigger endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rss-digest/pkg/domain"
	"rss-digest/pkg/draft"
	"rss-digest/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

// BatchFetcher runs one ingestion pass over all active sources. It returns
// ingest.ErrRunInProgress while another pass is running.
type BatchFetcher interface {
	FetchAll(ctx context.Context) (domain.BatchFetchResult, error)
}

// RetentionSweeper removes expired articles using the stored retention setting.
type RetentionSweeper interface {
	SweepWithSettings(ctx context.Context) (domain.SweepResult, int, error)
}

// PostGenerator drafts a share post.
type PostGenerator interface {
	Generate(ctx context.Context, in draft.GenerateInput) (draft.Result, error)
}

// HealthChecker reports whether storage is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the components served. Generator may be nil when no LLM is configured.
type Deps struct {
	Fetcher   BatchFetcher
	Sweeper   RetentionSweeper
	Generator PostGenerator
	Health    HealthChecker
}

// Options configures the server.
type Options struct {
	// CronSecret authenticates trigger calls. Empty rejects every call.
	CronSecret string
	Logger     *zap.Logger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	deps   Deps
	secret string
	logger *zap.Logger
	router chi.Router
}

// New builds the router.
func New(deps Deps, opts Options) *Server {
	s := &Server{
		deps:   deps,
		secret: opts.CronSecret,
		logger: logging.OrNop(opts.Logger),
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Route("/cron", func(r chi.Router) {
			r.Get("/fetch-rss", s.handleFetch)
			r.Post("/fetch-rss", s.handleFetch)
			r.Get("/cleanup-old-articles", s.handleCleanup)
			r.Post("/cleanup-old-articles", s.handleCleanup)
		})
		r.Post("/generate-post", s.handleGeneratePost)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
