// Package server exposes the habit tracker as a local JSON API with
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/coach"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/tracker"
)

// Config holds server settings.
type Config struct {
	Addr        string
	RatioDays   int
	HeatmapDays int
	// Now returns the current time in the user's timezone.
	Now func() time.Time
}

// Server is the HTTP front of one user's habits.
type Server struct {
	cfg     Config
	router  *chi.Mux
	tracker *tracker.Tracker
	feed    *storage.Feed
	coach   coach.Coach
	metrics *Metrics
}

// New creates a Server. Writes go through tr, reads through feed.
func New(cfg Config, tr *tracker.Tracker, feed *storage.Feed, c coach.Coach) *Server {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultListenAddr
	}
	if cfg.RatioDays <= 0 {
		cfg.RatioDays = constants.DefaultRatioWindowDays
	}
	if cfg.HeatmapDays <= 0 {
		cfg.HeatmapDays = constants.DefaultHeatmapWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		tracker: tr,
		feed:    feed,
		coach:   c,
		metrics: NewMetrics(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.listHabits)
			r.Post("/", s.createHabit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getHabit)
				r.Patch("/", s.updateHabit)
				r.Delete("/", s.deleteHabit)
				r.Post("/toggle", s.toggleHabit)
			})
		})
		r.Get("/stats", s.stats)
		r.Get("/heatmap", s.heatmap)
		r.Get("/trend", s.trend)
		r.Post("/coach", s.coachReply)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Watch keeps the snapshot gauges current by subscribing to the feed.
func (s *Server) Watch(ctx context.Context) (func(), error) {
	return s.feed.Subscribe(ctx, s.tracker.UserID(), func(habits []models.Habit) {
		s.metrics.Observe(analytics.Build(habits, s.cfg.Now(), s.cfg.RatioDays, s.cfg.HeatmapDays))
	})
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cancel, err := s.Watch(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
