// Package server exposes the derived station views over HTTP as JSON
// value-plus-attributes documents.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"

	"github.com/informaticaRupestre/geoportal-gasolineras/internal/geolog"
	"github.com/informaticaRupestre/geoportal-gasolineras/internal/refresh"
	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

const (
	cacheDefaultExpiry = 30 * time.Minute
	cacheCleanupTime   = 90 * time.Minute
	shutdownTimeout    = 5 * time.Second
)

// Server wires the refresh coordinator, the upstream client and the search
// log behind the HTTP routes.
type Server struct {
	cfg     Config
	logger  *httplog.Logger
	coord   *refresh.Coordinator
	fuelAPI *api.FuelPriceAPI
	geolog  *geolog.Log
	cache   *cache.Cache
}

// New creates a Server. geoLog may be nil to disable search logging.
func New(cfg Config, logger *httplog.Logger, coord *refresh.Coordinator, fuelAPI *api.FuelPriceAPI, geoLog *geolog.Log) *Server {
	gominatim.SetServer(cfg.NominatimServer)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		coord:   coord,
		fuelAPI: fuelAPI,
		geolog:  geoLog,
		cache:   cache.New(cacheDefaultExpiry, cacheCleanupTime),
	}
}

// NewLogger builds the request logger the server and its callers share.
func NewLogger(level slog.Level) *httplog.Logger {
	return httplog.NewLogger("geoportal", httplog.Options{
		JSON:            false,
		LogLevel:        level,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

	r.Get("/", s.handleStatus)
	r.Get("/provincias", s.handleProvinces)
	r.Get("/stations/cheapest", s.handleCheapest)
	r.Get("/stations/top", s.handleTop)
	r.Get("/stations/nearby", s.handleNearby)
	r.Get("/locations/popular", s.handlePopularLocations)
	r.Post("/refresh", s.handleRefresh)

	return r
}

// Run performs the mandatory first refresh, starts the scheduled refresh
// loop and serves HTTP until the context is cancelled. A failed first
// refresh aborts startup: the caller should retry later rather than serve
// with no data.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.coord.Refresh(ctx, true); err != nil {
		return fmt.Errorf("initial refresh failed, not ready: %w", err)
	}

	s.coord.Start(ctx)
	defer s.coord.Stop()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "addr", addr, "scope", s.coord.Scope())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
