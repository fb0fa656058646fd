package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/americano/internal/config"
	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	cacherepo "github.com/riskibarqy/americano/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/americano/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/americano/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/americano/internal/interfaces/httpapi"
	"github.com/riskibarqy/americano/internal/observability"
	"github.com/riskibarqy/americano/internal/platform/cache"
	"github.com/riskibarqy/americano/internal/platform/database"
	idgen "github.com/riskibarqy/americano/internal/platform/id"
	"github.com/riskibarqy/americano/internal/platform/logging"
	"github.com/riskibarqy/americano/internal/platform/resilience"
	"github.com/riskibarqy/americano/internal/usecase"
)

// NewHTTPServer wires storage, the tournament service and the router. The returned cleanup
// releases storage connections and must run after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	repo, cleanup, err := newTournamentRepository(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, nil, err
	}

	var (
		schedules *cache.Store[americano.Schedule]
		recorder  usecase.GenerationRecorder
		metricsH  http.Handler
	)
	if cfg.CacheEnabled {
		schedules = cache.NewStore[americano.Schedule](cfg.CacheTTL)
	}
	if metrics != nil {
		recorder = metrics
		metricsH = metrics.Handler()
		if schedules != nil {
			metrics.RegisterCache("schedules", schedules.Stats)
		}
	}

	service := usecase.NewTournamentService(
		repo,
		idgen.NewUUIDGenerator(),
		schedules,
		recorder,
		cfg.PreviewMaxWorkers,
		logger.Named("usecase"),
	)
	handler := httpapi.NewHandler(service, logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, logger.Named("http"), cfg.CORSAllowedOrigins, metricsH)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, cleanup, nil
}

func newTournamentRepository(
	ctx context.Context,
	cfg config.Config,
	logger *logging.Logger,
	metrics *observability.Metrics,
) (tournament.Repository, func() error, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		logger.Info("storage configured", "driver", config.StorageMemory)
		return memory.NewTournamentRepository(), func() error { return nil }, nil
	}

	db, err := database.Open(ctx, database.Config{
		URL:                         cfg.DBURL,
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		MaxOpenConns:                cfg.DBMaxOpenConns,
	})
	if err != nil {
		return nil, nil, err
	}

	breaker := resilience.BreakerFromConfig(cfg.DBCircuit)
	if breaker != nil {
		breaker.OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("postgres circuit breaker state changed", "from", string(from), "to", string(to))
		})
	}

	var repo tournament.Repository = postgres.NewTournamentRepository(db, breaker)
	if cfg.CacheEnabled {
		cached := cacherepo.NewTournamentRepository(repo, cfg.CacheTTL)
		if metrics != nil {
			metrics.RegisterCache("tournaments", cached.Stats)
		}
		repo = cached
	}
	if metrics != nil {
		metrics.RegisterCircuitBreaker("postgres", breaker)
	}

	logger.Info("storage configured",
		"driver", config.StoragePostgres,
		"database", database.NameFromURL(cfg.DBURL),
		"circuit_breaker", breaker != nil,
		"cache", cfg.CacheEnabled,
	)
	return repo, db.Close, nil
}
