package app

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/dashboard"
	"github.com/hotel-audit/hotelaudit/internal/hotels"
	"github.com/hotel-audit/hotelaudit/internal/reporttargets"
	"github.com/hotel-audit/hotelaudit/internal/submissions"
)

// Services bundles the domain services shared by the API, the worker and the CLI.
type Services struct {
	Hotels      *hotels.Repository
	Targets     *reporttargets.Service
	Dashboard   *dashboard.Service
	TargetCache *dashboard.Cache
}

// NewServices wires repositories, the compliance engine and the target cache.
// A nil redisClient disables target caching; a nil registerer skips dashboard metrics.
func NewServices(cfg *Config, pool *pgxpool.Pool, redisClient *redis.Client, reg prometheus.Registerer, logger *slog.Logger, extra ...dashboard.Option) (*Services, error) {
	if err := compliance.ValidateRegistry(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	lookup := submissions.NewRepository(pool, submissions.Options{
		Retries: cfg.SubmissionLookupRetries,
		Backoff: cfg.SubmissionLookupBackoff,
		Logger:  logger,
	})
	engine := compliance.NewAggregator(lookup, compliance.AggregatorConfig{
		Concurrency: cfg.ComplianceConcurrency,
		Timeout:     cfg.ComplianceTimeout,
		Location:    loc,
		Logger:      logger,
	})

	var targetCache *dashboard.Cache
	opts := []dashboard.Option{}
	if redisClient != nil {
		targetCache = dashboard.NewCache(redisClient, cfg.TargetCacheTTL)
		opts = append(opts, dashboard.WithCache(targetCache))
	}
	if reg != nil {
		metrics, err := dashboard.NewCacheMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("app: cache metrics: %w", err)
		}
		targetCache.WithMetrics(metrics)
		opts = append(opts, dashboard.WithMetrics(metrics))
	}

	hotelRepo := hotels.NewRepository(pool)
	targetRepo := reporttargets.NewRepository(pool)
	return &Services{
		Hotels:      hotelRepo,
		Targets:     reporttargets.NewService(targetRepo, targetCache, logger),
		Dashboard:   dashboard.NewService(hotelRepo, targetRepo, engine, logger, append(opts, extra...)...),
		TargetCache: targetCache,
	}, nil
}
