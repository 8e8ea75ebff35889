// Package dashboard serves the compliance status grid for every hotel and
// configured report target.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

// HotelLister lists hotels.
type HotelLister interface {
	ListHotels(ctx context.Context) ([]compliance.Hotel, error)
}

// TargetLister lists configured report targets.
type TargetLister interface {
	ListTargets(ctx context.Context) ([]compliance.ReportTarget, error)
}

// Service combines the hotel and target listings with the compliance engine.
type Service struct {
	hotels  HotelLister
	targets TargetLister
	engine  *compliance.Aggregator
	cache   *Cache
	metrics *cacheMetrics
	clock   func() time.Time
	logger  *slog.Logger
	group   singleflight.Group
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the evaluation clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithCache enables caching of the report target listing.
func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics records evaluation durations.
func WithMetrics(m *cacheMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the dashboard service.
func NewService(hotels HotelLister, targets TargetLister, engine *compliance.Aggregator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{hotels: hotels, targets: targets, engine: engine, clock: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status evaluates the records matching filters at the current instant. Only
// a failure to list hotels or targets is returned as an error; per-pair
// failures surface as ProcessingError records.
func (s *Service) Status(ctx context.Context, filters compliance.Filters) ([]compliance.StatusRecord, error) {
	hotels, targets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	records := s.engine.Aggregate(ctx, hotels, targets, s.clock(), filters)
	s.metrics.observeEvaluation(time.Since(start))
	return records, nil
}

// Evaluate returns the unfiltered status grid at the current instant. Nothing
// is stored.
func (s *Service) Evaluate(ctx context.Context) ([]compliance.StatusRecord, error) {
	return s.Status(ctx, compliance.Filters{})
}

// listTargets serves the target listing from the cache, falling back to
// PostgreSQL when Redis is unavailable.
func (s *Service) listTargets(ctx context.Context) ([]compliance.ReportTarget, error) {
	if !s.cache.enabled() {
		return s.targets.ListTargets(ctx)
	}
	return s.coalesce(ctx, "targets", func(ctx context.Context) ([]compliance.ReportTarget, error) {
		var loadErr error
		targets, err := s.cache.FetchTargets(ctx, func(ctx context.Context) ([]compliance.ReportTarget, error) {
			targets, err := s.targets.ListTargets(ctx)
			loadErr = err
			return targets, err
		})
		switch {
		case loadErr != nil:
			return nil, loadErr
		case err != nil && targets == nil:
			s.logger.Warn("target cache unavailable", slog.Any("error", err))
			return s.targets.ListTargets(ctx)
		case err != nil:
			s.logger.Warn("store target listing", slog.Any("error", err))
		}
		return targets, nil
	})
}

// load fetches hotels and targets concurrently.
func (s *Service) load(ctx context.Context) ([]compliance.Hotel, []compliance.ReportTarget, error) {
	var (
		hotels  []compliance.Hotel
		targets []compliance.ReportTarget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hotels, err = s.hotels.ListHotels(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: list hotels: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		targets, err = s.listTargets(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: list targets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return hotels, targets, nil
}
