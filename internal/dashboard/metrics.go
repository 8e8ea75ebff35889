package dashboard

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type cacheMetrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	duration prometheus.Histogram
}

// NewCacheMetrics registers target cache and evaluation collectors. Collectors already
// present on the registerer are reused.
func NewCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelaudit_target_cache_hits_total",
			Help: "Report target listings served from Redis.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelaudit_target_cache_miss_total",
			Help: "Report target listings loaded from PostgreSQL.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotelaudit_status_evaluation_duration_seconds",
			Help:    "Duration of one status evaluation over hotels and targets.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	m.hits, err = registerCollector(reg, m.hits)
	if err != nil {
		return nil, err
	}
	m.misses, err = registerCollector(reg, m.misses)
	if err != nil {
		return nil, err
	}
	m.duration, err = registerCollector(reg, m.duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) observeEvaluation(d time.Duration) {
	if m != nil {
		m.duration.Observe(d.Seconds())
	}
}
