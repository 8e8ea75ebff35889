package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

const (
	cacheVersionKey = "dashboard:targets:version"
	targetsPrefix   = "dashboard:targets:list"

	// BumpChannel carries report target changes between API replicas and the worker.
	BumpChannel = "report_targets.bump"
)

// Cache keeps the report target listing in Redis under a global version.
// Only inputs are cached; statuses are always evaluated at request time.
// Bumping the version orphans the stored listing; TTL reclaims it.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *cacheMetrics
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithMetrics attaches hit and miss counters.
func (c *Cache) WithMetrics(m *cacheMetrics) *Cache {
	if c != nil {
		c.metrics = m
	}
	return c
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Version returns the current listing version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) targetsKey(ctx context.Context) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", targetsPrefix, ver), nil
}

// FetchTargets returns the cached target listing or loads and stores it.
func (c *Cache) FetchTargets(ctx context.Context, load func(context.Context) ([]compliance.ReportTarget, error)) ([]compliance.ReportTarget, error) {
	if !c.enabled() {
		return load(ctx)
	}
	key, err := c.targetsKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard cache: version: %w", err)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var targets []compliance.ReportTarget
		if err := json.Unmarshal(payload, &targets); err == nil {
			c.metrics.hit()
			return targets, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("dashboard cache: get: %w", err)
	}
	c.metrics.miss()

	targets, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		return nil, fmt.Errorf("dashboard cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return targets, fmt.Errorf("dashboard cache: set: %w", err)
	}
	return targets, nil
}

// Bump invalidates the stored listing and announces the new version. Only
// report target writes call it.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows versions published by Bump until ctx is
// cancelled. The returned channel receives each observed version.
func (c *Cache) ListenForInvalidation(ctx context.Context) (<-chan int64, error) {
	if !c.enabled() {
		return nil, nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	seen := make(chan int64, 1)
	go func() {
		defer close(seen)
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				select {
				case seen <- ver:
				default:
				}
			}
		}
	}()
	return seen, nil
}
