// Package redis caches run output between scheduled runs: the latest
// result bundle, per-symbol bar series, and a pub/sub announcement that
// the websocket gateway relays to live clients.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stock-signals/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	latestBundleKey = "signals:latest"
	bundleChannel   = "pub:signals"
	barKeyPrefix    = "bars:"

	defaultBundleTTL = 24 * time.Hour
)

// Config configures the Redis cache.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache implements model.BundleCache on Redis.
type Cache struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates a new Cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client}, nil
}

// PutBundle stores the bundle under signals:latest and publishes it on
// pub:signals in a single pipeline.
func (c *Cache) PutBundle(ctx context.Context, b *model.ResultBundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("redis: encode bundle: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, latestBundleKey, data, defaultBundleTTL)
	pipe.Publish(ctx, bundleChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: put bundle: %w", err)
	}
	return nil
}

// LatestBundle returns the cached bundle, or nil if none is cached.
func (c *Cache) LatestBundle(ctx context.Context) (*model.ResultBundle, error) {
	data, err := c.client.Get(ctx, latestBundleKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get bundle: %w", err)
	}

	var b model.ResultBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("redis: decode bundle: %w", err)
	}
	return &b, nil
}

// PutBars caches a bar series for symbol with the given TTL.
func (c *Cache) PutBars(ctx context.Context, symbol string, s model.Series, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: encode bars %s: %w", symbol, err)
	}
	if err := c.client.Set(ctx, barKeyPrefix+symbol, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: put bars %s: %w", symbol, err)
	}
	return nil
}

// GetBars returns the cached series for symbol, or nil on miss.
func (c *Cache) GetBars(ctx context.Context, symbol string) (model.Series, error) {
	data, err := c.client.Get(ctx, barKeyPrefix+symbol).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get bars %s: %w", symbol, err)
	}

	var s model.Series
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("redis: decode bars %s: %w", symbol, err)
	}
	return s, nil
}

// Subscribe returns a channel of bundles published on pub:signals. The
// channel closes when ctx is cancelled. Malformed payloads are logged and
// skipped.
func (c *Cache) Subscribe(ctx context.Context) (<-chan *model.ResultBundle, error) {
	sub := c.client.Subscribe(ctx, bundleChannel)
	// Force the SUBSCRIBE roundtrip so connection errors surface here.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", bundleChannel, err)
	}

	out := make(chan *model.ResultBundle, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgCh := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				var b model.ResultBundle
				if err := json.Unmarshal([]byte(msg.Payload), &b); err != nil {
					log.Printf("[redis] bad bundle payload on %s: %v", bundleChannel, err)
					continue
				}
				select {
				case out <- &b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
