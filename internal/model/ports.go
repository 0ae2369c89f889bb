package model

import (
	"context"
	"time"
)

// ── Port Interfaces ──
// These decouple the scoring engine from concrete collaborators
// (HTTP market data, Redis, SQLite). Each implementation satisfies one.

// BarProvider fetches daily OHLCV history. Implementations must return
// chronological, sanitized series and honor ctx cancellation/deadlines.
type BarProvider interface {
	// DailyBars returns up to lookbackDays of daily bars for symbol,
	// oldest first, ending at the most recent completed session.
	DailyBars(ctx context.Context, symbol string, lookbackDays int) (Series, error)
}

// BundleCache stores the latest result bundle and per-symbol bar series
// for reuse between scheduled runs.
type BundleCache interface {
	// PutBundle stores the run output as the latest bundle and announces
	// it to any live subscribers.
	PutBundle(ctx context.Context, b *ResultBundle) error

	// LatestBundle returns the most recent bundle, or nil if none cached.
	LatestBundle(ctx context.Context) (*ResultBundle, error)

	// PutBars caches a fetched series for reuse within the TTL.
	PutBars(ctx context.Context, symbol string, s Series, ttl time.Duration) error

	// GetBars returns a cached series, or nil on miss.
	GetBars(ctx context.Context, symbol string) (Series, error)

	// Close releases underlying resources.
	Close() error
}

// RunStore persists completed run bundles for the history API.
type RunStore interface {
	// SaveRun persists one bundle.
	SaveRun(ctx context.Context, b *ResultBundle) error

	// RecentRuns returns the newest n bundles, most recent first.
	RecentRuns(ctx context.Context, n int) ([]*ResultBundle, error)

	// Close releases underlying resources.
	Close() error
}
