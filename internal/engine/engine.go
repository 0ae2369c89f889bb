// Package engine orchestrates a full signal-generation run: classify the
// market regime once, score every watchlist ticker against it with a
// bounded worker pool, and aggregate the records into a result bundle.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stock-signals/internal/metrics"
	"stock-signals/internal/model"
	"stock-signals/internal/regime"
	"stock-signals/internal/scoring"
)

// ErrInsufficientHistory marks a ticker whose fetched series is too short
// to score. It excludes the ticker from the run without failing the batch.
var ErrInsufficientHistory = fmt.Errorf("insufficient price history")

// WatchItem is one (ticker, sector) watchlist entry.
type WatchItem struct {
	Ticker string
	Sector string
}

// Config holds the engine's run parameters, mapped from application
// config by the caller.
type Config struct {
	Watchlist    []WatchItem
	Thresholds   scoring.Thresholds
	LookbackDays int

	IndexPrimary     string // S&P 500 proxy, e.g. "SPY"
	IndexSecondary   string // Nasdaq-100 proxy, e.g. "QQQ"
	VolatilitySymbol string // e.g. "^VIX"

	Workers      int
	FetchTimeout time.Duration
	BarCacheTTL  time.Duration // 0 disables the bar cache
}

// Engine runs the watchlist scoring pipeline.
type Engine struct {
	cfg      Config
	provider model.BarProvider
	cache    model.BundleCache // optional bar cache, may be nil
	prom     *metrics.Metrics  // optional, may be nil
	log      *slog.Logger
}

// New creates an engine. cache and prom may be nil; logger falls back to
// slog.Default.
func New(cfg Config, provider model.BarProvider, cache model.BundleCache, prom *metrics.Metrics, logger *slog.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, provider: provider, cache: cache, prom: prom, log: logger}
}

// outcome is the explicit per-ticker result: exactly one of record or err
// is set. Failures are partitioned out during the reduce, never silently
// swallowed inside the pool.
type outcome struct {
	item   WatchItem
	record *model.SignalRecord
	err    error
}

// Run executes one full signal-generation pass. The regime is classified
// exactly once and shared read-only across all workers; each worker
// writes only its own output slot, and the summary is built afterwards in
// a single-threaded reduction.
func (e *Engine) Run(ctx context.Context) (*model.ResultBundle, error) {
	started := time.Now()
	if e.prom != nil {
		e.prom.RunsTotal.Inc()
	}

	reg, err := e.classifyRegime(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: market regime: %w", err)
	}
	e.log.Info("market regime classified",
		slog.String("regime", reg.Regime),
		slog.Float64("modifier", reg.Modifier),
		slog.Float64("vix", reg.Details.VIX))
	if e.prom != nil {
		e.prom.SetRegime(reg.Regime, reg.Modifier)
	}

	now := time.Now().UTC()
	outcomes := make([]outcome, len(e.cfg.Watchlist))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				item := e.cfg.Watchlist[i]
				rec, err := e.scoreTicker(ctx, item, reg, now)
				outcomes[i] = outcome{item: item, record: rec, err: err}
			}
		}()
	}
	for i := range e.cfg.Watchlist {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// drain: remaining tickers record the cancellation
			for j := i; j < len(e.cfg.Watchlist); j++ {
				outcomes[j] = outcome{item: e.cfg.Watchlist[j], err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	bundle := &model.ResultBundle{
		MarketRegime: reg,
		Signals:      []model.SignalRecord{},
		Summary:      model.NewSummary(),
		GeneratedAt:  now,
	}

	// single-threaded reduction, watchlist order preserved
	for _, out := range outcomes {
		if out.err != nil {
			e.log.Warn("ticker skipped",
				slog.String("ticker", out.item.Ticker),
				slog.String("error", out.err.Error()))
			continue
		}
		bundle.Signals = append(bundle.Signals, *out.record)
		cat := model.Category(out.record.Signal)
		bundle.Summary[cat] = append(bundle.Summary[cat], out.record.Ticker)
		if e.prom != nil {
			e.prom.TickersScored.Inc()
			e.prom.SignalsEmitted.WithLabelValues(cat).Inc()
		}
	}

	if e.prom != nil {
		e.prom.RunDur.Observe(time.Since(started).Seconds())
	}
	e.log.Info("run complete",
		slog.Int("scored", len(bundle.Signals)),
		slog.Int("skipped", len(e.cfg.Watchlist)-len(bundle.Signals)),
		slog.Duration("elapsed", time.Since(started)))
	return bundle, nil
}

// classifyRegime fetches both index series and the volatility level, then
// classifies. Index fetch failures are fatal for the run: every ticker
// score depends on the regime.
func (e *Engine) classifyRegime(ctx context.Context) (model.RegimeInfo, error) {
	primary, err := e.fetchBars(ctx, e.cfg.IndexPrimary, 365)
	if err != nil {
		return model.RegimeInfo{}, err
	}
	secondary, err := e.fetchBars(ctx, e.cfg.IndexSecondary, 365)
	if err != nil {
		return model.RegimeInfo{}, err
	}
	vixSeries, err := e.fetchBars(ctx, e.cfg.VolatilitySymbol, 365)
	if err != nil {
		return model.RegimeInfo{}, err
	}
	return regime.Classify(primary, secondary, vixSeries.Last().Close), nil
}

// scoreTicker fetches and scores one ticker. A fetch timeout is treated
// exactly like a fetch failure: the ticker is skipped for this run.
func (e *Engine) scoreTicker(ctx context.Context, item WatchItem, reg model.RegimeInfo, now time.Time) (rec *model.SignalRecord, err error) {
	// a scoring bug on one ticker must not abort the batch
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("engine: scoring %s panicked: %v", item.Ticker, r)
			e.skip("score")
		}
	}()

	series, err := e.fetchBars(ctx, item.Ticker, e.cfg.LookbackDays)
	if err != nil {
		e.skip("fetch")
		return nil, fmt.Errorf("engine: fetch %s: %w", item.Ticker, err)
	}
	if series.Len() < model.MinHistoryBars {
		e.skip("history")
		return nil, fmt.Errorf("engine: %s: %w (%d bars)", item.Ticker, ErrInsufficientHistory, series.Len())
	}

	scoreStart := time.Now()
	record := scoring.Generate(item.Ticker, item.Sector, series, reg, e.cfg.Thresholds, now)
	if e.prom != nil {
		e.prom.ScoreDur.Observe(time.Since(scoreStart).Seconds())
	}
	return &record, nil
}

// fetchBars retrieves a series through the optional cache, applying the
// per-fetch timeout.
func (e *Engine) fetchBars(ctx context.Context, symbol string, lookbackDays int) (model.Series, error) {
	if e.cache != nil && e.cfg.BarCacheTTL > 0 {
		if cached, err := e.cache.GetBars(ctx, symbol); err == nil && cached != nil {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	series, err := e.provider.DailyBars(fetchCtx, symbol, lookbackDays)
	if e.prom != nil {
		e.prom.FetchDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if e.cache != nil && e.cfg.BarCacheTTL > 0 {
		if err := e.cache.PutBars(ctx, symbol, series, e.cfg.BarCacheTTL); err != nil {
			e.log.Warn("bar cache write failed", slog.String("symbol", symbol), slog.String("error", err.Error()))
		}
	}
	return series, nil
}

func (e *Engine) skip(reason string) {
	if e.prom != nil {
		e.prom.TickersSkipped.WithLabelValues(reason).Inc()
	}
}

// ActionableSignals filters a bundle down to non-HOLD records.
func ActionableSignals(b *model.ResultBundle) []model.SignalRecord {
	out := []model.SignalRecord{}
	for _, s := range b.Signals {
		if s.Signal != model.SignalHold {
			out = append(out, s)
		}
	}
	return out
}
