// signalgen runs one signal-generation pass: classify the market regime,
// score the watchlist, write signals.json, and send alerts.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"stock-signals/config"
	"stock-signals/internal/engine"
	"stock-signals/internal/export"
	"stock-signals/internal/logger"
	"stock-signals/internal/marketdata"
	"stock-signals/internal/model"
	"stock-signals/internal/notification"
	redisstore "stock-signals/internal/store/redis"
	sqlitestore "stock-signals/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outputDir := flag.String("output-dir", "", "output directory (overrides config)")
	noAlerts := flag.Bool("no-alerts", false, "skip sending alerts")
	flag.Parse()

	slogger := logger.Init("signalgen", slog.LevelInfo)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[signalgen] starting...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[signalgen] config: %v", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	ctx := logger.WithRunID(context.Background(), logger.GenerateRunID(time.Now()))

	// Redis and SQLite are optional for a one-shot run; warn and continue
	// without them.
	var cache model.BundleCache
	if rc, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}); err != nil {
		log.Printf("[signalgen] WARNING: redis unavailable: %v (continuing without cache)", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	var store model.RunStore
	if st, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath}); err != nil {
		log.Printf("[signalgen] WARNING: sqlite unavailable: %v (continuing without history)", err)
	} else {
		store = st
		defer st.Close()
	}

	eng := engine.New(engine.Config{
		Watchlist:        watchItems(cfg),
		Thresholds:       cfg.Thresholds,
		LookbackDays:     cfg.Data.LookbackDays,
		IndexPrimary:     cfg.Market.IndexPrimary,
		IndexSecondary:   cfg.Market.IndexSecondary,
		VolatilitySymbol: cfg.Market.VolatilitySymbol,
		Workers:          cfg.Engine.Workers,
		FetchTimeout:     cfg.FetchTimeout(),
	}, marketdata.NewYahooProvider(), cache, nil, slogger)

	bundle, err := eng.Run(ctx)
	if err != nil {
		log.Fatalf("[signalgen] run failed: %v", err)
	}

	path, err := export.WriteBundle(cfg.Output.Dir, bundle)
	if err != nil {
		log.Fatalf("[signalgen] export: %v", err)
	}
	log.Printf("[signalgen] wrote %s (%d signals, regime %s)",
		path, len(bundle.Signals), bundle.MarketRegime.Regime)

	for _, rec := range engine.ActionableSignals(bundle) {
		log.Printf("[signalgen]\n%s", notification.SignalText(rec))
	}

	if cache != nil {
		if err := cache.PutBundle(ctx, bundle); err != nil {
			log.Printf("[signalgen] WARNING: bundle cache write failed: %v", err)
		}
	}
	if store != nil {
		if err := store.SaveRun(ctx, bundle); err != nil {
			log.Printf("[signalgen] WARNING: run history write failed: %v", err)
		}
	}

	if !*noAlerts {
		sendAlerts(ctx, cfg, bundle)
	}

	log.Println("[signalgen] complete.")
}

func watchItems(cfg *config.Config) []engine.WatchItem {
	flat := cfg.FlattenWatchlist()
	items := make([]engine.WatchItem, len(flat))
	for i, it := range flat {
		items[i] = engine.WatchItem{Ticker: it.Ticker, Sector: it.Sector}
	}
	return items
}

func sendAlerts(ctx context.Context, cfg *config.Config, bundle *model.ResultBundle) {
	notifiers := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		notifiers = append(notifiers,
			notification.NewTelegramNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID))
	}
	if cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Alerts.Webhook.URL))
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	status := notification.Broadcast(sendCtx, notifiers, notification.RunAlert(bundle))
	for name, err := range status {
		if err != nil {
			log.Printf("[signalgen] alert via %s failed: %v", name, err)
		} else {
			log.Printf("[signalgen] alert via %s sent", name)
		}
	}
}
