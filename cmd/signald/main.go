// signald is the long-running daemon: it fires signal runs on the
// configured schedule, serves the HTTP API and websocket feed, and
// exposes Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-signals/config"
	"stock-signals/internal/api"
	"stock-signals/internal/engine"
	"stock-signals/internal/export"
	"stock-signals/internal/gateway"
	"stock-signals/internal/logger"
	"stock-signals/internal/marketdata"
	"stock-signals/internal/markethours"
	"stock-signals/internal/metrics"
	"stock-signals/internal/model"
	"stock-signals/internal/notification"
	"stock-signals/internal/schedule"
	redisstore "stock-signals/internal/store/redis"
	sqlitestore "stock-signals/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	runOnStart := flag.Bool("run-on-start", false, "fire one run immediately at startup")
	flag.Parse()

	slogger := logger.Init("signald", slog.LevelInfo)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[signald] starting...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[signald] config: %v", err)
	}

	loc, err := cfg.ScheduleLocation()
	if err != nil {
		log.Fatalf("[signald] %v", err)
	}
	checks, err := cfg.CheckTimes()
	if err != nil {
		log.Fatalf("[signald] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Metrics ----
	prom := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	// ---- Stores ----
	var cache model.BundleCache
	var redisCache *redisstore.Cache
	if rc, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}); err != nil {
		log.Printf("[signald] WARNING: redis unavailable: %v (continuing without cache)", err)
	} else {
		cache = rc
		redisCache = rc
		defer rc.Close()
	}

	var store model.RunStore
	if st, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath}); err != nil {
		log.Printf("[signald] WARNING: sqlite unavailable: %v (continuing without history)", err)
	} else {
		store = st
		defer st.Close()
	}

	// ---- Market data provider ----
	provider := marketdata.NewYahooProvider()
	provider.Breaker().OnStateChange = func(from, to marketdata.State) {
		log.Printf("[signald] provider breaker %s -> %s", from, to)
		prom.BreakerState.Set(float64(to))
	}

	// ---- Engine ----
	eng := engine.New(engine.Config{
		Watchlist:        watchItems(cfg),
		Thresholds:       cfg.Thresholds,
		LookbackDays:     cfg.Data.LookbackDays,
		IndexPrimary:     cfg.Market.IndexPrimary,
		IndexSecondary:   cfg.Market.IndexSecondary,
		VolatilitySymbol: cfg.Market.VolatilitySymbol,
		Workers:          cfg.Engine.Workers,
		FetchTimeout:     cfg.FetchTimeout(),
		BarCacheTTL:      15 * time.Minute,
	}, provider, cache, prom, slogger)

	// ---- Websocket gateway ----
	hub := gateway.NewHub()
	if redisCache != nil {
		// Other processes (e.g. a signalgen cron) publish runs too; relay
		// everything that lands on the channel.
		if bundles, err := redisCache.Subscribe(ctx); err != nil {
			log.Printf("[signald] WARNING: pubsub unavailable: %v", err)
		} else {
			go hub.Run(ctx, bundles)
		}
	}

	// ---- HTTP API ----
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(cache, store))
	mux.HandleFunc("/ws", hub.HandleWS)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[signald] api listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[signald] api server: %v", err)
		}
	}()

	// ---- Alerting ----
	notifiers := buildNotifiers(cfg)

	job := func(ctx context.Context) {
		runCtx := logger.WithRunID(ctx, logger.GenerateRunID(time.Now()))
		bundle, err := eng.Run(runCtx)
		if err != nil {
			log.Printf("[signald] run failed: %v", err)
			return
		}

		if path, err := export.WriteBundle(cfg.Output.Dir, bundle); err != nil {
			log.Printf("[signald] export: %v", err)
		} else {
			log.Printf("[signald] wrote %s (%d signals, regime %s)",
				path, len(bundle.Signals), bundle.MarketRegime.Regime)
		}

		if cache != nil {
			if err := cache.PutBundle(runCtx, bundle); err != nil {
				log.Printf("[signald] bundle cache write failed: %v", err)
			}
		} else {
			// No pubsub relay without redis; feed the hub directly.
			hub.Broadcast(bundle)
		}
		if store != nil {
			if err := store.SaveRun(runCtx, bundle); err != nil {
				log.Printf("[signald] run history write failed: %v", err)
			}
		}

		sendCtx, cancel := context.WithTimeout(runCtx, 30*time.Second)
		defer cancel()
		status := notification.Broadcast(sendCtx, notifiers, notification.RunAlert(bundle))
		for name, err := range status {
			if err != nil {
				prom.AlertFailures.WithLabelValues(name).Inc()
			} else {
				prom.AlertsSent.WithLabelValues(name).Inc()
			}
		}
	}

	// ---- Scheduler ----
	sched := schedule.New(loc, checks, job, slogger)
	go sched.Run(ctx)

	if *runOnStart {
		go job(ctx)
	}

	log.Printf("[signald] ready: %d tickers, checks at %v (%s)",
		len(cfg.FlattenWatchlist()), cfg.Schedule.Checks, cfg.Schedule.Timezone)
	log.Printf("[signald] %s", markethours.StatusString(time.Now()))

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[signald] shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)

	log.Println("[signald] shutdown complete.")
}

func watchItems(cfg *config.Config) []engine.WatchItem {
	flat := cfg.FlattenWatchlist()
	items := make([]engine.WatchItem, len(flat))
	for i, it := range flat {
		items[i] = engine.WatchItem{Ticker: it.Ticker, Sector: it.Sector}
	}
	return items
}

func buildNotifiers(cfg *config.Config) []notification.Notifier {
	notifiers := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		notifiers = append(notifiers,
			notification.NewTelegramNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID))
	}
	if cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Alerts.Webhook.URL))
	}
	return notifiers
}
