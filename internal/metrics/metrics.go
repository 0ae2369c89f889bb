// Package metrics exposes Prometheus instrumentation for the signal
// engine plus a small /metrics + /healthz HTTP server.
package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	RunsTotal      prometheus.Counter
	RunDur         prometheus.Histogram
	TickersScored  prometheus.Counter
	TickersSkipped *prometheus.CounterVec // labels: reason=fetch|history|score
	FetchDur       prometheus.Histogram
	ScoreDur       prometheus.Histogram
	SignalsEmitted *prometheus.CounterVec // labels: category
	RegimeState    prometheus.Gauge       // 0=BULLISH 1=NEUTRAL 2=BEARISH 3=CRASH
	RegimeModifier prometheus.Gauge
	AlertsSent     *prometheus.CounterVec // labels: channel
	AlertFailures  *prometheus.CounterVec // labels: channel
	BreakerState   prometheus.Gauge // provider breaker: 0=closed 1=open 2=half-open
}

// NewMetrics registers and returns all engine metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_runs_total",
			Help: "Total signal-generation runs started",
		}),
		RunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_run_duration_seconds",
			Help:    "Wall time of a full watchlist run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		TickersScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_tickers_scored_total",
			Help: "Tickers that produced a signal record",
		}),
		TickersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_tickers_skipped_total",
			Help: "Tickers excluded from a run",
		}, []string{"reason"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_fetch_duration_seconds",
			Help:    "Per-ticker market data fetch latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ScoreDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_score_duration_seconds",
			Help:    "Per-ticker indicator + scoring compute time",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_emitted_total",
			Help: "Signals emitted by category",
		}, []string{"category"}),
		RegimeState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signals_market_regime",
			Help: "Current market regime (0=BULLISH 1=NEUTRAL 2=BEARISH 3=CRASH)",
		}),
		RegimeModifier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signals_regime_modifier",
			Help: "Current regime damping modifier",
		}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_alerts_sent_total",
			Help: "Alerts delivered per channel",
		}, []string{"channel"}),
		AlertFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_alert_failures_total",
			Help: "Alert delivery failures per channel",
		}, []string{"channel"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signals_provider_breaker_state",
			Help: "Market data circuit breaker (0=closed 1=open 2=half-open)",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal, m.RunDur, m.TickersScored, m.TickersSkipped,
		m.FetchDur, m.ScoreDur, m.SignalsEmitted,
		m.RegimeState, m.RegimeModifier,
		m.AlertsSent, m.AlertFailures, m.BreakerState,
	)
	return m
}

// SetRegime records the classified regime on the gauges.
func (m *Metrics) SetRegime(regime string, modifier float64) {
	states := map[string]float64{"BULLISH": 0, "NEUTRAL": 1, "BEARISH": 2, "CRASH": 3}
	m.RegimeState.Set(states[regime])
	m.RegimeModifier.Set(modifier)
}

// Server wraps the /metrics + /healthz HTTP listener.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer builds the metrics server on addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	s.srv.Shutdown(shutdownCtx)
}
