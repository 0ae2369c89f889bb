package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  technology: [AAPL, MSFT]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Thresholds.RSIOversold != 30 || cfg.Thresholds.RSIOverbought != 70 || cfg.Thresholds.VolumeSurge != 1.5 {
		t.Errorf("expected default thresholds, got %+v", cfg.Thresholds)
	}
	if cfg.Data.LookbackDays != 365 {
		t.Errorf("expected default lookback 365, got %d", cfg.Data.LookbackDays)
	}
	if cfg.Market.IndexPrimary != "SPY" || cfg.Market.IndexSecondary != "QQQ" || cfg.Market.VolatilitySymbol != "^VIX" {
		t.Errorf("expected default index symbols, got %+v", cfg.Market)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("expected default 4 workers, got %d", cfg.Engine.Workers)
	}
	if len(cfg.Schedule.Checks) != 3 {
		t.Errorf("expected 3 default check times, got %v", cfg.Schedule.Checks)
	}
}

func TestLoad_PartialThresholdsKeepDefaults(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  energy: [XOM]
thresholds:
  rsi_oversold: 25
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.RSIOversold != 25 {
		t.Errorf("expected override 25, got %v", cfg.Thresholds.RSIOversold)
	}
	if cfg.Thresholds.RSIOverbought != 70 || cfg.Thresholds.VolumeSurge != 1.5 {
		t.Errorf("expected remaining defaults, got %+v", cfg.Thresholds)
	}
}

func TestFlattenWatchlist_DeterministicOrder(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  technology: [NVDA, AAPL]
  energy: [XOM]
  finance: [JPM, GS]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	items := cfg.FlattenWatchlist()
	want := []WatchItem{
		{"XOM", "energy"},
		{"JPM", "finance"}, {"GS", "finance"},
		{"NVDA", "technology"}, {"AAPL", "technology"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("index %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestCheckTimes(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  technology: [AAPL]
schedule:
  checks: ["15:00", "09:35"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	times, err := cfg.CheckTimes()
	if err != nil {
		t.Fatalf("check times: %v", err)
	}
	if len(times) != 2 || times[0] != 9*60+35 || times[1] != 15*60 {
		t.Errorf("expected sorted minutes [575 900], got %v", times)
	}
}

func TestCheckTimes_Invalid(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  technology: [AAPL]
schedule:
  checks: ["9am"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.CheckTimes(); err == nil {
		t.Error("expected error for malformed check time")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
