// Package config loads application configuration from a YAML file
// (watchlist, thresholds, schedule) with environment-variable overrides
// for infrastructure endpoints. The loaded value is immutable and passed
// down explicitly — nothing reads configuration through globals.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"stock-signals/internal/scoring"
)

// Config holds all application configuration.
type Config struct {
	// Watchlist maps sector → tickers.
	Watchlist map[string][]string `yaml:"watchlist"`

	Thresholds scoring.Thresholds `yaml:"thresholds"`

	Data struct {
		LookbackDays int `yaml:"lookback_days"`
	} `yaml:"data"`

	Market struct {
		IndexPrimary     string `yaml:"index_primary"`   // S&P 500 proxy
		IndexSecondary   string `yaml:"index_secondary"` // Nasdaq-100 proxy
		VolatilitySymbol string `yaml:"volatility_symbol"`
	} `yaml:"market"`

	Engine struct {
		Workers          int `yaml:"workers"`
		FetchTimeoutSecs int `yaml:"fetch_timeout_seconds"`
	} `yaml:"engine"`

	Schedule struct {
		Timezone string   `yaml:"timezone"`
		Checks   []string `yaml:"checks"` // "HH:MM" local clock times
	} `yaml:"schedule"`

	Alerts struct {
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Webhook struct {
			URL string `yaml:"url"`
		} `yaml:"webhook"`
	} `yaml:"alerts"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	// Infrastructure endpoints, environment-only.
	RedisAddr     string `yaml:"-"`
	RedisPassword string `yaml:"-"`
	SQLitePath    string `yaml:"-"`
	MetricsAddr   string `yaml:"-"`
	ListenAddr    string `yaml:"-"`
}

// WatchItem is one flattened watchlist entry.
type WatchItem struct {
	Ticker string
	Sector string
}

// Load reads the YAML config at path and applies defaults and environment
// overrides. A missing file is an error; missing individual keys are not.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Thresholds = c.Thresholds.Normalize()

	if c.Data.LookbackDays <= 0 {
		c.Data.LookbackDays = 365
	}
	if c.Market.IndexPrimary == "" {
		c.Market.IndexPrimary = "SPY"
	}
	if c.Market.IndexSecondary == "" {
		c.Market.IndexSecondary = "QQQ"
	}
	if c.Market.VolatilitySymbol == "" {
		c.Market.VolatilitySymbol = "^VIX"
	}
	if c.Engine.Workers <= 0 {
		c.Engine.Workers = 4
	}
	if c.Engine.FetchTimeoutSecs <= 0 {
		c.Engine.FetchTimeoutSecs = 10
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if len(c.Schedule.Checks) == 0 {
		c.Schedule.Checks = []string{"09:35", "12:30", "15:00"}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

func (c *Config) applyEnv() {
	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisPassword = getEnv("REDIS_PASSWORD", "")
	c.SQLitePath = getEnv("SQLITE_PATH", "data/signals.db")
	c.MetricsAddr = getEnv("METRICS_ADDR", ":9090")
	c.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	// alert credentials may come from the environment instead of the file
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Alerts.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Alerts.Telegram.ChatID = v
	}
	if v := os.Getenv("ALERT_WEBHOOK_URL"); v != "" {
		c.Alerts.Webhook.URL = v
	}
}

// FlattenWatchlist returns (ticker, sector) pairs sorted by sector then
// ticker so run order is deterministic regardless of map iteration.
func (c *Config) FlattenWatchlist() []WatchItem {
	sectors := make([]string, 0, len(c.Watchlist))
	for sector := range c.Watchlist {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	items := []WatchItem{}
	for _, sector := range sectors {
		for _, ticker := range c.Watchlist[sector] {
			items = append(items, WatchItem{Ticker: ticker, Sector: sector})
		}
	}
	return items
}

// FetchTimeout returns the per-ticker fetch deadline as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Engine.FetchTimeoutSecs) * time.Second
}

// ScheduleLocation resolves the configured timezone.
func (c *Config) ScheduleLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %s: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// CheckTimes parses the configured "HH:MM" check times.
func (c *Config) CheckTimes() ([]int, error) {
	out := make([]int, 0, len(c.Schedule.Checks))
	for _, s := range c.Schedule.Checks {
		if len(s) != 5 || s[2] != ':' {
			return nil, fmt.Errorf("config: bad check time %q", s)
		}
		h, err1 := strconv.Atoi(s[:2])
		m, err2 := strconv.Atoi(s[3:])
		if err1 != nil || err2 != nil || h > 23 || m > 59 {
			return nil, fmt.Errorf("config: bad check time %q", s)
		}
		out = append(out, h*60+m)
	}
	sort.Ints(out)
	return out, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
