package model

import (
	"encoding/json"
	"math"
	"time"
)

// Signal labels. STRONG BUY / STRONG SELL carry a space to match the
// export contract consumed by the dashboard and alert templates.
const (
	SignalStrongBuy  = "STRONG BUY"
	SignalBuy        = "BUY"
	SignalHold       = "HOLD"
	SignalSell       = "SELL"
	SignalStrongSell = "STRONG SELL"
)

// SummaryCategories lists the summary bucket keys in display order.
var SummaryCategories = []string{"strong_buy", "buy", "hold", "sell", "strong_sell"}

// Category maps a signal label to its summary bucket key
// ("STRONG BUY" → "strong_buy"). Unknown labels map to "hold".
func Category(signal string) string {
	switch signal {
	case SignalStrongBuy:
		return "strong_buy"
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	case SignalStrongSell:
		return "strong_sell"
	default:
		return "hold"
	}
}

// PriceRange is an ATR-derived entry or exit band.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// IndicatorSummary is the subset of indicator values exported with each
// signal record for display purposes.
type IndicatorSummary struct {
	RSI         float64 `json:"rsi"`          // 1dp
	MACDHist    float64 `json:"macd_hist"`    // 4dp
	BBPosition  float64 `json:"bb_position"`  // % within bands, 1dp
	VsSMA50     float64 `json:"vs_sma50"`     // % vs 50-day SMA, 2dp
	VolumeRatio float64 `json:"volume_ratio"` // 2dp
	StochK      float64 `json:"stoch_k"`      // 1dp
}

// SignalRecord is the per-ticker output of a scoring run.
// Signal is a deterministic function of composite score and regime;
// confidence is monotonic in |composite score|.
type SignalRecord struct {
	Ticker           string             `json:"ticker"`
	Sector           string             `json:"sector"`
	Signal           string             `json:"signal"`
	Confidence       int                `json:"confidence"`      // 0-100
	CompositeScore   float64            `json:"composite_score"` // regime-adjusted, 3dp
	CurrentPrice     float64            `json:"current_price"`
	DailyChange      float64            `json:"daily_change"` // %
	BuyRange         PriceRange         `json:"buy_range"`
	SellRange        PriceRange         `json:"sell_range"`
	Support          float64            `json:"support"`
	Resistance       float64            `json:"resistance"`
	Indicators       IndicatorSummary   `json:"indicators"`
	IndividualScores map[string]float64 `json:"individual_scores"` // scorer name → 3dp
	Timestamp        time.Time          `json:"timestamp"`
}

// RegimeDetails carries the market-level metrics behind a classification.
// Field names follow the export contract (primary index = SPY proxy,
// secondary = QQQ proxy).
type RegimeDetails struct {
	SPYPrice   float64 `json:"spy_price"`
	SPYvs50MA  float64 `json:"spy_vs_50ma"`  // % above/below 50-day SMA
	SPYvs200MA float64 `json:"spy_vs_200ma"` // % above/below 200-day SMA
	QQQPrice   float64 `json:"qqq_price"`
	QQQvs50MA  float64 `json:"qqq_vs_50ma"`
	VIX        float64 `json:"vix"`
}

// RegimeInfo is the classified market state shared read-only by every
// per-ticker scoring pass in a run.
type RegimeInfo struct {
	Regime   string        `json:"regime"` // BULLISH | NEUTRAL | BEARISH | CRASH
	Modifier float64       `json:"modifier"`
	Details  RegimeDetails `json:"details"`
}

// ResultBundle aggregates one full run: regime, per-ticker records, and a
// summary partitioning exactly the successfully scored tickers.
type ResultBundle struct {
	MarketRegime RegimeInfo          `json:"market_regime"`
	Signals      []SignalRecord      `json:"signals"`
	Summary      map[string][]string `json:"summary"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// NewSummary returns an empty summary with all category keys present so
// the export always contains the full set of buckets.
func NewSummary() map[string][]string {
	m := make(map[string][]string, len(SummaryCategories))
	for _, c := range SummaryCategories {
		m[c] = []string{}
	}
	return m
}

// JSON returns the indented JSON encoding of the bundle.
func (b *ResultBundle) JSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Round rounds to the given number of decimal places. All exported floats
// pass through this so the JSON bundle is stable across runs.
func Round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
