package scoring

import (
	"time"

	"stock-signals/internal/indicator"
	"stock-signals/internal/model"
	"stock-signals/internal/regime"
)

// weights for the composite sum. They total 1.0; momentum indicators
// (MACD, moving averages) carry the most weight.
var weights = map[string]float64{
	"rsi":        0.20,
	"macd":       0.25,
	"bollinger":  0.15,
	"ma":         0.25,
	"volume":     0.10,
	"stochastic": 0.05,
}

// Composite signal thresholds on the regime-adjusted score. Boundaries
// are inclusive: exactly 0.5 is a STRONG BUY, exactly 0.2 a BUY.
const (
	strongThreshold = 0.5
	actionThreshold = 0.2
)

// ATR multiples for entry/exit bands.
const (
	buyLowATR   = 1.5
	buyHighATR  = 0.5
	sellLowATR  = 0.5
	sellHighATR = 2.0
)

// RawScore combines individual scores into the weighted composite.
func RawScore(scores map[string]float64) float64 {
	sum := 0.0
	for name, w := range weights {
		sum += scores[name] * w
	}
	return sum
}

// Label maps a regime-adjusted composite score to a signal label.
func Label(adjusted float64) string {
	switch {
	case adjusted >= strongThreshold:
		return model.SignalStrongBuy
	case adjusted >= actionThreshold:
		return model.SignalBuy
	case adjusted <= -strongThreshold:
		return model.SignalStrongSell
	case adjusted <= -actionThreshold:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// ApplyRegimeOverride downgrades buy-side labels in hostile regimes:
// CRASH turns any buy into HOLD, BEARISH turns STRONG BUY into BUY.
// Sell-side labels are never dampened in bullish regimes — the policy is
// intentionally asymmetric, capping downside-chasing buys only.
func ApplyRegimeOverride(label, marketRegime string) string {
	switch marketRegime {
	case regime.Crash:
		if label == model.SignalBuy || label == model.SignalStrongBuy {
			return model.SignalHold
		}
	case regime.Bearish:
		if label == model.SignalStrongBuy {
			return model.SignalBuy
		}
	}
	return label
}

// Confidence maps |adjusted| to a 0-100 percentage with a floor of 20.
func Confidence(adjusted float64) int {
	c := abs(adjusted)*100 + 20
	if c > 100 {
		c = 100
	}
	return int(c)
}

// PriceTargets derives ATR-based entry and exit bands around the current
// price. Always computed, independent of the signal label.
func PriceTargets(price, atr float64) (buy, sell model.PriceRange) {
	buy = model.PriceRange{
		Low:  model.Round(price-atr*buyLowATR, 2),
		High: model.Round(price-atr*buyHighATR, 2),
	}
	sell = model.PriceRange{
		Low:  model.Round(price+atr*sellLowATR, 2),
		High: model.Round(price+atr*sellHighATR, 2),
	}
	return buy, sell
}

// Generate computes the full signal record for one ticker from its
// sanitized series and the shared market regime. Deterministic: identical
// series, thresholds, regime, and timestamp produce an identical record.
func Generate(ticker, sector string, series model.Series, reg model.RegimeInfo, th Thresholds, now time.Time) model.SignalRecord {
	snap := indicator.ComputeSnapshot(series)
	scores := ScoreAll(snap, th)

	adjusted := RawScore(scores) * reg.Modifier
	label := ApplyRegimeOverride(Label(adjusted), reg.Regime)

	buyRange, sellRange := PriceTargets(snap.Price, snap.ATR)

	dailyChange := 0.0
	if snap.PrevClose != 0 {
		dailyChange = (snap.Price - snap.PrevClose) / snap.PrevClose * 100
	}

	rounded := make(map[string]float64, len(scores))
	for name, v := range scores {
		rounded[name] = model.Round(v, 3)
	}

	vsSMA50 := 0.0
	if snap.SMA50 != 0 {
		vsSMA50 = (snap.Price/snap.SMA50 - 1) * 100
	}

	return model.SignalRecord{
		Ticker:         ticker,
		Sector:         sector,
		Signal:         label,
		Confidence:     Confidence(adjusted),
		CompositeScore: model.Round(adjusted, 3),
		CurrentPrice:   model.Round(snap.Price, 2),
		DailyChange:    model.Round(dailyChange, 2),
		BuyRange:       buyRange,
		SellRange:      sellRange,
		Support:        model.Round(snap.Support, 2),
		Resistance:     model.Round(snap.Resistance, 2),
		Indicators: model.IndicatorSummary{
			RSI:         model.Round(snap.RSI, 1),
			MACDHist:    model.Round(snap.MACDHist, 4),
			BBPosition:  model.Round(snap.BBPosition()*100, 1),
			VsSMA50:     model.Round(vsSMA50, 2),
			VolumeRatio: model.Round(snap.VolumeRatio, 2),
			StochK:      model.Round(snap.StochK, 1),
		},
		IndividualScores: rounded,
		Timestamp:        now,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
