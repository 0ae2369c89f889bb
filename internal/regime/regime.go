// Package regime classifies overall market conditions to contextualize
// individual stock signals. One classification is computed per run and
// shared read-only by every per-ticker scoring pass.
package regime

import (
	"math"

	"stock-signals/internal/indicator"
	"stock-signals/internal/model"
)

// Regime labels.
const (
	Bullish = "BULLISH"
	Neutral = "NEUTRAL"
	Bearish = "BEARISH"
	Crash   = "CRASH"
)

// VIX bands used by the classifier.
const (
	vixNormalMax   = 25.0 // below: low/normal volatility
	vixElevatedMax = 35.0 // [25,35): elevated; >=35: extreme
)

// modifiers dampen raw composite scores per regime.
var modifiers = map[string]float64{
	Bullish: 1.0,
	Neutral: 0.7,
	Bearish: 0.4,
	Crash:   0.1,
}

// Modifier returns the damping multiplier for a regime. The 0.5 fallback
// for an unknown label should be unreachable — Classify only emits the
// four defined regimes.
func Modifier(regime string) float64 {
	if m, ok := modifiers[regime]; ok {
		return m
	}
	return 0.5
}

// Classify determines the market regime from two broad-index series
// (primary = S&P 500 proxy, secondary = Nasdaq-100 proxy) and the current
// volatility-index level. First matching rule wins:
//
//  1. VIX >= 35                                        → CRASH
//  2. primary below both 50/200-day SMA, VIX in [25,35) → BEARISH
//  3. primary above both SMAs, 50 above 200, VIX < 25   → BULLISH when the
//     secondary is above its 50-day SMA, else NEUTRAL
//  4. primary above its 50-day OR 200-day SMA           → NEUTRAL
//  5. otherwise                                         → BEARISH
func Classify(primary, secondary model.Series, vix float64) model.RegimeInfo {
	primaryCloses := primary.Closes()
	secondaryCloses := secondary.Closes()

	primaryClose := lastOf(primaryCloses)
	primaryMA50 := lastSMA(primaryCloses, 50)
	primaryMA200 := lastSMA(primaryCloses, 200)

	secondaryClose := lastOf(secondaryCloses)
	secondaryMA50 := lastSMA(secondaryCloses, 50)

	// a close never counts as above an unavailable average
	primaryAbove50 := above(primaryClose, primaryMA50)
	primaryAbove200 := above(primaryClose, primaryMA200)
	primary50Above200 := above(primaryMA50, primaryMA200)
	secondaryAbove50 := above(secondaryClose, secondaryMA50)

	vixCalm := vix < vixNormalMax
	vixElevated := vix >= vixNormalMax && vix < vixElevatedMax
	vixExtreme := vix >= vixElevatedMax

	var label string
	switch {
	case vixExtreme:
		label = Crash
	case !primaryAbove200 && !primaryAbove50 && vixElevated:
		label = Bearish
	case primaryAbove200 && primaryAbove50 && primary50Above200 && vixCalm:
		if secondaryAbove50 {
			label = Bullish
		} else {
			label = Neutral
		}
	case primaryAbove200 || primaryAbove50:
		label = Neutral
	default:
		label = Bearish
	}

	return model.RegimeInfo{
		Regime:   label,
		Modifier: Modifier(label),
		Details: model.RegimeDetails{
			SPYPrice:   model.Round(primaryClose, 2),
			SPYvs50MA:  model.Round(pctVs(primaryClose, primaryMA50), 2),
			SPYvs200MA: model.Round(pctVs(primaryClose, primaryMA200), 2),
			QQQPrice:   model.Round(secondaryClose, 2),
			QQQvs50MA:  model.Round(pctVs(secondaryClose, secondaryMA50), 2),
			VIX:        model.Round(vix, 2),
		},
	}
}

func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

func lastSMA(closes []float64, period int) float64 {
	out := indicator.SMA(closes, period)
	return lastOf(out)
}

func above(value, reference float64) bool {
	if math.IsNaN(value) || math.IsNaN(reference) {
		return false
	}
	return value > reference
}

// pctVs returns the percent distance of price from a moving average,
// or 0 when the average is unavailable.
func pctVs(price, ma float64) float64 {
	if math.IsNaN(price) || math.IsNaN(ma) || ma == 0 {
		return 0
	}
	return (price/ma - 1) * 100
}
