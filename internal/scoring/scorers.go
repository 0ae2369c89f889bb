// Package scoring turns an indicator snapshot into a trading signal.
//
// Six independent scorers each map current indicator state to a bounded
// contribution; a weighted composite combines them, the market-regime
// modifier dampens the result, and threshold + override rules produce the
// final label.
package scoring

import "stock-signals/internal/indicator"

// Snapshot is the per-ticker indicator state consumed by the scorers.
type Snapshot = indicator.Snapshot

// Thresholds are the tunable scorer cutoffs. Zero values are replaced by
// defaults via Normalize, so a partially-filled config still works.
type Thresholds struct {
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	VolumeSurge   float64 `yaml:"volume_surge"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{RSIOversold: 30, RSIOverbought: 70, VolumeSurge: 1.5}
}

// Normalize fills unset (zero) fields with defaults and returns the result.
func (t Thresholds) Normalize() Thresholds {
	def := DefaultThresholds()
	if t.RSIOversold == 0 {
		t.RSIOversold = def.RSIOversold
	}
	if t.RSIOverbought == 0 {
		t.RSIOverbought = def.RSIOverbought
	}
	if t.VolumeSurge == 0 {
		t.VolumeSurge = def.VolumeSurge
	}
	return t
}

// ScoreRSI maps RSI to [-1,1]: oversold is bullish, overbought bearish,
// the neutral zone contributes nothing. Distance past the threshold is
// scaled by 1/15 and clamped.
func ScoreRSI(s Snapshot, th Thresholds) float64 {
	switch {
	case s.RSI < th.RSIOversold:
		return clamp((th.RSIOversold-s.RSI)/15.0, -1, 1)
	case s.RSI > th.RSIOverbought:
		return clamp((th.RSIOverbought-s.RSI)/15.0, -1, 1)
	default:
		return 0
	}
}

// ScoreMACD sums two independent ±0.5 components: histogram momentum
// (positive and growing, or negative and shrinking) and line/signal
// crossover confirmed by histogram sign. Range [-1,1].
func ScoreMACD(s Snapshot) float64 {
	momentum := 0.0
	if s.MACDHist > 0 && s.MACDHist > s.MACDHistPrev {
		momentum = 0.5
	} else if s.MACDHist < 0 && s.MACDHist < s.MACDHistPrev {
		momentum = -0.5
	}

	crossover := 0.0
	if s.MACD > s.MACDSignal && s.MACDHist > 0 {
		crossover = 0.5
	} else if s.MACD < s.MACDSignal && s.MACDHist < 0 {
		crossover = -0.5
	}

	return momentum + crossover
}

// ScoreBollinger maps the price position within the bands to [-0.8,0.8]:
// hugging the lower band is bullish, the upper band bearish.
func ScoreBollinger(s Snapshot) float64 {
	position := s.BBPosition()
	switch {
	case position < 0.1:
		return 0.8
	case position > 0.9:
		return -0.8
	case position < 0.3:
		return 0.3
	case position > 0.7:
		return -0.3
	default:
		return 0
	}
}

// ScoreMovingAverages sums signed contributions from price vs SMA20
// (±0.2), SMA50 (±0.3), SMA200 when available (±0.3), and the EMA9/EMA21
// cross (±0.2), clamped to [-1,1]. An unavailable SMA200 contributes
// nothing in either direction.
func ScoreMovingAverages(s Snapshot) float64 {
	score := 0.0

	if s.Price > s.SMA20 {
		score += 0.2
	} else {
		score -= 0.2
	}
	if s.Price > s.SMA50 {
		score += 0.3
	} else {
		score -= 0.3
	}
	if s.SMA200OK {
		if s.Price > s.SMA200 {
			score += 0.3
		} else {
			score -= 0.3
		}
	}
	if s.EMA9 > s.EMA21 {
		score += 0.2
	} else {
		score -= 0.2
	}

	return clamp(score, -1, 1)
}

// ScoreVolume maps the volume ratio to [-0.1,0.3]: a surge adds
// conviction, below-average volume subtracts a little.
func ScoreVolume(s Snapshot, th Thresholds) float64 {
	switch {
	case s.VolumeRatio > th.VolumeSurge:
		return 0.3
	case s.VolumeRatio > 1.0:
		return 0.1
	default:
		return -0.1
	}
}

// ScoreStochastic maps %K/%D to [-0.5,0.5]: both oversold is bullish,
// both overbought bearish, with smaller ±0.2 contributions for crosses
// in the lower/upper half.
func ScoreStochastic(s Snapshot) float64 {
	switch {
	case s.StochK < 20 && s.StochD < 20:
		return 0.5
	case s.StochK > 80 && s.StochD > 80:
		return -0.5
	case s.StochK > s.StochD && s.StochK < 50:
		return 0.2
	case s.StochK < s.StochD && s.StochK > 50:
		return -0.2
	default:
		return 0
	}
}

// ScoreAll runs every scorer and returns the contributions keyed by the
// names used in the exported individual_scores map.
func ScoreAll(s Snapshot, th Thresholds) map[string]float64 {
	return map[string]float64{
		"rsi":        ScoreRSI(s, th),
		"macd":       ScoreMACD(s),
		"bollinger":  ScoreBollinger(s),
		"ma":         ScoreMovingAverages(s),
		"volume":     ScoreVolume(s, th),
		"stochastic": ScoreStochastic(s),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
