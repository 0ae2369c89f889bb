package indicator

import (
	"math"

	"stock-signals/internal/model"
)

// Standard periods for the daily-bar snapshot. These are the tuned
// parameter set the scoring thresholds assume; they are not configurable.
const (
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalSpan   = 9
	BollingerPeriod  = 20
	BollingerStdDev  = 2.0
	ATRPeriod        = 14
	StochKPeriod     = 14
	StochDPeriod     = 3
	VolumeAvgPeriod  = 20
	LevelLookback    = 20
	ShortSMAPeriod   = 20
	MediumSMAPeriod  = 50
	LongSMAPeriod    = 200
	FastEMASpan      = 9
	SlowEMASpan      = 21
)

// Snapshot is the set of scalar indicator values for a series as of its
// last bar. It is recomputed fresh for every scoring pass and owned
// exclusively by that pass — never cached or shared.
type Snapshot struct {
	Price     float64
	PrevClose float64

	RSI     float64
	RSIPrev float64

	MACD         float64
	MACDSignal   float64
	MACDHist     float64
	MACDHistPrev float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	SMA20    float64
	SMA50    float64
	SMA200   float64
	SMA200OK bool // false when the series is shorter than 200 bars

	EMA9  float64
	EMA21 float64

	ATR float64

	StochK float64
	StochD float64

	VolumeRatio float64 // current volume / 20-day average, 1 when average is 0

	Support    float64
	Resistance float64
}

// ComputeSnapshot derives all indicator values from a sanitized series.
// The series must hold at least model.MinHistoryBars bars; the caller
// gates on that before invoking.
func ComputeSnapshot(s model.Series) Snapshot {
	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()
	volumes := s.Volumes()
	n := len(closes)

	snap := Snapshot{
		Price:     s.Last().Close,
		PrevClose: s.PrevClose(),
	}

	rsi := RSI(closes, RSIPeriod)
	snap.RSI = last(rsi)
	snap.RSIPrev = snap.RSI
	if n > 1 {
		snap.RSIPrev = rsi[n-2]
	}

	line, signal, hist := MACD(closes, MACDFast, MACDSlow, MACDSignalSpan)
	snap.MACD = last(line)
	snap.MACDSignal = last(signal)
	snap.MACDHist = last(hist)
	snap.MACDHistPrev = snap.MACDHist
	if n > 1 {
		snap.MACDHistPrev = hist[n-2]
	}

	upper, middle, lower := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	snap.BBUpper = last(upper)
	snap.BBMiddle = last(middle)
	snap.BBLower = last(lower)

	snap.SMA20 = last(SMA(closes, ShortSMAPeriod))
	snap.SMA50 = last(SMA(closes, MediumSMAPeriod))
	if n >= LongSMAPeriod {
		snap.SMA200 = last(SMA(closes, LongSMAPeriod))
		snap.SMA200OK = true
	}
	snap.EMA9 = last(EMA(closes, FastEMASpan))
	snap.EMA21 = last(EMA(closes, SlowEMASpan))

	snap.ATR = last(ATR(highs, lows, closes, ATRPeriod))

	k, d := Stochastic(highs, lows, closes, StochKPeriod, StochDPeriod)
	snap.StochK = last(k)
	snap.StochD = last(d)

	avgVolume := last(SMA(volumes, VolumeAvgPeriod))
	currentVolume := volumes[n-1]
	if avgVolume > 0 {
		snap.VolumeRatio = currentVolume / avgVolume
	} else {
		snap.VolumeRatio = 1.0
	}

	snap.Support, snap.Resistance = SupportResistance(highs, lows, LevelLookback)

	return snap
}

// BBPosition returns the price position within the Bollinger Bands as a
// fraction (0 = lower band, 1 = upper band). A zero-width band yields the
// neutral midpoint 0.5.
func (s Snapshot) BBPosition() float64 {
	width := s.BBUpper - s.BBLower
	if width == 0 || math.IsNaN(width) {
		return 0.5
	}
	return (s.Price - s.BBLower) / width
}
