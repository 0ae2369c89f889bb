package model

import (
	"math"
	"time"
)

// Bar represents one daily OHLCV bar for a single symbol.
// Prices are float64 dollars: at daily granularity the provider delivers
// floats and sub-cent drift is irrelevant to scoring.
type Bar struct {
	Date   time.Time `json:"date"` // trading day (UTC, midnight-aligned)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a chronological sequence of daily bars for one symbol.
// Immutable once fetched; all indicator math reads it, nothing writes it.
type Series []Bar

// Len returns the number of bars.
func (s Series) Len() int { return len(s) }

// Last returns the most recent bar. Panics on an empty series —
// callers gate on MinHistoryBars before scoring.
func (s Series) Last() Bar { return s[len(s)-1] }

// PrevClose returns the close of the second-to-last bar, or the last
// close when only a single bar exists.
func (s Series) PrevClose() float64 {
	if len(s) < 2 {
		return s.Last().Close
	}
	return s[len(s)-2].Close
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column as float64 for rolling averages.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = float64(b.Volume)
	}
	return out
}

// MinHistoryBars is the minimum series length required to score a ticker.
// Shorter series are excluded from a run (long moving averages degrade
// below this; the 200-day SMA additionally needs 200 bars but is optional).
const MinHistoryBars = 50

// Sanitize returns a copy of the series with unusable rows removed and
// non-finite values repaired. This is the single NaN/Inf boundary for the
// whole engine: downstream indicator and scoring code may assume finite
// inputs. A row is dropped when its close is non-finite or non-positive;
// other fields fall back to the close.
func Sanitize(s Series) Series {
	out := make(Series, 0, len(s))
	for _, b := range s {
		if !isFinite(b.Close) || b.Close <= 0 {
			continue
		}
		if !isFinite(b.Open) || b.Open <= 0 {
			b.Open = b.Close
		}
		if !isFinite(b.High) || b.High <= 0 {
			b.High = b.Close
		}
		if !isFinite(b.Low) || b.Low <= 0 {
			b.Low = b.Close
		}
		if b.Volume < 0 {
			b.Volume = 0
		}
		out = append(out, b)
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
