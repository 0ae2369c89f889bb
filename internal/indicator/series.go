// Package indicator provides technical indicator calculations over daily
// bar series.
//
// Every function is pure: it takes a value slice and returns a full series
// of the same length, with NaN marking positions where the trailing window
// is not yet filled. Rolling windows use only trailing data. Only the tail
// of each series is consumed downstream, so the NaN head is never scored.
package indicator

import "math"

// nanSeries allocates an all-NaN series of length n.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the simple moving average with a running-sum window.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average seeded at the series start:
// out[0] = values[0], then out[t] = out[t-1] + α(values[t] - out[t-1])
// with α = 2/(span+1). No bias adjustment.
func EMA(values []float64, span int) []float64 {
	out := nanSeries(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// RollingStd computes the rolling sample standard deviation (ddof=1) with
// running sum and sum-of-squares windows.
func RollingStd(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 1 || len(values) < period {
		return out
	}
	sum, sumSq := 0.0, 0.0
	n := float64(period)
	for i, v := range values {
		sum += v
		sumSq += v * v
		if i >= period {
			old := values[i-period]
			sum -= old
			sumSq -= old * old
		}
		if i >= period-1 {
			variance := (sumSq - sum*sum/n) / (n - 1)
			if variance < 0 {
				variance = 0 // guard float cancellation on near-constant windows
			}
			out[i] = math.Sqrt(variance)
		}
	}
	return out
}

// rollingMin computes the rolling window minimum.
func rollingMin(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := values[i]
		for j := i - period + 1; j < i; j++ {
			if values[j] < m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingMax computes the rolling window maximum.
func rollingMax(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := values[i]
		for j := i - period + 1; j < i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// last returns the final value of a series, or NaN for an empty one.
func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
