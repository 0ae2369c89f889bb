package indicator

import "math"

// Stochastic computes the stochastic oscillator:
// %K = 100 × (close − lowest low) / (highest high − lowest low) over
// kPeriod bars, %D = dPeriod-bar SMA of %K. A flat window (highest equals
// lowest) yields a neutral %K of 50 rather than a division by zero.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	k = nanSeries(n)
	d = nanSeries(n)
	if kPeriod <= 0 || n < kPeriod {
		return k, d
	}

	lowest := rollingMin(lows, kPeriod)
	highest := rollingMax(highs, kPeriod)

	for i := kPeriod - 1; i < n; i++ {
		span := highest[i] - lowest[i]
		if span == 0 {
			k[i] = 50.0
			continue
		}
		k[i] = 100.0 * (closes[i] - lowest[i]) / span
	}

	// %D starts once dPeriod valid %K values exist
	for i := kPeriod - 1 + dPeriod - 1; i < n; i++ {
		sum := 0.0
		ok := true
		for j := i - dPeriod + 1; j <= i; j++ {
			if math.IsNaN(k[j]) {
				ok = false
				break
			}
			sum += k[j]
		}
		if ok {
			d[i] = sum / float64(dPeriod)
		}
	}
	return k, d
}
