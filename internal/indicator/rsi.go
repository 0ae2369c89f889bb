package indicator

// RSI computes the Relative Strength Index over a simple rolling mean of
// gains and losses: RS = mean(gains)/mean(losses) over the trailing
// `period` deltas, RSI = 100 - 100/(1+RS).
//
// This is deliberately NOT Wilder's exponential smoothing — the scoring
// thresholds downstream were tuned against the simple-mean variant, so
// the two must not be swapped. A zero mean loss saturates RSI at 100
// instead of propagating a division by zero.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	// delta at index i is closes[i]-closes[i-1]; index 0 has none
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	sumGain, sumLoss := 0.0, 0.0
	for i := 1; i < len(closes); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}
		if sumLoss == 0 {
			out[i] = 100.0
			continue
		}
		rs := sumGain / sumLoss
		out[i] = 100.0 - (100.0 / (1.0 + rs))
	}
	return out
}
