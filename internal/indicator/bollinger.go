package indicator

// Bollinger computes Bollinger Bands: middle = SMA(period), bands =
// middle ± stdDev × rolling sample standard deviation (ddof=1).
func Bollinger(closes []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(closes, period)
	std := RollingStd(closes, period)

	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = middle[i] + std[i]*stdDev
		lower[i] = middle[i] - std[i]*stdDev
	}
	return upper, middle, lower
}
