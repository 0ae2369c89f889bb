package indicator

// SupportResistance returns simple support and resistance levels: the
// minimum low and maximum high over the trailing `lookback` bars (the
// whole series when shorter). Not pivot-based.
func SupportResistance(highs, lows []float64, lookback int) (support, resistance float64) {
	n := len(lows)
	if n == 0 {
		return 0, 0
	}
	start := n - lookback
	if start < 0 {
		start = 0
	}
	support = lows[start]
	resistance = highs[start]
	for i := start + 1; i < n; i++ {
		if lows[i] < support {
			support = lows[i]
		}
		if highs[i] > resistance {
			resistance = highs[i]
		}
	}
	return support, resistance
}
