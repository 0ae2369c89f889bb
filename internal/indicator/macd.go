package indicator

// MACD computes the Moving Average Convergence Divergence: the difference
// of fast and slow EMAs, a signal line (EMA of that difference), and the
// histogram (line minus signal). Standard parameters are 12/26/9.
func MACD(closes []float64, fast, slow, signal int) (line, signalLine, histogram []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}

	signalLine = EMA(line, signal)

	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = line[i] - signalLine[i]
	}
	return line, signalLine, histogram
}
