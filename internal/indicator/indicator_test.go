package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100.0
	}
	out := SMA(values, 20)

	for i := 0; i < 19; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("index %d: expected NaN before window fills, got %.4f", i, out[i])
		}
	}
	for i := 19; i < 30; i++ {
		if !almostEqual(out[i], 100.0, 1e-9) {
			t.Errorf("index %d: expected SMA=100, got %.4f", i, out[i])
		}
	}
}

func TestSMA_Ramp(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := SMA(values, 3)

	want := []float64{math.NaN(), math.NaN(), 2, 3, 4, 5}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(out[i]) {
				t.Errorf("index %d: expected NaN, got %.4f", i, out[i])
			}
			continue
		}
		if !almostEqual(out[i], want[i], 1e-9) {
			t.Errorf("index %d: expected %.4f, got %.4f", i, want[i], out[i])
		}
	}
}

func TestSMA_InsufficientHistory(t *testing.T) {
	out := SMA([]float64{1, 2, 3}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("index %d: expected NaN for short series, got %.4f", i, v)
		}
	}
}

func TestEMA_SeededAtStart(t *testing.T) {
	values := []float64{10, 12, 14}
	out := EMA(values, 3) // alpha = 0.5

	if !almostEqual(out[0], 10, 1e-9) {
		t.Errorf("expected EMA seeded at first value 10, got %.4f", out[0])
	}
	if !almostEqual(out[1], 11, 1e-9) { // 10 + 0.5*(12-10)
		t.Errorf("expected EMA[1]=11, got %.4f", out[1])
	}
	if !almostEqual(out[2], 12.5, 1e-9) { // 11 + 0.5*(14-11)
		t.Errorf("expected EMA[2]=12.5, got %.4f", out[2])
	}
}

func TestRSI_AllGainsSaturatesAt100(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100.0 + float64(i)
	}
	out := RSI(values, 14)

	if got := out[len(out)-1]; !almostEqual(got, 100.0, 1e-9) {
		t.Errorf("expected RSI=100 when mean loss is zero, got %.4f", got)
	}
}

func TestRSI_HandComputed(t *testing.T) {
	// deltas: +1, -0.5, +1, +0.5
	values := []float64{10, 11, 10.5, 11.5, 12}
	out := RSI(values, 3)

	// window at index 3: gains 1+1=2, losses 0.5 → RS=4 → RSI=80
	if !almostEqual(out[3], 80.0, 1e-9) {
		t.Errorf("expected RSI[3]=80, got %.4f", out[3])
	}
	// window at index 4: gains 1+0.5=1.5, losses 0.5 → RS=3 → RSI=75
	if !almostEqual(out[4], 75.0, 1e-9) {
		t.Errorf("expected RSI[4]=75, got %.4f", out[4])
	}
	for i := 0; i < 3; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("index %d: expected NaN before %d deltas accumulate", i, 3)
		}
	}
}

func TestRSI_Bounds(t *testing.T) {
	// alternating series keeps both gains and losses in every window
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100.0 + float64(i%5)*3.0
	}
	out := RSI(values, 14)
	for i := 14; i < len(out); i++ {
		if out[i] < 0 || out[i] > 100 {
			t.Errorf("index %d: RSI %.4f outside [0,100]", i, out[i])
		}
	}
}

func TestMACD_ConstantSeriesIsZero(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 50.0
	}
	line, signal, hist := MACD(values, 12, 26, 9)

	n := len(values) - 1
	if !almostEqual(line[n], 0, 1e-9) || !almostEqual(signal[n], 0, 1e-9) || !almostEqual(hist[n], 0, 1e-9) {
		t.Errorf("expected zero MACD on constant series, got line=%.6f signal=%.6f hist=%.6f",
			line[n], signal[n], hist[n])
	}
}

func TestMACD_HistogramIsLineMinusSignal(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		values[i] = 100.0 + 10.0*math.Sin(float64(i)/7.0)
	}
	line, signal, hist := MACD(values, 12, 26, 9)
	for i := range values {
		if !almostEqual(hist[i], line[i]-signal[i], 1e-9) {
			t.Fatalf("index %d: histogram %.6f != line-signal %.6f", i, hist[i], line[i]-signal[i])
		}
	}
}

func TestRollingStd_SampleConvention(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	out := RollingStd(values, 3)

	// window (1,2,3): mean 2, sample variance (1+0+1)/2 = 1 → std 1
	if !almostEqual(out[2], 1.0, 1e-9) {
		t.Errorf("expected sample std=1, got %.6f", out[2])
	}
	if !almostEqual(out[3], 1.0, 1e-9) {
		t.Errorf("expected sample std=1, got %.6f", out[3])
	}
}

func TestBollinger_ConstantSeriesCollapses(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 42.0
	}
	upper, middle, lower := Bollinger(values, 20, 2.0)

	n := len(values) - 1
	if !almostEqual(upper[n], 42, 1e-9) || !almostEqual(middle[n], 42, 1e-9) || !almostEqual(lower[n], 42, 1e-9) {
		t.Errorf("expected bands to collapse on constant series, got %.4f/%.4f/%.4f",
			upper[n], middle[n], lower[n])
	}
}

func TestATR_ConstantRange(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 101
		lows[i] = 99
		closes[i] = 100
	}
	out := ATR(highs, lows, closes, 14)
	if got := out[n-1]; !almostEqual(got, 2.0, 1e-9) {
		t.Errorf("expected ATR=2 for constant 2-point range, got %.4f", got)
	}
}

func TestATR_GapUsesPrevClose(t *testing.T) {
	// second bar gaps up: TR = max(1, |12-10|, |11-10|) = 2
	highs := []float64{10.5, 12}
	lows := []float64{9.5, 11}
	closes := []float64{10, 11.5}
	out := ATR(highs, lows, closes, 2)
	// TR[0] = 1, TR[1] = 2 → SMA(2) = 1.5
	if got := out[1]; !almostEqual(got, 1.5, 1e-9) {
		t.Errorf("expected ATR=1.5 with gap true range, got %.4f", got)
	}
}

func TestStochastic_CloseAtHigh(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100.0 + float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base + 1 // always at the high
	}
	k, d := Stochastic(highs, lows, closes, 14, 3)
	if got := k[n-1]; !almostEqual(got, 100.0, 1e-9) {
		t.Errorf("expected %%K=100 closing at the window high, got %.4f", got)
	}
	if got := d[n-1]; !almostEqual(got, 100.0, 1e-9) {
		t.Errorf("expected %%D=100, got %.4f", got)
	}
}

func TestStochastic_FlatWindowIsNeutral(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 100
		lows[i] = 100
		closes[i] = 100
	}
	k, _ := Stochastic(highs, lows, closes, 14, 3)
	if got := k[n-1]; !almostEqual(got, 50.0, 1e-9) {
		t.Errorf("expected neutral %%K=50 on flat window, got %.4f", got)
	}
}

func TestSupportResistance(t *testing.T) {
	highs := []float64{10, 11, 12, 15, 13}
	lows := []float64{9, 8, 10, 12, 11}

	support, resistance := SupportResistance(highs, lows, 3)
	if support != 10 || resistance != 15 {
		t.Errorf("lookback 3: expected support=10 resistance=15, got %.1f/%.1f", support, resistance)
	}

	// lookback longer than the series uses everything
	support, resistance = SupportResistance(highs, lows, 50)
	if support != 8 || resistance != 15 {
		t.Errorf("full series: expected support=8 resistance=15, got %.1f/%.1f", support, resistance)
	}
}
