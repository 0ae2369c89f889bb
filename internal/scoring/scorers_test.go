package scoring

import (
	"math"
	"testing"
)

func TestScoreRSI_Oversold(t *testing.T) {
	th := DefaultThresholds()

	got := ScoreRSI(Snapshot{RSI: 25}, th)
	if math.Abs(got-5.0/15.0) > 1e-9 {
		t.Errorf("RSI 25: expected %.4f, got %.4f", 5.0/15.0, got)
	}

	// deep oversold clamps at 1
	if got := ScoreRSI(Snapshot{RSI: 5}, th); got != 1.0 {
		t.Errorf("RSI 5: expected clamp at 1.0, got %.4f", got)
	}
}

func TestScoreRSI_Overbought(t *testing.T) {
	th := DefaultThresholds()

	got := ScoreRSI(Snapshot{RSI: 75}, th)
	if math.Abs(got-(-5.0/15.0)) > 1e-9 {
		t.Errorf("RSI 75: expected %.4f, got %.4f", -5.0/15.0, got)
	}
	if got := ScoreRSI(Snapshot{RSI: 95}, th); got != -1.0 {
		t.Errorf("RSI 95: expected clamp at -1.0, got %.4f", got)
	}
}

func TestScoreRSI_NeutralZoneAndThresholdEdges(t *testing.T) {
	th := DefaultThresholds()
	for _, rsi := range []float64{30, 50, 70} {
		if got := ScoreRSI(Snapshot{RSI: rsi}, th); got != 0 {
			t.Errorf("RSI %.0f: expected 0 in neutral zone, got %.4f", rsi, got)
		}
	}
}

func TestScoreRSI_CustomThresholds(t *testing.T) {
	th := Thresholds{RSIOversold: 40, RSIOverbought: 60, VolumeSurge: 1.5}
	got := ScoreRSI(Snapshot{RSI: 35}, th)
	if math.Abs(got-5.0/15.0) > 1e-9 {
		t.Errorf("custom oversold 40, RSI 35: expected %.4f, got %.4f", 5.0/15.0, got)
	}
}

func TestScoreMACD_BothComponentsBullish(t *testing.T) {
	// positive growing histogram + bullish crossover = 0.5 + 0.5
	s := Snapshot{MACD: 1.0, MACDSignal: 0.5, MACDHist: 0.5, MACDHistPrev: 0.3}
	if got := ScoreMACD(s); got != 1.0 {
		t.Errorf("expected 1.0, got %.4f", got)
	}
}

func TestScoreMACD_BothComponentsBearish(t *testing.T) {
	s := Snapshot{MACD: -1.0, MACDSignal: -0.5, MACDHist: -0.5, MACDHistPrev: -0.3}
	if got := ScoreMACD(s); got != -1.0 {
		t.Errorf("expected -1.0, got %.4f", got)
	}
}

func TestScoreMACD_CrossoverOnly(t *testing.T) {
	// histogram positive but shrinking: no momentum half, crossover half only
	s := Snapshot{MACD: 1.0, MACDSignal: 0.5, MACDHist: 0.5, MACDHistPrev: 0.7}
	if got := ScoreMACD(s); got != 0.5 {
		t.Errorf("expected 0.5, got %.4f", got)
	}
}

func TestScoreMACD_FlatIsZero(t *testing.T) {
	s := Snapshot{MACD: 0, MACDSignal: 0, MACDHist: 0, MACDHistPrev: 0}
	if got := ScoreMACD(s); got != 0 {
		t.Errorf("expected 0, got %.4f", got)
	}
}

func TestScoreBollinger_Bands(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{100.5, 0.8},  // position 0.05, hugging lower band
		{102, 0.3},    // position 0.2
		{105, 0},      // position 0.5, middle
		{108, -0.3},   // position 0.8
		{109.5, -0.8}, // position 0.95, hugging upper band
	}
	for _, c := range cases {
		s := Snapshot{Price: c.price, BBLower: 100, BBUpper: 110}
		if got := ScoreBollinger(s); got != c.want {
			t.Errorf("price %.1f: expected %.1f, got %.4f", c.price, c.want, got)
		}
	}
}

func TestScoreMovingAverages_FullAlignment(t *testing.T) {
	s := Snapshot{
		Price: 110, SMA20: 105, SMA50: 100, SMA200: 95, SMA200OK: true,
		EMA9: 108, EMA21: 104,
	}
	if got := ScoreMovingAverages(s); got != 1.0 {
		t.Errorf("all bullish: expected clamp at 1.0, got %.4f", got)
	}

	s = Snapshot{
		Price: 90, SMA20: 105, SMA50: 100, SMA200: 95, SMA200OK: true,
		EMA9: 92, EMA21: 96,
	}
	if got := ScoreMovingAverages(s); got != -1.0 {
		t.Errorf("all bearish: expected clamp at -1.0, got %.4f", got)
	}
}

func TestScoreMovingAverages_MissingSMA200ContributesNothing(t *testing.T) {
	s := Snapshot{
		Price: 110, SMA20: 105, SMA50: 100, SMA200OK: false,
		EMA9: 108, EMA21: 104,
	}
	// 0.2 + 0.3 + 0.2, no SMA200 term
	if got := ScoreMovingAverages(s); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("expected 0.7 without SMA200, got %.4f", got)
	}
}

func TestScoreVolume(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		ratio float64
		want  float64
	}{
		{2.0, 0.3},
		{1.5, 0.1}, // surge threshold is exclusive
		{1.2, 0.1},
		{1.0, -0.1},
		{0.5, -0.1},
	}
	for _, c := range cases {
		if got := ScoreVolume(Snapshot{VolumeRatio: c.ratio}, th); got != c.want {
			t.Errorf("ratio %.2f: expected %.1f, got %.4f", c.ratio, c.want, got)
		}
	}
}

func TestScoreStochastic(t *testing.T) {
	cases := []struct {
		k, d float64
		want float64
	}{
		{15, 18, 0.5},  // both oversold
		{85, 88, -0.5}, // both overbought
		{40, 30, 0.2},  // bullish cross in lower half
		{60, 70, -0.2}, // bearish cross in upper half
		{60, 50, 0},    // cross in the wrong half scores nothing
		{50, 50, 0},
	}
	for _, c := range cases {
		if got := ScoreStochastic(Snapshot{StochK: c.k, StochD: c.d}); got != c.want {
			t.Errorf("K=%.0f D=%.0f: expected %.1f, got %.4f", c.k, c.d, c.want, got)
		}
	}
}

func TestScoreAll_Bounds(t *testing.T) {
	th := DefaultThresholds()
	bounds := map[string][2]float64{
		"rsi":        {-1, 1},
		"macd":       {-1, 1},
		"bollinger":  {-0.8, 0.8},
		"ma":         {-1, 1},
		"volume":     {-0.1, 0.3},
		"stochastic": {-0.5, 0.5},
	}

	// sweep a grid of extreme snapshots; every scorer must stay in range
	snaps := []Snapshot{
		{RSI: -50, MACDHist: 1e6, MACDHistPrev: 0, MACD: 1e6, MACDSignal: 0,
			Price: 1e9, BBLower: 0, BBUpper: 1, SMA20: 0, SMA50: 0, SMA200: 0,
			SMA200OK: true, EMA9: 1, EMA21: 0, VolumeRatio: 1e6, StochK: -10, StochD: -10},
		{RSI: 150, MACDHist: -1e6, MACDHistPrev: 0, MACD: -1e6, MACDSignal: 0,
			Price: 0.0001, BBLower: 1, BBUpper: 2, SMA20: 1e9, SMA50: 1e9, SMA200: 1e9,
			SMA200OK: true, EMA9: 0, EMA21: 1, VolumeRatio: 0, StochK: 200, StochD: 200},
		{},
	}
	for i, s := range snaps {
		scores := ScoreAll(s, th)
		for name, b := range bounds {
			if scores[name] < b[0] || scores[name] > b[1] {
				t.Errorf("snapshot %d: %s score %.4f outside [%.1f,%.1f]",
					i, name, scores[name], b[0], b[1])
			}
		}
	}
}

func TestThresholds_NormalizeFillsDefaults(t *testing.T) {
	th := Thresholds{}.Normalize()
	if th != DefaultThresholds() {
		t.Errorf("expected defaults, got %+v", th)
	}

	partial := Thresholds{RSIOversold: 25}.Normalize()
	if partial.RSIOversold != 25 || partial.RSIOverbought != 70 || partial.VolumeSurge != 1.5 {
		t.Errorf("expected partial override preserved with defaults, got %+v", partial)
	}
}
