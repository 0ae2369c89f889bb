package notification

import (
	"fmt"
	"strings"

	"stock-signals/internal/model"
	"stock-signals/internal/regime"
)

var signalEmoji = map[string]string{
	model.SignalStrongBuy:  "🟢🟢",
	model.SignalBuy:        "🟢",
	model.SignalHold:       "🟡",
	model.SignalSell:       "🔴",
	model.SignalStrongSell: "🔴🔴",
}

// RunAlert builds the alert for a completed run: a brief summary listing
// the actionable tickers per category. Severity tracks the regime.
func RunAlert(bundle *model.ResultBundle) Alert {
	level := AlertInfo
	switch bundle.MarketRegime.Regime {
	case regime.Bearish:
		level = AlertWarning
	case regime.Crash:
		level = AlertCritical
	}

	return Alert{
		Level:   level,
		Title:   fmt.Sprintf("Signal run (%s market)", bundle.MarketRegime.Regime),
		Message: BriefSummary(bundle),
	}
}

// BriefSummary renders the compact per-category summary: one line per
// non-empty actionable bucket, or a "nothing to do" line.
func BriefSummary(bundle *model.ResultBundle) string {
	summary := bundle.Summary
	lines := []string{fmt.Sprintf("📊 Market: %s", bundle.MarketRegime.Regime)}

	buckets := []struct {
		emoji, label, key string
	}{
		{"🟢🟢", "STRONG BUY", "strong_buy"},
		{"🟢", "BUY", "buy"},
		{"🔴", "SELL", "sell"},
		{"🔴🔴", "STRONG SELL", "strong_sell"},
	}

	actionable := false
	for _, b := range buckets {
		if len(summary[b.key]) == 0 {
			continue
		}
		actionable = true
		lines = append(lines, fmt.Sprintf("%s %s: %s", b.emoji, b.label, strings.Join(summary[b.key], ", ")))
	}
	if !actionable {
		lines = append(lines, "No actionable signals")
	}
	return strings.Join(lines, "\n")
}

// SignalText renders one record as a detail block for channels that carry
// the full breakdown.
func SignalText(s model.SignalRecord) string {
	emoji, ok := signalEmoji[s.Signal]
	if !ok {
		emoji = "⚪"
	}
	return fmt.Sprintf(
		"%s %s: %s\n"+
			"   Price: $%.2f (%+.2f%%)\n"+
			"   Confidence: %d%%\n"+
			"   Buy Range: $%.2f - $%.2f\n"+
			"   Sell Range: $%.2f - $%.2f\n",
		emoji, s.Ticker, s.Signal,
		s.CurrentPrice, s.DailyChange,
		s.Confidence,
		s.BuyRange.Low, s.BuyRange.High,
		s.SellRange.Low, s.SellRange.High,
	)
}
