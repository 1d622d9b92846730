package telegram

import (
	"fmt"
	"strings"
	"time"
)

// FormatRecommendationChange builds the alert sent when a stock's
// recommendation flips after an analysis run.
func FormatRecommendationChange(ticker, previous, current string, previousScore, currentScore float64, reason string, at time.Time) string {
	var b strings.Builder

	emoji := "🔁"
	switch current {
	case "BUY":
		emoji = "🟢"
	case "SELL":
		emoji = "🔴"
	}

	b.WriteString(fmt.Sprintf("%s *%s* recommendation changed\n", emoji, ticker))
	b.WriteString(fmt.Sprintf("`%s (%.1f)` → `%s (%.1f)`\n", previous, previousScore, current, currentScore))
	if reason != "" {
		b.WriteString(fmt.Sprintf("Reason: %s\n", reason))
	}
	b.WriteString(fmt.Sprintf("_%s_", at.UTC().Format("2006-01-02 15:04 MST")))

	return b.String()
}

// FormatCheckpointResult builds the notification for a matured prediction
// checkpoint.
func FormatCheckpointResult(ticker string, days int, returnPct float64, direction string, accurate bool) string {
	verdict := "❌ missed"
	if accurate {
		verdict = "✅ on target"
	}
	return fmt.Sprintf("📐 *%s* %dd checkpoint: %+.2f%% (%s) — %s", ticker, days, returnPct, direction, verdict)
}
