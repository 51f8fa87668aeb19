package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/utils"
)

var environmentIcons = map[market.EnvironmentCode]string{
	market.EnvStableUptrend:     "🟢",
	market.EnvVolatileUptrend:   "🌪",
	market.EnvOverheatedUptrend: "🔥",
	market.EnvQuietRange:        "😴",
	market.EnvVolatileRange:     "⚡",
	market.EnvCorrection:        "📉",
	market.EnvStrongDowntrend:   "🔴",
	market.EnvPanicSell:         "🆘",
}

// FormatRegimeChangeMessage formats a regime classification into a Markdown
// string for Telegram. When previousEnvironment is non-empty and differs from
// the current one, the transition is shown.
func FormatRegimeChangeMessage(previousEnvironment string, regime market.MarketRegime) string {
	var builder strings.Builder

	builder.WriteString("🌐 *Market Regime Update*\n\n")
	builder.WriteString(fmt.Sprintf("📅 %s\n", utils.PrettyDate(regime.Date)))

	icon := environmentIcons[regime.Environment]
	if icon == "" {
		icon = "🔔"
	}
	if previousEnvironment != "" && previousEnvironment != string(regime.Environment) {
		builder.WriteString(fmt.Sprintf("%s *Environment:* %s → %s\n", icon, previousEnvironment, regime.Environment))
	} else {
		builder.WriteString(fmt.Sprintf("%s *Environment:* %s\n", icon, regime.Environment))
	}

	builder.WriteString(fmt.Sprintf("⚠️ *Risk:* %d/100 (%s)\n", regime.Risk.Score, regime.Risk.Level))
	builder.WriteString(fmt.Sprintf("📈 *Trend:* %s %s (ADX %.1f)\n", regime.Trend.Direction, regime.Trend.Type, regime.Trend.ADXValue))
	builder.WriteString(fmt.Sprintf("🌡 *Volatility:* %s (ATR %.2f%%)\n", regime.Volatility.Level, regime.Volatility.ATRPercent))
	builder.WriteString(fmt.Sprintf("💬 *Sentiment:* %s\n", regime.Sentiment.Sentiment))
	builder.WriteString(fmt.Sprintf("📊 *Breadth ADR:* %.1f short / %.1f medium (%s)\n\n",
		regime.Breadth.ShortTermADR, regime.Breadth.MediumTermADR, regime.Breadth.Divergence))

	if regime.IsTradeable() {
		builder.WriteString("✅ New entries allowed\n")
	} else {
		builder.WriteString("⛔ New entries suspended\n")
	}

	return builder.String()
}

// FormatEventRiskMessage formats an event gate decision into a Markdown string
// for Telegram.
func FormatEventRiskMessage(result market.EventCalendarResult, checkDate time.Time) string {
	var builder strings.Builder

	var riskIcon string
	switch result.RiskLevel {
	case market.EventRiskCritical:
		riskIcon = "🆘"
	case market.EventRiskHigh:
		riskIcon = "⚠️"
	case market.EventRiskMedium:
		riskIcon = "🔔"
	default:
		riskIcon = "ℹ️"
	}

	builder.WriteString("🗓 *Event Calendar Alert*\n\n")
	builder.WriteString(fmt.Sprintf("📈 *Symbol:* `%s`\n", result.Symbol))
	builder.WriteString(fmt.Sprintf("📅 %s\n", utils.PrettyDate(checkDate)))
	builder.WriteString(fmt.Sprintf("%s *Risk:* %s\n", riskIcon, result.RiskLevel))

	if !result.EntryAllowed {
		builder.WriteString("⛔ *Entry:* blocked\n")
	} else {
		builder.WriteString("🟢 *Entry:* allowed\n")
	}
	if result.ExitRequired {
		builder.WriteString("🚪 *Exit:* recommended\n")
	}

	if result.NearestEvent != nil {
		builder.WriteString(fmt.Sprintf("⏳ *Next event:* %s on %s (%d day(s))\n",
			result.NearestEvent.Type, utils.PrettyDate(result.NearestEvent.Date), result.NearestEvent.DaysUntil))
	}

	builder.WriteString(fmt.Sprintf("\n💬 %s\n", result.Reason))

	return builder.String()
}

// FormatErrorAlertMessage formats a background failure into a short alert.
func FormatErrorAlertMessage(t time.Time, errMsg string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
⚠️ %s
`, utils.PrettyDate(t), errMsg)
}
