package notifier

import (
	"fmt"
	"html"
	"strings"

	"MarketConfluence/internal/analyzer"
	"MarketConfluence/internal/model"
)

func signalIcon(s model.Signal) string {
	switch s {
	case model.SignalStrongBuy:
		return "🟢🟢"
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	case model.SignalStrongSell:
		return "🔴🔴"
	default:
		return "⚪"
	}
}

// FormatMTFReport formats a multi-timeframe result into a Telegram message.
func FormatMTFReport(res analyzer.MTFResult) string {
	if !res.Success {
		return fmt.Sprintf("⚠️ <b>%s</b>: analysis unavailable (%s)", html.EscapeString(res.Symbol), html.EscapeString(res.Error))
	}
	c := res.Confluence
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>%s</b> | %s | %.5g\n\n", res.Symbol, res.AnalyzedAt.UTC().Format("2006-01-02 15:04 UTC"), res.CurrentPrice)
	fmt.Fprintf(&b, "%s <b>%s</b> (confidence %.0f%%, score %+.2f)\n", signalIcon(c.OverallSignal), c.OverallSignal, c.OverallConfidence, c.WeightedScore)
	fmt.Fprintf(&b, "Alignment %.0f%% (%d↑ %d↓ %d→) | risk %s\n", c.AlignmentScore, c.BullishCount, c.BearishCount, c.NeutralCount, c.RiskLevel)
	fmt.Fprintf(&b, "Strongest %s | weakest %s\n\n", c.StrongestTimeframe, c.WeakestTimeframe)

	b.WriteString("⏱ <b>Timeframes:</b>\n")
	for _, a := range res.Ordered() {
		fmt.Fprintf(&b, "  %-4s %s %-11s %3.0f%%  RSI %.0f  %s\n", a.Timeframe, signalIcon(a.Signal), a.Signal, a.Confidence, a.RSI, a.Trend)
	}
	for _, tf := range res.Unavailable {
		fmt.Fprintf(&b, "  %-4s no data\n", tf)
	}

	r := c.MarketRegime
	fmt.Fprintf(&b, "\n🧭 Regime: %s %s (ADX %.1f, %s)\n", r.Regime, r.Direction, r.ADX, r.ConfidenceLevel)
	pa := c.PriceAction
	fmt.Fprintf(&b, "🏗 Structure %s: %s, %s\n", pa.Timeframe, pa.Structure, pa.StructureQuality)
	if cons := pa.Consolidation; cons.IsConsolidating {
		fmt.Fprintf(&b, "   Range %.5g - %.5g (%s)\n", cons.RangeLow, cons.RangeHigh, cons.Method)
	}
	if vp := c.VolumeProfile; vp.TotalVolume > 0 {
		fmt.Fprintf(&b, "📦 POC %.5g | VA %.5g - %.5g\n", vp.POC, vp.ValueAreaLow, vp.ValueAreaHigh)
	}
	if p := c.PivotPoints.Classic; p.Pivot > 0 {
		fmt.Fprintf(&b, "📐 Pivot %.5g | S1 %.5g | R1 %.5g\n", p.Pivot, p.S1, p.R1)
	}

	ps := c.PositionSizing
	fmt.Fprintf(&b, "\n💰 <b>Risk %.2f%%</b> (%s session)\n", ps.RiskPct, ps.Session)
	if ps.StopLoss > 0 {
		fmt.Fprintf(&b, "   Entry %.5g | SL %.5g | TP %.5g | R:R %.2f\n", ps.Entry, ps.StopLoss, ps.TakeProfit, ps.RiskReward)
	}
	for _, n := range ps.Notes {
		fmt.Fprintf(&b, "   • %s\n", html.EscapeString(n))
	}

	if len(c.Reasons) > 0 {
		b.WriteString("\n📝 <b>Notes:</b>\n")
		for _, r := range c.Reasons {
			fmt.Fprintf(&b, "  • %s\n", html.EscapeString(r))
		}
	}
	return b.String()
}

// FormatTimeframe formats a single-timeframe result.
func FormatTimeframe(res analyzer.SingleResult) string {
	if !res.Success {
		return fmt.Sprintf("⚠️ analysis unavailable (%s)", html.EscapeString(res.Error))
	}
	a := res.Analysis
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>%s %s</b> | %.5g\n\n", a.Symbol, a.Timeframe, a.CurrentPrice)
	fmt.Fprintf(&b, "%s <b>%s</b> (confidence %.0f%%, score %+.2f) | trend %s\n", signalIcon(a.Signal), a.Signal, a.Confidence, a.Score, a.Trend)
	fmt.Fprintf(&b, "EMA20 %.5g | EMA50 %.5g | EMA200 %.5g\n", a.EMA.EMA20, a.EMA.EMA50, a.EMA.EMA200)
	fmt.Fprintf(&b, "RSI %.1f | MACD %s | %%B %.2f\n", a.RSI, a.MACDSignal, a.Bollinger.PercentB)
	fmt.Fprintf(&b, "ATR %.5g (%.2f%%, %s) | volume ×%.2f\n", a.ATR.Value, a.ATR.Percent, a.ATR.Volatility, a.Volume.Ratio)
	if s := a.NearestSupport(); s != nil {
		fmt.Fprintf(&b, "Support %.5g (%.2f%% away)\n", s.Price, s.DistancePct)
	}
	if r := a.NearestResistance(); r != nil {
		fmt.Fprintf(&b, "Resistance %.5g (%.2f%% away)\n", r.Price, r.DistancePct)
	}
	if a.DataQuality < 1 {
		fmt.Fprintf(&b, "Data quality %.2f\n", a.DataQuality)
	}
	if len(a.Reasons) > 0 {
		b.WriteString("\n")
		for _, r := range a.Reasons {
			fmt.Fprintf(&b, "  • %s\n", html.EscapeString(r))
		}
	}
	return b.String()
}

// FormatPositions lists open positions.
func FormatPositions(positions []model.Position) string {
	if len(positions) == 0 {
		return "📦 No open positions"
	}
	var b strings.Builder
	b.WriteString("📦 <b>Open positions</b>\n\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "%s %s @ %.5g", p.Symbol, p.Direction, p.Entry)
		if p.StopLoss > 0 {
			fmt.Fprintf(&b, " | SL %.5g | TP %.5g", p.StopLoss, p.TakeProfit)
		}
		if p.RiskPct > 0 {
			fmt.Fprintf(&b, " | risk %.2f%%", p.RiskPct)
		}
		fmt.Fprintf(&b, " | since %s\n", p.OpenedAt.UTC().Format("01-02 15:04"))
	}
	return b.String()
}

// FormatAlert announces a change of overall signal.
func FormatAlert(prev model.Signal, res analyzer.MTFResult) string {
	c := res.Confluence
	from := string(prev)
	if from == "" {
		from = "none"
	}
	return fmt.Sprintf("🚨 <b>%s</b> %s → %s %s (confidence %.0f%%, risk %s)\n\n%s",
		res.Symbol, from, signalIcon(c.OverallSignal), c.OverallSignal, c.OverallConfidence, c.RiskLevel,
		FormatMTFReport(res))
}
