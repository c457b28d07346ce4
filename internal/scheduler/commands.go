package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"MarketConfluence/internal/model"
	"MarketConfluence/internal/notifier"
	"MarketConfluence/internal/recorder"
)

const helpText = `Available commands:
• /mtf SYMBOL - multi-timeframe confluence
• /tf SYMBOL TF - single timeframe (M15, H1, H4, D1 ...)
• /positions - open positions
• /open SYMBOL LONG|SHORT [entry] - track a position
• /close SYMBOL - stop tracking a position
• /refresh - analyze all watched symbols now`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends @botname in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/mtf":
		sym, ok := s.symbolArg(args)
		if !ok {
			return "Usage: /mtf SYMBOL"
		}
		return notifier.FormatMTFReport(s.Analyzer.AnalyzeAllTimeframes(ctx, sym))
	case "/tf":
		if len(args) != 2 {
			return "Usage: /tf SYMBOL TF"
		}
		tf, err := model.ParseTimeframe(args[1])
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		return notifier.FormatTimeframe(s.Analyzer.AnalyzeSingleTimeframe(ctx, args[0], tf))
	case "/positions":
		return notifier.FormatPositions(s.Book.Positions())
	case "/open":
		return s.openPosition(ctx, args)
	case "/close":
		if len(args) != 1 {
			return "Usage: /close SYMBOL"
		}
		return s.closePosition(args[0])
	case "/refresh":
		s.refreshAll()
		return fmt.Sprintf("✅ refreshed %d symbols", len(s.Symbols))
	default:
		return helpText
	}
}

// symbolArg returns the requested symbol, or the only watched one when omitted.
func (s *Scheduler) symbolArg(args []string) (string, bool) {
	switch {
	case len(args) == 1:
		return args[0], true
	case len(args) == 0 && len(s.Symbols) == 1:
		return s.Symbols[0], true
	default:
		return "", false
	}
}

func (s *Scheduler) openPosition(ctx context.Context, args []string) string {
	if len(args) < 2 || len(args) > 3 {
		return "Usage: /open SYMBOL LONG|SHORT [entry]"
	}
	p := model.Position{Symbol: strings.ToUpper(args[0]), OpenedAt: s.now()}
	switch strings.ToUpper(args[1]) {
	case "LONG", "BUY":
		p.Direction = model.DirectionUp
	case "SHORT", "SELL":
		p.Direction = model.DirectionDown
	default:
		return "Direction must be LONG or SHORT"
	}
	if len(args) == 3 {
		entry, err := strconv.ParseFloat(args[2], 64)
		if err != nil || entry <= 0 {
			return fmt.Sprintf("Invalid entry price %q", args[2])
		}
		p.Entry = entry
	}

	// Stop, target and risk come from the latest sizing when it points the same way.
	res := s.Analyzer.AnalyzeAllTimeframes(ctx, p.Symbol)
	if res.Success && res.PositionSizing != nil {
		ps := res.PositionSizing
		if p.Entry == 0 {
			p.Entry = res.CurrentPrice
		}
		if ps.Direction == p.Direction {
			p.StopLoss = ps.StopLoss
			p.TakeProfit = ps.TakeProfit
			p.RiskPct = ps.RiskPct
		}
	}
	if p.Entry == 0 {
		return fmt.Sprintf("⚠️ no price for %s, pass the entry explicitly", p.Symbol)
	}

	s.Book.Open(p)
	s.recordPosition("OPEN", p)
	log.Printf("[INFO] position opened: %s %s @ %.5g", p.Symbol, p.Direction, p.Entry)
	return "✅ " + notifier.FormatPositions([]model.Position{p})
}

func (s *Scheduler) closePosition(symbol string) string {
	symbol = strings.ToUpper(symbol)
	var closed *model.Position
	for _, p := range s.Book.Positions() {
		if p.Symbol == symbol {
			closed = &p
			break
		}
	}
	if closed == nil || !s.Book.Close(symbol) {
		return fmt.Sprintf("No open position on %s", symbol)
	}
	s.recordPosition("CLOSE", *closed)
	log.Printf("[INFO] position closed: %s", symbol)
	return fmt.Sprintf("✅ closed %s", symbol)
}

func (s *Scheduler) recordPosition(action string, p model.Position) {
	if err := s.Recorder.RecordPositionEvent(&recorder.PositionEvent{
		Action:   action,
		Position: p,
		At:       s.now(),
	}); err != nil {
		log.Printf("[ERROR] record position event: %v", err)
	}
}
