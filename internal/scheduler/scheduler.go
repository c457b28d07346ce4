// Package scheduler runs the periodic refresh of watched symbols and answers bot commands.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"MarketConfluence/internal/analyzer"
	"MarketConfluence/internal/model"
	"MarketConfluence/internal/notifier"
	"MarketConfluence/internal/recorder"
	"MarketConfluence/internal/risk"
)

// Analyzer is the part of analyzer.Service the scheduler drives.
type Analyzer interface {
	AnalyzeAllTimeframes(ctx context.Context, symbol string) analyzer.MTFResult
	AnalyzeSingleTimeframe(ctx context.Context, symbol string, tf model.Timeframe) analyzer.SingleResult
	Timeframes() []model.Timeframe
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron refresh and the bot command surface.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Book     *risk.Book
	Notifier Sender
	Recorder recorder.Recorder
	Symbols  []string
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler. notif may be nil when Telegram is not configured.
func NewScheduler(ctx context.Context, an Analyzer, book *risk.Book, notif Sender, rec recorder.Recorder, symbols []string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Book:     book,
		Notifier: notif,
		Recorder: rec,
		Symbols:  symbols,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the refresh job.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshAll()
}

func (s *Scheduler) refreshAll() {
	log.Printf("[INFO] refreshing %d symbols", len(s.Symbols))
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		s.refresh(sym)
	}
}

// refresh analyzes one symbol, stores the snapshot and alerts when the overall
// signal turns into an actionable one.
func (s *Scheduler) refresh(symbol string) {
	res := s.Analyzer.AnalyzeAllTimeframes(s.Ctx, symbol)
	if !res.Success {
		log.Printf("[WARN] refresh %s: %s", symbol, res.Error)
		return
	}

	prev, seen, err := s.Recorder.LastSignal(res.Symbol)
	if err != nil {
		log.Printf("[ERROR] last signal %s: %v", res.Symbol, err)
	}

	if err := s.Recorder.RecordSnapshot(&recorder.Snapshot{
		Symbol:     res.Symbol,
		Price:      res.CurrentPrice,
		At:         res.AnalyzedAt,
		Confluence: *res.Confluence,
		Timeframes: res.Ordered(),
	}); err != nil {
		log.Printf("[ERROR] record snapshot %s: %v", res.Symbol, err)
	}

	if err != nil || !Actionable(res.Confluence) {
		return
	}
	if seen && prev == res.Confluence.OverallSignal {
		return
	}
	log.Printf("[INFO] %s signal changed %s -> %s", res.Symbol, prev, res.Confluence.OverallSignal)
	s.trySend(notifier.FormatAlert(prev, res))
}

// Actionable reports whether a confluence call is worth alerting on: a STRONG
// signal that is not graded HIGH risk.
func Actionable(c *model.MTFConfluence) bool {
	if c == nil || c.RiskLevel == model.RiskHigh {
		return false
	}
	return c.OverallSignal == model.SignalStrongBuy || c.OverallSignal == model.SignalStrongSell
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
