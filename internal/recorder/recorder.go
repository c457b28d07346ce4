// Package recorder persists analysis history.
package recorder

import (
	"time"

	"MarketConfluence/internal/model"
)

// Snapshot is one multi-timeframe analysis worth keeping.
type Snapshot struct {
	Symbol     string
	Price      float64
	At         time.Time
	Confluence model.MTFConfluence
	Timeframes []model.TimeframeAnalysis
}

// PositionEvent records a position opened or closed through the bot.
type PositionEvent struct {
	Action   string // "OPEN" or "CLOSE"
	Position model.Position
	At       time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	RecordPositionEvent(evt *PositionEvent) error
	// LastSignal returns the overall signal of the newest snapshot for symbol.
	LastSignal(symbol string) (model.Signal, bool, error)
	Close() error
}
