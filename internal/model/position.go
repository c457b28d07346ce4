package model

import "time"

// Position is an open trade tracked for correlation checks.
type Position struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	RiskPct    float64   `json:"risk_pct"`
	OpenedAt   time.Time `json:"opened_at"`
}

// BookState is the persisted set of open positions.
type BookState struct {
	Positions []Position `json:"positions"`
	UpdatedAt time.Time  `json:"updated_at"`
}
