package risk

import "time"

// Session names by UTC hour.
const (
	SessionAsia     = "ASIA"
	SessionLondon   = "LONDON"
	SessionNewYork  = "NEW_YORK"
	SessionOffHours = "OFF_HOURS"
)

// Scheduled high-impact events.
const (
	EventNFP  = "NFP"
	EventFOMC = "FOMC"
	EventCPI  = "CPI"
)

// SessionAdjustment returns the trading session at t, the events whose windows cover t,
// and the smallest risk multiplier among them.
func SessionAdjustment(t time.Time) (session string, events []string, multiplier float64) {
	t = t.UTC()
	h := t.Hour()
	multiplier = 1.0

	switch {
	case h < 7:
		session = SessionAsia
		multiplier = 0.7
	case h < 13:
		session = SessionLondon
	case h < 21:
		session = SessionNewYork
	default:
		session = SessionOffHours
	}

	day := t.Day()
	wd := t.Weekday()
	if wd == time.Friday && day <= 7 && h >= 12 && h < 15 {
		events = append(events, EventNFP)
		multiplier = min(multiplier, 0.3)
	}
	if wd == time.Wednesday && day >= 15 && day <= 21 && h >= 17 && h < 20 {
		events = append(events, EventFOMC)
		multiplier = min(multiplier, 0.3)
	}
	if wd >= time.Monday && wd <= time.Friday && day >= 10 && day <= 15 && h >= 12 && h < 14 {
		events = append(events, EventCPI)
		multiplier = min(multiplier, 0.4)
	}
	return session, events, multiplier
}
