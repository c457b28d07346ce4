package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketConfluence/internal/analyzer"
	"MarketConfluence/internal/model"
)

type telegramStub struct {
	mu       sync.Mutex
	sent     []map[string]string
	failures int
	updates  string
	onSend   func()
}

func (s *telegramStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage"):
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			s.mu.Lock()
			fail := s.failures > 0
			if fail {
				s.failures--
			} else {
				s.sent = append(s.sent, payload)
			}
			onSend := s.onSend
			s.mu.Unlock()
			if fail {
				http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"ok":true}`))
			if onSend != nil {
				onSend()
			}
		case strings.HasSuffix(r.URL.Path, "/bottoken/getUpdates"):
			s.mu.Lock()
			body := s.updates
			s.updates = `{"ok":true,"result":[]}`
			s.mu.Unlock()
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	})
}

func (s *telegramStub) messages() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.sent...)
}

func newStubNotifier(t *testing.T, stub *telegramStub) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	return tn
}

func TestSend(t *testing.T) {
	stub := &telegramStub{}
	tn := newStubNotifier(t, stub)

	require.NoError(t, tn.Send(context.Background(), "<b>hello</b>"))
	msgs := stub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Equal(t, "<b>hello</b>", msgs[0]["text"])
}

func TestSend_APIError(t *testing.T) {
	stub := &telegramStub{failures: 1}
	tn := newStubNotifier(t, stub)

	err := tn.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSendWithRetry(t *testing.T) {
	stub := &telegramStub{failures: 2}
	tn := newStubNotifier(t, stub)
	tn.RetryBase = 5 * time.Millisecond

	require.NoError(t, tn.SendWithRetry(context.Background(), "retry me", 2))
	assert.Len(t, stub.messages(), 1)
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	stub := &telegramStub{failures: 3}
	tn := newStubNotifier(t, stub)
	tn.RetryBase = time.Millisecond

	err := tn.SendWithRetry(context.Background(), "lost", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Empty(t, stub.messages())
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	stub := &telegramStub{failures: 5}
	tn := newStubNotifier(t, stub)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := tn.SendWithRetry(ctx, "never", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, stub.messages())
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("📈 line of report text\n", 400)
	require.Greater(t, len(long), maxMessageLen)

	got := truncate(long, maxMessageLen)
	assert.LessOrEqual(t, len(got), maxMessageLen)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "line of report text\n…"))
}

func TestStartPolling(t *testing.T) {
	stub := &telegramStub{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":"/mtf XAUUSD","chat":{"id":99}}},
		{"update_id":8,"message":{"text":" /mtf XAUUSD ","chat":{"id":42}}}
	]}`}
	tn := newStubNotifier(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub.onSend = cancel

	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			return "report for " + cmd
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/mtf XAUUSD"}, got, "messages from other chats are ignored")
	msgs := stub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "report for /mtf XAUUSD", msgs[0]["text"])
}

func TestFormatMTFReport(t *testing.T) {
	c := &model.MTFConfluence{
		OverallSignal:      model.SignalStrongBuy,
		OverallConfidence:  81,
		WeightedScore:      0.62,
		BullishCount:       3,
		NeutralCount:       1,
		AlignmentScore:     75,
		StrongestTimeframe: model.D1,
		WeakestTimeframe:   model.M15,
		RiskLevel:          model.RiskLow,
		MarketRegime:       model.MarketRegime{Regime: model.RegimeTrending, Direction: model.DirectionUp, ADX: 32.4},
		PositionSizing: model.PositionSizing{
			RiskPct: 1.25, Session: "LONDON", Entry: 2350, StopLoss: 2330, TakeProfit: 2385, RiskReward: 1.75,
			Notes: []string{"risk < base"},
		},
		Reasons: []string{"EMA stack bullish & rising"},
	}
	res := analyzer.MTFResult{
		Outcome:      analyzer.Outcome{Success: true},
		Symbol:       "XAUUSD",
		CurrentPrice: 2350,
		Timeframes: map[model.Timeframe]model.TimeframeAnalysis{
			model.D1: {Timeframe: model.D1, Signal: model.SignalStrongBuy, Confidence: 90},
			model.H1: {Timeframe: model.H1, Signal: model.SignalBuy, Confidence: 70},
		},
		Unavailable: []model.Timeframe{model.H4},
		Confluence:  c,
		AnalyzedAt:  time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC),
	}

	out := FormatMTFReport(res)
	assert.Contains(t, out, "<b>XAUUSD</b> | 2024-06-04 10:00 UTC | 2350")
	assert.Contains(t, out, "STRONG_BUY</b> (confidence 81%, score +0.62)")
	assert.Contains(t, out, "H4   no data")
	assert.Contains(t, out, "R:R 1.75")
	assert.Contains(t, out, "risk &lt; base")
	assert.Contains(t, out, "EMA stack bullish &amp; rising")
	assert.Less(t, strings.Index(out, "  H1  "), strings.Index(out, "  D1  "), "timeframes listed shortest first")
	assert.NotContains(t, out, "Pivot", "zero pivots are omitted")
}

func TestFormatFailures(t *testing.T) {
	mtf := FormatMTFReport(analyzer.MTFResult{Symbol: "EURUSD", Outcome: analyzer.Outcome{Error: "data <unavailable>"}})
	assert.Contains(t, mtf, "data &lt;unavailable&gt;")

	single := FormatTimeframe(analyzer.SingleResult{Outcome: analyzer.Outcome{Error: "boom"}})
	assert.Contains(t, single, "analysis unavailable (boom)")
}

func TestFormatPositions(t *testing.T) {
	assert.Equal(t, "📦 No open positions", FormatPositions(nil))

	out := FormatPositions([]model.Position{{
		Symbol: "US30", Direction: model.DirectionDown, Entry: 39000, StopLoss: 39200, TakeProfit: 38600,
		RiskPct: 0.8, OpenedAt: time.Date(2024, 6, 4, 14, 30, 0, 0, time.UTC),
	}})
	assert.Contains(t, out, "US30 DOWN @ 39000 | SL 39200 | TP 38600 | risk 0.80% | since 06-04 14:30")
}
