// Package metrics exposes Prometheus collectors for the analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Analysis kinds used as label values.
const (
	KindSingle = "single"
	KindMTF    = "mtf"
)

// Metrics holds the analysis collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysisDur   *prometheus.HistogramVec // labels: kind
	AnalysesTotal *prometheus.CounterVec   // labels: kind, outcome
	CacheRequests *prometheus.CounterVec   // labels: kind, result
	FetchErrors   *prometheus.CounterVec   // labels: timeframe
	Anomalies     *prometheus.CounterVec   // labels: timeframe
	DataQuality   *prometheus.GaugeVec     // labels: symbol, timeframe
	Confluence    *prometheus.GaugeVec     // labels: symbol
	RiskPct       *prometheus.GaugeVec     // labels: symbol
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		AnalysisDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "confluence_analysis_duration_seconds",
			Help:    "Analysis latency including fetch, by kind",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confluence_analyses_total",
			Help: "Analyses computed, by kind and outcome",
		}, []string{"kind", "outcome"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confluence_cache_requests_total",
			Help: "Result cache lookups, by kind and hit/miss",
		}, []string{"kind", "result"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confluence_fetch_errors_total",
			Help: "Candle fetch failures or empty series, by timeframe",
		}, []string{"timeframe"}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confluence_anomalies_total",
			Help: "Candles winsorized by the data cleaner, by timeframe",
		}, []string{"timeframe"}),
		DataQuality: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "confluence_data_quality",
			Help: "Latest data quality score in [0.5, 1]",
		}, []string{"symbol", "timeframe"}),
		Confluence: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "confluence_weighted_score",
			Help: "Latest multi-timeframe weighted score in [-2, 2]",
		}, []string{"symbol"}),
		RiskPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "confluence_position_risk_pct",
			Help: "Latest recommended risk percentage",
		}, []string{"symbol"}),
	}

	reg.MustRegister(
		m.AnalysisDur,
		m.AnalysesTotal,
		m.CacheRequests,
		m.FetchErrors,
		m.Anomalies,
		m.DataQuality,
		m.Confluence,
		m.RiskPct,
	)
	return m
}

// ObserveAnalysis records one computed analysis.
func (m *Metrics) ObserveAnalysis(kind string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "unavailable"
	}
	m.AnalysisDur.WithLabelValues(kind).Observe(d.Seconds())
	m.AnalysesTotal.WithLabelValues(kind, outcome).Inc()
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) FetchError(tf string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(tf).Inc()
}

// ObserveCleaning records the cleaner's output for one series.
func (m *Metrics) ObserveCleaning(symbol, tf string, anomalies int, quality float64) {
	if m == nil {
		return
	}
	if anomalies > 0 {
		m.Anomalies.WithLabelValues(tf).Add(float64(anomalies))
	}
	m.DataQuality.WithLabelValues(symbol, tf).Set(quality)
}

// ObserveConfluence records the latest weighted score and risk allocation for symbol.
func (m *Metrics) ObserveConfluence(symbol string, score, riskPct float64) {
	if m == nil {
		return
	}
	m.Confluence.WithLabelValues(symbol).Set(score)
	m.RiskPct.WithLabelValues(symbol).Set(riskPct)
}
