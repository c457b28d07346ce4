package analyzer

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"MarketConfluence/internal/cache"
	"MarketConfluence/internal/levels"
	"MarketConfluence/internal/metrics"
	"MarketConfluence/internal/model"
	"MarketConfluence/internal/risk"
	"MarketConfluence/internal/strategy"
	"MarketConfluence/internal/structure"
)

const defaultCacheEntries = 512

// Source supplies candles and the latest price. collector.Fetcher satisfies it.
type Source interface {
	FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error)
	FetchLatestPrice(ctx context.Context, symbol string) (float64, error)
}

// Service runs analyses on demand. Results are shared through the caches and must be treated as read-only.
type Service struct {
	src     Source
	cfg     Config
	single  cache.Store[SingleResult]
	mtf     cache.Store[MTFResult]
	sizer   *risk.Sizer
	metrics *metrics.Metrics
	health  *metrics.HealthStatus
	now     func() time.Time
	group   singleflight.Group
}

// Option customises a Service.
type Option func(*Service)

// WithSingleCache sets the cache for single-timeframe results.
func WithSingleCache(c cache.Store[SingleResult]) Option {
	return func(s *Service) { s.single = c }
}

// WithMTFCache sets the cache for multi-timeframe results.
func WithMTFCache(c cache.Store[MTFResult]) Option {
	return func(s *Service) { s.mtf = c }
}

// WithSizer sets the position sizer, typically one backed by the open-position book.
func WithSizer(sz *risk.Sizer) Option {
	return func(s *Service) { s.sizer = sz }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithHealth(h *metrics.HealthStatus) Option {
	return func(s *Service) { s.health = h }
}

// WithClock overrides time.Now for analysis timestamps and session checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. Without cache options each result kind gets its own bounded in-memory cache.
func New(src Source, cfg Config, opts ...Option) *Service {
	s := &Service{src: src, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.cfg.Timeframes) == 0 {
		s.cfg.Timeframes = model.AllTimeframes
	}
	if s.single == nil {
		s.single = cache.NewMemory[SingleResult](defaultCacheEntries, s.now)
	}
	if s.mtf == nil {
		s.mtf = cache.NewMemory[MTFResult](defaultCacheEntries, s.now)
	}
	if s.sizer == nil {
		s.sizer = risk.NewSizer(risk.DefaultSizerConfig(), nil, s.now)
	}
	return s
}

// Timeframes returns the configured timeframes.
func (s *Service) Timeframes() []model.Timeframe {
	return slices.Clone(s.cfg.Timeframes)
}

// AnalyzeSingleTimeframe analyses one timeframe. Missing data is reported in the Outcome.
func (s *Service) AnalyzeSingleTimeframe(ctx context.Context, symbol string, tf model.Timeframe) SingleResult {
	symbol = normalize(symbol)
	if symbol == "" {
		return SingleResult{Outcome: failed(fmt.Errorf("empty symbol"))}
	}
	if !tf.Valid() {
		return SingleResult{Outcome: failed(fmt.Errorf("unknown timeframe %q", tf))}
	}

	key := cache.Key(symbol, tf)
	if res, ok := s.single.Get(ctx, key); ok {
		s.metrics.CacheLookup(metrics.KindSingle, true)
		return res
	}
	s.metrics.CacheLookup(metrics.KindSingle, false)

	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.computeSingle(ctx, symbol, tf), nil
	})
	return v.(SingleResult)
}

// AnalyzeAllTimeframes analyses every configured timeframe and combines them.
// Timeframes without data are skipped; the call fails only when none has data.
func (s *Service) AnalyzeAllTimeframes(ctx context.Context, symbol string) MTFResult {
	symbol = normalize(symbol)
	if symbol == "" {
		return MTFResult{Outcome: failed(fmt.Errorf("empty symbol"))}
	}

	key := cache.AllKey(symbol)
	if res, ok := s.mtf.Get(ctx, key); ok {
		s.metrics.CacheLookup(metrics.KindMTF, true)
		return res
	}
	s.metrics.CacheLookup(metrics.KindMTF, false)

	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.computeMTF(ctx, symbol), nil
	})
	return v.(MTFResult)
}

func (s *Service) computeSingle(ctx context.Context, symbol string, tf model.Timeframe) SingleResult {
	start := time.Now()
	eval, err := s.evaluate(ctx, symbol, tf)
	s.metrics.ObserveAnalysis(metrics.KindSingle, err == nil, time.Since(start))
	if err != nil {
		log.Printf("[WARN] single analysis %s %s: %v", symbol, tf, err)
		return SingleResult{Outcome: failed(err)}
	}

	a := eval.Analysis
	res := SingleResult{Outcome: Outcome{Success: true}, Analysis: &a}
	s.single.Set(ctx, cache.Key(symbol, tf), res, s.cfg.SingleTTL)
	s.markHealthy()
	return res
}

func (s *Service) computeMTF(ctx context.Context, symbol string) MTFResult {
	start := time.Now()
	res := s.buildMTF(ctx, symbol)
	s.metrics.ObserveAnalysis(metrics.KindMTF, res.Success, time.Since(start))
	if !res.Success {
		log.Printf("[WARN] mtf analysis %s: %s", symbol, res.Error)
		return res
	}

	s.mtf.Set(ctx, cache.AllKey(symbol), res, s.cfg.MTFTTL)
	for tf, a := range res.Timeframes {
		a := a
		s.single.Set(ctx, cache.Key(symbol, tf), SingleResult{Outcome: Outcome{Success: true}, Analysis: &a}, s.cfg.SingleTTL)
	}
	s.metrics.ObserveConfluence(symbol, res.Confluence.WeightedScore, res.PositionSizing.RiskPct)
	s.markHealthy()
	return res
}

// evaluate fetches and analyses one timeframe.
func (s *Service) evaluate(ctx context.Context, symbol string, tf model.Timeframe) (*strategy.Evaluation, error) {
	candles, err := s.src.FetchCandles(ctx, symbol, tf, s.cfg.CandleLimit)
	if err != nil {
		s.metrics.FetchError(string(tf))
		return nil, fmt.Errorf("fetch %s %s: %w: %w", symbol, tf, model.ErrDataUnavailable, err)
	}
	if len(candles) == 0 {
		s.metrics.FetchError(string(tf))
	}

	eval, err := strategy.AnalyzeTimeframe(symbol, tf, candles, s.cfg.Strategy, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCleaning(symbol, string(tf), len(eval.Anomalies), eval.Analysis.DataQuality)
	return eval, nil
}

func (s *Service) buildMTF(ctx context.Context, symbol string) MTFResult {
	tfs := s.cfg.Timeframes
	evals := make([]*strategy.Evaluation, len(tfs))
	var livePrice float64

	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	g.Go(func() error {
		p, err := s.src.FetchLatestPrice(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] latest price %s: %v", symbol, err)
			return nil
		}
		livePrice = p
		return nil
	})
	for i, tf := range tfs {
		i, tf := i, tf
		g.Go(func() error {
			eval, err := s.evaluate(ctx, symbol, tf)
			if err != nil {
				log.Printf("[WARN] %v", err)
				return nil
			}
			evals[i] = eval
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return MTFResult{Symbol: symbol, Outcome: failed(fmt.Errorf("analyze %s: %w", symbol, err))}
	}

	byTF := make(map[model.Timeframe]*strategy.Evaluation, len(tfs))
	res := MTFResult{
		Symbol:     symbol,
		Timeframes: make(map[model.Timeframe]model.TimeframeAnalysis, len(tfs)),
		AnalyzedAt: s.now(),
	}
	for i, tf := range tfs {
		if evals[i] == nil {
			res.Unavailable = append(res.Unavailable, tf)
			continue
		}
		byTF[tf] = evals[i]
		res.Timeframes[tf] = evals[i].Analysis
	}
	if len(byTF) == 0 {
		res.Timeframes = nil
		res.Outcome = failed(fmt.Errorf("no candle data for %s: %w", symbol, model.ErrDataUnavailable))
		return res
	}

	analyses := res.Ordered()
	price := livePrice
	quoteMissing := price <= 0 || math.IsNaN(price)
	if quoteMissing {
		price = analyses[0].CurrentPrice
	}
	res.CurrentPrice = price

	conf := strategy.Confluence(analyses)
	if quoteMissing {
		conf.Reasons = append(conf.Reasons, fmt.Sprintf("live quote unavailable: using %s close", analyses[0].Timeframe))
	}

	regimeEval := pick(byTF, s.cfg.RegimeTimeframe)
	regime := risk.RegimeFromCandles(regimeEval.Candles, regimeEval.Analysis.Timeframe, s.cfg.Regime)

	structEval := pick(byTF, s.cfg.StructureTimeframe)
	sa := structEval.Analysis
	pa := structure.Analyze(structEval.Candles, sa.ATR.Value, s.cfg.Strategy.Structure)
	pa.Timeframe = sa.Timeframe
	pa.Consolidation = structure.DetectConsolidation(structEval.Candles, structure.PipThreshold(symbol, price), s.cfg.Strategy.Structure)

	profile := levels.BuildVolumeProfile(tail(structEval.Candles, s.cfg.ProfileLookback), s.cfg.Strategy.Levels.ProfileBins, price)

	var pivots model.PivotPoints
	if d, ok := byTF[s.cfg.PivotTimeframe]; ok {
		pivots, _ = levels.PriorPeriodPivots(d.Candles)
	} else {
		conf.Reasons = append(conf.Reasons, fmt.Sprintf("no %s data: pivots unavailable", s.cfg.PivotTimeframe))
	}

	sizing := s.sizer.Size(risk.SizingInput{
		Symbol:     symbol,
		Direction:  conf.OverallSignal.Direction(),
		Price:      price,
		ATR:        sa.ATR.Value,
		Confidence: conf.OverallConfidence,
		Volatility: sa.ATR.Volatility,
		Support:    sa.NearestSupport(),
		Resistance: sa.NearestResistance(),
	})

	conf.MarketRegime = regime
	conf.PriceAction = pa
	conf.VolumeProfile = profile
	conf.PivotPoints = pivots
	conf.PositionSizing = sizing
	conf.Reasons = append(conf.Reasons, contextNotes(regime, pa)...)

	res.Outcome = Outcome{Success: true}
	res.Confluence = &conf
	res.Regime = &conf.MarketRegime
	res.PriceAction = &conf.PriceAction
	res.VolumeProfile = &conf.VolumeProfile
	res.PivotPoints = &conf.PivotPoints
	res.PositionSizing = &conf.PositionSizing
	return res
}

func contextNotes(r model.MarketRegime, pa model.PriceAction) []string {
	notes := []string{fmt.Sprintf("%s regime on %s (ADX %.1f, DI spread %.1f, %s)",
		r.Regime, r.Timeframe, r.ADX, r.DISpread, r.ConfidenceLevel)}
	if pa.BOS {
		notes = append(notes, fmt.Sprintf("%s break of structure at %.2f on %s: %s",
			pa.BOSDirection, pa.BrokenLevel, pa.Timeframe, pa.StructureQuality))
	}
	if pa.LiquiditySweep {
		notes = append(notes, "liquidity sweep detected")
	}
	if c := pa.Consolidation; c.IsConsolidating {
		notes = append(notes, fmt.Sprintf("consolidating %.2f-%.2f (%s)", c.RangeLow, c.RangeHigh, c.Method))
	}
	return notes
}

// pick returns the evaluation for want, or the available timeframe nearest to it by weight.
// Ties go to the longer timeframe. byTF must not be empty.
func pick(byTF map[model.Timeframe]*strategy.Evaluation, want model.Timeframe) *strategy.Evaluation {
	if e, ok := byTF[want]; ok {
		return e
	}
	var best *strategy.Evaluation
	bestDist := math.Inf(1)
	for _, tf := range model.AllTimeframes {
		e, ok := byTF[tf]
		if !ok {
			continue
		}
		if d := math.Abs(tf.Weight() - want.Weight()); d <= bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func tail(candles []model.Candle, n int) []model.Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

func (s *Service) markHealthy() {
	if s.health != nil {
		s.health.MarkAnalysis(s.now())
	}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
