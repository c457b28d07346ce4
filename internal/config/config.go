package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"MarketConfluence/internal/analyzer"
	"MarketConfluence/internal/model"
	"MarketConfluence/internal/risk"
	"MarketConfluence/internal/strategy"
)

// Data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderMock  = "mock"
)

// AnalysisConfig holds the engine tunables. The strategy settings are inlined.
type AnalysisConfig struct {
	CandleLimit        int               `yaml:"candle_limit"`
	Concurrency        int               `yaml:"concurrency"`
	RegimeTimeframe    string            `yaml:"regime_timeframe"`
	StructureTimeframe string            `yaml:"structure_timeframe"`
	ProfileLookback    int               `yaml:"profile_lookback"`
	Regime             risk.RegimeConfig `yaml:"regime"`
	strategy.Config    `yaml:",inline"`
}

// RiskConfig holds sizing parameters and the open-position book.
type RiskConfig struct {
	risk.SizerConfig  `yaml:",inline"`
	CorrelationGroups [][]string `yaml:"correlation_groups"`
	StateFile         string     `yaml:"state_file"`
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider  string  `yaml:"provider"`
		BaseURL   string  `yaml:"base_url"`
		APIKey    string  `yaml:"api_key"`
		MockPrice float64 `yaml:"mock_price"`
	} `yaml:"data_source"`
	Symbols    []string       `yaml:"symbols"`
	Timeframes []string       `yaml:"timeframes"`
	Analysis   AnalysisConfig `yaml:"analysis"`
	Risk       RiskConfig     `yaml:"risk"`
	Cache      struct {
		MTFTTL        time.Duration `yaml:"mtf_ttl"`
		SingleTTL     time.Duration `yaml:"single_ttl"`
		MaxEntries    int           `yaml:"max_entries"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		Namespace     string        `yaml:"namespace"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken     string `yaml:"bot_token"`
		ChatID       string `yaml:"chat_id"`
		PollCommands bool   `yaml:"poll_commands"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error. Tunables start from the engine defaults so the
// file only needs to name what it changes.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Analysis.Config = strategy.DefaultConfig()
	cfg.Analysis.Regime = risk.DefaultRegimeConfig()
	cfg.Risk.SizerConfig = risk.DefaultSizerConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("BASE_RISK_PCT"); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.BaseRiskPct = pct
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Defaults
	def := analyzer.DefaultConfig()
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"XAUUSD"}
	}
	for i, s := range cfg.Symbols {
		cfg.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if len(cfg.Timeframes) == 0 {
		for _, tf := range def.Timeframes {
			cfg.Timeframes = append(cfg.Timeframes, string(tf))
		}
	}
	if cfg.Analysis.CandleLimit == 0 {
		cfg.Analysis.CandleLimit = def.CandleLimit
	}
	if cfg.Analysis.Concurrency == 0 {
		cfg.Analysis.Concurrency = def.Concurrency
	}
	if cfg.Analysis.RegimeTimeframe == "" {
		cfg.Analysis.RegimeTimeframe = string(def.RegimeTimeframe)
	}
	if cfg.Analysis.StructureTimeframe == "" {
		cfg.Analysis.StructureTimeframe = string(def.StructureTimeframe)
	}
	if cfg.Analysis.ProfileLookback == 0 {
		cfg.Analysis.ProfileLookback = def.ProfileLookback
	}
	if cfg.Risk.CorrelationGroups == nil {
		cfg.Risk.CorrelationGroups = [][]string{
			{"XAUUSD", "XAGUSD"},
			{"US30", "NAS100", "SPX500"},
			{"EURUSD", "GBPUSD"},
		}
	}
	if cfg.Risk.StateFile == "" {
		cfg.Risk.StateFile = "data/positions.json"
	}
	if cfg.Cache.MTFTTL == 0 {
		cfg.Cache.MTFTTL = def.MTFTTL
	}
	if cfg.Cache.SingleTTL == 0 {
		cfg.Cache.SingleTTL = def.SingleTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 512
	}
	if cfg.Cache.Namespace == "" {
		cfg.Cache.Namespace = "confluence"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */15 * * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market_confluence.db"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if _, err := c.timeframes(); err != nil {
		return err
	}
	if _, err := model.ParseTimeframe(c.Analysis.RegimeTimeframe); err != nil {
		return fmt.Errorf("analysis.regime_timeframe: %w", err)
	}
	if _, err := model.ParseTimeframe(c.Analysis.StructureTimeframe); err != nil {
		return fmt.Errorf("analysis.structure_timeframe: %w", err)
	}
	if c.Analysis.CandleLimit < 50 {
		return fmt.Errorf("analysis.candle_limit must be at least 50")
	}
	r := c.Risk.SizerConfig
	if r.MinRiskPct <= 0 || r.MinRiskPct > r.MaxRiskPct {
		return fmt.Errorf("risk: need 0 < min_risk_pct <= max_risk_pct")
	}
	if r.BaseRiskPct <= 0 {
		return fmt.Errorf("risk.base_risk_pct must be positive")
	}
	if c.Cache.MTFTTL <= 0 || c.Cache.SingleTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}

func (c *Config) timeframes() ([]model.Timeframe, error) {
	if len(c.Timeframes) == 0 {
		return nil, fmt.Errorf("timeframes must not be empty")
	}
	seen := make(map[model.Timeframe]bool, len(c.Timeframes))
	out := make([]model.Timeframe, 0, len(c.Timeframes))
	for _, s := range c.Timeframes {
		tf, err := model.ParseTimeframe(s)
		if err != nil {
			return nil, fmt.Errorf("timeframes: %w", err)
		}
		if seen[tf] {
			return nil, fmt.Errorf("timeframes: %s listed twice", tf)
		}
		seen[tf] = true
		out = append(out, tf)
	}
	return out, nil
}

// AnalyzerConfig converts the analysis and cache sections. Call Validate first.
func (c *Config) AnalyzerConfig() analyzer.Config {
	tfs, _ := c.timeframes()
	regimeTF, _ := model.ParseTimeframe(c.Analysis.RegimeTimeframe)
	structTF, _ := model.ParseTimeframe(c.Analysis.StructureTimeframe)

	out := analyzer.DefaultConfig()
	out.Timeframes = tfs
	out.CandleLimit = c.Analysis.CandleLimit
	out.Concurrency = c.Analysis.Concurrency
	out.RegimeTimeframe = regimeTF
	out.StructureTimeframe = structTF
	out.ProfileLookback = c.Analysis.ProfileLookback
	out.MTFTTL = c.Cache.MTFTTL
	out.SingleTTL = c.Cache.SingleTTL
	out.Strategy = c.Analysis.Config
	out.Regime = c.Analysis.Regime
	return out
}

// SizerConfig returns the position-sizing section.
func (c *Config) SizerConfig() risk.SizerConfig {
	return c.Risk.SizerConfig
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
