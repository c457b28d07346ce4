package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"MarketConfluence/internal/analyzer"
	"MarketConfluence/internal/cache"
	"MarketConfluence/internal/collector"
	"MarketConfluence/internal/config"
	"MarketConfluence/internal/metrics"
	"MarketConfluence/internal/notifier"
	"MarketConfluence/internal/recorder"
	"MarketConfluence/internal/risk"
	"MarketConfluence/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketConfluence starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init Redis (optional L2 cache)
	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer rdb.Close()
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("[WARN] redis %s unreachable, serving from local cache until it recovers: %v", cfg.Cache.RedisAddr, err)
		} else {
			log.Printf("[INFO] redis cache connected: %s", cfg.Cache.RedisAddr)
		}
		pingCancel()
	}
	singleCache := cache.NewTiered[analyzer.SingleResult](
		cache.NewMemory[analyzer.SingleResult](cfg.Cache.MaxEntries, time.Now),
		sharedStore[analyzer.SingleResult](rdb, cfg.Cache.Namespace),
		cfg.Cache.SingleTTL,
	)
	mtfCache := cache.NewTiered[analyzer.MTFResult](
		cache.NewMemory[analyzer.MTFResult](cfg.Cache.MaxEntries, time.Now),
		sharedStore[analyzer.MTFResult](rdb, cfg.Cache.Namespace),
		cfg.Cache.MTFTTL,
	)

	// Init position book and sizer
	book, err := risk.NewBook(cfg.Risk.StateFile, cfg.Risk.CorrelationGroups)
	if err != nil {
		log.Fatalf("[FATAL] init position book: %v", err)
	}
	sizer := risk.NewSizer(cfg.SizerConfig(), book, time.Now)

	// Init recorder
	var rec recorder.Recorder
	var db *sql.DB
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			db = sr.DB()
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init metrics and health
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	health := metrics.NewHealthStatus()
	health.StartLivenessChecker(ctx, rdb, db, 30*time.Second)
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, reg, health)
		srv.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := srv.Stop(stopCtx); err != nil {
				log.Printf("[WARN] metrics server shutdown: %v", err)
			}
		}()
	}

	// Init analyzer
	svc := analyzer.New(fetcher, cfg.AnalyzerConfig(),
		analyzer.WithSingleCache(singleCache),
		analyzer.WithMTFCache(mtfCache),
		analyzer.WithSizer(sizer),
		analyzer.WithMetrics(m),
		analyzer.WithHealth(health),
	)

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, alerts are logged only")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, book, sender, rec, cfg.Symbols)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil && cfg.Telegram.PollCommands {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	log.Printf("[INFO] MarketConfluence is running for %v. Press Ctrl+C to stop.", cfg.Symbols)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] MarketConfluence stopped")
}

// sharedStore returns the Redis tier, or nil when Redis is not configured.
func sharedStore[V any](rdb *redis.Client, namespace string) cache.Store[V] {
	if rdb == nil {
		return nil
	}
	return cache.NewRedis[V](rdb, namespace)
}
