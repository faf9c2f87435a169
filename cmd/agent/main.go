package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"rwafolio/config"
	"rwafolio/internal/adapters/gateio"
	"rwafolio/internal/adapters/gemini"
	"rwafolio/internal/adapters/news"
	"rwafolio/internal/adapters/notify"
	"rwafolio/internal/adapters/storage/dynamo"
	"rwafolio/internal/adapters/storage/sqlite"
	"rwafolio/internal/api"
	"rwafolio/internal/application/engine"
	"rwafolio/internal/ports"
	"rwafolio/internal/scheduler"
	"rwafolio/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trading cycle and exit")
	serve := flag.Bool("serve", false, "run the read API server")
	dryRun := flag.Bool("dry-run", false, "simulate orders and use a local SQLite ledger")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the portfolio table after each cycle")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Format != "json",
	})

	log.Info().
		Str("config", *configPath).
		Bool("dry_run", *dryRun).
		Bool("once", *once).
		Bool("serve", *serve).
		Str("schedule", cfg.Trading.Schedule).
		Msg("rwafolio starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	universe := cfg.Universe()

	exchange := gateio.NewAdapter(
		gateio.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.APISecret, log),
		universe,
	)
	advisor := gemini.NewClient(cfg.Advisor.BaseURL, cfg.Advisor.Model, cfg.Advisor.APIKey, universe, log)
	collector := news.NewCollector(cfg.News.AuthToken, log)

	ledger, locker, closeLedger, err := buildStorage(ctx, cfg, *dryRun, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open storage")
		os.Exit(1)
	}
	defer closeLedger()

	gate := engine.NewRiskGate(exchange, engine.RiskPolicy{
		MaxSpreadPercent:    cfg.Risk.MaxSpreadPercent,
		MaxDeviationPercent: cfg.Risk.MaxDeviationPercent,
		MinOrderSize:        cfg.Risk.MinOrderSize,
		BalanceUsageRatio:   cfg.Risk.BalanceUsageRatio,
	}, log)

	var notifier ports.Notifier
	if *table {
		notifier = notify.NewConsole()
	}

	cycle := engine.New(universe, exchange, advisor, collector, ledger, locker, gate, notifier, engine.Config{
		MinConfidenceScore: cfg.Risk.MinConfidenceScore,
		DryRun:             *dryRun,
	}, log)

	if *once {
		if err := runCycle(ctx, cycle, log); err != nil {
			os.Exit(1)
		}
		return
	}

	var server *api.Server
	errCh := make(chan error, 1)
	if *serve {
		server = api.New(cfg.API.Port, ledger, log)
		go func() { errCh <- server.Start() }()
	}

	var sched *scheduler.Scheduler
	if !*serve {
		// Daemon trading mode: fire the cycle on the configured cadence.
		sched = scheduler.New(log)
		if err := sched.Schedule(cfg.Trading.Schedule, func(jobCtx context.Context) {
			_ = runCycle(jobCtx, cycle, log)
		}); err != nil {
			log.Error().Err(err).Msg("failed to schedule trading cycle")
			os.Exit(1)
		}
		sched.Start()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("api server failed")
		}
	}

	if sched != nil {
		sched.Stop()
	}
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("api shutdown failed")
		}
	}
	log.Info().Msg("rwafolio stopped cleanly")
}

// buildStorage opens the ledger and execution lock: DynamoDB normally, a
// local SQLite file in dry-run mode.
func buildStorage(ctx context.Context, cfg *config.Config, dryRun bool, log zerolog.Logger) (ports.Ledger, ports.Locker, func(), error) {
	if dryRun {
		store, err := sqlite.NewStore(cfg.Storage.SQLiteDSN, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("sqlite close failed")
			}
		}
		return store, sqlite.NewLock(store, cfg.LockLease(), log), closeFn, nil
	}

	store, err := dynamo.NewStore(ctx, cfg.Storage.Region, cfg.Storage.TablePrefix, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return store, dynamo.NewLock(store, cfg.LockLease(), log), func() {}, nil
}

func runCycle(ctx context.Context, cycle *engine.Cycle, log zerolog.Logger) error {
	start := time.Now()
	result, err := cycle.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("trading cycle failed")
		return err
	}
	if result.Skipped {
		return nil
	}
	log.Info().
		Int("confidence", result.ConfidenceScore).
		Int("computed", result.OrdersComputed).
		Int("executed", result.OrdersExecuted).
		Int("rejected", result.OrdersRejected).
		Str("judgment_id", result.JudgmentID).
		Str("snapshot_id", result.SnapshotID).
		Dur("duration", time.Since(start)).
		Msg("trading cycle complete")
	return nil
}
