package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"dailyspend/internal/analytics"
	"dailyspend/internal/backend"
	"dailyspend/internal/cache"
	"dailyspend/internal/cli"
	"dailyspend/internal/config"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
	"dailyspend/internal/notify"
	"dailyspend/internal/services"
)

// refreshSpec re-plans the reminder after midnight so "today" and
// "yesterday" roll over even when nobody touches the ledger.
const refreshSpec = "0 0 * * *"

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting spesed",
		log.FieldBackend, cfg.StoreBackend,
		log.FieldChannel, cfg.NotifyChannel)

	if err := run(cfg, logger); err != nil {
		logger.Error("spesed exited with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	if err := backendCfg.Validate(); err != nil {
		return err
	}

	factory := backend.NewFactory(logger)

	store, err := factory.CreateStore(ctx, backendCfg)
	if err != nil {
		return err
	}

	sender, err := factory.CreateSender(ctx, backendCfg)
	if err != nil {
		// Reminders still get planned; they just end up in the log.
		logger.LogError(ctx, "Reminder channel unavailable, falling back to log", err,
			log.OpStartup, log.ErrorTypeNetwork)
		sender = &backend.SenderResult{Sender: notify.NewLogSender(logger)}
	}

	persistConfig := services.DefaultPersistProcessorConfig()
	persistConfig.WriteTimeout = cfg.PersistTimeout
	persister := services.NewPersistProcessor(store.Store, persistConfig, logger)
	if err := persister.Start(context.Background()); err != nil {
		return err
	}

	lg := ledger.New(store.Store, persister, ledger.WithLogger(logger))

	bundles := cache.NewLRUCache[analytics.Bundle](cfg.AnalyticsCacheSize, cfg.AnalyticsCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(bundles)
	cacheManager.StartCleanup(cfg.AnalyticsCacheTTL)

	scheduler := notify.NewScheduler(sender.Sender, notify.DefaultSchedulerConfig(), logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	svc := services.NewExpenseService(lg, scheduler, bundles, logger)
	firstRun, err := svc.Start(ctx)
	if err != nil {
		return err
	}
	snap := svc.Snapshot()
	logger.Info("Ledger ready",
		log.FieldFirstRun, firstRun,
		log.FieldExpenses, len(snap.Expenses),
		log.FieldRevision, lg.Revision())

	rollover := cron.New()
	if _, err := rollover.AddFunc(refreshSpec, func() {
		if err := svc.RefreshReminder(ctx); err != nil {
			log.FromContext(ctx).LogError(ctx, "Midnight reminder refresh failed", err,
				log.OpSchedule, log.ErrorTypeInternal)
		}
	}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rollover.Start()
		<-gctx.Done()
		<-rollover.Stop().Done()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, cfg.ShutdownTimeout,
			scheduler.Stop,
			persister.Stop,
			func(context.Context) error {
				cacheManager.Stop()
				return nil
			},
			sender.Cleanup,
			store.Cleanup,
		)
	})

	logger.Info("spesed running", "next_reminder", nextReminder(scheduler))
	return g.Wait()
}

func nextReminder(s *notify.Scheduler) string {
	at, ok := s.NextDaily(time.Now())
	if !ok {
		return "none"
	}
	return at.Format(time.RFC3339)
}
