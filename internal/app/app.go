package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"MuralNotifier/internal/config"
	"MuralNotifier/internal/infrastructure/email"
	"MuralNotifier/internal/infrastructure/parser"
	"MuralNotifier/internal/infrastructure/scheduler"
	"MuralNotifier/internal/infrastructure/sns"
	"MuralNotifier/internal/infrastructure/storage"
	"MuralNotifier/internal/logging"
	"MuralNotifier/internal/notify"
	"MuralNotifier/internal/portal"
	"MuralNotifier/internal/ports"
	"MuralNotifier/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
// Every collaborator is constructed once here and passed down by
// interface; there are no ambient singletons.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgres(db)
	preferences := storage.NewPreferenceRepository(db)

	registry := portalRegistry(baseLogger)
	source := parser.NewPortalSource(registry, cfg.Portals, baseLogger.With("component", "source"))

	var smsGateway ports.SMSGateway
	if cfg.Notifications.SMS.Enabled {
		smsGateway, err = sns.NewGateway(cfg.Notifications.SMS.Region)
		if err != nil {
			return nil, fmt.Errorf("build sms gateway: %w", err)
		}
	}

	var emailGateway ports.EmailGateway
	if cfg.Notifications.Email.Enabled {
		emailGateway, err = email.NewSender(cfg.Notifications.Email)
		if err != nil {
			return nil, fmt.Errorf("build email gateway: %w", err)
		}
	}

	dispatcher := notify.NewDispatcher(notify.Deps{
		SMS:             smsGateway,
		Email:           emailGateway,
		Log:             store,
		DefaultTimezone: cfg.Notifications.DefaultTimezone,
		SendTimeout:     cfg.Matching.DispatchTimeout,
		Logger:          baseLogger.With("component", "dispatcher"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Store:        store,
		Preferences:  preferences,
		Dispatcher:   dispatcher,
		Workers:      cfg.Matching.Workers,
		FetchTimeout: cfg.Matching.FetchTimeout,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:       cfg,
		db:        db,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline),
		logger:    baseLogger,
	}, nil
}

func portalRegistry(baseLogger *slog.Logger) *portal.Registry {
	registry := portal.NewRegistry()
	registry.Register(parser.NewMuralScanner(nil, baseLogger.With("component", "scanner.mural")))
	return registry
}

// Run performs a single sweep, for one-shot invocations.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.ProcessSweep(ctx, now)
}

// Start begins the recurring sweep schedule.
func (a *Application) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Start(ctx)
}

// Shutdown stops the scheduler and closes shared resources.
func (a *Application) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			return err
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
