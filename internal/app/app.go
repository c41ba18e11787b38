package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/mentalgym-backend/internal/data/db"
	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/platform/redis"
	"github.com/yungbote/mentalgym-backend/internal/scheduler"
	"github.com/yungbote/mentalgym-backend/internal/temporalx"
	"github.com/yungbote/mentalgym-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Cfg      Config
	Repos    repos.Set
	Plans    *plans.Table
	Metrics  *observability.Metrics
	Redis    *goredis.Client
	Temporal temporalsdkclient.Client
	Services Services

	otelShutdown func(context.Context) error
}

// LoadEnv reads .env when present. A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New opens every backing store and wires the use cases. Optional backends
// (redis, temporal, openai) are skipped when unconfigured.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	a.Metrics = observability.Init(log)

	table := plans.Default()
	if cfg.PlansFile != "" {
		loaded, err := plans.Load(cfg.PlansFile)
		if err != nil {
			return nil, fmt.Errorf("load plans: %w", err)
		}
		table = loaded
	}
	a.Plans = table

	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	a.DB = dbs
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(dbs.DB()); err != nil {
			a.Close()
			return nil, fmt.Errorf("db automigrate: %w", err)
		}
	}
	a.Repos = repos.NewSet(dbs.DB(), log)

	if a.Redis, err = redis.NewClient(log, cfg.Redis); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Scheduler.Mode == scheduler.ModeTemporal {
		if !cfg.Temporal.Enabled() {
			a.Close()
			return nil, fmt.Errorf("SCHEDULER_MODE=temporal requires TEMPORAL_ADDRESS")
		}
		if a.Temporal, err = temporalx.NewClient(ctx, log, cfg.Temporal); err != nil {
			a.Close()
			return nil, err
		}
	}

	if a.Services, err = wireServices(a); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Run serves the API, the job worker pool and the weekly trigger until ctx
// is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	a.Metrics.StartJobQueueCollector(ctx, a.Log, func(ctx context.Context) (map[string]int64, error) {
		return a.Repos.JobRun.CountByStatus(dbctx.Context{Ctx: ctx})
	})
	if a.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Redis)
	}

	g.Go(func() error {
		return a.Services.Server.Run(ctx, a.Cfg.HTTPAddr, a.Cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		a.Services.Worker.Start(ctx)
		<-ctx.Done()
		a.Services.Worker.Wait()
		return nil
	})

	switch a.Cfg.Scheduler.Mode {
	case scheduler.ModeCron:
		g.Go(func() error { return a.Services.Scheduler.Run(ctx) })
	case scheduler.ModeTemporal:
		runner, err := temporalworker.NewRunner(a.Log, a.Cfg.Temporal, a.Temporal, a.Services.Notifications)
		if err != nil {
			return err
		}
		g.Go(func() error { return runner.Run(ctx) })
	case scheduler.ModeOff:
		a.Log.Info("Weekly report trigger disabled")
	default:
		return fmt.Errorf("unknown SCHEDULER_MODE %q", a.Cfg.Scheduler.Mode)
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Temporal != nil {
		a.Temporal.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("Redis close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("DB close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
