package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/db"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/seed"
	httpapi "github.com/raohuzaifa081-blip/webotixscrm/internal/http"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *httpapi.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	SSEHub   *realtime.SSEHub
	SSEBus   bus.Bus

	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	shutdownOTel := observability.InitOTel(ctx, log, cfg.Tracing())

	gdb, err := OpenDatabase(log, cfg)
	if err != nil {
		_ = shutdownOTel(ctx)
		log.Sync()
		return nil, err
	}

	a, err := assemble(log, cfg, gdb)
	if err != nil {
		_ = db.Close(gdb)
		_ = shutdownOTel(ctx)
		log.Sync()
		return nil, err
	}
	a.shutdownOTel = shutdownOTel
	return a, nil
}

// OpenDatabase connects and, when enabled, migrates the schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	gdb, err := db.Open(log, cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrateAll(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	return gdb, nil
}

func assemble(log *logger.Logger, cfg Config, gdb *gorm.DB) (*App, error) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	hub := realtime.NewSSEHub(log)
	sseBus, err := bus.New(log, cfg.RedisBus())
	if err != nil {
		return nil, fmt.Errorf("init sse bus: %w", err)
	}

	reposet := wireRepos(gdb, log)
	serviceset, err := wireServices(gdb, log, cfg, reposet, sseBus, metrics)
	if err != nil {
		_ = sseBus.Close()
		return nil, err
	}
	handlerset, err := wireHandlers(log, gdb, serviceset, hub, sseBus, metrics)
	if err != nil {
		_ = sseBus.Close()
		return nil, err
	}
	middleware := wireMiddleware(log, serviceset)

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Server.Port))
	server := httpapi.NewServer(addr, routerConfig(log, cfg, handlerset, middleware, metrics))

	return &App{
		Log:      log,
		DB:       gdb,
		Router:   server.Engine,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Metrics:  metrics,
		SSEHub:   hub,
		SSEBus:   sseBus,
	}, nil
}

// Start connects the SSE bus to the local hub and applies the seed fixture
// when enabled.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start sse forwarder: %w", err)
	}

	if a.Cfg.Seed.Enabled {
		res, err := a.Seed(ctx)
		if err != nil {
			return err
		}
		a.Log.Info("Seed applied", "users_created", res.UsersCreated, "projects_created", res.ProjectsCreated)
	}
	return nil
}

func (a *App) Seed(ctx context.Context) (*seed.Result, error) {
	fixture, err := seed.Load(a.Cfg.Seed.File)
	if err != nil {
		return nil, fmt.Errorf("load seed fixture: %w", err)
	}
	res, err := a.Services.Seeder.Apply(ctx, fixture)
	if err != nil {
		return nil, fmt.Errorf("apply seed fixture: %w", err)
	}
	return res, nil
}

// Run serves HTTP until ctx is cancelled, then drains within the configured
// shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "port", a.Cfg.Server.Port)
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		a.Log.Info("HTTP server shutting down")
		return a.Server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Notifier != nil {
		a.Services.Notifier.Wait()
	}
	if a.SSEBus != nil {
		if err := a.SSEBus.Close(); err != nil {
			a.Log.Warn("SSE bus close failed", "error", err)
		}
	}
	if err := db.Close(a.DB); err != nil {
		a.Log.Warn("database close failed", "error", err)
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
