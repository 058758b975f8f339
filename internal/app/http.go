package app

import (
	"gorm.io/gorm"

	httpapi "github.com/raohuzaifa081-blip/webotixscrm/internal/http"
	httpH "github.com/raohuzaifa081-blip/webotixscrm/internal/http/handlers"
	httpMW "github.com/raohuzaifa081-blip/webotixscrm/internal/http/middleware"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime/bus"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Admin    *httpH.AdminHandler
	Team     *httpH.TeamHandler
	Client   *httpH.ClientHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services, hub *realtime.SSEHub, sseBus bus.Bus, metrics *observability.Metrics) (Handlers, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := db.DB()
	if err != nil {
		return Handlers{}, err
	}
	return Handlers{
		Health: httpH.NewHealthHandler(map[string]httpH.Pinger{
			"database":     sqlDB,
			"realtime bus": httpH.PingerFunc(sseBus.Ping),
		}),
		Auth:     httpH.NewAuthHandler(log, svc.Auth, svc.Directory),
		Admin:    httpH.NewAdminHandler(log, svc.Workflow, svc.Reports, svc.Directory),
		Team:     httpH.NewTeamHandler(log, svc.TaskLedger),
		Client:   httpH.NewClientHandler(log, svc.Dashboard),
		Realtime: httpH.NewRealtimeHandler(log, hub, svc.Subscriptions, metrics),
	}, nil
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, svc.Auth)}
}

func routerConfig(log *logger.Logger, cfg Config, h Handlers, mw Middleware, metrics *observability.Metrics) httpapi.RouterConfig {
	return httpapi.RouterConfig{
		Log:             log,
		ServiceName:     cfg.Otel.ServiceName,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Metrics:         metrics,
		Tracing:         cfg.Otel.Enabled,
		AuthMiddleware:  mw.Auth,
		AuthHandler:     h.Auth,
		AdminHandler:    h.Admin,
		TeamHandler:     h.Team,
		ClientHandler:   h.Client,
		RealtimeHandler: h.Realtime,
		HealthHandler:   h.Health,
	}
}
