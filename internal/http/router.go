package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	httpH "github.com/raohuzaifa081-blip/webotixscrm/internal/http/handlers"
	httpMW "github.com/raohuzaifa081-blip/webotixscrm/internal/http/middleware"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

const (
	metricsPath = "/metrics"
	streamPath  = "/api/events/stream"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics
	Tracing     bool

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	AdminHandler    *httpH.AdminHandler
	TeamHandler     *httpH.TeamHandler
	ClientHandler   *httpH.ClientHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, metricsPath, streamPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET(metricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	if cfg.AuthMiddleware == nil {
		return r
	}
	// Realtime (SSE); the only route that takes ?token=
	if cfg.RealtimeHandler != nil {
		api.GET("/events/stream", cfg.AuthMiddleware.RequireStreamAuth(), cfg.RealtimeHandler.Stream)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}

	if cfg.AdminHandler != nil {
		admin := protected.Group("/admin", httpMW.RequireRole(types.RoleAdmin))
		admin.POST("/clients", cfg.AdminHandler.OnboardClient)
		admin.GET("/reports", cfg.AdminHandler.Reports)
		admin.GET("/users", cfg.AdminHandler.ListUsers)
	}

	if cfg.TeamHandler != nil {
		team := protected.Group("/team", httpMW.RequireRole(types.RoleTeam, types.RoleAdmin))
		team.GET("/tasks", cfg.TeamHandler.MyTasks)
		team.GET("/projects", cfg.TeamHandler.Projects)
		team.PATCH("/tasks/:taskId", cfg.TeamHandler.UpdateTaskStatus)
	}

	if cfg.ClientHandler != nil {
		client := protected.Group("/client", httpMW.RequireRole(types.RoleClient))
		client.GET("/dashboard", cfg.ClientHandler.Dashboard)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
