package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/handler"
	"github.com/noah-isme/growth-archive/internal/middleware"
	"github.com/noah-isme/growth-archive/internal/service"
	"github.com/noah-isme/growth-archive/pkg/config"
	"github.com/noah-isme/growth-archive/pkg/logger"
	corsmiddleware "github.com/noah-isme/growth-archive/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/growth-archive/pkg/middleware/requestid"
)

// Handlers groups everything the gateway routes to.
type Handlers struct {
	Session       *handler.SessionHandler
	Archives      *handler.ArchiveHandler
	Dashboard     *handler.DashboardHandler
	Notifications *handler.NotificationHandler
	Profile       *handler.ProfileHandler
	Exports       *handler.ExportHandler
	Metrics       *handler.MetricsHandler
}

// New builds the gateway engine.
func New(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := strings.TrimRight(cfg.Gateway.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	sessions := api.Group("/session")
	sessions.GET("", h.Session.Get)
	sessions.POST("/login", h.Session.Login)
	sessions.POST("/register", h.Session.Register)
	sessions.POST("/logout", h.Session.Logout)
	sessions.POST("/refresh", h.Session.Refresh)
	sessions.DELETE("/account", h.Session.RequireLogin(), h.Session.DeleteAccount)

	// Signed tokens carry their own authorization.
	api.GET("/exports/download", h.Exports.Download)

	secured := api.Group("")
	secured.Use(h.Session.RequireLogin())

	archives := secured.Group("/archives")
	archives.GET("", h.Archives.List)
	archives.POST("", h.Archives.Create)
	archives.GET("/:id", h.Archives.Get)
	archives.PUT("/:id", h.Archives.Update)
	archives.DELETE("/:id", h.Archives.Delete)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("", h.Dashboard.Get)
	dashboard.GET("/candidates", h.Dashboard.Candidates)
	dashboard.PUT("/pins", h.Dashboard.SetPins)

	notifications := secured.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.PUT("/read-all", h.Notifications.MarkAllRead)
	notifications.GET("/:id", h.Notifications.Get)
	notifications.PUT("/:id/read", h.Notifications.MarkRead)

	secured.GET("/profile", h.Profile.Get)
	secured.PUT("/profile", h.Profile.Update)

	secured.POST("/exports", h.Exports.Create)

	return r
}
