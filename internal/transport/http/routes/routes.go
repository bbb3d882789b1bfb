package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
	"github.com/Singularity-Shift/sui-squad/internal/transport/http/handlers"
	"github.com/Singularity-Shift/sui-squad/internal/transport/http/middleware"
	"github.com/Singularity-Shift/sui-squad/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Sessions    *usecase.SessionService
	Messenger   port.Messenger
	HTTPMetrics *middleware.HTTPMetrics
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	healthHandler := handlers.NewHealthHandler()
	r.GET("/healthz", healthHandler.Status)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Messenger, deps.Logger)
	r.GET("/webhook/token", authHandler.TokenPage)
	r.POST("/keep", authHandler.KeepToken)

	return r
}
