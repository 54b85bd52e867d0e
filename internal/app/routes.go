package app

import (
	"time"

	"github.com/edenspa/core/internal/middleware"
	"github.com/edenspa/core/internal/modules/gateway"
	"github.com/edenspa/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(spaHandler(a.cfg.StaticDir()))
	r.NoMethod(func(c *gin.Context) {
		response.NotFound(c)
	})

	gateway.MountSocket(r, a.hub)

	var rdb *redis.Client
	if a.rc != nil {
		rdb = a.rc.Raw()
	}
	api := r.Group("/api")
	api.Use(middleware.RateLimit(rdb, apiRateLimit, a.logger.Named("ratelimit")))

	api.GET("/state", func(c *gin.Context) {
		if !a.store.Loaded() {
			response.ServiceUnavailable(c, "document not loaded")
			return
		}
		response.OK(c, a.store.Snapshot())
	})

	api.GET("/health", func(c *gin.Context) {
		uptime := time.Since(a.started)
		response.OK(c, gin.H{
			"status":    "ok",
			"uptime":    uptime.Milliseconds(),
			"humanize":  humanizeDuration(uptime),
			"sessions":  a.hub.ClientCount(),
			"storage":   a.cfg.Storage.Driver,
			"timestamp": time.Now().UnixMilli(),
		})
	})

	gateway.RegisterRoutes(api, a.hub)
}
