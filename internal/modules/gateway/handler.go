package gateway

import (
	"github.com/edenspa/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// MountSocket serves the socket.io transport at /socket.io.
func MountSocket(r gin.IRoutes, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	r.Any("/socket.io", handler)
	r.Any("/socket.io/*any", handler)
}

// RegisterRoutes mounts the stats endpoint under rg.
func RegisterRoutes(rg *gin.RouterGroup, hub *Hub) {
	rg.GET("/gateway/stats", func(c *gin.Context) {
		response.OK(c, hub.Stats(c.Request.Context()))
	})
}
