package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request with an X-Request-ID so log lines can be
// correlated across the aggregation pipeline.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())
	router.Use(RequestID())

	api := router.Group("/api")
	{
		api.GET("/market", handler.GetMarket)
		api.GET("/market/history", handler.GetMarketHistory)
		api.GET("/regions", handler.GetRegions)
	}
}
