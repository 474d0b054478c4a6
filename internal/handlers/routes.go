package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router gin.IRouter) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.GET("/regions", ListRegions)
		v1.GET("/preferences", GetWeights)
		v1.GET("/selections", ListSelections)

		s := v1.Group("/sessions")
		{
			s.POST("", CreateSession)
			s.DELETE("/:id", DeleteSession)
			s.PUT("/:id/position", UpdatePosition)
			s.POST("/:id/events", PostEvent)
			s.POST("/:id/recompute", Recompute)
			s.GET("/:id/markers", GetMarkers)
			s.GET("/:id/stores/:storeId", GetStoreDetail)
			s.GET("/:id/ranking.xlsx", ExportRanking)
			s.POST("/:id/selections", RecordSelection)
		}
	}
}
