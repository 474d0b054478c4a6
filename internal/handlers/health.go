package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeradar/radar-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string              `json:"status"`
	Database string              `json:"database"`
	Pool     *database.PoolStats `json:"pool,omitempty"`
	Sessions int                 `json:"sessions"`
}

// HealthCheck handles the health check endpoint
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}
	if sessions != nil {
		response.Sessions = sessions.Len()
	}

	if pool := database.Pool(); pool != nil {
		response.Pool = database.Stats(pool)
		if err := database.Status(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
