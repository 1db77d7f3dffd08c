package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(m *game.Manager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "ballsim-api",
			"version":     version,
			"uptime":      time.Since(startTime).String(),
			"stages":      m.StageCount(),
			"viewers":     hub.ClientCount(),
			"persistence": m.HasDatabase(),
		})
	}
}
