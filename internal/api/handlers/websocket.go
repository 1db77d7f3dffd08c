package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/ballsim/internal/config"
	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/ws"
)

// HandleStageWebSocket streams frames; ?auth= accepts an operator JWT
func HandleStageWebSocket(m *game.Manager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(m, hub, func(token string) (string, error) {
		return ParseOperatorToken(cfg, token)
	})
}
