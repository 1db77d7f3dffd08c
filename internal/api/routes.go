package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/ballsim/internal/api/handlers"
	"github.com/playmatatu/ballsim/internal/config"
	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/middleware"
	"github.com/playmatatu/ballsim/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config, m *game.Manager, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m, hub))

		operators := v1.Group("/operators")
		{
			operators.POST("/login", handlers.OperatorLogin(db, cfg))
			operators.GET("/me", handlers.OperatorAuthMiddleware(cfg), handlers.OperatorMe())
			operators.GET("/audit", handlers.OperatorAuthMiddleware(cfg), handlers.GetAuditLogs(db))
		}

		stages := v1.Group("/stages")
		{
			stages.GET("", handlers.ListStages(m))
			stages.GET("/:token", handlers.GetStageFrame(m))
			stages.GET("/:token/html", handlers.GetStageHTML(m))
			stages.GET("/:token/snapshots", handlers.ListSnapshots(m))
			stages.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleStageWebSocket(m, hub, cfg))
		}

		// Operator endpoints
		op := v1.Group("/stages", handlers.OperatorAuthMiddleware(cfg))
		{
			op.POST("", handlers.CreateStage(m, db))
			op.DELETE("/:token", handlers.DeleteStage(m, hub, db))
			op.POST("/:token/randomize", handlers.RandomizeStage(m, hub, db))
			op.POST("/:token/fill", handlers.FillStage(m, hub, db))
			op.POST("/:token/balls", handlers.PushBall(m, hub, db))
			op.PUT("/:token/pairwise", handlers.SetPairwise(m, hub, db))
			op.POST("/:token/step", handlers.StepStage(m, hub, db))
		}
	}
}
