package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playmatatu/ballsim/internal/api"
	"github.com/playmatatu/ballsim/internal/config"
	"github.com/playmatatu/ballsim/internal/database"
	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/migrations"
	"github.com/playmatatu/ballsim/internal/redis"
	"github.com/playmatatu/ballsim/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database (optional)
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Run migrations on start if requested
	if cfg.MigrateOnStart && db != nil {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis (optional)
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Stages
	manager := game.NewManager(db, rdb, cfg)
	if _, err := manager.InitializeDefaultStage(ctx); err != nil {
		log.Fatalf("Failed to create default stage: %v", err)
	}

	// Viewers
	hub := ws.NewHub()
	go hub.Run(ctx)

	// With Redis, every instance hears frames through the subscriber; without
	// it the tick worker feeds the local hub directly.
	sinks := game.MultiSink{}
	if rdb != nil {
		sinks = append(sinks, game.NewRedisSink(rdb, time.Duration(cfg.FrameTTLSeconds)*time.Second))
		ws.StartFrameSubscriber(ctx, rdb, hub)
	} else {
		sinks = append(sinks, hub)
	}
	if snap := game.NewSnapshotSink(manager, cfg.SnapshotEveryTicks); snap != nil && db != nil {
		sinks = append(sinks, snap)
	}
	game.StartTickWorker(ctx, manager, cfg, sinks)
	game.StartIdleWorker(ctx, manager, cfg, hub)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, cfg, manager, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting ballsim server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
