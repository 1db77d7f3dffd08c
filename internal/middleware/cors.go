package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/ballsim/internal/config"
)

// devOrigin reports whether origin is a localhost dev server
func devOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:")
}

// AllowedOrigins lists the exact origins accepted outside development
func AllowedOrigins(cfg *config.Config) []string {
	var origins []string
	for _, o := range strings.Split(cfg.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// OriginAllowed applies the same policy to HTTP and WebSocket requests
func OriginAllowed(cfg *config.Config, origin string) bool {
	if cfg.Environment == "development" && devOrigin(origin) {
		return true
	}
	for _, allowed := range AllowedOrigins(cfg) {
		if origin == allowed {
			return true
		}
	}
	return false
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, allowed origins: %v", cfg.Environment, AllowedOrigins(cfg))

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(cfg, origin)
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization", "Accept",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Stage-Token", "X-Stage-Tick",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			// non-browser clients (CLI viewers, tests) send no Origin
			c.Next()
			return
		}

		if !OriginAllowed(cfg, origin) {
			log.Printf("[CORS] Rejected WebSocket origin %s", origin)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}
