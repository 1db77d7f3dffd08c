package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/playmatatu/ballsim/internal/physics"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// MaxTickRateHz bounds TICK_RATE_HZ
const MaxTickRateHz = 1000

type Config struct {
	// Environment
	Environment string

	// Server
	Port        string
	FrontendURL string

	// Storage (empty disables the feature)
	DatabaseURL    string
	RedisURL       string
	MigrateOnStart bool

	// Security
	JWTSecret               string
	OperatorTokenTTLMinutes int

	// Stage
	StageWidth  float64
	StageHeight float64
	BallColor   string

	// Ball material for the default stage
	BallCount      int
	BallRadius     float64
	BallMass       float64
	BallGravity    float64
	BallElasticity float64
	BallFriction   float64

	// Simulation
	PairwiseCollisions bool
	TickRateHz         int
	RandomSeed         int64
	SnapshotEveryTicks int
	FrameTTLSeconds    int
	MaxStages          int
	MaxBallsPerStage   int

	// Idle stage reaping
	IdleStageSeconds       int
	IdleWorkerPollInterval int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Storage
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Security
		JWTSecret:               getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorTokenTTLMinutes: getEnvInt("OPERATOR_TOKEN_TTL_MINUTES", 60),

		// Stage
		StageWidth:  getEnvFloat("STAGE_WIDTH", 800),
		StageHeight: getEnvFloat("STAGE_HEIGHT", 600),
		BallColor:   getEnv("BALL_COLOR", "#900000"),

		// Ball material
		BallCount:      getEnvInt("BALL_COUNT", 5),
		BallRadius:     getEnvFloat("BALL_RADIUS", physics.DefaultRadius),
		BallMass:       getEnvFloat("BALL_MASS", physics.DefaultMass),
		BallGravity:    getEnvFloat("BALL_GRAVITY", physics.DefaultGravity),
		BallElasticity: getEnvFloat("BALL_ELASTICITY", physics.DefaultElasticity),
		BallFriction:   getEnvFloat("BALL_FRICTION", physics.DefaultFriction),

		// Simulation
		PairwiseCollisions: getEnvBool("PAIRWISE_COLLISIONS", false),
		TickRateHz:         getEnvInt("TICK_RATE_HZ", 60),
		RandomSeed:         getEnvInt64("RANDOM_SEED", 0),
		SnapshotEveryTicks: getEnvInt("SNAPSHOT_EVERY_TICKS", 600),
		FrameTTLSeconds:    getEnvInt("FRAME_TTL_SECONDS", 60),
		MaxStages:          getEnvInt("MAX_STAGES", 16),
		MaxBallsPerStage:   getEnvInt("MAX_BALLS_PER_STAGE", 1000),

		IdleStageSeconds:       getEnvInt("IDLE_STAGE_SECONDS", 900),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 30),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if err := physics.ValidateStageSize(c.StageWidth, c.StageHeight); err != nil {
		problems = append(problems, err.Error())
	}
	if c.BallCount < 0 {
		problems = append(problems, fmt.Sprintf("BALL_COUNT must not be negative, got %d", c.BallCount))
	}
	if c.MaxBallsPerStage <= 0 {
		problems = append(problems, fmt.Sprintf("MAX_BALLS_PER_STAGE must be positive, got %d", c.MaxBallsPerStage))
	} else if c.BallCount > c.MaxBallsPerStage {
		problems = append(problems, fmt.Sprintf("BALL_COUNT %d exceeds MAX_BALLS_PER_STAGE %d", c.BallCount, c.MaxBallsPerStage))
	}
	if err := physics.ValidateBallParams(c.BallRadius, c.BallMass); err != nil {
		problems = append(problems, err.Error())
	}
	if c.TickRateHz <= 0 || c.TickRateHz > MaxTickRateHz {
		problems = append(problems, fmt.Sprintf("TICK_RATE_HZ must be between 1 and %d, got %d", MaxTickRateHz, c.TickRateHz))
	}
	if c.SnapshotEveryTicks < 0 {
		problems = append(problems, fmt.Sprintf("SNAPSHOT_EVERY_TICKS must not be negative, got %d", c.SnapshotEveryTicks))
	}
	if c.MaxStages <= 0 {
		problems = append(problems, fmt.Sprintf("MAX_STAGES must be positive, got %d", c.MaxStages))
	}
	if c.IdleStageSeconds < 0 {
		problems = append(problems, fmt.Sprintf("IDLE_STAGE_SECONDS must not be negative, got %d", c.IdleStageSeconds))
	}
	if c.IdleStageSeconds > 0 && c.IdleWorkerPollInterval <= 0 {
		problems = append(problems, fmt.Sprintf("IDLE_WORKER_POLL_INTERVAL must be positive, got %d", c.IdleWorkerPollInterval))
	}
	if c.Environment == "production" && c.JWTSecret == "change-me-in-production" {
		problems = append(problems, "JWT_SECRET must be set in production")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
