package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect returns a pinged client, or nil when redisURL is empty
// (frame caching and cross-instance fan-out are then disabled).
func Connect(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		log.Println("[REDIS] REDIS_URL not set; frame cache and pub/sub disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opt.Addr, err)
	}

	log.Printf("[REDIS] Connected to %s (db=%d)", opt.Addr, opt.DB)
	return client, nil
}
