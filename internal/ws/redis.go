package ws

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/ballsim/internal/game"
)

// StartFrameSubscriber relays frames published on game.FrameChannel by any
// instance into this hub's rooms.
func StartFrameSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil || hub == nil {
		log.Println("[WS] Redis client not set; frame subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.FrameChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.FrameChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", game.FrameChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					log.Printf("[WS] %s subscription closed", game.FrameChannel)
					return
				}
				f, err := game.DecodeFrame([]byte(msg.Payload), game.FormatMsgpack)
				if err != nil {
					log.Printf("[WS] invalid frame payload: %v", err)
					continue
				}
				hub.BroadcastFrame(f)
			}
		}
	}()
}
