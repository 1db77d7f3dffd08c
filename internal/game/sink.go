package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// FrameChannel is the Redis pub/sub channel carrying msgpack frames
const FrameChannel = "stage_frames"

// FrameKey is the Redis key caching a stage's latest frame
func FrameKey(token string) string {
	return "stage:" + token + ":frame"
}

// FrameSink receives every frame the tick worker produces
type FrameSink interface {
	PublishFrame(ctx context.Context, f Frame)
}

// SinkFunc adapts a function to FrameSink
type SinkFunc func(ctx context.Context, f Frame)

func (fn SinkFunc) PublishFrame(ctx context.Context, f Frame) { fn(ctx, f) }

// MultiSink fans a frame out to each sink in order
type MultiSink []FrameSink

func (ms MultiSink) PublishFrame(ctx context.Context, f Frame) {
	for _, s := range ms {
		if s != nil {
			s.PublishFrame(ctx, f)
		}
	}
}

// RedisSink caches the latest frame per stage and publishes it for other instances.
type RedisSink struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSink(rdb *redis.Client, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisSink{rdb: rdb, ttl: ttl}
}

func (s *RedisSink) PublishFrame(ctx context.Context, f Frame) {
	if s == nil || s.rdb == nil {
		return
	}
	data, err := f.Encode(FormatMsgpack)
	if err != nil {
		log.Printf("[REDIS] Failed to encode frame for stage %s: %v", f.Token, err)
		return
	}
	pipe := s.rdb.Pipeline()
	pipe.SetEx(ctx, FrameKey(f.Token), data, s.ttl)
	pipe.Publish(ctx, FrameChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[REDIS] Failed to publish frame for stage %s tick %d: %v", f.Token, f.Tick, err)
	}
}

// LoadCachedFrame reads the latest frame another instance published.
func LoadCachedFrame(ctx context.Context, rdb *redis.Client, token string) (Frame, error) {
	if rdb == nil {
		return Frame{}, ErrStageNotFound
	}
	data, err := rdb.Get(ctx, FrameKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Frame{}, ErrStageNotFound
	}
	if err != nil {
		return Frame{}, fmt.Errorf("load cached frame for stage %s: %w", token, err)
	}
	return DecodeFrame(data, FormatMsgpack)
}

// SnapshotRecorder persists a frame
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, f Frame) error
}

// SnapshotSink records every Nth tick of each stage.
type SnapshotSink struct {
	recorder SnapshotRecorder
	every    int64
}

// NewSnapshotSink returns nil when every is not positive.
func NewSnapshotSink(recorder SnapshotRecorder, every int) *SnapshotSink {
	if every <= 0 || recorder == nil {
		return nil
	}
	return &SnapshotSink{recorder: recorder, every: int64(every)}
}

func (s *SnapshotSink) PublishFrame(ctx context.Context, f Frame) {
	if s == nil || f.Tick%s.every != 0 {
		return
	}
	if err := s.recorder.RecordSnapshot(ctx, f); err != nil {
		log.Printf("[DB] Snapshot failed: %v", err)
	}
}
