package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/ballsim/internal/config"
)

// TickInterval converts a rate in Hz to a ticker period. Non-positive rates
// fall back to 60 Hz and rates above config.MaxTickRateHz are capped.
func TickInterval(rateHz int) time.Duration {
	if rateHz <= 0 {
		rateHz = 60
	}
	rateHz = min(rateHz, config.MaxTickRateHz)
	return time.Second / time.Duration(rateHz)
}

// StartTickWorker advances every stage once per tick and hands each frame to sink.
// It returns immediately; the worker stops when ctx is cancelled.
func StartTickWorker(ctx context.Context, m *Manager, cfg *config.Config, sink FrameSink) {
	if m == nil || sink == nil {
		log.Println("[GAME] Manager or sink missing; tick worker not started")
		return
	}

	rate := 60
	if cfg != nil {
		rate = cfg.TickRateHz
	}
	interval := TickInterval(rate)

	log.Printf("[GAME] Tick worker started (%v per tick)", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[GAME] Tick worker stopping")
				return
			case <-ticker.C:
				AdvanceAll(ctx, m, sink)
			}
		}
	}()
}

// AdvanceAll runs one tick on every stage.
func AdvanceAll(ctx context.Context, m *Manager, sink FrameSink) {
	for _, s := range m.Stages() {
		f := s.Advance()
		sink.PublishFrame(ctx, f)
	}
}
