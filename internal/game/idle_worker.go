package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/ballsim/internal/config"
)

// ViewerCounter reports how many viewers are attached to a stage.
type ViewerCounter interface {
	RoomSize(stageToken string) int
}

// StartIdleWorker starts a background worker that deletes stages nobody has
// watched or steered for cfg.IdleStageSeconds. The default stage is never reaped.
func StartIdleWorker(ctx context.Context, m *Manager, cfg *config.Config, viewers ViewerCounter) {
	if cfg == nil || cfg.IdleStageSeconds <= 0 || cfg.IdleWorkerPollInterval <= 0 {
		log.Println("[IDLE] Idle stage reaping disabled")
		return
	}

	idleFor := time.Duration(cfg.IdleStageSeconds) * time.Second
	log.Printf("[IDLE] Idle worker started (idle after %s)", idleFor)
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.IdleWorkerPollInterval) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				if reaped := ReapIdleStages(ctx, m, viewers, idleFor, now); len(reaped) > 0 {
					log.Printf("[IDLE] Reaped %d idle stage(s): %v", len(reaped), reaped)
				}
			}
		}
	}()
}

// ReapIdleStages deletes every non-default stage whose last activity is older
// than idleFor at now. A stage with viewers attached counts as active. It
// returns the tokens it deleted.
func ReapIdleStages(ctx context.Context, m *Manager, viewers ViewerCounter, idleFor time.Duration, now time.Time) []string {
	var reaped []string
	def := m.DefaultStage()
	for _, s := range m.Stages() {
		if s == def {
			continue
		}
		if viewers != nil && viewers.RoomSize(s.Token) > 0 {
			s.Touch(now)
			continue
		}
		if now.Sub(s.LastActive()) < idleFor {
			continue
		}
		if err := m.DeleteStage(ctx, s.Token); err != nil {
			log.Printf("[IDLE] Failed to delete idle stage %s: %v", s.Token, err)
			continue
		}
		reaped = append(reaped, s.Token)
	}
	return reaped
}
