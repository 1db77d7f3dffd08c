package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playmatatu/ballsim/internal/models"
)

// RecordRun inserts a simulation_runs row for s. No-op without a database.
func (m *Manager) RecordRun(ctx context.Context, s *Stage) error {
	if m == nil || m.db == nil || s == nil {
		return nil
	}

	params, err := json.Marshal(s.Params())
	if err != nil {
		return fmt.Errorf("marshal stage params: %w", err)
	}

	_, err = m.db.ExecContext(ctx,
		`INSERT INTO simulation_runs (stage_token, width, height, params, created_at) VALUES ($1,$2,$3,$4::jsonb,$5)`,
		s.Token, s.Width(), s.Height(), string(params), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// EndRun stamps ended_at on the stage's run.
func (m *Manager) EndRun(ctx context.Context, token string) error {
	if m == nil || m.db == nil {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `UPDATE simulation_runs SET ended_at = NOW() WHERE stage_token = $1 AND ended_at IS NULL`, token)
	if err != nil {
		return fmt.Errorf("end simulation run: %w", err)
	}
	return nil
}

// RecordSnapshot stores the frame as JSONB.
func (m *Manager) RecordSnapshot(ctx context.Context, f Frame) error {
	if m == nil || m.db == nil {
		return nil
	}

	data, err := f.Encode(FormatJSON)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	_, err = m.db.ExecContext(ctx,
		`INSERT INTO simulation_snapshots (stage_token, tick, ball_count, frame, created_at) VALUES ($1,$2,$3,$4::jsonb,NOW())`,
		f.Token, f.Tick, len(f.Balls), string(data),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot for stage %s tick %d: %w", f.Token, f.Tick, err)
	}
	return nil
}

// ListSnapshots returns the most recent snapshots of a stage, newest first.
func (m *Manager) ListSnapshots(ctx context.Context, token string, limit, offset int) ([]models.SimulationSnapshot, error) {
	snapshots := []models.SimulationSnapshot{}
	if m == nil || m.db == nil {
		return snapshots, nil
	}
	err := m.db.SelectContext(ctx, &snapshots, `
		SELECT id, stage_token, tick, ball_count, frame, created_at
		FROM simulation_snapshots
		WHERE stage_token = $1
		ORDER BY tick DESC
		LIMIT $2 OFFSET $3
	`, token, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snapshots, nil
}

// HasDatabase reports whether persistence is enabled
func (m *Manager) HasDatabase() bool {
	return m != nil && m.db != nil
}
