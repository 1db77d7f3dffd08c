package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// SimulationRun is one stage created on this server
type SimulationRun struct {
	ID         int64           `db:"id" json:"id"`
	StageToken string          `db:"stage_token" json:"stage_token"`
	Width      float64         `db:"width" json:"width"`
	Height     float64         `db:"height" json:"height"`
	Params     json.RawMessage `db:"params" json:"params"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	EndedAt    sql.NullTime    `db:"ended_at" json:"ended_at,omitempty"`
}

// SimulationSnapshot is a frame captured at a given tick
type SimulationSnapshot struct {
	ID         int64           `db:"id" json:"id"`
	StageToken string          `db:"stage_token" json:"stage_token"`
	Tick       int64           `db:"tick" json:"tick"`
	BallCount  int             `db:"ball_count" json:"ball_count"`
	Frame      json.RawMessage `db:"frame" json:"frame"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Operator may create and steer stages
type Operator struct {
	Name        string         `db:"name" json:"name"`
	DisplayName sql.NullString `db:"display_name" json:"display_name,omitempty"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// OperatorAudit represents an operator action audit entry
type OperatorAudit struct {
	ID           int64           `db:"id" json:"id"`
	OperatorName string          `db:"operator_name" json:"operator_name"`
	IP           string          `db:"ip" json:"ip"`
	Route        string          `db:"route" json:"route"`
	Action       string          `db:"action" json:"action"`
	Details      json.RawMessage `db:"details" json:"details"`
	Success      bool            `db:"success" json:"success"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
