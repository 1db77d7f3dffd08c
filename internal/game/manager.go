package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/ballsim/internal/config"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrTooManyStages = errors.New("too many stages")
	ErrInvalidParams = errors.New("invalid stage parameters")
)

// Manager owns every live stage on this server
type Manager struct {
	stages       map[string]*Stage // keyed by token
	order        []string          // creation order
	defaultToken string
	maxStages    int
	maxBalls     int
	db           *sqlx.DB      // SQL DB for run and snapshot records, may be nil
	rdb          *redis.Client // Redis client for the frame cache, may be nil
	config       *config.Config
	mu           sync.RWMutex
}

// NewManager creates an empty manager. db and rdb may be nil.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Manager {
	maxStages := 16
	if cfg != nil && cfg.MaxStages > 0 {
		maxStages = cfg.MaxStages
	}
	maxBalls := DefaultMaxBalls
	if cfg != nil && cfg.MaxBallsPerStage > 0 {
		maxBalls = cfg.MaxBallsPerStage
	}
	return &Manager{
		stages:    make(map[string]*Stage),
		maxStages: maxStages,
		maxBalls:  maxBalls,
		db:        db,
		rdb:       rdb,
		config:    cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate stage token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// DefaultParams builds stage parameters from the configuration.
func (m *Manager) DefaultParams() StageParams {
	cfg := m.config
	if cfg == nil {
		return StageParams{Width: 800, Height: 600, Color: "#900000", BallCount: 5, Material: DefaultMaterial(), MaxBalls: m.maxBalls}
	}
	return StageParams{
		Width:     cfg.StageWidth,
		Height:    cfg.StageHeight,
		Color:     cfg.BallColor,
		BallCount: cfg.BallCount,
		Material: Material{
			Radius:     cfg.BallRadius,
			Mass:       cfg.BallMass,
			Gravity:    cfg.BallGravity,
			Elasticity: cfg.BallElasticity,
			Friction:   cfg.BallFriction,
		},
		Pairwise: cfg.PairwiseCollisions,
		Seed:     cfg.RandomSeed,
		MaxBalls: m.maxBalls,
	}
}

// InitializeDefaultStage creates the stage viewers land on.
func (m *Manager) InitializeDefaultStage(ctx context.Context) (*Stage, error) {
	s, err := m.CreateStage(ctx, m.DefaultParams())
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.defaultToken = s.Token
	m.mu.Unlock()
	log.Printf("[GAME] Default stage %s created (%d balls, %vx%v)", s.Token, s.BallCount(), s.Width(), s.Height())
	return s, nil
}

// CreateStage validates p, registers a new stage and records the run.
func (m *Manager) CreateStage(ctx context.Context, p StageParams) (*Stage, error) {
	p.MaxBalls = m.maxBalls
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if len(m.stages) >= m.maxStages {
		m.mu.Unlock()
		return nil, ErrTooManyStages
	}
	var token string
	for token == "" || m.stages[token] != nil {
		t, err := generateToken(8)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		token = t
	}
	s, err := NewStage(token, p)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.stages[token] = s
	m.order = append(m.order, token)
	m.mu.Unlock()

	if err := m.RecordRun(ctx, s); err != nil {
		log.Printf("[DB] Failed to record run for stage %s: %v", token, err)
	}
	return s, nil
}

func (m *Manager) GetStage(token string) (*Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stages[token]
	if !ok {
		return nil, ErrStageNotFound
	}
	return s, nil
}

// CurrentFrame returns the latest frame of a stage. Stages hosted by another
// instance are read from the Redis frame cache; without Redis, or once the
// cached frame has expired, the result is ErrStageNotFound.
func (m *Manager) CurrentFrame(ctx context.Context, token string) (Frame, error) {
	if s, err := m.GetStage(token); err == nil {
		return s.Frame(), nil
	}
	return LoadCachedFrame(ctx, m.rdb, token)
}

// DefaultStage returns nil when no default stage exists.
func (m *Manager) DefaultStage() *Stage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stages[m.defaultToken]
}

// DeleteStage forgets the stage and closes its run record.
func (m *Manager) DeleteStage(ctx context.Context, token string) error {
	m.mu.Lock()
	if _, ok := m.stages[token]; !ok {
		m.mu.Unlock()
		return ErrStageNotFound
	}
	delete(m.stages, token)
	for i, t := range m.order {
		if t == token {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.defaultToken == token {
		m.defaultToken = ""
	}
	m.mu.Unlock()

	if err := m.EndRun(ctx, token); err != nil {
		log.Printf("[DB] Failed to end run for stage %s: %v", token, err)
	}
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, FrameKey(token)).Err(); err != nil {
			log.Printf("[REDIS] Failed to drop cached frame for stage %s: %v", token, err)
		}
	}
	log.Printf("[GAME] Stage %s deleted", token)
	return nil
}

// Stages lists live stages in creation order.
func (m *Manager) Stages() []*Stage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Stage, 0, len(m.order))
	for _, t := range m.order {
		out = append(out, m.stages[t])
	}
	return out
}

func (m *Manager) StageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stages)
}
