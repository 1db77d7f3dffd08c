package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/playmatatu/ballsim/internal/physics"
	"github.com/playmatatu/ballsim/internal/render"
)

// Material carries the per-ball physical parameters
type Material struct {
	Radius     float64 `json:"radius"`
	Mass       float64 `json:"mass"`
	Gravity    float64 `json:"gravity"`
	Elasticity float64 `json:"elasticity"`
	Friction   float64 `json:"friction"`
}

// DefaultMaterial matches physics.DefaultBall
func DefaultMaterial() Material {
	return Material{
		Radius:     physics.DefaultRadius,
		Mass:       physics.DefaultMass,
		Gravity:    physics.DefaultGravity,
		Elasticity: physics.DefaultElasticity,
		Friction:   physics.DefaultFriction,
	}
}

func (m Material) Validate() error {
	return physics.ValidateBallParams(m.Radius, m.Mass)
}

// FillParams appends Quantity identical balls at the origin
type FillParams struct {
	Quantity int `json:"quantity"`
	Material
}

// BallParams describes a single ball to push
type BallParams struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	Material
}

// DefaultMaxBalls caps a stage's ball count when no limit is configured
const DefaultMaxBalls = 1000

// StageParams describes a new stage
type StageParams struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Color     string   `json:"color"`
	BallCount int      `json:"ball_count"`
	Material  Material `json:"material"`
	Pairwise  bool     `json:"pairwise"`
	Seed      int64    `json:"seed"`

	// MaxBalls is set by the server, never by clients. Zero means DefaultMaxBalls.
	MaxBalls int `json:"-"`
}

func (p StageParams) maxBalls() int {
	if p.MaxBalls > 0 {
		return p.MaxBalls
	}
	return DefaultMaxBalls
}

func (p StageParams) Validate() error {
	if err := physics.ValidateStageSize(p.Width, p.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.BallCount < 0 {
		return fmt.Errorf("%w: ball_count must not be negative, got %d", ErrInvalidParams, p.BallCount)
	}
	if p.BallCount > p.maxBalls() {
		return fmt.Errorf("%w: ball_count %d exceeds the limit of %d", ErrInvalidParams, p.BallCount, p.maxBalls())
	}
	if err := p.Material.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Stage owns one ball collection. All mutation takes the write lock and
// every read (frames, markup, drawing) takes the read lock, so no reader
// ever observes a half-applied update.
type Stage struct {
	Token     string
	CreatedAt time.Time

	width  float64
	height float64
	color  string
	params StageParams

	balls      *physics.BallCollection
	rnd        *rand.Rand
	tick       int64
	lastActive time.Time

	mu sync.RWMutex
}

// NewStage fills the collection with p.BallCount balls and scatters them.
func NewStage(token string, p StageParams) (*Stage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Color == "" {
		p.Color = "#900000"
	}

	now := time.Now()
	s := &Stage{
		Token:      token,
		CreatedAt:  now,
		width:      p.Width,
		height:     p.Height,
		color:      p.Color,
		params:     p,
		balls:      physics.NewBallCollection(),
		rnd:        physics.NewRandomSource(p.Seed),
		lastActive: now,
	}
	m := p.Material
	s.balls.Fill(p.BallCount, m.Radius, m.Mass, m.Gravity, m.Elasticity, m.Friction)
	s.balls.SetPairwiseCollisions(p.Pairwise)
	s.balls.SetRandomPositionAndSpeedInBounds(s.width, s.height, s.rnd)
	return s, nil
}

func (s *Stage) Width() float64  { return s.width }
func (s *Stage) Height() float64 { return s.height }
func (s *Stage) Color() string   { return s.color }

// Params returns the parameters the stage was created with
func (s *Stage) Params() StageParams { return s.params }

func (s *Stage) Tick() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick
}

func (s *Stage) BallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balls.Len()
}

// Advance runs one update and returns the resulting frame.
func (s *Stage) Advance() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balls.Update(s.width, s.height)
	s.tick++
	return s.frameLocked()
}

// Frame returns the current state without advancing.
func (s *Stage) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked()
}

func (s *Stage) frameLocked() Frame {
	f := Frame{
		Token:     s.Token,
		Tick:      s.tick,
		Width:     s.width,
		Height:    s.height,
		Color:     s.color,
		Pairwise:  s.balls.PairwiseCollisions(),
		Balls:     make([]BallState, 0, s.balls.Len()),
		Timestamp: time.Now().UnixMilli(),
	}
	for _, b := range s.balls.All() {
		f.Balls = append(f.Balls, BallState{
			X:      b.X(),
			Y:      b.Y(),
			VX:     b.VelocityX(),
			VY:     b.VelocityY(),
			Radius: b.Radius(),
			Mass:   b.Mass(),
		})
	}
	return f
}

// Randomize re-scatters every ball using the stage's own random source.
func (s *Stage) Randomize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balls.SetRandomPositionAndSpeedInBounds(s.width, s.height, s.rnd)
	s.lastActive = time.Now()
}

// Fill appends balls at the origin with zero velocity.
func (s *Stage) Fill(p FillParams) error {
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative, got %d", ErrInvalidParams, p.Quantity)
	}
	if err := p.Material.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if room := s.params.maxBalls() - s.balls.Len(); p.Quantity > room {
		return fmt.Errorf("%w: quantity %d exceeds room for %d more balls", ErrInvalidParams, p.Quantity, room)
	}
	m := p.Material
	s.balls.Fill(p.Quantity, m.Radius, m.Mass, m.Gravity, m.Elasticity, m.Friction)
	s.lastActive = time.Now()
	return nil
}

func (s *Stage) PushBall(p BallParams) error {
	if err := p.Material.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balls.Len() >= s.params.maxBalls() {
		return fmt.Errorf("%w: stage already holds %d balls", ErrInvalidParams, s.balls.Len())
	}
	m := p.Material
	s.balls.Push(physics.NewBall(p.X, p.Y, p.VX, p.VY, m.Radius, m.Mass, m.Gravity, m.Elasticity, m.Friction))
	s.lastActive = time.Now()
	return nil
}

func (s *Stage) SetPairwise(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balls.SetPairwiseCollisions(enabled)
	s.lastActive = time.Now()
}

// Touch marks the stage as in use. Advancing does not count as use.
func (s *Stage) Touch(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.After(s.lastActive) {
		s.lastActive = at
	}
}

// LastActive is the last time an operator changed the stage or a viewer was seen.
func (s *Stage) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Markup renders the stage's balls as HTML.
func (s *Stage) Markup() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return render.CollectionMarkup(s.balls, s.color)
}

// Draw runs the canvas pass against d.
func (s *Stage) Draw(d render.Drawer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	render.DrawCollection(d, s.balls, s.color, s.width, s.height)
}

func (s *Stage) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("Stage{token: %s, tick: %d, %s}", s.Token, s.tick, s.balls)
}
