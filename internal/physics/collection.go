package physics

import (
	"iter"
	"strings"
)

// BallCollection is an ordered set of balls it owns exclusively. It is not
// safe for concurrent use: callers serialize Update against everything else.
type BallCollection struct {
	balls    []*Ball
	pairwise bool
}

func NewBallCollection() *BallCollection {
	return &BallCollection{balls: make([]*Ball, 0)}
}

// Push appends b. The collection takes ownership; callers must not keep
// mutating b afterwards.
func (c *BallCollection) Push(b *Ball) {
	c.balls = append(c.balls, b)
}

// Fill appends quantity resting balls at the origin sharing one material.
func (c *BallCollection) Fill(quantity int, radius, mass, gravity, elasticity, friction float64) {
	for i := 0; i < quantity; i++ {
		c.Push(NewBall(0, 0, 0, 0, radius, mass, gravity, elasticity, friction))
	}
}

func (c *BallCollection) Len() int {
	return len(c.balls)
}

// SetPairwiseCollisions turns the ball-vs-ball sweep in Update on or off.
// It is off by default.
func (c *BallCollection) SetPairwiseCollisions(enabled bool) {
	c.pairwise = enabled
}

func (c *BallCollection) PairwiseCollisions() bool {
	return c.pairwise
}

// Update runs one frame: integrate every ball, resolve every border
// collision, then, when enabled, one pass over all unordered pairs.
func (c *BallCollection) Update(stageWidth, stageHeight float64) {
	c.step()
	c.manageStageBorderCollision(stageWidth, stageHeight)
	if c.pairwise {
		c.resolveBallCollisions()
	}
}

// SetRandomPositionAndSpeedInBounds respawns every ball, in order, from rnd.
func (c *BallCollection) SetRandomPositionAndSpeedInBounds(stageWidth, stageHeight float64, rnd RandomSource) {
	for _, b := range c.balls {
		b.SetRandomPositionAndSpeedInBounds(stageWidth, stageHeight, rnd)
	}
}

// At returns a copy of the i-th ball.
func (c *BallCollection) At(i int) Ball {
	return *c.balls[i]
}

// All yields copies of the balls in insertion order, so renderers can read
// position and radius without being able to move anything.
func (c *BallCollection) All() iter.Seq2[int, Ball] {
	return func(yield func(int, Ball) bool) {
		for i, b := range c.balls {
			if !yield(i, *b) {
				return
			}
		}
	}
}

func (c *BallCollection) String() string {
	var sb strings.Builder
	sb.WriteString("BallCollection { balls: [")
	for i, b := range c.balls {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.String())
	}
	sb.WriteString("] }")
	return sb.String()
}

func (c *BallCollection) step() {
	for _, b := range c.balls {
		b.Step()
	}
}

func (c *BallCollection) manageStageBorderCollision(stageWidth, stageHeight float64) {
	for _, b := range c.balls {
		b.ManageStageBorderCollision(stageWidth, stageHeight)
	}
}

// resolveBallCollisions is the caller ResolveBallCollision expects: it only
// hands over pairs that overlap with a usable normal. Coincident centers and
// exactly tangent pairs have a zero MTD and are skipped.
func (c *BallCollection) resolveBallCollisions() {
	for i := 0; i < len(c.balls); i++ {
		a := c.balls[i]
		for j := i + 1; j < len(c.balls); j++ {
			o := c.balls[j]
			if !a.CheckBallCollision(o) {
				continue
			}
			d := a.separation(o).Length()
			if d == 0 || d == a.radius+o.radius {
				continue
			}
			a.ResolveBallCollision(o)
		}
	}
}
