package physics

import (
	"strings"
	"testing"
)

func TestFillAppendsRestingBalls(t *testing.T) {
	c := NewBallCollection()
	c.Fill(3, 12, 2, 1.5, 0.7, 0.9)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for i, b := range c.All() {
		if b.Position() != (Vector2D{}) || b.Velocity() != (Vector2D{}) {
			t.Errorf("ball %d not resting at origin: %v", i, &b)
		}
		if b.Radius() != 12 || b.Mass() != 2 || b.Gravity() != 1.5 || b.Elasticity() != 0.7 || b.Friction() != 0.9 {
			t.Errorf("ball %d has wrong material: %v", i, &b)
		}
	}

	c.Fill(2, 5, 1, 1, 1, 1)
	if c.Len() != 5 {
		t.Errorf("Len() after second Fill = %d, want 5", c.Len())
	}
}

func TestPushPreservesOrder(t *testing.T) {
	c := NewBallCollection()
	for i := 0; i < 4; i++ {
		c.Push(NewBall(float64(i), 0, 0, 0, 1, 1, 1, 1, 1))
	}
	for i, b := range c.All() {
		if b.X() != float64(i) {
			t.Errorf("ball %d has x=%v, want %d", i, b.X(), i)
		}
	}
}

func TestAllYieldsCopies(t *testing.T) {
	c := NewBallCollection()
	c.Push(NewBall(10, 10, 1, 1, 5, 1, 1, 1, 1))

	for _, b := range c.All() {
		b.Step()
		b.SetVelocity(100, 100)
	}

	got := c.At(0)
	if got.Position() != NewVector2D(10, 10) || got.Velocity() != NewVector2D(1, 1) {
		t.Errorf("enumeration leaked mutation into the collection: %v", &got)
	}
}

func TestAllStopsEarly(t *testing.T) {
	c := NewBallCollection()
	c.Fill(5, 1, 1, 1, 1, 1)

	seen := 0
	for range c.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("iterated %d balls, want 2", seen)
	}
}

func TestUpdateStepsThenResolvesBorders(t *testing.T) {
	c := NewBallCollection()
	c.Push(NewBall(15, 50, -10, 0, 10, 1, 1, 0.5, 1))
	c.Update(100, 100)

	b := c.At(0)
	// step moves x to 5, border clamps to 10 and reflects
	if b.X() != 10 || b.VelocityX() != 5 {
		t.Errorf("after Update x=%v vx=%v, want x=10 vx=5", b.X(), b.VelocityX())
	}
}

func overlappingPair() *BallCollection {
	c := NewBallCollection()
	c.Push(NewBall(100, 100, 1, 0, 10, 1, 1, 1, 1))
	c.Push(NewBall(105, 100, -1, 0, 10, 1, 1, 1, 1))
	return c
}

func TestUpdateWithoutPairwiseLeavesOverlapsAlone(t *testing.T) {
	c := overlappingPair()
	if c.PairwiseCollisions() {
		t.Fatal("pairwise sweep should be off by default")
	}

	c.Update(1000, 1000)

	a, b := c.At(0), c.At(1)
	if a.VelocityX() != 1 || b.VelocityX() != -1 {
		t.Errorf("velocities = %v / %v, want 1 / -1", a.VelocityX(), b.VelocityX())
	}
}

func TestUpdateWithPairwiseResolvesOverlaps(t *testing.T) {
	c := overlappingPair()
	c.SetPairwiseCollisions(true)

	c.Update(1000, 1000)

	a, b := c.At(0), c.At(1)
	if a.X() != 101 || b.X() != 104 {
		t.Errorf("positions = %v / %v, want 101 / 104", a.X(), b.X())
	}
	if !approx(a.VelocityX(), -0.85) || !approx(b.VelocityX(), 0.85) {
		t.Errorf("velocities = %v / %v, want -0.85 / 0.85", a.VelocityX(), b.VelocityX())
	}
}

func TestPairwiseSkipsDegeneratePairs(t *testing.T) {
	tests := []struct {
		name string
		bx   float64
	}{
		{"coincident", 100},
		{"tangent", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBallCollection()
			c.SetPairwiseCollisions(true)
			// zero gravity keeps positions fixed across Update
			c.Push(NewBall(100, 100, 1, 0, 10, 1, 0, 1, 1))
			c.Push(NewBall(tt.bx, 100, -1, 0, 10, 1, 0, 1, 1))

			c.Update(1000, 1000)

			a, b := c.At(0), c.At(1)
			if !a.Velocity().IsFinite() || !b.Velocity().IsFinite() {
				t.Fatalf("degenerate pair produced non-finite velocity: %v / %v", a.Velocity(), b.Velocity())
			}
			if a.VelocityX() != 1 || b.VelocityX() != -1 {
				t.Errorf("degenerate pair should be skipped, got %v / %v", a.VelocityX(), b.VelocityX())
			}
		})
	}
}

func TestCollectionRandomizeIsReproducible(t *testing.T) {
	rnd := &sequence{values: []float64{0.5, 0.25, 0.1, 0.2, 0.75, 0.5, 0.3, 0.4}}
	c := NewBallCollection()
	c.Fill(2, 10, 1, 1, 1, 1)

	c.SetRandomPositionAndSpeedInBounds(800, 600, rnd)

	first, second := c.At(0), c.At(1)
	if first.Position() != NewVector2D(400, 150) || first.Velocity() != NewVector2D(1, 2) {
		t.Errorf("first ball = %v", &first)
	}
	if second.Position() != NewVector2D(600, 300) || second.Velocity() != NewVector2D(3, 4) {
		t.Errorf("second ball = %v", &second)
	}
}

func TestCollectionStaysInsideStage(t *testing.T) {
	const w, h = 800.0, 600.0
	for _, pairwise := range []bool{false, true} {
		c := NewBallCollection()
		c.SetPairwiseCollisions(pairwise)
		c.Fill(5, 10, 1, 1, 0.98, 0.8)
		c.SetRandomPositionAndSpeedInBounds(w, h, NewRandomSource(42))

		for i := 0; i < 60; i++ {
			c.Update(w, h)
		}

		for i, b := range c.All() {
			if b.X() < b.Radius() || b.X() > w-b.Radius() || b.Y() < b.Radius() || b.Y() > h-b.Radius() {
				t.Errorf("pairwise=%v: ball %d out of bounds at (%v, %v)", pairwise, i, b.X(), b.Y())
			}
			if !b.Velocity().IsFinite() {
				t.Errorf("pairwise=%v: ball %d velocity not finite: %v", pairwise, i, b.Velocity())
			}
		}
	}
}

func TestCollectionString(t *testing.T) {
	c := NewBallCollection()
	c.Push(DefaultBall())
	s := c.String()
	if !strings.HasPrefix(s, "BallCollection {") || !strings.Contains(s, "radius: 10") {
		t.Errorf("String() = %q", s)
	}
}
