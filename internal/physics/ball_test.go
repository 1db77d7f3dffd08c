package physics

import (
	"errors"
	"math"
	"testing"
)

// sequence replays fixed values in order, wrapping around.
type sequence struct {
	values []float64
	next   int
}

func (s *sequence) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func speed(b *Ball) float64 {
	return b.Velocity().Length()
}

func TestStepIntegratesAndDamps(t *testing.T) {
	b := NewBall(0, 0, 2, -4, 10, 1, 0.5, 1, 0.5)
	b.Step()

	if b.X() != 1 || b.Y() != -2 {
		t.Errorf("position after Step = (%v, %v), want (1, -2)", b.X(), b.Y())
	}
	if b.VelocityX() != 1 || b.VelocityY() != -2 {
		t.Errorf("velocity after Step = (%v, %v), want (1, -2)", b.VelocityX(), b.VelocityY())
	}
}

func TestStepIsDeterministic(t *testing.T) {
	a := NewBall(5, 7, 3.3, -1.7, 10, 1, 1.2, 0.9, 0.97)
	b := NewBall(5, 7, 3.3, -1.7, 10, 1, 1.2, 0.9, 0.97)

	for i := 0; i < 100; i++ {
		a.Step()
		b.Step()
		if a.Position() != b.Position() || a.Velocity() != b.Velocity() {
			t.Fatalf("trajectories diverged at step %d: %v vs %v", i, a, b)
		}
	}
}

func TestStepVelocityDecays(t *testing.T) {
	b := NewBall(500000, 500000, 5, 3, 10, 1, 1, 1, 0.9)
	initial := speed(b)
	prev := initial

	for i := 0; i < 50; i++ {
		b.Step()
		b.ManageStageBorderCollision(1000000, 1000000)
		s := speed(b)
		if s >= prev {
			t.Fatalf("speed did not decrease at step %d: %v >= %v", i, s, prev)
		}
		prev = s
	}
	if prev > initial*0.01 {
		t.Errorf("speed after 50 steps = %v, expected below %v", prev, initial*0.01)
	}
}

func TestBorderCollisionLeft(t *testing.T) {
	b := NewBall(-5, 50, -3, 0, 10, 1, 1, 0.5, 1)
	b.ManageStageBorderCollision(200, 100)

	if b.X() != 10 {
		t.Errorf("x = %v, want 10", b.X())
	}
	if b.VelocityX() != 1.5 {
		t.Errorf("vx = %v, want 1.5", b.VelocityX())
	}
	if b.Y() != 50 || b.VelocityY() != 0 {
		t.Errorf("y axis should be untouched, got y=%v vy=%v", b.Y(), b.VelocityY())
	}
}

func TestBorderCollisionRightAndBottom(t *testing.T) {
	b := NewBall(195, 98, 4, 6, 10, 1, 1, 0.5, 1)
	b.ManageStageBorderCollision(200, 100)

	if b.X() != 190 || b.VelocityX() != -2 {
		t.Errorf("right border: x=%v vx=%v, want x=190 vx=-2", b.X(), b.VelocityX())
	}
	if b.Y() != 90 || b.VelocityY() != -3 {
		t.Errorf("bottom border: y=%v vy=%v, want y=90 vy=-3", b.Y(), b.VelocityY())
	}
}

func TestBorderCollisionCornerReflectsBothAxes(t *testing.T) {
	b := NewBall(-1, -1, -2, -2, 5, 1, 1, 1, 1)
	b.ManageStageBorderCollision(100, 100)

	if b.Position() != NewVector2D(5, 5) {
		t.Errorf("position = %v, want (5, 5)", b.Position())
	}
	if b.Velocity() != NewVector2D(2, 2) {
		t.Errorf("velocity = %v, want (2, 2)", b.Velocity())
	}
}

func TestBorderCollisionInsideIsNoop(t *testing.T) {
	b := NewBall(50, 50, 3, -3, 10, 1, 1, 0.5, 1)
	b.ManageStageBorderCollision(100, 100)

	if b.Position() != NewVector2D(50, 50) || b.Velocity() != NewVector2D(3, -3) {
		t.Errorf("ball inside the stage changed: %v", b)
	}
}

func TestBorderContainment(t *testing.T) {
	const w, h = 200.0, 150.0
	starts := []Vector2D{
		{X: -50, Y: -50}, {X: 250, Y: 75}, {X: 100, Y: 400}, {X: 0, Y: 0},
		{X: 200, Y: 150}, {X: 9, Y: 141}, {X: 100, Y: 75},
	}
	for _, p := range starts {
		b := NewBall(p.X, p.Y, 7, -7, 10, 1, 1, 0.9, 1)
		b.ManageStageBorderCollision(w, h)
		if b.X() < 10 || b.X() > w-10 || b.Y() < 10 || b.Y() > h-10 {
			t.Errorf("start %v: ball ended outside bounds at (%v, %v)", p, b.X(), b.Y())
		}
	}
}

func TestCheckBallCollision(t *testing.T) {
	tests := []struct {
		name string
		a, b *Ball
		want bool
	}{
		{"overlapping", NewBall(0, 0, 0, 0, 5, 1, 1, 1, 1), NewBall(5, 0, 0, 0, 5, 1, 1, 1, 1), true},
		{"touching_counts", NewBall(0, 0, 0, 0, 1, 1, 1, 1, 1), NewBall(3, 0, 0, 0, 2, 1, 1, 1, 1), true},
		{"just_apart", NewBall(0, 0, 0, 0, 1, 1, 1, 1, 1), NewBall(3+1e-6, 0, 0, 0, 2, 1, 1, 1, 1), false},
		{"far_apart", NewBall(0, 0, 0, 0, 5, 1, 1, 1, 1), NewBall(15, 0, 0, 0, 5, 1, 1, 1, 1), false},
		{"diagonal", NewBall(0, 0, 0, 0, 3, 1, 1, 1, 1), NewBall(3, 4, 0, 0, 2, 1, 1, 1, 1), true},
		{"same_center", NewBall(1, 1, 0, 0, 3, 1, 1, 1, 1), NewBall(1, 1, 0, 0, 2, 1, 1, 1, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CheckBallCollision(tt.b); got != tt.want {
				t.Errorf("a.CheckBallCollision(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.CheckBallCollision(tt.a); got != tt.want {
				t.Errorf("b.CheckBallCollision(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveBallCollisionSeparatingIsNoop(t *testing.T) {
	a := NewBall(0, 0, -1, 0, 1, 1, 1, 1, 1)
	b := NewBall(1, 0, 1, 0, 1, 1, 1, 1, 1)

	a.ResolveBallCollision(b)

	if a.Velocity() != NewVector2D(-1, 0) {
		t.Errorf("a velocity = %v, want (-1, 0)", a.Velocity())
	}
	if b.Velocity() != NewVector2D(1, 0) {
		t.Errorf("b velocity = %v, want (1, 0)", b.Velocity())
	}
}

func TestResolveBallCollisionHeadOn(t *testing.T) {
	a := NewBall(0, 0, 1, 0, 1, 1, 1, 1, 1)
	b := NewBall(1.5, 0, -1, 0, 1, 1, 1, 1, 1)

	a.ResolveBallCollision(b)

	if !approx(a.VelocityX(), -0.85) || !approx(b.VelocityX(), 0.85) {
		t.Errorf("velocities after impact = %v / %v, want -0.85 / 0.85", a.VelocityX(), b.VelocityX())
	}
	if a.VelocityY() != 0 || b.VelocityY() != 0 {
		t.Errorf("impulse leaked into y: %v / %v", a.VelocityY(), b.VelocityY())
	}
	if a.Position() != NewVector2D(0, 0) || b.Position() != NewVector2D(1.5, 0) {
		t.Errorf("positions must not change: %v / %v", a.Position(), b.Position())
	}
}

func TestResolveBallCollisionConservesMomentumWhenElastic(t *testing.T) {
	a := NewBall(0, 0, 1, 0, 1, 1, 1, 1, 1)
	b := NewBall(1.5, 0, -1, 0, 1, 3, 1, 1, 1)
	before := a.Mass()*a.VelocityX() + b.Mass()*b.VelocityX()

	a.ResolveBallCollision(b)

	after := a.Mass()*a.VelocityX() + b.Mass()*b.VelocityX()
	if !approx(before, after) {
		t.Errorf("momentum before = %v, after = %v", before, after)
	}
	if !approx(a.VelocityX(), -1.775) || !approx(b.VelocityX(), -0.075) {
		t.Errorf("velocities = %v / %v, want -1.775 / -0.075", a.VelocityX(), b.VelocityX())
	}
}

func TestResolveBallCollisionUsesInitiatorElasticity(t *testing.T) {
	a := NewBall(0, 0, 1, 0, 1, 1, 1, 0.5, 1)
	b := NewBall(1.5, 0, -1, 0, 1, 1, 1, 1, 1)

	a.ResolveBallCollision(b)

	if !approx(a.VelocityX(), -0.425) || !approx(b.VelocityX(), 0.425) {
		t.Errorf("velocities = %v / %v, want both damped by 0.5: -0.425 / 0.425", a.VelocityX(), b.VelocityX())
	}
}

func TestResolveBallCollisionZeroMassIsNotFinite(t *testing.T) {
	a := NewBall(0, 0, 1, 0, 1, 0, 1, 1, 1)
	b := NewBall(1.5, 0, -1, 0, 1, 1, 1, 1, 1)

	a.ResolveBallCollision(b)

	if a.Velocity().IsFinite() {
		t.Errorf("zero-mass ball velocity = %v, expected non-finite", a.Velocity())
	}
}

func TestResolveBallCollisionCoincidentCentersIsNotFinite(t *testing.T) {
	a := NewBall(3, 3, 1, 0, 1, 1, 1, 1, 1)
	b := NewBall(3, 3, -1, 0, 1, 1, 1, 1, 1)

	a.ResolveBallCollision(b)

	if a.Velocity().IsFinite() || b.Velocity().IsFinite() {
		t.Errorf("coincident centers gave finite velocities %v / %v", a.Velocity(), b.Velocity())
	}
}

func TestSetRandomPositionAndSpeedInBounds(t *testing.T) {
	b := DefaultBall()
	rnd := &sequence{values: []float64{0.5, 0.25, 0.1, 0.2}}

	b.SetRandomPositionAndSpeedInBounds(800, 600, rnd)

	if b.Position() != NewVector2D(400, 150) {
		t.Errorf("position = %v, want (400, 150)", b.Position())
	}
	if b.Velocity() != NewVector2D(1, 2) {
		t.Errorf("velocity = %v, want (1, 2)", b.Velocity())
	}
	if rnd.next != 4 {
		t.Errorf("random source called %d times, want 4", rnd.next)
	}
	if b.Radius() != DefaultRadius || b.Mass() != DefaultMass {
		t.Errorf("respawn must not touch material: %v", b)
	}
}

func TestSetRandomPositionIgnoresRadius(t *testing.T) {
	b := DefaultBall()
	b.SetRandomPositionAndSpeedInBounds(800, 600, &sequence{values: []float64{0}})

	if b.X() != 0 || b.Y() != 0 {
		t.Errorf("position = (%v, %v), want (0, 0) even though it overlaps the border", b.X(), b.Y())
	}
}

func TestSetVelocity(t *testing.T) {
	b := DefaultBall()
	b.SetVelocity(-3, 4)
	if b.Velocity() != NewVector2D(-3, 4) {
		t.Errorf("velocity = %v, want (-3, 4)", b.Velocity())
	}
}

func TestDefaultBall(t *testing.T) {
	b := DefaultBall()
	if b.Radius() != 10 || b.Mass() != 1 || b.Gravity() != 1 || b.Elasticity() != 0.98 || b.Friction() != 0.8 {
		t.Errorf("unexpected default material: %v", b)
	}
}

func TestValidateBallParams(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		mass   float64
		want   error
	}{
		{"valid", 10, 1, nil},
		{"zero_radius", 0, 1, ErrInvalidRadius},
		{"negative_radius", -1, 1, ErrInvalidRadius},
		{"nan_radius", math.NaN(), 1, ErrInvalidRadius},
		{"zero_mass", 10, 0, ErrInvalidMass},
		{"infinite_mass", 10, math.Inf(1), ErrInvalidMass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBallParams(tt.radius, tt.mass)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
