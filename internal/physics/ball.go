package physics

import "fmt"

// Ball is a single circular body. Radius and mass are fixed at construction;
// position only changes through Step, border handling and respawn.
type Ball struct {
	x, y       float64
	vx, vy     float64
	radius     float64
	mass       float64
	gravity    float64
	elasticity float64
	friction   float64
}

// NewBall builds a ball without validating its parameters. A zero mass or
// radius is accepted here and surfaces later as non-finite velocities.
func NewBall(x, y, vx, vy, radius, mass, gravity, elasticity, friction float64) *Ball {
	return &Ball{
		x:          x,
		y:          y,
		vx:         vx,
		vy:         vy,
		radius:     radius,
		mass:       mass,
		gravity:    gravity,
		elasticity: elasticity,
		friction:   friction,
	}
}

// DefaultBall returns a resting ball at the origin with the default material.
func DefaultBall() *Ball {
	return NewBall(0, 0, 0, 0, DefaultRadius, DefaultMass, DefaultGravity, DefaultElasticity, DefaultFriction)
}

func (b *Ball) X() float64          { return b.x }
func (b *Ball) Y() float64          { return b.y }
func (b *Ball) VelocityX() float64  { return b.vx }
func (b *Ball) VelocityY() float64  { return b.vy }
func (b *Ball) Radius() float64     { return b.radius }
func (b *Ball) Mass() float64       { return b.mass }
func (b *Ball) Gravity() float64    { return b.gravity }
func (b *Ball) Elasticity() float64 { return b.elasticity }
func (b *Ball) Friction() float64   { return b.friction }

func (b *Ball) Position() Vector2D { return Vector2D{X: b.x, Y: b.y} }
func (b *Ball) Velocity() Vector2D { return Vector2D{X: b.vx, Y: b.vy} }

// SetVelocity overwrites both velocity components.
func (b *Ball) SetVelocity(vx, vy float64) {
	b.vx = vx
	b.vy = vy
}

// Step advances the ball by one tick. Gravity scales how much of the
// velocity reaches the position; friction damps velocity every tick,
// in contact or not.
func (b *Ball) Step() {
	b.x += b.gravity * b.vx
	b.y += b.gravity * b.vy
	b.vx *= b.friction
	b.vy *= b.friction
}

// ManageStageBorderCollision reflects the ball off any of the four stage
// borders its edge has crossed and clamps it tangent to that border.
// Each border is checked independently, so a corner hit reflects both axes.
func (b *Ball) ManageStageBorderCollision(stageWidth, stageHeight float64) {
	// left
	if b.x-b.radius < 0 {
		b.vx = -b.vx * b.elasticity
		b.x = b.radius
	}
	// right
	if b.x+b.radius > stageWidth {
		b.vx = -b.vx * b.elasticity
		b.x = stageWidth - b.radius
	}
	// top
	if b.y-b.radius < 0 {
		b.vy = -b.vy * b.elasticity
		b.y = b.radius
	}
	// bottom
	if b.y+b.radius > stageHeight {
		b.vy = -b.vy * b.elasticity
		b.y = stageHeight - b.radius
	}
}

// CheckBallCollision reports whether the two discs touch or overlap.
func (b *Ball) CheckBallCollision(other *Ball) bool {
	xd := b.x - other.x
	yd := b.y - other.y
	sumRadius := b.radius + other.radius
	return xd*xd+yd*yd <= sumRadius*sumRadius
}

// ResolveBallCollision applies an impulse along the collision normal to both
// balls. It does not check that they collide, does not guard coincident
// centers, and never moves them apart: only velocities change. Both
// resulting velocities are damped by b's elasticity.
func (b *Ball) ResolveBallCollision(other *Ball) {
	delta := b.separation(other)
	d := delta.Length()
	// minimum translation distance; only its direction is used
	mtd := delta.Scale(((b.radius + other.radius) - d) / d)

	im1 := 1 / b.mass
	im2 := 1 / other.mass

	relative := Vector2D{X: b.vx - other.vx, Y: b.vy - other.vy}
	normal := mtd.Normalize()
	vn := relative.Dot(normal)

	// already moving apart
	if vn > 0 {
		return
	}

	i := (-(1 + Restitution) * vn) / (im1 + im2)
	impulse := normal.Scale(i)

	ims1 := impulse.Scale(im1)
	ims2 := impulse.Scale(im2)

	b.vx = (b.vx + ims1.X) * b.elasticity
	b.vy = (b.vy + ims1.Y) * b.elasticity
	other.vx = (other.vx - ims2.X) * b.elasticity
	other.vy = (other.vy - ims2.Y) * b.elasticity
}

// SetRandomPositionAndSpeedInBounds scatters the ball anywhere in the stage
// (radius is not subtracted) with a velocity in [0, MaxRandomSpeed) per axis.
// It draws x, y, vx, vy from rnd in that order.
func (b *Ball) SetRandomPositionAndSpeedInBounds(stageWidth, stageHeight float64, rnd RandomSource) {
	b.x = rnd.Float64() * stageWidth
	b.y = rnd.Float64() * stageHeight
	b.vx = rnd.Float64() * MaxRandomSpeed
	b.vy = rnd.Float64() * MaxRandomSpeed
}

func (b *Ball) separation(other *Ball) Vector2D {
	return Vector2D{X: b.x - other.x, Y: b.y - other.y}
}

func (b *Ball) String() string {
	return fmt.Sprintf("Ball{x: %g, y: %g, velocity_x: %g, velocity_y: %g, radius: %g, mass: %g, gravity: %g, elasticity: %g, friction: %g}",
		b.x, b.y, b.vx, b.vy, b.radius, b.mass, b.gravity, b.elasticity, b.friction)
}
