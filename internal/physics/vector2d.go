package physics

import "math"

// Vector2D is an immutable 2D vector. Every operation returns a new value.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Normalize divides by Length without a zero check: a zero vector
// produces NaN components.
func (v Vector2D) Normalize() Vector2D {
	l := v.Length()
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
