// Package render draws ball stages. The physics core never calls into it;
// hosts enumerate a collection and hand each ball to a Drawer or to the
// markup functions here.
package render

import (
	"github.com/playmatatu/ballsim/internal/physics"
)

// Drawer is the canvas-like capability a host provides.
type Drawer interface {
	Clear(width, height float64)
	DrawDisc(x, y, radius float64, color string)
}

// DrawCollection clears the stage and paints one disc per ball.
func DrawCollection(d Drawer, balls *physics.BallCollection, color string, stageWidth, stageHeight float64) {
	d.Clear(stageWidth, stageHeight)
	for _, b := range balls.All() {
		d.DrawDisc(b.X(), b.Y(), b.Radius(), color)
	}
}
