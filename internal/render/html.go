package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/playmatatu/ballsim/internal/physics"
)

// BallMarkup renders one ball as an absolutely positioned rounded div.
func BallMarkup(b *physics.Ball, color string) string {
	r := b.Radius()
	return fmt.Sprintf("<div class='ball' style='position:absolute;top:%gpx;left:%gpx;background:%s;width:%gpx;height:%gpx;border-radius:%gpx'></div>",
		b.Y()-r,
		b.X()-r,
		html.EscapeString(color),
		r*2,
		r*2,
		r,
	)
}

// CollectionMarkup concatenates BallMarkup for every ball in order.
func CollectionMarkup(balls *physics.BallCollection, color string) string {
	var sb strings.Builder
	for _, b := range balls.All() {
		sb.WriteString(BallMarkup(&b, color))
	}
	return sb.String()
}
