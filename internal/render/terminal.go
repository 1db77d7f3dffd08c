package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

const discRune = '●'

// TerminalDrawer paints discs into a tcell screen, scaling stage
// coordinates to the current screen size.
type TerminalDrawer struct {
	screen tcell.Screen
	scaleX float64
	scaleY float64
}

func NewTerminalDrawer(screen tcell.Screen) *TerminalDrawer {
	return &TerminalDrawer{screen: screen, scaleX: 1, scaleY: 1}
}

// Clear wipes the screen and fits the stage to it.
func (d *TerminalDrawer) Clear(width, height float64) {
	d.screen.Clear()
	cols, rows := d.screen.Size()
	if width > 0 {
		d.scaleX = float64(cols) / width
	}
	if height > 0 {
		d.scaleY = float64(rows) / height
	}
}

// DrawDisc fills every cell whose center lies inside the disc. A disc
// smaller than a cell still marks the cell holding its center.
func (d *TerminalDrawer) DrawDisc(x, y, radius float64, color string) {
	style := tcell.StyleDefault.Foreground(tcell.GetColor(color))
	cols, rows := d.screen.Size()

	minX := int(math.Floor((x - radius) * d.scaleX))
	maxX := int(math.Ceil((x + radius) * d.scaleX))
	minY := int(math.Floor((y - radius) * d.scaleY))
	maxY := int(math.Ceil((y + radius) * d.scaleY))

	drawn := false
	for cy := max(minY, 0); cy <= min(maxY, rows-1); cy++ {
		for cx := max(minX, 0); cx <= min(maxX, cols-1); cx++ {
			wx := (float64(cx) + 0.5) / d.scaleX
			wy := (float64(cy) + 0.5) / d.scaleY
			if (wx-x)*(wx-x)+(wy-y)*(wy-y) <= radius*radius {
				d.screen.SetContent(cx, cy, discRune, nil, style)
				drawn = true
			}
		}
	}

	if !drawn {
		cx := int(x * d.scaleX)
		cy := int(y * d.scaleY)
		if cx >= 0 && cx < cols && cy >= 0 && cy < rows {
			d.screen.SetContent(cx, cy, discRune, nil, style)
		}
	}
}

// Show flushes the frame to the terminal.
func (d *TerminalDrawer) Show() {
	d.screen.Show()
}
