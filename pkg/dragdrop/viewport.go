package dragdrop

import "github.com/dukex/flowstudio/pkg/models"

// DefaultPosition is where menu-selected palette entries are placed.
var DefaultPosition = models.Position{X: 100, Y: 100}

// Point is a location in screen (client) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the pan and zoom of the canvas. Bounds is the screen origin of the canvas element.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Zoom   float64 `json:"zoom"`
	Bounds Point   `json:"bounds"`
}

// ToCanvas converts a screen point to canvas coordinates. A zero zoom is treated as 1.
func (v Viewport) ToCanvas(p Point) models.Position {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}

	return models.Position{
		X: (p.X - v.Bounds.X - v.X) / zoom,
		Y: (p.Y - v.Bounds.Y - v.Y) / zoom,
	}
}
