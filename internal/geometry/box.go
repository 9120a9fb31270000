package geometry

import "math"

// Box is an axis-aligned rectangle in canvas pixels.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Right() float64  { return b.X + b.W }
func (b Box) Bottom() float64 { return b.Y + b.H }

// Center returns the midpoint of b.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

func (b Box) Contains(px, py float64) bool {
	return px >= b.X && px <= b.Right() && py >= b.Y && py <= b.Bottom()
}

func (b Box) Intersects(o Box) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X &&
		b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

// Inflate grows b by pad on every side.
func (b Box) Inflate(pad float64) Box {
	return Box{X: b.X - pad, Y: b.Y - pad, W: b.W + pad*2, H: b.H + pad*2}
}

// Bounds returns the smallest box enclosing all of boxes. ok is false for an
// empty input.
func Bounds(boxes []Box) (out Box, ok bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// FromDrag normalises a drag gesture from (x0,y0) to (x1,y1) into a box with
// non-negative size, regardless of drag direction.
func FromDrag(x0, y0, x1, y1 float64) Box {
	return Box{
		X: math.Min(x0, x1),
		Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0),
		H: math.Abs(y1 - y0),
	}
}
