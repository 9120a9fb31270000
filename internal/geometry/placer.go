package geometry

import "math"

const (
	GridSize = 10.0
	Padding  = 20.0 // 2 grid cells between elements
	MaxRowW  = 1200.0
)

// Placer finds free canvas slots for elements inserted without a position,
// so one-click inserts don't land on top of existing shapes.
type Placer struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewPlacer() *Placer {
	return &Placer{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// Snap rounds v to the nearest grid point.
func (p *Placer) Snap(v float64) float64 {
	return math.Round(v/p.gridSize) * p.gridSize
}

// NextPosition finds the first grid position, scanning rows top-to-bottom,
// where a (w, h) box clears every occupied box by the padding.
func (p *Placer) NextPosition(occupied []Box, w, h float64) (float64, float64) {
	if len(occupied) == 0 {
		return 0, 0
	}

	padded := make([]Box, len(occupied))
	for i, b := range occupied {
		padded[i] = b.Inflate(p.padding)
	}

	candidate := Box{W: w, H: h}
	for y := 0.0; y < 100000; y += p.gridSize {
		for x := 0.0; x+w <= p.maxRowW; x += p.gridSize {
			candidate.X = p.Snap(x)
			candidate.Y = p.Snap(y)

			overlaps := false
			for _, occ := range padded {
				if candidate.Intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: below everything
	maxY := 0.0
	for _, b := range occupied {
		maxY = math.Max(maxY, b.Bottom())
	}
	return 0, p.Snap(maxY + p.padding)
}

// Arrange lays boxes out in wrapped rows starting at (startX, startY) and
// returns the new boxes in input order.
func (p *Placer) Arrange(boxes []Box, startX, startY float64) []Box {
	out := make([]Box, len(boxes))
	x := p.Snap(startX)
	y := p.Snap(startY)
	rowHeight := 0.0

	for i, b := range boxes {
		if x > p.Snap(startX) && x+b.W > p.maxRowW {
			x = p.Snap(startX)
			y += p.Snap(rowHeight + p.padding)
			rowHeight = 0
		}
		out[i] = Box{X: x, Y: y, W: b.W, H: b.H}
		rowHeight = math.Max(rowHeight, b.H)
		x += p.Snap(b.W + p.padding)
	}
	return out
}
