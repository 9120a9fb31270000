package elements

import (
	"github.com/google/uuid"

	"drawboard/internal/domain"
	"drawboard/internal/geometry"
	"drawboard/internal/table"
)

// Default sizes for one-click inserts.
const (
	DefaultTextWidth  = 160.0
	DefaultTextHeight = 40.0
	DefaultCellWidth  = 100.0
	DefaultCellHeight = 32.0
)

func newBase(kind domain.ElementKind, b geometry.Box) domain.DrawElement {
	return domain.DrawElement{
		ID:            uuid.New().String(),
		Kind:          kind,
		X:             b.X,
		Y:             b.Y,
		Width:         b.W,
		Height:        b.H,
		FillColor:     "#ffffff",
		FillOpacity:   1,
		StrokeColor:   "#1f2937",
		StrokeOpacity: 1,
		StrokeWidth:   2,
		FontSize:      14,
		TextColor:     "#111827",
		TextAlign:     domain.TextAlignCenter,
		VerticalAlign: domain.VerticalAlignMiddle,
	}
}

// New builds a shape of kind filling b. Tables start as a single cell.
func New(kind domain.ElementKind, b geometry.Box) domain.DrawElement {
	switch kind {
	case domain.ElementText:
		return NewText(b, "")
	case domain.ElementTable:
		return NewTable(b, 1, 1)
	}
	return newBase(kind, b)
}

// NewText builds a borderless, transparent text element.
func NewText(b geometry.Box, text string) domain.DrawElement {
	el := newBase(domain.ElementText, b)
	el.Text = text
	el.FillOpacity = 0
	el.StrokeOpacity = 0
	el.StrokeWidth = 0
	el.TextAlign = domain.TextAlignLeft
	el.VerticalAlign = domain.VerticalAlignTop
	return el
}

// NewTable builds a rows × cols table with equal column widths.
func NewTable(b geometry.Box, rows, cols int) domain.DrawElement {
	el := newBase(domain.ElementTable, b)
	el.StrokeWidth = 1
	table.Init(&el, rows, cols)
	return el
}

// TableSize is the default footprint of an rows × cols one-click table.
func TableSize(rows, cols int) (float64, float64) {
	return float64(max(cols, 1)) * DefaultCellWidth, float64(max(rows, 1)) * DefaultCellHeight
}

// Boxes returns the bounding boxes of els in order.
func Boxes(els []domain.DrawElement) []geometry.Box {
	out := make([]geometry.Box, len(els))
	for i, el := range els {
		out[i] = BoxOf(el)
	}
	return out
}

func BoxOf(el domain.DrawElement) geometry.Box {
	return geometry.Box{X: el.X, Y: el.Y, W: el.Width, H: el.Height}
}

// SetBox moves and sizes el to b.
func SetBox(el *domain.DrawElement, b geometry.Box) {
	el.X, el.Y, el.Width, el.Height = b.X, b.Y, b.W, b.H
}

// HitTest returns the id of the topmost element under (px, py).
func (s *Store) HitTest(px, py float64) (string, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if BoxOf(s.items[i]).Contains(px, py) {
			return s.items[i].ID, true
		}
	}
	return "", false
}
