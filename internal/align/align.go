// Package align lines up and spaces out boxes. It is pure geometry: callers
// map the results back onto elements.
package align

import (
	"fmt"
	"sort"

	"drawboard/internal/geometry"
)

type Mode string

const (
	Left    Mode = "left"
	CenterH Mode = "center-h"
	Right   Mode = "right"
	Top     Mode = "top"
	CenterV Mode = "center-v"
	Bottom  Mode = "bottom"
)

type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Minimum selection sizes; smaller selections are left untouched.
const (
	MinAlign      = 2
	MinDistribute = 3
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Left, CenterH, Right, Top, CenterV, Bottom:
		return m, nil
	}
	return "", fmt.Errorf("unknown alignment %q", s)
}

func ParseAxis(s string) (Axis, error) {
	switch a := Axis(s); a {
	case Horizontal, Vertical:
		return a, nil
	}
	return "", fmt.Errorf("unknown distribution axis %q", s)
}

// Align returns boxes aligned to the edge or centre line of their combined
// bounds, measured before any box moves. Fewer than MinAlign boxes are
// returned unchanged.
func Align(boxes []geometry.Box, mode Mode) []geometry.Box {
	out := append([]geometry.Box(nil), boxes...)
	if len(out) < MinAlign {
		return out
	}
	bounds, _ := geometry.Bounds(boxes)
	cx, cy := bounds.Center()
	for i := range out {
		switch mode {
		case Left:
			out[i].X = bounds.X
		case Right:
			out[i].X = bounds.Right() - out[i].W
		case CenterH:
			out[i].X = cx - out[i].W/2
		case Top:
			out[i].Y = bounds.Y
		case Bottom:
			out[i].Y = bounds.Bottom() - out[i].H
		case CenterV:
			out[i].Y = cy - out[i].H/2
		}
	}
	return out
}

// Distribute spaces boxes evenly along axis between the outermost edges,
// keeping the first and last in place. The result is in input order. Fewer
// than MinDistribute boxes are returned unchanged.
func Distribute(boxes []geometry.Box, axis Axis) []geometry.Box {
	out := append([]geometry.Box(nil), boxes...)
	if len(out) < MinDistribute {
		return out
	}

	pos := func(b geometry.Box) float64 { return b.X }
	size := func(b geometry.Box) float64 { return b.W }
	set := func(b *geometry.Box, v float64) { b.X = v }
	if axis == Vertical {
		pos = func(b geometry.Box) float64 { return b.Y }
		size = func(b geometry.Box) float64 { return b.H }
		set = func(b *geometry.Box, v float64) { b.Y = v }
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pos(out[order[a]]) < pos(out[order[b]])
	})

	start := pos(out[order[0]])
	end := start
	total := 0.0
	for _, i := range order {
		end = max(end, pos(out[i])+size(out[i]))
		total += size(out[i])
	}
	gap := (end - start - total) / float64(len(out)-1)

	cursor := start
	for _, i := range order {
		set(&out[i], cursor)
		cursor += size(out[i]) + gap
	}
	return out
}
