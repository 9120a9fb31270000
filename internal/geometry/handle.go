package geometry

import (
	"fmt"
	"math"
)

// Handle is one of the eight resize grips around a selected element.
type Handle string

const (
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
	HandleNW Handle = "nw"
)

// Handles lists every grip, clockwise from north.
var Handles = []Handle{HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW, HandleNW}

// ParseHandle validates a handle name.
func ParseHandle(s string) (Handle, error) {
	for _, h := range Handles {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown resize handle %q", s)
}

func (h Handle) East() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) West() bool  { return h == HandleW || h == HandleNW || h == HandleSW }
func (h Handle) North() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) South() bool { return h == HandleS || h == HandleSE || h == HandleSW }

// Resize applies a pointer delta, measured from the gesture's start, to the
// start box through handle h. Width and height never drop below min; when the
// floor is hit on a west or north grip the opposite edge stays where it was.
func Resize(start Box, h Handle, dx, dy, min float64) Box {
	out := start
	switch {
	case h.East():
		out.W = math.Max(start.W+dx, min)
	case h.West():
		out.W = math.Max(start.W-dx, min)
		out.X = start.Right() - out.W
	}
	switch {
	case h.South():
		out.H = math.Max(start.H+dy, min)
	case h.North():
		out.H = math.Max(start.H-dy, min)
		out.Y = start.Bottom() - out.H
	}
	return out
}
