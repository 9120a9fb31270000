package editor

import (
	"slices"

	"drawboard/internal/domain"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"
	"drawboard/internal/table"
)

// ── Drag ────────────────────────────────────────────────────

type dragItem struct {
	id             string
	offX, offY     float64
	startX, startY float64
}

// dragGesture moves every selected element in lock-step: each keeps the
// offset it had from the pointer when the drag began.
type dragGesture struct {
	store *elements.Store
	items []dragItem
	moved bool
}

func newDragGesture(store *elements.Store, ids []string, ev PointerEvent) *dragGesture {
	g := &dragGesture{store: store}
	for _, id := range ids {
		el, ok := store.Get(id)
		if !ok {
			continue
		}
		g.items = append(g.items, dragItem{
			id:     id,
			offX:   ev.X - el.X,
			offY:   ev.Y - el.Y,
			startX: el.X,
			startY: el.Y,
		})
	}
	return g
}

func (g *dragGesture) move(ev PointerEvent) {
	for _, it := range g.items {
		x, y := ev.X-it.offX, ev.Y-it.offY
		if x != it.startX || y != it.startY {
			g.moved = true
		}
		_ = g.store.Update(it.id, func(el *domain.DrawElement) {
			el.X, el.Y = x, y
		})
	}
}

func (g *dragGesture) finish() bool { return g.moved }

func (g *dragGesture) cancel() {
	for _, it := range g.items {
		_ = g.store.Update(it.id, func(el *domain.DrawElement) {
			el.X, el.Y = it.startX, it.startY
		})
	}
}

// ── Resize ──────────────────────────────────────────────────

type resizeGesture struct {
	store          *elements.Store
	id             string
	handle         geometry.Handle
	start          geometry.Box
	floor          float64
	startX, startY float64
	last           geometry.Box
}

func (g *resizeGesture) move(ev PointerEvent) {
	b := geometry.Resize(g.start, g.handle, ev.X-g.startX, ev.Y-g.startY, g.floor)
	g.last = b
	_ = g.store.Update(g.id, func(el *domain.DrawElement) {
		elements.SetBox(el, b)
	})
}

func (g *resizeGesture) finish() bool { return g.last != g.start }

func (g *resizeGesture) cancel() {
	_ = g.store.Update(g.id, func(el *domain.DrawElement) {
		elements.SetBox(el, g.start)
	})
}

// ── Table dividers ──────────────────────────────────────────

// dividerGesture drags a column divider (row >= 0, col >= 0) or a row
// divider (col < 0) inside a table. Deltas are always taken against the
// percentages captured at gesture start.
type dividerGesture struct {
	store          *elements.Store
	id             string
	row, col       int
	start          []float64
	startX, startY float64
	changed        bool
}

func (g *dividerGesture) move(ev PointerEvent) {
	_ = g.store.Update(g.id, func(el *domain.DrawElement) {
		var ok bool
		if g.col >= 0 {
			ok = table.ResizeColumn(el, g.row, g.col, g.start, ev.X-g.startX)
		} else {
			ok = table.ResizeRow(el, g.row, g.start, ev.Y-g.startY)
		}
		if ok {
			g.changed = true
		}
	})
}

func (g *dividerGesture) finish() bool { return g.changed }

func (g *dividerGesture) cancel() {
	_ = g.store.Update(g.id, func(el *domain.DrawElement) {
		if g.col >= 0 {
			el.RowColWidths[g.row] = slices.Clone(g.start)
		} else {
			el.RowHeights = slices.Clone(g.start)
		}
	})
}

// ── Draw ────────────────────────────────────────────────────

// drawGesture sizes a new element by dragging out its box. Nothing is
// inserted until release.
type drawGesture struct {
	e              *Editor
	kind           domain.ElementKind
	startX, startY float64
	box            geometry.Box
}

func newDrawGesture(e *Editor, kind domain.ElementKind, ev PointerEvent) *drawGesture {
	return &drawGesture{
		e:      e,
		kind:   kind,
		startX: ev.X,
		startY: ev.Y,
		box:    geometry.Box{X: ev.X, Y: ev.Y},
	}
}

func (g *drawGesture) move(ev PointerEvent) {
	g.box = geometry.FromDrag(g.startX, g.startY, ev.X, ev.Y)
	g.e.preview = &g.box
}

func (g *drawGesture) finish() bool {
	g.e.preview = nil
	b := g.box
	b.W = max(b.W, domain.MinResizeSize)
	b.H = max(b.H, domain.MinResizeSize)

	var el domain.DrawElement
	if g.kind == domain.ElementTable {
		el = elements.NewTable(b, g.e.tableRows, g.e.tableCols)
	} else {
		el = elements.New(g.kind, b)
	}
	el = g.e.store.Insert(el)
	g.e.selection.Set([]string{el.ID})
	g.e.tool = ""
	return true
}

func (g *drawGesture) cancel() {
	g.e.preview = nil
}
