package editor

import (
	"context"
	"fmt"
	"slices"

	"drawboard/internal/align"
	"drawboard/internal/domain"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"
	"drawboard/internal/table"
)

// ── Insert ──────────────────────────────────────────────────

// InsertShape adds an element of kind filling b and selects it.
func (e *Editor) InsertShape(kind domain.ElementKind, b geometry.Box) (domain.DrawElement, error) {
	if !kind.Valid() {
		return domain.DrawElement{}, fmt.Errorf("unknown element kind %q", kind)
	}
	if err := e.idle(); err != nil {
		return domain.DrawElement{}, err
	}
	b.W = max(b.W, domain.MinResizeSize)
	b.H = max(b.H, domain.MinResizeSize)
	return e.insert(elements.New(kind, b)), nil
}

// InsertText adds a text element. at gives the position and optionally the
// size; nil places it in the next free slot.
func (e *Editor) InsertText(text string, at *geometry.Box) (domain.DrawElement, error) {
	if err := e.idle(); err != nil {
		return domain.DrawElement{}, err
	}
	b := e.place(at, elements.DefaultTextWidth, elements.DefaultTextHeight)
	return e.insert(elements.NewText(b, text)), nil
}

// InsertTable adds a rows × cols table, as picked from the size grid.
func (e *Editor) InsertTable(rows, cols int, at *geometry.Box) (domain.DrawElement, error) {
	if rows < 1 || cols < 1 {
		return domain.DrawElement{}, fmt.Errorf("table size %dx%d: rows and cols must be positive", rows, cols)
	}
	if err := e.idle(); err != nil {
		return domain.DrawElement{}, err
	}
	w, h := elements.TableSize(rows, cols)
	b := e.place(at, w, h)
	return e.insert(elements.NewTable(b, rows, cols)), nil
}

func (e *Editor) place(at *geometry.Box, w, h float64) geometry.Box {
	if at == nil {
		x, y := e.placer.NextPosition(elements.Boxes(e.store.Snapshot()), w, h)
		return geometry.Box{X: x, Y: y, W: w, H: h}
	}
	b := *at
	if b.W <= 0 {
		b.W = w
	}
	if b.H <= 0 {
		b.H = h
	}
	return b
}

func (e *Editor) insert(el domain.DrawElement) domain.DrawElement {
	el = e.store.Insert(el)
	e.selection.Set([]string{el.ID})
	e.commit()
	return el
}

// ── Delete / reorder ────────────────────────────────────────

// DeleteSelection removes the selected elements once c approves. A
// rejection leaves everything as it was and returns ErrRejected.
func (e *Editor) DeleteSelection(ctx context.Context, c Confirmer) ([]string, error) {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	if err := e.idle(); err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Delete %d element(s)", len(ids))
	ok, err := c.Confirm(ctx, desc, ids)
	if err != nil {
		return nil, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return nil, ErrRejected
	}
	removed := e.store.Delete(ids)
	e.selection.Remove(removed)
	if len(removed) > 0 {
		e.commit()
	}
	return removed, nil
}

// Reorder moves the selection through the z-order.
func (e *Editor) Reorder(action elements.ReorderAction) error {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return ErrNoSelection
	}
	if err := e.idle(); err != nil {
		return err
	}
	before := e.store.IDs()
	e.store.Reorder(ids, action)
	if !slices.Equal(before, e.store.IDs()) {
		e.commit()
	}
	return nil
}

// ── Align / distribute ──────────────────────────────────────

// Align lines up the selection. Fewer than two selected is a no-op.
func (e *Editor) Align(mode align.Mode) (bool, error) {
	return e.applyBoxes(align.MinAlign, func(b []geometry.Box) []geometry.Box {
		return align.Align(b, mode)
	})
}

// Distribute spaces the selection evenly. Fewer than three is a no-op.
func (e *Editor) Distribute(axis align.Axis) (bool, error) {
	return e.applyBoxes(align.MinDistribute, func(b []geometry.Box) []geometry.Box {
		return align.Distribute(b, axis)
	})
}

func (e *Editor) applyBoxes(minCount int, fn func([]geometry.Box) []geometry.Box) (bool, error) {
	if err := e.idle(); err != nil {
		return false, err
	}
	var ids []string
	var boxes []geometry.Box
	for _, id := range e.selection.IDs() {
		if el, ok := e.store.Get(id); ok {
			ids = append(ids, id)
			boxes = append(boxes, elements.BoxOf(el))
		}
	}
	if len(ids) < minCount {
		return false, nil
	}
	out := fn(boxes)
	for i, id := range ids {
		b := out[i]
		_ = e.store.Update(id, func(el *domain.DrawElement) {
			el.X, el.Y = b.X, b.Y
		})
	}
	e.commit()
	return true, nil
}

// ── Table structure ─────────────────────────────────────────

// SplitCell splits cell index of table id into r rows × c columns.
// Out-of-range indices are a silent no-op.
func (e *Editor) SplitCell(id string, index, r, c int) (bool, error) {
	if err := e.idle(); err != nil {
		return false, err
	}
	if _, err := e.table(id); err != nil {
		return false, err
	}
	changed := false
	_ = e.store.Update(id, func(el *domain.DrawElement) {
		changed = table.Split(el, index, r, c)
	})
	if !changed {
		return false, nil
	}
	if cellTable, ok := e.selection.CellTable(); ok && cellTable == id {
		e.selection.SetCells([]int{index})
	}
	e.commit()
	return true, nil
}

// MergeCells merges the given cells of table id row by row. Selections with
// no eligible row are a silent no-op.
func (e *Editor) MergeCells(id string, indices []int) (bool, error) {
	if err := e.idle(); err != nil {
		return false, err
	}
	if _, err := e.table(id); err != nil {
		return false, err
	}
	changed := false
	_ = e.store.Update(id, func(el *domain.DrawElement) {
		changed = table.Merge(el, indices)
	})
	if !changed {
		return false, nil
	}
	if cellTable, ok := e.selection.CellTable(); ok && cellTable == id {
		e.selection.SetCells(nil)
	}
	e.commit()
	return true, nil
}

// SplitSelectedCell splits the first selected cell of the table in
// cell-edit mode.
func (e *Editor) SplitSelectedCell(r, c int) (bool, error) {
	id, ok := e.selection.CellTable()
	cells := e.selection.Cells()
	if !ok || len(cells) == 0 {
		return false, nil
	}
	return e.SplitCell(id, cells[0], r, c)
}

// MergeSelectedCells merges the cell selection of the table in cell-edit
// mode.
func (e *Editor) MergeSelectedCells() (bool, error) {
	id, ok := e.selection.CellTable()
	if !ok {
		return false, nil
	}
	return e.MergeCells(id, e.selection.Cells())
}

// StyleCells colors and/or styles cells of table id.
func (e *Editor) StyleCells(id string, indices []int, color *string, style *domain.CellStyle) (int, error) {
	if err := e.idle(); err != nil {
		return 0, err
	}
	if _, err := e.table(id); err != nil {
		return 0, err
	}
	n := 0
	_ = e.store.Update(id, func(el *domain.DrawElement) {
		n = table.StyleCells(el, indices, color, style)
	})
	if n > 0 {
		e.commit()
	}
	return n, nil
}

// ── Text ────────────────────────────────────────────────────

// EditText updates an element's text while typing. Local only; BlurText
// commits.
func (e *Editor) EditText(id string, text string) error {
	if err := e.store.Update(id, func(el *domain.DrawElement) { el.Text = text }); err != nil {
		return err
	}
	e.textDirty = true
	return nil
}

// EditCellText updates a table cell while typing. Local only.
func (e *Editor) EditCellText(id string, index int, text string) error {
	if err := e.idle(); err != nil {
		return err
	}
	if _, err := e.table(id); err != nil {
		return err
	}
	ok := false
	_ = e.store.Update(id, func(el *domain.DrawElement) {
		ok = table.SetCellText(el, index, text)
	})
	if !ok {
		return fmt.Errorf("cell %d out of range", index)
	}
	e.textDirty = true
	return nil
}

// BlurText ends a text edit, committing if anything was typed.
func (e *Editor) BlurText() bool {
	if !e.textDirty {
		return false
	}
	e.commit()
	return true
}

// ── Properties ──────────────────────────────────────────────

// StylePatch carries the style properties to change; nil fields are left
// alone.
type StylePatch struct {
	FillColor     *string               `json:"fillColor,omitempty"`
	FillOpacity   *float64              `json:"fillOpacity,omitempty"`
	StrokeColor   *string               `json:"strokeColor,omitempty"`
	StrokeOpacity *float64              `json:"strokeOpacity,omitempty"`
	StrokeWidth   *float64              `json:"strokeWidth,omitempty"`
	FontSize      *float64              `json:"fontSize,omitempty"`
	TextColor     *string               `json:"textColor,omitempty"`
	TextAlign     *domain.TextAlign     `json:"textAlign,omitempty"`
	VerticalAlign *domain.VerticalAlign `json:"verticalAlign,omitempty"`
}

func (p StylePatch) apply(el *domain.DrawElement) {
	setIf(&el.FillColor, p.FillColor)
	setIf(&el.FillOpacity, p.FillOpacity)
	setIf(&el.StrokeColor, p.StrokeColor)
	setIf(&el.StrokeOpacity, p.StrokeOpacity)
	setIf(&el.StrokeWidth, p.StrokeWidth)
	setIf(&el.FontSize, p.FontSize)
	setIf(&el.TextColor, p.TextColor)
	setIf(&el.TextAlign, p.TextAlign)
	setIf(&el.VerticalAlign, p.VerticalAlign)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Restyle applies p to every element in ids. An unknown id fails the whole
// call before anything changes.
func (e *Editor) Restyle(ids []string, p StylePatch) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}
	for _, id := range ids {
		if _, ok := e.store.Get(id); !ok {
			return fmt.Errorf("restyle %s: %w", id, elements.ErrNotFound)
		}
	}
	for _, id := range ids {
		_ = e.store.Update(id, p.apply)
	}
	e.commit()
	return nil
}

// InstallImage sets an element's image payload.
func (e *Editor) InstallImage(id, dataURL string) error {
	if err := e.store.Update(id, func(el *domain.DrawElement) { el.Image = dataURL }); err != nil {
		return err
	}
	e.commit()
	return nil
}

// SetRelatedTables links an element to schema entities. Names are taken as
// given; callers validate them against the catalog.
func (e *Editor) SetRelatedTables(id string, names []string) error {
	err := e.store.Update(id, func(el *domain.DrawElement) {
		el.RelatedTables = slices.Compact(slices.Sorted(slices.Values(names)))
	})
	if err != nil {
		return err
	}
	e.commit()
	return nil
}

// ── Scripted gestures ───────────────────────────────────────

// MoveBy drags the elements ids by (dx, dy) through a full capture session,
// as if the user pressed on the first of them and released at the offset.
func (e *Editor) MoveBy(ids []string, dx, dy float64) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}
	first, ok := e.store.Get(ids[0])
	if !ok {
		return fmt.Errorf("move %s: %w", ids[0], elements.ErrNotFound)
	}
	if err := e.idle(); err != nil {
		return err
	}
	e.selection.Set(slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
		_, ok := e.store.Get(id)
		return !ok
	}))
	start := PointerEvent{X: first.X, Y: first.Y}
	if err := e.session.begin(e.window, newDragGesture(e.store, e.selection.IDs(), start), e.commit); err != nil {
		return err
	}
	end := PointerEvent{X: start.X + dx, Y: start.Y + dy}
	e.window.DispatchMove(end)
	e.window.DispatchUp(end)
	return nil
}

// ResizeBy drags handle h of element id by (dx, dy).
func (e *Editor) ResizeBy(id string, h geometry.Handle, dx, dy float64) error {
	if err := e.BeginResize(id, h, PointerEvent{}); err != nil {
		return err
	}
	end := PointerEvent{X: dx, Y: dy}
	e.window.DispatchMove(end)
	e.window.DispatchUp(end)
	return nil
}

// ResizeColumnBy drags the divider right of (row, col) in table id by dx.
func (e *Editor) ResizeColumnBy(id string, row, col int, dx float64) error {
	if err := e.BeginColumnResize(id, row, col, PointerEvent{}); err != nil {
		return err
	}
	e.window.DispatchUp(PointerEvent{X: dx})
	return nil
}

// ResizeRowBy drags the divider below row in table id by dy.
func (e *Editor) ResizeRowBy(id string, row int, dy float64) error {
	if err := e.BeginRowResize(id, row, PointerEvent{}); err != nil {
		return err
	}
	e.window.DispatchUp(PointerEvent{Y: dy})
	return nil
}

// Arrange lays the selection out in tidy wrapped rows from the top-left of
// its current bounds.
func (e *Editor) Arrange() (bool, error) {
	return e.applyBoxes(align.MinAlign, func(b []geometry.Box) []geometry.Box {
		bounds, _ := geometry.Bounds(b)
		return e.placer.Arrange(b, bounds.X, bounds.Y)
	})
}
