// Package editor holds the per-diagram interaction state: selection, the
// pointer capture session driving drag and resize gestures, and the
// operations whose completion is a commit point.
package editor

import (
	"context"
	"errors"
	"fmt"

	"drawboard/internal/domain"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"
	"drawboard/internal/table"
)

var (
	ErrNoSelection = errors.New("nothing selected")
	ErrRejected    = errors.New("action was rejected")
)

// Committer receives the full element set at every commit point. It must
// not block.
type Committer interface {
	Commit(elements []domain.DrawElement)
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(elements []domain.DrawElement)

func (f CommitFunc) Commit(elements []domain.DrawElement) { f(elements) }

// Confirmer approves destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, description string, ids []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, description string, ids []string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, description string, ids []string) (bool, error) {
	return f(ctx, description, ids)
}

// Editor is the interaction controller of one diagram node. It is not safe
// for concurrent use; callers serialise access the way a UI thread would.
type Editor struct {
	store     *elements.Store
	selection Selection
	window    *Window
	session   captureSession
	committer Committer
	placer    *geometry.Placer

	tool      domain.ElementKind
	tableRows int
	tableCols int
	preview   *geometry.Box
	textDirty bool
}

func New(els []domain.DrawElement, committer Committer) *Editor {
	return &Editor{
		store:     elements.NewStore(els),
		window:    NewWindow(),
		committer: committer,
		placer:    geometry.NewPlacer(),
		tableRows: 3,
		tableCols: 3,
	}
}

// Elements returns a snapshot of the element set.
func (e *Editor) Elements() []domain.DrawElement { return e.store.Snapshot() }

func (e *Editor) Element(id string) (domain.DrawElement, bool) { return e.store.Get(id) }

func (e *Editor) Selection() *Selection { return &e.selection }

func (e *Editor) Window() *Window { return e.window }

// Phase reports the state of the capture session.
func (e *Editor) Phase() Phase { return e.session.phase }

// Preview returns the box being dragged out by a draw gesture.
func (e *Editor) Preview() (geometry.Box, bool) {
	if e.preview == nil {
		return geometry.Box{}, false
	}
	return *e.preview, true
}

// Dirty reports typed text that has not been committed yet.
func (e *Editor) Dirty() bool { return e.textDirty }

func (e *Editor) commit() {
	e.textDirty = false
	e.committer.Commit(e.store.Snapshot())
}

// idle fails with ErrGestureActive while a gesture is capturing. A gesture
// writes its start-time state back on release, so element-set edits must
// wait for it.
func (e *Editor) idle() error {
	if e.session.phase != PhaseIdle {
		return ErrGestureActive
	}
	return nil
}

// Reset replaces the element set with one received from elsewhere, e.g.
// a newer persisted copy. Any running gesture is aborted first. Not a
// commit point.
func (e *Editor) Reset(els []domain.DrawElement) {
	e.session.abort()
	e.store.Replace(els)
	present := map[string]bool{}
	for _, id := range e.store.IDs() {
		present[id] = true
	}
	var gone []string
	for _, id := range e.selection.IDs() {
		if !present[id] {
			gone = append(gone, id)
		}
	}
	e.selection.Remove(gone)
	e.textDirty = false
}

// ── Tools ───────────────────────────────────────────────────

// SetTool arms a drawing tool for the next pointer-down. An empty kind
// returns to selection.
func (e *Editor) SetTool(kind domain.ElementKind) error {
	if kind != "" && !kind.Valid() {
		return fmt.Errorf("unknown element kind %q", kind)
	}
	e.tool = kind
	return nil
}

func (e *Editor) Tool() domain.ElementKind { return e.tool }

// SetTableSize sets the rows × cols a drawn table starts with.
func (e *Editor) SetTableSize(rows, cols int) {
	e.tableRows, e.tableCols = max(rows, 1), max(cols, 1)
}

// ── Pointer input ───────────────────────────────────────────

// PointerDown handles a press on the canvas. With a drawing tool armed it
// inserts text in one click or starts a drag-to-size gesture; otherwise it
// updates the selection and starts a group drag when the pressed element
// ends up selected.
func (e *Editor) PointerDown(ev PointerEvent) error {
	if e.session.phase != PhaseIdle {
		return ErrGestureActive
	}

	switch e.tool {
	case "":
	case domain.ElementText:
		e.tool = ""
		_, err := e.InsertText("", &geometry.Box{X: ev.X, Y: ev.Y})
		return err
	default:
		return e.session.begin(e.window, newDrawGesture(e, e.tool, ev), e.commit)
	}

	id, hit := e.store.HitTest(ev.X, ev.Y)
	if !hit {
		e.selection.Clear()
		return nil
	}
	e.selection.Click(id, ev.Shift)
	if ev.Shift || !e.selection.Has(id) {
		return nil
	}
	return e.session.begin(e.window, newDragGesture(e.store, e.selection.IDs(), ev), e.commit)
}

// BeginResize starts a resize of element id through handle h.
func (e *Editor) BeginResize(id string, h geometry.Handle, ev PointerEvent) error {
	el, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("resize %s: %w", id, elements.ErrNotFound)
	}
	start := elements.BoxOf(el)
	return e.session.begin(e.window, &resizeGesture{
		store:  e.store,
		id:     id,
		handle: h,
		start:  start,
		floor:  el.MinSize(),
		startX: ev.X,
		startY: ev.Y,
		last:   start,
	}, e.commit)
}

// BeginColumnResize starts dragging the divider right of column col in
// row of table id.
func (e *Editor) BeginColumnResize(id string, row, col int, ev PointerEvent) error {
	el, err := e.table(id)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(el.RowColWidths) || col < 0 || col+1 >= len(el.RowColWidths[row]) {
		return fmt.Errorf("no column divider at row %d, col %d", row, col)
	}
	return e.session.begin(e.window, &dividerGesture{
		store:  e.store,
		id:     id,
		row:    row,
		col:    col,
		start:  append([]float64(nil), el.RowColWidths[row]...),
		startX: ev.X,
		startY: ev.Y,
	}, e.commit)
}

// BeginRowResize starts dragging the divider below row of table id.
func (e *Editor) BeginRowResize(id string, row int, ev PointerEvent) error {
	el, err := e.table(id)
	if err != nil {
		return err
	}
	if row < 0 || row+1 >= len(el.RowHeights) {
		return fmt.Errorf("no row divider below row %d", row)
	}
	return e.session.begin(e.window, &dividerGesture{
		store:  e.store,
		id:     id,
		row:    row,
		col:    -1,
		start:  append([]float64(nil), el.RowHeights...),
		startX: ev.X,
		startY: ev.Y,
	}, e.commit)
}

// Escape aborts the running gesture, restoring its start state without a
// commit. Reports whether a gesture was aborted.
func (e *Editor) Escape() bool {
	return e.session.abort()
}

// DoubleClick on a table enters cell-edit mode.
func (e *Editor) DoubleClick(id string) error {
	if _, err := e.table(id); err != nil {
		return err
	}
	e.selection.EnterCellEdit(id)
	return nil
}

// ClickCell selects a cell of the table in cell-edit mode.
func (e *Editor) ClickCell(index int, shift bool) error {
	id, ok := e.selection.CellTable()
	if !ok {
		return fmt.Errorf("no table in cell-edit mode")
	}
	el, _ := e.store.Get(id)
	if index < 0 || index >= el.CellCount() {
		return fmt.Errorf("cell %d out of range", index)
	}
	e.selection.ClickCell(index, shift)
	return nil
}

// ClickCellAt selects the cell under the pointer.
func (e *Editor) ClickCellAt(ev PointerEvent) error {
	id, ok := e.selection.CellTable()
	if !ok {
		return fmt.Errorf("no table in cell-edit mode")
	}
	el, _ := e.store.Get(id)
	idx, hit := table.CellAt(&el, ev.X, ev.Y)
	if !hit {
		e.selection.ExitCellEdit()
		return nil
	}
	e.selection.ClickCell(idx, ev.Shift)
	return nil
}

func (e *Editor) table(id string) (domain.DrawElement, error) {
	el, ok := e.store.Get(id)
	if !ok {
		return el, fmt.Errorf("table %s: %w", id, elements.ErrNotFound)
	}
	if !el.IsTable() {
		return el, fmt.Errorf("%s: %w", id, table.ErrNotTable)
	}
	return el, nil
}
