package editor

import (
	"context"
	"errors"
	"testing"

	"drawboard/internal/align"
	"drawboard/internal/domain"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"
	"drawboard/internal/table"
)

type recorder struct {
	commits [][]domain.DrawElement
}

func (r *recorder) Commit(els []domain.DrawElement) {
	r.commits = append(r.commits, els)
}

func newEditor(t *testing.T) (*Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(nil, rec), rec
}

func addRect(t *testing.T, e *Editor, x, y, w, h float64) domain.DrawElement {
	t.Helper()
	el, err := e.InsertShape(domain.ElementRect, geometry.Box{X: x, Y: y, W: w, H: h})
	if err != nil {
		t.Fatal(err)
	}
	return el
}

func approve() Confirmer {
	return ConfirmFunc(func(context.Context, string, []string) (bool, error) { return true, nil })
}

func TestGroupDragMovesInLockStep(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 200, 100, 50, 50)
	base := len(rec.commits)

	e.Selection().Set([]string{a.ID, b.ID})
	if err := e.PointerDown(PointerEvent{X: 10, Y: 10}); err != nil {
		t.Fatal(err)
	}
	if e.Phase() != PhaseCapturing {
		t.Fatalf("phase = %v", e.Phase())
	}
	e.Window().DispatchMove(PointerEvent{X: 20, Y: 30})
	e.Window().DispatchMove(PointerEvent{X: 40, Y: 45})
	if len(rec.commits) != base {
		t.Fatal("intermediate drag positions were committed")
	}
	e.Window().DispatchUp(PointerEvent{X: 40, Y: 45})

	ga, _ := e.Element(a.ID)
	gb, _ := e.Element(b.ID)
	if ga.X != 30 || ga.Y != 35 || gb.X != 230 || gb.Y != 135 {
		t.Errorf("a=(%v,%v) b=(%v,%v)", ga.X, ga.Y, gb.X, gb.Y)
	}
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d, want exactly one for the gesture", len(rec.commits)-base)
	}
	if e.Phase() != PhaseIdle || e.Window().ListenerCount() != 0 {
		t.Errorf("session not torn down: phase=%v listeners=%d", e.Phase(), e.Window().ListenerCount())
	}
}

func TestDragOfUnselectedElementReplacesSelection(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 100, 0, 50, 50)
	e.Selection().Set([]string{a.ID})

	_ = e.PointerDown(PointerEvent{X: 110, Y: 10})
	e.Window().DispatchUp(PointerEvent{X: 120, Y: 10})

	ga, _ := e.Element(a.ID)
	gb, _ := e.Element(b.ID)
	if ga.X != 0 || gb.X != 110 {
		t.Errorf("a.X=%v b.X=%v", ga.X, gb.X)
	}
	if ids := e.Selection().IDs(); len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("selection = %v", ids)
	}
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	e, rec := newEditor(t)
	addRect(t, e, 0, 0, 50, 50)
	base := len(rec.commits)
	_ = e.PointerDown(PointerEvent{X: 5, Y: 5})
	e.Window().DispatchUp(PointerEvent{X: 5, Y: 5})
	if len(rec.commits) != base {
		t.Error("plain click committed")
	}
}

func TestShiftClickTogglesAndEmptyClears(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 100, 0, 50, 50)
	e.Selection().Clear()

	_ = e.PointerDown(PointerEvent{X: 5, Y: 5, Shift: true})
	_ = e.PointerDown(PointerEvent{X: 105, Y: 5, Shift: true})
	if e.Selection().Len() != 2 {
		t.Fatalf("selection = %v", e.Selection().IDs())
	}
	if e.Phase() != PhaseIdle {
		t.Error("shift-click should not start a drag")
	}
	_ = e.PointerDown(PointerEvent{X: 5, Y: 5, Shift: true})
	if e.Selection().Has(a.ID) || !e.Selection().Has(b.ID) {
		t.Errorf("toggle failed: %v", e.Selection().IDs())
	}

	tbl, _ := e.InsertTable(2, 2, &geometry.Box{X: 0, Y: 300})
	_ = e.DoubleClick(tbl.ID)
	_ = e.ClickCell(1, false)
	_ = e.PointerDown(PointerEvent{X: 900, Y: 900})
	if e.Selection().Len() != 0 {
		t.Error("empty-canvas click should clear selection")
	}
	if _, ok := e.Selection().CellTable(); ok {
		t.Error("empty-canvas click should exit cell-edit mode")
	}
}

func TestCaptureTeardownOnEveryExit(t *testing.T) {
	exits := map[string]func(e *Editor){
		"release": func(e *Editor) { e.Window().DispatchUp(PointerEvent{X: 30, Y: 30}) },
		"leave":   func(e *Editor) { e.Window().DispatchLeave() },
		"escape":  func(e *Editor) { e.Escape() },
	}
	for name, exit := range exits {
		t.Run(name, func(t *testing.T) {
			e, _ := newEditor(t)
			addRect(t, e, 0, 0, 50, 50)
			_ = e.PointerDown(PointerEvent{X: 10, Y: 10})
			e.Window().DispatchMove(PointerEvent{X: 20, Y: 20})
			if e.Window().ListenerCount() != 1 {
				t.Fatalf("listeners = %d during capture", e.Window().ListenerCount())
			}
			exit(e)
			if e.Phase() != PhaseIdle || e.Window().ListenerCount() != 0 {
				t.Errorf("phase=%v listeners=%d", e.Phase(), e.Window().ListenerCount())
			}
			if err := e.PointerDown(PointerEvent{X: 900, Y: 900}); err != nil {
				t.Errorf("editor stuck after %s: %v", name, err)
			}
		})
	}
}

func TestCaptureTeardownWhenCommitPanics(t *testing.T) {
	calls := 0
	e := New(nil, CommitFunc(func([]domain.DrawElement) {
		calls++
		if calls > 1 {
			panic("sink exploded")
		}
	}))
	addRect(t, e, 0, 0, 50, 50)
	_ = e.PointerDown(PointerEvent{X: 10, Y: 10})

	func() {
		defer func() { _ = recover() }()
		e.Window().DispatchUp(PointerEvent{X: 30, Y: 30})
	}()
	if e.Phase() != PhaseIdle || e.Window().ListenerCount() != 0 {
		t.Errorf("phase=%v listeners=%d", e.Phase(), e.Window().ListenerCount())
	}
}

func TestLeaveCommitsLikeRelease(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	base := len(rec.commits)
	_ = e.PointerDown(PointerEvent{X: 10, Y: 10})
	e.Window().DispatchMove(PointerEvent{X: 60, Y: 10})
	e.Window().DispatchLeave()
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d", len(rec.commits)-base)
	}
	if got, _ := e.Element(a.ID); got.X != 50 {
		t.Errorf("X = %v", got.X)
	}
}

func TestEscapeRestoresWithoutCommit(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	base := len(rec.commits)

	_ = e.BeginResize(a.ID, geometry.HandleSE, PointerEvent{X: 50, Y: 50})
	e.Window().DispatchMove(PointerEvent{X: 150, Y: 150})
	if !e.Escape() {
		t.Fatal("expected a gesture to abort")
	}
	got, _ := e.Element(a.ID)
	if got.Width != 50 || got.Height != 50 {
		t.Errorf("size = %vx%v, want restored 50x50", got.Width, got.Height)
	}
	if len(rec.commits) != base {
		t.Error("aborted gesture committed")
	}
	if e.Escape() {
		t.Error("second Escape should report nothing to abort")
	}
}

func TestSecondGestureRejectedWhileCapturing(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	_ = e.PointerDown(PointerEvent{X: 10, Y: 10})
	if err := e.BeginResize(a.ID, geometry.HandleE, PointerEvent{}); !errors.Is(err, ErrGestureActive) {
		t.Errorf("err = %v, want ErrGestureActive", err)
	}
	if e.Window().ListenerCount() != 1 {
		t.Errorf("listeners = %d", e.Window().ListenerCount())
	}
}

func TestResizeClampsAndAnchors(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 100, 100, 100, 100)
	base := len(rec.commits)

	if err := e.ResizeBy(a.ID, geometry.HandleW, 500, 0); err != nil {
		t.Fatal(err)
	}
	got, _ := e.Element(a.ID)
	if got.Width != domain.MinResizeSize || got.X != 180 {
		t.Errorf("w=%v x=%v, want w=20 x=180", got.Width, got.X)
	}
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d", len(rec.commits)-base)
	}
}

func TestImageElementsUseLargerFloor(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 200, 200)
	_ = e.InstallImage(a.ID, "data:image/png;base64,AAAA")

	_ = e.ResizeBy(a.ID, geometry.HandleSE, -1000, -1000)
	got, _ := e.Element(a.ID)
	if got.Width != domain.MinImageResizeSize || got.Height != domain.MinImageResizeSize {
		t.Errorf("size = %vx%v, want 50x50", got.Width, got.Height)
	}
}

func TestDrawGestureInsertsOnRelease(t *testing.T) {
	e, rec := newEditor(t)
	_ = e.SetTool(domain.ElementCircle)
	_ = e.PointerDown(PointerEvent{X: 100, Y: 100})
	e.Window().DispatchMove(PointerEvent{X: 40, Y: 160})
	if b, ok := e.Preview(); !ok || b.X != 40 || b.W != 60 {
		t.Errorf("preview = %+v, %v", b, ok)
	}
	if len(e.Elements()) != 0 {
		t.Fatal("element inserted before release")
	}
	e.Window().DispatchUp(PointerEvent{X: 40, Y: 160})

	els := e.Elements()
	if len(els) != 1 || els[0].Kind != domain.ElementCircle || els[0].X != 40 || els[0].Height != 60 {
		t.Fatalf("elements = %+v", els)
	}
	if len(rec.commits) != 1 || e.Tool() != "" {
		t.Errorf("commits=%d tool=%q", len(rec.commits), e.Tool())
	}
}

func TestDrawGestureClampsTinyBoxes(t *testing.T) {
	e, _ := newEditor(t)
	_ = e.SetTool(domain.ElementRect)
	_ = e.PointerDown(PointerEvent{X: 10, Y: 10})
	e.Window().DispatchUp(PointerEvent{X: 12, Y: 11})
	el := e.Elements()[0]
	if el.Width != domain.MinResizeSize || el.Height != domain.MinResizeSize {
		t.Errorf("size = %vx%v", el.Width, el.Height)
	}
}

func TestTextToolInsertsInOneClick(t *testing.T) {
	e, rec := newEditor(t)
	_ = e.SetTool(domain.ElementText)
	_ = e.PointerDown(PointerEvent{X: 70, Y: 80})
	els := e.Elements()
	if len(els) != 1 || els[0].Kind != domain.ElementText || els[0].X != 70 {
		t.Fatalf("elements = %+v", els)
	}
	if len(rec.commits) != 1 || e.Phase() != PhaseIdle {
		t.Errorf("commits=%d phase=%v", len(rec.commits), e.Phase())
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 100, 0, 50, 50)
	e.Selection().Set([]string{a.ID})
	base := len(rec.commits)

	reject := ConfirmFunc(func(context.Context, string, []string) (bool, error) { return false, nil })
	if _, err := e.DeleteSelection(context.Background(), reject); !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
	if len(e.Elements()) != 2 || len(rec.commits) != base {
		t.Fatal("rejected delete changed state")
	}

	removed, err := e.DeleteSelection(context.Background(), approve())
	if err != nil || len(removed) != 1 {
		t.Fatalf("removed=%v err=%v", removed, err)
	}
	els := e.Elements()
	if len(els) != 1 || els[0].ID != b.ID || els[0].ZIndex != 1 {
		t.Errorf("elements = %+v", els)
	}
	if e.Selection().Len() != 0 {
		t.Error("deleted ids left in selection")
	}
}

func TestReorderCommitsOnlyOnChange(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	addRect(t, e, 20, 0, 10, 10)
	e.Selection().Set([]string{a.ID})
	base := len(rec.commits)

	_ = e.Reorder(elements.SendToBack)
	if len(rec.commits) != base {
		t.Error("no-op reorder committed")
	}
	_ = e.Reorder(elements.BringToFront)
	if got, _ := e.Element(a.ID); got.ZIndex != 2 || len(rec.commits) != base+1 {
		t.Errorf("z=%d commits=%d", got.ZIndex, len(rec.commits)-base)
	}
}

func TestAlignSelection(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 10, 0, 50, 10)
	b := addRect(t, e, 40, 30, 100, 10)
	e.Selection().Set([]string{a.ID})
	if ok, err := e.Align(align.Left); ok || err != nil {
		t.Errorf("align with one element: ok=%v err=%v, want no-op", ok, err)
	}
	e.Selection().Set([]string{a.ID, b.ID})
	base := len(rec.commits)
	if ok, err := e.Align(align.Right); !ok || err != nil {
		t.Fatalf("align ok=%v err=%v", ok, err)
	}
	ga, _ := e.Element(a.ID)
	gb, _ := e.Element(b.ID)
	if ga.X+ga.Width != 140 || gb.X+gb.Width != 140 {
		t.Errorf("right edges %v %v", ga.X+ga.Width, gb.X+gb.Width)
	}
	if len(rec.commits) != base+1 {
		t.Error("align should commit once")
	}
}

func TestSplitAndMergeThroughCellSelection(t *testing.T) {
	e, rec := newEditor(t)
	tbl, _ := e.InsertTable(1, 1, &geometry.Box{X: 0, Y: 0})
	_ = e.EditCellText(tbl.ID, 0, "x")
	e.BlurText()
	_ = e.DoubleClick(tbl.ID)
	_ = e.ClickCell(0, false)
	base := len(rec.commits)

	if ok, err := e.SplitSelectedCell(2, 1); !ok || err != nil {
		t.Fatalf("split ok=%v err=%v", ok, err)
	}
	got, _ := e.Element(tbl.ID)
	if len(got.RowColWidths) != 2 || got.CellData[0] != "x" {
		t.Errorf("after split: widths=%v data=%q", got.RowColWidths, got.CellData)
	}

	_ = e.ClickCell(0, false)
	_ = e.ClickCell(1, true)
	if ok, _ := e.MergeSelectedCells(); ok {
		t.Error("cells in different rows should not merge")
	}
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d, want 1 (no-op merge must not commit)", len(rec.commits)-base)
	}

	if _, err := e.SplitCell("missing", 0, 1, 2); err == nil {
		t.Error("expected error for unknown table")
	}
	rect := addRect(t, e, 500, 500, 50, 50)
	if _, err := e.MergeCells(rect.ID, []int{0, 1}); !errors.Is(err, table.ErrNotTable) {
		t.Errorf("err = %v, want ErrNotTable", err)
	}
}

func TestColumnDividerDrag(t *testing.T) {
	e, rec := newEditor(t)
	tbl, _ := e.InsertTable(1, 2, &geometry.Box{X: 0, Y: 0, W: 400, H: 100})
	base := len(rec.commits)

	if err := e.BeginColumnResize(tbl.ID, 0, 0, PointerEvent{X: 200}); err != nil {
		t.Fatal(err)
	}
	e.Window().DispatchMove(PointerEvent{X: 220})
	e.Window().DispatchMove(PointerEvent{X: 240})
	e.Window().DispatchUp(PointerEvent{X: 240})

	got, _ := e.Element(tbl.ID)
	if got.RowColWidths[0][0] != 60 || got.RowColWidths[0][1] != 40 {
		t.Errorf("widths = %v, want [60 40]", got.RowColWidths[0])
	}
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d", len(rec.commits)-base)
	}

	_ = e.BeginRowResize(tbl.ID, 0, PointerEvent{})
	if e.Phase() == PhaseCapturing {
		t.Error("single-row table has no row divider")
	}
}

func TestTextEditCommitsOnBlur(t *testing.T) {
	e, rec := newEditor(t)
	txt, _ := e.InsertText("", nil)
	base := len(rec.commits)
	for _, s := range []string{"h", "he", "hello"} {
		_ = e.EditText(txt.ID, s)
	}
	if len(rec.commits) != base {
		t.Fatal("typing committed")
	}
	if !e.BlurText() || len(rec.commits) != base+1 {
		t.Fatal("blur should commit once")
	}
	if last := rec.commits[len(rec.commits)-1]; last[0].Text != "hello" {
		t.Errorf("committed text %q", last[0].Text)
	}
	if e.BlurText() {
		t.Error("second blur without typing should not commit")
	}
}

func TestMoveByIsOneCommit(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	b := addRect(t, e, 50, 50, 10, 10)
	base := len(rec.commits)

	if err := e.MoveBy([]string{a.ID, b.ID}, 15, -5); err != nil {
		t.Fatal(err)
	}
	ga, _ := e.Element(a.ID)
	gb, _ := e.Element(b.ID)
	if ga.X != 15 || ga.Y != -5 || gb.X != 65 || gb.Y != 45 {
		t.Errorf("a=(%v,%v) b=(%v,%v)", ga.X, ga.Y, gb.X, gb.Y)
	}
	if len(rec.commits) != base+1 {
		t.Errorf("commits = %d", len(rec.commits)-base)
	}
}

func TestRestyleAndRelatedTables(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	color := "#00ff00"
	if err := e.Restyle([]string{a.ID}, StylePatch{FillColor: &color}); err != nil {
		t.Fatal(err)
	}
	_ = e.SetRelatedTables(a.ID, []string{"users", "orders", "users"})
	got, _ := e.Element(a.ID)
	if got.FillColor != color || got.StrokeWidth != 2 {
		t.Errorf("fill=%q stroke=%v", got.FillColor, got.StrokeWidth)
	}
	if len(got.RelatedTables) != 2 || got.RelatedTables[0] != "orders" {
		t.Errorf("related = %v", got.RelatedTables)
	}
	if len(rec.commits) != 3 {
		t.Errorf("commits = %d", len(rec.commits))
	}
}

func TestResetDropsVanishedSelection(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	b := addRect(t, e, 50, 0, 10, 10)
	e.Selection().Set([]string{a.ID, b.ID})
	e.Reset([]domain.DrawElement{{ID: b.ID, Kind: domain.ElementRect, ZIndex: 4}})
	if ids := e.Selection().IDs(); len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("selection = %v", ids)
	}
	if got, _ := e.Element(b.ID); got.ZIndex != 1 {
		t.Errorf("z = %d", got.ZIndex)
	}
}

// panicGesture blows up on its first move.
type panicGesture struct{ cancelled bool }

func (g *panicGesture) move(PointerEvent) { panic("bad move") }
func (g *panicGesture) finish() bool      { return true }
func (g *panicGesture) cancel()           { g.cancelled = true }

func TestCaptureTeardownWhenMovePanics(t *testing.T) {
	for _, dispatch := range []string{"move", "up"} {
		t.Run(dispatch, func(t *testing.T) {
			e, rec := newEditor(t)
			g := &panicGesture{}
			if err := e.session.begin(e.window, g, e.commit); err != nil {
				t.Fatal(err)
			}
			func() {
				defer func() { _ = recover() }()
				if dispatch == "move" {
					e.Window().DispatchMove(PointerEvent{X: 5})
				} else {
					e.Window().DispatchUp(PointerEvent{X: 5})
				}
			}()
			if e.Phase() != PhaseIdle || e.Window().ListenerCount() != 0 {
				t.Errorf("phase=%v listeners=%d", e.Phase(), e.Window().ListenerCount())
			}
			if !g.cancelled {
				t.Error("gesture start state was not restored")
			}
			if len(rec.commits) != 0 {
				t.Errorf("commits = %d", len(rec.commits))
			}
		})
	}
}

func TestEditsRejectedWhileGestureCaptures(t *testing.T) {
	e, rec := newEditor(t)
	tbl, _ := e.InsertTable(1, 3, &geometry.Box{X: 0, Y: 0, W: 300, H: 50})
	other := addRect(t, e, 500, 0, 20, 20)
	base := len(rec.commits)

	if err := e.BeginColumnResize(tbl.ID, 0, 0, PointerEvent{}); err != nil {
		t.Fatal(err)
	}
	edits := map[string]func() error{
		"merge": func() error { _, err := e.MergeCells(tbl.ID, []int{1, 2}); return err },
		"split": func() error { _, err := e.SplitCell(tbl.ID, 0, 1, 2); return err },
		"style": func() error {
			c := "#eee"
			_, err := e.StyleCells(tbl.ID, []int{0}, &c, nil)
			return err
		},
		"cell text": func() error { return e.EditCellText(tbl.ID, 0, "x") },
		"insert":    func() error { _, err := e.InsertText("x", nil); return err },
		"reorder": func() error {
			e.Selection().Set([]string{other.ID})
			return e.Reorder(elements.SendToBack)
		},
		"align": func() error {
			e.Selection().Set([]string{tbl.ID, other.ID})
			_, err := e.Align(align.Top)
			return err
		},
		"delete": func() error {
			e.Selection().Set([]string{other.ID})
			_, err := e.DeleteSelection(context.Background(), approve())
			return err
		},
		"move": func() error { return e.MoveBy([]string{other.ID}, 5, 5) },
	}
	for name, edit := range edits {
		if err := edit(); !errors.Is(err, ErrGestureActive) {
			t.Errorf("%s: err = %v, want ErrGestureActive", name, err)
		}
	}

	e.Window().DispatchUp(PointerEvent{X: 10})
	got, _ := e.Element(tbl.ID)
	if err := table.Validate(&got); err != nil {
		t.Fatalf("table after gesture: %v", err)
	}
	if len(rec.commits) != base+1 {
		t.Fatalf("commits = %d, want the divider release only", len(rec.commits)-base)
	}
	if err := table.Validate(&rec.commits[len(rec.commits)-1][0]); err != nil {
		t.Errorf("committed table: %v", err)
	}

	if ok, err := e.MergeCells(tbl.ID, []int{1, 2}); !ok || err != nil {
		t.Fatalf("merge after release: ok=%v err=%v", ok, err)
	}
	got, _ = e.Element(tbl.ID)
	if err := table.Validate(&got); err != nil || len(got.CellData) != 2 {
		t.Errorf("after merge: err=%v cells=%d", err, len(got.CellData))
	}
}

func TestRestyleWithUnknownIDChangesNothing(t *testing.T) {
	e, rec := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	before, _ := e.Element(a.ID)
	base := len(rec.commits)

	red := "#ff0000"
	err := e.Restyle([]string{a.ID, "missing"}, StylePatch{FillColor: &red})
	if !errors.Is(err, elements.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got, _ := e.Element(a.ID); got.FillColor != before.FillColor {
		t.Errorf("fill = %q, want unchanged %q", got.FillColor, before.FillColor)
	}
	if len(rec.commits) != base {
		t.Errorf("commits = %d", len(rec.commits)-base)
	}
}

func TestMoveByLeavesUnknownIDsOutOfSelection(t *testing.T) {
	e, _ := newEditor(t)
	a := addRect(t, e, 0, 0, 10, 10)
	if err := e.MoveBy([]string{a.ID, "ghost"}, 5, 0); err != nil {
		t.Fatal(err)
	}
	if ids := e.Selection().IDs(); len(ids) != 1 || ids[0] != a.ID {
		t.Errorf("selection = %v", ids)
	}
}
