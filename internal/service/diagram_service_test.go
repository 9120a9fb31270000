package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"drawboard/internal/align"
	"drawboard/internal/commit"
	"drawboard/internal/domain"
	"drawboard/internal/editor"
	"drawboard/internal/geometry"
	"drawboard/internal/imageintake"
	"drawboard/internal/service"
	"drawboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// DiagramService tests
// ─────────────────────────────────────────────────────────────

type fixture struct {
	svc       *service.DiagramService
	store     *storage.DiagramStore
	emitter   *service.MockEmitter
	delivered chan domain.ElementSetUpdate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		store:     storage.NewDiagramStore(db),
		emitter:   &service.MockEmitter{},
		delivered: make(chan domain.ElementSetUpdate, 64),
	}
	tap := commit.SinkFunc{Label: "tap", Fn: func(_ context.Context, msg domain.ElementSetUpdate) error {
		f.delivered <- msg
		return nil
	}}
	f.svc = service.NewDiagramService(f.store, f.emitter, domain.Actor{ID: "u1", Name: "Ana"}, tap)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = f.svc.Close(ctx)
		db.Close()
	})
	return f
}

// next waits for the next commit to pass every sink.
func (f *fixture) next(t *testing.T) domain.ElementSetUpdate {
	t.Helper()
	select {
	case msg := <-f.delivered:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no commit delivered")
		return domain.ElementSetUpdate{}
	}
}

func (f *fixture) none(t *testing.T) {
	t.Helper()
	select {
	case msg := <-f.delivered:
		t.Fatalf("unexpected commit: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func approve() editor.Confirmer {
	return editor.ConfirmFunc(func(context.Context, string, []string) (bool, error) { return true, nil })
}

func reject() editor.Confirmer {
	return editor.ConfirmFunc(func(context.Context, string, []string) (bool, error) { return false, nil })
}

func TestDiagramService_InsertPersistsAndEmits(t *testing.T) {
	f := newFixture(t)
	d, err := f.svc.CreateDiagram("shop", "")
	if err != nil {
		t.Fatal(err)
	}

	el, err := f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{X: 10, Y: 10, W: 100, H: 60})
	if err != nil {
		t.Fatal(err)
	}
	msg := f.next(t)
	if msg.Kind != domain.ElementSetUpdateKind || msg.TargetElementSetID != d.ElementSetID || msg.ActorID != "u1" {
		t.Errorf("msg = %+v", msg)
	}
	if len(msg.Payload) != 1 || msg.Payload[0].ID != el.ID {
		t.Errorf("payload = %+v", msg.Payload)
	}

	stored, _ := f.store.GetDiagram(d.ID)
	if len(stored.Elements) != 1 || stored.Elements[0].ZIndex != 1 {
		t.Errorf("stored = %+v", stored.Elements)
	}
	if got := f.emitter.Named(commit.EventElementSetUpdate); len(got) != 1 {
		t.Errorf("emitted %d updates", len(got))
	}
}

func TestDiagramService_MoveAndAlign(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	a, _ := f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{X: 0, Y: 0, W: 40, H: 40})
	b, _ := f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{X: 100, Y: 50, W: 40, H: 40})
	f.next(t)
	f.next(t)

	if err := f.svc.MoveElements(d.ID, []string{a.ID}, 30, 5); err != nil {
		t.Fatal(err)
	}
	msg := f.next(t)
	if msg.Payload[0].X != 30 || msg.Payload[0].Y != 5 {
		t.Errorf("moved = %+v", msg.Payload[0])
	}

	ok, err := f.svc.Align(d.ID, []string{a.ID, b.ID}, align.Top)
	if err != nil || !ok {
		t.Fatalf("align = %v, %v", ok, err)
	}
	msg = f.next(t)
	if msg.Payload[0].Y != 5 || msg.Payload[1].Y != 5 {
		t.Errorf("aligned = %+v", msg.Payload)
	}

	// Distribute needs three elements.
	if ok, _ := f.svc.Distribute(d.ID, []string{a.ID, b.ID}, align.Horizontal); ok {
		t.Error("distribute of two should be a no-op")
	}
	f.none(t)
}

func TestDiagramService_DeleteNeedsApproval(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	a, _ := f.svc.AddShape(d.ID, domain.ElementCircle, geometry.Box{W: 40, H: 40})
	f.next(t)

	if _, err := f.svc.DeleteElements(context.Background(), d.ID, []string{a.ID}, reject()); !errors.Is(err, editor.ErrRejected) {
		t.Fatalf("err = %v", err)
	}
	f.none(t)

	removed, err := f.svc.DeleteElements(context.Background(), d.ID, []string{a.ID}, approve())
	if err != nil || len(removed) != 1 {
		t.Fatalf("removed = %v, %v", removed, err)
	}
	if msg := f.next(t); len(msg.Payload) != 0 {
		t.Errorf("payload = %+v", msg.Payload)
	}
}

func TestDiagramService_TableEdits(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	tbl, _ := f.svc.AddTable(d.ID, 2, 2, nil)
	f.next(t)

	if err := f.svc.EditCellText(d.ID, tbl.ID, 1, "name"); err != nil {
		t.Fatal(err)
	}
	if msg := f.next(t); msg.Payload[0].CellData[1] != "name" {
		t.Errorf("cell data = %v", msg.Payload[0].CellData)
	}

	ok, err := f.svc.MergeCells(d.ID, tbl.ID, []int{0, 1})
	if err != nil || !ok {
		t.Fatalf("merge = %v, %v", ok, err)
	}
	msg := f.next(t)
	if len(msg.Payload[0].RowColWidths[0]) != 1 || msg.Payload[0].CellData[0] != "" {
		t.Errorf("merged = %+v", msg.Payload[0])
	}

	if _, err := f.svc.SplitCell(d.ID, "nope", 0, 2, 1); !service.IsNotFound(err) {
		t.Errorf("split missing table: %v", err)
	}
}

type denyValidator struct{}

func (denyValidator) Validate(context.Context, string, []string) error {
	return errors.New("unknown table")
}

func TestDiagramService_RelatedTablesValidated(t *testing.T) {
	f := newFixture(t)
	f.svc.SetValidator(denyValidator{})
	d, _ := f.svc.CreateDiagram("d", "src-1")
	a, _ := f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{W: 40, H: 40})
	f.next(t)

	if err := f.svc.SetRelatedTables(context.Background(), d.ID, a.ID, []string{"ghosts"}); err == nil {
		t.Fatal("expected validation error")
	}
	f.none(t)

	// Clearing never needs the catalog.
	if err := f.svc.SetRelatedTables(context.Background(), d.ID, a.ID, nil); err != nil {
		t.Fatal(err)
	}
	f.next(t)
}

func TestDiagramService_AttachImage(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	a, _ := f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{W: 80, H: 80})
	f.next(t)

	dir := t.TempDir()
	big := filepath.Join(dir, "big.png")
	if err := os.WriteFile(big, make([]byte, imageintake.MaxImageBytes+1), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.AttachImageFile(context.Background(), d.ID, a.ID, big, nil); !errors.Is(err, imageintake.ErrImageTooLarge) {
		t.Fatalf("oversized: %v", err)
	}

	small := filepath.Join(dir, "dot.png")
	_ = os.WriteFile(small, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...), 0644)
	done := make(chan error, 1)
	if err := f.svc.AttachImageFile(context.Background(), d.ID, a.ID, small, func(err error) { done <- err }); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if msg := f.next(t); msg.Payload[0].Image == "" || msg.Payload[0].MinSize() != domain.MinImageResizeSize {
		t.Errorf("image not installed: %+v", msg.Payload[0])
	}

	if err := f.svc.AttachImageData(d.ID, a.ID, "data:text/plain;base64,aGk="); !errors.Is(err, imageintake.ErrNotImage) {
		t.Errorf("text data URL: %v", err)
	}
}

func TestDiagramService_ReloadPicksUpExternalWrites(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	_, _ = f.svc.AddShape(d.ID, domain.ElementRect, geometry.Box{W: 40, H: 40})
	f.next(t)

	ctx := context.Background()
	if changed, _ := f.svc.Reload(ctx, d.ID); changed {
		t.Error("reload of our own write should be a no-op")
	}

	external := []domain.DrawElement{{ID: "ext", Kind: domain.ElementText, Width: 100, Height: 40, ZIndex: 1, Text: "hi"}}
	if err := f.store.SaveElements(d.ID, external); err != nil {
		t.Fatal(err)
	}
	changed, err := f.svc.Reload(ctx, d.ID)
	if err != nil || !changed {
		t.Fatalf("reload = %v, %v", changed, err)
	}
	els, _ := f.svc.Elements(d.ID)
	if len(els) != 1 || els[0].ID != "ext" {
		t.Errorf("elements = %+v", els)
	}
	if len(f.emitter.Named(service.EventDiagramChanged)) != 1 {
		t.Error("expected a diagram:changed event")
	}
}

func TestDiagramService_ApplyRemote(t *testing.T) {
	f := newFixture(t)
	d, _ := f.svc.CreateDiagram("d", "")
	_, _ = f.svc.Elements(d.ID) // load the session

	payload := []domain.DrawElement{{ID: "r", Kind: domain.ElementRect, Width: 30, Height: 30, ZIndex: 1}}
	own := domain.NewElementSetUpdate(d.ElementSetID, f.svc.Actor(), payload)
	if f.svc.ApplyRemote(context.Background(), own) {
		t.Error("own update should be ignored")
	}
	other := domain.NewElementSetUpdate(d.ElementSetID, domain.Actor{ID: "u2", Name: "Bo"}, payload)
	if !f.svc.ApplyRemote(context.Background(), other) {
		t.Fatal("remote update not applied")
	}
	els, _ := f.svc.Elements(d.ID)
	if len(els) != 1 || els[0].ID != "r" {
		t.Errorf("elements = %+v", els)
	}
	f.none(t)
}

func TestDiagramService_UnknownDiagram(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Elements("missing"); !service.IsNotFound(err) {
		t.Errorf("err = %v", err)
	}
}
