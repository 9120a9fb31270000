package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"drawboard/internal/align"
	"drawboard/internal/commit"
	"drawboard/internal/domain"
	"drawboard/internal/editor"
	"drawboard/internal/elements"
	"drawboard/internal/geometry"
	"drawboard/internal/imageintake"
	"drawboard/internal/storage"

	"github.com/google/uuid"
)

// ─────────────────────────────────────────────────────────────
// Diagram Service — loaded diagram sessions and their commits
// ─────────────────────────────────────────────────────────────

// TableValidator checks related-table names against a schema source.
type TableValidator interface {
	Validate(ctx context.Context, sourceID string, names []string) error
}

// DiagramService owns one editor per loaded diagram. Every operation runs
// under that diagram's lock, so an editor only ever sees one caller at a
// time. Commits leave through a shared dispatcher that persists them,
// emits them and hands them to any extra sinks.
type DiagramService struct {
	store      *storage.DiagramStore
	emitter    EventEmitter
	actor      domain.Actor
	dispatcher *commit.Dispatcher
	intake     imageintake.Intake
	validator  TableValidator

	mu       sync.Mutex
	sessions map[string]*session // diagram id
	bySet    map[string]*session // element set id
}

type session struct {
	mu        sync.Mutex
	diagramID string
	setID     string
	editor    *editor.Editor
	// pending counts commits queued but not yet persisted.
	pending atomic.Int64
}

// sessionCommitter feeds a session's commits to the dispatcher.
type sessionCommitter struct {
	sess *session
	gw   *commit.Gateway
}

func (c *sessionCommitter) Commit(els []domain.DrawElement) {
	c.sess.pending.Add(1)
	if !c.gw.Send(els) {
		c.sess.pending.Add(-1)
	}
}

// NewDiagramService creates a DiagramService. sinks receive every commit
// after it has been persisted and emitted.
func NewDiagramService(store *storage.DiagramStore, emitter EventEmitter, actor domain.Actor, sinks ...commit.Sink) *DiagramService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	s := &DiagramService{
		store:    store,
		emitter:  emitter,
		actor:    actor,
		sessions: make(map[string]*session),
		bySet:    make(map[string]*session),
	}
	all := append([]commit.Sink{
		commit.SinkFunc{Label: "persist", Fn: s.persist},
		commit.NewEmitterSink(emitter),
	}, sinks...)
	s.dispatcher = commit.NewDispatcher(commit.DefaultQueueSize, all...)
	return s
}

// SetValidator enables related-table validation.
func (s *DiagramService) SetValidator(v TableValidator) {
	s.validator = v
}

// Actor returns the identity stamped on this service's commits.
func (s *DiagramService) Actor() domain.Actor { return s.actor }

// Close waits for pending image encodes and drains the commit queue.
func (s *DiagramService) Close(ctx context.Context) error {
	s.intake.Wait()
	return s.dispatcher.Close(ctx)
}

func (s *DiagramService) persist(_ context.Context, msg domain.ElementSetUpdate) error {
	s.mu.Lock()
	sess := s.bySet[msg.TargetElementSetID]
	s.mu.Unlock()
	if sess == nil {
		return fmt.Errorf("persist: no session for element set %s", msg.TargetElementSetID)
	}
	defer sess.pending.Add(-1)
	return s.store.SaveElements(sess.diagramID, msg.Payload)
}

// ── Diagram CRUD ───────────────────────────────────────────

func (s *DiagramService) CreateDiagram(name, schemaSourceID string) (*domain.Diagram, error) {
	d := &domain.Diagram{
		ID:             uuid.New().String(),
		Name:           name,
		ElementSetID:   uuid.New().String(),
		SchemaSourceID: schemaSourceID,
		Elements:       []domain.DrawElement{},
	}
	if err := s.store.CreateDiagram(d); err != nil {
		return nil, fmt.Errorf("create diagram: %w", err)
	}
	return d, nil
}

// GetDiagram returns a diagram with its live element set when loaded.
func (s *DiagramService) GetDiagram(id string) (*domain.Diagram, error) {
	d, err := s.store.GetDiagram(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess != nil {
		sess.mu.Lock()
		d.Elements = sess.editor.Elements()
		sess.mu.Unlock()
	}
	return d, nil
}

func (s *DiagramService) ListDiagrams() ([]domain.Diagram, error) {
	return s.store.ListDiagrams()
}

// RenameDiagram changes a diagram's display name.
func (s *DiagramService) RenameDiagram(id, name string) error {
	d, err := s.store.GetDiagram(id)
	if err != nil {
		return err
	}
	d.Name = name
	return s.store.UpdateDiagram(d)
}

// LinkSchema points the related-tables picker of a diagram at a schema
// source. An empty id unlinks it.
func (s *DiagramService) LinkSchema(id, sourceID string) error {
	d, err := s.store.GetDiagram(id)
	if err != nil {
		return err
	}
	d.SchemaSourceID = sourceID
	return s.store.UpdateDiagram(d)
}

// DeleteDiagram unloads and removes a diagram.
func (s *DiagramService) DeleteDiagram(id string) error {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		delete(s.bySet, sess.setID)
	}
	s.mu.Unlock()
	return s.store.DeleteDiagram(id)
}

// ── Sessions ───────────────────────────────────────────────

func (s *DiagramService) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	d, err := s.store.GetDiagram(id)
	if err != nil {
		return nil, err
	}
	sess := &session{diagramID: d.ID, setID: d.ElementSetID}
	gw := commit.NewGateway(d.ElementSetID, s.actor, s.dispatcher)
	sess.editor = editor.New(d.Elements, &sessionCommitter{sess: sess, gw: gw})
	s.sessions[id] = sess
	s.bySet[d.ElementSetID] = sess
	log.Printf("[diagram] loaded %s (%d elements)", id, len(d.Elements))
	return sess, nil
}

// Interact runs fn with exclusive access to the editor of diagram id.
// Pointer-driven hosts use it to feed raw input.
func (s *DiagramService) Interact(id string, fn func(ed *editor.Editor) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.editor)
}

// Loaded lists the ids of diagrams with a live session.
func (s *DiagramService) Loaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Reload replaces a loaded diagram's elements with the persisted copy when
// it was changed by someone else. Sessions mid-gesture, with uncommitted
// text or with commits still queued are left alone. Reports whether the
// session was reset.
func (s *DiagramService) Reload(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess == nil {
		return false, nil
	}
	if sess.pending.Load() > 0 {
		return false, nil
	}
	d, err := s.store.GetDiagram(id)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	ed := sess.editor
	if ed.Phase() != editor.PhaseIdle || ed.Dirty() || sess.pending.Load() > 0 {
		return false, nil
	}
	if sameElements(ed.Elements(), d.Elements) {
		return false, nil
	}
	ed.Reset(d.Elements)
	s.emitter.Emit(ctx, EventDiagramChanged, map[string]string{"diagramId": id})
	return true, nil
}

// ApplyRemote applies an update committed by another actor, last writer
// wins. Updates from this service's own actor are ignored.
func (s *DiagramService) ApplyRemote(ctx context.Context, msg domain.ElementSetUpdate) bool {
	if msg.ActorID == s.actor.ID {
		return false
	}
	s.mu.Lock()
	sess := s.bySet[msg.TargetElementSetID]
	s.mu.Unlock()
	if sess == nil {
		return false
	}
	sess.mu.Lock()
	sess.editor.Reset(msg.Payload)
	sess.mu.Unlock()
	s.emitter.Emit(ctx, EventDiagramChanged, map[string]string{"diagramId": sess.diagramID, "actorId": msg.ActorID})
	return true
}

func sameElements(a, b []domain.DrawElement) bool {
	ja, errA := domain.MarshalElements(a)
	jb, errB := domain.MarshalElements(b)
	return errA == nil && errB == nil && ja == jb
}

// ── Element operations ─────────────────────────────────────

// Elements returns the current element set of diagram id.
func (s *DiagramService) Elements(id string) ([]domain.DrawElement, error) {
	var out []domain.DrawElement
	err := s.Interact(id, func(ed *editor.Editor) error {
		out = ed.Elements()
		return nil
	})
	return out, err
}

func (s *DiagramService) AddShape(id string, kind domain.ElementKind, b geometry.Box) (domain.DrawElement, error) {
	var el domain.DrawElement
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		el, err = ed.InsertShape(kind, b)
		return err
	})
	return el, err
}

// AddText inserts a text element; a nil box picks the next free slot.
func (s *DiagramService) AddText(id, text string, at *geometry.Box) (domain.DrawElement, error) {
	var el domain.DrawElement
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		el, err = ed.InsertText(text, at)
		return err
	})
	return el, err
}

func (s *DiagramService) AddTable(id string, rows, cols int, at *geometry.Box) (domain.DrawElement, error) {
	var el domain.DrawElement
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		el, err = ed.InsertTable(rows, cols, at)
		return err
	})
	return el, err
}

// Select replaces the selection of diagram id.
func (s *DiagramService) Select(id string, ids []string) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		for _, elID := range ids {
			if _, ok := ed.Element(elID); !ok {
				return fmt.Errorf("select %s: %w", elID, elements.ErrNotFound)
			}
		}
		ed.Selection().Set(ids)
		return nil
	})
}

func (s *DiagramService) MoveElements(id string, ids []string, dx, dy float64) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.MoveBy(ids, dx, dy)
	})
}

func (s *DiagramService) ResizeElement(id, elID string, h geometry.Handle, dx, dy float64) (domain.DrawElement, error) {
	var el domain.DrawElement
	err := s.Interact(id, func(ed *editor.Editor) error {
		if err := ed.ResizeBy(elID, h, dx, dy); err != nil {
			return err
		}
		el, _ = ed.Element(elID)
		return nil
	})
	return el, err
}

func (s *DiagramService) ResizeColumn(id, elID string, row, col int, dx float64) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.ResizeColumnBy(elID, row, col, dx)
	})
}

func (s *DiagramService) ResizeRow(id, elID string, row int, dy float64) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.ResizeRowBy(elID, row, dy)
	})
}

func (s *DiagramService) Reorder(id string, ids []string, action elements.ReorderAction) error {
	return s.withSelection(id, ids, func(ed *editor.Editor) error {
		return ed.Reorder(action)
	})
}

// Align reports false when fewer than two of ids exist.
func (s *DiagramService) Align(id string, ids []string, mode align.Mode) (bool, error) {
	var changed bool
	err := s.withSelection(id, ids, func(ed *editor.Editor) error {
		var err error
		changed, err = ed.Align(mode)
		return err
	})
	return changed, err
}

// Distribute reports false when fewer than three of ids exist.
func (s *DiagramService) Distribute(id string, ids []string, axis align.Axis) (bool, error) {
	var changed bool
	err := s.withSelection(id, ids, func(ed *editor.Editor) error {
		var err error
		changed, err = ed.Distribute(axis)
		return err
	})
	return changed, err
}

func (s *DiagramService) Arrange(id string, ids []string) (bool, error) {
	var changed bool
	err := s.withSelection(id, ids, func(ed *editor.Editor) error {
		var err error
		changed, err = ed.Arrange()
		return err
	})
	return changed, err
}

// DeleteElements removes ids after c approves. The lock is held while
// waiting for approval so nothing else edits the diagram meanwhile.
func (s *DiagramService) DeleteElements(ctx context.Context, id string, ids []string, c editor.Confirmer) ([]string, error) {
	var removed []string
	err := s.withSelection(id, ids, func(ed *editor.Editor) (err error) {
		removed, err = ed.DeleteSelection(ctx, c)
		return err
	})
	return removed, err
}

func (s *DiagramService) withSelection(id string, ids []string, fn func(ed *editor.Editor) error) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		if ids != nil {
			ed.Selection().Set(ids)
		}
		return fn(ed)
	})
}

// ── Tables ─────────────────────────────────────────────────

func (s *DiagramService) SplitCell(id, elID string, index, rows, cols int) (bool, error) {
	var changed bool
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		changed, err = ed.SplitCell(elID, index, rows, cols)
		return err
	})
	return changed, err
}

func (s *DiagramService) MergeCells(id, elID string, indices []int) (bool, error) {
	var changed bool
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		changed, err = ed.MergeCells(elID, indices)
		return err
	})
	return changed, err
}

// EditCellText sets a cell's text as one complete edit.
func (s *DiagramService) EditCellText(id, elID string, index int, text string) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		if err := ed.EditCellText(elID, index, text); err != nil {
			return err
		}
		ed.BlurText()
		return nil
	})
}

func (s *DiagramService) StyleCells(id, elID string, indices []int, color *string, style *domain.CellStyle) (int, error) {
	var n int
	err := s.Interact(id, func(ed *editor.Editor) (err error) {
		n, err = ed.StyleCells(elID, indices, color, style)
		return err
	})
	return n, err
}

// ── Text, style, links ─────────────────────────────────────

// EditText sets an element's text as one complete edit.
func (s *DiagramService) EditText(id, elID, text string) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		if err := ed.EditText(elID, text); err != nil {
			return err
		}
		ed.BlurText()
		return nil
	})
}

func (s *DiagramService) Restyle(id string, ids []string, p editor.StylePatch) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.Restyle(ids, p)
	})
}

// SetRelatedTables links an element to schema entities, checking the names
// against the diagram's linked schema when one is set.
func (s *DiagramService) SetRelatedTables(ctx context.Context, id, elID string, names []string) error {
	if len(names) > 0 && s.validator != nil {
		d, err := s.store.GetDiagram(id)
		if err != nil {
			return err
		}
		if d.SchemaSourceID != "" {
			if err := s.validator.Validate(ctx, d.SchemaSourceID, names); err != nil {
				return fmt.Errorf("related tables: %w", err)
			}
		}
	}
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.SetRelatedTables(elID, names)
	})
}

// ── Images ─────────────────────────────────────────────────

// AttachImageFile loads an image file onto element elID. Oversized or
// unreadable files are rejected at once; encoding finishes in the
// background, after which done (if set) is called.
func (s *DiagramService) AttachImageFile(ctx context.Context, id, elID, path string, done func(error)) error {
	if err := s.requireElement(id, elID); err != nil {
		return err
	}
	return s.intake.SubmitFile(path, func(dataURL string, err error) {
		if err == nil {
			err = s.Interact(id, func(ed *editor.Editor) error {
				return ed.InstallImage(elID, dataURL)
			})
		}
		if err != nil {
			log.Printf("[diagram] image for %s/%s: %v", id, elID, err)
			s.emitter.Emit(ctx, EventImageFailed, map[string]string{
				"diagramId": id, "elementId": elID, "error": err.Error(),
			})
		}
		if done != nil {
			done(err)
		}
	})
}

// AttachImageData installs an already-encoded data URL after checking it.
func (s *DiagramService) AttachImageData(id, elID, dataURL string) error {
	if _, _, err := imageintake.DecodeDataURL(dataURL); err != nil {
		return err
	}
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.InstallImage(elID, dataURL)
	})
}

// ClearImage removes an element's image.
func (s *DiagramService) ClearImage(id, elID string) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		return ed.InstallImage(elID, "")
	})
}

func (s *DiagramService) requireElement(id, elID string) error {
	return s.Interact(id, func(ed *editor.Editor) error {
		if _, ok := ed.Element(elID); !ok {
			return fmt.Errorf("element %s: %w", elID, elements.ErrNotFound)
		}
		return nil
	})
}

// IsNotFound reports whether err means a missing diagram or element.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, elements.ErrNotFound)
}
