package editor

import "sort"

// PointerEvent is a pointer position in canvas coordinates.
type PointerEvent struct {
	X, Y  float64
	Shift bool
}

// Listener is a set of window-level pointer callbacks. Nil fields are
// skipped.
type Listener struct {
	OnMove  func(PointerEvent)
	OnUp    func(PointerEvent)
	OnLeave func()
}

// Window is the window-level event target gestures capture the pointer on.
// Listeners installed here keep receiving events after the pointer leaves
// the element that started the gesture.
type Window struct {
	listeners map[int]Listener
	next      int
}

func NewWindow() *Window {
	return &Window{listeners: map[int]Listener{}}
}

// Install registers l and returns the function that removes it. Calling the
// returned function more than once is harmless.
func (w *Window) Install(l Listener) (uninstall func()) {
	id := w.next
	w.next++
	w.listeners[id] = l
	return func() { delete(w.listeners, id) }
}

// ListenerCount reports how many listeners are installed.
func (w *Window) ListenerCount() int { return len(w.listeners) }

func (w *Window) DispatchMove(ev PointerEvent) {
	for _, l := range w.snapshot() {
		if l.OnMove != nil {
			l.OnMove(ev)
		}
	}
}

func (w *Window) DispatchUp(ev PointerEvent) {
	for _, l := range w.snapshot() {
		if l.OnUp != nil {
			l.OnUp(ev)
		}
	}
}

// DispatchLeave signals that the pointer left the canvas.
func (w *Window) DispatchLeave() {
	for _, l := range w.snapshot() {
		if l.OnLeave != nil {
			l.OnLeave()
		}
	}
}

// snapshot copies the listener set in install order so callbacks may
// uninstall themselves mid-dispatch.
func (w *Window) snapshot() []Listener {
	ids := make([]int, 0, len(w.listeners))
	for id := range w.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = w.listeners[id]
	}
	return out
}
