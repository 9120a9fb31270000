package editor

import "errors"

var ErrGestureActive = errors.New("another gesture is in progress")

// Phase is the state of a pointer capture session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseCommitting:
		return "committing"
	}
	return "idle"
}

// gesture is the per-kind behaviour driven by a capture session.
type gesture interface {
	move(ev PointerEvent)
	// finish reports whether the gesture changed anything worth committing.
	finish() bool
	// cancel restores the state captured when the gesture began.
	cancel()
}

// captureSession runs one gesture at a time: idle → capturing → committing
// → idle. Window listeners exist only while capturing and are removed on
// every way out, including a panicking move or commit.
type captureSession struct {
	phase     Phase
	gesture   gesture
	uninstall func()
}

func (s *captureSession) begin(w *Window, g gesture, commit func()) error {
	if s.phase != PhaseIdle {
		return ErrGestureActive
	}
	s.gesture = g
	s.phase = PhaseCapturing
	s.uninstall = w.Install(Listener{
		OnMove: s.step,
		OnUp: func(ev PointerEvent) {
			s.step(ev)
			s.release(commit)
		},
		OnLeave: func() { s.release(commit) },
	})
	return nil
}

// step feeds ev to the capturing gesture. If the gesture panics it is
// aborted, restoring its start state and removing the listeners, before the
// panic continues.
func (s *captureSession) step(ev PointerEvent) {
	if s.phase != PhaseCapturing {
		return
	}
	done := false
	defer func() {
		if !done {
			s.abort()
		}
	}()
	s.gesture.move(ev)
	done = true
}

func (s *captureSession) release(commit func()) {
	if s.phase != PhaseCapturing {
		return
	}
	s.phase = PhaseCommitting
	defer s.teardown()
	if s.gesture.finish() {
		commit()
	}
}

// abort ends a capturing gesture without committing and restores its start
// state. Reports whether a gesture was aborted.
func (s *captureSession) abort() bool {
	if s.phase != PhaseCapturing {
		return false
	}
	defer s.teardown()
	s.gesture.cancel()
	return true
}

func (s *captureSession) teardown() {
	if s.uninstall != nil {
		s.uninstall()
		s.uninstall = nil
	}
	s.gesture = nil
	s.phase = PhaseIdle
}
