package commit

import (
	"context"

	"drawboard/internal/domain"
)

// EventElementSetUpdate is the event name commits are emitted under.
const EventElementSetUpdate = "diagram:element-set-update"

// Emitter is the event sink shape used by the services.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// EmitterSink forwards commits to an in-process event emitter.
type EmitterSink struct {
	emitter Emitter
}

func NewEmitterSink(e Emitter) *EmitterSink {
	return &EmitterSink{emitter: e}
}

func (s *EmitterSink) Name() string { return "emitter" }

func (s *EmitterSink) Deliver(ctx context.Context, msg domain.ElementSetUpdate) error {
	s.emitter.Emit(ctx, EventElementSetUpdate, msg)
	return nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	Label string
	Fn    func(ctx context.Context, msg domain.ElementSetUpdate) error
}

func (s SinkFunc) Name() string { return s.Label }

func (s SinkFunc) Deliver(ctx context.Context, msg domain.ElementSetUpdate) error {
	return s.Fn(ctx, msg)
}
