package events

import "milkchain/core/types"

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Renderable is implemented by events that can be flattened into the
// attribute form consumed by indexers and logs.
type Renderable interface {
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Buffer holds events emitted during an operation until the operation either
// commits (Flush) or aborts (Drop). It is not safe for concurrent use.
type Buffer struct {
	pending []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Len reports the number of buffered events.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}

// Flush forwards every buffered event to the downstream emitter in emission
// order and clears the buffer. The flushed events are returned.
func (b *Buffer) Flush(downstream Emitter) []Event {
	if b == nil {
		return nil
	}
	out := b.pending
	b.pending = nil
	if downstream == nil {
		return out
	}
	for _, evt := range out {
		downstream.Emit(evt)
	}
	return out
}

// Drop discards every buffered event.
func (b *Buffer) Drop() {
	if b == nil {
		return
	}
	b.pending = nil
}

// Recorder is an Emitter that retains every event it receives.
type Recorder struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	r.Events = append(r.Events, evt)
}

// OfType returns the recorded events matching the provided type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, evt := range r.Events {
		if evt.EventType() == eventType {
			out = append(out, evt)
		}
	}
	return out
}
