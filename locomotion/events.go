package locomotion

import "github.com/milk9111/parkour/component"

// EventKind identifies body events.
type EventKind string

const (
	EventHit         EventKind = "hit"
	EventLanded      EventKind = "landed"
	EventModeChanged EventKind = "mode"
)

// Event is emitted by Body.Step and drained once per frame.
type Event struct {
	Kind EventKind
	Hit  component.Hit
	// Prev and Next are set for mode changes; VelocityZ is sampled at the change.
	Prev      component.MovementMode
	Next      component.MovementMode
	VelocityZ float64
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
