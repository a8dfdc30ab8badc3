package handler

import "github.com/tokenize-x/ibc-relayer/ibc/events"

// Output accumulates the result, events and log lines produced while
// processing one message (spec.md §4.D). Events are appended in
// production order; there is no other way to add one.
type Output[T any] struct {
	Result T
	events []events.Event
	log    []string
}

// NewOutput starts a builder carrying the zero value of T until set.
func NewOutput[T any]() *Output[T] {
	return &Output[T]{}
}

// EmitEvent appends one event, preserving call order.
func (o *Output[T]) EmitEvent(e events.Event) {
	o.events = append(o.events, e)
}

// Log appends one human-readable log line, preserving call order.
func (o *Output[T]) Log(line string) {
	o.log = append(o.log, line)
}

// SetResult sets the final result value.
func (o *Output[T]) SetResult(result T) {
	o.Result = result
}

// Events returns the accumulated events in production order.
func (o *Output[T]) Events() []events.Event {
	return o.events
}

// LogLines returns the accumulated log lines in production order.
func (o *Output[T]) LogLines() []string {
	return o.log
}
