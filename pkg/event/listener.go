// Package event carries progress notifications from the runner to whoever
// is displaying them.
package event

type Event interface {
	EventType() string
}

type Handler func(event Event)

// Listener fans events out to its handlers in registration order. A nil
// *Listener drops every event.
type Listener struct {
	handlers []Handler
}

func (l *Listener) Fire(event Event) {
	if l == nil {
		return
	}

	for _, h := range l.handlers {
		h(event)
	}
}

func (l *Listener) AddHandler(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Collect returns a Listener that appends every event to the returned
// slice pointer. Useful in tests.
func Collect() (*Listener, *[]Event) {
	var (
		l      Listener
		events []Event
	)

	l.AddHandler(func(ev Event) {
		events = append(events, ev)
	})

	return &l, &events
}
