package form

// EventKind classifies a change notification.
type EventKind string

const (
	// EventFieldChanged is raised when a scalar field value changes.
	EventFieldChanged EventKind = "field"
	// EventCriteriaChanged is raised when the criteria list or an option changes.
	EventCriteriaChanged EventKind = "criteria"
	// EventReset is raised after every group returned to its defaults.
	EventReset EventKind = "reset"
)

// Event describes a state change. Group and Field are empty for reset events.
type Event struct {
	Kind  EventKind
	Group string
	Field string
	Value any
}

// Handler receives change events synchronously.
type Handler func(Event)

type subscriber struct {
	id int
	fn Handler
}

// Subscribe registers fn for change events. Handlers run in registration
// order. Events raised while handlers run are queued and delivered once the
// current event has reached every handler. The returned func unsubscribes.
func (s *State) Subscribe(fn Handler) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *State) emit(evt Event) {
	s.queue = append(s.queue, evt)
	if s.dispatching {
		return
	}
	s.dispatching = true
	defer func() {
		s.dispatching = false
		s.queue = nil
	}()
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		subs := append([]subscriber(nil), s.subscribers...)
		for _, sub := range subs {
			sub.fn(next)
		}
	}
}
