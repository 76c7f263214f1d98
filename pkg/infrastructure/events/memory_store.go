package events

import (
	"sync"

	"github.com/vsinha/blendmrp/pkg/logger"
)

// DefaultRetention is the number of events kept when no retention is given
const DefaultRetention = 1000

// InMemoryEventStore keeps the most recent events in process memory. Subscribers
// are notified synchronously, after the append, in subscription order.
type InMemoryEventStore struct {
	mutex       sync.RWMutex
	retention   int
	versions    map[string]int
	subscribers map[string][]EventHandler
	position    int64
	// events is ordered by position and never longer than retention
	events []Event
}

// NewInMemoryEventStore keeps at most retention events. A non-positive value
// means DefaultRetention.
func NewInMemoryEventStore(retention int) *InMemoryEventStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &InMemoryEventStore{
		retention:   retention,
		versions:    make(map[string]int),
		subscribers: make(map[string][]EventHandler),
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	s.position++
	s.versions[streamID]++
	stored := BaseEvent{
		EventID:       event.ID(),
		EventType:     event.Type(),
		Stream:        streamID,
		EventData:     event.Data(),
		EventTime:     event.Timestamp(),
		EventVersion:  s.versions[streamID],
		EventPosition: s.position,
	}

	s.events = append(s.events, stored)
	if len(s.events) > s.retention {
		s.events = s.events[len(s.events)-s.retention:]
	}
	handlers := append([]EventHandler(nil), s.subscribers[stored.EventType]...)

	s.mutex.Unlock()

	s.notifySubscribers(handlers, stored)
	return nil
}

// ReadAllEvents returns the retained events after fromPosition, oldest first.
// Pass the last position seen, or 0 for everything still retained.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int64) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.events) == 0 {
		return []Event{}, nil
	}
	first := s.events[0].Position()
	start := fromPosition - first + 1
	if start < 0 {
		start = 0
	}
	if start >= int64(len(s.events)) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.events[start:]...), nil
}

// LastPosition is the position of the newest event, 0 before the first append
func (s *InMemoryEventStore) LastPosition() int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) notifySubscribers(handlers []EventHandler, event Event) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			logger.Log.Error().Err(err).
				Str("event_type", event.Type()).
				Str("event_id", event.ID()).
				Msg("event handler failed")
		}
	}
}
