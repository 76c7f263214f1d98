package events

import (
	"time"

	"github.com/google/uuid"
)

type Event interface {
	ID() string
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
	Position() int64
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends domain events and serves them back by global position.
// Old events may be dropped once the store's retention is reached.
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadAllEvents(fromPosition int64) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
}

// BaseEvent is the stored form of an event. Version counts within the stream,
// Position across all streams; both start at 1.
type BaseEvent struct {
	EventID       string      `json:"id"`
	EventType     string      `json:"type"`
	Stream        string      `json:"stream"`
	EventData     interface{} `json:"data"`
	EventTime     time.Time   `json:"timestamp"`
	EventVersion  int         `json:"version"`
	EventPosition int64       `json:"position"`
}

func (e BaseEvent) ID() string {
	return e.EventID
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

func (e BaseEvent) Position() int64 {
	return e.EventPosition
}

func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now(),
		EventVersion: 1,
	}
}

// HandlerFunc adapts a function to an EventHandler that accepts every type it is subscribed to
type HandlerFunc func(event Event) error

func (f HandlerFunc) Handle(event Event) error {
	return f(event)
}

func (f HandlerFunc) CanHandle(string) bool {
	return true
}
