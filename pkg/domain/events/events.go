// Package events defines the change events published when the session or a
// sheet's workflow status changes.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeSessionLoaded   = "session.loaded"
	TypeSessionCleared  = "session.cleared"
	TypeWorkflowChanged = "workflow.changed"
	TypeViewChanged     = "view.changed"
	TypeReviewNudge     = "review.nudge"
)

// Event is a single state change.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	SheetID   string            `json:"sheet_id,omitempty"`
	Message   string            `json:"message,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// New returns an event of type t stamped with a fresh id and time.
func New(t, message string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithSheet sets the sheet the event refers to.
func (e *Event) WithSheet(id string) *Event {
	e.SheetID = id
	return e
}

// WithMeta adds a metadata entry.
func (e *Event) WithMeta(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Handler receives published events.
type Handler func(*Event) error

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(*Event) error
	Subscribe(Handler)
}

// InMemoryPublisher is a simple in-process publisher.
type InMemoryPublisher struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewInMemoryPublisher creates a new in-memory publisher.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Publish sends an event to all subscribers. Handler errors do not stop
// delivery to the remaining handlers.
func (p *InMemoryPublisher) Publish(e *Event) error {
	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		_ = h(e)
	}
	return nil
}

// Subscribe registers a handler.
func (p *InMemoryPublisher) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}
