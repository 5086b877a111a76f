// Package notify defines the short-lived user notices shown after actions.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DisplayDuration is how long a notice stays visible.
const DisplayDuration = 3 * time.Second

// Severity tags a notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// IsValid returns true for the four known severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo, SeverityWarning:
		return true
	default:
		return false
	}
}

// Color returns the hex colour the notice is drawn in.
func (s Severity) Color() string {
	switch s {
	case SeveritySuccess:
		return "#48bb78"
	case SeverityError:
		return "#fc8181"
	case SeverityWarning:
		return "#f6ad55"
	default:
		return "#4299e1"
	}
}

// ParseSeverity parses a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return sev, nil
}

// Notice is one user-visible message.
type Notice struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a notice stamped now.
func New(sev Severity, message string) Notice {
	return Notice{
		ID:        uuid.NewString(),
		Severity:  sev,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Expired reports whether the notice has outlived DisplayDuration at now.
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= DisplayDuration
}

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Multi fans a notice out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// Queue holds notices until they expire. The dashboard drains it for its
// flash area and the TUI for its status line.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Notify implements Notifier.
func (q *Queue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notices = append(q.notices, n)
}

// Active returns the notices that have not expired and drops the rest.
func (q *Queue) Active() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.notices[:0]
	for _, n := range q.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	q.notices = kept
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Latest returns the most recent active notice.
func (q *Queue) Latest() (Notice, bool) {
	active := q.Active()
	if len(active) == 0 {
		return Notice{}, false
	}
	return active[len(active)-1], true
}
