// Package messaging defines the pluggable messaging adapter interface.
package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
)

// MessageAdapter sends event notifications to an external channel.
type MessageAdapter interface {
	Send(ctx context.Context, event *events.Event) error
	Name() string
	Type() string
}

// AdapterConfig defines configuration for a messaging adapter.
type AdapterConfig struct {
	Name         string            `yaml:"name" json:"name"`
	Type         string            `yaml:"type" json:"type"` // TypeWebhook or TypeSlack
	URL          string            `yaml:"url" json:"url"`
	Secret       string            `yaml:"secret,omitempty" json:"secret,omitempty"`
	EventFilters []string          `yaml:"event_filters,omitempty" json:"event_filters,omitempty"`
	Enabled      bool              `yaml:"enabled" json:"enabled"`
	Options      map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Accepts reports whether the adapter wants events of type t. An empty
// filter list accepts everything except view changes, which are only
// delivered when named explicitly or matched by "*".
func (c AdapterConfig) Accepts(t string) bool {
	if len(c.EventFilters) == 0 {
		return t != events.TypeViewChanged
	}
	for _, f := range c.EventFilters {
		if f == t || f == "*" {
			return true
		}
	}
	return false
}

// MessagingConfig holds all configured messaging adapters.
type MessagingConfig struct {
	Adapters []AdapterConfig `yaml:"adapters" json:"adapters"`
}

// Adapter types.
const (
	TypeWebhook = "webhook"
	TypeSlack   = "slack"
)

// ErrInvalidAdapter is wrapped by Validate failures.
var ErrInvalidAdapter = errors.New("invalid messaging adapter")

// Validate checks that adapter names are unique and every adapter has a
// known type and a URL.
func (c *MessagingConfig) Validate() error {
	seen := make(map[string]bool, len(c.Adapters))
	for i, a := range c.Adapters {
		switch {
		case a.Name == "":
			return fmt.Errorf("%w: adapter %d has no name", ErrInvalidAdapter, i+1)
		case seen[a.Name]:
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidAdapter, a.Name)
		case a.Type != TypeWebhook && a.Type != TypeSlack:
			return fmt.Errorf("%w: %q has unknown type %q", ErrInvalidAdapter, a.Name, a.Type)
		case a.URL == "":
			return fmt.Errorf("%w: %q has no url", ErrInvalidAdapter, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
