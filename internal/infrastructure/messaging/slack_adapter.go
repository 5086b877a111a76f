package messaging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/messaging"
)

// SlackAdapter sends events to a Slack incoming webhook URL.
type SlackAdapter struct {
	config messaging.AdapterConfig
	client *http.Client
}

// NewSlackAdapter creates a Slack adapter from config.
func NewSlackAdapter(config messaging.AdapterConfig) *SlackAdapter {
	return &SlackAdapter{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *SlackAdapter) Name() string { return a.config.Name }
func (a *SlackAdapter) Type() string { return "slack" }

func (a *SlackAdapter) Send(ctx context.Context, event *events.Event) error {
	text := formatSlackMessage(event)

	msg := &slack.WebhookMessage{
		Text:    text,
		Channel: a.config.Options["channel"],
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			slack.NewContextBlock("",
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("`%s` · %s", event.Type, event.Timestamp.Format(time.RFC3339)), false, false)),
		}},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, a.config.URL, a.client, msg); err != nil {
		return fmt.Errorf("send to slack: %w", err)
	}
	return nil
}

func formatSlackMessage(event *events.Event) string {
	switch event.Type {
	case events.TypeSessionLoaded:
		return fmt.Sprintf(":page_facing_up: Drawings parsed: %s", event.Message)
	case events.TypeWorkflowChanged:
		if event.Metadata["to"] == "approved" {
			return fmt.Sprintf(":white_check_mark: %s", event.Message)
		}
		return fmt.Sprintf(":arrow_forward: %s", event.Message)
	case events.TypeSessionCleared:
		return ":wastebasket: Session cleared"
	case events.TypeReviewNudge:
		return fmt.Sprintf(":bell: %s", event.Message)
	default:
		if event.Message != "" {
			return event.Message
		}
		return fmt.Sprintf("Drafty event: %s", event.Type)
	}
}
