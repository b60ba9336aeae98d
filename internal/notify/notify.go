// Package notify delivers results (council reports, document links,
// scheduled workflow output) to an external channel.
package notify

import (
	"context"
	"fmt"

	slackgo "github.com/slack-go/slack"
)

// Notifier delivers a titled message somewhere a human will see it.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) error { return nil }

// SlackNotifier posts to a fixed Slack channel.
type SlackNotifier struct {
	client  *slackgo.Client
	channel string
}

// NewSlackNotifier creates a SlackNotifier. opts exist so tests can redirect
// the API URL.
func NewSlackNotifier(token, channel string, opts ...slackgo.Option) (*SlackNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}
	return &SlackNotifier{
		client:  slackgo.New(token, opts...),
		channel: channel,
	}, nil
}

// Notify implements Notifier. The title goes in bold above the body.
func (n *SlackNotifier) Notify(ctx context.Context, title, body string) error {
	text := body
	if title != "" {
		text = fmt.Sprintf("*%s*\n%s", title, body)
	}
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slackgo.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	return nil
}
