package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

type SlackOption struct {
	ChannelID string
	// APIURL overrides the Slack endpoint; must end with a slash.
	APIURL string
}

// Slack mirrors messages into a company channel so approvers without an open
// stream still see them.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

func NewSlack(token string, options SlackOption) *Slack {
	var opts []slack.Option
	if options.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(options.APIURL))
	}
	return &Slack{client: slack.New(token, opts...), options: options}
}

func (s *Slack) Notify(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("*%s*\n%s", msg.Title, msg.Body)
	_, _, err := s.client.PostMessageContext(ctx,
		s.options.ChannelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}
