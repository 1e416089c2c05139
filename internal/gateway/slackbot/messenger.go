package slackbot

import (
	"context"
	"fmt"

	"github.com/Xausdorf/openpoll/internal/view"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Messenger posts and edits poll messages through the Slack Web API.
type Messenger struct {
	client *slack.Client
}

func NewMessenger(client *slack.Client) *Messenger {
	return &Messenger{client: client}
}

// Check verifies the bot token.
func (m *Messenger) Check(ctx context.Context) error {
	auth, err := m.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}
	log.Info().Str("team", auth.Team).Str("user", auth.User).Msg("Logged in to slack")
	return nil
}

func (m *Messenger) PostMessage(ctx context.Context, channelID string, msg view.Message) (string, error) {
	_, ts, err := m.client.PostMessageContext(ctx, channelID, messageOptions(&msg)...)
	if err != nil {
		return "", fmt.Errorf("could not post message: %w", err)
	}
	return ts, nil
}

func (m *Messenger) UpdateMessage(ctx context.Context, channelID, ts string, msg view.Message) error {
	if _, _, _, err := m.client.UpdateMessageContext(ctx, channelID, ts, messageOptions(&msg)...); err != nil {
		return fmt.Errorf("could not update message: %w", err)
	}
	return nil
}

func (m *Messenger) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	if _, err := m.client.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("could not post ephemeral: %w", err)
	}
	return nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, channelID, ts string) error {
	if _, _, err := m.client.DeleteMessageContext(ctx, channelID, ts); err != nil {
		return fmt.Errorf("could not delete message: %w", err)
	}
	return nil
}

func messageOptions(msg *view.Message) []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionText(msg.Fallback, false),
		slack.MsgOptionBlocks(msg.Blocks()...),
	}
}
