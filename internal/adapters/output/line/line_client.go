package line

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claritas/configs"
	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/sirupsen/logrus"
)

var (
	_ output.Notifier    = (*LineClientAdapter)(nil)
	_ output.LineReplier = (*LineClientAdapter)(nil)
	_ output.Notifier    = NoopNotifier{}
)

// maxReplyMessages is the LINE limit of messages per reply
const maxReplyMessages = 5

// messagingClient is the part of the LINE messaging API the adapter needs
type messagingClient interface {
	PushMessage(pushMessageRequest *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
	ReplyMessage(replyMessageRequest *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// LineClientAdapter struct - Output adapter for the LINE Messaging API.
// Pushes new session alerts to the caregiver and answers webhook commands.
type LineClientAdapter struct {
	client   messagingClient
	to       string
	location *time.Location
}

// NewLineClientAdapter func - Creates a LINE client adapter from the channel access token
func NewLineClientAdapter(config configs.Line, location *time.Location) (*LineClientAdapter, error) {
	if config.ChannelToken == "" {
		return nil, errors.New("LINE channel token is required")
	}
	client, err := messaging_api.NewMessagingApiAPI(config.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging API client: %w", err)
	}
	return newLineClientAdapter(client, config.NotifyTo, location), nil
}

// NewNotifier func - Creates the LINE notifier, or a no-op notifier when no recipient is configured
func NewNotifier(adapter *LineClientAdapter) output.Notifier {
	if adapter == nil || adapter.to == "" {
		logrus.Info("LINE notifier disabled: channel token or recipient not configured")
		return NoopNotifier{}
	}
	return adapter
}

func newLineClientAdapter(client messagingClient, to string, location *time.Location) *LineClientAdapter {
	if location == nil {
		location = time.UTC
	}
	return &LineClientAdapter{
		client:   client,
		to:       to,
		location: location,
	}
}

// NotifySession - Pushes a summary of the session to the configured recipient.
// The session ID doubles as the LINE retry key so a resent alert is not delivered twice.
func (a *LineClientAdapter) NotifySession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.to == "" {
		return errors.New("LINE recipient is not configured")
	}
	req := &messaging_api.PushMessageRequest{
		To: a.to,
		Messages: []messaging_api.MessageInterface{
			&messaging_api.TextMessage{
				Text: domain.SessionAlertText(session, a.location),
			},
		},
	}

	if _, err := a.client.PushMessage(req, session.ID); err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}

	logrus.Infof("Successfully sent session alert %s to: %s", session.ID, a.to)
	return nil
}

// ReplyText - Replies to a webhook event with up to five text messages
func (a *LineClientAdapter) ReplyText(ctx context.Context, replyToken string, texts ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if replyToken == "" {
		return errors.New("reply token is required")
	}
	if len(texts) == 0 {
		return nil
	}
	if len(texts) > maxReplyMessages {
		texts = texts[:maxReplyMessages]
	}

	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, &messaging_api.TextMessage{Text: text})
	}

	if _, err := a.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("failed to send reply message: %w", err)
	}

	logrus.Debugf("Replied with %d message(s)", len(messages))
	return nil
}

// NoopNotifier struct - used when alerts are disabled
type NoopNotifier struct{}

// NotifySession does nothing
func (NoopNotifier) NotifySession(context.Context, domain.Session) error {
	return nil
}
