package line

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"claritas/configs"
	"claritas/internal/domain"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// mockMessagingClient struct - captures push and reply requests
type mockMessagingClient struct {
	PushMessageFunc  func(*messaging_api.PushMessageRequest, string) (*messaging_api.PushMessageResponse, error)
	ReplyMessageFunc func(*messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	pushes           []*messaging_api.PushMessageRequest
	retryKeys        []string
	replies          []*messaging_api.ReplyMessageRequest
}

func (m *mockMessagingClient) PushMessage(req *messaging_api.PushMessageRequest, retryKey string) (*messaging_api.PushMessageResponse, error) {
	m.pushes = append(m.pushes, req)
	m.retryKeys = append(m.retryKeys, retryKey)
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(req, retryKey)
	}
	return &messaging_api.PushMessageResponse{}, nil
}

func (m *mockMessagingClient) ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error) {
	m.replies = append(m.replies, req)
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(req)
	}
	return &messaging_api.ReplyMessageResponse{}, nil
}

func sampleSession() domain.Session {
	return domain.Session{
		ID:        "6b0d9d4e-9f1c-4f8f-8e2a-2f1a8c7b9e10",
		Date:      time.Date(2025, time.January, 5, 3, 30, 0, 0, time.UTC),
		TaskType:  domain.TaskTypePictureDescription,
		Caregiver: "Rina",
		Patient:   "Budi",
		Scores:    domain.Scores{SpeechFluency: 72.4, LexicalScore: 65.5, CoherenceScore: 70},
		RiskBand:  domain.RiskBandMedium,
		Summary:   "Bicara cukup lancar.",
	}
}

// TestNotifySessionPushesText tests that one text message is pushed with the session ID as retry key
func TestNotifySessionPushesText(t *testing.T) {
	client := &mockMessagingClient{}
	adapter := newLineClientAdapter(client, "U123", time.FixedZone("WIB", 7*3600))

	if err := adapter.NotifySession(context.Background(), sampleSession()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(client.pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(client.pushes))
	}
	req := client.pushes[0]
	if req.To != "U123" {
		t.Errorf("expected recipient U123, got %s", req.To)
	}
	if len(req.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(req.Messages))
	}
	text, ok := req.Messages[0].(*messaging_api.TextMessage)
	if !ok {
		t.Fatalf("expected text message, got %T", req.Messages[0])
	}
	if !strings.Contains(text.Text, "Tanggal: 5 Jan 2025 10:30") {
		t.Errorf("expected the alert to use the configured location, got:\n%s", text.Text)
	}
	if client.retryKeys[0] != sampleSession().ID {
		t.Errorf("expected retry key to be the session ID, got %s", client.retryKeys[0])
	}
}

// TestNotifySessionError tests that push failures are returned
func TestNotifySessionError(t *testing.T) {
	client := &mockMessagingClient{
		PushMessageFunc: func(*messaging_api.PushMessageRequest, string) (*messaging_api.PushMessageResponse, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	adapter := newLineClientAdapter(client, "U123", nil)

	err := adapter.NotifySession(context.Background(), sampleSession())
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected push error, got: %v", err)
	}
}

// TestReplyText tests that texts become one reply request, capped at five messages
func TestReplyText(t *testing.T) {
	client := &mockMessagingClient{}
	adapter := newLineClientAdapter(client, "", nil)

	texts := []string{"1", "2", "3", "4", "5", "6"}
	if err := adapter.ReplyText(context.Background(), "reply-token", texts...); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(client.replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(client.replies))
	}
	req := client.replies[0]
	if req.ReplyToken != "reply-token" {
		t.Errorf("expected reply token to be forwarded, got %s", req.ReplyToken)
	}
	if len(req.Messages) != maxReplyMessages {
		t.Errorf("expected %d messages, got %d", maxReplyMessages, len(req.Messages))
	}
}

// TestReplyTextValidation tests the empty token and empty message cases
func TestReplyTextValidation(t *testing.T) {
	client := &mockMessagingClient{}
	adapter := newLineClientAdapter(client, "", nil)

	if err := adapter.ReplyText(context.Background(), "", "hello"); err == nil {
		t.Error("expected error for missing reply token")
	}
	if err := adapter.ReplyText(context.Background(), "token"); err != nil {
		t.Errorf("expected no error for empty reply, got: %v", err)
	}
	if len(client.replies) != 0 {
		t.Errorf("expected no reply request, got %d", len(client.replies))
	}
}

// TestReplyTextError tests that reply failures are returned
func TestReplyTextError(t *testing.T) {
	client := &mockMessagingClient{
		ReplyMessageFunc: func(*messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error) {
			return nil, errors.New("invalid reply token")
		},
	}
	adapter := newLineClientAdapter(client, "", nil)

	err := adapter.ReplyText(context.Background(), "expired", "hello")
	if err == nil || !strings.Contains(err.Error(), "invalid reply token") {
		t.Errorf("expected reply error, got: %v", err)
	}
}

// TestNewNotifierDisabled tests that a missing recipient yields the no-op notifier
func TestNewNotifierDisabled(t *testing.T) {
	adapter, err := NewLineClientAdapter(configs.Line{ChannelToken: "token"}, time.UTC)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	notifier := NewNotifier(adapter)
	if _, ok := notifier.(NoopNotifier); !ok {
		t.Errorf("expected NoopNotifier, got %T", notifier)
	}
	if err := notifier.NotifySession(context.Background(), sampleSession()); err != nil {
		t.Errorf("expected no-op notify to succeed, got: %v", err)
	}

	if _, ok := NewNotifier(nil).(NoopNotifier); !ok {
		t.Error("expected NoopNotifier for a nil adapter")
	}
}

// TestNewLineClientAdapterRequiresToken tests the constructor validation
func TestNewLineClientAdapterRequiresToken(t *testing.T) {
	if _, err := NewLineClientAdapter(configs.Line{}, nil); err == nil {
		t.Error("expected error without channel token")
	}
}
