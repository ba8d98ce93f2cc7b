package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"claritas/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelSecret = "test-channel-secret"

// fakeLineWebhookService implements input.LineWebhookService
type fakeLineWebhookService struct {
	err      error
	requests []domain.LineWebhookRequest
}

func (f *fakeLineWebhookService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	f.requests = append(f.requests, request)
	return f.err
}

func signedWebhookRequest(body, secret string) *http.Request {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Line-Signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return req
}

const webhookBody = `{
	"destination": "Uxxxxxxxx",
	"events": [
		{
			"type": "message",
			"mode": "active",
			"timestamp": 1736044200000,
			"webhookEventId": "01HABCDEF",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token",
			"source": {"type": "group", "groupId": "C999", "userId": "U123"},
			"message": {"type": "text", "id": "1", "quoteToken": "q", "text": "/ringkasan"}
		},
		{
			"type": "follow",
			"mode": "active",
			"timestamp": 1736044200000,
			"webhookEventId": "01HABCDEG",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "follow-token",
			"source": {"type": "user", "userId": "U123"},
			"follow": {"isUnblocked": false}
		}
	]
}`

func newWebhookApp(service *fakeLineWebhookService) *fiber.App {
	app := fiber.New()
	app.Post("/webhook/line", NewLineWebhookHandler(service, testChannelSecret).HandleWebhook)
	return app
}

// TestLineWebhookConvertsEvents tests that signed events reach the service as chat commands
func TestLineWebhookConvertsEvents(t *testing.T) {
	service := &fakeLineWebhookService{}
	resp, err := newWebhookApp(service).Test(signedWebhookRequest(webhookBody, testChannelSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, service.requests, 1)
	events := service.requests[0].Events
	require.Len(t, events, 2)

	assert.Equal(t, domain.LineEvent{
		Kind:       domain.LineEventCommand,
		ChatID:     "C999",
		ReplyToken: "reply-token",
		Command:    domain.LineCommandSummary,
	}, events[0])
	assert.Equal(t, domain.LineEvent{
		Kind:       domain.LineEventFollow,
		ChatID:     "U123",
		ReplyToken: "follow-token",
	}, events[1])
}

// TestLineWebhookSkipsUnansweredEvents tests that stickers and unfollows never reach the service
func TestLineWebhookSkipsUnansweredEvents(t *testing.T) {
	body := `{
	"destination": "Uxxxxxxxx",
	"events": [
		{
			"type": "message",
			"mode": "active",
			"timestamp": 1736044200000,
			"webhookEventId": "01HABCDEH",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token",
			"source": {"type": "room", "roomId": "R1", "userId": "U123"},
			"message": {"type": "sticker", "id": "2", "quoteToken": "q", "packageId": "1", "stickerId": "1", "stickerResourceType": "STATIC"}
		},
		{
			"type": "unfollow",
			"mode": "active",
			"timestamp": 1736044200000,
			"webhookEventId": "01HABCDEI",
			"deliveryContext": {"isRedelivery": false},
			"source": {"type": "user", "userId": "U123"}
		}
	]
}`
	service := &fakeLineWebhookService{}
	resp, err := newWebhookApp(service).Test(signedWebhookRequest(body, testChannelSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, service.requests)
}

// TestLineWebhookRoomCommand tests the chat ID of a room source
func TestLineWebhookRoomCommand(t *testing.T) {
	body := `{
	"destination": "Uxxxxxxxx",
	"events": [
		{
			"type": "message",
			"mode": "active",
			"timestamp": 1736044200000,
			"webhookEventId": "01HABCDEJ",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token",
			"source": {"type": "room", "roomId": "R1", "userId": "U123"},
			"message": {"type": "text", "id": "3", "quoteToken": "q", "text": "ID"}
		}
	]
}`
	service := &fakeLineWebhookService{}
	resp, err := newWebhookApp(service).Test(signedWebhookRequest(body, testChannelSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, service.requests, 1)
	require.Len(t, service.requests[0].Events, 1)
	assert.Equal(t, "R1", service.requests[0].Events[0].ChatID)
	assert.Equal(t, domain.LineCommandChatID, service.requests[0].Events[0].Command)
}

// TestLineWebhookRejectsBadSignature tests signature validation
func TestLineWebhookRejectsBadSignature(t *testing.T) {
	service := &fakeLineWebhookService{}
	resp, err := newWebhookApp(service).Test(signedWebhookRequest(webhookBody, "other-secret"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, service.requests)
}

// TestLineWebhookServiceError tests that service failures answer 500
func TestLineWebhookServiceError(t *testing.T) {
	service := &fakeLineWebhookService{err: errors.New("invalid reply token")}
	resp, err := newWebhookApp(service).Test(signedWebhookRequest(webhookBody, testChannelSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
