package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"claritas/internal/adapters/output/memory"
	"claritas/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandEvent(command domain.LineCommand) domain.LineEvent {
	return domain.LineEvent{
		Kind:       domain.LineEventCommand,
		ChatID:     "U123",
		ReplyToken: "reply-token",
		Command:    command,
	}
}

func newTestLineWebhookService(t *testing.T, sessions ...domain.Session) (*LineWebhookService, *MockLineReplier) {
	t.Helper()
	store := memory.NewMemorySessionStore()
	seedSessions(t, store, sessions...)
	replier := &MockLineReplier{}
	return NewLineWebhookService(replier, store, time.FixedZone("WIB", 7*3600)), replier
}

// TestLineWebhookServiceSummaryCommand tests the dashboard summary reply
func TestLineWebhookServiceSummaryCommand(t *testing.T) {
	service, replier := newTestLineWebhookService(t,
		newSession("a", time.Date(2025, time.January, 1, 3, 0, 0, 0, time.UTC), domain.TaskTypePictureDescription, 60, 70, 65),
		newSession("b", time.Date(2025, time.January, 5, 3, 0, 0, 0, time.UTC), domain.TaskTypeSentenceReading, 64, 72, 68),
	)

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{commandEvent(domain.LineCommandSummary)},
	})
	require.NoError(t, err)
	require.Len(t, replier.Replies, 1)
	assert.Equal(t, "reply-token", replier.Tokens[0])

	reply := replier.Replies[0][0]
	assert.Contains(t, reply, "Ringkasan Claritas (2 sesi)")
	assert.Contains(t, reply, "Skor keseluruhan: 67 (Medium)")
	assert.Contains(t, reply, "Sesi terakhir: 5 Jan 2025 10:00")
	assert.Contains(t, reply, "Kelancaran bicara: 64 ↑ (+7%)")
}

// TestLineWebhookServiceLatestCommand tests the latest session reply
func TestLineWebhookServiceLatestCommand(t *testing.T) {
	service, replier := newTestLineWebhookService(t,
		newSession("a", time.Date(2025, time.January, 1, 3, 0, 0, 0, time.UTC), domain.TaskTypePictureDescription, 60, 70, 65),
		newSession("b", time.Date(2025, time.January, 5, 3, 0, 0, 0, time.UTC), domain.TaskTypeSentenceReading, 64, 72, 68),
	)

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{commandEvent(domain.LineCommandLatest)},
	})
	require.NoError(t, err)
	require.Len(t, replier.Replies, 1)
	assert.Contains(t, replier.Replies[0][0], "Tugas: Membaca kalimat")
	assert.Contains(t, replier.Replies[0][0], "Tanggal: 5 Jan 2025 10:00")
}

// TestLineWebhookServiceEmptyHistory tests commands before any session exists
func TestLineWebhookServiceEmptyHistory(t *testing.T) {
	service, replier := newTestLineWebhookService(t)

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{commandEvent(domain.LineCommandSummary), commandEvent(domain.LineCommandLatest)},
	})
	require.NoError(t, err)
	require.Len(t, replier.Replies, 2)
	assert.Equal(t, "Belum ada sesi yang tercatat.", replier.Replies[0][0])
	assert.Equal(t, "Belum ada sesi yang tercatat.", replier.Replies[1][0])
}

// TestLineWebhookServiceIDAndHelp tests the ID command and the help fallback
func TestLineWebhookServiceIDAndHelp(t *testing.T) {
	service, replier := newTestLineWebhookService(t)

	group := commandEvent(domain.LineCommandChatID)
	group.ChatID = "C999"

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{group, commandEvent(domain.LineCommandHelp)},
	})
	require.NoError(t, err)
	require.Len(t, replier.Replies, 2)
	assert.Equal(t, "ID LINE untuk notifikasi: C999", replier.Replies[0][0])
	assert.Equal(t, lineHelpText, replier.Replies[1][0])
}

// TestLineWebhookServiceFollow tests the welcome reply
func TestLineWebhookServiceFollow(t *testing.T) {
	service, replier := newTestLineWebhookService(t)

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{{
			Kind:       domain.LineEventFollow,
			ChatID:     "U123",
			ReplyToken: "follow-token",
		}},
	})
	require.NoError(t, err)
	require.Len(t, replier.Replies, 1)
	require.Len(t, replier.Replies[0], 2)
	assert.Contains(t, replier.Replies[0][0], "ID LINE Anda: U123")
	assert.Equal(t, lineHelpText, replier.Replies[0][1])
}

// TestLineWebhookServiceIgnoresUnanswerableEvents tests that events without a reply token or of another kind get no reply
func TestLineWebhookServiceIgnoresUnanswerableEvents(t *testing.T) {
	service, replier := newTestLineWebhookService(t)

	noToken := commandEvent(domain.LineCommandSummary)
	noToken.ReplyToken = ""

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{
			noToken,
			{Kind: "unfollow", ChatID: "U123", ReplyToken: "reply-token"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, replier.Replies)
}

// TestLineWebhookServiceReplyError tests that reply failures are returned
func TestLineWebhookServiceReplyError(t *testing.T) {
	service, replier := newTestLineWebhookService(t)
	replier.Err = errors.New("invalid reply token")

	err := service.HandleWebhook(context.Background(), domain.LineWebhookRequest{
		Events: []domain.LineEvent{commandEvent(domain.LineCommandHelp)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reply token")
}
