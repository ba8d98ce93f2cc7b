package application

import (
	"context"
	"fmt"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/internal/ports/output"

	"github.com/sirupsen/logrus"
)

var _ input.LineWebhookService = (*LineWebhookService)(nil)

const lineHelpText = "Perintah yang tersedia:\n" +
	"/ringkasan - Ringkasan skor semua sesi\n" +
	"/terakhir - Hasil sesi terakhir\n" +
	"/id - ID LINE untuk menerima notifikasi\n" +
	"/help - Tampilkan pesan ini"

// LineWebhookService struct - Application service implementing LINE webhook use cases
type LineWebhookService struct {
	replier  output.LineReplier
	sessions output.SessionStore
	location *time.Location
}

// NewLineWebhookService func - Creates new LINE webhook service
func NewLineWebhookService(replier output.LineReplier, sessions output.SessionStore, location *time.Location) *LineWebhookService {
	if location == nil {
		location = time.UTC
	}
	return &LineWebhookService{
		replier:  replier,
		sessions: sessions,
		location: location,
	}
}

// HandleWebhook func - Use case: answer follows and chat commands from LINE
func (s *LineWebhookService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received LINE %s: chat=%s command=%s", event.Kind, event.ChatID, event.Command)
		if event.ReplyToken == "" {
			continue
		}

		var replies []string
		switch event.Kind {
		case domain.LineEventFollow:
			replies = []string{welcomeText(event.ChatID), lineHelpText}
		case domain.LineEventCommand:
			replies = []string{s.commandReply(ctx, event)}
		default:
			logrus.Infof("Unhandled LINE event kind: %s", event.Kind)
			continue
		}

		if err := s.replier.ReplyText(ctx, event.ReplyToken, replies...); err != nil {
			logrus.Errorf("Failed to answer LINE %s: %v", event.Kind, err)
			return fmt.Errorf("failed to send reply: %w", err)
		}
	}
	return nil
}

// commandReply - Maps a chat command to its reply text
func (s *LineWebhookService) commandReply(ctx context.Context, event domain.LineEvent) string {
	switch event.Command {
	case domain.LineCommandSummary:
		return domain.DashboardText(domain.BuildDashboard(s.sessions.List(ctx), s.location), s.location)

	case domain.LineCommandLatest:
		sessions := s.sessions.List(ctx)
		if len(sessions) == 0 {
			return "Belum ada sesi yang tercatat."
		}
		return domain.SessionAlertText(sessions[len(sessions)-1], s.location)

	case domain.LineCommandChatID:
		return fmt.Sprintf("ID LINE untuk notifikasi: %s", event.ChatID)

	default:
		return lineHelpText
	}
}

// welcomeText greets a new follower with the ID to configure as notification recipient
func welcomeText(chatID string) string {
	return "Selamat datang di Claritas!\n" +
		"Hasil setiap sesi asesmen bisa dikirim ke obrolan ini.\n\n" +
		fmt.Sprintf("ID LINE Anda: %s", chatID)
}
