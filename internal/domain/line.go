package domain

import (
	"fmt"
	"strings"
	"time"
)

// LineEventKind is what a caregiver did in the chat
type LineEventKind string

const (
	// LineEventFollow - the caregiver added the bot
	LineEventFollow LineEventKind = "follow"
	// LineEventCommand - the caregiver sent a text command
	LineEventCommand LineEventKind = "command"
)

// LineCommand is a chat command the bot answers
type LineCommand string

const (
	LineCommandSummary LineCommand = "ringkasan"
	LineCommandLatest  LineCommand = "terakhir"
	LineCommandChatID  LineCommand = "id"
	LineCommandHelp    LineCommand = "help"
)

// ParseLineCommand reads the first word of a chat message, with or without a leading slash.
// Unknown text asks for help.
func ParseLineCommand(text string) LineCommand {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return LineCommandHelp
	}
	switch strings.TrimPrefix(words[0], "/") {
	case "ringkasan", "status":
		return LineCommandSummary
	case "terakhir", "last":
		return LineCommandLatest
	case "id":
		return LineCommandChatID
	default:
		return LineCommandHelp
	}
}

// LineWebhookRequest is one webhook delivery
type LineWebhookRequest struct {
	Events []LineEvent
}

// LineEvent is a follow or a command coming from one chat. ChatID is the
// address pushes to that chat must use: the group or room when there is one,
// else the user.
type LineEvent struct {
	Kind       LineEventKind
	ChatID     string
	ReplyToken string
	Command    LineCommand
}

// SessionAlertText renders a session as a chat message
func SessionAlertText(session Session, location *time.Location) string {
	if location == nil {
		location = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sesi baru Claritas untuk %s\n", session.Patient)
	fmt.Fprintf(&b, "Tanggal: %s\n", session.Date.In(location).Format("2 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Tugas: %s\n", session.TaskType.Label())
	fmt.Fprintf(&b, "Kelancaran bicara: %d\n", RoundHalfUp(session.Scores.SpeechFluency))
	fmt.Fprintf(&b, "Skor leksikal: %d\n", RoundHalfUp(session.Scores.LexicalScore))
	fmt.Fprintf(&b, "Koherensi: %d\n", RoundHalfUp(session.Scores.CoherenceScore))
	fmt.Fprintf(&b, "Risiko: %s", session.RiskBand)
	if session.Caregiver != "" {
		fmt.Fprintf(&b, "\nPendamping: %s", session.Caregiver)
	}
	if summary := strings.TrimSpace(session.Summary); summary != "" {
		fmt.Fprintf(&b, "\n\n%s", summary)
	}
	return b.String()
}

// DashboardText renders the dashboard headline numbers as a chat message
func DashboardText(dashboard Dashboard, location *time.Location) string {
	if dashboard.SessionCount == 0 {
		return "Belum ada sesi yang tercatat."
	}
	if location == nil {
		location = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ringkasan Claritas (%d sesi)\n", dashboard.SessionCount)
	fmt.Fprintf(&b, "Skor keseluruhan: %d (%s)\n", dashboard.OverallScore, dashboard.OverallRiskBand)
	if dashboard.LastSessionAt != nil {
		fmt.Fprintf(&b, "Sesi terakhir: %s\n", dashboard.LastSessionAt.In(location).Format("2 Jan 2006 15:04"))
	}
	for _, metric := range dashboard.Metrics {
		change := "-"
		if metric.PercentChange != nil {
			change = fmt.Sprintf("%+d%%", *metric.PercentChange)
		}
		fmt.Fprintf(&b, "%s: %d %s (%s)\n", metric.Metric.Label(), RoundHalfUp(metric.Latest), metric.Trend.Arrow(), change)
	}
	return strings.TrimRight(b.String(), "\n")
}
