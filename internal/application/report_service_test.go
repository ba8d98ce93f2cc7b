package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"claritas/internal/adapters/output/memory"
	"claritas/internal/domain"
)

// TestReportServiceNoSessions tests that an empty history cannot be reported on
func TestReportServiceNoSessions(t *testing.T) {
	llm := &MockLMStudioClient{}
	service := NewReportService(memory.NewMemorySessionStore(), llm, time.UTC, ReportOptions{})

	_, err := service.Generate(context.Background())
	if !errors.Is(err, domain.ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
	if llm.LastChatRequest != nil {
		t.Error("expected no LLM call without sessions")
	}
}

// TestReportServiceGenerate tests the prompt and the parsed insights
func TestReportServiceGenerate(t *testing.T) {
	store := memory.NewMemorySessionStore()
	first := newSession("a", time.Date(2025, time.January, 4, 3, 0, 0, 0, time.UTC), domain.TaskTypePictureDescription, 70, 70, 65)
	second := newSession("b", time.Date(2025, time.January, 6, 3, 0, 0, 0, time.UTC), domain.TaskTypePictureDescription, 77, 72, 68)
	second.Summary = "Menyebut air dan kue."
	seedSessions(t, store, first, second)

	llm := &MockLMStudioClient{
		ChatCompletionFunc: func(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error) {
			return &domain.ChatCompletionResponse{
				Model: "qwen2.5-7b",
				Content: "Berikut laporannya:\n```json\n" +
					`{"overall":"Kondisi membaik.","fluency":"Tempo stabil.","lexical":"Kosakata cukup.","coherence":"Cerita runtut."}` +
					"\n```",
			}, nil
		},
	}
	generatedAt := time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC)
	service := NewReportService(store, llm, time.UTC, ReportOptions{
		Temperature: 0.3,
		Now:         func() time.Time { return generatedAt },
	})

	report, err := service.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.Model != "qwen2.5-7b" || report.Patient != "Budi" || !report.GeneratedAt.Equal(generatedAt) {
		t.Errorf("unexpected report header %+v", report)
	}
	if report.Insights == nil || report.Insights.Overall != "Kondisi membaik." || report.Insights.Coherence != "Cerita runtut." {
		t.Errorf("expected parsed insights, got %+v", report.Insights)
	}
	if report.Dashboard.SessionCount != 2 {
		t.Errorf("expected dashboard over 2 sessions, got %d", report.Dashboard.SessionCount)
	}

	request := llm.LastChatRequest
	if request == nil || len(request.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %+v", request)
	}
	if request.Messages[0].Content != defaultReportSystemPrompt {
		t.Errorf("expected default system prompt, got %q", request.Messages[0].Content)
	}
	if request.Temperature == nil || *request.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", request.Temperature)
	}
	prompt := request.Messages[1].Content
	for _, want := range []string{
		"Overall cognitive score: 70/100 (Good)",
		"Speech Fluency Score: 77.00 (trend up, change +10%)",
		"Menyebut air dan kue.",
		"kitchen scene",
		"in Indonesian",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

// TestReportServiceLLMFailure tests error wrapping
func TestReportServiceLLMFailure(t *testing.T) {
	store := memory.NewMemorySessionStore()
	seedSessions(t, store, newSession("a", time.Now(), domain.TaskTypeSentenceReading, 50, 50, 50))
	llm := &MockLMStudioClient{
		ChatCompletionFunc: func(context.Context, domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error) {
			return nil, errors.New("decode failure")
		},
	}
	service := NewReportService(store, llm, nil, ReportOptions{})

	_, err := service.Generate(context.Background())
	if !errors.Is(err, domain.ErrLMStudioUnavailable) {
		t.Errorf("expected ErrLMStudioUnavailable, got %v", err)
	}
}

// TestParseReportInsights tests tolerant JSON extraction
func TestParseReportInsights(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain json", `{"overall":"A","fluency":"B","lexical":"C","coherence":"D"}`, "A"},
		{"wrapped", "Hasil:\n{\"overall\":\"X\"}\nSelesai.", "X"},
		{"prose only", "Pasien stabil.", ""},
		{"broken json", "{overall: A}", ""},
		{"empty object", "{}", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReportInsights(tt.content)
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected nil insights, got %+v", got)
				}
				return
			}
			if got == nil || got.Overall != tt.want {
				t.Errorf("expected overall %q, got %+v", tt.want, got)
			}
		})
	}
}
