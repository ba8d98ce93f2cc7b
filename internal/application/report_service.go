package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/internal/ports/output"

	"github.com/sirupsen/logrus"
)

var _ input.ReportService = (*ReportService)(nil)

const (
	defaultReportSystemPrompt = "You are an expert neurologist reviewing speech-based cognitive screening results " +
		"of an elderly patient monitored at home by a caregiver. Be factual, cautious and concise. " +
		"Never state a diagnosis; describe observations and suggest follow-up when scores decline."

	// cookieTheftDescription is the reference content of the picture-description image
	cookieTheftDescription = "The image depicts a chaotic kitchen scene where a woman stands oblivious to an " +
		"overflowing sink while two children behind her attempt to steal cookies, " +
		"with the boy perilously balanced on a tipping stool."
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ReportOptions struct - tunables of the clinical report
type ReportOptions struct {
	SystemPrompt string
	Temperature  float64
	// Language is "id" for Indonesian or "en" for English narratives
	Language string
	Now      func() time.Time
}

// ReportService struct - Application service writing the clinical report narrative with an LLM
type ReportService struct {
	sessions output.SessionStore
	llm      output.LMStudioClient
	location *time.Location
	opts     ReportOptions
}

// NewReportService func - Creates new report service
func NewReportService(sessions output.SessionStore, llm output.LMStudioClient, location *time.Location, opts ReportOptions) *ReportService {
	if location == nil {
		location = time.UTC
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = defaultReportSystemPrompt
	}
	if opts.Language == "" {
		opts.Language = "id"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReportService{
		sessions: sessions,
		llm:      llm,
		location: location,
		opts:     opts,
	}
}

// Generate func - Use case: build the clinical report over the whole history
func (s *ReportService) Generate(ctx context.Context) (*domain.ClinicalReport, error) {
	sessions := s.sessions.List(ctx)
	if len(sessions) == 0 {
		return nil, domain.ErrNoSessions
	}
	dashboard := domain.BuildDashboard(sessions, s.location)
	latest := sessions[len(sessions)-1]

	temperature := s.opts.Temperature
	resp, err := s.llm.ChatCompletion(ctx, domain.ChatCompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.ChatMessageRoleSystem, Content: s.opts.SystemPrompt},
			{Role: domain.ChatMessageRoleUser, Content: BuildReportPrompt(dashboard, latest, s.location, s.opts.Language)},
		},
		Temperature: &temperature,
	})
	if err != nil {
		logrus.Errorf("Clinical report generation failed: %v", err)
		if !errors.Is(err, domain.ErrLMStudioUnavailable) && !errors.Is(err, domain.ErrInvalidRequest) {
			err = fmt.Errorf("%w: %v", domain.ErrLMStudioUnavailable, err)
		}
		return nil, err
	}

	report := &domain.ClinicalReport{
		GeneratedAt: s.opts.Now().UTC(),
		Model:       resp.Model,
		Patient:     latest.Patient,
		Narrative:   strings.TrimSpace(resp.Content),
		Insights:    ParseReportInsights(resp.Content),
		Dashboard:   dashboard,
	}
	if report.Insights == nil {
		logrus.Warn("Clinical report narrative is not structured JSON, returning it as plain text")
	}
	return report, nil
}

// BuildReportPrompt renders the dashboard numbers and the latest session into the user prompt
func BuildReportPrompt(dashboard domain.Dashboard, latest domain.Session, location *time.Location, language string) string {
	var b strings.Builder

	b.WriteString("**Patient Data:**\n")
	fmt.Fprintf(&b, "- Patient: %s\n", latest.Patient)
	fmt.Fprintf(&b, "- Sessions recorded: %d (latest on %s)\n", dashboard.SessionCount, latest.Date.In(location).Format("2 Jan 2006"))
	fmt.Fprintf(&b, "- Overall cognitive score: %d/100 (%s)\n", dashboard.OverallScore, dashboard.OverallRiskBand)
	fmt.Fprintf(&b, "- Latest task: %s\n", latest.TaskType)
	if latest.TaskType == domain.TaskTypePictureDescription {
		fmt.Fprintf(&b, "- Image ground truth: %q\n", cookieTheftDescription)
	}
	if summary := strings.TrimSpace(latest.Summary); summary != "" {
		fmt.Fprintf(&b, "- Analyzer summary: %q\n", summary)
	}

	b.WriteString("\n**Latest Metrics:**\n")
	for _, metric := range dashboard.Metrics {
		change := "n/a"
		if metric.PercentChange != nil {
			change = fmt.Sprintf("%+d%%", *metric.PercentChange)
		}
		fmt.Fprintf(&b, "- %s: %.2f (trend %s, change %s)\n", metricLabel(metric.Metric), metric.Latest, metric.Trend, change)
	}
	fmt.Fprintf(&b, "- Latest risk band: %s\n", latest.RiskBand)

	if len(dashboard.Series) > 1 {
		b.WriteString("\n**History (overall per session):**\n")
		for _, point := range dashboard.Series {
			fmt.Fprintf(&b, "- %s: %.1f\n", point.Label, point.Overall)
		}
	}

	fmt.Fprintf(&b, "\n**Task:**\nGenerate a JSON response containing exactly 4 clinical insight sentences in %s.\n", languageName(language))
	b.WriteString("1. overall: a 1-sentence summary of the patient's current condition and direction.\n")
	b.WriteString("2. fluency: tempo and pauses based on the speech fluency score.\n")
	b.WriteString("3. lexical: vocabulary usage and word choice.\n")
	b.WriteString("4. coherence: whether the patient's speech makes logical sense.\n")
	b.WriteString("\n**Required JSON Output Format:**\n")
	b.WriteString(`{"overall": "...", "fluency": "...", "lexical": "...", "coherence": "..."}`)
	return b.String()
}

// ParseReportInsights extracts the insight object from the model output, tolerating
// surrounding prose or code fences. Returns nil when no usable object is found.
func ParseReportInsights(content string) *domain.ReportInsights {
	var insights domain.ReportInsights
	if err := json.Unmarshal([]byte(content), &insights); err != nil {
		match := jsonObjectPattern.FindString(content)
		if match == "" {
			return nil
		}
		insights = domain.ReportInsights{}
		if err := json.Unmarshal([]byte(match), &insights); err != nil {
			return nil
		}
	}
	if insights.Overall == "" && insights.Fluency == "" && insights.Lexical == "" && insights.Coherence == "" {
		return nil
	}
	return &insights
}

func metricLabel(metric domain.Metric) string {
	switch metric {
	case domain.MetricSpeechFluency:
		return "Speech Fluency Score"
	case domain.MetricLexicalScore:
		return "Lexical Score"
	case domain.MetricCoherenceScore:
		return "Coherence Score"
	}
	return string(metric)
}

func languageName(language string) string {
	if strings.EqualFold(language, "en") {
		return "English"
	}
	return "Indonesian"
}
