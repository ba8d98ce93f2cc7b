package domain

import (
	"encoding/json"
	"time"
)

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// AnalysisRequest struct - audio handed to the external analyzer
	AnalysisRequest struct {
		Payload        AudioPayload
		CaregiverEmail string
	}

	// AnalysisResult struct - analyzer response body
	AnalysisResult struct {
		SpeechFluency  float64         `json:"speech_fluency"`
		LexicalScore   float64         `json:"lexical_score"`
		CoherenceScore float64         `json:"coherence_score"`
		RiskBand       string          `json:"risk_band,omitempty"`
		Summary        string          `json:"summary"`
		Technical      json.RawMessage `json:"technical,omitempty"`
	}

	// SessionFilter struct - optional narrowing of the session list
	SessionFilter struct {
		From     *time.Time
		To       *time.Time
		TaskType *TaskType
	}

	// MetricSummary struct - trend view of a single metric
	MetricSummary struct {
		Metric        Metric  `json:"metric"`
		Latest        float64 `json:"latest"`
		Trend         Trend   `json:"trend"`
		PercentChange *int    `json:"percent_change"`
	}

	// Dashboard struct - derived metrics over the whole session history
	Dashboard struct {
		SessionCount    int             `json:"session_count"`
		OverallScore    int             `json:"overall_score"`
		OverallRiskBand RiskBand        `json:"overall_risk_band,omitempty"`
		LatestScores    Scores          `json:"latest_scores"`
		LatestRiskBand  RiskBand        `json:"latest_risk_band,omitempty"`
		LastSessionAt   *time.Time      `json:"last_session_at,omitempty"`
		Metrics         []MetricSummary `json:"metrics"`
		Series          []TrendPoint    `json:"series"`
	}

	// ReportInsights struct - one clinical sentence per aspect, as requested from the model
	ReportInsights struct {
		Overall   string `json:"overall"`
		Fluency   string `json:"fluency"`
		Lexical   string `json:"lexical"`
		Coherence string `json:"coherence"`
	}

	// ClinicalReport struct - LLM narrative over the dashboard
	ClinicalReport struct {
		GeneratedAt time.Time       `json:"generated_at"`
		Model       string          `json:"model"`
		Patient     string          `json:"patient,omitempty"`
		Narrative   string          `json:"narrative"`
		Insights    *ReportInsights `json:"insights,omitempty"`
		Dashboard   Dashboard       `json:"dashboard"`
	}
)

// Scores returns the three metrics of the analysis
func (r AnalysisResult) Scores() Scores {
	return Scores{
		SpeechFluency:  r.SpeechFluency,
		LexicalScore:   r.LexicalScore,
		CoherenceScore: r.CoherenceScore,
	}
}

// Matches reports whether the session passes the filter
func (f SessionFilter) Matches(s Session) bool {
	if f.From != nil && s.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && s.Date.After(*f.To) {
		return false
	}
	if f.TaskType != nil && s.TaskType != *f.TaskType {
		return false
	}
	return true
}
