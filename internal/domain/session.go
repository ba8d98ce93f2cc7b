package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskType is the guided task a session was recorded for
type TaskType string

const (
	// TaskTypePictureDescription - caregiver shows an image and the patient describes it
	TaskTypePictureDescription TaskType = "picture-description"
	// TaskTypeSentenceReading - patient reads a list of sentences aloud
	TaskTypeSentenceReading TaskType = "sentence-reading"
)

// Valid reports whether t is one of the known task types
func (t TaskType) Valid() bool {
	return t == TaskTypePictureDescription || t == TaskTypeSentenceReading
}

// Label is the Indonesian display name of the task
func (t TaskType) Label() string {
	switch t {
	case TaskTypePictureDescription:
		return "Deskripsi gambar"
	case TaskTypeSentenceReading:
		return "Membaca kalimat"
	}
	return string(t)
}

// RiskBand is the categorical summary of a cognitive score level
type RiskBand string

const (
	// RiskBandGood - healthy range
	RiskBandGood RiskBand = "Good"
	// RiskBandMedium - moderate risk
	RiskBandMedium RiskBand = "Medium"
	// RiskBandPoor - high risk
	RiskBandPoor RiskBand = "Poor"
)

// NormalizeRiskBand maps the labels emitted by the analyzer onto the canonical bands.
// Unknown non-empty labels are passed through unchanged.
func NormalizeRiskBand(label string) RiskBand {
	trimmed := strings.TrimSpace(label)
	switch strings.ToLower(trimmed) {
	case "":
		return ""
	case "good", "baik", "low", "rendah":
		return RiskBandGood
	case "medium", "sedang", "moderate":
		return RiskBandMedium
	case "poor", "buruk", "high", "tinggi":
		return RiskBandPoor
	default:
		return RiskBand(trimmed)
	}
}

// Metric names one of the three analyzer scores
type Metric string

const (
	// MetricSpeechFluency - speech fluency score
	MetricSpeechFluency Metric = "speech_fluency"
	// MetricLexicalScore - lexical richness score
	MetricLexicalScore Metric = "lexical_score"
	// MetricCoherenceScore - discourse coherence score
	MetricCoherenceScore Metric = "coherence_score"
)

// Metrics lists every metric in display order
var Metrics = []Metric{MetricSpeechFluency, MetricLexicalScore, MetricCoherenceScore}

// Valid reports whether m is a known metric
func (m Metric) Valid() bool {
	switch m {
	case MetricSpeechFluency, MetricLexicalScore, MetricCoherenceScore:
		return true
	}
	return false
}

// Label is the Indonesian display name of the metric
func (m Metric) Label() string {
	switch m {
	case MetricSpeechFluency:
		return "Kelancaran bicara"
	case MetricLexicalScore:
		return "Skor leksikal"
	case MetricCoherenceScore:
		return "Koherensi"
	}
	return string(m)
}

// Scores holds the three analyzer metrics, nominally in [0,100]
type Scores struct {
	SpeechFluency  float64 `json:"speech_fluency"`
	LexicalScore   float64 `json:"lexical_score"`
	CoherenceScore float64 `json:"coherence_score"`
}

// Value returns the score for the given metric
func (s Scores) Value(metric Metric) float64 {
	switch metric {
	case MetricSpeechFluency:
		return s.SpeechFluency
	case MetricLexicalScore:
		return s.LexicalScore
	case MetricCoherenceScore:
		return s.CoherenceScore
	}
	return 0
}

// Mean returns the unrounded mean of the three scores
func (s Scores) Mean() float64 {
	return (s.SpeechFluency + s.LexicalScore + s.CoherenceScore) / 3
}

// Session is one completed cognitive assessment. Once appended to a store it is never mutated.
type Session struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	TaskType  TaskType        `json:"taskType"`
	Caregiver string          `json:"caregiver"`
	Patient   string          `json:"patient"`
	Scores    Scores          `json:"scores"`
	RiskBand  RiskBand        `json:"risk_band"`
	Summary   string          `json:"summary"`
	Technical json.RawMessage `json:"technical,omitempty"`
}

// NewSession builds the session for a successful analysis of the given task
func NewSession(task TaskContext, result AnalysisResult, now time.Time) Session {
	scores := result.Scores()
	band := NormalizeRiskBand(result.RiskBand)
	if band == "" {
		band = RiskBandFor(scores.Mean())
	}
	return Session{
		ID:        uuid.NewString(),
		Date:      now.UTC().Truncate(time.Millisecond),
		TaskType:  task.TaskType,
		Caregiver: task.Caregiver,
		Patient:   task.Patient,
		Scores:    scores,
		RiskBand:  band,
		Summary:   result.Summary,
		Technical: cloneRaw(result.Technical),
	}
}

// Clone returns a deep copy so stores can hand out sessions without sharing the technical payload
func (s Session) Clone() Session {
	s.Technical = cloneRaw(s.Technical)
	return s
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
