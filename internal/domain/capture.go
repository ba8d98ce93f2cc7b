package domain

import "strings"

// CaptureState is a state of the audio capture workflow
type CaptureState string

const (
	// CaptureStateIdle - no capture in progress
	CaptureStateIdle CaptureState = "idle"
	// CaptureStateRecording - microphone held, chunks being buffered
	CaptureStateRecording CaptureState = "recording"
	// CaptureStateStopping - microphone released, payload being finalized
	CaptureStateStopping CaptureState = "stopping"
	// CaptureStateSubmitting - payload in flight to the analyzer
	CaptureStateSubmitting CaptureState = "submitting"
	// CaptureStateSucceeded - session appended
	CaptureStateSucceeded CaptureState = "succeeded"
	// CaptureStateFailed - analysis failed, retry pending
	CaptureStateFailed CaptureState = "failed"
)

// DefaultSentence is read when a sentence-reading task is started without sentences
const DefaultSentence = "Hari ini cerah sekali"

// TaskContext is the in-progress task state kept across retries
type TaskContext struct {
	TaskType       TaskType `json:"taskType" validate:"required,oneof=picture-description sentence-reading"`
	Patient        string   `json:"patient" validate:"required,max=100"`
	Caregiver      string   `json:"caregiver" validate:"max=200"`
	CaregiverEmail string   `json:"caregiverEmail,omitempty" validate:"omitempty,email"`
	ImageID        string   `json:"imageId,omitempty" validate:"max=200"`
	Sentences      []string `json:"sentences,omitempty" validate:"dive,max=500"`
	SentenceIndex  int      `json:"sentenceIndex" validate:"gte=0"`
}

// NormalizeSentences trims the sentence list, drops blank lines and falls back to
// DefaultSentence for a sentence-reading task without any
func (t *TaskContext) NormalizeSentences() {
	sentences := make([]string, 0, len(t.Sentences))
	for _, sentence := range t.Sentences {
		if trimmed := strings.TrimSpace(sentence); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	if t.TaskType == TaskTypeSentenceReading && len(sentences) == 0 {
		sentences = append(sentences, DefaultSentence)
	}
	if len(sentences) == 0 {
		sentences = nil
	}
	t.Sentences = sentences
}

// Clone returns a copy that does not share the sentence slice
func (t TaskContext) Clone() TaskContext {
	if t.Sentences != nil {
		sentences := make([]string, len(t.Sentences))
		copy(sentences, t.Sentences)
		t.Sentences = sentences
	}
	return t
}

// CurrentSentence returns the sentence being read, or "" for other tasks
func (t TaskContext) CurrentSentence() string {
	if t.SentenceIndex < 0 || t.SentenceIndex >= len(t.Sentences) {
		return ""
	}
	return t.Sentences[t.SentenceIndex]
}

// HasNextSentence reports whether another sentence follows the current one
func (t TaskContext) HasNextSentence() bool {
	return t.SentenceIndex < len(t.Sentences)-1
}

// AudioPayload is one finalized recording
type AudioPayload struct {
	Data     []byte
	MimeType string
	Filename string
}

// Size returns the payload length in bytes
func (p AudioPayload) Size() int {
	return len(p.Data)
}

// CaptureSnapshot is a point-in-time view of the workflow for the UI
type CaptureSnapshot struct {
	State         CaptureState `json:"state"`
	Task          *TaskContext `json:"task,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
	BufferedBytes int          `json:"buffered_bytes"`
	RetryPending  bool         `json:"retry_pending"`
	LastSessionID string       `json:"last_session_id,omitempty"`
}

// DefaultAudioMimeType is assumed when a recording carries no content type
const DefaultAudioMimeType = "audio/webm"

// RecordingFilename names the uploaded recording after its container format
func RecordingFilename(mimeType string) string {
	if strings.Contains(mimeType, "mp4") {
		return "recording.mp4"
	}
	return "recording.webm"
}
