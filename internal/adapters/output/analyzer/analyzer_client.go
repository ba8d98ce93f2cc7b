package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"claritas/configs"
	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var _ output.Analyzer = (*AnalyzerClientAdapter)(nil)

const (
	analyzePath = "/analyze-audio"
	fileField   = "file"
	emailHeader = "X-User-Email"

	// maxErrorBody bounds how much of a failed response is read into the message
	maxErrorBody = 64 << 10
)

// AnalyzerClientAdapter struct - Output adapter for the speech analysis endpoint
type AnalyzerClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewAnalyzerClientAdapter func - Creates new analyzer client adapter
func NewAnalyzerClientAdapter(config configs.Analyzer) *AnalyzerClientAdapter {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logrus.Infof("Analyzer client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return &AnalyzerClientAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// Analyze posts the recording once as multipart form data. There are no retries:
// the capture workflow owns the retry loop.
func (a *AnalyzerClientAdapter) Analyze(ctx context.Context, request domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	body, contentType, err := encodePayload(request.Payload)
	if err != nil {
		return nil, &domain.AnalysisError{Message: fmt.Sprintf("failed to encode recording: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+analyzePath, body)
	if err != nil {
		return nil, &domain.AnalysisError{Message: fmt.Sprintf("failed to create analysis request: %v", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if request.CaregiverEmail != "" {
		req.Header.Set(emailHeader, request.CaregiverEmail)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		logrus.Errorf("Analyzer request failed: %v", err)
		return nil, &domain.AnalysisError{Message: fmt.Sprintf("Network Error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := errorMessage(resp.StatusCode, raw)
		logrus.Warnf("Analyzer rejected recording: %s", message)
		return nil, &domain.AnalysisError{StatusCode: resp.StatusCode, Message: message}
	}

	result, err := decodeResult(resp.Body)
	if err != nil {
		return nil, &domain.AnalysisError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	logrus.Infof("Analyzer scored recording: fluency=%.1f lexical=%.1f coherence=%.1f risk=%s",
		result.SpeechFluency, result.LexicalScore, result.CoherenceScore, result.RiskBand)
	return result, nil
}

func encodePayload(payload domain.AudioPayload) (io.Reader, string, error) {
	mimeType := payload.MimeType
	if mimeType == "" {
		mimeType = mimetype.Detect(payload.Data).String()
		if !strings.HasPrefix(mimeType, "audio/") && !strings.HasPrefix(mimeType, "video/") {
			mimeType = domain.DefaultAudioMimeType
		}
	}
	filename := payload.Filename
	if filename == "" {
		filename = domain.RecordingFilename(mimeType)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// errorMessage prefers the server's detail field, then the JSON body, then the raw text
func errorMessage(status int, raw []byte) string {
	message := fmt.Sprintf("API Error (%d)", status)
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return message
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err == nil {
		if detail, ok := body["detail"]; ok && string(detail) != "null" {
			var detailText string
			if err := json.Unmarshal(detail, &detailText); err == nil {
				if detailText != "" {
					return message + ": " + detailText
				}
			} else {
				return message + ": " + string(detail)
			}
		}
		compact := new(bytes.Buffer)
		if err := json.Compact(compact, raw); err == nil {
			return message + ": " + compact.String()
		}
	}
	return message + ": " + text
}

// analysisBody mirrors the analyzer response with pointer scores so missing fields are detected
type analysisBody struct {
	SpeechFluency  *float64        `json:"speech_fluency"`
	LexicalScore   *float64        `json:"lexical_score"`
	CoherenceScore *float64        `json:"coherence_score"`
	RiskBand       string          `json:"risk_band"`
	Summary        string          `json:"summary"`
	Technical      json.RawMessage `json:"technical"`
}

func decodeResult(r io.Reader) (*domain.AnalysisResult, error) {
	var body analysisBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid analyzer response: %v", err)
	}
	if body.SpeechFluency == nil || body.LexicalScore == nil || body.CoherenceScore == nil {
		return nil, fmt.Errorf("invalid analyzer response: missing scores")
	}
	result := &domain.AnalysisResult{
		SpeechFluency:  *body.SpeechFluency,
		LexicalScore:   *body.LexicalScore,
		CoherenceScore: *body.CoherenceScore,
		RiskBand:       body.RiskBand,
		Summary:        body.Summary,
	}
	if len(body.Technical) > 0 && string(body.Technical) != "null" {
		result.Technical = body.Technical
	}
	return result, nil
}
