package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"claritas/configs"
	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/sirupsen/logrus"
)

var _ output.LMStudioClient = (*LMStudioClientAdapter)(nil)

// retryPolicy holds the exponential backoff settings
type retryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   int
}

var defaultRetryPolicy = retryPolicy{
	maxAttempts:  30,
	initialDelay: 1 * time.Second,
	maxDelay:     30 * time.Second,
	multiplier:   2,
}

// LMStudioClientAdapter struct - Output adapter for LM Studio's OpenAI-compatible API,
// used to write the clinical report narrative
type LMStudioClientAdapter struct {
	httpClient  *http.Client
	baseURL     string
	configModel string
	timeout     time.Duration
	retry       retryPolicy

	cachedModel string
	modelMu     sync.RWMutex
}

// NewLMStudioClientAdapter func - Creates new LM Studio client adapter
func NewLMStudioClientAdapter(config configs.LMStudio) (*LMStudioClientAdapter, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:1234"
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
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logrus.Infof("LM Studio client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return &LMStudioClientAdapter{
		httpClient:  httpClient,
		baseURL:     baseURL,
		configModel: config.Model,
		timeout:     timeout,
		retry:       defaultRetryPolicy,
	}, nil
}

// retryWithBackoff executes newRequest until it succeeds, fails permanently or the attempts run out.
// A fresh request is built for every attempt so request bodies can be replayed.
func (a *LMStudioClientAdapter) retryWithBackoff(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	delay := a.retry.initialDelay

	for attempt := 1; attempt <= a.retry.maxAttempts; attempt++ {
		req, err := newRequest()
		if err != nil {
			return nil, err
		}
		resp, err := a.httpClient.Do(req)

		switch {
		case err != nil:
			if ctx.Err() != nil || !isTransientError(err, 0) {
				return nil, err
			}
			lastErr = err
			logrus.Warnf("LM Studio request attempt %d/%d failed with error: %v, retrying in %v", attempt, a.retry.maxAttempts, err, delay)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d - %s", domain.ErrInvalidRequest, resp.StatusCode, string(body))
		case isTransientError(nil, resp.StatusCode):
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, string(body))
			logrus.Warnf("LM Studio request attempt %d/%d failed with status %d, retrying in %v", attempt, a.retry.maxAttempts, resp.StatusCode, delay)
		default:
			return resp, nil
		}

		if attempt == a.retry.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= time.Duration(a.retry.multiplier)
		if delay > a.retry.maxDelay {
			delay = a.retry.maxDelay
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v after %d attempts", domain.ErrLMStudioUnavailable, lastErr, a.retry.maxAttempts)
	}
	return nil, fmt.Errorf("%w: max retries exceeded", domain.ErrLMStudioUnavailable)
}

// isTransientError determines if an error or status code is transient and should be retried
func isTransientError(err error, statusCode int) bool {
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	if statusCode >= 400 && statusCode < 500 {
		return false
	}
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"eof",
	} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

// ListModels queries the /v1/models endpoint to retrieve available models from LM Studio
func (a *LMStudioClientAdapter) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	url := fmt.Sprintf("%s/v1/models", a.baseURL)

	resp, err := a.retryWithBackoff(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	var modelsResp modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}

	models := make([]domain.ModelInfo, len(modelsResp.Data))
	for i, m := range modelsResp.Data {
		models[i] = domain.ModelInfo{
			ID:      m.ID,
			Object:  m.Object,
			OwnedBy: m.OwnedBy,
		}
	}

	logrus.Infof("Listed %d models from LM Studio", len(models))
	return models, nil
}

// getModel returns the configured model, or the first served model when none is configured
func (a *LMStudioClientAdapter) getModel(ctx context.Context) (string, error) {
	a.modelMu.RLock()
	if a.cachedModel != "" {
		model := a.cachedModel
		a.modelMu.RUnlock()
		return model, nil
	}
	a.modelMu.RUnlock()

	a.modelMu.Lock()
	defer a.modelMu.Unlock()

	if a.cachedModel != "" {
		return a.cachedModel, nil
	}

	if a.configModel != "" {
		a.cachedModel = a.configModel
		logrus.Infof("Using configured model: %s", a.cachedModel)
		return a.cachedModel, nil
	}

	models, err := a.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get models for selection: %w", err)
	}
	if len(models) == 0 {
		return "", fmt.Errorf("%w: no models available in LM Studio", domain.ErrLMStudioUnavailable)
	}

	a.cachedModel = models[0].ID
	logrus.Infof("Selected first available model: %s", a.cachedModel)
	return a.cachedModel, nil
}

// ChatCompletion sends a non-streaming chat completion request to LM Studio
func (a *LMStudioClientAdapter) ChatCompletion(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error) {
	model, err := a.getModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	if request.Model != nil && *request.Model != "" {
		model = *request.Model
	}

	reqBody := chatCompletionAPIRequest{
		Model:       model,
		Messages:    make([]chatMessageAPI, len(request.Messages)),
		Stream:      false,
		Temperature: request.Temperature,
	}
	for i, msg := range request.Messages {
		reqBody.Messages[i] = chatMessageAPI{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", a.baseURL)
	resp, err := a.retryWithBackoff(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send chat completion request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp chatCompletionAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse chat completion response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrLMStudioUnavailable)
	}

	response := &domain.ChatCompletionResponse{
		Content:          apiResp.Choices[0].Message.Content,
		Model:            apiResp.Model,
		PromptTokens:     apiResp.Usage.PromptTokens,
		CompletionTokens: apiResp.Usage.CompletionTokens,
		TotalTokens:      apiResp.Usage.TotalTokens,
	}
	if response.Model == "" {
		response.Model = model
	}

	logrus.Infof("Chat completion successful, model: %s, tokens: %d", response.Model, response.TotalTokens)
	return response, nil
}

// API request/response structures for LM Studio's OpenAI-compatible API

type chatMessageAPI struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionAPIRequest struct {
	Model       string           `json:"model"`
	Messages    []chatMessageAPI `json:"messages"`
	Stream      bool             `json:"stream"`
	Temperature *float64         `json:"temperature,omitempty"`
}

type chatChoiceAPI struct {
	Index        int            `json:"index"`
	Message      chatMessageAPI `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type usageAPI struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatCompletionAPIResponse struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Created int64           `json:"created"`
	Model   string          `json:"model"`
	Choices []chatChoiceAPI `json:"choices"`
	Usage   usageAPI        `json:"usage"`
}

// modelsResponse represents the response from the /v1/models endpoint
type modelsResponse struct {
	Object string `json:"object"`
	Data   []struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}
