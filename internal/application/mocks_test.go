package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"claritas/internal/domain"
	"claritas/internal/ports/output"
)

// Mock implementations for testing

// MockCaptureHandle implements output.CaptureHandle with preloaded chunks
type MockCaptureHandle struct {
	chunks    chan []byte
	mimeType  string
	once      sync.Once
	released  atomic.Bool
	onRelease func()
}

func newMockCaptureHandle(mimeType string, chunks ...[]byte) *MockCaptureHandle {
	h := &MockCaptureHandle{
		chunks:   make(chan []byte, len(chunks)+1),
		mimeType: mimeType,
	}
	for _, chunk := range chunks {
		h.chunks <- chunk
	}
	return h
}

func (h *MockCaptureHandle) Chunks() <-chan []byte { return h.chunks }

func (h *MockCaptureHandle) MimeType() string { return h.mimeType }

func (h *MockCaptureHandle) Release() error {
	h.once.Do(func() {
		h.released.Store(true)
		close(h.chunks)
		if h.onRelease != nil {
			h.onRelease()
		}
	})
	return nil
}

// MockMicrophone implements output.Microphone
type MockMicrophone struct {
	mu sync.Mutex

	// Err is returned by Acquire when set
	Err error
	// Chunks are emitted by every acquired handle
	Chunks   [][]byte
	MimeType string
	// OnRelease runs once when a handle is released
	OnRelease func()

	// Captured values for assertions
	Handles []*MockCaptureHandle
}

func (m *MockMicrophone) Acquire(ctx context.Context) (output.CaptureHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	handle := newMockCaptureHandle(m.MimeType, m.Chunks...)
	handle.onRelease = m.OnRelease
	m.Handles = append(m.Handles, handle)
	return handle, nil
}

func (m *MockMicrophone) Acquisitions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Handles)
}

func (m *MockMicrophone) AllReleased() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.Handles {
		if !h.released.Load() {
			return false
		}
	}
	return true
}

// MockAnalyzer implements output.Analyzer
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, request domain.AnalysisRequest) (*domain.AnalysisResult, error)

	mu       sync.Mutex
	Requests []domain.AnalysisRequest
}

func (m *MockAnalyzer) Analyze(ctx context.Context, request domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, request)
	m.mu.Unlock()
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, request)
	}
	return &domain.AnalysisResult{
		SpeechFluency:  72,
		LexicalScore:   68,
		CoherenceScore: 75,
		RiskBand:       "Baik",
		Summary:        "Bicara lancar.",
	}, nil
}

func (m *MockAnalyzer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockNotifier implements output.Notifier
type MockNotifier struct {
	Err error

	mu       sync.Mutex
	Sessions []domain.Session
}

func (m *MockNotifier) NotifySession(ctx context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions = append(m.Sessions, session)
	return m.Err
}

// FailingSessionStore implements output.SessionStore and refuses every write
type FailingSessionStore struct{}

func (FailingSessionStore) List(context.Context) []domain.Session { return []domain.Session{} }

func (FailingSessionStore) Append(context.Context, domain.Session) error {
	return errors.Join(domain.ErrStorage, errors.New("disk full"))
}

func (FailingSessionStore) GetByID(context.Context, string) (domain.Session, bool) {
	return domain.Session{}, false
}

// MockLMStudioClient implements output.LMStudioClient for testing
type MockLMStudioClient struct {
	ChatCompletionFunc func(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error)
	ListModelsFunc     func(ctx context.Context) ([]domain.ModelInfo, error)

	// Captured values for assertions
	LastChatRequest *domain.ChatCompletionRequest
}

func (m *MockLMStudioClient) ChatCompletion(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error) {
	m.LastChatRequest = &request
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, request)
	}
	return &domain.ChatCompletionResponse{Content: "ok", Model: "test-model"}, nil
}

func (m *MockLMStudioClient) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return []domain.ModelInfo{{ID: "test-model"}}, nil
}

// MockLineReplier implements output.LineReplier
type MockLineReplier struct {
	Err error

	// Captured values for assertions
	Tokens  []string
	Replies [][]string
}

func (m *MockLineReplier) ReplyText(ctx context.Context, replyToken string, texts ...string) error {
	m.Tokens = append(m.Tokens, replyToken)
	m.Replies = append(m.Replies, texts)
	return m.Err
}
