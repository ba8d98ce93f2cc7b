package microphone

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var _ output.Microphone = (*StreamMicrophone)(nil)

const defaultChunkBuffer = 64

// StreamMicrophone struct - Output adapter for a remote microphone whose audio chunks
// are pushed by the browser over HTTP. Only one capture may hold it at a time.
type StreamMicrophone struct {
	mu         sync.Mutex
	held       *streamHandle
	closed     bool
	bufferSize int
}

// NewStreamMicrophone func - Creates a stream microphone buffering up to bufferSize chunks
func NewStreamMicrophone(bufferSize int) *StreamMicrophone {
	if bufferSize <= 0 {
		bufferSize = defaultChunkBuffer
	}
	return &StreamMicrophone{bufferSize: bufferSize}
}

// Acquire opens the stream for a new recording
func (m *StreamMicrophone) Acquire(ctx context.Context) (output.CaptureHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("%w: microphone closed", domain.ErrDeviceUnavailable)
	}
	if m.held != nil {
		return nil, fmt.Errorf("%w: microphone already in use", domain.ErrDeviceUnavailable)
	}

	handle := &streamHandle{
		owner:  m,
		chunks: make(chan []byte, m.bufferSize),
	}
	m.held = handle
	logrus.Debug("Stream microphone acquired")
	return handle, nil
}

// Push delivers one chunk of audio to the active recording. An empty mimeType is
// detected from the chunk content the first time it is needed.
func (m *StreamMicrophone) Push(ctx context.Context, data []byte, mimeType string) error {
	m.mu.Lock()
	handle := m.held
	m.mu.Unlock()

	if handle == nil {
		return fmt.Errorf("%w: no active recording", domain.ErrDeviceUnavailable)
	}
	return handle.push(ctx, data, mimeType)
}

// Active reports whether a recording currently holds the microphone
func (m *StreamMicrophone) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held != nil
}

// Close releases any active recording and refuses further acquisitions
func (m *StreamMicrophone) Close() error {
	m.mu.Lock()
	m.closed = true
	handle := m.held
	m.mu.Unlock()

	if handle != nil {
		return handle.Release()
	}
	return nil
}

func (m *StreamMicrophone) release(handle *streamHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == handle {
		m.held = nil
	}
}

// streamHandle is one acquisition of the stream microphone
type streamHandle struct {
	owner    *StreamMicrophone
	mu       sync.Mutex
	chunks   chan []byte
	mimeType string
	released bool
}

func (h *streamHandle) push(ctx context.Context, data []byte, mimeType string) error {
	if len(data) == 0 {
		return nil
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return fmt.Errorf("%w: recording stopped", domain.ErrDeviceUnavailable)
	}
	if h.mimeType == "" {
		h.mimeType = audioMimeType(mimeType, chunk)
	}

	select {
	case h.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Chunks emits pushed audio until the handle is released
func (h *streamHandle) Chunks() <-chan []byte {
	return h.chunks
}

// MimeType is the content type of the first pushed chunk
func (h *streamHandle) MimeType() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mimeType == "" {
		return domain.DefaultAudioMimeType
	}
	return h.mimeType
}

// Release stops the recording. It is safe to call more than once.
func (h *streamHandle) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	close(h.chunks)
	h.mu.Unlock()

	h.owner.release(h)
	logrus.Debug("Stream microphone released")
	return nil
}

// audioMimeType keeps a declared type without codec parameters, or sniffs the content
func audioMimeType(declared string, data []byte) string {
	if declared != "" {
		if base, _, ok := strings.Cut(declared, ";"); ok {
			declared = base
		}
		declared = strings.TrimSpace(declared)
		if declared != "" && declared != "application/octet-stream" {
			return declared
		}
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || strings.HasPrefix(m.String(), "video/") {
			return detected.String()
		}
	}
	return domain.DefaultAudioMimeType
}
