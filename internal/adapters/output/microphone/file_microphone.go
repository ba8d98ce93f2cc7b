package microphone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var _ output.Microphone = (*FileMicrophone)(nil)

const defaultChunkSize = 4096

// FileMicrophone struct - Output adapter replaying an audio file from disk as a capture device
type FileMicrophone struct {
	path      string
	chunkSize int

	mu   sync.Mutex
	held bool
}

// NewFileMicrophone func - Creates a file microphone emitting chunkSize byte chunks
func NewFileMicrophone(path string, chunkSize int) *FileMicrophone {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &FileMicrophone{path: path, chunkSize: chunkSize}
}

// Acquire opens the file and starts emitting its content
func (m *FileMicrophone) Acquire(ctx context.Context) (output.CaptureHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return nil, fmt.Errorf("%w: microphone already in use", domain.ErrDeviceUnavailable)
	}

	file, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}

	handle := &fileHandle{
		owner:    m,
		chunks:   make(chan []byte),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		mimeType: audioMimeType(detected.String(), nil),
	}
	m.held = true
	go handle.read(ctx, file, m.chunkSize)

	logrus.Debugf("File microphone acquired: %s (%s)", m.path, handle.mimeType)
	return handle, nil
}

func (m *FileMicrophone) release() {
	m.mu.Lock()
	m.held = false
	m.mu.Unlock()
}

type fileHandle struct {
	owner    *FileMicrophone
	chunks   chan []byte
	done     chan struct{}
	finished chan struct{}
	mimeType string
	once     sync.Once
}

func (h *fileHandle) read(ctx context.Context, file *os.File, chunkSize int) {
	defer close(h.finished)
	defer close(h.chunks)
	defer file.Close()

	for {
		buf := make([]byte, chunkSize)
		n, err := file.Read(buf)
		if n > 0 {
			select {
			case h.chunks <- buf[:n]:
			case <-h.done:
				return
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logrus.Errorf("File microphone read failed: %v", err)
			}
			return
		}
	}
}

func (h *fileHandle) Chunks() <-chan []byte {
	return h.chunks
}

func (h *fileHandle) MimeType() string {
	return h.mimeType
}

// Release stops reading and waits for the reader to finish
func (h *fileHandle) Release() error {
	h.once.Do(func() {
		close(h.done)
		<-h.finished
		h.owner.release()
	})
	return nil
}
