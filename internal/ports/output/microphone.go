package output

import "context"

// Microphone interface - Output port
// A capture device that must be acquired before recording and released on every exit path.
type Microphone interface {
	// Acquire opens the device. Returns an error wrapping domain.ErrDeviceUnavailable
	// when permission is denied, no device exists or it is already held.
	Acquire(ctx context.Context) (CaptureHandle, error)
}

// CaptureHandle is an acquired microphone
type CaptureHandle interface {
	// Chunks emits buffered audio until the handle is released, then is closed
	Chunks() <-chan []byte

	// MimeType is the content type of the emitted audio
	MimeType() string

	// Release stops capture and frees the device. It is safe to call more than once.
	Release() error
}
