package domain

import (
	"errors"
	"fmt"
)

// Capture and storage error types

var (
	// ErrDeviceUnavailable indicates the microphone could not be acquired
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrPayloadTooSmall indicates the recording is too short to be analyzed
	ErrPayloadTooSmall = errors.New("audio payload too small")

	// ErrAnalysisFailed indicates the analyzer returned an error, an unreadable body or could not be reached
	ErrAnalysisFailed = errors.New("audio analysis failed")

	// ErrStorage indicates the session store could not persist a record
	ErrStorage = errors.New("session storage unavailable")

	// ErrDuplicateSession indicates a session with the same ID is already stored
	ErrDuplicateSession = fmt.Errorf("%w: duplicate session id", ErrStorage)

	// ErrWorkflowBusy indicates a capture cycle is already in progress
	ErrWorkflowBusy = errors.New("capture workflow busy")

	// ErrInvalidTransition indicates the operation is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid capture state transition")

	// ErrInvalidTask indicates the task context failed validation
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidProfile indicates the caregiver profile failed validation
	ErrInvalidProfile = errors.New("invalid caregiver profile")

	// ErrNoSessions indicates there is no session history to work with
	ErrNoSessions = errors.New("no sessions recorded")
)

// LM Studio error types

var (
	// ErrLMStudioUnavailable indicates the LM Studio service is unavailable
	ErrLMStudioUnavailable = errors.New("lm studio service unavailable")

	// ErrInvalidRequest indicates an invalid request was made (4xx client errors)
	ErrInvalidRequest = errors.New("invalid request")
)

// AnalysisError carries the analyzer's failure message. It matches ErrAnalysisFailed with errors.Is.
type AnalysisError struct {
	StatusCode int
	Message    string
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// Unwrap func
func (e *AnalysisError) Unwrap() error {
	return ErrAnalysisFailed
}
