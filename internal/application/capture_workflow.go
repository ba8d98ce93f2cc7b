package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/internal/ports/output"
	"claritas/pkg/validator"

	"github.com/sirupsen/logrus"
)

var _ input.CaptureWorkflow = (*CaptureWorkflow)(nil)

const (
	defaultMinPayloadBytes = 1000
	defaultRetryDelay      = 3 * time.Second
)

// CaptureWorkflowOptions struct - tunables of the capture workflow
type CaptureWorkflowOptions struct {
	// MinPayloadBytes is the size a recording must exceed to be submitted
	MinPayloadBytes int
	// RetryDelay is how long a failed analysis is shown before recording resumes
	RetryDelay time.Duration
	Now        func() time.Time
}

// CaptureWorkflow struct - Application service driving one record-and-submit cycle at a time.
// The mutex guards every field below it; the analyzer call runs without it while the
// state is Submitting, which rejects all other transitions.
type CaptureWorkflow struct {
	microphone output.Microphone
	analyzer   output.Analyzer
	sessions   output.SessionStore
	profiles   output.ProfileStore
	notifier   output.Notifier
	validator  validator.Validator

	minPayloadBytes int
	retryDelay      time.Duration
	now             func() time.Time

	mu            sync.Mutex
	state         domain.CaptureState
	task          *domain.TaskContext
	rec           *recording
	lastErr       string
	lastSessionID string
	retryTimer    *time.Timer
	generation    uint64
	closed        bool
}

// NewCaptureWorkflow func - Creates new capture workflow
func NewCaptureWorkflow(
	microphone output.Microphone,
	analyzer output.Analyzer,
	sessions output.SessionStore,
	profiles output.ProfileStore,
	notifier output.Notifier,
	validate validator.Validator,
	opts CaptureWorkflowOptions,
) *CaptureWorkflow {
	if opts.MinPayloadBytes <= 0 {
		opts.MinPayloadBytes = defaultMinPayloadBytes
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CaptureWorkflow{
		microphone:      microphone,
		analyzer:        analyzer,
		sessions:        sessions,
		profiles:        profiles,
		notifier:        notifier,
		validator:       validate,
		minPayloadBytes: opts.MinPayloadBytes,
		retryDelay:      opts.RetryDelay,
		now:             opts.Now,
		state:           domain.CaptureStateIdle,
	}
}

// Start func - Use case: Idle → Recording
func (w *CaptureWorkflow) Start(ctx context.Context, task domain.TaskContext) error {
	task, err := w.prepareTask(ctx, task)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureReadyLocked(); err != nil {
		return err
	}

	// the recording outlives the request that started it
	handle, err := w.microphone.Acquire(context.WithoutCancel(ctx))
	if err != nil {
		if !errors.Is(err, domain.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
		}
		logrus.Warnf("Cannot start recording: %v", err)
		w.state = domain.CaptureStateIdle
		w.task = nil
		w.lastErr = err.Error()
		return err
	}

	w.beginRecordingLocked(handle, task)
	w.lastErr = ""
	logrus.Infof("Recording started: task=%s patient=%s", task.TaskType, task.Patient)
	return nil
}

// NextSentence func - Use case: advance to the next sentence, or stop after the last one
func (w *CaptureWorkflow) NextSentence(ctx context.Context) (*domain.Session, error) {
	w.mu.Lock()
	if w.state != domain.CaptureStateRecording {
		err := w.transitionErrorLocked()
		w.mu.Unlock()
		return nil, err
	}
	if w.task.TaskType != domain.TaskTypeSentenceReading {
		err := fmt.Errorf("%w: next sentence on a %s task", domain.ErrInvalidTransition, w.task.TaskType)
		w.mu.Unlock()
		return nil, err
	}
	if w.task.HasNextSentence() {
		w.task.SentenceIndex++
		logrus.Debugf("Advanced to sentence %d/%d", w.task.SentenceIndex+1, len(w.task.Sentences))
		w.mu.Unlock()
		return nil, nil
	}
	w.mu.Unlock()
	return w.Stop(ctx)
}

// Stop func - Use case: Recording → Stopping → Submitting → Succeeded or Failed
func (w *CaptureWorkflow) Stop(ctx context.Context) (*domain.Session, error) {
	w.mu.Lock()
	if w.state != domain.CaptureStateRecording {
		err := w.transitionErrorLocked()
		w.mu.Unlock()
		return nil, err
	}
	rec := w.rec
	task := w.task.Clone()
	w.rec = nil
	w.state = domain.CaptureStateStopping
	w.mu.Unlock()

	payload := rec.finish()
	return w.submit(ctx, task, payload, true)
}

// Upload func - Use case: submit an existing recording, skipping the microphone
func (w *CaptureWorkflow) Upload(ctx context.Context, task domain.TaskContext, payload domain.AudioPayload) (*domain.Session, error) {
	task, err := w.prepareTask(ctx, task)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if err := w.ensureReadyLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.state = domain.CaptureStateStopping
	w.task = &task
	w.lastErr = ""
	w.mu.Unlock()

	if payload.MimeType == "" {
		payload.MimeType = domain.DefaultAudioMimeType
	}
	if payload.Filename == "" {
		payload.Filename = domain.RecordingFilename(payload.MimeType)
	}
	return w.submit(ctx, task, payload, false)
}

// Cancel func - Use case: hard cancel of the recording or of a pending retry
func (w *CaptureWorkflow) Cancel(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case domain.CaptureStateIdle:
		w.mu.Unlock()
		return nil
	case domain.CaptureStateRecording, domain.CaptureStateFailed:
	default:
		err := fmt.Errorf("%w: cannot cancel while %s", domain.ErrWorkflowBusy, w.state)
		w.mu.Unlock()
		return err
	}
	rec := w.resetLocked()
	w.mu.Unlock()

	if rec != nil {
		rec.discard()
	}
	logrus.Info("Recording cancelled")
	return nil
}

// Snapshot func - Use case: current state for the UI
func (w *CaptureWorkflow) Snapshot() domain.CaptureSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := domain.CaptureSnapshot{
		State:         w.state,
		LastError:     w.lastErr,
		LastSessionID: w.lastSessionID,
		RetryPending:  w.retryTimer != nil,
	}
	if w.task != nil {
		task := w.task.Clone()
		snapshot.Task = &task
	}
	if w.rec != nil {
		snapshot.BufferedBytes = w.rec.size()
	}
	return snapshot
}

// Close func - Stops the retry timer and releases the microphone. The workflow refuses new work afterwards.
func (w *CaptureWorkflow) Close() error {
	w.mu.Lock()
	w.closed = true
	rec := w.resetLocked()
	w.mu.Unlock()

	if rec != nil {
		rec.discard()
	}
	return nil
}

// submit runs Stopping → Submitting → Succeeded|Failed. resumable selects whether a
// failed analysis re-arms recording after the retry delay. A payload under the threshold
// always ends in Failed with the task kept and no retry.
func (w *CaptureWorkflow) submit(ctx context.Context, task domain.TaskContext, payload domain.AudioPayload, resumable bool) (*domain.Session, error) {
	if payload.Size() <= w.minPayloadBytes {
		err := fmt.Errorf("%w: %d bytes recorded, more than %d required", domain.ErrPayloadTooSmall, payload.Size(), w.minPayloadBytes)
		logrus.Warnf("Recording rejected: %v", err)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return nil, errWorkflowClosed()
		}
		w.failLocked(task, err, false, true)
		return nil, err
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, errWorkflowClosed()
	}
	w.state = domain.CaptureStateSubmitting
	w.mu.Unlock()

	result, err := w.analyzer.Analyze(ctx, domain.AnalysisRequest{
		Payload:        payload,
		CaregiverEmail: task.CaregiverEmail,
	})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, errWorkflowClosed()
	}
	if err != nil {
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
		}
		logrus.Errorf("Analysis failed: %v", err)
		w.failLocked(task, err, resumable, resumable)
		w.mu.Unlock()
		return nil, err
	}
	w.state = domain.CaptureStateSucceeded
	w.mu.Unlock()

	session := domain.NewSession(task, *result, w.now())
	if err := w.sessions.Append(ctx, session); err != nil {
		logrus.Errorf("Session %s was analyzed but could not be stored: %v", session.ID, err)
	}
	if err := w.notifier.NotifySession(ctx, session); err != nil {
		logrus.Warnf("Session %s notification failed: %v", session.ID, err)
	}

	w.mu.Lock()
	w.state = domain.CaptureStateIdle
	w.task = nil
	w.lastErr = ""
	w.lastSessionID = session.ID
	w.mu.Unlock()

	logrus.Infof("Session %s recorded: risk=%s", session.ID, session.RiskBand)
	return &session, nil
}

// failLocked enters Failed. With retry set, recording resumes with the same task after the
// retry delay; otherwise the failure waits for the user (keepTask decides whether the task stays).
func (w *CaptureWorkflow) failLocked(task domain.TaskContext, err error, retry, keepTask bool) {
	w.lastErr = errorMessage(err)
	if !retry {
		if keepTask {
			w.state = domain.CaptureStateFailed
			w.task = &task
		} else {
			w.state = domain.CaptureStateIdle
			w.task = nil
		}
		return
	}

	w.state = domain.CaptureStateFailed
	w.task = &task
	w.generation++
	generation := w.generation
	w.retryTimer = time.AfterFunc(w.retryDelay, func() {
		w.resume(generation)
	})
}

// resume re-acquires the microphone after a failed analysis
func (w *CaptureWorkflow) resume(generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.generation != generation || w.state != domain.CaptureStateFailed {
		return
	}
	w.retryTimer = nil

	handle, err := w.microphone.Acquire(context.Background())
	if err != nil {
		logrus.Warnf("Cannot resume recording: %v", err)
		w.state = domain.CaptureStateIdle
		w.task = nil
		w.lastErr = err.Error()
		return
	}
	w.beginRecordingLocked(handle, *w.task)
	logrus.Infof("Recording resumed: task=%s sentence=%d", w.task.TaskType, w.task.SentenceIndex)
}

func (w *CaptureWorkflow) beginRecordingLocked(handle output.CaptureHandle, task domain.TaskContext) {
	w.state = domain.CaptureStateRecording
	w.task = &task
	w.rec = newRecording(handle)
}

// resetLocked returns to Idle, cancelling any pending retry. The caller discards the returned recording.
func (w *CaptureWorkflow) resetLocked() *recording {
	w.generation++
	if w.retryTimer != nil {
		w.retryTimer.Stop()
		w.retryTimer = nil
	}
	rec := w.rec
	w.rec = nil
	w.state = domain.CaptureStateIdle
	w.task = nil
	w.lastErr = ""
	return rec
}

// ensureReadyLocked allows a new cycle from Idle, or from a Failed state without a pending retry
func (w *CaptureWorkflow) ensureReadyLocked() error {
	if w.closed {
		return errWorkflowClosed()
	}
	switch {
	case w.state == domain.CaptureStateIdle:
		return nil
	case w.state == domain.CaptureStateFailed && w.retryTimer == nil:
		return nil
	default:
		return fmt.Errorf("%w: capture is %s", domain.ErrWorkflowBusy, w.state)
	}
}

func errWorkflowClosed() error {
	return fmt.Errorf("%w: workflow closed", domain.ErrInvalidTransition)
}

func (w *CaptureWorkflow) transitionErrorLocked() error {
	switch w.state {
	case domain.CaptureStateStopping, domain.CaptureStateSubmitting, domain.CaptureStateSucceeded:
		return fmt.Errorf("%w: capture is %s", domain.ErrWorkflowBusy, w.state)
	default:
		return fmt.Errorf("%w: not recording", domain.ErrInvalidTransition)
	}
}

// prepareTask validates the task and fills the caregiver from the signed-in profile
func (w *CaptureWorkflow) prepareTask(ctx context.Context, task domain.TaskContext) (domain.TaskContext, error) {
	task = task.Clone()
	task.NormalizeSentences()

	if task.Caregiver == "" || task.CaregiverEmail == "" {
		if profile, ok := w.profiles.Load(ctx); ok {
			if task.Caregiver == "" {
				task.Caregiver = profile.Label()
			}
			if task.CaregiverEmail == "" {
				task.CaregiverEmail = profile.Email
			}
		}
	}

	if err := w.validator.ValidateStruct(task); err != nil {
		return task, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
	}
	if len(task.Sentences) > 0 && task.SentenceIndex >= len(task.Sentences) {
		return task, fmt.Errorf("%w: sentence index %d out of range", domain.ErrInvalidTask, task.SentenceIndex)
	}
	return task, nil
}

// errorMessage keeps the analyzer's own message when there is one
func errorMessage(err error) string {
	var analysisErr *domain.AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr.Message
	}
	return err.Error()
}

// recording collects the chunks of one microphone acquisition
type recording struct {
	handle output.CaptureHandle
	mu     sync.Mutex
	buf    bytes.Buffer
	done   chan struct{}
}

func newRecording(handle output.CaptureHandle) *recording {
	rec := &recording{
		handle: handle,
		done:   make(chan struct{}),
	}
	go rec.collect()
	return rec
}

func (r *recording) collect() {
	defer close(r.done)
	for chunk := range r.handle.Chunks() {
		r.mu.Lock()
		r.buf.Write(chunk)
		r.mu.Unlock()
	}
}

func (r *recording) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Len()
}

// finish releases the microphone and returns everything captured
func (r *recording) finish() domain.AudioPayload {
	if err := r.handle.Release(); err != nil {
		logrus.Warnf("Microphone release failed: %v", err)
	}
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	mimeType := r.handle.MimeType()
	if mimeType == "" {
		mimeType = domain.DefaultAudioMimeType
	}
	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	return domain.AudioPayload{
		Data:     data,
		MimeType: mimeType,
		Filename: domain.RecordingFilename(mimeType),
	}
}

// discard releases the microphone and drops the captured audio
func (r *recording) discard() {
	if err := r.handle.Release(); err != nil {
		logrus.Warnf("Microphone release failed: %v", err)
	}
	<-r.done
	r.mu.Lock()
	r.buf.Reset()
	r.mu.Unlock()
}
