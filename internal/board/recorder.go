package board

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// RecordingContentType is the container produced by browser capture
const RecordingContentType = "audio/webm"

var (
	ErrAlreadyRecording = errors.New("a recording is already running")
	ErrNotRecording     = errors.New("no recording is running")
	ErrEmptyRecording   = errors.New("recording captured no audio")
)

// Recorder collects audio chunks of one capture session and packages them
// into a single file when stopped.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	chunks    [][]byte
	startedAt time.Time
	now       func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.chunks = nil
	r.startedAt = r.now()
	return nil
}

// Append adds a captured chunk. Empty chunks are ignored.
func (r *Recorder) Append(chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return ErrNotRecording
	}
	if len(chunk) == 0 {
		return nil
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	r.chunks = append(r.chunks, buf)
	return nil
}

// Stop ends the session and joins the chunks into one audio/webm file
func (r *Recorder) Stop() (File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return File{}, ErrNotRecording
	}
	r.recording = false

	size := 0
	for _, c := range r.chunks {
		size += len(c)
	}
	if size == 0 {
		return File{}, ErrEmptyRecording
	}

	data := make([]byte, 0, size)
	for _, c := range r.chunks {
		data = append(data, c...)
	}
	r.chunks = nil

	name := fmt.Sprintf("recording-%d.webm", r.startedAt.Unix())
	return NewFile(name, RecordingContentType, data), nil
}

// Toggle starts a session, or stops the running one and returns its file.
// done is false when a session was just started.
func (r *Recorder) Toggle() (f File, done bool, err error) {
	if r.IsRecording() {
		f, err = r.Stop()
		return f, err == nil, err
	}
	return File{}, false, r.Start()
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}
