package board

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gravadigital/wisha-api/internal/domain/message"
)

// MediaKind is the kind of attachment staged on a draft
type MediaKind string

const (
	MediaNone      MediaKind = ""
	MediaFile      MediaKind = "file"
	MediaRecording MediaKind = "recording"
	MediaGIF       MediaKind = "gif"
)

var (
	ErrUnsupportedMedia = errors.New("only image, video and audio files can be attached")
	ErrInvalidGIFURL    = errors.New("gif must be an http(s) URL")
)

// File is an upload candidate. Reader is rewound before every upload so a
// draft kept after a failed post can be submitted again.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.ReadSeeker
}

// rewind positions the payload at its first byte
func (f *File) rewind() error {
	_, err := f.Reader.Seek(0, io.SeekStart)
	return err
}

// NewFile wraps an in-memory payload
func NewFile(name, contentType string, data []byte) File {
	return File{Name: name, ContentType: contentType, Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

// Draft is the message being composed on a board. At most one media kind is
// staged; staging another discards the previous one.
type Draft struct {
	mu         sync.Mutex
	content    string
	guestName  string
	kind       MediaKind
	file       *File
	gifURL     string
	submitting atomic.Bool
}

func NewDraft() *Draft {
	return &Draft{}
}

func (d *Draft) SetContent(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
}

func (d *Draft) SetGuestName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guestName = name
}

// AttachFile stages an uploaded image, video or audio file
func (d *Draft) AttachFile(f File) error {
	if _, ok := message.MediaTypeFromContentType(f.ContentType); !ok {
		return ErrUnsupportedMedia
	}
	d.stage(MediaFile, &f, "")
	return nil
}

// AttachRecording stages a finished voice recording
func (d *Draft) AttachRecording(f File) {
	d.stage(MediaRecording, &f, "")
}

// AttachGIF stages an external GIF. GIFs are linked, never uploaded.
func (d *Draft) AttachGIF(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidGIFURL
	}
	d.stage(MediaGIF, nil, u.String())
	return nil
}

func (d *Draft) ClearMedia() {
	d.stage(MediaNone, nil, "")
}

func (d *Draft) stage(kind MediaKind, f *File, gif string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kind, d.file, d.gifURL = kind, f, gif
}

// Kind returns the staged media kind
func (d *Draft) Kind() MediaKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kind
}

// Reset empties the draft after a successful post
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content, d.guestName = "", ""
	d.kind, d.file, d.gifURL = MediaNone, nil, ""
}

type snapshot struct {
	content   string
	guestName string
	kind      MediaKind
	file      *File
	gifURL    string
}

func (d *Draft) snapshot() snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return snapshot{
		content:   strings.TrimSpace(d.content),
		guestName: strings.TrimSpace(d.guestName),
		kind:      d.kind,
		file:      d.file,
		gifURL:    d.gifURL,
	}
}
