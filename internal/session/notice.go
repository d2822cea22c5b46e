package session

import "sync"

// NoticeKind is the visual tone of a user-facing notice
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a short toast-style message for the client
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message,omitempty"`
}

// Navigator sends the client to another route
type Navigator interface {
	Navigate(path string)
}

// Notifier surfaces a notice to the client
type Notifier interface {
	Notify(n Notice)
}

// Outcome collects the redirect and notices produced while handling one
// request so the HTTP layer can put them in the response body.
type Outcome struct {
	mu       sync.Mutex
	redirect string
	notices  []Notice
}

func NewOutcome() *Outcome {
	return &Outcome{}
}

func (o *Outcome) Navigate(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.redirect = path
}

func (o *Outcome) Notify(n Notice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notices = append(o.notices, n)
}

// Redirect returns the last requested route, or ""
func (o *Outcome) Redirect() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.redirect
}

// Notices returns a copy of the collected notices
func (o *Outcome) Notices() []Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Notice, len(o.notices))
	copy(out, o.notices)
	return out
}
