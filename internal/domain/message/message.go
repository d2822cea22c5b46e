package message

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/common"
)

// Message is a post on an event board
type Message struct {
	ID        uuid.UUID     `json:"id"`
	EventID   uuid.UUID     `json:"eventId"`
	Content   string        `json:"content"`
	Author    common.Author `json:"author"`
	Media     *Media        `json:"media"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Media is the single attachment a message may carry
type Media struct {
	Type         MediaType `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
}

// Patch carries a sparse message update
type Patch struct {
	Content *string `json:"content"`
	Media   *Media  `json:"media"`
}

// IsEmpty reports whether the patch carries no changes
func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Media == nil
}

// NewMessage creates a message for eventID
func NewMessage(eventID uuid.UUID, content string, author common.Author, media *Media) *Message {
	now := time.Now()
	return &Message{
		EventID:   eventID,
		Content:   content,
		Author:    author,
		Media:     media,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the message has something to show and a named author
func (m *Message) Validate() error {
	if m.EventID == uuid.Nil {
		return fmt.Errorf("event_id is required")
	}
	if strings.TrimSpace(m.Content) == "" && m.Media == nil {
		return fmt.Errorf("content or media is required")
	}
	if strings.TrimSpace(m.Author.Name) == "" {
		return fmt.Errorf("author name is required")
	}
	if m.Media != nil {
		if !m.Media.Type.IsValid() {
			return fmt.Errorf("invalid media type: %s", m.Media.Type)
		}
		if m.Media.URL == "" {
			return fmt.Errorf("media url is required")
		}
	}
	return nil
}

// IsGuest reports whether the message was posted without an account
func (m *Message) IsGuest() bool {
	return common.IsGuest(m.Author.ID)
}

// SortNewestFirst orders messages by creation time, most recent first
func SortNewestFirst(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
}

// MediaType is the kind of attachment
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaGIF   MediaType = "gif"
)

// IsValid reports whether t is a known media type
func (t MediaType) IsValid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio, MediaGIF:
		return true
	}
	return false
}

// MediaTypeFromContentType maps an uploaded file's MIME type to a media type
func MediaTypeFromContentType(contentType string) (MediaType, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case ct == "image/gif":
		return MediaGIF, true
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, true
	case strings.HasPrefix(ct, "audio/"):
		return MediaAudio, true
	}
	return "", false
}

// Scan implements the sql.Scanner interface for database deserialization
func (t *MediaType) Scan(value interface{}) error {
	if value == nil {
		*t = ""
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MediaType", value)
	}

	mt := MediaType(str)
	if !mt.IsValid() {
		return fmt.Errorf("invalid media type value: %s", str)
	}
	*t = mt
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (t MediaType) Value() (driver.Value, error) {
	if t == "" {
		return nil, nil
	}
	return string(t), nil
}
