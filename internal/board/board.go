// Package board is the message board of an event: loading the posts and
// submitting a new one with at most one attachment.
package board

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/validation"
)

// EmptyPrompt is shown on a board without messages
const EmptyPrompt = "No messages yet. Be the first to leave a message!"

// UploadFolder is the object key prefix for board media
const UploadFolder = "messages"

var (
	ErrSubmitInProgress = errors.New("a message is already being posted")
	ErrPostFailed       = errors.New("message could not be posted")
)

// Publisher pushes a new message to live subscribers of its event
type Publisher interface {
	Publish(eventID uuid.UUID, payload any)
}

// View is a loaded board
type View struct {
	EventID     uuid.UUID          `json:"eventId"`
	Messages    []*message.Message `json:"messages"`
	EmptyPrompt string             `json:"emptyPrompt,omitempty"`
}

type Board struct {
	messages   *services.MessageService
	activities *services.ActivityService
	storage    *services.StorageService
	publisher  Publisher
	validator  validation.MessageValidation
	log        *log.Logger
}

// New builds a board. publisher may be nil.
func New(messages *services.MessageService, activities *services.ActivityService, storage *services.StorageService, publisher Publisher) *Board {
	return &Board{
		messages:   messages,
		activities: activities,
		storage:    storage,
		publisher:  publisher,
		validator:  validation.MessageValidation{},
		log:        logger.Workflow("board"),
	}
}

// Load returns the messages of eventID, newest first
func (b *Board) Load(ctx context.Context, eventID uuid.UUID) *View {
	v := &View{EventID: eventID, Messages: b.messages.ListByEvent(ctx, eventID)}
	if len(v.Messages) == 0 {
		v.EmptyPrompt = EmptyPrompt
	}
	return v
}

// Validate checks the draft without side effects. author is nil for guests.
func (b *Board) Validate(d *Draft, author *user.User) error {
	s := d.snapshot()
	errs := validation.Errors{}
	errs.Check("content", b.validator.ValidateBody(s.content, s.kind != MediaNone))
	if author == nil && s.guestName == "" {
		errs.Add("guestName", "please enter your name")
	}
	if author == nil {
		errs.Check("guestName", validation.ValidateMaxLength(s.guestName, 80, "guestName"))
	}
	return errs.Err()
}

// Submit posts the draft: upload the staged file, create the message, log
// the activity and publish it. When the message insert fails the uploaded
// object is deleted again. The draft is reset on success.
func (b *Board) Submit(ctx context.Context, eventID uuid.UUID, d *Draft, author *user.User) (*message.Message, error) {
	if !d.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer d.submitting.Store(false)

	if err := b.Validate(d, author); err != nil {
		return nil, err
	}
	s := d.snapshot()

	media, uploadedKey, err := b.stageMedia(ctx, eventID, s)
	if err != nil {
		return nil, err
	}

	ref := common.GuestAuthor(s.guestName)
	if author != nil {
		ref = author.AsAuthor()
	}

	m := b.messages.Create(ctx, services.CreateMessageInput{
		EventID: eventID,
		Content: s.content,
		Author:  ref,
		Media:   media,
	})
	if m == nil {
		if uploadedKey != "" {
			if derr := b.storage.Delete(ctx, uploadedKey); derr != nil {
				b.log.Error("failed to remove orphaned upload", "key", uploadedKey, "error", derr)
			} else {
				b.log.Info("orphaned upload removed", "key", uploadedKey)
			}
		}
		return nil, ErrPostFailed
	}

	details := map[string]any{"message_id": m.ID.String()}
	if media != nil {
		details["media_type"] = string(media.Type)
	}
	if a := b.activities.Record(ctx, activity.TypeNewMessage, eventID, ref.ID, ref.Name, details); a == nil {
		b.log.Warn("message posted without activity", "message_id", m.ID)
	}

	if b.publisher != nil {
		b.publisher.Publish(eventID, m)
	}

	d.Reset()
	b.log.Info("message submitted", "message_id", m.ID, "event_id", eventID)
	return m, nil
}

func (b *Board) stageMedia(ctx context.Context, eventID uuid.UUID, s snapshot) (*message.Media, string, error) {
	switch s.kind {
	case MediaGIF:
		return &message.Media{Type: message.MediaGIF, URL: s.gifURL}, "", nil
	case MediaFile, MediaRecording:
		mediaType, ok := message.MediaTypeFromContentType(s.file.ContentType)
		if !ok {
			return nil, "", ErrUnsupportedMedia
		}
		if err := s.file.rewind(); err != nil {
			b.log.Error("media payload not readable", "event_id", eventID, "error", err)
			return nil, "", err
		}
		obj, err := b.storage.Upload(ctx, UploadFolder, eventID, s.file.Name, s.file.ContentType, s.file.Size, s.file.Reader)
		if err != nil {
			b.log.Error("media upload failed", "event_id", eventID, "error", err)
			return nil, "", err
		}
		return &message.Media{Type: mediaType, URL: obj.URL}, obj.Key, nil
	}
	return nil, "", nil
}
