package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/board"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
)

// Multipart field names of POST /events/:id/messages
const (
	FieldContent   = "content"
	FieldGuestName = "guestName"
	FieldGIFURL    = "gifUrl"
	FieldMedia     = "media"
	FieldRecording = "recording"
)

type MessageHandler struct {
	board  *board.Board
	events *services.EventService
	log    *log.Logger
}

func NewMessageHandler(b *board.Board, events *services.EventService) *MessageHandler {
	return &MessageHandler{
		board:  b,
		events: events,
		log:    logger.Handler("messages"),
	}
}

type PostMessageRequest struct {
	Content   string `json:"content"`
	GuestName string `json:"guestName"`
	GIFURL    string `json:"gifUrl"`
}

// ListMessages handles GET /api/events/:id/messages
func (h *MessageHandler) ListMessages(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", h.board.Load(c.Request.Context(), e.ID))
}

// PostMessage handles POST /api/events/:id/messages. JSON bodies carry text
// and GIFs; uploads and recordings come as multipart/form-data.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}

	draft := board.NewDraft()
	var cleanup func()
	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		cleanup, err = h.draftFromForm(c, draft)
	} else {
		err = h.draftFromJSON(c, draft)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		h.postError(c, err)
		return
	}

	m, err := h.board.Submit(c.Request.Context(), e.ID, draft, currentUser(c))
	if err != nil {
		h.postError(c, err)
		return
	}

	notify(c, session.NoticeSuccess, "Message posted", "")
	response.SuccessResponse(c, http.StatusCreated, "", m)
}

var errBadPayload = errors.New("invalid request payload")

func (h *MessageHandler) draftFromJSON(c *gin.Context, d *board.Draft) error {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return errBadPayload
	}
	d.SetContent(req.Content)
	d.SetGuestName(req.GuestName)
	if req.GIFURL != "" {
		return d.AttachGIF(req.GIFURL)
	}
	return nil
}

// draftFromForm stages at most one media kind; a recording wins over a file,
// a file over a GIF. The returned func closes the opened upload.
func (h *MessageHandler) draftFromForm(c *gin.Context, d *board.Draft) (func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errBadPayload
	}
	d.SetContent(formValue(form, FieldContent))
	d.SetGuestName(formValue(form, FieldGuestName))

	if chunks := form.File[FieldRecording]; len(chunks) > 0 {
		f, err := assembleRecording(chunks)
		if err != nil {
			return nil, err
		}
		d.AttachRecording(f)
		return nil, nil
	}

	if files := form.File[FieldMedia]; len(files) > 0 {
		header := files[0]
		src, err := header.Open()
		if err != nil {
			return nil, err
		}
		contentType := header.Header.Get("Content-Type")
		if err := d.AttachFile(board.File{
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Reader:      src,
		}); err != nil {
			src.Close()
			return nil, err
		}
		return func() { src.Close() }, nil
	}

	if gif := formValue(form, FieldGIFURL); gif != "" {
		return nil, d.AttachGIF(gif)
	}
	return nil, nil
}

// assembleRecording feeds the uploaded chunks, in order, through a Recorder
func assembleRecording(chunks []*multipart.FileHeader) (board.File, error) {
	rec := board.NewRecorder()
	if err := rec.Start(); err != nil {
		return board.File{}, err
	}
	for _, header := range chunks {
		src, err := header.Open()
		if err != nil {
			return board.File{}, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return board.File{}, err
		}
		if err := rec.Append(data); err != nil {
			return board.File{}, err
		}
	}
	return rec.Stop()
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (h *MessageHandler) postError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errBadPayload):
		response.BadRequestError(c, "Invalid request payload")
	case errors.Is(err, board.ErrInvalidGIFURL):
		response.BadRequestError(c, err.Error())
	case errors.Is(err, board.ErrEmptyRecording):
		response.BadRequestError(c, err.Error())
	case errors.Is(err, board.ErrUnsupportedMedia):
		response.ErrorResponseWithMessage(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		response.ErrorResponseWithMessage(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, board.ErrSubmitInProgress):
		response.ConflictError(c, err.Error())
	case errors.Is(err, board.ErrPostFailed):
		h.log.Error("message post failed", "path", c.Request.URL.Path)
		response.InternalServerError(c, response.GenericFailure)
	default:
		response.FromError(c, err)
	}
}
