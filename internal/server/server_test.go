package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/storage"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/memory"
	"github.com/gravadigital/wisha-api/internal/storage/objectstore"
)

type envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Error    string            `json:"error"`
	Data     json.RawMessage   `json:"data"`
	Redirect string            `json:"redirect"`
	Fields   map[string]string `json:"fields"`
	Notices  []session.Notice  `json:"notices"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	repos  *memory.Container
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{Environment: "test"}
	cfg.Server.GinMode = gin.TestMode
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Upload.Backend = "memory-test"
	cfg.Upload.MaxFileSize = 1024
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.Issuer = "wisha-test"
	cfg.Auth.TokenTTL = time.Hour
	cfg.CORS.AllowOrigins = "http://localhost:3000"
	cfg.CORS.AllowMethods = "GET,POST,PUT,PATCH,DELETE"
	cfg.CORS.AllowHeaders = "Content-Type,Authorization,Idempotency-Key"

	repos := memory.NewContainer()
	objects, err := objectstore.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	srv := New(cfg, &storage.Backends{
		Repos:   repos,
		Objects: objects,
		Cache:   cache.NewMemoryStore(),
	})
	return &testAPI{t: t, router: srv.Router(), repos: repos}
}

func (a *testAPI) do(method, path string, body any, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token, headers...)
}

func (a *testAPI) send(req *http.Request, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type sessionBody struct {
	State   string `json:"state"`
	User    struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Session struct {
		AccessToken string `json:"accessToken"`
	} `json:"session"`
}

type eventBody struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatorID string `json:"creatorId"`
}

type createdBody struct {
	Step    string    `json:"step"`
	Event   eventBody `json:"event"`
	Session struct {
		AccessToken string `json:"accessToken"`
	} `json:"session"`
}

func (a *testAPI) signup(email, name string) sessionBody {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": "secret123", "name": name,
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionBody](a.t, env.Data)
}

func (a *testAPI) createEvent(token, title string) eventBody {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/events", map[string]any{
		"eventName": title, "category": "birthday",
	}, token)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[createdBody](a.t, env.Data).Event
}

func TestPing(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = api.do(http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPing_DegradedWhenStorageUnhealthy(t *testing.T) {
	api := newTestAPI(t)
	api.repos.FailOn("health", errors.New("connection refused"))

	w, _ := api.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")

	api.repos.FailOn("health", nil)
	w, _ = api.do(http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateEventWizard_AnonymousSignup(t *testing.T) {
	api := newTestAPI(t)

	// details only: the wizard asks for credentials
	w, env := api.do(http.MethodPost, "/api/events", map[string]any{
		"eventName": "Test Party", "category": "birthday",
	}, "")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "credentials", decode[createdBody](t, env.Data).Step)

	w, env = api.do(http.MethodPost, "/api/events", map[string]any{
		"eventName": "Test Party",
		"category":  "birthday",
		"credentials": map[string]string{
			"email": "new@x.io", "password": "secret123", "firstName": "Ana", "lastName": "Diaz",
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[createdBody](t, env.Data)
	assert.Equal(t, "done", created.Step)
	assert.Equal(t, "Test Party", created.Event.Title)
	assert.Equal(t, "/events/"+created.Event.ID, env.Redirect)
	require.NotEmpty(t, created.Session.AccessToken)

	w, env = api.do(http.MethodGet, "/api/auth/session", nil, created.Session.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	sess := decode[sessionBody](t, env.Data)
	assert.Equal(t, "authenticated", sess.State)
	assert.Equal(t, "Ana Diaz", sess.User.Name)
	assert.Equal(t, created.Event.CreatorID, sess.User.ID)
	assert.Empty(t, sess.Session.AccessToken, "token is not echoed back")
}

func TestCreateEventWizard_ValidationBlocks(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodPost, "/api/events", map[string]any{
		"eventName": "", "category": "birthday",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Fields, "eventName")
}

func TestCreateEventWizard_WrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.signup("taken@x.io", "Taken")

	w, env := api.do(http.MethodPost, "/api/events", map[string]any{
		"eventName": "Party", "category": "birthday",
		"credentials": map[string]string{"email": "taken@x.io", "password": "wrongpass"},
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotEmpty(t, env.Notices)
	assert.Equal(t, session.NoticeError, env.Notices[0].Kind)
}

func TestCreateEvent_IdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("host@x.io", "Host").Session.AccessToken

	body := map[string]any{"eventName": "Once", "category": "wedding"}
	_, first := api.do(http.MethodPost, "/api/events", body, token, "Idempotency-Key", "abc-123")
	w, second := api.do(http.MethodPost, "/api/events", body, token, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t,
		decode[createdBody](t, first.Data).Event.ID,
		decode[createdBody](t, second.Data).Event.ID)

	_, env := api.do(http.MethodGet, "/api/events?creator=me", nil, token)
	list := decode[struct {
		Count int `json:"count"`
	}](t, env.Data)
	assert.Equal(t, 1, list.Count)
}

func TestEvents_GetUpdateDelete(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	other := api.signup("other@x.io", "Other").Session.AccessToken
	e := api.createEvent(host, "Retirement Bash")

	w, _ := api.do(http.MethodGet, "/api/events/"+e.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/events/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodGet, "/api/events/00000000-0000-0000-0000-000000000001", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	title := map[string]string{"title": "Renamed"}
	w, _ = api.do(http.MethodPatch, "/api/events/"+e.ID, title, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPatch, "/api/events/"+e.ID, title, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := api.do(http.MethodPatch, "/api/events/"+e.ID, title, host)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Renamed", decode[eventBody](t, env.Data).Title)

	_, env = api.do(http.MethodGet, "/api/events/"+e.ID+"/activities", nil, "")
	acts := decode[struct {
		Activities []struct {
			Type string `json:"type"`
		} `json:"activities"`
	}](t, env.Data)
	require.Len(t, acts.Activities, 2)
	assert.Equal(t, "update_event", acts.Activities[0].Type)
	assert.Equal(t, "join_event", acts.Activities[1].Type)

	w, env = api.do(http.MethodDelete, "/api/events/"+e.ID, nil, host)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", env.Redirect)

	w, _ = api.do(http.MethodGet, "/api/events/"+e.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessages_GuestPostAndList(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	e := api.createEvent(host, "Party")
	path := "/api/events/" + e.ID + "/messages"

	_, env := api.do(http.MethodGet, path, nil, "")
	view := decode[struct {
		Messages    []any  `json:"messages"`
		EmptyPrompt string `json:"emptyPrompt"`
	}](t, env.Data)
	assert.Empty(t, view.Messages)
	assert.NotEmpty(t, view.EmptyPrompt)

	w, env := api.do(http.MethodPost, path, map[string]string{"content": "Congrats!"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Fields, "guestName")

	w, _ = api.do(http.MethodPost, path, map[string]string{"content": "Congrats!", "guestName": "Bob"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = api.do(http.MethodPost, path, map[string]string{"content": "Hi", "gifUrl": "ftp://nope"}, host)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = api.do(http.MethodGet, path, nil, "")
	list := decode[struct {
		Messages []struct {
			Content    string `json:"content"`
			AuthorName string `json:"authorName"`
		} `json:"messages"`
	}](t, env.Data)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, "Congrats!", list.Messages[0].Content)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestMessages_MultipartUpload(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	e := api.createEvent(host, "Party")
	path := "/api/events/" + e.ID + "/messages"

	body, ct := multipartBody(t, map[string]string{"content": "look"}, "media", "photo.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	w, env := api.send(req, host)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	msg := decode[struct {
		Media struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"media"`
	}](t, env.Data)
	assert.Equal(t, "image", msg.Media.Type)
	assert.True(t, strings.HasPrefix(msg.Media.URL, "/uploads/messages/"+e.ID+"/"), msg.Media.URL)

	body, ct = multipartBody(t, nil, "media", "big.png", "image/png", bytes.Repeat([]byte("x"), 2048))
	req = httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	w, _ = api.send(req, host)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	body, ct = multipartBody(t, nil, "media", "notes.txt", "text/plain", []byte("hello"))
	req = httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	w, _ = api.send(req, host)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestMessages_RecordingChunks(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	e := api.createEvent(host, "Party")

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, chunk := range []string{"abc", "def"} {
		part, err := mw.CreateFormFile("recording", "chunk.webm")
		require.NoError(t, err)
		_, err = part.Write([]byte(chunk))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/events/"+e.ID+"/messages", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := api.send(req, host)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	msg := decode[struct {
		Media struct {
			Type string `json:"type"`
		} `json:"media"`
	}](t, env.Data)
	assert.Equal(t, "audio", msg.Media.Type)
}

func TestItems_ClaimFlow(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	guest := api.signup("guest@x.io", "Guest One").Session.AccessToken
	late := api.signup("late@x.io", "Late").Session.AccessToken
	e := api.createEvent(host, "Wedding")

	w, _ := api.do(http.MethodPost, "/api/events/"+e.ID+"/items", map[string]string{"name": "Toaster"}, guest)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.do(http.MethodPost, "/api/events/"+e.ID+"/items", map[string]string{"name": "Toaster", "price": "$30"}, host)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env.Data)
	assert.Equal(t, "available", it.Status)

	w, _ = api.do(http.MethodPost, "/api/items/"+it.ID+"/claim", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(http.MethodPost, "/api/items/"+it.ID+"/claim", nil, guest)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "claimed", decode[struct {
		Status string `json:"status"`
	}](t, env.Data).Status)

	w, _ = api.do(http.MethodPost, "/api/items/"+it.ID+"/claim", nil, late)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/items/"+it.ID+"/unclaim", nil, late)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/items/"+it.ID+"/unclaim", nil, guest)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodPost, "/api/items/00000000-0000-0000-0000-000000000009/claim", nil, guest)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/items/"+it.ID, nil, guest)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/items/"+it.ID, nil, host)
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = api.do(http.MethodGet, "/api/events/"+e.ID+"/items", nil, "")
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, env.Data).Count)
}

func TestPreferences(t *testing.T) {
	api := newTestAPI(t)
	host := api.signup("host@x.io", "Host").Session.AccessToken
	other := api.signup("other@x.io", "Other").Session.AccessToken
	e := api.createEvent(host, "Party")
	path := "/api/events/" + e.ID + "/preferences"

	w, _ := api.do(http.MethodPut, path, map[string]string{"font": "Lobster"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPut, path, map[string]string{"background_color": "blue-ish"}, host)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPut, path, map[string]string{"font": "Lobster", "background_color": "#ffcc00"}, host)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = api.do(http.MethodPut, path, map[string]string{"font": "Caveat"}, host)
	require.Equal(t, http.StatusOK, w.Code)

	_, env := api.do(http.MethodGet, path, nil, "")
	prefs := decode[cache.Preferences](t, env.Data)
	assert.Equal(t, "Caveat", prefs.Font)
	assert.Equal(t, "#ffcc00", prefs.BackgroundColor)
}

func TestDashboardAndLogout(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/api/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := api.signup("host@x.io", "Host").Session.AccessToken
	e := api.createEvent(token, "Party")
	api.do(http.MethodPost, "/api/events/"+e.ID+"/messages", map[string]string{"content": "hey", "guestName": "Bob"}, "")

	w, env := api.do(http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		Events []struct {
			MessageCount int `json:"messageCount"`
		} `json:"events"`
		Activities []any `json:"activities"`
	}](t, env.Data)
	require.Len(t, summary.Events, 1)
	assert.Equal(t, 1, summary.Events[0].MessageCount)
	assert.Len(t, summary.Activities, 2)

	w, env = api.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", env.Redirect)
	require.NotEmpty(t, env.Notices)
	assert.Equal(t, session.LoggedOutMessage, env.Notices[0].Title)

	w, _ = api.do(http.MethodGet, "/api/dashboard", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token")
}

func TestAuth_ExistsAndProfile(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("host@x.io", "Host").Session.AccessToken

	_, env := api.do(http.MethodGet, "/api/auth/exists?email=HOST@x.io", nil, "")
	assert.True(t, decode[struct {
		Exists bool `json:"exists"`
	}](t, env.Data).Exists)

	_, env = api.do(http.MethodGet, "/api/auth/exists?email=not-an-email", nil, "")
	assert.False(t, decode[struct {
		Exists bool `json:"exists"`
	}](t, env.Data).Exists)

	w, _ := api.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "host@x.io", "password": "secret123", "name": "Again",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = api.do(http.MethodPatch, "/api/users/me", map[string]string{"name": "  Hostess "}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Hostess", decode[struct {
		Name string `json:"name"`
	}](t, env.Data).Name)
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)

	_, env := api.do(http.MethodGet, "/api/categories", nil, "")
	body := decode[struct {
		Groups     map[string][]any `json:"groups"`
		Categories []any            `json:"categories"`
	}](t, env.Data)
	assert.Len(t, body.Categories, 25)
	assert.Len(t, body.Groups, 2)
}
