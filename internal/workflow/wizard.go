// Package workflow drives the two-step event creation wizard: event details
// first, then credentials for visitors without a session.
package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/validation"
)

var (
	// ErrSubmitInProgress rejects a submit while another one is running
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	// ErrWrongStep is returned when an action does not belong to the current step
	ErrWrongStep = errors.New("action not allowed at this step")
	// ErrEventNotCreated is returned when the event insert fails
	ErrEventNotCreated = errors.New("event could not be created")
)

// Step of the wizard
type Step int

const (
	StepDetails Step = iota + 1
	StepCredentials
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepCredentials:
		return "credentials"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// Details is the first page of the wizard
type Details struct {
	EventName    string `json:"eventName" validate:"required,max=120"`
	Category     string `json:"category" validate:"required"`
	Instructions string `json:"instructions" validate:"max=2000"`
}

// Credentials is the second page. FirstName is only required when the email
// is not registered yet.
type Credentials struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"max=40"`
	LastName  string `json:"lastName" validate:"max=40"`
}

// Deps are the collaborators of a wizard
type Deps struct {
	Session     *session.Context
	Events      *services.EventService
	Activities  *services.ActivityService
	Idempotency *cache.IdempotencyStore
	Navigator   session.Navigator
	Notifier    session.Notifier
}

// Wizard holds the state of one event creation attempt. Inputs survive
// failed submits so the visitor can retry without retyping.
type Wizard struct {
	mu       sync.Mutex
	deps     Deps
	inFlight atomic.Bool
	step     Step
	details  Details
	creds    Credentials
	exists   *bool
	created  *event.Event
	key      string
	log      *log.Logger
}

func New(deps Deps) *Wizard {
	return &Wizard{
		deps: deps,
		step: StepDetails,
		log:  logger.Workflow("create_event"),
	}
}

// WithIdempotencyKey ties the wizard to a client supplied key so a retried
// request returns the event the first one created.
func (w *Wizard) WithIdempotencyKey(key string) *Wizard {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.key = strings.TrimSpace(key)
	return w
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Details() Details {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details
}

func (w *Wizard) Credentials() Credentials {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.creds
}

// Created returns the event once the wizard has made it
func (w *Wizard) Created() *event.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.created
}

// Categories lists the occasions grouped for the category picker
func Categories() map[string][]event.Category {
	return event.CategoryGroups()
}

// ValidateDetails runs the step one checks without touching the network
func ValidateDetails(d Details) error {
	d = d.trimmed()
	errs := validation.Errors{}
	if err := validation.Struct(d); err != nil {
		fieldErrs, ok := validation.AsErrors(err)
		if !ok {
			return err
		}
		for f, msg := range fieldErrs {
			errs.Add(f, msg)
		}
	}
	if d.Category != "" && !event.IsKnownCategory(d.Category) {
		errs.Add("category", "category is not one of the available occasions")
	}
	return errs.Err()
}

// ValidateCredentials runs the step two checks for the login or signup branch
func ValidateCredentials(c Credentials, existing bool) error {
	c = c.trimmed()
	errs := validation.Errors{}
	if err := validation.Struct(c); err != nil {
		fieldErrs, ok := validation.AsErrors(err)
		if !ok {
			return err
		}
		for f, msg := range fieldErrs {
			errs.Add(f, msg)
		}
	}
	if !existing && c.FirstName == "" {
		errs.Add("firstName", "firstName is required")
	}
	return errs.Err()
}

// SubmitDetails validates step one. An authenticated visitor gets the event
// right away; everybody else moves on to the credentials step.
func (w *Wizard) SubmitDetails(ctx context.Context, d Details) (*event.Event, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer w.inFlight.Store(false)

	w.mu.Lock()
	if w.step == StepDone {
		created := w.created
		w.mu.Unlock()
		return created, nil
	}
	w.details = d.trimmed()
	w.mu.Unlock()

	if err := ValidateDetails(d); err != nil {
		return nil, err
	}

	if current := w.deps.Session.CurrentUser(); current != nil {
		w.log.Debug("authenticated submit, skipping credentials", "user_id", current.ID)
		return w.createEvent(ctx, current)
	}

	w.mu.Lock()
	w.step = StepCredentials
	w.mu.Unlock()
	return nil, nil
}

// ProbeEmail checks whether email is registered, deciding between the login
// and signup branch. Malformed addresses are not sent to the backend.
func (w *Wizard) ProbeEmail(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)

	w.mu.Lock()
	w.creds.Email = email
	w.exists = nil
	w.mu.Unlock()

	if validation.ValidateEmail(email) != nil {
		return false
	}

	exists := w.deps.Session.CheckUserExists(ctx, email)

	w.mu.Lock()
	w.exists = &exists
	w.mu.Unlock()
	return exists
}

// Branch reports whether the probed email belongs to an existing account.
// ok is false until ProbeEmail has run for the current email.
func (w *Wizard) Branch() (existing bool, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.exists == nil {
		return false, false
	}
	return *w.exists, true
}

// SubmitCredentials logs in or signs up, then creates the event under the
// resulting identity. Remote failures leave the wizard on this step.
func (w *Wizard) SubmitCredentials(ctx context.Context, c Credentials) (*event.Event, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer w.inFlight.Store(false)

	w.mu.Lock()
	step := w.step
	created := w.created
	probed := w.exists != nil && strings.EqualFold(w.creds.Email, strings.TrimSpace(c.Email))
	w.creds = c.trimmed()
	w.mu.Unlock()

	switch step {
	case StepDone:
		return created, nil
	case StepCredentials:
	default:
		return nil, ErrWrongStep
	}

	if err := ValidateCredentials(c, true); err != nil {
		return nil, err
	}

	if !probed {
		w.ProbeEmail(ctx, c.Email)
		w.mu.Lock()
		w.creds = c.trimmed()
		w.mu.Unlock()
	}
	existing, _ := w.Branch()

	if err := ValidateCredentials(c, existing); err != nil {
		return nil, err
	}

	c = c.trimmed()
	var (
		u   *user.User
		err error
	)
	// an earlier attempt may have signed in before the event insert failed
	if current := w.deps.Session.CurrentUser(); current != nil && strings.EqualFold(current.Email, c.Email) {
		return w.createEvent(ctx, current)
	}
	if existing {
		u, err = w.deps.Session.Login(ctx, c.Email, c.Password)
	} else {
		u, err = w.deps.Session.Signup(ctx, c.Email, c.Password, fullName(c.FirstName, c.LastName))
	}
	if err != nil {
		w.notifyAuthFailure(existing, err)
		return nil, err
	}

	return w.createEvent(ctx, u)
}

// createEvent runs at most once per wizard and once per idempotency key
func (w *Wizard) createEvent(ctx context.Context, creator *user.User) (*event.Event, error) {
	w.mu.Lock()
	if w.created != nil {
		created := w.created
		w.mu.Unlock()
		return created, nil
	}
	details := w.details
	key := w.key
	w.mu.Unlock()

	if e := w.replay(ctx, key); e != nil {
		return w.finish(e), nil
	}

	var instructions *string
	if details.Instructions != "" {
		instructions = &details.Instructions
	}
	e := w.deps.Events.Create(ctx, services.CreateEventInput{
		Title:        details.EventName,
		Type:         details.Category,
		Instructions: instructions,
		CreatorID:    creator.ID,
	})
	if e == nil {
		w.notify(session.Notice{Kind: session.NoticeError, Title: "Could not create event", Message: "Something went wrong, please try again"})
		return nil, ErrEventNotCreated
	}

	if key != "" && w.deps.Idempotency != nil {
		winner, err := w.deps.Idempotency.Remember(ctx, key, e.ID.String())
		if err != nil {
			w.log.Warn("failed to remember idempotency key", "event_id", e.ID, "error", err)
		} else if winner != e.ID.String() {
			w.log.Warn("lost idempotency race, discarding duplicate", "event_id", e.ID, "winner", winner)
			w.deps.Events.Delete(ctx, e.ID)
			if existing := w.replay(ctx, key); existing != nil {
				return w.finish(existing), nil
			}
		}
	}

	if w.deps.Activities != nil {
		if a := w.deps.Activities.Record(ctx, activity.TypeJoinEvent, e.ID, creator.ID, creator.Name, map[string]any{"role": "creator"}); a == nil {
			w.log.Warn("join activity not recorded", "event_id", e.ID)
		}
	}

	w.log.Info("event created by wizard", "event_id", e.ID, "creator_id", creator.ID)
	w.notify(session.Notice{Kind: session.NoticeSuccess, Title: "Event created", Message: e.Title})
	return w.finish(e), nil
}

// replay returns the event an earlier request with the same key created
func (w *Wizard) replay(ctx context.Context, key string) *event.Event {
	if key == "" || w.deps.Idempotency == nil {
		return nil
	}
	id, found, err := w.deps.Idempotency.Lookup(ctx, key)
	if err != nil {
		w.log.Warn("idempotency lookup failed", "error", err)
		return nil
	}
	if !found {
		return nil
	}
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	e := w.deps.Events.GetByID(ctx, eventID)
	if e != nil {
		w.log.Info("replaying event for idempotency key", "event_id", e.ID)
	}
	return e
}

func (w *Wizard) finish(e *event.Event) *event.Event {
	w.mu.Lock()
	w.created = e
	w.step = StepDone
	w.mu.Unlock()

	if w.deps.Navigator != nil {
		w.deps.Navigator.Navigate(e.Path())
	}
	return e
}

func (w *Wizard) notifyAuthFailure(existing bool, err error) {
	n := session.Notice{Kind: session.NoticeError}
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		n.Title, n.Message = "Login failed", "Invalid email or password"
	case errors.Is(err, common.ErrEmailTaken):
		n.Title, n.Message = "Signup failed", "This email is already registered"
	case errors.Is(err, common.ErrProfileMissing):
		n.Title, n.Message = "Login failed", "We could not find your profile"
	case existing:
		n.Title, n.Message = "Login failed", "Something went wrong, please try again"
	default:
		n.Title, n.Message = "Signup failed", "Something went wrong, please try again"
	}
	w.log.Warn("authentication failed", "existing", existing, "error", err)
	w.notify(n)
}

func (w *Wizard) notify(n session.Notice) {
	if w.deps.Notifier != nil {
		w.deps.Notifier.Notify(n)
	}
}

func (d Details) trimmed() Details {
	d.EventName = strings.TrimSpace(d.EventName)
	d.Category = strings.TrimSpace(d.Category)
	d.Instructions = strings.TrimSpace(d.Instructions)
	return d
}

func (c Credentials) trimmed() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	return c
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
