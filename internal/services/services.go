// Package services maps storage rows to domain objects for the rest of the
// application. Read and write helpers log failures and return nil, an empty
// slice or false instead of an error; AuthService and StorageService return
// errors because their callers branch on them.
package services

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/storage/objectstore"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// Services groups every service built over one repository container
type Services struct {
	Users      *UserService
	Events     *EventService
	Messages   *MessageService
	Activities *ActivityService
	Items      *ItemService
	Storage    *StorageService
	Auth       *AuthService
	Dashboard  *DashboardService
}

// New wires the services
func New(repos postgres.RepositoryContainer, objects objectstore.Store, provider Authenticator, maxUpload int64) *Services {
	activities := NewActivityService(repos.Activities())
	return &Services{
		Users:      NewUserService(repos.Users()),
		Events:     NewEventService(repos.Events()),
		Messages:   NewMessageService(repos.Messages()),
		Activities: activities,
		Items:      NewItemService(repos),
		Storage:    NewStorageService(objects, maxUpload),
		Auth:       NewAuthService(provider, repos.Users()),
		Dashboard:  NewDashboardService(repos),
	}
}

var _ Authenticator = (*auth.Provider)(nil)

func logMiss(l *log.Logger, entity string, id uuid.UUID, err error) {
	if errors.Is(err, common.ErrNotFound) {
		l.Debug(entity+" not found", "id", id)
		return
	}
	l.Error("failed to load "+entity, "id", id, "error", err)
}

func emptyOnError[T any](l *log.Logger, what string, items []T, err error) []T {
	if err != nil {
		l.Error("failed to list "+what, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}
