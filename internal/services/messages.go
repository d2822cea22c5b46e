package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// MessageService reads and writes board posts
type MessageService struct {
	messageRepo postgres.MessageRepository
	log         *log.Logger
}

func NewMessageService(messageRepo postgres.MessageRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		log:         logger.Service("messages"),
	}
}

// CreateMessageInput is what a poster submits once media is uploaded
type CreateMessageInput struct {
	EventID uuid.UUID
	Content string
	Author  common.Author
	Media   *message.Media
}

// ListByEvent returns the board newest first
func (s *MessageService) ListByEvent(ctx context.Context, eventID uuid.UUID) []*message.Message {
	msgs, err := s.messageRepo.GetByEventID(ctx, eventID)
	return emptyOnError(s.log, "messages", msgs, err)
}

func (s *MessageService) GetByID(ctx context.Context, id uuid.UUID) *message.Message {
	m, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		logMiss(s.log, "message", id, err)
		return nil
	}
	return m
}

func (s *MessageService) Create(ctx context.Context, in CreateMessageInput) *message.Message {
	author := in.Author
	if common.IsGuest(author.ID) {
		author = common.GuestAuthor(author.Name)
	}

	m := message.NewMessage(in.EventID, in.Content, author, in.Media)
	if err := s.messageRepo.Create(ctx, m); err != nil {
		s.log.Error("failed to create message", "event_id", in.EventID, "error", err)
		return nil
	}

	s.log.Info("message posted", "message_id", m.ID, "event_id", m.EventID, "guest", m.IsGuest())
	return m
}

func (s *MessageService) Update(ctx context.Context, id uuid.UUID, patch message.Patch) *message.Message {
	m, err := s.messageRepo.Update(ctx, id, patch)
	if err != nil {
		s.log.Error("failed to update message", "message_id", id, "error", err)
		return nil
	}
	return m
}

func (s *MessageService) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete message", "message_id", id, "error", err)
		return false
	}
	return true
}
