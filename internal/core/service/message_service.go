package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/ports"
)

type MessageService struct {
	messages ports.EntityStore[domain.Message]
	logger   zerolog.Logger
}

var _ ports.MessageService = (*MessageService)(nil)

func NewMessageService(messages ports.EntityStore[domain.Message], logger zerolog.Logger) *MessageService {
	return &MessageService{messages: messages, logger: logger}
}

// SendMessage stores a message. Sender and recipient are not checked against
// the user store.
func (s *MessageService) SendMessage(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error) {
	id, err := s.messages.NewID(ctx)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.messages.Create(ctx, id, msg); err != nil {
		s.logger.Error().Err(err).Str("message_id", id).Msg("failed to store message")
		return nil, err
	}

	s.logger.Debug().Str("message_id", id).Str("sender_id", senderID).Str("recipient_id", recipientID).Msg("message stored")
	return msg, nil
}

// GetMessagesForUser returns every message addressed to userID, in store
// enumeration order. The result is never nil.
func (s *MessageService) GetMessagesForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	return collect(s.messages.Find(ctx, func(m *domain.Message) bool { return m.RecipientID == userID }))
}
