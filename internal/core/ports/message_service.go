package ports

import (
	"context"

	"github.com/queuejw/messenger/internal/core/domain"
)

// MessageService stores messages and lists them by recipient.
type MessageService interface {
	SendMessage(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error)
	GetMessagesForUser(ctx context.Context, userID string) ([]domain.Message, error)
}
