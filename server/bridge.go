package server

import (
	"context"
	"fmt"

	"chatgate/models"
)

// Bridge records authorized messages through the storage collaborator.
// It does not retry.
type Bridge struct {
	messages MessageWriter
}

func NewBridge(messages MessageWriter) *Bridge {
	return &Bridge{messages: messages}
}

func (b *Bridge) Persist(ctx context.Context, msg *AuthorizedMessage) (*models.Message, error) {
	stored, err := b.messages.CreateMessage(ctx, msg.ChatID, msg.SenderID, msg.ReceiverID, msg.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return stored, nil
}
