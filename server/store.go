//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package server

import (
	"context"

	"chatgate/models"
)

// ChatLookup resolves a chat and its participants.
// It returns db.ErrNoRows when the chat does not exist.
type ChatLookup interface {
	GetChatWithParticipants(ctx context.Context, chatID models.ChatID) (*models.Chat, error)
}

type MessageWriter interface {
	CreateMessage(ctx context.Context, chatID models.ChatID, senderID, receiverID models.UserID, text string) (*models.Message, error)
}

// MembershipSource lists a user's chats. It returns db.ErrUserNotFound
// for unknown users.
type MembershipSource interface {
	GetUserChatIDs(ctx context.Context, userID models.UserID) ([]models.ChatID, error)
}

// SessionStore is what a session reads and writes while it runs.
type SessionStore interface {
	ChatLookup
	MessageWriter
	MembershipSource
}

// Store is everything the server needs from the storage backend.
type Store interface {
	ChatLookup
	MessageWriter
	MembershipSource

	CreateUser(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)
	UpdateUsername(ctx context.Context, id models.UserID, username string) error
	CreateChat(ctx context.Context, participantIDs []models.UserID) (*models.Chat, error)
	AddParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error
	RemoveParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error
	GetChatMessages(ctx context.Context, chatID models.ChatID, limit, offset int) ([]models.Message, error)
	Close() error
}
