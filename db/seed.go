package db

import (
	"context"
	"fmt"

	"chatgate/models"
)

// Seeder is the part of a storage backend used to load demo data.
type Seeder interface {
	CreateUser(ctx context.Context, username string) (*models.User, error)
	CreateChat(ctx context.Context, participantIDs []models.UserID) (*models.Chat, error)
	CreateMessage(ctx context.Context, chatID models.ChatID, senderID, receiverID models.UserID, text string) (*models.Message, error)
}

// SeedResult describes the demo data written by Seed.
type SeedResult struct {
	Alice    *models.User
	Bob      *models.User
	Chat     *models.Chat
	Messages []*models.Message
}

var demoConversation = []struct {
	fromAlice bool
	text      string
}{
	{true, "Hi, Bob!"},
	{false, "Hi, Alice!"},
	{true, "How are you?"},
	{false, "All good!"},
	{true, "What's new?"},
	{false, "Working on a project"},
}

// Seed creates two demo users, a chat between them and a short
// conversation. It fails with ErrUsernameTaken when the users exist.
func Seed(ctx context.Context, s Seeder) (*SeedResult, error) {
	alice, err := s.CreateUser(ctx, "alice")
	if err != nil {
		return nil, fmt.Errorf("create alice: %w", err)
	}
	bob, err := s.CreateUser(ctx, "bob")
	if err != nil {
		return nil, fmt.Errorf("create bob: %w", err)
	}
	chat, err := s.CreateChat(ctx, []models.UserID{alice.ID, bob.ID})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	res := &SeedResult{Alice: alice, Bob: bob, Chat: chat}
	for _, line := range demoConversation {
		from, to := bob, alice
		if line.fromAlice {
			from, to = alice, bob
		}
		msg, err := s.CreateMessage(ctx, chat.ID, from.ID, to.ID, line.text)
		if err != nil {
			return nil, fmt.Errorf("create message: %w", err)
		}
		res.Messages = append(res.Messages, msg)
	}
	return res, nil
}
