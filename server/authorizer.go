package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatgate/db"
	"chatgate/models"
	"chatgate/protocol"

	"github.com/samber/lo"
)

// AuthorizedMessage is an inbound message whose sender and receiver are both
// participants of the referenced chat.
type AuthorizedMessage struct {
	Kind       protocol.Kind
	ChatID     models.ChatID
	SenderID   models.UserID
	ReceiverID models.UserID
	Text       string
}

// Persistable reports whether the message should be stored and broadcast.
func (m *AuthorizedMessage) Persistable() bool {
	return m.Kind == protocol.KindMessage
}

// Authorizer turns raw client frames into authorized messages.
type Authorizer struct {
	chats ChatLookup
	now   func() time.Time
}

func NewAuthorizer(chats ChatLookup) *Authorizer {
	return &Authorizer{chats: chats, now: time.Now}
}

// Authorize parses raw and checks that sender participates in the
// referenced two-party chat. It never writes to storage.
func (a *Authorizer) Authorize(ctx context.Context, raw []byte, sender models.UserID) (*AuthorizedMessage, error) {
	in, err := protocol.ParseInbound(raw, a.now())
	if err != nil {
		return nil, &malformedError{cause: err}
	}

	chat, err := a.chats.GetChatWithParticipants(ctx, in.ChatID)
	switch {
	case errors.Is(err, db.ErrNoRows):
		return nil, fmt.Errorf("%w: %d", ErrChatNotFound, in.ChatID)
	case err != nil:
		return nil, fmt.Errorf("%w: load chat %d: %w", ErrStorageUnavailable, in.ChatID, err)
	}

	participants := chat.ParticipantIDs()
	if !lo.Contains(participants, sender) {
		return nil, fmt.Errorf("%w: user %d, chat %d", ErrNotAParticipant, sender, chat.ID)
	}

	receiver, err := otherParticipant(participants, sender)
	if err != nil {
		return nil, fmt.Errorf("chat %d: %w", chat.ID, err)
	}

	return &AuthorizedMessage{
		Kind:       in.Kind,
		ChatID:     chat.ID,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       in.Content,
	}, nil
}

func otherParticipant(participants []models.UserID, sender models.UserID) (models.UserID, error) {
	if len(lo.Uniq(participants)) != models.ChatSize {
		return 0, ErrInvalidChat
	}
	others := lo.Without(participants, sender)
	if len(others) != 1 {
		return 0, ErrInvalidChat
	}
	return others[0], nil
}
