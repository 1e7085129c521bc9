package server

import (
	"context"
	"errors"
	"testing"

	"chatgate/db"
	"chatgate/mocks"
	"chatgate/models"
	"chatgate/protocol"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func twoPartyChat(id models.ChatID, a, b models.UserID) *models.Chat {
	return &models.Chat{ID: id, Participants: []models.User{{ID: a}, {ID: b}}}
}

func TestAuthorizer_Authorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chats := mocks.NewMockChatLookup(ctrl)
	authz := NewAuthorizer(chats)
	ctx := context.Background()

	t.Run("should authorize a participant and derive the receiver", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(1)).Return(twoPartyChat(1, 1, 2), nil)

		msg, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":1,"content":"hi"}`), 2)

		req.NoError(err)
		req.Equal(models.ChatID(1), msg.ChatID)
		req.Equal(models.UserID(2), msg.SenderID)
		req.Equal(models.UserID(1), msg.ReceiverID)
		req.Equal("hi", msg.Text)
		req.True(msg.Persistable())
	})

	t.Run("should authorize typing frames without making them persistable", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(1)).Return(twoPartyChat(1, 1, 2), nil)

		msg, err := authz.Authorize(ctx, []byte(`{"type":"typing","chat_id":1,"content":""}`), 1)

		req.NoError(err)
		req.Equal(protocol.KindTyping, msg.Kind)
		req.False(msg.Persistable())
	})

	t.Run("should reject a payload missing chat_id without a lookup", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), gomock.Any()).Times(0)

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","content":"hi"}`), 1)

		req.ErrorIs(err, ErrMalformedPayload)
		req.ErrorIs(err, protocol.ErrInvalidPacket)
		req.Equal("Invalid message format: chat_id is required", notification(err))
	})

	t.Run("should reject invalid JSON", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), gomock.Any()).Times(0)

		_, err := authz.Authorize(ctx, []byte(`{not json`), 1)

		req.ErrorIs(err, ErrMalformedPayload)
		req.Equal("Invalid JSON format", notification(err))
	})

	t.Run("should report a missing chat", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(999)).Return(nil, db.ErrNoRows)

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":999,"content":"hi"}`), 1)

		req.ErrorIs(err, ErrChatNotFound)
		req.Equal("Chat not found", notification(err))
	})

	t.Run("should reject a sender outside the chat", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(1)).Return(twoPartyChat(1, 1, 2), nil)

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":1,"content":"hi"}`), 3)

		req.ErrorIs(err, ErrNotAParticipant)
		req.Equal("User is not a participant of this chat", notification(err))
	})

	t.Run("should reject chats without exactly two participants", func(t *testing.T) {
		req := require.New(t)
		group := &models.Chat{ID: 4, Participants: []models.User{{ID: 1}, {ID: 2}, {ID: 3}}}
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(4)).Return(group, nil)

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":4,"content":"hi"}`), 1)

		req.ErrorIs(err, ErrInvalidChat)
		req.ErrorIs(err, ErrChatNotFound)
		req.Equal("Chat must have exactly two participants", notification(err))
	})

	t.Run("should reject a chat with the sender alone", func(t *testing.T) {
		req := require.New(t)
		solo := &models.Chat{ID: 5, Participants: []models.User{{ID: 1}}}
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(5)).Return(solo, nil)

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":5,"content":"hi"}`), 1)

		req.ErrorIs(err, ErrInvalidChat)
	})

	t.Run("should surface storage failures", func(t *testing.T) {
		req := require.New(t)
		chats.EXPECT().GetChatWithParticipants(gomock.Any(), models.ChatID(1)).Return(nil, errors.New("database is locked"))

		_, err := authz.Authorize(ctx, []byte(`{"type":"message","chat_id":1,"content":"hi"}`), 1)

		req.ErrorIs(err, ErrStorageUnavailable)
		req.Equal("Storage unavailable", notification(err))
	})
}

func TestBridge_Persist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := mocks.NewMockMessageWriter(ctrl)
	bridge := NewBridge(writer)
	msg := &AuthorizedMessage{Kind: protocol.KindMessage, ChatID: 1, SenderID: 1, ReceiverID: 2, Text: "hi"}

	t.Run("should return the stored message", func(t *testing.T) {
		req := require.New(t)
		stored := testMessage(1, 1, 2, "hi")
		writer.EXPECT().CreateMessage(gomock.Any(), models.ChatID(1), models.UserID(1), models.UserID(2), "hi").Return(stored, nil)

		got, err := bridge.Persist(context.Background(), msg)

		req.NoError(err)
		req.Same(stored, got)
	})

	t.Run("should wrap storage failures", func(t *testing.T) {
		req := require.New(t)
		cause := errors.New("disk full")
		writer.EXPECT().CreateMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, cause)

		_, err := bridge.Persist(context.Background(), msg)

		req.ErrorIs(err, ErrStorageUnavailable)
		req.ErrorIs(err, cause)
		req.Equal(kindStorage, classify(err))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		kind        errorKind
		recoverable bool
	}{
		{"nil", nil, kindNone, true},
		{"malformed", &malformedError{cause: protocol.ErrInvalidJSON}, kindMalformed, true},
		{"chat not found", ErrChatNotFound, kindAuthorization, true},
		{"invalid chat", ErrInvalidChat, kindAuthorization, true},
		{"not a participant", ErrNotAParticipant, kindAuthorization, true},
		{"storage", ErrStorageUnavailable, kindStorage, true},
		{"transport", ErrTransport, kindTransport, false},
		{"unknown", errors.New("boom"), kindTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, classify(tt.err))
			require.Equal(t, tt.recoverable, classify(tt.err).recoverable())
		})
	}
}
