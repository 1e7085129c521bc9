package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"chatgate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestParseInbound(t *testing.T) {
	in, err := ParseInbound([]byte(`{"type":"message","chat_id":1,"content":"hi","timestamp":"2025-02-28T09:30:00+02:00"}`), now)
	require.NoError(t, err)

	assert.Equal(t, KindMessage, in.Kind)
	assert.Equal(t, models.ChatID(1), in.ChatID)
	assert.Equal(t, "hi", in.Content)
	assert.Equal(t, time.Date(2025, 2, 28, 7, 30, 0, 0, time.UTC), in.Timestamp)
}

func TestParseInbound_DefaultsTimestamp(t *testing.T) {
	in, err := ParseInbound([]byte(`{"type":"typing","chat_id":3,"content":""}`), now)
	require.NoError(t, err)

	assert.Equal(t, KindTyping, in.Kind)
	assert.Equal(t, now, in.Timestamp)
}

func TestParseInbound_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `hello`, ErrInvalidJSON},
		{"truncated", `{"type":"message"`, ErrInvalidJSON},
		{"missing chat_id", `{"type":"message","content":"hi"}`, ErrInvalidPacket},
		{"missing type", `{"chat_id":1,"content":"hi"}`, ErrInvalidPacket},
		{"unknown type", `{"type":"shout","chat_id":1,"content":"hi"}`, ErrInvalidPacket},
		{"missing content", `{"type":"message","chat_id":1}`, ErrInvalidPacket},
		{"chat_id wrong type", `{"type":"message","chat_id":"one","content":"hi"}`, ErrInvalidPacket},
		{"array", `[1,2]`, ErrInvalidPacket},
		{"null", `null`, ErrInvalidPacket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInbound([]byte(tt.payload), now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseInbound_DescribesMissingFields(t *testing.T) {
	_, err := ParseInbound([]byte(`{"content":"hi"}`), now)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "type is required")
	assert.Contains(t, err.Error(), "chat_id is required")
}

func TestFormatMessage(t *testing.T) {
	msg := &models.Message{
		ID:         7,
		ChatID:     1,
		SenderID:   10,
		ReceiverID: 20,
		Text:       "hi",
		Timestamp:  now,
	}

	raw, err := FormatMessage(msg, now.Add(time.Second))
	require.NoError(t, err)

	var frame struct {
		Event string `json:"event"`
		Data  struct {
			ID         int64  `json:"id"`
			ChatID     int64  `json:"chat_id"`
			SenderID   int64  `json:"sender_id"`
			ReceiverID int64  `json:"receiver_id"`
			Content    string `json:"content"`
		} `json:"data"`
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))

	assert.Equal(t, EventMessage, frame.Event)
	assert.Equal(t, int64(7), frame.Data.ID)
	assert.Equal(t, int64(1), frame.Data.ChatID)
	assert.Equal(t, int64(10), frame.Data.SenderID)
	assert.Equal(t, int64(20), frame.Data.ReceiverID)
	assert.Equal(t, "hi", frame.Data.Content)
	assert.Equal(t, now.Add(time.Second), frame.Timestamp)
}

func TestFormatError(t *testing.T) {
	assert.JSONEq(t, `{"error":"Chat not found"}`, string(FormatError("Chat not found")))
}

func TestFormatAck(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := FormatAck(&models.Message{ID: 3, ChatID: 9}, now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ack","data":{"id":3,"chat_id":9},"timestamp":"2024-05-01T12:00:00Z"}`, string(raw))
}

func TestFormatBye(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	raw, err := FormatBye("maintenance", time.Time{}, now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"bye","data":{"reason":"maintenance"},"timestamp":"2024-05-01T12:00:00Z"}`, string(raw))

	until := time.Date(2024, 5, 1, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	raw, err = FormatBye("restart", until, now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"bye","data":{"reason":"restart","until":"2024-05-01T12:00:00Z"},"timestamp":"2024-05-01T12:00:00Z"}`, string(raw))
}
