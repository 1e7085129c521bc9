package models

import "time"

// UserID identifies a user. It is supplied by the transport and trusted.
type UserID int64

// ChatID identifies a two-party chat.
type ChatID int64

// ChatSize is the number of participants of every chat.
const ChatSize = 2

type User struct {
	ID        UserID     `json:"id"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Chat struct {
	ID           ChatID     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	Participants []User     `json:"participants"`
}

// ParticipantIDs returns the chat participants' identifiers in storage order.
func (c *Chat) ParticipantIDs() []UserID {
	ids := make([]UserID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// Message is a persisted chat message. Immutable once created.
type Message struct {
	ID         int64     `json:"id"`
	ChatID     ChatID    `json:"chat_id"`
	SenderID   UserID    `json:"sender_id"`
	ReceiverID UserID    `json:"receiver_id"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}
