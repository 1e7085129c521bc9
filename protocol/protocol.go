// Package protocol defines the JSON frames exchanged over a chat connection.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatgate/models"

	"github.com/go-playground/validator/v10"
)

// Kind is the type of an inbound frame.
type Kind string

const (
	KindMessage Kind = "message"
	KindTyping  Kind = "typing"
	KindRead    Kind = "read"
)

const (
	EventMessage = "message"
	EventAck     = "ack"
	EventBye     = "bye"
)

var (
	// ErrInvalidJSON is returned when a frame is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON format")
	// ErrInvalidPacket is returned when a frame is JSON but has the wrong shape.
	ErrInvalidPacket = errors.New("invalid message format")
)

// PacketError describes why a JSON frame was rejected. It matches
// ErrInvalidPacket with errors.Is.
type PacketError struct {
	Detail string
}

func (e *PacketError) Error() string {
	return ErrInvalidPacket.Error() + ": " + e.Detail
}

func (e *PacketError) Is(target error) bool {
	return target == ErrInvalidPacket
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// wireInbound mirrors the client frame. Pointers distinguish a missing
// field from its zero value.
type wireInbound struct {
	Type      *string    `json:"type" validate:"required,oneof=message typing read"`
	ChatID    *int64     `json:"chat_id" validate:"required"`
	Content   *string    `json:"content" validate:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

// Inbound is a parsed, still untrusted client frame.
type Inbound struct {
	Kind      Kind
	ChatID    models.ChatID
	Content   string
	Timestamp time.Time
}

// ParseInbound decodes and validates a raw client frame. A missing
// timestamp defaults to now (UTC).
func ParseInbound(raw []byte, now time.Time) (*Inbound, error) {
	var w wireInbound
	if err := json.Unmarshal(raw, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		var parseErr *time.ParseError
		if errors.As(err, &typeErr) || errors.As(err, &parseErr) {
			return nil, &PacketError{Detail: err.Error()}
		}
		return nil, ErrInvalidJSON
	}

	if err := validate.Struct(&w); err != nil {
		return nil, &PacketError{Detail: describe(err)}
	}

	in := &Inbound{
		Kind:      Kind(*w.Type),
		ChatID:    models.ChatID(*w.ChatID),
		Content:   *w.Content,
		Timestamp: now.UTC(),
	}
	if w.Timestamp != nil {
		in.Timestamp = w.Timestamp.UTC()
	}
	return in, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonName(fe.StructField())
		switch fe.Tag() {
		case "required":
			fields = append(fields, name+" is required")
		case "oneof":
			fields = append(fields, fmt.Sprintf("%s must be one of [%s]", name, fe.Param()))
		default:
			fields = append(fields, name+" is invalid")
		}
	}
	return strings.Join(fields, ", ")
}

func jsonName(field string) string {
	switch field {
	case "Type":
		return "type"
	case "ChatID":
		return "chat_id"
	case "Content":
		return "content"
	default:
		return strings.ToLower(field)
	}
}

// MessageData is the payload of a broadcast "message" event.
type MessageData struct {
	ID         int64         `json:"id"`
	Type       Kind          `json:"type"`
	ChatID     models.ChatID `json:"chat_id"`
	SenderID   models.UserID `json:"sender_id"`
	ReceiverID models.UserID `json:"receiver_id"`
	Content    string        `json:"content"`
	Timestamp  time.Time     `json:"timestamp"`
}

// AckData is the payload of an "ack" event sent back to the author.
type AckData struct {
	ID     int64         `json:"id"`
	ChatID models.ChatID `json:"chat_id"`
}

// ByeData tells clients the server is going away and, optionally, when it
// expects to be back.
type ByeData struct {
	Reason string     `json:"reason"`
	Until  *time.Time `json:"until,omitempty"`
}

// Outbound is a server-authored event frame.
type Outbound struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorFrame is sent only to the connection that caused the error.
type ErrorFrame struct {
	Error string `json:"error"`
}

// FormatMessage serializes the broadcast frame for a persisted message.
func FormatMessage(msg *models.Message, now time.Time) ([]byte, error) {
	return json.Marshal(Outbound{
		Event: EventMessage,
		Data: MessageData{
			ID:         msg.ID,
			Type:       KindMessage,
			ChatID:     msg.ChatID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Content:    msg.Text,
			Timestamp:  msg.Timestamp.UTC(),
		},
		Timestamp: now.UTC(),
	})
}

// FormatAck serializes the acknowledgement for a persisted message.
func FormatAck(msg *models.Message, now time.Time) ([]byte, error) {
	return json.Marshal(Outbound{
		Event:     EventAck,
		Data:      AckData{ID: msg.ID, ChatID: msg.ChatID},
		Timestamp: now.UTC(),
	})
}

// FormatBye serializes the frame sent to every client before shutdown.
// A zero until is omitted.
func FormatBye(reason string, until, now time.Time) ([]byte, error) {
	data := ByeData{Reason: reason}
	if !until.IsZero() {
		u := until.UTC()
		data.Until = &u
	}
	return json.Marshal(Outbound{Event: EventBye, Data: data, Timestamp: now.UTC()})
}

// FormatError serializes an error notification.
func FormatError(description string) []byte {
	data, _ := json.Marshal(ErrorFrame{Error: description})
	return data
}
