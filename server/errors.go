package server

import (
	"errors"
	"fmt"

	"chatgate/protocol"
)

var (
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrChatNotFound       = errors.New("chat not found")
	ErrNotAParticipant    = errors.New("user is not a participant of this chat")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTransport          = errors.New("transport error")

	// ErrInvalidChat is a ChatNotFound-class error for chats that do not
	// have exactly two participants.
	ErrInvalidChat = fmt.Errorf("%w: chat must have exactly two participants", ErrChatNotFound)
)

// malformedError marks a parse failure as ErrMalformedPayload while
// keeping the parser's error reachable through errors.As.
type malformedError struct {
	cause error
}

func (e *malformedError) Error() string {
	return ErrMalformedPayload.Error() + ": " + e.cause.Error()
}

func (e *malformedError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func (e *malformedError) Unwrap() error {
	return e.cause
}

type errorKind int

const (
	kindNone errorKind = iota
	kindMalformed
	kindAuthorization
	kindStorage
	kindTransport
)

func (k errorKind) String() string {
	switch k {
	case kindNone:
		return "none"
	case kindMalformed:
		return "malformed"
	case kindAuthorization:
		return "authorization"
	case kindStorage:
		return "storage"
	default:
		return "transport"
	}
}

// classify maps an error to its kind. Anything unrecognised is treated
// as a transport failure and ends the session.
func classify(err error) errorKind {
	switch {
	case err == nil:
		return kindNone
	case errors.Is(err, ErrMalformedPayload):
		return kindMalformed
	case errors.Is(err, ErrChatNotFound), errors.Is(err, ErrNotAParticipant):
		return kindAuthorization
	case errors.Is(err, ErrStorageUnavailable):
		return kindStorage
	default:
		return kindTransport
	}
}

// recoverable reports whether the session survives an error of this kind.
func (k errorKind) recoverable() bool {
	switch k {
	case kindNone, kindMalformed, kindAuthorization, kindStorage:
		return true
	default:
		return false
	}
}

// notification is the text sent to the client for a recoverable error.
func notification(err error) string {
	switch classify(err) {
	case kindMalformed:
		if errors.Is(err, protocol.ErrInvalidJSON) {
			return "Invalid JSON format"
		}
		var pe *protocol.PacketError
		if errors.As(err, &pe) {
			return "Invalid message format: " + pe.Detail
		}
		return "Invalid message format"
	case kindAuthorization:
		switch {
		case errors.Is(err, ErrInvalidChat):
			return "Chat must have exactly two participants"
		case errors.Is(err, ErrChatNotFound):
			return "Chat not found"
		default:
			return "User is not a participant of this chat"
		}
	case kindStorage:
		return "Storage unavailable"
	default:
		return "Internal error"
	}
}
