package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"chatgate/db"
	"chatgate/models"
	"chatgate/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the lifecycle state of a session.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	default:
		return "closed"
	}
}

// SessionOptions tune per-connection behaviour.
type SessionOptions struct {
	// AckMessages makes the session confirm every stored message to its author.
	AckMessages bool
}

// SessionController runs the receive loop of every connection: hydrate,
// register, process frames in order, deregister on exit.
type SessionController struct {
	registry   *Registry
	members    MembershipSource
	authorizer *Authorizer
	bridge     *Bridge
	router     *Router
	opts       SessionOptions
	log        *zap.Logger
	now        func() time.Time

	// onState, when set, observes every state transition.
	onState func(userID models.UserID, state State)
}

func NewSessionController(registry *Registry, store SessionStore, router *Router, opts SessionOptions, log *zap.Logger) *SessionController {
	return &SessionController{
		registry:   registry,
		members:    store,
		authorizer: NewAuthorizer(store),
		bridge:     NewBridge(store),
		router:     router,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

type session struct {
	userID    models.UserID
	transport Transport
	log       *zap.Logger
	state     atomic.Int32
	observe   func(models.UserID, State)
}

func (s *session) State() State {
	return State(s.state.Load())
}

func (s *session) transition(to State) {
	from := State(s.state.Swap(int32(to)))
	s.log.Debug("Session state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	if s.observe != nil {
		s.observe(s.userID, to)
	}
}

// Run drives one connection until it is closed. It returns nil when the peer
// disconnected or ctx was cancelled, and the failure otherwise. The user is
// deregistered and the transport closed on every path, panics included.
func (c *SessionController) Run(ctx context.Context, userID models.UserID, t Transport) (err error) {
	s := &session{
		userID:    userID,
		transport: t,
		log:       c.log.With(zap.Int64("user_id", int64(userID)), zap.String("conn_id", t.ID())),
		observe:   c.onState,
	}
	if s.observe != nil {
		s.observe(userID, StateConnecting)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = t.CloseWith(websocket.CloseGoingAway, "server shutting down")
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Session panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("%w: panic: %v", ErrTransport, r)
		}
		c.close(s, err)
	}()

	chatIDs, err := c.hydrate(ctx, s, userID)
	if err != nil {
		return c.rejectHydration(s, err)
	}

	c.registry.Subscribe(userID, chatIDs...)
	s.transition(StateActive)
	s.log.Info("Client connected", zap.Int("chats", len(chatIDs)))

	for {
		raw, err := t.Receive()
		if err != nil {
			return c.receiveFailed(ctx, s, err)
		}
		s.log.Debug("Frame received", zap.ByteString("frame", raw))

		if err := c.dispatch(s, c.handleFrame(ctx, s, raw)); err != nil {
			s.log.Warn("Closing session", zap.Error(err))
			return err
		}
	}
}

// hydrate loads the user's memberships and registers the transport. Chats
// joined over REST while the memberships load land in the reservation.
func (c *SessionController) hydrate(ctx context.Context, s *session, userID models.UserID) ([]models.ChatID, error) {
	c.registry.Reserve(userID)
	defer c.registry.Release(userID)

	chatIDs, err := c.members.GetUserChatIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.registry.Register(userID, s.transport)
	return chatIDs, nil
}

// handleFrame runs one frame through authorize, persist, broadcast and the
// optional acknowledgement.
func (c *SessionController) handleFrame(ctx context.Context, s *session, raw []byte) error {
	msg, err := c.authorizer.Authorize(ctx, raw, s.userID)
	if err != nil {
		return err
	}
	if !msg.Persistable() {
		return nil
	}

	stored, err := c.bridge.Persist(ctx, msg)
	if err != nil {
		return err
	}
	c.router.Broadcast(stored, s.userID)

	if !c.opts.AckMessages {
		return nil
	}
	ack, err := protocol.FormatAck(stored, c.now())
	if err != nil {
		return fmt.Errorf("%w: encode ack: %w", ErrTransport, err)
	}
	if err := s.transport.Send(ack); err != nil {
		return fmt.Errorf("%w: send ack: %w", ErrTransport, err)
	}
	return nil
}

// dispatch reports recoverable errors to the client and returns the ones
// that must end the session.
func (c *SessionController) dispatch(s *session, err error) error {
	kind := classify(err)
	switch kind {
	case kindNone:
		return nil
	case kindMalformed, kindAuthorization:
		s.log.Info("Frame rejected", zap.Stringer("kind", kind), zap.Error(err))
	case kindStorage:
		s.log.Error("Storage failure", zap.Error(err))
	case kindTransport:
		return err
	}

	if !kind.recoverable() {
		return err
	}
	if sendErr := s.transport.Send(protocol.FormatError(notification(err))); sendErr != nil {
		return fmt.Errorf("%w: send notification: %w", ErrTransport, sendErr)
	}
	return nil
}

func (c *SessionController) rejectHydration(s *session, err error) error {
	text, code := "Storage unavailable", websocket.CloseInternalServerErr
	if errors.Is(err, db.ErrUserNotFound) {
		text, code = "User not found", websocket.ClosePolicyViolation
		s.log.Info("Unknown user rejected")
	} else {
		s.log.Error("Failed to load chat memberships", zap.Error(err))
		err = fmt.Errorf("%w: load memberships: %w", ErrStorageUnavailable, err)
	}

	_ = s.transport.Send(protocol.FormatError(text))
	_ = s.transport.CloseWith(code, text)
	return err
}

func (c *SessionController) receiveFailed(ctx context.Context, s *session, err error) error {
	switch {
	case errors.Is(err, ErrPeerClosed):
		s.log.Info("Client disconnected")
		return nil
	case ctx.Err() != nil:
		s.log.Info("Session cancelled")
		return nil
	default:
		s.log.Warn("Transport failure", zap.Error(err))
		return err
	}
}

// close is the single exit path of every session.
func (c *SessionController) close(s *session, cause error) {
	if s.State() == StateActive {
		s.transition(StateDraining)
		if cause != nil && !errors.Is(cause, ErrPeerClosed) {
			_ = s.transport.CloseWith(websocket.CloseInternalServerErr, "")
		}
	}
	c.registry.DeregisterConn(s.userID, s.transport)
	_ = s.transport.Close()
	s.transition(StateClosed)
}
