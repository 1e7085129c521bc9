package server

import (
	"sync"

	"chatgate/models"

	"github.com/samber/lo"
)

// NoUser is passed to ConnectionsFor when nobody should be excluded.
const NoUser models.UserID = 0

// Conn is a live, writable connection owned by a session.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type chatSet map[models.ChatID]struct{}

// Registry tracks the live connection of every connected user and the chats
// each of them receives broadcasts for. It performs no I/O while holding its
// lock; callers get snapshots and write to connections unlocked.
type Registry struct {
	mu    sync.RWMutex
	conns map[models.UserID]Conn
	chats map[models.UserID]chatSet

	// pending counts sessions of a user that are still loading memberships.
	pending map[models.UserID]int
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[models.UserID]Conn),
		chats:   make(map[models.UserID]chatSet),
		pending: make(map[models.UserID]int),
	}
}

// Reserve makes Subscribe record chats for a user whose session is still
// loading memberships. Every Reserve must be paired with Release.
func (r *Registry) Reserve(userID models.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[userID]++
	if _, ok := r.chats[userID]; !ok {
		r.chats[userID] = make(chatSet)
	}
}

// Release ends a reservation. The collected set is dropped unless the user
// registered a connection meanwhile or another reservation is open.
func (r *Registry) Release(userID models.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending[userID] > 1 {
		r.pending[userID]--
		return
	}
	delete(r.pending, userID)
	if _, ok := r.conns[userID]; !ok {
		delete(r.chats, userID)
	}
}

// Register installs conn as the user's live connection. A previous
// connection for the same user is closed after the lock is released and
// returned; its membership set is kept.
func (r *Registry) Register(userID models.UserID, conn Conn) Conn {
	r.mu.Lock()
	previous, existed := r.conns[userID]
	r.conns[userID] = conn
	if _, ok := r.chats[userID]; !ok {
		r.chats[userID] = make(chatSet)
	}
	r.mu.Unlock()

	if !existed || previous.ID() == conn.ID() {
		return nil
	}
	_ = previous.Close()
	return previous
}

// Deregister removes the user's connection and membership set.
// Unknown users are ignored.
func (r *Registry) Deregister(userID models.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drop(userID)
}

// DeregisterConn removes the user only while conn is still the registered
// connection, so a superseded session cannot evict its replacement.
func (r *Registry) DeregisterConn(userID models.UserID, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	r.drop(userID)
	return true
}

// drop removes the user's connection. The membership set survives while a
// reservation is open so that the next session keeps late subscriptions.
// Callers hold r.mu.
func (r *Registry) drop(userID models.UserID) {
	delete(r.conns, userID)
	if r.pending[userID] == 0 {
		delete(r.chats, userID)
	}
}

// Subscribe adds chatID to the user's membership set. No-op for users that
// are neither registered nor reserved.
func (r *Registry) Subscribe(userID models.UserID, chatIDs ...models.ChatID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.chats[userID]
	if !ok {
		return
	}
	for _, id := range chatIDs {
		set[id] = struct{}{}
	}
}

// ConnectionsFor returns a snapshot of the connections subscribed to chatID,
// excluding exclude.
func (r *Registry) ConnectionsFor(chatID models.ChatID, exclude models.UserID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Conn
	for userID, conn := range r.conns {
		if userID != exclude && r.subscribed(userID, chatID) {
			out = append(out, conn)
		}
	}
	return out
}

// IsMember reports whether the user is registered and receives broadcasts
// for chatID.
func (r *Registry) IsMember(userID models.UserID, chatID models.ChatID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, registered := r.conns[userID]
	return registered && r.subscribed(userID, chatID)
}

// subscribed is the membership test shared by delivery filtering and
// IsMember. Callers hold r.mu.
func (r *Registry) subscribed(userID models.UserID, chatID models.ChatID) bool {
	_, ok := r.chats[userID][chatID]
	return ok
}

// Conn returns the user's live connection, if any.
func (r *Registry) Conn(userID models.UserID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Users returns the identities currently registered.
func (r *Registry) Users() []models.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.conns)
}

// Connections returns a snapshot of every registered connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.conns)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
