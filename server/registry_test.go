package server

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"chatgate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connIDs(conns []Conn) []string {
	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.ID())
	}
	return ids
}

func TestRegistry_ConnectionsFor(t *testing.T) {
	r := NewRegistry()
	alice, bob, carol := newFakeTransport("alice"), newFakeTransport("bob"), newFakeTransport("carol")

	r.Register(1, alice)
	r.Register(2, bob)
	r.Register(3, carol)
	r.Subscribe(1, 10)
	r.Subscribe(2, 10, 20)
	r.Subscribe(3, 20)

	assert.ElementsMatch(t, []string{"alice", "bob"}, connIDs(r.ConnectionsFor(10, NoUser)))
	assert.ElementsMatch(t, []string{"bob"}, connIDs(r.ConnectionsFor(10, 1)))
	assert.ElementsMatch(t, []string{"bob", "carol"}, connIDs(r.ConnectionsFor(20, NoUser)))
	assert.Empty(t, r.ConnectionsFor(30, NoUser))

	assert.True(t, r.IsMember(2, 20))
	assert.False(t, r.IsMember(1, 20))
	assert.False(t, r.IsMember(99, 10))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	first, second := newFakeTransport("first"), newFakeTransport("second")

	assert.Nil(t, r.Register(1, first))
	r.Subscribe(1, 10)

	previous := r.Register(1, second)
	require.NotNil(t, previous)
	assert.Equal(t, "first", previous.ID())
	assert.True(t, first.isClosed(), "superseded connection must be closed")
	assert.False(t, second.isClosed())

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"second"}, connIDs(r.ConnectionsFor(10, NoUser)))

	conn, ok := r.Conn(1)
	require.True(t, ok)
	assert.Equal(t, "second", conn.ID())
}

func TestRegistry_RegisterSameConnTwice(t *testing.T) {
	r := NewRegistry()
	conn := newFakeTransport("c")

	r.Register(1, conn)
	assert.Nil(t, r.Register(1, conn))
	assert.False(t, conn.isClosed())
}

func TestRegistry_DeregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register(1, newFakeTransport("a"))
	r.Subscribe(1, 10)

	r.Deregister(1)
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.IsMember(1, 10))
	assert.Empty(t, r.ConnectionsFor(10, NoUser))

	r.Deregister(1)
	r.Deregister(42)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DeregisterConnIgnoresStaleConnection(t *testing.T) {
	r := NewRegistry()
	old, current := newFakeTransport("old"), newFakeTransport("current")

	r.Register(1, old)
	r.Register(1, current)
	r.Subscribe(1, 10)

	assert.False(t, r.DeregisterConn(1, old))
	assert.Equal(t, []string{"current"}, connIDs(r.ConnectionsFor(10, NoUser)))

	assert.True(t, r.DeregisterConn(1, current))
	assert.Empty(t, r.ConnectionsFor(10, NoUser))
	assert.False(t, r.DeregisterConn(1, current))
}

func TestRegistry_SubscribeUnregistered(t *testing.T) {
	r := NewRegistry()
	r.Subscribe(1, 10)

	assert.False(t, r.IsMember(1, 10))
	assert.Equal(t, 0, r.Len())

	// A later registration starts with an empty set.
	r.Register(1, newFakeTransport("a"))
	assert.False(t, r.IsMember(1, 10))
}

func TestRegistry_NeverReturnsDeregistered(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRegistry()
	live := map[models.UserID]bool{}

	for step := 0; step < 2000; step++ {
		user := models.UserID(rng.Intn(8) + 1)
		switch rng.Intn(3) {
		case 0:
			r.Register(user, newFakeTransport(fmt.Sprintf("u%d-%d", user, step)))
			r.Subscribe(user, 1)
			live[user] = true
		case 1:
			r.Deregister(user)
			live[user] = false
		case 2:
			if conn, ok := r.Conn(user); ok {
				r.DeregisterConn(user, conn)
				live[user] = false
			}
		}

		for _, conn := range r.ConnectionsFor(1, NoUser) {
			var owner models.UserID
			_, err := fmt.Sscanf(conn.ID(), "u%d-", &owner)
			require.NoError(t, err)
			require.True(t, live[owner], "step %d: deregistered user %d returned", step, owner)
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := models.UserID(w%4 + 1)
			for i := 0; i < 500; i++ {
				conn := newFakeTransport(fmt.Sprintf("w%d-%d", w, i))
				r.Register(user, conn)
				r.Subscribe(user, models.ChatID(i%3))
				_ = r.ConnectionsFor(models.ChatID(i%3), NoUser)
				_ = r.IsMember(user, 1)
				r.DeregisterConn(user, conn)
			}
		}(w)
	}
	wg.Wait()

	// Every goroutine removed its own last connection.
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.ConnectionsFor(1, NoUser))
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.Register(1, newFakeTransport("a"))
	r.Register(2, newFakeTransport("b"))
	r.Subscribe(1, 10)
	r.Subscribe(2, 10)

	snapshot := r.ConnectionsFor(10, NoUser)
	r.Deregister(2)
	r.Register(3, newFakeTransport("c"))
	r.Subscribe(3, 10)

	assert.ElementsMatch(t, []string{"a", "b"}, connIDs(snapshot))
	assert.ElementsMatch(t, []string{"a", "c"}, connIDs(r.ConnectionsFor(10, NoUser)))
}

func TestRegistry_ReserveCollectsSubscriptions(t *testing.T) {
	r := NewRegistry()

	r.Reserve(1)
	r.Subscribe(1, 10)
	assert.False(t, r.IsMember(1, 10), "reserved users are not registered")
	assert.Empty(t, r.ConnectionsFor(10, NoUser))

	r.Register(1, newFakeTransport("a"))
	r.Release(1)
	assert.True(t, r.IsMember(1, 10))
	assert.Equal(t, []string{"a"}, connIDs(r.ConnectionsFor(10, NoUser)))
}

func TestRegistry_ReleaseWithoutRegister(t *testing.T) {
	r := NewRegistry()

	r.Reserve(1)
	r.Subscribe(1, 10)
	r.Release(1)

	r.Register(1, newFakeTransport("a"))
	assert.False(t, r.IsMember(1, 10))
}

func TestRegistry_ReservationSurvivesOldSessionExit(t *testing.T) {
	r := NewRegistry()
	old := newFakeTransport("old")
	r.Register(1, old)
	r.Subscribe(1, 10)

	// A reconnect is loading memberships when the old session exits.
	r.Reserve(1)
	require.True(t, r.DeregisterConn(1, old))
	r.Subscribe(1, 20)

	r.Register(1, newFakeTransport("new"))
	r.Release(1)
	assert.True(t, r.IsMember(1, 20))
}

func TestRegistry_NestedReservations(t *testing.T) {
	r := NewRegistry()

	r.Reserve(1)
	r.Reserve(1)
	r.Subscribe(1, 10)
	r.Release(1)

	r.Register(1, newFakeTransport("a"))
	r.Release(1)
	assert.True(t, r.IsMember(1, 10))
}
