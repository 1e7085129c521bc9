package server

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errFakeSend = errors.New("fake send failure")

// fakeTransport is an in-memory Transport. Frames pushed with deliver are
// returned by Receive; frames the server sends are collected in sent.
type fakeTransport struct {
	id    string
	inbox chan []byte
	sent  chan []byte

	mu        sync.Mutex
	failSend  bool
	closeCode int

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeTransport(id string) *fakeTransport {
	return &fakeTransport{
		id:     id,
		inbox:  make(chan []byte, 16),
		sent:   make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ID() string {
	return f.id
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSend {
		return errFakeSend
	}
	select {
	case <-f.closed:
		return fmt.Errorf("send on closed transport %s", f.id)
	default:
	}
	f.sent <- append([]byte(nil), data...)
	return nil
}

func (f *fakeTransport) Receive() ([]byte, error) {
	select {
	case data, ok := <-f.inbox:
		if !ok {
			return nil, ErrPeerClosed
		}
		return data, nil
	case <-f.closed:
		return nil, fmt.Errorf("%w: transport %s closed", ErrTransport, f.id)
	}
}

func (f *fakeTransport) Close() error {
	return f.CloseWith(1000, "")
}

func (f *fakeTransport) CloseWith(code int, _ string) error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closeCode = code
		f.mu.Unlock()
		close(f.closed)
	})
	return nil
}

func (f *fakeTransport) deliver(frame string) {
	f.inbox <- []byte(frame)
}

// hangUp simulates the client closing the connection.
func (f *fakeTransport) hangUp() {
	close(f.inbox)
}

func (f *fakeTransport) setFailSend(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSend = fail
}

func (f *fakeTransport) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *fakeTransport) code() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCode
}

// next waits for the next frame sent to the client.
func (f *fakeTransport) next(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-f.sent:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame sent to %s", f.id)
		return nil
	}
}

// expectSilence asserts nothing is sent to the client for a short while.
func (f *fakeTransport) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case data := <-f.sent:
		t.Fatalf("unexpected frame sent to %s: %s", f.id, data)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitClosed(t *testing.T, f *fakeTransport) {
	t.Helper()
	require.Eventually(t, f.isClosed, 2*time.Second, 5*time.Millisecond, "transport %s not closed", f.id)
}
