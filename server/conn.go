package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrPeerClosed is returned by Receive when the client closed the
// connection normally.
var ErrPeerClosed = errors.New("connection closed by peer")

// Transport is a connection a session can read frames from.
type Transport interface {
	Conn
	// Receive blocks until the next text frame arrives. Any error is fatal
	// for the session.
	Receive() ([]byte, error)
	// CloseWith closes the connection, telling the peer why.
	CloseWith(code int, reason string) error
}

type TransportOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	MaxFrameSize int64
}

// wsConn adapts a gorilla connection to Transport. Writes are serialized;
// a single goroutine is expected to call Receive.
type wsConn struct {
	id   string
	ws   *websocket.Conn
	opts TransportOptions

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func NewWSConn(ws *websocket.Conn, opts TransportOptions) Transport {
	c := &wsConn{
		id:   uuid.NewString(),
		ws:   ws,
		opts: opts,
		done: make(chan struct{}),
	}

	if opts.MaxFrameSize > 0 {
		ws.SetReadLimit(opts.MaxFrameSize)
	}
	if opts.ReadTimeout > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
		})
	}
	if opts.PingInterval > 0 {
		go c.pingLoop()
	}
	return c
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(c.writeDeadline()); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Receive() ([]byte, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return nil, ErrPeerClosed
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if kind != websocket.TextMessage {
		return nil, fmt.Errorf("%w: unexpected binary frame", ErrTransport)
	}
	if c.opts.ReadTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	}
	return data, nil
}

func (c *wsConn) Close() error {
	return c.CloseWith(websocket.CloseNormalClosure, "")
}

func (c *wsConn) CloseWith(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, c.writeDeadline())
		err = c.ws.Close()
	})
	return err
}

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, c.writeDeadline()); err != nil {
				// The next Receive fails once the read deadline passes.
				return
			}
		}
	}
}

func (c *wsConn) writeDeadline() time.Time {
	if c.opts.WriteTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.opts.WriteTimeout)
}
