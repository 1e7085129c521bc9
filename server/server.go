package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"chatgate/models"
	"chatgate/protocol"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrServerClosed is returned by Serve once Shutdown has started.
var ErrServerClosed = errors.New("server closed")

type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	MaxFrameSize int64
	AckMessages  bool

	HistoryDefaultLimit int
}

type Server struct {
	store    Store
	registry *Registry
	router   *Router
	sessions *SessionController
	config   *ServerConfig
	log      *zap.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards closed and httpSrv. Serve adds to wg under it, so no
	// session can start once Shutdown has marked the server closed.
	mu      sync.Mutex
	closed  bool
	httpSrv *http.Server
}

func New(store Store, registry *Registry, config *ServerConfig, log *zap.Logger) *Server {
	if config.HistoryDefaultLimit <= 0 {
		config.HistoryDefaultLimit = 50
	}

	router := NewRouter(registry, log.Named("router"))
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		store:    store,
		registry: registry,
		router:   router,
		sessions: NewSessionController(registry, store, router, SessionOptions{AckMessages: config.AckMessages}, log.Named("session")),
		config:   config,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the HTTP and WebSocket routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	s.log.Info("Chat gateway started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve runs a session for userID over t until it closes.
func (s *Server) Serve(userID models.UserID, t Transport) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = t.CloseWith(websocket.CloseGoingAway, "server shutting down")
		return ErrServerClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()
	return s.sessions.Run(s.ctx, userID, t)
}

// Shutdown sends a bye frame to every connected client, cancels all
// sessions and waits for them to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context, reason string, until time.Time) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if bye, err := protocol.FormatBye(reason, until, time.Now()); err == nil {
		for _, conn := range s.registry.Connections() {
			_ = conn.Send(bye)
		}
	}
	s.cancel()

	var err error
	s.mu.Lock()
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	s.log.Info("Chat gateway stopped", zap.String("reason", reason))
	return err
}

// GetStats returns server statistics as a formatted string
func (s *Server) GetStats() string {
	ids := s.registry.Users()
	slices.Sort(ids)
	users := lo.Map(ids, func(id models.UserID, _ int) string {
		return strconv.FormatInt(int64(id), 10)
	})
	delivered, failed := s.router.Counters()

	return "connections=" + strconv.Itoa(s.registry.Len()) +
		",users=" + strings.Join(users, ";") +
		",delivered=" + strconv.FormatInt(delivered, 10) +
		",failed=" + strconv.FormatInt(failed, 10)
}

func (s *Server) transportOptions() TransportOptions {
	return TransportOptions{
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		PingInterval: s.config.PingInterval,
		MaxFrameSize: s.config.MaxFrameSize,
	}
}
