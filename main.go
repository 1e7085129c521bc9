package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chatgate/config"
	"chatgate/db"
	"chatgate/logging"
	"chatgate/server"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	seed := flag.Bool("seed", false, "create demo users, a chat and messages, then exit")
	flag.Parse()

	if err := run(*seed); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		log.Info("Closing database")
		_ = store.Close()
	}()

	if seed {
		return seedDemoData(ctx, store, log)
	}

	srv := server.New(store, server.NewRegistry(), &server.ServerConfig{
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		PingInterval:        cfg.PingInterval,
		MaxFrameSize:        int64(cfg.MaxFrameSize),
		AckMessages:         cfg.AckMessages,
		HistoryDefaultLimit: cfg.HistoryDefaultLimit,
	}, log)

	shutdown := make(chan shutdownRequest, 1)
	if path := cfg.ControlSocket; path != "" && path != "off" {
		listener, err := listenControl(path)
		if err != nil {
			return fmt.Errorf("failed to create control socket: %w", err)
		}
		defer func() {
			listener.Close()
			os.Remove(path)
		}()
		log.Info("Control socket listening", zap.String("path", path))
		go serveControl(listener, srv, shutdown, log.Named("control"))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.Address())
	}()

	req := shutdownRequest{reason: "maintenance"}
	select {
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
	case req = <-shutdown:
		log.Info("Shutdown requested", zap.String("reason", req.reason), zap.Time("until", req.until))
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx, req.reason, req.until)
}

func openStore(ctx context.Context, cfg *config.Config) (server.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return db.NewPostgres(ctx, cfg.DatabaseURL())
	default:
		return db.New(cfg.DBPath)
	}
}

func seedDemoData(ctx context.Context, store db.Seeder, log *zap.Logger) error {
	res, err := db.Seed(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	log.Info("Demo data created",
		zap.Int64("alice_id", int64(res.Alice.ID)),
		zap.Int64("bob_id", int64(res.Bob.ID)),
		zap.Int64("chat_id", int64(res.Chat.ID)),
		zap.Int("messages", len(res.Messages)))
	return nil
}

type shutdownRequest struct {
	reason string
	until  time.Time
}

func listenControl(path string) (net.Listener, error) {
	// Remove existing socket file
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return net.Listen("unix", path)
}

func serveControl(listener net.Listener, srv *server.Server, shutdown chan<- shutdownRequest, log *zap.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("Control accept failed", zap.Error(err))
			continue
		}
		go handleControlCommand(conn, srv, shutdown)
	}
}

// statsSource is the part of the server the control socket reports on.
type statsSource interface {
	GetStats() string
}

// handleControlCommand answers one line-based command:
//
//	stats
//	shutdown[|reason[|until RFC 3339]]
func handleControlCommand(conn net.Conn, stats statsSource, shutdown chan<- shutdownRequest) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	parts := strings.SplitN(strings.TrimSpace(line), "|", 3)

	switch parts[0] {
	case "stats":
		fmt.Fprintf(conn, "OK|%s\n", stats.GetStats())

	case "shutdown":
		req := shutdownRequest{reason: "maintenance"}
		if len(parts) >= 2 && parts[1] != "" {
			req.reason = parts[1]
		}
		if len(parts) >= 3 && parts[2] != "" {
			until, err := time.Parse(time.RFC3339, parts[2])
			if err != nil {
				fmt.Fprintf(conn, "ERROR|Invalid completion time\n")
				return
			}
			req.until = until
		}

		select {
		case shutdown <- req:
			fmt.Fprintf(conn, "OK|Shutting down\n")
		default:
			fmt.Fprintf(conn, "ERROR|Shutdown already in progress\n")
		}

	case "":
		fmt.Fprintf(conn, "ERROR|Invalid command\n")

	default:
		fmt.Fprintf(conn, "ERROR|Unknown command\n")
	}
}
