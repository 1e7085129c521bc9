package main

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats string

func (s fixedStats) GetStats() string { return string(s) }

func control(t *testing.T, command string, shutdown chan shutdownRequest) string {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	go handleControlCommand(serverConn, fixedStats("connections=1,users=7,delivered=0,failed=0"), shutdown)

	require.NoError(t, clientConn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err := clientConn.Write([]byte(command + "\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(clientConn).ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestControlStats(t *testing.T) {
	resp := control(t, "stats", make(chan shutdownRequest, 1))
	assert.Equal(t, "OK|connections=1,users=7,delivered=0,failed=0\n", resp)
}

func TestControlShutdown(t *testing.T) {
	shutdown := make(chan shutdownRequest, 1)

	resp := control(t, "shutdown|restart|2030-01-01T00:00:00Z", shutdown)
	assert.Equal(t, "OK|Shutting down\n", resp)

	req := <-shutdown
	assert.Equal(t, "restart", req.reason)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), req.until)
}

func TestControlShutdownDefaults(t *testing.T) {
	shutdown := make(chan shutdownRequest, 1)

	assert.Equal(t, "OK|Shutting down\n", control(t, "shutdown", shutdown))
	req := <-shutdown
	assert.Equal(t, "maintenance", req.reason)
	assert.True(t, req.until.IsZero())
}

func TestControlShutdownTwice(t *testing.T) {
	shutdown := make(chan shutdownRequest, 1)

	assert.Equal(t, "OK|Shutting down\n", control(t, "shutdown", shutdown))
	assert.Equal(t, "ERROR|Shutdown already in progress\n", control(t, "shutdown", shutdown))
}

func TestControlErrors(t *testing.T) {
	shutdown := make(chan shutdownRequest, 1)

	assert.Equal(t, "ERROR|Unknown command\n", control(t, "reboot", shutdown))
	assert.Equal(t, "ERROR|Invalid command\n", control(t, "", shutdown))
	assert.Equal(t, "ERROR|Invalid completion time\n", control(t, "shutdown|restart|tomorrow", shutdown))
	assert.Empty(t, shutdown)
}
