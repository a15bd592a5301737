package services_test

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/damione1/pokersync/internal/models"
	"github.com/damione1/pokersync/internal/services"
)

// mockConn implements services.Conn for tests: queued frames are served to
// Read, written frames are recorded.
type mockConn struct {
	mu       sync.Mutex
	writes   [][]byte
	inbound  chan []byte
	done     chan struct{}
	doneOnce sync.Once
	closed   bool
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (m *mockConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case msg := <-m.inbound:
		return websocket.MessageText, msg, nil
	case <-m.done:
		return 0, nil, net.ErrClosed
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (m *mockConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return net.ErrClosed
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.writes = append(m.writes, dataCopy)
	return nil
}

func (m *mockConn) Close(status websocket.StatusCode, reason string) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.doneOnce.Do(func() { close(m.done) })
	return nil
}

func (m *mockConn) Ping(ctx context.Context) error {
	return nil
}

// Queue feeds an inbound frame to the read pump.
func (m *mockConn) Queue(data []byte) {
	m.inbound <- data
}

// Disconnect simulates the transport dropping the connection.
func (m *mockConn) Disconnect() {
	m.doneOnce.Do(func() { close(m.done) })
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// frames decodes every write recorded so far, in order.
func (m *mockConn) frames(t *testing.T) []frame {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]frame, 0, len(m.writes))
	for _, data := range m.writes {
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		result = append(result, f)
	}
	return result
}

func (m *mockConn) countFrames(t *testing.T, typ string) int {
	t.Helper()

	count := 0
	for _, f := range m.frames(t) {
		if f.Type == typ {
			count++
		}
	}
	return count
}

// waitForFrame blocks until at least n frames of the given type have been
// written and returns the n-th one.
func waitForFrame(t *testing.T, m *mockConn, typ string, n int) frame {
	t.Helper()

	require.Eventually(t, func() bool {
		return m.countFrames(t, typ) >= n
	}, 2*time.Second, 10*time.Millisecond, "expected %d %q frame(s)", n, typ)

	var matched []frame
	for _, f := range m.frames(t) {
		if f.Type == typ {
			matched = append(matched, f)
		}
	}
	return matched[n-1]
}

func event(t *testing.T, typ string, payload any) []byte {
	t.Helper()

	data, err := json.Marshal(map[string]any{"type": typ, "payload": payload})
	require.NoError(t, err)
	return data
}

func decodeSnapshot(t *testing.T, f frame) models.RoomSnapshot {
	t.Helper()

	var snap models.RoomSnapshot
	require.NoError(t, json.Unmarshal(f.Payload, &snap))
	return snap
}

func decodeVotes(t *testing.T, f frame) map[string]string {
	t.Helper()

	votes := make(map[string]string)
	require.NoError(t, json.Unmarshal(f.Payload, &votes))
	return votes
}

// stack wires a registry, manager, hub and coordinator the way serve() does.
type stack struct {
	registry *services.Registry
	manager  *services.RoomManager
	hub      *services.Hub
	co       *services.Coordinator
}

func newStack() *stack {
	metrics := services.NewMetrics()
	registry := services.NewRegistry()
	manager := services.NewRoomManager(registry, metrics)
	hub := services.NewHub(metrics)
	co := services.NewCoordinator(manager, hub, metrics)
	go hub.Run()

	return &stack{
		registry: registry,
		manager:  manager,
		hub:      hub,
		co:       co,
	}
}

// connect starts a client with running pumps over a mock connection.
func (s *stack) connect(t *testing.T, connID string) (*services.Client, *mockConn) {
	t.Helper()

	conn := newMockConn()
	client := services.NewClient(conn, s.hub, s.co, connID)
	go client.Run()
	t.Cleanup(conn.Disconnect)

	return client, conn
}
