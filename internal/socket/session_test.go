package socket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/pvdash/internal/protocol"
	"github.com/raphaelgruber/pvdash/internal/socket"
)

// fakeServer upgrades connections and answers a minimal subset of the
// backend protocol: connection, heartbeat and table-update.
func fakeServer(t *testing.T, snapshotData string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/ws/") {
			http.NotFound(w, r)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var msg struct {
				Action string `json:"action"`
			}
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}

			switch msg.Action {
			case "connection":
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"response":"connected"}`))
			case "heartbeat":
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"response":"heartbeat"}`))
			case "table-update":
				_ = conn.WriteMessage(websocket.TextMessage,
					[]byte(`{"response":"table-update","data":`+snapshotData+`}`))
			}
		}
	}))
}

func dialTest(t *testing.T, srv *httptest.Server, cfg socket.Config) *socket.Session {
	t.Helper()

	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	sess, err := socket.Dial(ctx, cfg)
	require.NoError(t, err, "should connect to test server")
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestDialPerformsHandshake(t *testing.T) {
	srv := fakeServer(t, `"none"`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: -1,
		RefreshInterval:   -1,
	})

	select {
	case msg := <-sess.Events():
		_, ok := msg.(protocol.Connected)
		assert.True(t, ok, "first inbound message should be Connected, got %T", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no handshake acknowledgement received")
	}
}

func TestWaitSnapshotSentinel(t *testing.T) {
	srv := fakeServer(t, `"none"`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: -1,
		RefreshInterval:   -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	snap, err := sess.WaitSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.None, "sentinel payload should decode as None")
}

func TestWaitSnapshotJobs(t *testing.T) {
	srv := fakeServer(t, `[{"filename":"a.pdf","status":"done"},{"filename":"b.pdf","status":"working"}]`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: -1,
		RefreshInterval:   -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	snap, err := sess.WaitSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Jobs, 2)
	assert.Equal(t, "a.pdf", snap.Jobs[0].Filename)
	assert.Equal(t, protocol.StatusWorking, snap.Jobs[1].Status)
}

func TestRefreshSchedulerDeliversSnapshots(t *testing.T) {
	srv := fakeServer(t, `"none"`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: -1,
		RefreshInterval:   50 * time.Millisecond,
	})

	deadline := time.After(3 * time.Second)
	snapshots := 0
	for snapshots < 2 {
		select {
		case msg, ok := <-sess.Events():
			require.True(t, ok, "event stream closed early")
			if _, isSnap := msg.(protocol.Snapshot); isSnap {
				snapshots++
			}
		case <-deadline:
			t.Fatalf("saw %d scheduled snapshots, want 2", snapshots)
		}
	}
}

func TestHeartbeatScheduler(t *testing.T) {
	srv := fakeServer(t, `"none"`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: 50 * time.Millisecond,
		RefreshInterval:   -1,
	})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg, ok := <-sess.Events():
			require.True(t, ok, "event stream closed early")
			if _, isHB := msg.(protocol.Heartbeat); isHB {
				return
			}
		case <-deadline:
			t.Fatal("no heartbeat acknowledgement observed")
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := fakeServer(t, `"none"`)
	defer srv.Close()

	sess := dialTest(t, srv, socket.Config{
		HeartbeatInterval: -1,
		RefreshInterval:   -1,
	})

	require.NoError(t, sess.Close())
	assert.NoError(t, sess.Close(), "second close should be a no-op")

	// The event stream drains and closes after teardown.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sess.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event stream did not close")
		}
	}
}
