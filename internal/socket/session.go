// Package socket maintains the persistent websocket connection to the
// processing backend: one read loop delivering typed inbound messages,
// plus two independent schedulers for the liveness heartbeat and the
// periodic snapshot refresh.
package socket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

// Default scheduler intervals, matching the server's expectations.
const (
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultRefreshInterval   = 5 * time.Second
)

// Config configures a session.
type Config struct {
	// URL is the server base, e.g. ws://localhost:8080. http(s) schemes
	// are rewritten to ws(s).
	URL string

	// ClientID names this session in the connection path. A random UUID
	// is generated when empty.
	ClientID string

	// HeartbeatInterval is the liveness ping period. Zero means the
	// default; negative disables the heartbeat.
	HeartbeatInterval time.Duration

	// RefreshInterval is the snapshot re-poll period. Zero means the
	// default; negative disables polling (one-shot commands request
	// snapshots explicitly).
	RefreshInterval time.Duration

	Logger *slog.Logger
}

// Session is a live connection to the backend. All writes are serialized;
// inbound messages are delivered on Events in arrival order. The channel
// closes when the connection ends.
type Session struct {
	conn   *websocket.Conn
	events chan protocol.Inbound
	logger *slog.Logger

	sendMu sync.Mutex

	closeMu sync.Mutex
	closed  bool

	cancel context.CancelFunc
}

// Dial connects, performs the connection handshake and starts the read
// loop and schedulers. The session lives until Close is called, ctx is
// cancelled, or the server drops the connection.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.New().String()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}

	endpoint := cfg.URL
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + cfg.ClientID

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		conn:   conn,
		events: make(chan protocol.Inbound, 16),
		logger: cfg.Logger,
		cancel: cancel,
	}

	if err := s.Send(protocol.NewConnection()); err != nil {
		s.Close()
		return nil, fmt.Errorf("send connection handshake: %w", err)
	}

	go s.readLoop(runCtx)

	// Heartbeat and refresh are deliberately separate tasks so either can
	// be disabled or cancelled on its own.
	if cfg.HeartbeatInterval > 0 {
		go s.schedule(runCtx, cfg.HeartbeatInterval, protocol.NewHeartbeat())
	}
	if cfg.RefreshInterval > 0 {
		go s.schedule(runCtx, cfg.RefreshInterval, protocol.NewTableUpdate())
	}

	return s, nil
}

// Events returns the inbound message stream. The channel closes when the
// session ends.
func (s *Session) Events() <-chan protocol.Inbound {
	return s.events
}

// Send writes one outbound message. Fire-and-forget: an error is terminal
// for this operation only and the caller decides whether to retry.
func (s *Session) Send(msg protocol.Outbound) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Action, err)
	}
	return nil
}

// RequestSnapshot asks the server for a fresh job listing.
func (s *Session) RequestSnapshot() error {
	return s.Send(protocol.NewTableUpdate())
}

// Close tears the connection down. Safe to call more than once.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return s.conn.Close()
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.events)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			s.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}

		if unk, ok := msg.(protocol.Unknown); ok {
			s.logger.Warn("unexpected response type", "response", unk.Response)
			continue
		}

		select {
		case s.events <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) schedule(ctx context.Context, interval time.Duration, msg protocol.Outbound) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Send(msg); err != nil {
				s.logger.Warn("scheduled send failed", "action", msg.Action, "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// WaitSnapshot requests a snapshot and blocks until one arrives or ctx
// expires. Other inbound messages received in the meantime are discarded;
// use the event stream directly when they matter.
func (s *Session) WaitSnapshot(ctx context.Context) (protocol.Snapshot, error) {
	if err := s.RequestSnapshot(); err != nil {
		return protocol.Snapshot{}, err
	}

	for {
		select {
		case msg, ok := <-s.events:
			if !ok {
				return protocol.Snapshot{}, fmt.Errorf("connection closed while waiting for snapshot")
			}
			if snap, isSnap := msg.(protocol.Snapshot); isSnap {
				return snap, nil
			}
		case <-ctx.Done():
			return protocol.Snapshot{}, ctx.Err()
		}
	}
}
