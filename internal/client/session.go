// Package client implements the admin-side realtime session: it holds at
// most one websocket connection and feeds received events to a Receiver.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// HandshakeTimeout bounds the websocket opening handshake.
const HandshakeTimeout = 20 * time.Second

// ErrNotConnected is returned by Wait when no connection is open.
var ErrNotConnected = errors.New("realtime session not connected")

// Session owns the single live connection of a client. Reconnection is
// driven by SetIdentity calls; there is no background retry.
type Session struct {
	endpoint *url.URL
	dialer   *websocket.Dialer
	receiver *Receiver
	logger   *slog.Logger

	// opMu serializes SetIdentity and Close.
	opMu sync.Mutex

	mu       sync.Mutex
	identity *Identity
	conn     *websocket.Conn
	done     chan struct{}
	closed   bool
}

// NewSession creates a session dialling endpoint, the server's websocket
// URL (for example ws://localhost:8080/api/v1/ws).
func NewSession(endpoint string, receiver *Receiver, logger *slog.Logger) (*Session, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("endpoint scheme must be ws or wss, got %q", u.Scheme)
	}

	return &Session{
		endpoint: u,
		dialer: &websocket.Dialer{
			HandshakeTimeout: HandshakeTimeout,
		},
		receiver: receiver,
		logger:   logger.With("component", "session"),
	}, nil
}

// SetIdentity switches the session to id. Any existing connection is torn
// down before a new one is dialled, so two connections never overlap. A nil
// identity only disconnects. Setting the current identity again while
// connected is a no-op.
func (s *Session) SetIdentity(ctx context.Context, id *Identity) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session closed")
	}
	if s.conn != nil && s.identity.Equal(id) {
		s.mu.Unlock()
		return nil
	}
	s.identity = id
	s.mu.Unlock()

	s.teardown()
	if id == nil {
		return nil
	}

	conn, err := s.dial(ctx, id.Token)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.conn = conn
	s.done = done
	s.mu.Unlock()
	go s.readLoop(conn, done)

	s.logger.InfoContext(ctx, "realtime connection established", "user_id", id.UserID)
	return nil
}

func (s *Session) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	u := *s.endpoint
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, HandshakeTimeout)
	defer cancel()

	conn, resp, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// readLoop feeds frames to the receiver until the connection ends.
func (s *Session) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("realtime connection lost", "error", err)
			}
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.receiver.Handle(context.Background(), frame)
	}
}

// teardown closes the current connection and waits for its read loop.
// Callers hold opMu.
func (s *Session) teardown() {
	s.mu.Lock()
	conn, done := s.conn, s.done
	s.conn = nil
	s.done = nil
	s.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()
	<-done
}

// Connected reports whether a connection is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Wait blocks until the current connection ends or ctx is done. It returns
// nil at once when the server already closed the last connection, and
// ErrNotConnected when no connection was opened since the last disconnect.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return ErrNotConnected
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects and rejects further identity changes.
func (s *Session) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.teardown()
	return nil
}
