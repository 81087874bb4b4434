// Package axotest provides an in-process AxoChat server endpoint for
// exercising the client against real websocket traffic.
package axotest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/CCBlueX/axochat-client/pkg/protocol"
)

const ioWait = 5 * time.Second

// Server accepts one websocket client at a time, records every envelope it
// receives, and lets tests script responses.
type Server struct {
	httpServer *httptest.Server

	mu   sync.Mutex
	conn *websocket.Conn

	envelopes chan protocol.Envelope
}

// New starts the server. Callers must Close it when done.
func New() *Server {
	s := &Server{
		envelopes: make(chan protocol.Envelope, 16),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the ws:// address clients should dial.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
}

// Envelopes delivers every decoded frame the server received.
func (s *Server) Envelopes() <-chan protocol.Envelope {
	return s.envelopes
}

// Send encodes an envelope and pushes it to the connected client.
func (s *Server) Send(kind string, payload any) error {
	data, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}
	return s.SendRaw(string(data))
}

// SendRaw pushes one text frame verbatim, valid envelope or not.
func (s *Server) SendRaw(text string) error {
	conn, err := s.waitConn()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), ioWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(text))
}

// CloseClient closes the active connection with the given code, simulating
// an unexpected server-side close.
func (s *Server) CloseClient(code int, reason string) error {
	conn, err := s.waitConn()
	if err != nil {
		return err
	}
	return conn.Close(websocket.StatusCode(code), reason)
}

// Close shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
	s.httpServer.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		select {
		case s.envelopes <- env:
		default:
		}
	}
}

// waitConn blocks until a client has connected. The client's dial returns
// as the handshake completes, fractionally before the handler stores the
// connection, so a short poll is needed.
func (s *Server) waitConn() (*websocket.Conn, error) {
	deadline := time.Now().Add(ioWait)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			return conn, nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil, errors.New("axotest: no client connected")
}
