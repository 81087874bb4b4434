// Package ws adapts gorilla/websocket to the transport interface the
// axochat session consumes.
package ws

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var (
	// ErrNotOpen reports a send before the dial has completed.
	ErrNotOpen = errors.New("ws: connection not established")

	// ErrClosed reports a send after Close.
	ErrClosed = errors.New("ws: connection closed")
)

// Conn is a websocket connection delivering text frames. Notifications run
// on a single goroutine: onOpen once when the dial completes, onMessage per
// text frame, and onClose exactly once when the connection ends. A failed
// dial reports onClose with code -1 and no onOpen.
type Conn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	onOpen    func()
	onMessage func(text string)
	onClose   func(code int, reason string)
}

// Dial starts connecting to address and returns the handle immediately.
func Dial(address string, onOpen func(), onMessage func(text string), onClose func(code int, reason string)) *Conn {
	c := &Conn{
		onOpen:    onOpen,
		onMessage: onMessage,
		onClose:   onClose,
	}
	go c.run(address)
	return c
}

// Send transmits one text frame.
func (c *Conn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotOpen
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close requests shutdown with the given websocket close code. Safe to call
// multiple times; later calls are no-ops.
func (c *Conn) Close(code int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}

	deadline := time.Now().Add(writeWait)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""), deadline)
	return c.conn.Close()
}

func (c *Conn) run(address string) {
	conn, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		c.onClose(-1, fmt.Sprintf("dial %s: %v", address, err))
		return
	}

	c.mu.Lock()
	if c.closed {
		// Close raced the dial; the handle was already given up.
		c.mu.Unlock()
		_ = conn.Close()
		c.onClose(websocket.CloseNormalClosure, "closed before open")
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.onOpen()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			code, reason := closeInfo(err)
			c.onClose(code, reason)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.onMessage(string(data))
	}
}

// closeInfo maps a read error to a close code and reason. Errors without a
// websocket close code, such as a torn TCP connection, report -1.
func closeInfo(err error) (int, string) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code, closeErr.Text
	}
	return -1, err.Error()
}
