package axochat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/CCBlueX/axochat-client/pkg/protocol"
)

var (
	// ErrNotConnected reports an outbound operation on a session with no
	// bound transport handle. This is a usage error, not a recoverable
	// runtime condition.
	ErrNotConnected = errors.New("axochat: not connected")

	// ErrAlreadyConnected reports Connect on a session that already holds
	// a transport handle. Disconnect first.
	ErrAlreadyConnected = errors.New("axochat: already connected")
)

const closeNormal = 1000

// Session owns a single transport connection to an AxoChat server and
// mediates all envelope traffic over it. Inbound frames are decoded,
// classified and republished to subscribers; outbound operations build an
// envelope and hand it to the transport, fire-and-forget.
//
// The transport handle is guarded so outbound operations may be called from
// any goroutine. Event handlers run on the transport's notification
// goroutine and should be installed before Connect.
type Session struct {
	mu   sync.RWMutex
	conn Transport
	gen  uint64
	dial dialFunc

	openHandlers      handlerList[Transport]
	closeHandlers     handlerList[CloseEvent]
	rawHandlers       handlerList[string]
	packetHandlers    handlerList[protocol.Envelope]
	decodeErrHandlers handlerList[DecodeError]
	errorHandlers     handlerList[protocol.ErrorReason]
	messageHandlers   handlerList[protocol.ChatMessage]
	privateHandlers   handlerList[protocol.ChatMessage]
	newJWTHandlers    handlerList[string]
	successHandlers   handlerList[protocol.SuccessReason]
	userCountHandlers handlerList[protocol.UserCount]
}

// New creates a disconnected Session.
func New() *Session {
	return &Session{dial: defaultDial}
}

// Connect binds a new transport handle to address and returns immediately;
// establishment is asynchronous and reported via the open event. It fails
// with ErrAlreadyConnected while a handle is bound: the session never
// silently replaces a live connection.
func (s *Session) Connect(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return ErrAlreadyConnected
	}
	s.gen++
	gen := s.gen
	s.conn = s.dial(address,
		func() { s.handleOpen(gen) },
		func(text string) { s.handleFrame(gen, text) },
		func(code int, reason string) { s.handleClose(gen, code, reason) },
	)
	return nil
}

// Disconnect requests transport close and clears the handle, dropping to
// Disconnected immediately regardless of when the transport's own close
// notification arrives (that notification is then suppressed). Calling it
// while already disconnected is a no-op.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	if conn != nil {
		s.gen++
	}
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close(closeNormal)
	}
}

// Connected reports whether a transport handle is bound.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// LoginJWT authenticates with a token, optionally accepting private
// messages from other users.
func (s *Session) LoginJWT(token string, allowMessages bool) error {
	return s.SendPacket(protocol.KindLoginJWT, protocol.LoginJWT{Token: token, AllowMessages: allowMessages})
}

// SendMessage sends a public chat message.
func (s *Session) SendMessage(content string) error {
	return s.SendPacket(protocol.KindMessage, protocol.OutgoingMessage{Content: content})
}

// SendPrivateMessage sends a whisper to the named receiver.
func (s *Session) SendPrivateMessage(receiver, message string) error {
	return s.SendPacket(protocol.KindPrivateMessage, protocol.OutgoingPrivateMessage{Message: message, Receiver: receiver})
}

// RequestJWT asks the server to issue a token, delivered via the newJWT
// event.
func (s *Session) RequestJWT() error {
	return s.SendPacket(protocol.KindRequestJWT, nil)
}

// RequestUserCount asks for connection statistics, delivered via the
// userCount event.
func (s *Session) RequestUserCount() error {
	return s.SendPacket(protocol.KindRequestUserCount, nil)
}

// BanUser bans the user with the given UUID. Requires moderator rights;
// the outcome arrives as a success or error event.
func (s *Session) BanUser(uuid string) error {
	return s.SendPacket(protocol.KindBanUser, protocol.UserAction{User: uuid})
}

// UnbanUser lifts a ban on the user with the given UUID.
func (s *Session) UnbanUser(uuid string) error {
	return s.SendPacket(protocol.KindUnbanUser, protocol.UserAction{User: uuid})
}

// SendPacket encodes an envelope and forwards it to the transport. The
// bound-handle check is all that gates it; whether the connection has
// finished establishing is the transport's concern. No acknowledgement is
// awaited.
func (s *Session) SendPacket(kind string, payload any) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := protocol.Encode(kind, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s packet: %w", kind, err)
	}
	if err := conn.Send(string(data)); err != nil {
		return fmt.Errorf("failed to send %s packet: %w", kind, err)
	}
	return nil
}

func (s *Session) handleOpen(gen uint64) {
	s.mu.RLock()
	conn := s.conn
	current := gen == s.gen
	s.mu.RUnlock()
	if !current || conn == nil {
		return
	}
	s.openHandlers.emit(conn)
}

// handleClose clears the bound handle, so an unexpected peer close leaves
// the session disconnected and ready for a fresh Connect. Notifications
// from a handle that was already replaced or locally disconnected are
// stale and dropped.
func (s *Session) handleClose(gen uint64, code int, reason string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.gen++
	s.mu.Unlock()

	s.closeHandlers.emit(CloseEvent{Code: code, Reason: reason})
}

// handleFrame runs the inbound pipeline: rawPacket, decode, packet, typed
// event. A frame that fails to decode, either as an envelope or as the
// typed payload of a recognized kind, is reported through the decodeError
// event and dropped; session state is untouched and the next frame is
// processed normally.
func (s *Session) handleFrame(gen uint64, text string) {
	s.mu.RLock()
	current := gen == s.gen
	s.mu.RUnlock()
	if !current {
		return
	}

	s.rawHandlers.emit(text)

	env, err := protocol.Decode([]byte(text))
	if err != nil {
		s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
		return
	}

	s.packetHandlers.emit(env)

	switch protocol.Classify(env) {
	case protocol.ClassError:
		reason, err := env.ErrorReason()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.errorHandlers.emit(reason)
	case protocol.ClassMessage:
		msg, err := env.ChatMessage()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.messageHandlers.emit(msg)
	case protocol.ClassPrivateMessage:
		msg, err := env.ChatMessage()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.privateHandlers.emit(msg)
	case protocol.ClassNewJWT:
		token, err := env.Token()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.newJWTHandlers.emit(token)
	case protocol.ClassSuccess:
		reason, err := env.SuccessReason()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.successHandlers.emit(reason)
	case protocol.ClassUserCount:
		count, err := env.UserCount()
		if err != nil {
			s.decodeErrHandlers.emit(DecodeError{Err: err, Raw: text})
			return
		}
		s.userCountHandlers.emit(count)
	case protocol.ClassUnrecognized:
		// forward compatibility: no typed event for unknown kinds
	}
}
