package axochat

import (
	"slices"

	"github.com/CCBlueX/axochat-client/pkg/protocol"
)

// CloseEvent carries the close code and reason reported by the transport.
// Code is -1 for local faults that have no websocket close code, such as a
// failed dial.
type CloseEvent struct {
	Code   int
	Reason string
}

// DecodeError carries a frame that could not be decoded into an envelope.
// The session drops the frame and continues with the next one.
type DecodeError struct {
	Err error
	Raw string
}

// handlerList is an ordered subscriber registry for one event kind.
// Emit fans out synchronously, in subscription order. Subscribing and
// unsubscribing are not synchronized against dispatch; install handlers
// before Connect, or serialize access externally.
type handlerList[T any] struct {
	nextID  int
	entries []handlerEntry[T]
}

type handlerEntry[T any] struct {
	id int
	fn func(T)
}

func (h *handlerList[T]) subscribe(fn func(T)) func() {
	h.nextID++
	id := h.nextID
	h.entries = append(h.entries, handlerEntry[T]{id: id, fn: fn})
	return func() { h.unsubscribe(id) }
}

func (h *handlerList[T]) unsubscribe(id int) {
	for i, e := range h.entries {
		if e.id == id {
			h.entries = slices.Delete(h.entries, i, i+1)
			return
		}
	}
}

// emit iterates over a snapshot so a handler may unsubscribe itself.
func (h *handlerList[T]) emit(v T) {
	for _, e := range slices.Clone(h.entries) {
		e.fn(v)
	}
}

// OnOpen subscribes to connection establishment. The callback receives the
// live transport handle. The returned func removes the subscription.
func (s *Session) OnOpen(fn func(t Transport)) func() {
	return s.openHandlers.subscribe(fn)
}

// OnClose subscribes to transport close notifications.
func (s *Session) OnClose(fn func(e CloseEvent)) func() {
	return s.closeHandlers.subscribe(fn)
}

// OnRawPacket subscribes to every inbound frame before decoding. This is an
// observability hook; it always fires first.
func (s *Session) OnRawPacket(fn func(raw string)) func() {
	return s.rawHandlers.subscribe(fn)
}

// OnPacket subscribes to every decoded envelope, recognized or not.
func (s *Session) OnPacket(fn func(env protocol.Envelope)) func() {
	return s.packetHandlers.subscribe(fn)
}

// OnDecodeError subscribes to frames that failed to decode.
func (s *Session) OnDecodeError(fn func(e DecodeError)) func() {
	return s.decodeErrHandlers.subscribe(fn)
}

// OnError subscribes to protocol errors reported by the server. These are
// data, not faults: the session delivers them and takes no action itself.
func (s *Session) OnError(fn func(reason protocol.ErrorReason)) func() {
	return s.errorHandlers.subscribe(fn)
}

// OnMessage subscribes to public chat messages.
func (s *Session) OnMessage(fn func(msg protocol.ChatMessage)) func() {
	return s.messageHandlers.subscribe(fn)
}

// OnPrivateMessage subscribes to private chat messages.
func (s *Session) OnPrivateMessage(fn func(msg protocol.ChatMessage)) func() {
	return s.privateHandlers.subscribe(fn)
}

// OnNewJWT subscribes to tokens issued in response to RequestJWT.
func (s *Session) OnNewJWT(fn func(token string)) func() {
	return s.newJWTHandlers.subscribe(fn)
}

// OnSuccess subscribes to server acknowledgements.
func (s *Session) OnSuccess(fn func(reason protocol.SuccessReason)) func() {
	return s.successHandlers.subscribe(fn)
}

// OnUserCount subscribes to user count reports.
func (s *Session) OnUserCount(fn func(count protocol.UserCount)) func() {
	return s.userCountHandlers.subscribe(fn)
}
