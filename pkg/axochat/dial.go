package axochat

import (
	"github.com/CCBlueX/axochat-client/internal/transport/ws"
)

// defaultDial connects over websocket. Tests swap the session's dial field
// for a fake transport.
func defaultDial(address string, onOpen func(), onMessage func(text string), onClose func(code int, reason string)) Transport {
	return ws.Dial(address, onOpen, onMessage, onClose)
}
