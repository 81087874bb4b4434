// Package axochat is a client for the AxoChat protocol: a JSON
// tagged-envelope chat protocol carried over a single persistent websocket
// connection.
//
// A [Session] owns the connection and republishes inbound traffic as typed
// events; outbound operations are fire-and-forget, with outcomes arriving
// later as success or error events. There is no retry, reconnection or
// outbound buffering: sending while disconnected is an error, and all
// recovery policy belongs to the caller.
//
//	session := axochat.New()
//
//	session.OnOpen(func(axochat.Transport) {
//	    session.LoginJWT(token, true)
//	})
//	session.OnMessage(func(msg protocol.ChatMessage) {
//	    fmt.Printf("[%s] %s\n", msg.Author.Name, msg.Content)
//	})
//
//	if err := session.Connect("wss://chat.example.com/ws"); err != nil {
//	    log.Fatal(err)
//	}
//
// Event handlers run synchronously on the connection's notification
// goroutine, one notification at a time; a handler that blocks delays all
// subsequent frames. Install handlers before Connect.
package axochat
