package axochat

// Transport is the minimal capability set the session requires from the
// underlying connection. Implementations deliver their open, message and
// close notifications from a single goroutine, one at a time, in the order
// the connection produced them.
type Transport interface {
	// Send transmits one text frame. It fails if the connection is not
	// established yet or already closed.
	Send(text string) error

	// Close requests connection shutdown with the given close code.
	// Safe to call multiple times.
	Close(code int) error
}

// dialFunc opens a transport bound to address and begins delivering
// notifications through the given callbacks. Establishment is asynchronous:
// the returned handle exists immediately, onOpen fires once the connection
// is live, and onClose fires exactly once when it ends (including when the
// dial itself fails, with code -1).
type dialFunc func(address string, onOpen func(), onMessage func(text string), onClose func(code int, reason string)) Transport
