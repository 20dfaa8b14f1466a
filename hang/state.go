package hang

// ConnectionState represents the current state of one channel's WebSocket
// connection.
type ConnectionState int

const (
	// StateDisconnected means no socket exists. Also the terminal state of
	// a no-op client constructed without a logged-in identity.
	StateDisconnected ConnectionState = iota

	// StateConnecting means the client is dialing the server.
	StateConnecting

	// StateAuthenticating means the transport is open and the authenticate
	// envelope has been sent, but no success status has arrived yet.
	StateAuthenticating

	// StateOpen means the connection is authenticated and usable.
	StateOpen

	// StateClosed means the client has been explicitly closed.
	StateClosed
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent represents a state change event.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // Optional error that caused the state change
}
