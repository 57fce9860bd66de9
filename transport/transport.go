package transport

// Transport is the byte pipe between a session and one server. A read
// that would block is "no data this cycle", never an error; Disconnect
// is safe at any point.
type Transport interface {
	// Connect establishes the connection.
	Connect(host string, port uint16) error

	// Send writes bytes to the peer.
	Send(data []byte) error

	// Poll returns any bytes received since the last call without
	// blocking. A (nil, nil) result means no data was available.
	Poll() ([]byte, error)

	// IsConnected reports whether the pipe is usable.
	IsConnected() bool

	// Disconnect tears the connection down. Idempotent.
	Disconnect()
}
