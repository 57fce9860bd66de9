package transport

// Loopback is an in-memory Transport for exercising sessions without a
// network: the test side injects server bytes with Inject and inspects
// client traffic with Sent.
type Loopback struct {
	connected bool
	inbound   []byte
	outbound  [][]byte
}

// NewLoopback creates a disconnected loopback pipe.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Connect marks the pipe connected; it never fails.
func (l *Loopback) Connect(host string, port uint16) error {
	l.connected = true
	return nil
}

// Send records data on the outbound side.
func (l *Loopback) Send(data []byte) error {
	if !l.connected {
		return ErrNotConnected
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	l.outbound = append(l.outbound, cp)
	return nil
}

// Poll drains all injected bytes.
func (l *Loopback) Poll() ([]byte, error) {
	if !l.connected {
		return nil, ErrNotConnected
	}
	if len(l.inbound) == 0 {
		return nil, nil
	}
	out := l.inbound
	l.inbound = nil
	return out, nil
}

// IsConnected reports the connected flag.
func (l *Loopback) IsConnected() bool {
	return l.connected
}

// Disconnect clears all buffered state.
func (l *Loopback) Disconnect() {
	l.connected = false
	l.inbound = nil
	l.outbound = nil
}

// Inject queues bytes the next Poll will return.
func (l *Loopback) Inject(data []byte) {
	l.inbound = append(l.inbound, data...)
}

// Sent returns every Send call's payload in order.
func (l *Loopback) Sent() [][]byte {
	return l.outbound
}

// TakeSent returns and clears the recorded sends.
func (l *Loopback) TakeSent() [][]byte {
	out := l.outbound
	l.outbound = nil
	return out
}
