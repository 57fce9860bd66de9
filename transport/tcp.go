package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConnected is returned when sending or polling a closed pipe.
var ErrNotConnected = errors.New("transport: not connected")

// pollChunk is the read buffer handed to each non-blocking poll.
const pollChunk = 4096

// TCP implements Transport over a single TCP connection with
// deadline-based non-blocking reads.
type TCP struct {
	log  *logrus.Logger
	conn net.Conn
	buf  []byte
}

// NewTCP creates a TCP transport. A nil logger selects the standard one.
func NewTCP(logger *logrus.Logger) *TCP {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TCP{log: logger, buf: make([]byte, pollChunk)}
}

// Connect dials host:port.
func (t *TCP) Connect(host string, port uint16) error {
	if t.conn != nil {
		t.Disconnect()
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: connecting to %s: %w", addr, err)
	}
	t.conn = conn

	t.log.WithFields(logrus.Fields{
		"component": "transport",
		"remote":    addr,
	}).Info("TCP connection established")

	return nil
}

// Send writes data to the connection.
func (t *TCP) Send(data []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	if _, err := t.conn.Write(data); err != nil {
		t.Disconnect()
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Poll reads whatever bytes are immediately available. The read deadline
// is set to now, so a stream with nothing pending returns (nil, nil)
// instead of blocking the caller's update cycle.
func (t *TCP) Poll() ([]byte, error) {
	if t.conn == nil {
		return nil, ErrNotConnected
	}

	if err := t.conn.SetReadDeadline(time.Now()); err != nil {
		return nil, fmt.Errorf("transport: setting poll deadline: %w", err)
	}

	n, err := t.conn.Read(t.buf)
	if n > 0 {
		out := make([]byte, n)
		copy(out, t.buf[:n])
		return out, nil
	}
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil // no data this cycle
		}
		t.Disconnect()
		return nil, fmt.Errorf("transport: connection lost: %w", err)
	}
	return nil, nil
}

// IsConnected reports whether the connection is open.
func (t *TCP) IsConnected() bool {
	return t.conn != nil
}

// Disconnect closes the connection. Safe to call repeatedly.
func (t *TCP) Disconnect() {
	if t.conn == nil {
		return
	}
	t.conn.Close()
	t.conn = nil
	t.log.WithField("component", "transport").Info("TCP connection closed")
}
