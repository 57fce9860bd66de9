package transport

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestTCPPollNonBlocking(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serverConn := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			serverConn <- conn
		}
	}()

	tcp := NewTCP(nil)
	addr := ln.Addr().(*net.TCPAddr)
	if err := tcp.Connect("127.0.0.1", uint16(addr.Port)); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tcp.Disconnect()

	// Nothing pending: Poll must return immediately with no data.
	start := time.Now()
	data, err := tcp.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if data != nil {
		t.Fatalf("Poll returned %d unexpected bytes", len(data))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Poll blocked for %v", elapsed)
	}

	server := <-serverConn
	defer server.Close()
	if _, err := server.Write([]byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("server write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var got []byte
	for time.Now().Before(deadline) && len(got) < 2 {
		chunk, err := tcp.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		got = append(got, chunk...)
		time.Sleep(5 * time.Millisecond)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Fatalf("Poll collected %x", got)
	}
}

func TestTCPDisconnectedErrors(t *testing.T) {
	tcp := NewTCP(nil)
	if err := tcp.Send([]byte{1}); err != ErrNotConnected {
		t.Fatalf("Send = %v, want ErrNotConnected", err)
	}
	if _, err := tcp.Poll(); err != ErrNotConnected {
		t.Fatalf("Poll = %v, want ErrNotConnected", err)
	}
	tcp.Disconnect() // safe on a closed pipe
}

func TestLoopback(t *testing.T) {
	lb := NewLoopback()
	if err := lb.Connect("", 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	lb.Inject([]byte{1, 2})
	lb.Inject([]byte{3})
	data, err := lb.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Fatalf("Poll = %x", data)
	}
	if again, _ := lb.Poll(); again != nil {
		t.Fatal("Poll did not drain")
	}

	if err := lb.Send([]byte{9}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := lb.TakeSent()
	if len(sent) != 1 || !bytes.Equal(sent[0], []byte{9}) {
		t.Fatalf("Sent = %v", sent)
	}

	lb.Disconnect()
	if _, err := lb.Poll(); err != ErrNotConnected {
		t.Fatal("Poll after Disconnect should fail")
	}
}
