package world

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/MeulenG/Puhaa-WoW/arc4"
	"github.com/MeulenG/Puhaa-WoW/packet"
)

func serverFrame(opcode uint16, body []byte) []byte {
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)+2))
	binary.LittleEndian.PutUint16(frame[2:4], opcode)
	copy(frame[4:], body)
	return frame
}

func TestFramerPlaintext(t *testing.T) {
	f := NewFramer()
	f.Feed(serverFrame(0x1EC, []byte{1, 0, 0, 0, 0xEF, 0xBE, 0xAD, 0xDE}))

	p, err := f.Next()
	if err != nil || p == nil {
		t.Fatalf("Next() = %v, %v; want frame", p, err)
	}
	if p.Opcode != packet.SMSGAuthChallenge {
		t.Fatalf("opcode = 0x%X, want 0x1EC", p.Opcode)
	}
	if p.Size() != 8 {
		t.Fatalf("body size = %d, want 8", p.Size())
	}
}

func TestFramerChunkBoundaries(t *testing.T) {
	frame := serverFrame(0x1DD, []byte{1, 0, 0, 0})
	f := NewFramer()
	for i, c := range frame {
		f.Feed([]byte{c})
		p, err := f.Next()
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if i < len(frame)-1 && p != nil {
			t.Fatalf("byte %d: frame yielded early", i)
		}
		if i == len(frame)-1 && p == nil {
			t.Fatal("no frame after final byte")
		}
	}
}

func TestFramerEmptyBody(t *testing.T) {
	// Size 2 means opcode only; a valid zero-length body.
	f := NewFramer()
	f.Feed(serverFrame(0x4FF, nil))
	p, err := f.Next()
	if err != nil || p == nil {
		t.Fatalf("Next() = %v, %v; want frame", p, err)
	}
	if p.Size() != 0 {
		t.Fatalf("body size = %d, want 0", p.Size())
	}
}

func TestFramerImplausibleSize(t *testing.T) {
	f := NewFramer()
	f.Feed([]byte{0x00, 0x01, 0x00, 0x00}) // size 1 < minimum 2
	if _, err := f.Next(); err == nil {
		t.Fatal("expected size error")
	}
}

func TestFramerEncryptedRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x0F, 0xF0}, 20)
	clientCrypt, err := arc4.NewHeaderCrypt(key)
	if err != nil {
		t.Fatal(err)
	}
	// A peer crypt built from the same key mirrors both keystreams, so
	// its receive cipher doubles as the server's transmit cipher.
	serverCrypt, err := arc4.NewHeaderCrypt(key)
	if err != nil {
		t.Fatal(err)
	}

	f := NewFramer()
	f.SetCrypt(clientCrypt)

	for i := 0; i < 3; i++ {
		body := []byte{byte(i), 0xAA}
		frame := serverFrame(0x0A9, body)
		serverCrypt.DecryptRecv(frame[:4])
		f.Feed(frame)

		p, err := f.Next()
		if err != nil || p == nil {
			t.Fatalf("frame %d: Next() = %v, %v", i, p, err)
		}
		if p.Opcode != packet.SMSGUpdateObject {
			t.Fatalf("frame %d: opcode = 0x%X", i, p.Opcode)
		}
		if !bytes.Equal(p.Payload(), body) {
			t.Fatalf("frame %d: body = %x, want %x", i, p.Payload(), body)
		}
	}
}

func TestFramerHeaderDecryptedOnce(t *testing.T) {
	// Deliver an encrypted header in two chunks; the cipher must advance
	// by exactly one header.
	key := bytes.Repeat([]byte{0x42}, 40)
	clientCrypt, _ := arc4.NewHeaderCrypt(key)
	serverCrypt, _ := arc4.NewHeaderCrypt(key)

	f := NewFramer()
	f.SetCrypt(clientCrypt)

	first := serverFrame(0x1EE, []byte{12})
	serverCrypt.DecryptRecv(first[:4])
	f.Feed(first[:2])
	if p, err := f.Next(); p != nil || err != nil {
		t.Fatalf("partial header: Next() = %v, %v", p, err)
	}
	f.Feed(first[2:])
	p, err := f.Next()
	if err != nil || p == nil || p.Opcode != packet.SMSGAuthResponse {
		t.Fatalf("Next() = %v, %v; want auth response", p, err)
	}

	second := serverFrame(0x1DD, []byte{1, 0, 0, 0})
	serverCrypt.DecryptRecv(second[:4])
	f.Feed(second)
	p, err = f.Next()
	if err != nil || p == nil || p.Opcode != packet.SMSGPong {
		t.Fatalf("second Next() = %v, %v; want pong", p, err)
	}
}

func TestFrameOutgoing(t *testing.T) {
	p := packet.New(packet.CMSGPing)
	p.WriteUint32(7)
	p.WriteUint32(0)

	out := NewFramer().Frame(p)
	if len(out) != 6+8 {
		t.Fatalf("frame length = %d, want 14", len(out))
	}
	if binary.BigEndian.Uint16(out[0:2]) != 12 {
		t.Fatalf("size field = %d, want 12", binary.BigEndian.Uint16(out[0:2]))
	}
	if binary.LittleEndian.Uint32(out[2:6]) != packet.CMSGPing {
		t.Fatalf("opcode field = 0x%X", binary.LittleEndian.Uint32(out[2:6]))
	}
}
