package packet

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortRead is returned when a read would run past the end of the
// payload. Callers treat it as a decode failure for the whole message.
var ErrShortRead = errors.New("packet: read past end of payload")

// Packet is one protocol message: an opcode tag and an opaque payload.
// A packet is either built up with the write methods before sending, or
// consumed once with the read methods after framing. All multi-byte
// integers are little-endian on the wire.
type Packet struct {
	Opcode  uint32
	payload []byte
	readPos int
}

// New creates an empty outgoing packet for the given opcode.
func New(opcode uint32) *Packet {
	return &Packet{Opcode: opcode}
}

// FromPayload wraps a framed payload in a read-only cursor. The slice is
// retained, not copied; the framer hands over ownership.
func FromPayload(opcode uint32, payload []byte) *Packet {
	return &Packet{Opcode: opcode, payload: payload}
}

// Size returns the current payload length in bytes.
func (p *Packet) Size() int {
	return len(p.payload)
}

// Payload returns the raw payload bytes.
func (p *Packet) Payload() []byte {
	return p.payload
}

// ReadPos returns the current read offset.
func (p *Packet) ReadPos() int {
	return p.readPos
}

// SetReadPos rewinds (or advances) the read offset. Used to undo a probe
// read when a parser has to peek ahead. Out-of-range offsets clamp.
func (p *Packet) SetReadPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(p.payload) {
		pos = len(p.payload)
	}
	p.readPos = pos
}

// Remaining returns the number of unread payload bytes.
func (p *Packet) Remaining() int {
	return len(p.payload) - p.readPos
}

// WriteUint8 appends one byte.
func (p *Packet) WriteUint8(v uint8) {
	p.payload = append(p.payload, v)
}

// WriteUint16 appends a little-endian 16-bit value.
func (p *Packet) WriteUint16(v uint16) {
	p.payload = binary.LittleEndian.AppendUint16(p.payload, v)
}

// WriteUint32 appends a little-endian 32-bit value.
func (p *Packet) WriteUint32(v uint32) {
	p.payload = binary.LittleEndian.AppendUint32(p.payload, v)
}

// WriteUint64 appends a little-endian 64-bit value.
func (p *Packet) WriteUint64(v uint64) {
	p.payload = binary.LittleEndian.AppendUint64(p.payload, v)
}

// WriteFloat32 appends a little-endian IEEE 754 single.
func (p *Packet) WriteFloat32(v float32) {
	p.WriteUint32(math.Float32bits(v))
}

// WriteBytes appends a raw byte span.
func (p *Packet) WriteBytes(b []byte) {
	p.payload = append(p.payload, b...)
}

// WriteCString appends s followed by a null terminator. Strings are
// null-terminated unless a message type specifies a length prefix.
func (p *Packet) WriteCString(s string) {
	p.payload = append(p.payload, s...)
	p.payload = append(p.payload, 0)
}

// WriteString appends s without a terminator, for length-prefixed fields.
func (p *Packet) WriteString(s string) {
	p.payload = append(p.payload, s...)
}

// ReadUint8 consumes one byte.
func (p *Packet) ReadUint8() (uint8, error) {
	if p.Remaining() < 1 {
		return 0, ErrShortRead
	}
	v := p.payload[p.readPos]
	p.readPos++
	return v, nil
}

// ReadUint16 consumes a little-endian 16-bit value.
func (p *Packet) ReadUint16() (uint16, error) {
	if p.Remaining() < 2 {
		return 0, ErrShortRead
	}
	v := binary.LittleEndian.Uint16(p.payload[p.readPos:])
	p.readPos += 2
	return v, nil
}

// ReadUint32 consumes a little-endian 32-bit value.
func (p *Packet) ReadUint32() (uint32, error) {
	if p.Remaining() < 4 {
		return 0, ErrShortRead
	}
	v := binary.LittleEndian.Uint32(p.payload[p.readPos:])
	p.readPos += 4
	return v, nil
}

// ReadUint64 consumes a little-endian 64-bit value.
func (p *Packet) ReadUint64() (uint64, error) {
	if p.Remaining() < 8 {
		return 0, ErrShortRead
	}
	v := binary.LittleEndian.Uint64(p.payload[p.readPos:])
	p.readPos += 8
	return v, nil
}

// ReadFloat32 consumes a little-endian IEEE 754 single.
func (p *Packet) ReadFloat32() (float32, error) {
	bits, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadBytes consumes exactly n raw bytes.
func (p *Packet) ReadBytes(n int) ([]byte, error) {
	if n < 0 || p.Remaining() < n {
		return nil, ErrShortRead
	}
	out := make([]byte, n)
	copy(out, p.payload[p.readPos:])
	p.readPos += n
	return out, nil
}

// ReadCString consumes bytes up to and including a null terminator and
// returns them as a string without the terminator.
func (p *Packet) ReadCString() (string, error) {
	for i := p.readPos; i < len(p.payload); i++ {
		if p.payload[i] == 0 {
			s := string(p.payload[p.readPos:i])
			p.readPos = i + 1
			return s, nil
		}
	}
	return "", ErrShortRead
}
