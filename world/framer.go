package world

import (
	"encoding/binary"
	"fmt"

	"github.com/MeulenG/Puhaa-WoW/arc4"
	"github.com/MeulenG/Puhaa-WoW/packet"
)

const (
	// serverHeaderSize is the inbound header: size uint16 big-endian,
	// opcode uint16 little-endian. The size field counts the opcode.
	serverHeaderSize = 4
	// clientHeaderSize is the outbound header: size uint16 big-endian,
	// opcode uint32 little-endian.
	clientHeaderSize = 6

	// maxFrameSize rejects absurd size fields before allocating; the
	// header stream is almost certainly desynchronized at that point.
	maxFrameSize = 0x7FFF
)

// Framer reassembles world server packets from the byte stream. Once a
// cipher is installed each inbound header is decrypted exactly once, as
// it is consumed from the buffer; the body is never encrypted.
type Framer struct {
	crypt *arc4.HeaderCrypt
	buf   []byte

	haveHeader bool
	opcode     uint16
	bodyLen    int
}

// NewFramer creates a framer reading plaintext headers.
func NewFramer() *Framer {
	return &Framer{}
}

// SetCrypt installs the header cipher. Every header from this point on,
// in both directions, runs through it.
func (f *Framer) SetCrypt(crypt *arc4.HeaderCrypt) {
	f.crypt = crypt
}

// Feed appends received bytes. Chunk boundaries carry no meaning.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next returns the next complete packet, or (nil, nil) when more bytes
// are needed. A size error is terminal: the cipher state no longer
// matches the stream and the connection must be dropped.
func (f *Framer) Next() (*packet.Packet, error) {
	if !f.haveHeader {
		if len(f.buf) < serverHeaderSize {
			return nil, nil
		}
		var header [serverHeaderSize]byte
		copy(header[:], f.buf)
		f.buf = f.buf[serverHeaderSize:]
		if f.crypt != nil {
			f.crypt.DecryptRecv(header[:])
		}

		size := int(binary.BigEndian.Uint16(header[0:2]))
		if size < 2 || size > maxFrameSize {
			return nil, fmt.Errorf("world: implausible frame size %d, stream desynchronized", size)
		}
		f.opcode = binary.LittleEndian.Uint16(header[2:4])
		f.bodyLen = size - 2
		f.haveHeader = true
	}

	if len(f.buf) < f.bodyLen {
		return nil, nil
	}
	body := make([]byte, f.bodyLen)
	copy(body, f.buf)
	f.buf = f.buf[f.bodyLen:]
	f.haveHeader = false
	return packet.FromPayload(uint32(f.opcode), body), nil
}

// Frame serializes an outgoing packet: the six-byte client header,
// encrypted when the cipher is active, followed by the plaintext body.
func (f *Framer) Frame(p *packet.Packet) []byte {
	out := make([]byte, clientHeaderSize+p.Size())
	binary.BigEndian.PutUint16(out[0:2], uint16(p.Size()+4))
	binary.LittleEndian.PutUint32(out[2:6], p.Opcode)
	if f.crypt != nil {
		f.crypt.EncryptSend(out[:clientHeaderSize])
	}
	copy(out[clientHeaderSize:], p.Payload())
	return out
}
