package auth

import (
	"encoding/binary"
	"errors"

	"github.com/MeulenG/Puhaa-WoW/packet"
)

// ErrStreamCorrupt is returned when resynchronization on the command
// stream fails. The session treats it as fatal.
var ErrStreamCorrupt = errors.New("auth: command stream corrupt")

// maxUnknownTags bounds resync attempts: after this many consecutive
// unrecognized command bytes the stream is declared corrupt.
const maxUnknownTags = 3

// Security flag bits on the challenge reply. Each set bit appends a
// fixed extra block the framer must account for.
const (
	securityPIN    = 0x01
	securityMatrix = 0x02
	securityToken  = 0x04
)

// Framer reassembles auth server replies from an unframed byte stream.
// Auth commands carry no uniform size header, so the expected length of
// each frame is derived from its leading command byte: fixed for the
// proof reply, probed from embedded length fields for the challenge and
// the realm list. Incomplete frames stay buffered until more bytes
// arrive.
type Framer struct {
	buf        []byte
	unknownRun int
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends received bytes. Chunk boundaries are meaningless; frames
// may arrive split or coalesced arbitrarily.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next returns the next complete frame as a packet whose Opcode is the
// command byte and whose payload is everything after it. A (nil, nil)
// result means no complete frame is buffered. An ErrStreamCorrupt
// result is terminal; the framer must be discarded.
func (f *Framer) Next() (*packet.Packet, error) {
	for len(f.buf) > 0 {
		tag := uint32(f.buf[0])
		size, ok := f.frameSize(tag)
		if size < 0 {
			// Unrecognized command byte: drop it and try to resync on
			// the next byte, giving up after a short run.
			f.unknownRun++
			if f.unknownRun >= maxUnknownTags {
				return nil, ErrStreamCorrupt
			}
			f.buf = f.buf[1:]
			continue
		}
		f.unknownRun = 0
		if !ok {
			return nil, nil
		}
		payload := make([]byte, size-1)
		copy(payload, f.buf[1:size])
		f.buf = f.buf[size:]
		return packet.FromPayload(tag, payload), nil
	}
	return nil, nil
}

// frameSize returns the total frame length for the command at the head
// of the buffer. ok is false when more bytes are needed to decide; a
// negative size marks an unrecognized command.
func (f *Framer) frameSize(tag uint32) (int, bool) {
	switch tag {
	case packet.AuthLogonChallenge:
		return f.challengeSize()
	case packet.AuthLogonProof:
		if len(f.buf) < 2 {
			return 0, false
		}
		// cmd, result; success appends M2, account flags, survey id
		// and an unused uint16, failure appends one unused uint16.
		if Result(f.buf[1]) == ResultSuccess {
			return 32, len(f.buf) >= 32
		}
		return 4, len(f.buf) >= 4
	case packet.AuthRealmList:
		if len(f.buf) < 3 {
			return 0, false
		}
		size := 3 + int(binary.LittleEndian.Uint16(f.buf[1:3]))
		return size, len(f.buf) >= size
	default:
		return -1, false
	}
}

// challengeSize walks the variable-length challenge reply far enough to
// learn its total size: cmd, pad, result, then on success the server
// ephemeral, length-prefixed generator and modulus, salt, CRC salt and
// a security flags byte with optional trailing blocks.
func (f *Framer) challengeSize() (int, bool) {
	if len(f.buf) < 3 {
		return 0, false
	}
	if Result(f.buf[2]) != ResultSuccess {
		return 3, true
	}

	offset := 3 + 32 // server public ephemeral B
	if len(f.buf) <= offset {
		return 0, false
	}
	offset += 1 + int(f.buf[offset]) // generator length + generator
	if len(f.buf) <= offset {
		return 0, false
	}
	offset += 1 + int(f.buf[offset]) // modulus length + modulus
	offset += 32 + 16                // salt, CRC salt
	if len(f.buf) <= offset {
		return 0, false
	}

	flags := f.buf[offset]
	offset++
	if flags&securityPIN != 0 {
		offset += 4 + 16
	}
	if flags&securityMatrix != 0 {
		offset += 12
	}
	if flags&securityToken != 0 {
		offset++
	}
	return offset, len(f.buf) >= offset
}
