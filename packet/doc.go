// Package packet implements the message envelope exchanged with both
// servers: an opcode tag plus an opaque little-endian payload, with a
// typed cursor for sequential reads and writes.
//
// Reading past the end of a payload is a decode failure, not undefined
// behavior: every read returns ErrShortRead when the remaining bytes
// cannot satisfy it, and the read offset can be rewound explicitly when
// a probe read has to be undone.
//
// Example:
//
//	p := packet.New(packet.CMSGPing)
//	p.WriteUint32(sequence)
//	p.WriteUint32(latency)
//
//	in := packet.FromPayload(packet.SMSGPong, body)
//	seq, err := in.ReadUint32()
package packet
