package entity

import "github.com/MeulenG/Puhaa-WoW/packet"

// Packed identifier format: one mask byte, then one byte per set mask
// bit, shifted into that bit's byte position of the 64-bit identifier.
// A zero mask is a complete encoding of identifier 0.

// ReadPackedGUID decodes a packed identifier from the cursor.
func ReadPackedGUID(p *packet.Packet) (uint64, error) {
	mask, err := p.ReadUint8()
	if err != nil {
		return 0, err
	}

	var guid uint64
	for i := 0; i < 8; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		b, err := p.ReadUint8()
		if err != nil {
			return 0, err
		}
		guid |= uint64(b) << (i * 8)
	}
	return guid, nil
}

// WritePackedGUID appends the packed encoding of guid to the cursor.
// Zero-valued byte positions are omitted, so small or sparse identifiers
// take as little as one byte.
func WritePackedGUID(p *packet.Packet, guid uint64) {
	var mask uint8
	var present []uint8
	for i := 0; i < 8; i++ {
		b := uint8(guid >> (i * 8))
		if b != 0 {
			mask |= 1 << i
			present = append(present, b)
		}
	}
	p.WriteUint8(mask)
	p.WriteBytes(present)
}
