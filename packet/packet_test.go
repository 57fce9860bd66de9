package packet

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteReadSequence(t *testing.T) {
	p := New(CMSGAuthSession)
	p.WriteUint32(12340)
	p.WriteCString("ACCOUNT")
	p.WriteUint16(0xBEEF)
	p.WriteUint64(0x1122334455667788)
	p.WriteFloat32(-8949.95)
	p.WriteBytes([]byte{0xDE, 0xAD})

	in := FromPayload(p.Opcode, p.Payload())

	build, err := in.ReadUint32()
	if err != nil || build != 12340 {
		t.Fatalf("ReadUint32 = %d, %v", build, err)
	}
	account, err := in.ReadCString()
	if err != nil || account != "ACCOUNT" {
		t.Fatalf("ReadCString = %q, %v", account, err)
	}
	v16, err := in.ReadUint16()
	if err != nil || v16 != 0xBEEF {
		t.Fatalf("ReadUint16 = %#x, %v", v16, err)
	}
	v64, err := in.ReadUint64()
	if err != nil || v64 != 0x1122334455667788 {
		t.Fatalf("ReadUint64 = %#x, %v", v64, err)
	}
	f, err := in.ReadFloat32()
	if err != nil || f != -8949.95 {
		t.Fatalf("ReadFloat32 = %v, %v", f, err)
	}
	raw, err := in.ReadBytes(2)
	if err != nil || !bytes.Equal(raw, []byte{0xDE, 0xAD}) {
		t.Fatalf("ReadBytes = %x, %v", raw, err)
	}
	if in.Remaining() != 0 {
		t.Fatalf("Remaining = %d after full read", in.Remaining())
	}
}

func TestLittleEndianLayout(t *testing.T) {
	p := New(0)
	p.WriteUint32(0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(p.Payload(), want) {
		t.Fatalf("payload = %x, want %x", p.Payload(), want)
	}
}

func TestShortReads(t *testing.T) {
	tests := []struct {
		name string
		read func(p *Packet) error
	}{
		{"uint16", func(p *Packet) error { _, err := p.ReadUint16(); return err }},
		{"uint32", func(p *Packet) error { _, err := p.ReadUint32(); return err }},
		{"uint64", func(p *Packet) error { _, err := p.ReadUint64(); return err }},
		{"bytes", func(p *Packet) error { _, err := p.ReadBytes(2); return err }},
		{"cstring", func(p *Packet) error { _, err := p.ReadCString(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromPayload(0, []byte{0x41})
			if err := tt.read(p); !errors.Is(err, ErrShortRead) {
				t.Fatalf("got %v, want ErrShortRead", err)
			}
		})
	}
}

func TestRewind(t *testing.T) {
	p := FromPayload(0, []byte{0x01, 0x02, 0x03})

	b, err := p.ReadUint8()
	if err != nil || b != 0x01 {
		t.Fatalf("probe read = %#x, %v", b, err)
	}

	// Undo the probe read and consume again.
	p.SetReadPos(p.ReadPos() - 1)
	b, err = p.ReadUint8()
	if err != nil || b != 0x01 {
		t.Fatalf("re-read after rewind = %#x, %v", b, err)
	}

	p.SetReadPos(-5)
	if p.ReadPos() != 0 {
		t.Fatalf("negative rewind not clamped: %d", p.ReadPos())
	}
	p.SetReadPos(99)
	if p.ReadPos() != p.Size() {
		t.Fatalf("overlong seek not clamped: %d", p.ReadPos())
	}
}

func TestOpcodeNames(t *testing.T) {
	if got := WorldOpcodeName(SMSGAuthChallenge); got != "SMSG_AUTH_CHALLENGE" {
		t.Errorf("WorldOpcodeName = %q", got)
	}
	if got := WorldOpcodeName(0xFFF); got != "UNKNOWN(0xFFF)" {
		t.Errorf("WorldOpcodeName unknown = %q", got)
	}
	if got := AuthCommandName(AuthRealmList); got != "REALM_LIST" {
		t.Errorf("AuthCommandName = %q", got)
	}
}
