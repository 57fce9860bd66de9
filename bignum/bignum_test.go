package bignum

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestRoundTripLE(t *testing.T) {
	big256 := make([]byte, 256)
	if _, err := rand.Read(big256); err != nil {
		t.Fatalf("rand: %v", err)
	}

	tests := []struct {
		name  string
		value Int
	}{
		{"zero", Zero()},
		{"one", FromUint32(1)},
		{"max32", FromUint32(0xFFFFFFFF)},
		{"2^255-1", mustHex(t, "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")},
		{"random256", FromBytesBE(big256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			natural := tt.value.ByteLen()
			for _, width := range []int{natural, natural + 1, natural + 17, 300} {
				if width < natural {
					continue
				}
				le := tt.value.BytesLE(width)
				if len(le) != width {
					t.Fatalf("BytesLE(%d) returned %d bytes", width, len(le))
				}
				back := FromBytesLE(le)
				if !back.Equal(tt.value) {
					t.Fatalf("round trip at width %d: got %s, want %s", width, back.Hex(), tt.value.Hex())
				}
			}
		})
	}
}

func TestBytesLEPadding(t *testing.T) {
	// A value shorter than the declared field width must still serialize
	// to exactly that width, padded with zeros on the high end.
	v := FromUint32(0x0102)
	got := v.BytesLE(4)
	want := []byte{0x02, 0x01, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("BytesLE(4) = %x, want %x", got, want)
	}
}

func TestArithmetic(t *testing.T) {
	n := mustHex(t, "894B645E89E1535BBDAD5B8B290650530801B18EBFBF5E8FAB3C82872A3E9BB7")
	g := FromUint32(7)
	e := FromUint32(1000)

	r := g.ModPow(e, n)
	if r.IsZero() {
		t.Fatal("g^e mod N unexpectedly zero")
	}
	if r.Cmp(n) >= 0 {
		t.Fatal("ModPow result not reduced")
	}

	// (a - b) mod N must land in [0, N) even when a < b.
	a := FromUint32(3)
	b := FromUint32(10)
	m := a.Sub(b).Mod(n)
	if m.Cmp(Zero()) < 0 || m.Cmp(n) >= 0 {
		t.Fatalf("negative subtraction not normalized: %s", m.Hex())
	}
	if !m.Add(b.Sub(a)).Mod(n).IsZero() {
		t.Fatal("modular negation inconsistent")
	}
}

func TestRandomLength(t *testing.T) {
	v, err := Random(rand.Reader, 19)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if v.ByteLen() > 19 {
		t.Fatalf("Random(19) produced %d bytes", v.ByteLen())
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := FromHex("not-hex"); err == nil {
		t.Error("FromHex accepted garbage")
	}
	if _, err := FromDecimal("12x"); err == nil {
		t.Error("FromDecimal accepted garbage")
	}
}

func TestModByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Mod by zero did not panic")
		}
	}()
	FromUint32(1).Mod(Zero())
}

func mustHex(t *testing.T, s string) Int {
	t.Helper()
	v, err := FromHex(s)
	if err != nil {
		t.Fatalf("FromHex(%q): %v", s, err)
	}
	return v
}
