package bignum

import (
	"fmt"
	"io"
	"math/big"
)

// Int is an arbitrary-precision unsigned integer with value semantics.
// All operations return new values and never mutate their operands, so an
// Int can be shared freely between handshake computations.
type Int struct {
	v *big.Int
}

// Zero returns the zero value.
func Zero() Int {
	return Int{v: new(big.Int)}
}

// FromUint32 constructs an Int from an unsigned 32-bit value.
func FromUint32(value uint32) Int {
	return Int{v: new(big.Int).SetUint64(uint64(value))}
}

// FromBytesBE constructs an Int from a big-endian byte array.
func FromBytesBE(b []byte) Int {
	return Int{v: new(big.Int).SetBytes(b)}
}

// FromBytesLE constructs an Int from a little-endian byte array, the
// byte order used by every multi-byte protocol field.
func FromBytesLE(b []byte) Int {
	return FromBytesBE(reverse(b))
}

// FromHex parses a big-endian hexadecimal string.
func FromHex(s string) (Int, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Int{}, fmt.Errorf("bignum: invalid hex string %q", s)
	}
	if v.Sign() < 0 {
		return Int{}, fmt.Errorf("bignum: negative hex string %q", s)
	}
	return Int{v: v}, nil
}

// FromDecimal parses a decimal string.
func FromDecimal(s string) (Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, fmt.Errorf("bignum: invalid decimal string %q", s)
	}
	if v.Sign() < 0 {
		return Int{}, fmt.Errorf("bignum: negative decimal string %q", s)
	}
	return Int{v: v}, nil
}

// Random draws n bytes of entropy from r and interprets them as an
// unsigned integer. The randomness source is injected so handshake tests
// can run deterministically.
func Random(r io.Reader, n int) (Int, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Int{}, fmt.Errorf("bignum: reading %d random bytes: %w", n, err)
	}
	return FromBytesBE(buf), nil
}

// Add returns x + y.
func (x Int) Add(y Int) Int {
	return Int{v: new(big.Int).Add(x.big(), y.big())}
}

// Sub returns x - y. The result may be negative; callers reducing into a
// modular range should follow with Mod, which normalizes sign.
func (x Int) Sub(y Int) Int {
	return Int{v: new(big.Int).Sub(x.big(), y.big())}
}

// Mul returns x * y.
func (x Int) Mul(y Int) Int {
	return Int{v: new(big.Int).Mul(x.big(), y.big())}
}

// Mod returns x mod m, always in [0, m). A zero modulus is a programming
// error and panics.
func (x Int) Mod(m Int) Int {
	if m.IsZero() {
		panic("bignum: modulus is zero")
	}
	return Int{v: new(big.Int).Mod(x.big(), m.big())}
}

// ModPow returns x^e mod m. A zero modulus is a programming error and
// panics.
func (x Int) ModPow(e, m Int) Int {
	if m.IsZero() {
		panic("bignum: modulus is zero")
	}
	return Int{v: new(big.Int).Exp(x.big(), e.big(), m.big())}
}

// Equal reports whether x and y have the same value.
func (x Int) Equal(y Int) bool {
	return x.big().Cmp(y.big()) == 0
}

// Cmp compares x and y, returning -1, 0 or +1.
func (x Int) Cmp(y Int) int {
	return x.big().Cmp(y.big())
}

// IsZero reports whether x is zero.
func (x Int) IsZero() bool {
	return x.big().Sign() == 0
}

// ByteLen returns the natural byte length of x (zero for the zero value).
func (x Int) ByteLen() int {
	return (x.big().BitLen() + 7) / 8
}

// BytesBE serializes x big-endian, zero-padded on the left to at least
// minSize bytes.
func (x Int) BytesBE(minSize int) []byte {
	raw := x.big().Bytes()
	if len(raw) >= minSize {
		return raw
	}
	out := make([]byte, minSize)
	copy(out[minSize-len(raw):], raw)
	return out
}

// BytesLE serializes x little-endian, zero-padded on the high end to at
// least minSize bytes. Round-trips through FromBytesLE for any minSize
// at or above the natural length.
func (x Int) BytesLE(minSize int) []byte {
	return reverse(x.BytesBE(minSize))
}

// Hex returns the big-endian hexadecimal representation.
func (x Int) Hex() string {
	return x.big().Text(16)
}

func (x Int) big() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
