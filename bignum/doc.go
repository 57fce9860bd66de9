// Package bignum implements arbitrary-precision unsigned integers with the
// byte-order conversions the legacy auth protocol requires.
//
// Protocol fields are little-endian byte arrays with fixed widths, so the
// central contract here is BytesLE/BytesBE with a minimum size: a value
// whose natural magnitude is shorter than the declared field width is
// zero-padded to exactly that width, and the conversion round-trips.
//
// Example:
//
//	a := bignum.FromBytesLE(salt)
//	b := g.ModPow(x, n)
//	wire := b.BytesLE(32) // always exactly 32 bytes
package bignum
