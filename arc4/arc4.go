package arc4

import "errors"

// ErrEmptyKey is returned when Init is called with no key material.
var ErrEmptyKey = errors.New("arc4: empty key")

// Cipher is an RC4 keystream generator: a 256-byte permutation table and
// two cursor indices. Encryption and decryption are the same operation.
// The zero value is not usable; call Init first.
type Cipher struct {
	state [256]byte
	x, y  byte
	ready bool
}

// Init builds the permutation table from key using the RC4 key-scheduling
// algorithm. Calling Init again fully resets the cipher.
func (c *Cipher) Init(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	c.x, c.y = 0, 0
	for i := 0; i < 256; i++ {
		c.state[i] = byte(i)
	}

	var j byte
	for i := 0; i < 256; i++ {
		j += c.state[i] + key[i%len(key)]
		c.state[i], c.state[j] = c.state[j], c.state[i]
	}

	c.ready = true
	return nil
}

// Process XORs buf with the next len(buf) keystream bytes, in place.
// Symmetric for encryption and decryption.
func (c *Cipher) Process(buf []byte) {
	if !c.ready {
		return
	}
	for n := range buf {
		c.x++
		c.y += c.state[c.x]
		c.state[c.x], c.state[c.y] = c.state[c.y], c.state[c.x]
		buf[n] ^= c.state[c.state[c.x]+c.state[c.y]]
	}
}

// Drop discards the first n keystream bytes by running Process over a
// throwaway zero buffer. The protocol mandates skipping an initial
// keystream prefix before real header encryption begins.
func (c *Cipher) Drop(n int) {
	if n <= 0 {
		return
	}
	dummy := make([]byte, n)
	c.Process(dummy)
}
