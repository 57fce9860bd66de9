// Package arc4 implements the RC4 stream cipher used to obfuscate world
// packet headers, plus the per-direction header crypt built on it.
//
// Only headers are ciphered; packet bodies travel in the clear. Each
// direction keys an independent keystream, derived from the 40-byte
// session key via HMAC-SHA1 with a fixed protocol seed, and drops the
// first 1024 keystream bytes before the first header.
//
// Example:
//
//	crypt, err := arc4.NewHeaderCrypt(sessionKey)
//	if err != nil {
//	    return err
//	}
//	crypt.EncryptSend(header) // in place
package arc4
