package arc4

import (
	"crypto/hmac"
	"crypto/sha1"
	"fmt"
)

// Fixed HMAC-SHA1 seeds the protocol assigns to each direction. The
// server keys its outbound stream with sendSeed's counterpart, so the
// client's receive cipher must use serverSeed and vice versa.
var (
	serverSeed = []byte{
		0xCC, 0x98, 0xAE, 0x04, 0xE8, 0x97, 0xEA, 0xCA,
		0x12, 0xDD, 0xC0, 0x93, 0x42, 0x91, 0x53, 0x57,
	}
	clientSeed = []byte{
		0xC2, 0xB3, 0x72, 0x3C, 0xC6, 0xAE, 0xD9, 0xB5,
		0x34, 0x3C, 0x53, 0xEE, 0x2F, 0x43, 0x67, 0xCE,
	}
)

// dropN is the keystream prefix both sides discard before the first
// header byte.
const dropN = 1024

// SessionKeySize is the derived session key length the crypt accepts.
const SessionKeySize = 40

// HeaderCrypt holds the two directional RC4 ciphers for world packet
// headers: one for headers the client sends, one for headers it
// receives. Each direction advances its keystream independently, so a
// header byte must be processed exactly once.
type HeaderCrypt struct {
	send Cipher
	recv Cipher
}

// NewHeaderCrypt derives both directional keys from the 40-byte session
// key (HMAC-SHA1 with the fixed per-direction seeds), initializes the
// ciphers and drops the mandated 1024-byte keystream prefix on each.
func NewHeaderCrypt(sessionKey []byte) (*HeaderCrypt, error) {
	if len(sessionKey) != SessionKeySize {
		return nil, fmt.Errorf("arc4: session key must be %d bytes, got %d", SessionKeySize, len(sessionKey))
	}

	hc := &HeaderCrypt{}
	if err := hc.send.Init(deriveKey(clientSeed, sessionKey)); err != nil {
		return nil, err
	}
	if err := hc.recv.Init(deriveKey(serverSeed, sessionKey)); err != nil {
		return nil, err
	}
	hc.send.Drop(dropN)
	hc.recv.Drop(dropN)

	return hc, nil
}

// EncryptSend ciphers an outbound header in place.
func (hc *HeaderCrypt) EncryptSend(header []byte) {
	hc.send.Process(header)
}

// DecryptRecv deciphers an inbound header in place.
func (hc *HeaderCrypt) DecryptRecv(header []byte) {
	hc.recv.Process(header)
}

func deriveKey(seed, sessionKey []byte) []byte {
	mac := hmac.New(sha1.New, seed)
	mac.Write(sessionKey)
	return mac.Sum(nil)
}
