package srp

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/MeulenG/Puhaa-WoW/bignum"
)

const (
	// ephemeralBytes is the entropy drawn for the private ephemeral a.
	ephemeralBytes = 19
	// maxEphemeralRetries bounds regeneration when A turns out degenerate.
	maxEphemeralRetries = 5

	// PublicSize is the wire width of the client public ephemeral A.
	PublicSize = 32
	// ProofSize is the wire width of the proofs M1 and M2.
	ProofSize = 20
	// SessionKeySize is the width of the derived session key K.
	SessionKeySize = 40
)

// ErrNotInitialized is returned by Feed when no credentials were supplied.
var ErrNotInitialized = errors.New("srp: engine not initialized with credentials")

// multiplier k is fixed at 3 by the protocol.
var multiplier = bignum.FromUint32(3)

// Engine performs one SRP6a exchange. Create one per authentication
// attempt; it holds only ephemeral state and is not reusable after Feed.
type Engine struct {
	rand   io.Reader
	log    *logrus.Logger
	fields logrus.Fields

	identity     string
	passwordHash []byte

	publicA    [PublicSize]byte
	proofM1    [ProofSize]byte
	expectedM2 [ProofSize]byte
	sessionKey [SessionKeySize]byte
	complete   bool
}

// NewEngine creates an engine with an injected randomness source and
// logger. Passing nil selects crypto/rand and the standard logger.
func NewEngine(random io.Reader, logger *logrus.Logger) *Engine {
	if random == nil {
		random = rand.Reader
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		rand:   random,
		log:    logger,
		fields: logrus.Fields{"component": "srp"},
	}
}

// Initialize consumes the account credentials: both are upper-cased, the
// private key hash H(identity ":" secret) is derived, and the secret is
// discarded.
func (e *Engine) Initialize(identity, secret string) {
	e.identity = strings.ToUpper(identity)
	upperSecret := strings.ToUpper(secret)

	h := sha1.Sum([]byte(e.identity + ":" + upperSecret))
	e.passwordHash = h[:]

	e.log.WithFields(e.fields).WithField("identity", e.identity).
		Debug("Credentials consumed, password hash derived")
}

// Feed processes the server challenge parameters (all little-endian wire
// bytes): public ephemeral B, generator g, prime modulus N and the salt.
// On success the session key and both proofs are derived and available
// through the accessors.
func (e *Engine) Feed(serverPublic, generator, primeModulus, salt []byte) error {
	if e.passwordHash == nil {
		return ErrNotInitialized
	}
	if len(salt) != 32 {
		return fmt.Errorf("srp: salt must be 32 bytes, got %d", len(salt))
	}

	g := bignum.FromBytesLE(generator)
	n := bignum.FromBytesLE(primeModulus)
	b := bignum.FromBytesLE(serverPublic)

	if g.IsZero() {
		return errors.New("srp: generator is zero")
	}
	if n.IsZero() {
		return errors.New("srp: prime modulus is zero")
	}
	if b.Mod(n).IsZero() {
		return errors.New("srp: server public ephemeral is degenerate")
	}

	// x = H(salt || H(identity ":" secret)), little-endian.
	x := bignum.FromBytesLE(hash(salt, e.passwordHash))

	a, bigA, err := e.generateEphemeral(g, n)
	if err != nil {
		return err
	}
	aBytes := bigA.BytesLE(PublicSize)
	bBytes := b.BytesLE(PublicSize)

	// u = H(A || B), the scrambling parameter.
	u := bignum.FromBytesLE(hash(aBytes, bBytes))

	// S = (B - k*g^x)^(a + u*x) mod N. The subtraction can go negative;
	// Mod reduces it back into [0, N) before exponentiation.
	base := b.Sub(multiplier.Mul(g.ModPow(x, n))).Mod(n)
	exponent := a.Add(u.Mul(x))
	s := base.ModPow(exponent, n)

	key := interleave(s.BytesLE(PublicSize))

	// M1 = H(H(N) xor H(g) || H(identity) || salt || A || B || K).
	hn := hash(n.BytesLE(PublicSize))
	hg := hash(g.BytesLE(1))
	for i := range hn {
		hn[i] ^= hg[i]
	}
	hi := hash([]byte(e.identity))
	m1 := hash(hn, hi, salt, aBytes, bBytes, key)
	m2 := hash(aBytes, m1, key)

	copy(e.publicA[:], aBytes)
	copy(e.sessionKey[:], key)
	copy(e.proofM1[:], m1)
	copy(e.expectedM2[:], m2)
	e.complete = true

	e.log.WithFields(e.fields).WithFields(logrus.Fields{
		"identity":     e.identity,
		"modulus_bits": len(primeModulus) * 8,
	}).Info("Session key and proofs derived")

	return nil
}

// generateEphemeral draws the private ephemeral a and computes
// A = g^a mod N, retrying a bounded number of times if A is degenerate.
func (e *Engine) generateEphemeral(g, n bignum.Int) (a, bigA bignum.Int, err error) {
	for attempt := 0; attempt < maxEphemeralRetries; attempt++ {
		a, err = bignum.Random(e.rand, ephemeralBytes)
		if err != nil {
			return bignum.Zero(), bignum.Zero(), fmt.Errorf("srp: generating ephemeral: %w", err)
		}
		bigA = g.ModPow(a, n)
		if !bigA.Mod(n).IsZero() {
			return a, bigA, nil
		}
		e.log.WithFields(e.fields).WithField("attempt", attempt+1).
			Warn("Degenerate public ephemeral, regenerating")
	}
	return bignum.Zero(), bignum.Zero(),
		fmt.Errorf("srp: degenerate public ephemeral after %d attempts", maxEphemeralRetries)
}

// Public returns the client public ephemeral A, fixed at 32 bytes.
func (e *Engine) Public() [PublicSize]byte {
	return e.publicA
}

// Proof returns the client proof M1.
func (e *Engine) Proof() [ProofSize]byte {
	return e.proofM1
}

// SessionKey returns the derived 40-byte session key K.
func (e *Engine) SessionKey() [SessionKeySize]byte {
	return e.sessionKey
}

// Complete reports whether Feed has succeeded.
func (e *Engine) Complete() bool {
	return e.complete
}

// VerifyServerProof compares the received server proof against the
// precomputed M2 in constant time. A mismatch is always fatal to the
// session.
func (e *Engine) VerifyServerProof(received []byte) bool {
	if !e.complete || len(received) != ProofSize {
		return false
	}
	return subtle.ConstantTimeCompare(received, e.expectedM2[:]) == 1
}

// interleave derives the 40-byte session key from S: even-indexed bytes
// and odd-indexed bytes are hashed separately and the two digests are
// woven back together byte by byte.
func interleave(s []byte) []byte {
	half := len(s) / 2
	even := make([]byte, half)
	odd := make([]byte, half)
	for i := 0; i < half; i++ {
		even[i] = s[i*2]
		odd[i] = s[i*2+1]
	}

	hEven := hash(even)
	hOdd := hash(odd)

	key := make([]byte, len(hEven)+len(hOdd))
	for i := range hEven {
		key[i*2] = hEven[i]
		key[i*2+1] = hOdd[i]
	}
	return key
}

func hash(parts ...[]byte) []byte {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
