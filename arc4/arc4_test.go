package arc4

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"
)

func TestKnownVector(t *testing.T) {
	// Standard RC4 test vector: key "Key", plaintext "Plaintext".
	var c Cipher
	if err := c.Init([]byte("Key")); err != nil {
		t.Fatalf("Init: %v", err)
	}

	buf := []byte("Plaintext")
	c.Process(buf)

	want, _ := hex.DecodeString("BBF316E8D940AF0AD3")
	if !bytes.Equal(buf, want) {
		t.Fatalf("Process = %X, want %X", buf, want)
	}
}

func TestSymmetry(t *testing.T) {
	plain := make([]byte, 257)
	if _, err := rand.Read(plain); err != nil {
		t.Fatalf("rand: %v", err)
	}

	var enc, dec Cipher
	if err := enc.Init([]byte("shared key")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := dec.Init([]byte("shared key")); err != nil {
		t.Fatalf("Init: %v", err)
	}

	buf := append([]byte(nil), plain...)
	enc.Process(buf)
	if bytes.Equal(buf, plain) {
		t.Fatal("ciphertext equals plaintext")
	}
	dec.Process(buf)
	if !bytes.Equal(buf, plain) {
		t.Fatal("decryption did not restore plaintext")
	}
}

func TestDropSkipsKeystream(t *testing.T) {
	var a, b Cipher
	key := []byte{0x01, 0x02, 0x03}
	if err := a.Init(key); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := b.Init(key); err != nil {
		t.Fatalf("Init: %v", err)
	}

	a.Drop(1024)
	b.Process(make([]byte, 1024))

	bufA := make([]byte, 16)
	bufB := make([]byte, 16)
	a.Process(bufA)
	b.Process(bufB)
	if !bytes.Equal(bufA, bufB) {
		t.Fatal("Drop is not equivalent to processing zeros")
	}
}

func TestReinitResets(t *testing.T) {
	var c Cipher
	if err := c.Init([]byte("Key")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.Process(make([]byte, 100))

	if err := c.Init([]byte("Key")); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	buf := []byte("Plaintext")
	c.Process(buf)

	want, _ := hex.DecodeString("BBF316E8D940AF0AD3")
	if !bytes.Equal(buf, want) {
		t.Fatal("Init did not fully reset cipher state")
	}
}

func TestEmptyKey(t *testing.T) {
	var c Cipher
	if err := c.Init(nil); err != ErrEmptyKey {
		t.Fatalf("Init(nil) = %v, want ErrEmptyKey", err)
	}
}

func TestHeaderCryptMirrors(t *testing.T) {
	sessionKey := make([]byte, SessionKeySize)
	if _, err := rand.Read(sessionKey); err != nil {
		t.Fatalf("rand: %v", err)
	}

	client, err := NewHeaderCrypt(sessionKey)
	if err != nil {
		t.Fatalf("NewHeaderCrypt: %v", err)
	}
	server, err := NewHeaderCrypt(sessionKey)
	if err != nil {
		t.Fatalf("NewHeaderCrypt: %v", err)
	}

	// A header the server sends (its recv cipher mirrors the client's
	// send direction, so cross-apply) must decrypt on the client side,
	// including across multiple sequential headers.
	for i := 0; i < 5; i++ {
		header := []byte{byte(i), 0x2A, 0xEC, 0x01}
		wire := append([]byte(nil), header...)
		server.recv.Process(wire) // server's outbound stream uses the serverSeed key
		client.DecryptRecv(wire)
		if !bytes.Equal(wire, header) {
			t.Fatalf("header %d did not survive the crypt round trip", i)
		}
	}
}

func TestHeaderCryptKeySize(t *testing.T) {
	if _, err := NewHeaderCrypt(make([]byte, 16)); err == nil {
		t.Fatal("NewHeaderCrypt accepted a short session key")
	}
}
