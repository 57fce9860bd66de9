package auth

import (
	"fmt"
	"strings"

	"github.com/MeulenG/Puhaa-WoW/packet"
)

// challenge holds the SRP parameters extracted from a successful
// challenge reply, all in little-endian wire order.
type challenge struct {
	result        Result
	serverPublic  []byte
	generator     []byte
	modulus       []byte
	salt          []byte
	crcSalt       []byte
	securityFlags uint8
}

// buildLogonChallenge assembles the opening client packet. The client
// identifies its build and environment; platform, OS and locale are
// four-character tags transmitted reversed.
func buildLogonChallenge(cfg Config, identity string) []byte {
	body := packet.New(packet.AuthLogonChallenge)
	body.WriteCString("WoW")
	body.WriteUint8(cfg.Version[0])
	body.WriteUint8(cfg.Version[1])
	body.WriteUint8(cfg.Version[2])
	body.WriteUint16(cfg.Build)
	writeReversedTag(body, cfg.Platform)
	writeReversedTag(body, cfg.OS)
	writeReversedTag(body, cfg.Locale)
	body.WriteUint32(cfg.TimezoneBias)
	body.WriteUint32(0) // client IP, servers ignore it
	body.WriteUint8(uint8(len(identity)))
	body.WriteString(identity)

	head := packet.New(packet.AuthLogonChallenge)
	head.WriteUint8(uint8(packet.AuthLogonChallenge))
	head.WriteUint8(protocolVersion)
	head.WriteUint16(uint16(body.Size()))
	head.WriteBytes(body.Payload())
	return head.Payload()
}

// parseLogonChallenge extracts the SRP parameters from a framed
// challenge reply. The payload starts after the command byte.
func parseLogonChallenge(p *packet.Packet) (*challenge, error) {
	if _, err := p.ReadUint8(); err != nil { // pad
		return nil, err
	}
	result, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	c := &challenge{result: Result(result)}
	if c.result != ResultSuccess {
		return c, nil
	}

	if c.serverPublic, err = p.ReadBytes(32); err != nil {
		return nil, err
	}
	gLen, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if c.generator, err = p.ReadBytes(int(gLen)); err != nil {
		return nil, err
	}
	nLen, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if c.modulus, err = p.ReadBytes(int(nLen)); err != nil {
		return nil, err
	}
	if c.salt, err = p.ReadBytes(32); err != nil {
		return nil, err
	}
	if c.crcSalt, err = p.ReadBytes(16); err != nil {
		return nil, err
	}
	if c.securityFlags, err = p.ReadUint8(); err != nil {
		return nil, err
	}
	return c, nil
}

// buildLogonProof assembles the client proof packet: public ephemeral A,
// proof M1, a zeroed file CRC and no extra security blocks.
func buildLogonProof(publicA [32]byte, proofM1 [20]byte) []byte {
	p := packet.New(packet.AuthLogonProof)
	p.WriteUint8(uint8(packet.AuthLogonProof))
	p.WriteBytes(publicA[:])
	p.WriteBytes(proofM1[:])
	p.WriteBytes(make([]byte, 20)) // client file CRC, unchecked
	p.WriteUint8(0)                // number of keys
	p.WriteUint8(0)                // security flags
	return p.Payload()
}

// parseLogonProof returns the result code and, on success, the
// 20-byte server proof M2.
func parseLogonProof(p *packet.Packet) (Result, []byte, error) {
	result, err := p.ReadUint8()
	if err != nil {
		return 0, nil, err
	}
	if Result(result) != ResultSuccess {
		return Result(result), nil, nil
	}
	m2, err := p.ReadBytes(20)
	if err != nil {
		return 0, nil, err
	}
	return ResultSuccess, m2, nil
}

// buildRealmListRequest assembles the realm list request: the command
// byte and an unused uint32.
func buildRealmListRequest() []byte {
	p := packet.New(packet.AuthRealmList)
	p.WriteUint8(uint8(packet.AuthRealmList))
	p.WriteUint32(0)
	return p.Payload()
}

// writeReversedTag writes a four-byte identifier tag: the characters
// reversed, zero-padded to four bytes ("x86" goes out as "68x\x00").
func writeReversedTag(p *packet.Packet, tag string) {
	var out [4]byte
	n := len(tag)
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		out[i] = tag[n-1-i]
	}
	p.WriteBytes(out[:])
}

// normalizeIdentity upper-cases the account name the way the wire
// expects it.
func normalizeIdentity(identity string) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("auth: empty account name")
	}
	if len(identity) > 255 {
		return "", fmt.Errorf("auth: account name too long (%d bytes)", len(identity))
	}
	return strings.ToUpper(identity), nil
}
