package world

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MeulenG/Puhaa-WoW/arc4"
	"github.com/MeulenG/Puhaa-WoW/entity"
	"github.com/MeulenG/Puhaa-WoW/packet"
	"github.com/MeulenG/Puhaa-WoW/transport"
)

// State is the session's position in the world handshake and beyond.
// Failed is absorbing.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateChallengeReceived
	StateAuthSent
	StateAuthenticated
	StateReady
	StateCharListRequested
	StateCharListReceived
	StateEnteringWorld
	StateInWorld
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateChallengeReceived:
		return "ChallengeReceived"
	case StateAuthSent:
		return "AuthSent"
	case StateAuthenticated:
		return "Authenticated"
	case StateReady:
		return "Ready"
	case StateCharListRequested:
		return "CharListRequested"
	case StateCharListReceived:
		return "CharListReceived"
	case StateEnteringWorld:
		return "EnteringWorld"
	case StateInWorld:
		return "InWorld"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Config carries the session's dependencies. Zero values select
// defaults for everything but Transport.
type Config struct {
	Transport transport.Transport
	Random    io.Reader
	Logger    *logrus.Logger
	Time      TimeProvider

	// Build is the client build number reported during
	// re-authentication. Defaults to 12340.
	Build uint32

	// PingInterval is the heartbeat period while in world.
	PingInterval time.Duration

	// ChatHistoryLimit bounds the retained chat backlog.
	ChatHistoryLimit int

	// Entities receives decoded entity events. Defaults to a fresh
	// in-memory table.
	Entities entity.Table
}

func (c *Config) applyDefaults() {
	if c.Random == nil {
		c.Random = rand.Reader
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Time == nil {
		c.Time = RealTimeProvider{}
	}
	if c.Build == 0 {
		c.Build = 12340
	}
	if c.PingInterval == 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.ChatHistoryLimit == 0 {
		c.ChatHistoryLimit = 100
	}
	if c.Entities == nil {
		c.Entities = entity.NewMemoryTable()
	}
}

// Session runs the world-server connection: seed/hash authentication
// with the session key, character roster, world entry and the streamed
// game state that follows. Not safe for concurrent use; drive it from
// one goroutine via Update.
type Session struct {
	cfg    Config
	log    *logrus.Logger
	fields logrus.Fields
	framer *Framer

	state  State
	reason string

	account    string
	sessionKey []byte
	clientSeed uint32
	serverSeed uint32

	characters []Character
	position   Position
	motd       []string
	acctTimes  *AccountDataTimes

	movement     MovementInfo
	movementTime uint32

	pingSeq     uint32
	pingSentAt  time.Time
	lastPingAt  time.Time
	awaitingAck bool
	latency     uint32

	chatHistory []*ChatMessage

	decoder *entity.Decoder

	onSuccess     func()
	onFailure     func(reason string)
	onCharacters  func([]Character)
	onWorld       func(Position)
	onChat        func(*ChatMessage)
	onMotd        func([]string)
	onStateChange func(old, new State)
}

// NewSession creates a session in the Disconnected state.
func NewSession(cfg Config) *Session {
	cfg.applyDefaults()
	return &Session{
		cfg:     cfg,
		log:     cfg.Logger,
		fields:  logrus.Fields{"component": "world"},
		framer:  NewFramer(),
		state:   StateDisconnected,
		decoder: entity.NewDecoder(cfg.Logger),
	}
}

// OnSuccess registers the callback fired when world authentication
// succeeds.
func (s *Session) OnSuccess(fn func()) { s.onSuccess = fn }

// OnFailure registers the callback fired with a human-readable reason
// when the session enters Failed.
func (s *Session) OnFailure(fn func(reason string)) { s.onFailure = fn }

// OnCharacterList registers the callback fired when the roster arrives.
func (s *Session) OnCharacterList(fn func([]Character)) { s.onCharacters = fn }

// OnWorldEntered registers the callback fired when the server confirms
// world entry.
func (s *Session) OnWorldEntered(fn func(Position)) { s.onWorld = fn }

// OnChat registers the callback fired for every incoming chat message.
func (s *Session) OnChat(fn func(*ChatMessage)) { s.onChat = fn }

// OnMotd registers the callback fired when the message of the day
// arrives.
func (s *Session) OnMotd(fn func([]string)) { s.onMotd = fn }

// OnStateChange registers the callback fired on every transition.
func (s *Session) OnStateChange(fn func(old, new State)) { s.onStateChange = fn }

// State returns the current state.
func (s *Session) State() State { return s.state }

// FailReason returns the reason recorded when the session failed.
func (s *Session) FailReason() string { return s.reason }

// Characters returns the roster once received.
func (s *Session) Characters() []Character { return s.characters }

// Position returns the world entry position once in world.
func (s *Session) Position() Position { return s.position }

// Motd returns the message of the day lines, if any arrived.
func (s *Session) Motd() []string { return s.motd }

// AccountDataTimes returns the last received account data timestamps.
func (s *Session) AccountDataTimes() *AccountDataTimes { return s.acctTimes }

// Latency returns the last measured round-trip time in milliseconds.
func (s *Session) Latency() uint32 { return s.latency }

// Entities returns the entity table fed by the server's object stream.
func (s *Session) Entities() entity.Table { return s.cfg.Entities }

// ChatHistory returns up to max recent chat messages, oldest first.
// A max of zero returns the whole backlog.
func (s *Session) ChatHistory(max int) []*ChatMessage {
	if max <= 0 || max >= len(s.chatHistory) {
		return s.chatHistory
	}
	return s.chatHistory[len(s.chatHistory)-max:]
}

// Connect dials the world server with the session key produced by the
// auth phase. The handshake continues asynchronously via Update.
func (s *Session) Connect(host string, port uint16, sessionKey []byte, account string) error {
	if s.state != StateDisconnected {
		return fmt.Errorf("world: connect in state %s", s.state)
	}
	if len(sessionKey) != arc4.SessionKeySize {
		err := fmt.Errorf("world: session key must be %d bytes, got %d", arc4.SessionKeySize, len(sessionKey))
		s.fail(err.Error())
		return err
	}
	if account == "" {
		return fmt.Errorf("world: empty account name")
	}

	s.account = strings.ToUpper(account)
	s.sessionKey = append([]byte(nil), sessionKey...)

	var seed [4]byte
	if _, err := io.ReadFull(s.cfg.Random, seed[:]); err != nil {
		s.fail(fmt.Sprintf("generating client seed: %v", err))
		return err
	}
	s.clientSeed = binary.LittleEndian.Uint32(seed[:])

	s.setState(StateConnecting)
	if err := s.cfg.Transport.Connect(host, port); err != nil {
		s.fail(fmt.Sprintf("connection failed: %v", err))
		return err
	}
	s.setState(StateConnected)

	s.log.WithFields(s.fields).WithFields(logrus.Fields{
		"host":    host,
		"port":    port,
		"account": s.account,
		"build":   s.cfg.Build,
	}).Info("Connected to world server, awaiting challenge")
	return nil
}

// Disconnect tears the connection down without entering Failed.
func (s *Session) Disconnect() {
	s.cfg.Transport.Disconnect()
	s.setState(StateDisconnected)
}

// Update polls the transport, processes complete packets and sends the
// periodic heartbeat. Call it from the application's main loop; it
// never blocks.
func (s *Session) Update() {
	if s.state == StateDisconnected || s.state == StateFailed {
		return
	}

	data, err := s.cfg.Transport.Poll()
	if err != nil {
		s.fail(fmt.Sprintf("connection lost: %v", err))
		return
	}
	s.framer.Feed(data)

	for {
		p, err := s.framer.Next()
		if err != nil {
			s.fail(err.Error())
			return
		}
		if p == nil {
			break
		}
		s.dispatch(p)
		if s.state == StateFailed {
			return
		}
	}

	if s.state == StateInWorld && s.cfg.Time.Now().Sub(s.lastPingAt) >= s.cfg.PingInterval {
		s.sendPing()
	}
}

// RequestCharacterList asks the server for the account's roster.
func (s *Session) RequestCharacterList() error {
	if s.state != StateReady && s.state != StateAuthenticated {
		return fmt.Errorf("world: character list request in state %s", s.state)
	}
	if err := s.send(packet.New(packet.CMSGCharEnum)); err != nil {
		return err
	}
	s.setState(StateCharListRequested)
	return nil
}

// SelectCharacter enters the world with the given roster character.
func (s *Session) SelectCharacter(guid uint64) error {
	if s.state != StateCharListReceived {
		return fmt.Errorf("world: character selection in state %s", s.state)
	}
	p := packet.New(packet.CMSGPlayerLogin)
	p.WriteUint64(guid)
	if err := s.send(p); err != nil {
		return err
	}
	s.setState(StateEnteringWorld)
	s.log.WithFields(s.fields).WithField("guid", fmt.Sprintf("0x%X", guid)).
		Info("Entering world")
	return nil
}

// SendChat sends a chat message. Whispers and channel messages name
// their target.
func (s *Session) SendChat(chatType ChatType, message, target string) error {
	if s.state != StateInWorld {
		return fmt.Errorf("world: chat in state %s", s.state)
	}
	if message == "" {
		return fmt.Errorf("world: empty chat message")
	}
	return s.send(buildChat(chatType, LangCommon, message, target))
}

// SendMovement reports a movement transition, updating the held flag
// state according to the opcode.
func (s *Session) SendMovement(opcode uint32) error {
	if s.state != StateInWorld {
		return fmt.Errorf("world: movement in state %s", s.state)
	}
	s.movement.Flags = applyMovementFlags(s.movement.Flags, opcode)
	s.movementTime++
	s.movement.Time = s.movementTime
	return s.send(buildMovement(opcode, s.movement))
}

// SetPosition updates the position reported in movement packets.
func (s *Session) SetPosition(x, y, z float32) {
	s.movement.X, s.movement.Y, s.movement.Z = x, y, z
}

// SetOrientation updates the facing reported in movement packets.
func (s *Session) SetOrientation(orientation float32) {
	s.movement.Orientation = orientation
}

func (s *Session) send(p *packet.Packet) error {
	if err := s.cfg.Transport.Send(s.framer.Frame(p)); err != nil {
		s.fail(fmt.Sprintf("sending %s: %v", packet.WorldOpcodeName(p.Opcode), err))
		return err
	}
	return nil
}

func (s *Session) dispatch(p *packet.Packet) {
	switch p.Opcode {
	case packet.SMSGAuthChallenge:
		if s.state != StateConnected {
			s.logUnexpected(p)
			return
		}
		s.handleAuthChallenge(p)
	case packet.SMSGAuthResponse:
		if s.state != StateAuthSent {
			s.logUnexpected(p)
			return
		}
		s.handleAuthResponse(p)
	case packet.SMSGCharEnum:
		if s.state != StateCharListRequested {
			s.logUnexpected(p)
			return
		}
		s.handleCharEnum(p)
	case packet.SMSGLoginVerifyWorld:
		if s.state != StateEnteringWorld {
			s.logUnexpected(p)
			return
		}
		s.handleLoginVerify(p)
	case packet.SMSGAccountDataTimes:
		// Arrives at any point after authentication.
		s.handleAccountDataTimes(p)
	case packet.SMSGMotd:
		s.handleMotd(p)
	case packet.SMSGPong:
		s.handlePong(p)
	case packet.SMSGUpdateObject:
		if s.state == StateInWorld {
			s.handleUpdateObject(p)
		}
	case packet.SMSGDestroyObject:
		if s.state == StateInWorld {
			s.handleDestroyObject(p)
		}
	case packet.SMSGMessageChat:
		if s.state == StateInWorld {
			s.handleChat(p)
		}
	default:
		s.log.WithFields(s.fields).WithFields(logrus.Fields{
			"opcode": packet.WorldOpcodeName(p.Opcode),
			"size":   p.Size(),
		}).Debug("Unhandled world packet, discarding")
	}
}

func (s *Session) handleAuthChallenge(p *packet.Packet) {
	serverSeed, err := parseAuthChallenge(p)
	if err != nil {
		s.fail(fmt.Sprintf("malformed auth challenge: %v", err))
		return
	}
	s.serverSeed = serverSeed
	s.setState(StateChallengeReceived)

	// The re-authentication packet goes out with a plaintext header;
	// both direction ciphers start immediately after it, before any
	// further header is read or written.
	authPacket := buildAuthSession(s.cfg.Build, s.account, s.clientSeed, s.serverSeed, s.sessionKey)
	if err := s.send(authPacket); err != nil {
		return
	}
	crypt, err := arc4.NewHeaderCrypt(s.sessionKey)
	if err != nil {
		s.fail(fmt.Sprintf("initializing header cipher: %v", err))
		return
	}
	s.framer.SetCrypt(crypt)
	s.setState(StateAuthSent)
	s.log.WithFields(s.fields).Info("Session proof sent, header encryption active")
}

func (s *Session) handleAuthResponse(p *packet.Packet) {
	code, err := p.ReadUint8()
	if err != nil {
		s.fail(fmt.Sprintf("malformed auth response: %v", err))
		return
	}
	result := AuthResult(code)
	if result != AuthOK {
		s.fail(result.String())
		return
	}
	s.setState(StateAuthenticated)
	s.setState(StateReady)
	s.log.WithFields(s.fields).Info("World authentication successful")
	if s.onSuccess != nil {
		s.onSuccess()
	}
}

func (s *Session) handleCharEnum(p *packet.Packet) {
	chars, err := parseCharacters(p)
	if err != nil {
		s.fail(fmt.Sprintf("malformed character roster: %v", err))
		return
	}
	s.characters = chars
	s.setState(StateCharListReceived)
	s.log.WithFields(s.fields).WithField("characters", len(chars)).Info("Character roster received")
	if s.onCharacters != nil {
		s.onCharacters(chars)
	}
}

func (s *Session) handleLoginVerify(p *packet.Packet) {
	pos, err := parseLoginVerify(p)
	if err != nil {
		s.fail(fmt.Sprintf("malformed world entry: %v", err))
		return
	}
	s.position = pos
	s.movement = MovementInfo{
		X:           pos.X,
		Y:           pos.Y,
		Z:           pos.Z,
		Orientation: pos.Orientation,
	}
	s.lastPingAt = s.cfg.Time.Now()
	s.setState(StateInWorld)
	s.log.WithFields(s.fields).WithFields(logrus.Fields{
		"map": pos.MapID,
		"x":   pos.X,
		"y":   pos.Y,
		"z":   pos.Z,
	}).Info("Entered world")
	if s.onWorld != nil {
		s.onWorld(pos)
	}
}

func (s *Session) handleAccountDataTimes(p *packet.Packet) {
	times, err := parseAccountDataTimes(p)
	if err != nil {
		s.log.WithFields(s.fields).WithError(err).Warn("Malformed account data times, ignoring")
		return
	}
	s.acctTimes = times
}

func (s *Session) handleMotd(p *packet.Packet) {
	lines, err := parseMotd(p)
	if err != nil {
		s.log.WithFields(s.fields).WithError(err).Warn("Malformed message of the day, ignoring")
		return
	}
	s.motd = lines
	if s.onMotd != nil {
		s.onMotd(lines)
	}
}

func (s *Session) sendPing() {
	s.pingSeq++
	p := packet.New(packet.CMSGPing)
	p.WriteUint32(s.pingSeq)
	p.WriteUint32(s.latency)
	if err := s.send(p); err != nil {
		return
	}
	s.pingSentAt = s.cfg.Time.Now()
	s.lastPingAt = s.pingSentAt
	s.awaitingAck = true
}

func (s *Session) handlePong(p *packet.Packet) {
	seq, err := p.ReadUint32()
	if err != nil {
		s.log.WithFields(s.fields).WithError(err).Warn("Malformed pong, ignoring")
		return
	}
	if !s.awaitingAck || seq != s.pingSeq {
		s.log.WithFields(s.fields).WithFields(logrus.Fields{
			"got":  seq,
			"want": s.pingSeq,
		}).Warn("Heartbeat sequence mismatch")
		return
	}
	s.awaitingAck = false
	s.latency = uint32(s.cfg.Time.Now().Sub(s.pingSentAt).Milliseconds())
	s.log.WithFields(s.fields).WithFields(logrus.Fields{
		"seq":        seq,
		"latency_ms": s.latency,
	}).Debug("Heartbeat acknowledged")
}

func (s *Session) handleUpdateObject(p *packet.Packet) {
	data, err := s.decoder.DecodeUpdate(p)
	if err != nil {
		// Decode failures abort this message only; prior entity state
		// stays intact and the session continues.
		s.log.WithFields(s.fields).WithError(err).Warn("Discarding malformed object update")
		return
	}
	s.decoder.ApplyUpdate(data, s.cfg.Entities)
}

func (s *Session) handleDestroyObject(p *packet.Packet) {
	destroy, err := s.decoder.DecodeDestroy(p)
	if err != nil {
		s.log.WithFields(s.fields).WithError(err).Warn("Discarding malformed object destroy")
		return
	}
	s.decoder.ApplyDestroy(destroy, s.cfg.Entities)
}

func (s *Session) handleChat(p *packet.Packet) {
	msg, err := parseChat(p)
	if err != nil {
		s.log.WithFields(s.fields).WithError(err).Warn("Discarding malformed chat message")
		return
	}
	s.chatHistory = append(s.chatHistory, msg)
	if len(s.chatHistory) > s.cfg.ChatHistoryLimit {
		s.chatHistory = s.chatHistory[len(s.chatHistory)-s.cfg.ChatHistoryLimit:]
	}
	if s.onChat != nil {
		s.onChat(msg)
	}
}

func (s *Session) logUnexpected(p *packet.Packet) {
	s.log.WithFields(s.fields).WithFields(logrus.Fields{
		"opcode": packet.WorldOpcodeName(p.Opcode),
		"state":  s.state.String(),
	}).Warn("Packet out of sequence, discarding")
}

func (s *Session) fail(reason string) {
	s.reason = reason
	s.setState(StateFailed)
	s.log.WithFields(s.fields).WithField("reason", reason).Error("World session failed")
	s.cfg.Transport.Disconnect()
	if s.onFailure != nil {
		s.onFailure(reason)
	}
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	old := s.state
	s.state = next
	s.log.WithFields(s.fields).WithFields(logrus.Fields{
		"from": old.String(),
		"to":   next.String(),
	}).Debug("World state transition")
	if s.onStateChange != nil {
		s.onStateChange(old, next)
	}
}
