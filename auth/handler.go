package auth

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/MeulenG/Puhaa-WoW/packet"
	"github.com/MeulenG/Puhaa-WoW/srp"
	"github.com/MeulenG/Puhaa-WoW/transport"
)

// protocolVersion is the handshake revision byte sent with the logon
// challenge; 8 for client build 12340.
const protocolVersion = 8

// State is the handler's position in the authentication flow. Failed is
// absorbing; a new handler is required for another attempt.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateChallengeReceived
	StateCredentialsSent
	StateAuthenticated
	StateRealmListRequested
	StateRealmListReceived
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
	case StateCredentialsSent:
		return "CredentialsSent"
	case StateAuthenticated:
		return "Authenticated"
	case StateRealmListRequested:
		return "RealmListRequested"
	case StateRealmListReceived:
		return "RealmListReceived"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Config carries the handler's dependencies and client identification.
// Zero values select sensible defaults for everything but Transport.
type Config struct {
	Transport transport.Transport
	Random    io.Reader
	Logger    *logrus.Logger

	Build        uint16
	Version      [3]uint8
	Platform     string
	OS           string
	Locale       string
	TimezoneBias uint32
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Build == 0 {
		c.Build = 12340
		c.Version = [3]uint8{3, 3, 5}
	}
	if c.Platform == "" {
		c.Platform = "x86"
	}
	if c.OS == "" {
		c.OS = "Win"
	}
	if c.Locale == "" {
		c.Locale = "enUS"
	}
}

// Handler runs the authentication-server side of the login flow: it
// sends the logon challenge, answers with the SRP proof, verifies the
// server's proof and fetches the realm list. It is single-shot and not
// safe for concurrent use; drive it from one goroutine via Update.
type Handler struct {
	cfg     Config
	log     *logrus.Logger
	fields  logrus.Fields
	framer  *Framer
	engine  *srp.Engine
	state   State
	reason  string
	realms  []Realm
	session [srp.SessionKeySize]byte

	onSuccess     func(sessionKey [srp.SessionKeySize]byte)
	onFailure     func(reason string)
	onRealmList   func(realms []Realm)
	onStateChange func(old, new State)
}

// NewHandler creates a handler in the Disconnected state.
func NewHandler(cfg Config) *Handler {
	cfg.applyDefaults()
	return &Handler{
		cfg:    cfg,
		log:    cfg.Logger,
		fields: logrus.Fields{"component": "auth"},
		framer: NewFramer(),
		engine: srp.NewEngine(cfg.Random, cfg.Logger),
		state:  StateDisconnected,
	}
}

// OnSuccess registers the callback fired once the server proof has
// verified and the session key is final.
func (h *Handler) OnSuccess(fn func(sessionKey [srp.SessionKeySize]byte)) {
	h.onSuccess = fn
}

// OnFailure registers the callback fired with a human-readable reason
// when the handler enters Failed.
func (h *Handler) OnFailure(fn func(reason string)) {
	h.onFailure = fn
}

// OnRealmList registers the callback fired when the realm list arrives.
func (h *Handler) OnRealmList(fn func(realms []Realm)) {
	h.onRealmList = fn
}

// OnStateChange registers the callback fired on every transition.
func (h *Handler) OnStateChange(fn func(old, new State)) {
	h.onStateChange = fn
}

// State returns the current state.
func (h *Handler) State() State {
	return h.state
}

// FailReason returns the reason recorded when the handler failed.
func (h *Handler) FailReason() string {
	return h.reason
}

// Realms returns the parsed realm list once StateRealmListReceived is
// reached.
func (h *Handler) Realms() []Realm {
	return h.realms
}

// SessionKey returns the 40-byte session key once authenticated.
func (h *Handler) SessionKey() [srp.SessionKeySize]byte {
	return h.session
}

// Connect dials the auth server and sends the logon challenge. The
// secret is consumed immediately and never retained.
func (h *Handler) Connect(host string, port uint16, identity, secret string) error {
	if h.state != StateDisconnected {
		return fmt.Errorf("auth: connect in state %s", h.state)
	}
	upper, err := normalizeIdentity(identity)
	if err != nil {
		return err
	}

	h.setState(StateConnecting)
	if err := h.cfg.Transport.Connect(host, port); err != nil {
		h.fail(fmt.Sprintf("connection failed: %v", err))
		return err
	}
	h.setState(StateConnected)

	h.engine.Initialize(upper, secret)
	if err := h.cfg.Transport.Send(buildLogonChallenge(h.cfg, upper)); err != nil {
		h.fail(fmt.Sprintf("sending challenge: %v", err))
		return err
	}

	h.log.WithFields(h.fields).WithFields(logrus.Fields{
		"host":     host,
		"port":     port,
		"identity": upper,
		"build":    h.cfg.Build,
	}).Info("Logon challenge sent")
	return nil
}

// Update polls the transport and advances the state machine. Call it
// from the application's main loop; it never blocks.
func (h *Handler) Update() {
	if h.state == StateDisconnected || h.state == StateFailed {
		return
	}
	data, err := h.cfg.Transport.Poll()
	if err != nil {
		h.fail(fmt.Sprintf("connection lost: %v", err))
		return
	}
	h.framer.Feed(data)

	for {
		p, err := h.framer.Next()
		if err != nil {
			h.fail("malformed data from auth server")
			return
		}
		if p == nil {
			return
		}
		h.dispatch(p)
		if h.state == StateFailed {
			return
		}
	}
}

// Disconnect tears the connection down without entering Failed.
func (h *Handler) Disconnect() {
	h.cfg.Transport.Disconnect()
	h.setState(StateDisconnected)
}

func (h *Handler) dispatch(p *packet.Packet) {
	switch p.Opcode {
	case packet.AuthLogonChallenge:
		h.handleChallenge(p)
	case packet.AuthLogonProof:
		h.handleProof(p)
	case packet.AuthRealmList:
		h.handleRealmList(p)
	default:
		h.log.WithFields(h.fields).WithFields(logrus.Fields{
			"command": packet.AuthCommandName(p.Opcode),
			"state":   h.state.String(),
		}).Warn("Unexpected auth command, discarding")
	}
}

func (h *Handler) handleChallenge(p *packet.Packet) {
	if h.state != StateConnected {
		h.logUnexpected(p)
		return
	}
	c, err := parseLogonChallenge(p)
	if err != nil {
		h.fail(fmt.Sprintf("malformed challenge: %v", err))
		return
	}
	if c.result != ResultSuccess {
		h.fail(c.result.String())
		return
	}
	if c.securityFlags != 0 {
		h.fail("server requires an unsupported security method")
		return
	}
	h.setState(StateChallengeReceived)

	if err := h.engine.Feed(c.serverPublic, c.generator, c.modulus, c.salt); err != nil {
		h.fail(fmt.Sprintf("challenge rejected: %v", err))
		return
	}
	if err := h.cfg.Transport.Send(buildLogonProof(h.engine.Public(), h.engine.Proof())); err != nil {
		h.fail(fmt.Sprintf("sending proof: %v", err))
		return
	}
	h.setState(StateCredentialsSent)
}

func (h *Handler) handleProof(p *packet.Packet) {
	if h.state != StateCredentialsSent {
		h.logUnexpected(p)
		return
	}
	result, m2, err := parseLogonProof(p)
	if err != nil {
		h.fail(fmt.Sprintf("malformed proof reply: %v", err))
		return
	}
	if result != ResultSuccess {
		h.fail(result.String())
		return
	}
	if !h.engine.VerifyServerProof(m2) {
		// The server failed to prove knowledge of the verifier. Never
		// continue past this.
		h.fail("server proof verification failed")
		return
	}

	h.session = h.engine.SessionKey()
	h.setState(StateAuthenticated)
	h.log.WithFields(h.fields).Info("Authenticated, server proof verified")
	if h.onSuccess != nil {
		h.onSuccess(h.session)
	}

	if err := h.cfg.Transport.Send(buildRealmListRequest()); err != nil {
		h.fail(fmt.Sprintf("requesting realm list: %v", err))
		return
	}
	h.setState(StateRealmListRequested)
}

func (h *Handler) handleRealmList(p *packet.Packet) {
	if h.state != StateRealmListRequested {
		h.logUnexpected(p)
		return
	}
	realms, err := parseRealmList(p)
	if err != nil {
		h.fail(fmt.Sprintf("malformed realm list: %v", err))
		return
	}
	h.realms = realms
	h.setState(StateRealmListReceived)
	h.log.WithFields(h.fields).WithField("realms", len(realms)).Info("Realm list received")
	if h.onRealmList != nil {
		h.onRealmList(realms)
	}
}

func (h *Handler) logUnexpected(p *packet.Packet) {
	h.log.WithFields(h.fields).WithFields(logrus.Fields{
		"command": packet.AuthCommandName(p.Opcode),
		"state":   h.state.String(),
	}).Warn("Command out of sequence, discarding")
}

func (h *Handler) fail(reason string) {
	h.reason = reason
	h.setState(StateFailed)
	h.log.WithFields(h.fields).WithField("reason", reason).Error("Authentication failed")
	h.cfg.Transport.Disconnect()
	if h.onFailure != nil {
		h.onFailure(reason)
	}
}

func (h *Handler) setState(next State) {
	if h.state == next {
		return
	}
	old := h.state
	h.state = next
	h.log.WithFields(h.fields).WithFields(logrus.Fields{
		"from": old.String(),
		"to":   next.String(),
	}).Debug("Auth state transition")
	if h.onStateChange != nil {
		h.onStateChange(old, next)
	}
}
