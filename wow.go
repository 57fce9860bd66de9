// Package wow implements the client side of the 3.3.5a game network
// protocol: the SRP6a login handshake against the authentication
// server, realm selection, the RC4-obfuscated world server connection,
// character roster and world entry, and the decoded entity/chat stream
// that follows.
//
// Example:
//
//	options := wow.NewOptions()
//	options.RealmName = "Firetree"
//
//	client, err := wow.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRosterReceived(func(chars []world.Character) {
//	    client.EnterWorld(chars[0].GUID)
//	})
//	client.OnChatMessage(func(msg *world.ChatMessage) {
//	    fmt.Printf("[%s] %s\n", msg.Type, msg.Message)
//	})
//
//	if err := client.Login("auth.example.com", "account", "secret"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for client.State() != wow.StateFailed {
//	    client.Update()
//	    time.Sleep(client.IterationInterval())
//	}
package wow

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MeulenG/Puhaa-WoW/auth"
	"github.com/MeulenG/Puhaa-WoW/entity"
	"github.com/MeulenG/Puhaa-WoW/srp"
	"github.com/MeulenG/Puhaa-WoW/transport"
	"github.com/MeulenG/Puhaa-WoW/world"
)

// State is the client's position in the unified login sequence, both
// server phases folded into one strictly forward progression. Failed is
// absorbing and reachable from every non-terminal state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateChallengeReceived
	StateCredentialsSent
	StateAuthenticated
	StateReady
	StateRosterRequested
	StateRosterReceived
	StateEnteringSession
	StateActive
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
	case StateReady:
		return "Ready"
	case StateRosterRequested:
		return "RosterRequested"
	case StateRosterReceived:
		return "RosterReceived"
	case StateEnteringSession:
		return "EnteringSession"
	case StateActive:
		return "Active"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Options contains configuration for creating a Client.
type Options struct {
	// AuthPort is the authentication server port.
	AuthPort uint16

	// RealmName selects the realm to join after authentication. Empty
	// picks the first joinable realm in the list.
	RealmName string

	// Build and Version identify the client during the handshake.
	Build   uint16
	Version [3]uint8

	// Platform, OS and Locale are the four-character environment tags.
	Platform string
	OS       string
	Locale   string

	// PingInterval is the world heartbeat period.
	PingInterval time.Duration

	// ChatHistoryLimit bounds the retained chat backlog.
	ChatHistoryLimit int

	// Logger receives all structured log output. Nil selects the
	// standard logger.
	Logger *logrus.Logger

	// Random is the entropy source for ephemerals and seeds. Nil
	// selects crypto/rand.
	Random io.Reader

	// NewTransport builds a byte pipe per server connection. Nil
	// selects TCP.
	NewTransport func() transport.Transport

	// Entities receives the decoded entity stream. Nil selects an
	// in-memory table.
	Entities entity.Table
}

// NewOptions creates Options with defaults for a build 12340 client.
func NewOptions() *Options {
	return &Options{
		AuthPort:         3724,
		Build:            12340,
		Version:          [3]uint8{3, 3, 5},
		Platform:         "x86",
		OS:               "Win",
		Locale:           "enUS",
		PingInterval:     30 * time.Second,
		ChatHistoryLimit: 100,
	}
}

// Client runs the full login sequence across both servers and the live
// session after it. Not safe for concurrent use; drive it from one
// goroutine via Update.
type Client struct {
	options *Options
	log     *logrus.Logger
	fields  logrus.Fields

	state    State
	reason   string
	identity string

	authTransport transport.Transport
	handler       *auth.Handler
	session       *world.Session

	sessionKey [srp.SessionKeySize]byte
	keyReady   bool
	realms     []auth.Realm
	realm      *auth.Realm

	onStateChange func(old, new State)
	onFailure     func(reason string)
	onRealmList   func([]auth.Realm)
	onRoster      func([]world.Character)
	onWorld       func(world.Position)
	onChat        func(*world.ChatMessage)
}

// New creates a Client with the given options. Nil selects defaults.
func New(options *Options) (*Client, error) {
	if options == nil {
		options = NewOptions()
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}
	if options.NewTransport == nil {
		logger := options.Logger
		options.NewTransport = func() transport.Transport {
			return transport.NewTCP(logger)
		}
	}
	return &Client{
		options: options,
		log:     options.Logger,
		fields:  logrus.Fields{"component": "client"},
		state:   StateDisconnected,
	}, nil
}

// OnStateChange registers the callback fired on every transition of the
// unified state.
func (c *Client) OnStateChange(fn func(old, new State)) { c.onStateChange = fn }

// OnFailure registers the callback fired with a human-readable reason
// when the client enters Failed.
func (c *Client) OnFailure(fn func(reason string)) { c.onFailure = fn }

// OnRealmList registers the callback fired when the realm list arrives.
func (c *Client) OnRealmList(fn func([]auth.Realm)) { c.onRealmList = fn }

// OnRosterReceived registers the callback fired when the character
// roster arrives.
func (c *Client) OnRosterReceived(fn func([]world.Character)) { c.onRoster = fn }

// OnWorldEntered registers the callback fired when the server confirms
// world entry.
func (c *Client) OnWorldEntered(fn func(world.Position)) { c.onWorld = fn }

// OnChatMessage registers the callback fired for every incoming chat
// message.
func (c *Client) OnChatMessage(fn func(*world.ChatMessage)) { c.onChat = fn }

// State returns the unified state.
func (c *Client) State() State { return c.state }

// FailReason returns the reason recorded when the client failed.
func (c *Client) FailReason() string { return c.reason }

// Realms returns the realm list once authenticated.
func (c *Client) Realms() []auth.Realm { return c.realms }

// Realm returns the realm joined after authentication, or nil.
func (c *Client) Realm() *auth.Realm { return c.realm }

// Roster returns the character roster once received.
func (c *Client) Roster() []world.Character {
	if c.session == nil {
		return nil
	}
	return c.session.Characters()
}

// Entities returns the table fed by the world entity stream.
func (c *Client) Entities() entity.Table {
	if c.session == nil {
		return c.options.Entities
	}
	return c.session.Entities()
}

// Latency returns the last measured world round-trip in milliseconds.
func (c *Client) Latency() uint32 {
	if c.session == nil {
		return 0
	}
	return c.session.Latency()
}

// IterationInterval returns the recommended delay between Update calls.
func (c *Client) IterationInterval() time.Duration {
	return 50 * time.Millisecond
}

// Login starts the authentication handshake. The secret is consumed
// immediately and never retained. Progress continues via Update.
func (c *Client) Login(host, identity, secret string) error {
	if c.state != StateDisconnected {
		return fmt.Errorf("wow: login in state %s", c.state)
	}
	c.identity = identity
	c.reason = ""

	c.authTransport = c.options.NewTransport()
	c.handler = auth.NewHandler(auth.Config{
		Transport: c.authTransport,
		Random:    c.options.Random,
		Logger:    c.options.Logger,
		Build:     c.options.Build,
		Version:   c.options.Version,
		Platform:  c.options.Platform,
		OS:        c.options.OS,
		Locale:    c.options.Locale,
	})
	c.handler.OnStateChange(func(_, next auth.State) {
		c.setState(mapAuthState(next))
	})
	c.handler.OnFailure(func(reason string) {
		c.fail(reason)
	})
	c.handler.OnSuccess(func(key [srp.SessionKeySize]byte) {
		c.sessionKey = key
		c.keyReady = true
	})
	c.handler.OnRealmList(func(realms []auth.Realm) {
		c.realms = realms
		if c.onRealmList != nil {
			c.onRealmList(realms)
		}
	})

	return c.handler.Connect(host, c.options.AuthPort, identity, secret)
}

// Update advances whichever phase is live: it polls the transport,
// dispatches complete messages and, at the phase boundary, hands the
// session key from the auth server to the world connection. Call it
// from the application's main loop; it never blocks.
func (c *Client) Update() {
	if c.state == StateDisconnected || c.state == StateFailed {
		return
	}
	if c.session != nil {
		c.session.Update()
		return
	}

	c.handler.Update()
	if c.handler != nil && c.handler.State() == auth.StateRealmListReceived && c.keyReady {
		c.enterWorldPhase()
	}
}

// RequestRoster asks the world server for the character roster.
func (c *Client) RequestRoster() error {
	if c.session == nil {
		return fmt.Errorf("wow: roster request before world connection")
	}
	return c.session.RequestCharacterList()
}

// EnterWorld logs in with the given roster character.
func (c *Client) EnterWorld(guid uint64) error {
	if c.session == nil {
		return fmt.Errorf("wow: world entry before world connection")
	}
	return c.session.SelectCharacter(guid)
}

// SendChat sends a chat message once active.
func (c *Client) SendChat(chatType world.ChatType, message, target string) error {
	if c.session == nil {
		return fmt.Errorf("wow: chat before world connection")
	}
	return c.session.SendChat(chatType, message, target)
}

// SendMovement reports a movement transition once active.
func (c *Client) SendMovement(opcode uint32) error {
	if c.session == nil {
		return fmt.Errorf("wow: movement before world connection")
	}
	return c.session.SendMovement(opcode)
}

// SetPosition updates the position reported in movement packets.
func (c *Client) SetPosition(x, y, z float32) {
	if c.session != nil {
		c.session.SetPosition(x, y, z)
	}
}

// SetOrientation updates the facing reported in movement packets.
func (c *Client) SetOrientation(orientation float32) {
	if c.session != nil {
		c.session.SetOrientation(orientation)
	}
}

// ChatHistory returns up to max recent chat messages, oldest first.
func (c *Client) ChatHistory(max int) []*world.ChatMessage {
	if c.session == nil {
		return nil
	}
	return c.session.ChatHistory(max)
}

// Disconnect tears down whichever connection is live and resets the
// client to Disconnected.
func (c *Client) Disconnect() {
	if c.session != nil {
		c.session.Disconnect()
		c.session = nil
	}
	if c.handler != nil {
		c.handler.Disconnect()
		c.handler = nil
	}
	c.keyReady = false
	c.realm = nil
	c.reason = ""
	c.setState(StateDisconnected)
}

// enterWorldPhase closes the auth connection, picks a realm and dials
// the world server with the derived session key.
func (c *Client) enterWorldPhase() {
	realm, err := c.pickRealm()
	if err != nil {
		c.fail(err.Error())
		return
	}
	host, port, err := splitRealmAddress(realm.Address)
	if err != nil {
		c.fail(fmt.Sprintf("realm %q: %v", realm.Name, err))
		return
	}
	c.realm = realm
	c.authTransport.Disconnect()

	c.log.WithFields(c.fields).WithFields(logrus.Fields{
		"realm": realm.Name,
		"host":  host,
		"port":  port,
	}).Info("Realm selected, connecting to world server")

	c.session = world.NewSession(world.Config{
		Transport:        c.options.NewTransport(),
		Random:           c.options.Random,
		Logger:           c.options.Logger,
		Build:            uint32(c.options.Build),
		PingInterval:     c.options.PingInterval,
		ChatHistoryLimit: c.options.ChatHistoryLimit,
		Entities:         c.options.Entities,
	})
	c.session.OnStateChange(func(_, next world.State) {
		c.setState(mapWorldState(next))
	})
	c.session.OnFailure(func(reason string) {
		c.fail(reason)
	})
	c.session.OnCharacterList(func(chars []world.Character) {
		if c.onRoster != nil {
			c.onRoster(chars)
		}
	})
	c.session.OnWorldEntered(func(pos world.Position) {
		if c.onWorld != nil {
			c.onWorld(pos)
		}
	})
	c.session.OnChat(func(msg *world.ChatMessage) {
		if c.onChat != nil {
			c.onChat(msg)
		}
	})

	if err := c.session.Connect(host, port, c.sessionKey[:], c.identity); err != nil {
		// The session already failed itself; nothing more to do.
		return
	}
}

// pickRealm returns the configured realm, or the first joinable one.
func (c *Client) pickRealm() (*auth.Realm, error) {
	if len(c.realms) == 0 {
		return nil, fmt.Errorf("wow: realm list is empty")
	}
	if c.options.RealmName != "" {
		for i := range c.realms {
			if strings.EqualFold(c.realms[i].Name, c.options.RealmName) {
				return &c.realms[i], nil
			}
		}
		return nil, fmt.Errorf("wow: realm %q not in list", c.options.RealmName)
	}
	for i := range c.realms {
		if c.realms[i].Online() {
			return &c.realms[i], nil
		}
	}
	return nil, fmt.Errorf("wow: no joinable realm")
}

func splitRealmAddress(address string) (string, uint16, error) {
	host, portText, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, fmt.Errorf("bad address %q: %w", address, err)
	}
	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad port in %q: %w", address, err)
	}
	return host, uint16(port), nil
}

// mapAuthState folds the auth-phase machine into the unified sequence.
func mapAuthState(s auth.State) State {
	switch s {
	case auth.StateDisconnected:
		return StateDisconnected
	case auth.StateConnecting:
		return StateConnecting
	case auth.StateConnected:
		return StateConnected
	case auth.StateChallengeReceived:
		return StateChallengeReceived
	case auth.StateCredentialsSent:
		return StateCredentialsSent
	case auth.StateAuthenticated, auth.StateRealmListRequested, auth.StateRealmListReceived:
		return StateAuthenticated
	default:
		return StateFailed
	}
}

// mapWorldState folds the world-phase machine into the unified
// sequence. The world handshake happens inside Authenticated; the
// unified state resumes moving at Ready.
func mapWorldState(s world.State) State {
	switch s {
	case world.StateConnecting, world.StateConnected, world.StateChallengeReceived,
		world.StateAuthSent, world.StateAuthenticated:
		return StateAuthenticated
	case world.StateReady:
		return StateReady
	case world.StateCharListRequested:
		return StateRosterRequested
	case world.StateCharListReceived:
		return StateRosterReceived
	case world.StateEnteringWorld:
		return StateEnteringSession
	case world.StateInWorld:
		return StateActive
	case world.StateDisconnected:
		return StateDisconnected
	default:
		return StateFailed
	}
}

// fail records the first reason; the mapped sub-phase state change may
// already have moved the unified state to Failed before this runs.
func (c *Client) fail(reason string) {
	if c.reason != "" {
		return
	}
	c.reason = reason
	c.setState(StateFailed)
	c.log.WithFields(c.fields).WithField("reason", reason).Error("Login sequence failed")
	if c.onFailure != nil {
		c.onFailure(reason)
	}
}

func (c *Client) setState(next State) {
	if c.state == next {
		return
	}
	old := c.state
	c.state = next
	c.log.WithFields(c.fields).WithFields(logrus.Fields{
		"from": old.String(),
		"to":   next.String(),
	}).Debug("Client state transition")
	if c.onStateChange != nil {
		c.onStateChange(old, next)
	}
}
