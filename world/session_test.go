package world

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeulenG/Puhaa-WoW/arc4"
	"github.com/MeulenG/Puhaa-WoW/entity"
	"github.com/MeulenG/Puhaa-WoW/packet"
	"github.com/MeulenG/Puhaa-WoW/transport"
)

// fakeClock is a manually advanced TimeProvider.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// worldPeer plays the server side over a loopback pipe. It mirrors the
// client's header crypt from the same session key, so its receive
// cipher produces the server transmit keystream and vice versa.
type worldPeer struct {
	t     *testing.T
	pipe  *transport.Loopback
	crypt *arc4.HeaderCrypt
}

func (w *worldPeer) startCrypt(key []byte) {
	crypt, err := arc4.NewHeaderCrypt(key)
	require.NoError(w.t, err)
	w.crypt = crypt
}

func (w *worldPeer) inject(opcode uint16, body []byte) {
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(body)+2))
	binary.LittleEndian.PutUint16(frame[2:4], opcode)
	if w.crypt != nil {
		w.crypt.DecryptRecv(frame[:4])
	}
	copy(frame[4:], body)
	w.pipe.Inject(frame)
}

// take decrypts and splits the next client frame.
func (w *worldPeer) take() (opcode uint32, body []byte) {
	sent := w.pipe.TakeSent()
	require.Len(w.t, sent, 1, "expected exactly one client frame")
	frame := sent[0]
	require.GreaterOrEqual(w.t, len(frame), 6)
	if w.crypt != nil {
		w.crypt.EncryptSend(frame[:6])
	}
	size := binary.BigEndian.Uint16(frame[0:2])
	require.Equal(w.t, int(size)+2, len(frame), "size field covers opcode and body")
	return binary.LittleEndian.Uint32(frame[2:6]), frame[6:]
}

var testKey = bytes.Repeat([]byte{0x1B, 0xE4}, 20)

func newTestSession(t *testing.T) (*Session, *worldPeer, *fakeClock) {
	t.Helper()
	pipe := transport.NewLoopback()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := NewSession(Config{
		Transport: pipe,
		Random:    bytes.NewReader(bytes.Repeat([]byte{0x2A}, 16)),
		Logger:    log,
		Time:      clock,
	})
	return s, &worldPeer{t: t, pipe: pipe}, clock
}

// authenticate drives a session through the full world handshake.
func authenticate(t *testing.T, s *Session, peer *worldPeer) {
	t.Helper()
	require.NoError(t, s.Connect("world.test", 8085, testKey, "user"))
	require.Equal(t, StateConnected, s.State())

	peer.inject(0x1EC, []byte{1, 0, 0, 0, 0x39, 0x05, 0x00, 0x00}) // server seed 1337
	s.Update()
	require.Equal(t, StateAuthSent, s.State())

	opcode, body := peer.take()
	require.Equal(t, packet.CMSGAuthSession, opcode)

	// The proof hash sits after build, zero, account, zero, client seed
	// and five reserved words.
	wantSeed := binary.LittleEndian.Uint32(bytes.Repeat([]byte{0x2A}, 4))
	require.Equal(t, uint32(12340), binary.LittleEndian.Uint32(body[0:4]))
	require.Equal(t, []byte("USER\x00"), body[8:13])
	require.Equal(t, wantSeed, binary.LittleEndian.Uint32(body[17:21]))
	wantHash := sessionHash("USER", wantSeed, 1337, testKey)
	require.Equal(t, wantHash, body[41:61], "session proof hash")

	// Headers are encrypted from here on, both directions.
	peer.startCrypt(testKey)

	peer.inject(0x1EE, []byte{byte(AuthOK)})
	s.Update()
	require.Equal(t, StateReady, s.State())
}

// enterWorld continues past authenticate into the game world.
func enterWorld(t *testing.T, s *Session, peer *worldPeer) {
	t.Helper()
	require.NoError(t, s.RequestCharacterList())
	opcode, _ := peer.take()
	require.Equal(t, packet.CMSGCharEnum, opcode)

	peer.inject(0x03B, rosterBody(0xCAFE, "Thrall", 80))
	s.Update()
	require.Equal(t, StateCharListReceived, s.State())

	require.NoError(t, s.SelectCharacter(0xCAFE))
	opcode, body := peer.take()
	require.Equal(t, packet.CMSGPlayerLogin, opcode)
	require.Equal(t, uint64(0xCAFE), binary.LittleEndian.Uint64(body))

	verify := packet.New(0)
	verify.WriteUint32(1) // map
	verify.WriteFloat32(-8949.95)
	verify.WriteFloat32(-132.49)
	verify.WriteFloat32(83.53)
	verify.WriteFloat32(1.5)
	peer.inject(0x236, verify.Payload())
	s.Update()
	require.Equal(t, StateInWorld, s.State())
}

// rosterBody builds a one-character roster payload.
func rosterBody(guid uint64, name string, level uint8) []byte {
	p := packet.New(0)
	p.WriteUint8(1)
	p.WriteUint64(guid)
	p.WriteCString(name)
	p.WriteUint8(2) // race
	p.WriteUint8(7) // class
	p.WriteUint8(0) // gender
	p.WriteUint32(0x01020304)
	p.WriteUint8(3)
	p.WriteUint8(level)
	p.WriteUint32(1637) // zone
	p.WriteUint32(1)    // map
	p.WriteFloat32(1629.36)
	p.WriteFloat32(-4373.39)
	p.WriteFloat32(31.26)
	p.WriteUint32(42) // guild
	p.WriteUint32(0)  // flags
	p.WriteUint32(0)  // customization
	p.WriteUint8(0)
	p.WriteUint32(0) // pet model
	p.WriteUint32(0)
	p.WriteUint32(0)
	for i := 0; i < 23; i++ {
		p.WriteUint32(uint32(i))
		p.WriteUint8(uint8(i))
		p.WriteUint32(0)
	}
	return p.Payload()
}

func TestSessionHandshake(t *testing.T) {
	s, peer, _ := newTestSession(t)
	var succeeded bool
	s.OnSuccess(func() { succeeded = true })

	authenticate(t, s, peer)
	assert.True(t, succeeded)
}

func TestSessionAuthRejected(t *testing.T) {
	s, peer, _ := newTestSession(t)
	var reason string
	s.OnFailure(func(r string) { reason = r })

	require.NoError(t, s.Connect("world.test", 8085, testKey, "user"))
	peer.inject(0x1EC, []byte{1, 0, 0, 0, 0x39, 0x05, 0x00, 0x00})
	s.Update()
	peer.take()
	peer.startCrypt(testKey)

	peer.inject(0x1EE, []byte{byte(AuthBanned)})
	s.Update()
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, "Account is banned", reason)
	assert.False(t, peer.pipe.IsConnected())
}

func TestSessionRejectsShortKey(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.Error(t, s.Connect("world.test", 8085, []byte{1, 2, 3}, "user"))
	assert.Equal(t, StateFailed, s.State())
}

func TestSessionRoster(t *testing.T) {
	s, peer, _ := newTestSession(t)
	var roster []Character
	s.OnCharacterList(func(chars []Character) { roster = chars })

	authenticate(t, s, peer)
	require.NoError(t, s.RequestCharacterList())
	opcode, body := peer.take()
	require.Equal(t, packet.CMSGCharEnum, opcode)
	require.Empty(t, body)

	peer.inject(0x03B, rosterBody(0xDEAD, "Eitrigg", 62))
	s.Update()
	require.Len(t, roster, 1)
	c := roster[0]
	assert.Equal(t, uint64(0xDEAD), c.GUID)
	assert.Equal(t, "Eitrigg", c.Name)
	assert.Equal(t, uint8(62), c.Level)
	assert.Equal(t, uint32(1), c.MapID)
	assert.True(t, c.HasGuild())
	assert.False(t, c.HasPet())
	assert.Equal(t, uint32(5), c.Equipment[5].DisplayModel)
}

func TestSessionWorldEntry(t *testing.T) {
	s, peer, _ := newTestSession(t)
	var entered Position
	s.OnWorldEntered(func(pos Position) { entered = pos })

	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	assert.Equal(t, uint32(1), entered.MapID)
	assert.InDelta(t, -8949.95, entered.X, 0.01)
	assert.Equal(t, entered, s.Position())
}

func TestSessionHeartbeat(t *testing.T) {
	s, peer, clock := newTestSession(t)
	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	// No ping before the interval elapses.
	s.Update()
	assert.Empty(t, peer.pipe.Sent())

	clock.Advance(31 * time.Second)
	s.Update()
	opcode, body := peer.take()
	require.Equal(t, packet.CMSGPing, opcode)
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(body[0:4]))

	clock.Advance(120 * time.Millisecond)
	pong := packet.New(0)
	pong.WriteUint32(1)
	peer.inject(0x1DD, pong.Payload())
	s.Update()
	assert.Equal(t, uint32(120), s.Latency())
}

func TestSessionHeartbeatSequenceMismatch(t *testing.T) {
	s, peer, clock := newTestSession(t)
	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	clock.Advance(31 * time.Second)
	s.Update()
	peer.take()

	clock.Advance(50 * time.Millisecond)
	stale := packet.New(0)
	stale.WriteUint32(99)
	peer.inject(0x1DD, stale.Payload())
	s.Update()

	// Mismatch is logged and ignored; the session stays healthy.
	assert.Equal(t, StateInWorld, s.State())
	assert.Equal(t, uint32(0), s.Latency())
}

func TestSessionChat(t *testing.T) {
	s, peer, _ := newTestSession(t)
	var got *ChatMessage
	s.OnChat(func(msg *ChatMessage) { got = msg })

	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	in := packet.New(0)
	in.WriteUint8(uint8(ChatSay))
	in.WriteUint32(uint32(LangCommon))
	in.WriteUint64(0xBEEF)
	in.WriteUint32(0)
	in.WriteUint32(uint32(len("Lok'tar ogar") + 1))
	in.WriteCString("Lok'tar ogar")
	in.WriteUint8(0)
	peer.inject(0x096, in.Payload())
	s.Update()

	require.NotNil(t, got)
	assert.Equal(t, ChatSay, got.Type)
	assert.Equal(t, uint64(0xBEEF), got.SenderGUID)
	assert.Equal(t, "Lok'tar ogar", got.Message)
	assert.Len(t, s.ChatHistory(0), 1)

	require.NoError(t, s.SendChat(ChatWhisper, "hello", "Eitrigg"))
	opcode, body := peer.take()
	require.Equal(t, packet.CMSGMessageChat, opcode)
	assert.Equal(t, uint32(ChatWhisper), binary.LittleEndian.Uint32(body[0:4]))
	assert.Contains(t, string(body), "Eitrigg\x00hello\x00")
}

func TestSessionMovement(t *testing.T) {
	s, peer, _ := newTestSession(t)
	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	s.SetPosition(100, 200, 30)
	s.SetOrientation(3.14)
	require.NoError(t, s.SendMovement(packet.MSGMoveStartForward))
	opcode, body := peer.take()
	require.Equal(t, packet.MSGMoveStartForward, opcode)
	assert.Equal(t, MoveFlagForward, binary.LittleEndian.Uint32(body[0:4]))

	require.NoError(t, s.SendMovement(packet.MSGMoveStop))
	_, body = peer.take()
	assert.Zero(t, binary.LittleEndian.Uint32(body[0:4])&MoveFlagForward)
}

func TestSessionEntityStream(t *testing.T) {
	s, peer, _ := newTestSession(t)
	authenticate(t, s, peer)
	enterWorld(t, s, peer)

	// One create block: packed guid, kind, movement, empty field mask.
	up := packet.New(0)
	up.WriteUint32(1)
	up.WriteUint8(2) // create
	up.WriteUint8(0x01)
	up.WriteUint8(0x3A)
	up.WriteUint8(3)          // unit
	up.WriteUint32(0)         // movement flags
	up.WriteUint16(0)         // extra flags
	up.WriteUint32(0)         // timestamp
	up.WriteFloat32(10)       // x
	up.WriteFloat32(20)       // y
	up.WriteFloat32(30)       // z
	up.WriteFloat32(0.5)      // orientation
	up.WriteUint8(0)          // no mask words
	peer.inject(0x0A9, up.Payload())
	s.Update()

	table := s.Entities().(*entity.MemoryTable)
	require.Equal(t, 1, table.Len())
	rec := table.Get(0x3A)
	require.NotNil(t, rec)
	assert.Equal(t, entity.KindUnit, rec.Kind)
	require.NotNil(t, rec.Movement)
	assert.Equal(t, float32(20), rec.Movement.Y)

	// Truncated update: discarded whole, prior state intact.
	bad := packet.New(0)
	bad.WriteUint32(1)
	bad.WriteUint8(2)
	bad.WriteUint8(0x01)
	peer.inject(0x0A9, bad.Payload())
	s.Update()
	assert.Equal(t, StateInWorld, s.State())
	assert.Equal(t, 1, table.Len())

	// Destroy removes it.
	down := packet.New(0)
	down.WriteUint64(0x3A)
	down.WriteUint8(1)
	peer.inject(0x0AA, down.Payload())
	s.Update()
	assert.Equal(t, 0, table.Len())
}

func TestSessionGuardsOutOfStateRequests(t *testing.T) {
	s, peer, _ := newTestSession(t)
	require.Error(t, s.SendChat(ChatSay, "too early", ""))
	require.Error(t, s.SelectCharacter(1))
	require.Error(t, s.RequestCharacterList())

	authenticate(t, s, peer)
	require.Error(t, s.SendMovement(packet.MSGMoveStartForward))
}
