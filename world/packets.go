package world

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/MeulenG/Puhaa-WoW/packet"
)

// buildAuthSession assembles the world re-authentication packet: the
// client proves possession of the session key by hashing it with both
// seeds. The account name goes out upper-cased, matching the auth phase.
func buildAuthSession(build uint32, account string, clientSeed, serverSeed uint32, sessionKey []byte) *packet.Packet {
	p := packet.New(packet.CMSGAuthSession)
	p.WriteUint32(build)
	p.WriteUint32(0)
	p.WriteCString(account)
	p.WriteUint32(0)
	p.WriteUint32(clientSeed)
	for i := 0; i < 5; i++ {
		p.WriteUint32(0)
	}
	p.WriteBytes(sessionHash(account, clientSeed, serverSeed, sessionKey))
	p.WriteUint32(0) // addon block CRC
	return p
}

// sessionHash is SHA1(account ‖ 0x00000000 ‖ clientSeed ‖ serverSeed ‖ K),
// seeds little-endian.
func sessionHash(account string, clientSeed, serverSeed uint32, sessionKey []byte) []byte {
	h := sha1.New()
	h.Write([]byte(account))
	h.Write([]byte{0, 0, 0, 0})
	h.Write(binary.LittleEndian.AppendUint32(nil, clientSeed))
	h.Write(binary.LittleEndian.AppendUint32(nil, serverSeed))
	h.Write(sessionKey)
	return h.Sum(nil)
}

// parseAuthChallenge extracts the server seed. The packet carries more
// seed material after it, unused by this handshake.
func parseAuthChallenge(p *packet.Packet) (serverSeed uint32, err error) {
	if _, err = p.ReadUint32(); err != nil { // leading marker, always 1
		return 0, err
	}
	return p.ReadUint32()
}

// parseCharacters decodes the character roster.
func parseCharacters(p *packet.Packet) ([]Character, error) {
	count, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	chars := make([]Character, 0, count)
	for i := 0; i < int(count); i++ {
		var c Character
		if c.GUID, err = p.ReadUint64(); err != nil {
			return nil, err
		}
		if c.Name, err = p.ReadCString(); err != nil {
			return nil, err
		}
		if c.Race, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if c.Class, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if c.Gender, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if c.Appearance, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.FacialFeatures, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if c.Level, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if c.ZoneID, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.MapID, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.X, err = p.ReadFloat32(); err != nil {
			return nil, err
		}
		if c.Y, err = p.ReadFloat32(); err != nil {
			return nil, err
		}
		if c.Z, err = p.ReadFloat32(); err != nil {
			return nil, err
		}
		if c.GuildID, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.Flags, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if _, err = p.ReadUint32(); err != nil { // customization flags
			return nil, err
		}
		if _, err = p.ReadUint8(); err != nil { // first login marker
			return nil, err
		}
		if c.Pet.DisplayModel, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.Pet.Level, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		if c.Pet.Family, err = p.ReadUint32(); err != nil {
			return nil, err
		}
		for j := 0; j < equipmentSlots; j++ {
			if c.Equipment[j].DisplayModel, err = p.ReadUint32(); err != nil {
				return nil, err
			}
			if c.Equipment[j].InventoryType, err = p.ReadUint8(); err != nil {
				return nil, err
			}
			if c.Equipment[j].Enchantment, err = p.ReadUint32(); err != nil {
				return nil, err
			}
		}
		chars = append(chars, c)
	}
	return chars, nil
}

// Position is a location in the game world.
type Position struct {
	MapID       uint32
	X, Y, Z     float32
	Orientation float32
}

// parseLoginVerify decodes the world entry confirmation.
func parseLoginVerify(p *packet.Packet) (Position, error) {
	var pos Position
	var err error
	if pos.MapID, err = p.ReadUint32(); err != nil {
		return pos, err
	}
	if pos.X, err = p.ReadFloat32(); err != nil {
		return pos, err
	}
	if pos.Y, err = p.ReadFloat32(); err != nil {
		return pos, err
	}
	if pos.Z, err = p.ReadFloat32(); err != nil {
		return pos, err
	}
	if pos.Orientation, err = p.ReadFloat32(); err != nil {
		return pos, err
	}
	return pos, nil
}

// buildChat assembles an outgoing chat message. Whisper and channel
// messages carry the target before the text.
func buildChat(chatType ChatType, language ChatLanguage, message, target string) *packet.Packet {
	p := packet.New(packet.CMSGMessageChat)
	p.WriteUint32(uint32(chatType))
	p.WriteUint32(uint32(language))
	if chatType == ChatWhisper || chatType == ChatChannel {
		p.WriteCString(target)
	}
	p.WriteCString(message)
	return p
}

// parseChat decodes an incoming chat message, including the
// type-specific sub-fields before the text.
func parseChat(p *packet.Packet) (*ChatMessage, error) {
	var msg ChatMessage

	t, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	msg.Type = ChatType(t)
	lang, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	msg.Language = ChatLanguage(lang)
	if msg.SenderGUID, err = p.ReadUint64(); err != nil {
		return nil, err
	}
	if _, err = p.ReadUint32(); err != nil { // constant zero
		return nil, err
	}

	switch msg.Type {
	case ChatMonsterSay, ChatMonsterYell, ChatMonsterEmote:
		nameLen, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		name, err := p.ReadBytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		msg.SenderName = cstring(name)
		if _, err = p.ReadUint64(); err != nil { // receiver, zero for monsters
			return nil, err
		}
	case ChatWhisperInform:
		if msg.Receiver, err = p.ReadCString(); err != nil {
			return nil, err
		}
	case ChatChannel:
		if msg.ChannelName, err = p.ReadCString(); err != nil {
			return nil, err
		}
	case ChatAchievement, ChatGuildAchievement:
		if _, err = p.ReadUint32(); err != nil { // achievement id
			return nil, err
		}
	}

	msgLen, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	text, err := p.ReadBytes(int(msgLen))
	if err != nil {
		return nil, err
	}
	msg.Message = cstring(text)
	if msg.Tag, err = p.ReadUint8(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// parseMotd decodes the message of the day into its lines.
func parseMotd(p *packet.Packet) ([]string, error) {
	count, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		line, err := p.ReadCString()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// AccountDataTimes is the server-side timestamp table for the account's
// per-slot data cache.
type AccountDataTimes struct {
	ServerTime uint32
	Slots      [8]uint32
}

func parseAccountDataTimes(p *packet.Packet) (*AccountDataTimes, error) {
	var out AccountDataTimes
	var err error
	if out.ServerTime, err = p.ReadUint32(); err != nil {
		return nil, err
	}
	if _, err = p.ReadUint8(); err != nil { // constant one
		return nil, err
	}
	for i := range out.Slots {
		if out.Slots[i], err = p.ReadUint32(); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// cstring trims a trailing null terminator, which length-prefixed chat
// strings include.
func cstring(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}
