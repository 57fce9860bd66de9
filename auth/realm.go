package auth

import "github.com/MeulenG/Puhaa-WoW/packet"

// Realm flag bits.
const (
	RealmFlagInvalid     = 0x01
	RealmFlagOffline     = 0x02
	RealmFlagSpecifyVers = 0x04
	RealmFlagNewPlayers  = 0x20
	RealmFlagRecommended = 0x40
)

// Realm is one entry from the realm list. Address is "host:port" as the
// server sends it; the caller splits it to reach the world server.
type Realm struct {
	Type       uint8
	Locked     bool
	Flags      uint8
	Name       string
	Address    string
	Population float32
	Characters uint8
	Timezone   uint8
	ID         uint8
}

// Online reports whether the realm is joinable.
func (r Realm) Online() bool {
	return r.Flags&(RealmFlagInvalid|RealmFlagOffline) == 0
}

// parseRealmList extracts the realm entries from a framed realm list
// reply. The payload starts after the command byte, with the redundant
// size field still present.
func parseRealmList(p *packet.Packet) ([]Realm, error) {
	if _, err := p.ReadUint16(); err != nil { // remaining size, already framed
		return nil, err
	}
	if _, err := p.ReadUint32(); err != nil { // unused
		return nil, err
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	realms := make([]Realm, 0, count)
	for i := 0; i < int(count); i++ {
		var r Realm
		if r.Type, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		locked, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		r.Locked = locked != 0
		if r.Flags, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if r.Name, err = p.ReadCString(); err != nil {
			return nil, err
		}
		if r.Address, err = p.ReadCString(); err != nil {
			return nil, err
		}
		if r.Population, err = p.ReadFloat32(); err != nil {
			return nil, err
		}
		if r.Characters, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if r.Timezone, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		if r.ID, err = p.ReadUint8(); err != nil {
			return nil, err
		}
		// Realms flagged with an explicit version carry it inline.
		if r.Flags&RealmFlagSpecifyVers != 0 {
			if _, err = p.ReadBytes(5); err != nil {
				return nil, err
			}
		}
		realms = append(realms, r)
	}
	return realms, nil
}
