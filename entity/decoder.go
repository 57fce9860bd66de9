package entity

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/MeulenG/Puhaa-WoW/packet"
)

// Update block discriminators in the batched object-update message.
const (
	updateValues      uint8 = 0
	updateMovement    uint8 = 1
	updateCreate      uint8 = 2
	updateCreate2     uint8 = 3
	updateOutOfRange  uint8 = 4
	updateNearObjects uint8 = 5
)

// UpdateBlock is one parsed block of an object-update message.
type UpdateBlock struct {
	Type     uint8
	GUID     uint64
	Kind     Kind
	Movement *Movement
	Fields   map[uint16]uint32
}

// UpdateData is a fully parsed object-update message: removal candidates
// first, then the ordered update blocks.
type UpdateData struct {
	OutOfRange []uint64
	Blocks     []UpdateBlock
}

// Destroy is the decoded single-entity destroy message.
type Destroy struct {
	GUID  uint64
	Death bool
}

// Decoder parses and applies snapshot/delta messages. It retains no
// entity state of its own.
type Decoder struct {
	log    *logrus.Logger
	fields logrus.Fields
}

// NewDecoder creates a decoder with an injected logger (nil selects the
// standard logger).
func NewDecoder(logger *logrus.Logger) *Decoder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Decoder{log: logger, fields: logrus.Fields{"component": "entity"}}
}

// DecodeUpdate parses a whole batched object-update message. Any
// structural failure aborts the message: the returned data is nil and
// nothing should be applied.
func (d *Decoder) DecodeUpdate(p *packet.Packet) (*UpdateData, error) {
	blockCount, err := p.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("entity: reading block count: %w", err)
	}

	data := &UpdateData{}

	// An out-of-range list, when present, leads the message. Probe the
	// discriminator and rewind if it is an ordinary block.
	if p.Remaining() > 0 {
		probe, err := p.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("entity: probing first block: %w", err)
		}
		if probe == updateOutOfRange {
			count, err := p.ReadUint32()
			if err != nil {
				return nil, fmt.Errorf("entity: reading out-of-range count: %w", err)
			}
			for i := uint32(0); i < count; i++ {
				guid, err := ReadPackedGUID(p)
				if err != nil {
					return nil, fmt.Errorf("entity: reading out-of-range guid %d: %w", i, err)
				}
				data.OutOfRange = append(data.OutOfRange, guid)
			}
		} else {
			p.SetReadPos(p.ReadPos() - 1)
		}
	}

	for i := uint32(0); i < blockCount; i++ {
		block, err := d.decodeBlock(p)
		if err != nil {
			return nil, fmt.Errorf("entity: block %d of %d: %w", i+1, blockCount, err)
		}
		data.Blocks = append(data.Blocks, *block)
	}

	return data, nil
}

func (d *Decoder) decodeBlock(p *packet.Packet) (*UpdateBlock, error) {
	blockType, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	block := &UpdateBlock{Type: blockType}

	switch blockType {
	case updateValues:
		if block.GUID, err = ReadPackedGUID(p); err != nil {
			return nil, err
		}
		if block.Fields, err = decodeFieldMask(p); err != nil {
			return nil, err
		}

	case updateMovement:
		if block.GUID, err = ReadPackedGUID(p); err != nil {
			return nil, err
		}
		if block.Movement, err = decodeMovement(p); err != nil {
			return nil, err
		}

	case updateCreate, updateCreate2:
		if block.GUID, err = ReadPackedGUID(p); err != nil {
			return nil, err
		}
		kindByte, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		block.Kind = KindFromWire(kindByte)
		if block.Movement, err = decodeMovement(p); err != nil {
			return nil, err
		}
		if block.Fields, err = decodeFieldMask(p); err != nil {
			return nil, err
		}

	case updateNearObjects:
		// Advisory only; carries no payload this core consumes.

	default:
		return nil, fmt.Errorf("unknown update block type %d", blockType)
	}

	return block, nil
}

// decodeMovement reads the movement sub-record. Flag-dependent extensions
// (pitch, fall data) follow the fixed part but the fixed part is all the
// entity table consumes.
func decodeMovement(p *packet.Packet) (*Movement, error) {
	if _, err := p.ReadUint32(); err != nil { // movement flags
		return nil, err
	}
	if _, err := p.ReadUint16(); err != nil { // extra flags
		return nil, err
	}
	if _, err := p.ReadUint32(); err != nil { // timestamp
		return nil, err
	}

	var m Movement
	var err error
	if m.X, err = p.ReadFloat32(); err != nil {
		return nil, err
	}
	if m.Y, err = p.ReadFloat32(); err != nil {
		return nil, err
	}
	if m.Z, err = p.ReadFloat32(); err != nil {
		return nil, err
	}
	if m.Orientation, err = p.ReadFloat32(); err != nil {
		return nil, err
	}
	return &m, nil
}

// decodeFieldMask reads a block count, that many 32-bit mask words, and
// one 32-bit value per set bit. Values follow mask-word order and then
// bit order within a word, least-significant bit first; the global field
// index is wordIndex*32 + bitIndex.
func decodeFieldMask(p *packet.Packet) (map[uint16]uint32, error) {
	wordCount, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	fields := make(map[uint16]uint32)
	if wordCount == 0 {
		return fields, nil
	}

	masks := make([]uint32, wordCount)
	for i := range masks {
		if masks[i], err = p.ReadUint32(); err != nil {
			return nil, err
		}
	}

	for word, mask := range masks {
		for bit := 0; bit < 32; bit++ {
			if mask&(1<<bit) == 0 {
				continue
			}
			value, err := p.ReadUint32()
			if err != nil {
				return nil, err
			}
			fields[uint16(word*32+bit)] = value
		}
	}
	return fields, nil
}

// DecodeDestroy parses the single-entity destroy message: a plain 64-bit
// identifier and a death/despawn flag.
func (d *Decoder) DecodeDestroy(p *packet.Packet) (*Destroy, error) {
	guid, err := p.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("entity: reading destroy guid: %w", err)
	}
	deathFlag, err := p.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("entity: reading destroy reason: %w", err)
	}
	return &Destroy{GUID: guid, Death: deathFlag != 0}, nil
}

// ApplyUpdate pushes a successfully parsed update message into the
// table: removal candidates first, then blocks in order. Updates for
// identifiers the table does not know are warnings, never failures.
func (d *Decoder) ApplyUpdate(data *UpdateData, table Table) {
	for _, guid := range data.OutOfRange {
		if !table.Has(guid) {
			d.log.WithFields(d.fields).WithField("guid", fmt.Sprintf("0x%X", guid)).
				Warn("Out-of-range notice for unknown entity")
			continue
		}
		table.OnEntityRemoved(guid, RemoveOutOfRange)
	}

	for i := range data.Blocks {
		block := &data.Blocks[i]
		switch block.Type {
		case updateCreate, updateCreate2:
			record := &Record{
				ID:       block.GUID,
				Kind:     block.Kind,
				Fields:   block.Fields,
				Movement: block.Movement,
			}
			d.log.WithFields(d.fields).WithFields(logrus.Fields{
				"guid": fmt.Sprintf("0x%X", block.GUID),
				"kind": block.Kind.String(),
			}).Debug("Entity created")
			table.OnEntityCreated(block.GUID, record)

		case updateValues:
			if !table.Has(block.GUID) {
				d.log.WithFields(d.fields).WithField("guid", fmt.Sprintf("0x%X", block.GUID)).
					Warn("Field update for unknown entity")
				continue
			}
			table.OnEntityUpdated(block.GUID, block.Fields)

		case updateMovement:
			if !table.Has(block.GUID) {
				d.log.WithFields(d.fields).WithField("guid", fmt.Sprintf("0x%X", block.GUID)).
					Warn("Movement update for unknown entity")
				continue
			}
			table.OnEntityMoved(block.GUID, *block.Movement)
		}
	}
}

// ApplyDestroy pushes a destroy message into the table. Destroying an
// unknown identifier is logged and otherwise ignored.
func (d *Decoder) ApplyDestroy(destroy *Destroy, table Table) {
	if !table.Has(destroy.GUID) {
		d.log.WithFields(d.fields).WithField("guid", fmt.Sprintf("0x%X", destroy.GUID)).
			Warn("Destroy for unknown entity")
		return
	}
	reason := RemoveDespawn
	if destroy.Death {
		reason = RemoveDeath
	}
	table.OnEntityRemoved(destroy.GUID, reason)
}
