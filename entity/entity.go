package entity

// Kind is the closed set of object kinds a snapshot can carry. Unknown
// discriminators map to KindGeneric rather than failing the decode.
type Kind uint8

const (
	KindObject Kind = iota
	KindItem
	KindContainer
	KindUnit
	KindPlayer
	KindGameObject
	KindDynamicObject
	KindCorpse
	KindGeneric Kind = 0xFF
)

// KindFromWire maps a wire discriminator to a Kind.
func KindFromWire(v uint8) Kind {
	if v <= uint8(KindCorpse) {
		return Kind(v)
	}
	return KindGeneric
}

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindItem:
		return "item"
	case KindContainer:
		return "container"
	case KindUnit:
		return "unit"
	case KindPlayer:
		return "player"
	case KindGameObject:
		return "gameobject"
	case KindDynamicObject:
		return "dynamicobject"
	case KindCorpse:
		return "corpse"
	default:
		return "generic"
	}
}

// RemoveReason explains why an entity left the client's view.
type RemoveReason uint8

const (
	RemoveOutOfRange RemoveReason = iota
	RemoveDespawn
	RemoveDeath
)

// String returns the reason's name.
func (r RemoveReason) String() string {
	switch r {
	case RemoveOutOfRange:
		return "out-of-range"
	case RemoveDespawn:
		return "despawn"
	case RemoveDeath:
		return "death"
	default:
		return "unknown"
	}
}

// Movement is an entity's position and facing.
type Movement struct {
	X, Y, Z     float32
	Orientation float32
}

// Record is one decoded entity snapshot: the 64-bit identifier, the kind
// discriminator, the sparse field mapping and, when the snapshot carried
// a movement block, the position. Records are produced by the decoder
// and owned by the consumer's table.
type Record struct {
	ID       uint64
	Kind     Kind
	Fields   map[uint16]uint32
	Movement *Movement
}

// Table is the external collaborator that owns entity state. The decoder
// only produces and mutates records through it.
type Table interface {
	// Has reports whether an entity is currently tracked.
	Has(id uint64) bool

	// OnEntityCreated delivers a full snapshot (create or replace).
	OnEntityCreated(id uint64, record *Record)

	// OnEntityUpdated delivers an incremental field change set.
	OnEntityUpdated(id uint64, fields map[uint16]uint32)

	// OnEntityMoved delivers a movement-only update.
	OnEntityMoved(id uint64, movement Movement)

	// OnEntityRemoved removes an entity from view.
	OnEntityRemoved(id uint64, reason RemoveReason)
}
