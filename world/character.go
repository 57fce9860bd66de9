package world

// equipmentSlots is the fixed number of visible equipment entries in a
// roster record, bags included.
const equipmentSlots = 23

// EquipmentItem is one visible equipment entry on a roster character.
type EquipmentItem struct {
	DisplayModel  uint32
	InventoryType uint8
	Enchantment   uint32
}

// Pet is the roster character's active pet, zeroed when there is none.
type Pet struct {
	DisplayModel uint32
	Level        uint32
	Family       uint32
}

// Character is one entry of the account's character roster.
type Character struct {
	GUID           uint64
	Name           string
	Race           uint8
	Class          uint8
	Gender         uint8
	Appearance     uint32
	FacialFeatures uint8
	Level          uint8
	ZoneID         uint32
	MapID          uint32
	X, Y, Z        float32
	GuildID        uint32
	Flags          uint32
	Pet            Pet
	Equipment      [equipmentSlots]EquipmentItem
}

// HasGuild reports whether the character belongs to a guild.
func (c Character) HasGuild() bool {
	return c.GuildID != 0
}

// HasPet reports whether the character has an active pet.
func (c Character) HasPet() bool {
	return c.Pet.DisplayModel != 0
}
