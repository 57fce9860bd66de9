package entity

// MemoryTable is the default Table: a flat in-memory map of records.
// It is not safe for concurrent use; the session drives it from one
// goroutine.
type MemoryTable struct {
	records map[uint64]*Record
}

// NewMemoryTable creates an empty table.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{records: make(map[uint64]*Record)}
}

// Has reports whether an entity is tracked.
func (t *MemoryTable) Has(id uint64) bool {
	_, ok := t.records[id]
	return ok
}

// Get returns the record for id, or nil.
func (t *MemoryTable) Get(id uint64) *Record {
	return t.records[id]
}

// Len returns the number of tracked entities.
func (t *MemoryTable) Len() int {
	return len(t.records)
}

// All returns the live record map. Callers must not mutate it while the
// session is being updated.
func (t *MemoryTable) All() map[uint64]*Record {
	return t.records
}

// OnEntityCreated stores a full snapshot, replacing any previous record.
func (t *MemoryTable) OnEntityCreated(id uint64, record *Record) {
	t.records[id] = record
}

// OnEntityUpdated merges changed fields into an existing record.
func (t *MemoryTable) OnEntityUpdated(id uint64, fields map[uint16]uint32) {
	record, ok := t.records[id]
	if !ok {
		return
	}
	if record.Fields == nil {
		record.Fields = make(map[uint16]uint32, len(fields))
	}
	for k, v := range fields {
		record.Fields[k] = v
	}
}

// OnEntityMoved updates an existing record's position.
func (t *MemoryTable) OnEntityMoved(id uint64, movement Movement) {
	if record, ok := t.records[id]; ok {
		m := movement
		record.Movement = &m
	}
}

// OnEntityRemoved drops the record whatever the reason.
func (t *MemoryTable) OnEntityRemoved(id uint64, reason RemoveReason) {
	delete(t.records, id)
}
