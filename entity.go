package kumitate

import "fmt"

// Entity identifies one row of component data in a World. It pairs a
// recyclable 32-bit ID with a 32-bit version, so a handle kept after its
// entity was removed never aliases the entity that later reuses the ID.
type Entity struct {
	// ID is the recyclable slot of the entity.
	ID uint32
	// Version changes every time the ID is handed out again.
	Version uint32
}

// String implements fmt.Stringer.
func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.ID, e.Version)
}

// entityMeta locates a live entity inside the archetype storage.
type entityMeta struct {
	archetypeIndex int    // index in archetypeRegistry.list
	chunkIndex     int    // index in archetype.chunks
	index          int    // row inside the chunk
	version        uint32 // 0 while the ID is free
}

func (m *entityMeta) reset() {
	m.archetypeIndex = -1
	m.chunkIndex = -1
	m.index = -1
	m.version = 0
}
