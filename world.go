// Package kumitate is an archetype-based entity component store with a
// fluent WorldBuilder for populating it.
//
// Entities live in archetypes, one per distinct set of component types, and
// each archetype stores its rows in fixed-size chunks. A WorldBuilder lends
// the World exclusively to one caller and keeps a "current entity" cursor
// that chained calls such as With and WithBundle act upon:
//
//	w := kumitate.NewWorld(1024)
//	w.BuildFunc(func(b *kumitate.WorldBuilder) {
//		b.Entity().With(Position{X: 1}).With(Velocity{X: 2})
//		b.Spawn(kumitate.B2(Position{}, Health{Current: 10}))
//	})
package kumitate

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"
)

// MaxComponentTypes is the number of distinct component types a World can
// store.
const MaxComponentTypes = 256

// ChunkSize is the number of rows held by a single archetype chunk.
const ChunkSize = 1024

// chunk holds the component columns for up to ChunkSize entities.
type chunk struct {
	entities [ChunkSize]Entity
	columns  [MaxComponentTypes]unsafe.Pointer
	size     int
}

// archetype stores every entity that has exactly the component set in mask.
type archetype struct {
	chunks []*chunk
	ids    []uint8 // component IDs, ascending
	mask   componentMask
	index  int // position in archetypeRegistry.list
	size   int // live rows across chunks
}

type componentRegistry struct {
	typeToID map[reflect.Type]uint8
	types    [MaxComponentTypes]reflect.Type
	sizes    [MaxComponentTypes]uintptr
	next     uint16
}

type entityRegistry struct {
	freeIDs     []uint32     // stack of unused IDs, next to hand out at the end
	metas       []entityMeta // indexed by Entity.ID
	capacity    int
	nextVersion uint32
}

type archetypeRegistry struct {
	byMask map[componentMask]int
	list   []*archetype
}

// World owns every entity and all component data.
//
// Public methods are safe for concurrent use. While a WorldBuilder is alive
// it holds the World's write lock, so any other access blocks until the
// builder is released.
type World struct {
	mu         sync.RWMutex
	logger     zerolog.Logger
	components componentRegistry
	entities   entityRegistry
	archetypes archetypeRegistry
}

// NewWorld creates a World with room for initialCapacity entities before it
// has to grow its entity tables.
func NewWorld(initialCapacity int, opts ...Option) *World {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	w := &World{
		logger: zerolog.Nop(),
		components: componentRegistry{
			typeToID: make(map[reflect.Type]uint8, 16),
		},
		entities: entityRegistry{
			freeIDs:     make([]uint32, initialCapacity),
			metas:       make([]entityMeta, initialCapacity),
			capacity:    initialCapacity,
			nextVersion: 1,
		},
		archetypes: archetypeRegistry{
			byMask: make(map[componentMask]int),
			list:   make([]*archetype, 0, 16),
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	for i := range w.entities.metas {
		w.entities.metas[i].reset()
	}
	// The empty archetype always sits at index 0.
	w.archetypeFor(componentMask{})
	return w
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities.capacity - len(w.entities.freeIDs)
}

// IsValid reports whether e refers to a live entity.
func (w *World) IsValid(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isValidNoLock(e)
}

func (w *World) isValidNoLock(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// RemoveEntity removes e and all of its components. Stale or unknown
// entities are ignored.
func (w *World) RemoveEntity(e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isValidNoLock(e) {
		return
	}
	meta := &w.entities.metas[e.ID]
	w.removeRow(w.archetypes.list[meta.archetypeIndex], meta)
	meta.reset()
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
}

// ClearEntities removes every entity while keeping the registered component
// types and archetypes.
func (w *World) ClearEntities() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.entities.metas {
		w.entities.metas[i].reset()
	}
	w.entities.freeIDs = w.entities.freeIDs[:0]
	for i := w.entities.capacity - 1; i >= 0; i-- {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(i))
	}
	for _, a := range w.archetypes.list {
		clear(a.chunks)
		a.chunks = a.chunks[:0]
		a.size = 0
	}
}

// componentID returns the ID for t, registering the type on first use.
func (w *World) componentID(t reflect.Type) uint8 {
	if id, ok := w.components.typeToID[t]; ok {
		return id
	}
	if w.components.next >= MaxComponentTypes {
		panic(fmt.Sprintf("kumitate: cannot register component %s: limit of %d component types reached", t, MaxComponentTypes))
	}
	id := uint8(w.components.next)
	w.components.typeToID[t] = id
	w.components.types[id] = t
	w.components.sizes[id] = t.Size()
	w.components.next++
	return id
}

// componentIDs registers the types of vals and returns their IDs together
// with the combined mask. A type repeated within vals panics.
func (w *World) componentIDs(vals []componentValue) ([]uint8, componentMask) {
	var mask componentMask
	ids := make([]uint8, len(vals))
	for i, v := range vals {
		id := w.componentID(v.typ)
		if mask.has(id) {
			duplicateComponentPanic(v.typ)
		}
		mask.set(id)
		ids[i] = id
	}
	return ids, mask
}

// archetypeFor returns the archetype storing exactly the components in mask,
// creating it if needed.
func (w *World) archetypeFor(mask componentMask) *archetype {
	if idx, ok := w.archetypes.byMask[mask]; ok {
		return w.archetypes.list[idx]
	}
	a := &archetype{
		chunks: make([]*chunk, 0, 4),
		ids:    mask.ids(),
		mask:   mask,
		index:  len(w.archetypes.list),
	}
	w.archetypes.list = append(w.archetypes.list, a)
	w.archetypes.byMask[mask] = a.index
	w.logger.Debug().
		Int("archetype", a.index).
		Int("components", len(a.ids)).
		Msg("archetype created")
	return a
}

func (w *World) newChunk(a *archetype) *chunk {
	c := &chunk{}
	for _, id := range a.ids {
		column := reflect.MakeSlice(reflect.SliceOf(w.components.types[id]), ChunkSize, ChunkSize)
		c.columns[id] = column.UnsafePointer()
	}
	return c
}

// slot returns a pointer to component id of row in c.
func (w *World) slot(c *chunk, id uint8, row int) unsafe.Pointer {
	return unsafe.Add(c.columns[id], uintptr(row)*w.components.sizes[id])
}

// value returns an addressable reflect.Value for component id of row in c.
func (w *World) value(c *chunk, id uint8, row int) reflect.Value {
	return reflect.NewAt(w.components.types[id], w.slot(c, id, row)).Elem()
}

// expand grows the entity tables by at least additional IDs.
func (w *World) expand(additional int) {
	oldCap := w.entities.capacity
	newCap := max(oldCap*2, 1, oldCap+additional)
	delta := newCap - oldCap
	newMetas := make([]entityMeta, delta)
	for i := range newMetas {
		newMetas[i].reset()
	}
	w.entities.metas = append(w.entities.metas, newMetas...)
	for i := range delta {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(newCap-1-i))
	}
	w.entities.capacity = newCap
}

// addRow appends e to the last chunk of a, opening a new chunk when full.
func (w *World) addRow(a *archetype, e Entity) (c *chunk, chunkIndex, row int) {
	if len(a.chunks) == 0 || a.chunks[len(a.chunks)-1].size == ChunkSize {
		a.chunks = append(a.chunks, w.newChunk(a))
	}
	chunkIndex = len(a.chunks) - 1
	c = a.chunks[chunkIndex]
	row = c.size
	c.entities[row] = e
	c.size++
	a.size++
	return c, chunkIndex, row
}

// createEntity allocates an ID and places a zero-valued row for it in a.
func (w *World) createEntity(a *archetype) Entity {
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]
	e := Entity{ID: id, Version: w.entities.nextVersion}
	w.entities.nextVersion++
	_, chunkIndex, row := w.addRow(a, e)
	meta := &w.entities.metas[id]
	meta.archetypeIndex = a.index
	meta.chunkIndex = chunkIndex
	meta.index = row
	meta.version = e.Version
	return e
}

// moveEntity moves the row described by meta from src to dst, carrying over
// the components both archetypes share.
func (w *World) moveEntity(e Entity, meta *entityMeta, src, dst *archetype) {
	oldChunk := src.chunks[meta.chunkIndex]
	oldRow := meta.index
	newChunk, chunkIndex, row := w.addRow(dst, e)
	for _, id := range src.ids {
		if dst.mask.has(id) {
			w.value(newChunk, id, row).Set(w.value(oldChunk, id, oldRow))
		}
	}
	w.removeRow(src, meta)
	meta.archetypeIndex = dst.index
	meta.chunkIndex = chunkIndex
	meta.index = row
}

// removeRow deletes the row described by meta from a by swapping the last
// row of the same chunk into its place. The entity ID is not freed.
func (w *World) removeRow(a *archetype, meta *entityMeta) {
	chunkIndex := meta.chunkIndex
	c := a.chunks[chunkIndex]
	idx := meta.index
	lastIdx := c.size - 1
	if idx < lastIdx {
		moved := c.entities[lastIdx]
		c.entities[idx] = moved
		for _, id := range a.ids {
			w.value(c, id, idx).Set(w.value(c, id, lastIdx))
		}
		w.entities.metas[moved.ID].index = idx
	}
	// Zero the vacated row so it does not pin memory.
	for _, id := range a.ids {
		w.value(c, id, lastIdx).SetZero()
	}
	c.entities[lastIdx] = Entity{}
	c.size--
	a.size--
	if c.size == 0 {
		lastChunk := len(a.chunks) - 1
		if chunkIndex < lastChunk {
			a.chunks[chunkIndex] = a.chunks[lastChunk]
			swapped := a.chunks[chunkIndex]
			for j := 0; j < swapped.size; j++ {
				w.entities.metas[swapped.entities[j].ID].chunkIndex = chunkIndex
			}
		}
		a.chunks[lastChunk] = nil
		a.chunks = a.chunks[:lastChunk]
	}
}
