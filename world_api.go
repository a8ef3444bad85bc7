package kumitate

import (
	"iter"
	"reflect"
)

// ReserveEntity creates a live entity with no components.
func (w *World) ReserveEntity() Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reserveEntity()
}

func (w *World) reserveEntity() Entity {
	return w.createEntity(w.archetypes.list[0])
}

// Insert adds component to e, or overwrites it when e already has a
// component of type T. It returns ErrEntityNotFound when e is not alive.
func Insert[T any](w *World, e Entity, component T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.insertValues(e, []componentValue{typedValue(&component)})
}

// InsertValue is Insert for a component whose type is only known at run
// time. The component is stored under its dynamic type.
func (w *World) InsertValue(e Entity, component any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.insertValues(e, []componentValue{dynamicValue(component)})
}

// InsertBundle adds every component of b to e in a single archetype move,
// overwriting the ones e already has. Nothing is written when e is not
// alive.
func (w *World) InsertBundle(e Entity, b Bundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.insertValues(e, bundleValues(b, nil))
}

// insertValues writes vals onto e. The entity is checked and the component
// types resolved before anything is moved, so a failure leaves e untouched.
func (w *World) insertValues(e Entity, vals []componentValue) error {
	if !w.isValidNoLock(e) {
		return entityNotFound(e)
	}
	ids, _ := w.componentIDs(vals)
	if len(vals) == 0 {
		return nil
	}
	meta := &w.entities.metas[e.ID]
	src := w.archetypes.list[meta.archetypeIndex]
	mask := src.mask
	for _, id := range ids {
		mask.set(id)
	}
	if mask != src.mask {
		w.moveEntity(e, meta, src, w.archetypeFor(mask))
	}
	a := w.archetypes.list[meta.archetypeIndex]
	c := a.chunks[meta.chunkIndex]
	for i, v := range vals {
		w.value(c, ids[i], meta.index).Set(v.val)
	}
	return nil
}

// Spawn creates an entity carrying exactly the components of b.
func (w *World) Spawn(b Bundle) Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawnValues(bundleValues(b, nil))
}

func (w *World) spawnValues(vals []componentValue) Entity {
	ids, mask := w.componentIDs(vals)
	a := w.archetypeFor(mask)
	e := w.createEntity(a)
	meta := w.entities.metas[e.ID]
	c := a.chunks[meta.chunkIndex]
	for i, v := range vals {
		w.value(c, ids[i], meta.index).Set(v.val)
	}
	return e
}

// SpawnBatch spawns one entity per bundle yielded by seq, in order, and
// returns how many were spawned. seq is consumed once and must not call back
// into w.
func SpawnBatch[B Bundle](w *World, seq iter.Seq[B]) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return spawnBatch(w, seq)
}

func spawnBatch[B Bundle](w *World, seq iter.Seq[B]) int {
	var buf []componentValue
	n := 0
	for b := range seq {
		buf = bundleValues(b, buf[:0])
		w.spawnValues(buf)
		n++
	}
	clear(buf)
	w.logger.Debug().Int("count", n).Msg("batch spawned")
	return n
}

// Get returns a pointer to the component of type T on e. The pointer stays
// valid until e changes archetype or is removed.
func Get[T any](w *World, e Entity) (*T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.isValidNoLock(e) {
		return nil, false
	}
	id, ok := w.components.typeToID[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.list[meta.archetypeIndex]
	if !a.mask.has(id) {
		return nil, false
	}
	return (*T)(w.slot(a.chunks[meta.chunkIndex], id, meta.index)), true
}

// Has reports whether e is alive and has a component of type T.
func Has[T any](w *World, e Entity) bool {
	_, ok := Get[T](w, e)
	return ok
}

// Remove deletes the component of type T from e. Removing a component the
// entity does not have is a no-op.
func Remove[T any](w *World, e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isValidNoLock(e) {
		return entityNotFound(e)
	}
	id, ok := w.components.typeToID[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	meta := &w.entities.metas[e.ID]
	src := w.archetypes.list[meta.archetypeIndex]
	if !src.mask.has(id) {
		return nil
	}
	mask := src.mask
	mask.unset(id)
	w.moveEntity(e, meta, src, w.archetypeFor(mask))
	return nil
}

// ComponentTypes returns the component types e carries in registration
// order, or nil when e is not alive.
func (w *World) ComponentTypes(e Entity) []reflect.Type {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.isValidNoLock(e) {
		return nil
	}
	a := w.archetypes.list[w.entities.metas[e.ID].archetypeIndex]
	types := make([]reflect.Type, len(a.ids))
	for i, id := range a.ids {
		types[i] = w.components.types[id]
	}
	return types
}
