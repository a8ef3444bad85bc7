package kumitate

import "iter"

// WorldBuilder populates a World through chained calls. It keeps a "current
// entity" cursor that Entity, SetEntity and Spawn move and that With,
// WithBundle and ForCurrentEntity act upon.
//
// A builder holds the World's write lock from Build until Release, so no
// other code can touch the World while a chain is in progress. Calls that
// need a current entity panic when none is set, and failures reported by the
// World are re-raised as panics carrying the World's error unchanged. Use
// BuildFunc, or defer Release, so the lock is dropped on those paths too.
type WorldBuilder struct {
	world      *World
	current    Entity
	hasCurrent bool
}

// Build lends w to a new WorldBuilder. It blocks until no other builder or
// World call holds w, and w stays locked until Release is called.
func (w *World) Build() *WorldBuilder {
	w.mu.Lock()
	w.logger.Debug().Msg("world builder acquired")
	return &WorldBuilder{world: w}
}

// BuildFunc runs fn with a builder over w and releases it when fn returns
// or panics.
func (w *World) BuildFunc(fn func(b *WorldBuilder)) {
	b := w.Build()
	defer b.Release()
	fn(b)
}

// Release gives the World back. Calling it more than once is a no-op; any
// other call on a released builder, except CurrentEntity, panics.
func (b *WorldBuilder) Release() {
	w := b.world
	if w == nil {
		return
	}
	b.world = nil
	w.logger.Debug().Msg("world builder released")
	w.mu.Unlock()
}

// Entity reserves a new entity with no components and makes it current.
func (b *WorldBuilder) Entity() *WorldBuilder {
	w := b.borrowed()
	b.setCurrent(w.reserveEntity())
	return b
}

// SetEntity makes e the current entity. e is not checked against the World;
// an entity that is not alive is reported by the next call that uses it.
func (b *WorldBuilder) SetEntity(e Entity) *WorldBuilder {
	b.borrowed()
	b.setCurrent(e)
	return b
}

// With adds component to the current entity under its dynamic type, or
// overwrites the value already there.
func (b *WorldBuilder) With(component any) *WorldBuilder {
	w := b.borrowed()
	e := b.mustCurrent("add component")
	b.check(w.insertValues(e, []componentValue{dynamicValue(component)}))
	return b
}

// With adds component to the current entity of b under the static type T.
// Unlike the method form it keeps interface types such as fmt.Stringer as the
// component type.
func With[T any](b *WorldBuilder, component T) *WorldBuilder {
	w := b.borrowed()
	e := b.mustCurrent("add component")
	b.check(w.insertValues(e, []componentValue{typedValue(&component)}))
	return b
}

// WithBundle adds all components of bundle to the current entity in one
// step.
func (b *WorldBuilder) WithBundle(bundle Bundle) *WorldBuilder {
	w := b.borrowed()
	e := b.mustCurrent("add bundle")
	b.check(w.insertValues(e, bundleValues(bundle, nil)))
	return b
}

// Spawn creates a new entity carrying bundle and makes it current.
func (b *WorldBuilder) Spawn(bundle Bundle) *WorldBuilder {
	w := b.borrowed()
	b.setCurrent(w.spawnValues(bundleValues(bundle, nil)))
	return b
}

// SpawnBatch spawns one entity per bundle in seq, in order. The current
// entity is left as it was.
func (b *WorldBuilder) SpawnBatch(seq iter.Seq[Bundle]) *WorldBuilder {
	return SpawnBatchWith(b, seq)
}

// SpawnBatchWith is SpawnBatch for a sequence of one concrete bundle type,
// such as slices.Values over a []Bundle2[Position, Velocity].
func SpawnBatchWith[B Bundle](b *WorldBuilder, seq iter.Seq[B]) *WorldBuilder {
	w := b.borrowed()
	spawnBatch(w, seq)
	return b
}

// CurrentEntity returns the current entity and whether one is set.
func (b *WorldBuilder) CurrentEntity() (Entity, bool) {
	return b.current, b.hasCurrent
}

// ForCurrentEntity calls fn with the current entity. fn runs while the
// World is locked by b and must not call World methods.
func (b *WorldBuilder) ForCurrentEntity(fn func(e Entity)) *WorldBuilder {
	b.borrowed()
	fn(b.mustCurrent("run callback"))
	return b
}

func (b *WorldBuilder) borrowed() *World {
	if b.world == nil {
		panic("kumitate: world builder used after release")
	}
	return b.world
}

func (b *WorldBuilder) setCurrent(e Entity) {
	b.current = e
	b.hasCurrent = true
}

func (b *WorldBuilder) mustCurrent(op string) Entity {
	if !b.hasCurrent {
		panic("kumitate: cannot " + op + ": current entity is not set, spawn or select an entity first")
	}
	return b.current
}

func (b *WorldBuilder) check(err error) {
	if err != nil {
		panic(err)
	}
}
