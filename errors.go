package kumitate

import "github.com/rotisserie/eris"

// ErrEntityNotFound is returned by store operations addressed to an entity
// that is not alive: never spawned, already removed, or carrying a stale
// version.
var ErrEntityNotFound = eris.New("entity not found")

func entityNotFound(e Entity) error {
	return eris.Wrapf(ErrEntityNotFound, "entity %d (version %d)", e.ID, e.Version)
}
