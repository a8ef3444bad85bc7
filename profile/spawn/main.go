// Profiling:
// go build ./profile/spawn
// go tool pprof -http=":8000" -nodefraction=0.001 ./spawn mem.pprof

package main

import (
	"slices"

	"github.com/edwinsyarief/kumitate"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	bundles := make([]kumitate.Bundle2[comp1, comp2], numEntities/2)
	for i := range bundles {
		bundles[i] = kumitate.B2(comp1{V: int64(i)}, comp2{W: int64(i)})
	}
	for range rounds {
		w := kumitate.NewWorld(numEntities)
		for range iters {
			var spawned []kumitate.Entity
			w.BuildFunc(func(b *kumitate.WorldBuilder) {
				for i := range numEntities / 2 {
					b.Entity().With(comp1{V: int64(i)}).With(comp2{W: int64(i)})
					e, _ := b.CurrentEntity()
					spawned = append(spawned, e)
				}
				kumitate.SpawnBatchWith(b, slices.Values(bundles))
			})
			for _, e := range spawned {
				w.RemoveEntity(e)
			}
			w.ClearEntities()
		}
	}
}
