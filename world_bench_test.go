package kumitate

import (
	"fmt"
	"slices"
	"testing"
)

func BenchmarkWorldBuilderSpawn(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				b.StartTimer()
				w.BuildFunc(func(wb *WorldBuilder) {
					for i := range size {
						wb.Spawn(B2(position{X: float32(i)}, velocity{VX: 1}))
					}
				})
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkWorldBuilderChain(b *testing.B) {
	sizes := []int{1000, 10000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				b.StartTimer()
				w.BuildFunc(func(wb *WorldBuilder) {
					for i := range size {
						wb.Entity().With(position{X: float32(i)}).With(velocity{VX: 1})
					}
				})
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkSpawnBatch(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		bundles := make([]Bundle2[position, velocity], size)
		for i := range bundles {
			bundles[i] = B2(position{X: float32(i)}, velocity{VX: 1})
		}
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				b.StartTimer()
				SpawnBatch(w, slices.Values(bundles))
			}
			b.ReportAllocs()
		})
	}
}
