package comparison

import (
	"testing"

	"github.com/heliaxdev/poseidon-bench/internal/input"
)

func benchmarkFamily(b *testing.B, f Family) {
	for _, rate := range f.Rates {
		g, err := f.NewGroup(rate, input.GenerateSeeded(input.DefaultSeed))
		if err != nil {
			b.Fatalf("NewGroup failed: %v", err)
		}
		b.Run(g.Name, func(b *testing.B) {
			for _, trial := range g.Trials {
				b.Run(trial.Label, func(b *testing.B) {
					b.ReportAllocs()
					for b.Loop() {
						if err := trial.Run(); err != nil {
							b.Fatal(err)
						}
					}
				})
			}
		})
	}
}

func BenchmarkPoseidonComparison(b *testing.B)  { benchmarkFamily(b, Poseidon()) }
func BenchmarkPoseidon2Comparison(b *testing.B) { benchmarkFamily(b, Poseidon2()) }
