package evo

import (
	"math/rand"
	"testing"
)

func TestSinglePointBoundaries(t *testing.T) {
	a := randomCandidate(1024, 1)
	b := randomCandidate(1024, 2)
	child := NewCandidate(1024)

	SinglePointInto(child, a, b, 0)
	if !child.Pixels.Equal(b.Pixels) {
		t.Error("split 0 should yield parent2")
	}

	SinglePointInto(child, a, b, 1024)
	if !child.Pixels.Equal(a.Pixels) {
		t.Error("split N should yield parent1")
	}

	SinglePointInto(child, a, b, 100)
	for i := 0; i < 1024; i++ {
		want := b.Pixels[i]
		if i < 100 {
			want = a.Pixels[i]
		}
		if child.Pixels[i] != want {
			t.Fatalf("pixel %d: expected %v, got %v", i, want, child.Pixels[i])
		}
	}
}

func TestAverageIdempotent(t *testing.T) {
	x := randomCandidate(1024, 3)
	child := NewCandidate(1024)
	AverageInto(child, x, x)
	if !child.Pixels.Equal(x.Pixels) {
		t.Error("average of identical parents should reproduce the parent")
	}
}

func TestAverageFloors(t *testing.T) {
	a := &Candidate{Pixels: Grid{{255, 0, 3}}}
	b := &Candidate{Pixels: Grid{{254, 1, 0}}}
	child := NewCandidate(1)
	AverageInto(child, a, b)
	expected := Color{254, 0, 1}
	if child.Pixels[0] != expected {
		t.Errorf("expected %v, got %v", expected, child.Pixels[0])
	}
}

func TestUniformTakesFromParents(t *testing.T) {
	a := &Candidate{Pixels: make(Grid, 2000)}
	b := &Candidate{Pixels: make(Grid, 2000)}
	for i := range b.Pixels {
		b.Pixels[i] = Color{255, 255, 255}
	}
	child := NewCandidate(2000)
	UniformInto(child, a, b, rand.New(rand.NewSource(4)))

	fromA := 0
	for i, p := range child.Pixels {
		switch p {
		case a.Pixels[i]:
			fromA++
		case b.Pixels[i]:
		default:
			t.Fatalf("pixel %d came from neither parent", i)
		}
	}
	if fromA < 850 || fromA > 1150 {
		t.Errorf("expected about half from parent1, got %d of 2000", fromA)
	}
}

func TestCrossoverUsesAllStrategies(t *testing.T) {
	a := randomCandidate(64, 5)
	b := randomCandidate(64, 6)
	rng := rand.New(rand.NewSource(12))

	seen := map[Strategy]int{}
	for i := 0; i < 300; i++ {
		child := NewCandidate(64)
		child.Fitness = 0.9
		seen[CrossoverInto(child, a, b, rng)]++
		if child.Fitness != 0 {
			t.Fatal("child fitness should be reset")
		}
	}
	for _, s := range []Strategy{StrategyUniform, StrategySinglePoint, StrategyAverage} {
		if seen[s] < 50 {
			t.Errorf("strategy %s used %d times, expected roughly 100", s, seen[s])
		}
	}
}

func TestCrossoverDraws(t *testing.T) {
	a := randomCandidate(32, 7)
	b := randomCandidate(32, 8)

	tests := []struct {
		strategy Strategy
		expected int
	}{
		{StrategyUniform, 1 + 32},
		{StrategySinglePoint, 2},
		{StrategyAverage, 1},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			ints := make([]int, 64)
			ints[0] = int(tt.strategy)
			rng := &fixedRand{ints: ints}
			CrossoverInto(NewCandidate(32), a, b, rng)
			if used := 64 - len(rng.ints); used != tt.expected {
				t.Errorf("expected %d draws, got %d", tt.expected, used)
			}
		})
	}
}

func TestCrossoverAllocates(t *testing.T) {
	a := randomCandidate(16, 1)
	b := randomCandidate(16, 2)
	child := Crossover(a, b, rand.New(rand.NewSource(1)))
	if len(child.Pixels) != 16 {
		t.Fatalf("expected 16 pixels, got %d", len(child.Pixels))
	}
	if &child.Pixels[0] == &a.Pixels[0] || &child.Pixels[0] == &b.Pixels[0] {
		t.Error("child aliases a parent")
	}
}
