package evo

import "fmt"

// Candidate is one evolved image. Fitness is stale after any change to
// Pixels until Evaluate runs again.
type Candidate struct {
	Pixels  Grid
	Fitness float64
}

func NewCandidate(n int) *Candidate {
	return &Candidate{Pixels: NewGrid(n)}
}

// Randomize sets every channel to an independent uniform value in [0, 255].
// It consumes 3×len(Pixels) draws.
func (c *Candidate) Randomize(rng Rand) {
	for i := range c.Pixels {
		c.Pixels[i] = Color{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
		}
	}
}

// Evaluate scores the candidate against target as 1 - totalDiff/maxDiff.
// An exact match scores 1.0.
func (c *Candidate) Evaluate(target Grid) error {
	if len(target) != len(c.Pixels) {
		return fmt.Errorf("%w: candidate %d, target %d", ErrDimensionMismatch, len(c.Pixels), len(target))
	}
	if len(target) == 0 {
		c.Fitness = 1
		return nil
	}

	total := 0
	for i, p := range c.Pixels {
		total += p.Difference(target[i])
	}
	maxDiff := float64(len(target) * MaxColorDifference)
	c.Fitness = 1 - float64(total)/maxDiff
	return nil
}

// Mutate perturbs each pixel with probability rate. One uniform draw is
// consumed per pixel, plus two per mutated pixel.
func (c *Candidate) Mutate(rng Rand, rate float64, strength int) {
	for i := range c.Pixels {
		if rng.Float64() < rate {
			c.Pixels[i] = c.Pixels[i].Mutate(rng, strength)
		}
	}
}

func (c *Candidate) Raster() []byte {
	return c.Pixels.Raster()
}

func (c *Candidate) Clone() *Candidate {
	return &Candidate{Pixels: c.Pixels.Clone(), Fitness: c.Fitness}
}

// CopyFrom overwrites c with src, reusing c's pixel storage when it fits.
func (c *Candidate) CopyFrom(src *Candidate) {
	if cap(c.Pixels) < len(src.Pixels) {
		c.Pixels = make(Grid, len(src.Pixels))
	}
	c.Pixels = c.Pixels[:len(src.Pixels)]
	copy(c.Pixels, src.Pixels)
	c.Fitness = src.Fitness
}
