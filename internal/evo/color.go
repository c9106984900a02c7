package evo

// MaxColorDifference is the largest value Color.Difference can return.
const MaxColorDifference = 3 * 255

// Rand is the random source consumed by every stochastic operation.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Color is an 8-bit RGB value.
type Color struct {
	R, G, B uint8
}

// Difference returns the sum of absolute per-channel differences, in [0, 765].
func (c Color) Difference(o Color) int {
	return absDiff(c.R, o.R) + absDiff(c.G, o.G) + absDiff(c.B, o.B)
}

// Mutate picks one channel uniformly and shifts it by a uniform delta in
// [-strength, strength], clamped to [0, 255]. It consumes two draws from rng.
func (c Color) Mutate(rng Rand, strength int) Color {
	channel := rng.Intn(3)
	delta := rng.Intn(2*strength+1) - strength

	switch channel {
	case 0:
		c.R = clampChannel(int(c.R) + delta)
	case 1:
		c.G = clampChannel(int(c.G) + delta)
	default:
		c.B = clampChannel(int(c.B) + delta)
	}
	return c
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
