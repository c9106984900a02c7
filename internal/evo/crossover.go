package evo

// Strategy identifies a recombination method.
type Strategy int

const (
	StrategyUniform Strategy = iota
	StrategySinglePoint
	StrategyAverage
	numStrategies
)

func (s Strategy) String() string {
	switch s {
	case StrategyUniform:
		return "uniform"
	case StrategySinglePoint:
		return "single_point"
	case StrategyAverage:
		return "average"
	default:
		return "unknown"
	}
}

// Crossover returns a new child of a and b. The child's fitness is unset.
func Crossover(a, b *Candidate, rng Rand) *Candidate {
	child := NewCandidate(len(a.Pixels))
	CrossoverInto(child, a, b, rng)
	return child
}

// CrossoverInto recombines a and b into dst using a strategy chosen
// uniformly at random, and reports which one was used. dst must not alias
// a or b. All three must have the same length.
func CrossoverInto(dst, a, b *Candidate, rng Rand) Strategy {
	s := Strategy(rng.Intn(int(numStrategies)))
	switch s {
	case StrategyUniform:
		UniformInto(dst, a, b, rng)
	case StrategySinglePoint:
		SinglePointInto(dst, a, b, rng.Intn(len(a.Pixels)))
	default:
		AverageInto(dst, a, b)
	}
	return s
}

// UniformInto copies each position from a or b with equal probability.
func UniformInto(dst, a, b *Candidate, rng Rand) {
	for i := range dst.Pixels {
		if rng.Intn(2) == 0 {
			dst.Pixels[i] = a.Pixels[i]
		} else {
			dst.Pixels[i] = b.Pixels[i]
		}
	}
	dst.Fitness = 0
}

// SinglePointInto copies a before split and b from split onward.
// split is clamped to [0, len].
func SinglePointInto(dst, a, b *Candidate, split int) {
	if split < 0 {
		split = 0
	}
	if split > len(dst.Pixels) {
		split = len(dst.Pixels)
	}
	copy(dst.Pixels[:split], a.Pixels[:split])
	copy(dst.Pixels[split:], b.Pixels[split:])
	dst.Fitness = 0
}

// AverageInto sets every channel to the floor of the parents' mean.
func AverageInto(dst, a, b *Candidate) {
	for i := range dst.Pixels {
		pa, pb := a.Pixels[i], b.Pixels[i]
		dst.Pixels[i] = Color{
			R: uint8((int(pa.R) + int(pb.R)) / 2),
			G: uint8((int(pa.G) + int(pb.G)) / 2),
			B: uint8((int(pa.B) + int(pb.B)) / 2),
		}
	}
	dst.Fitness = 0
}
