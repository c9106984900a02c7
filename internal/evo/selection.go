package evo

// Tournament draws size contenders uniformly with replacement from ranked
// and returns the index of the fittest. Ties keep the earliest draw, so the
// same index may be returned for consecutive calls.
func Tournament(rng Rand, ranked []*Candidate, size int) int {
	n := len(ranked)
	best := rng.Intn(n)
	for i := 1; i < size; i++ {
		contender := rng.Intn(n)
		if ranked[contender].Fitness > ranked[best].Fitness {
			best = contender
		}
	}
	return best
}
