package evo

import "github.com/sourcegraph/conc/pool"

// evaluateAll scores every candidate against target. With workers > 1 the
// population is split into contiguous chunks evaluated concurrently; each
// candidate is written by exactly one goroutine and target is read-only.
func evaluateAll(population []*Candidate, target Grid, workers int) error {
	n := len(population)
	if workers <= 1 || n < 2 {
		for _, c := range population {
			if err := c.Evaluate(target); err != nil {
				return err
			}
		}
		return nil
	}

	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunk := population[start:end]
		p.Go(func() error {
			for _, c := range chunk {
				if err := c.Evaluate(target); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return p.Wait()
}
