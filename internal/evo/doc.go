// Package evo provides the evolutionary engine that evolves a raster image
// toward a target pattern.
//
// The package defines the building blocks of a generational genetic
// algorithm over fixed-size RGB grids:
//
//   - [Color]: a 3-channel pixel with a distance metric and bounded mutation
//   - [Grid]: a row-major sequence of colors (the target and every genome)
//   - [Candidate]: a grid plus its fitness against the target
//   - [Engine]: owns the population and runs evaluate, select, reproduce
//     and replace until convergence or the generation cap
//
// # Example
//
//	rng := rand.New(rand.NewSource(seed))
//	eng, _ := evo.New(cfg, target, rng)
//	eng.SetPersister(export.NewPNGWriter(1))
//	result, _ := eng.Run(ctx)
//
// # Randomness
//
// Every stochastic operation takes its random source explicitly. A run is
// reproducible given the seed of the source passed to [New].
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. With Config.Workers > 1 fitness
// evaluation fans out over a worker pool; selection and reproduction always
// run sequentially on the caller's goroutine.
package evo
