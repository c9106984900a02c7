// Package viz provides the terminal views for watching an evolution run.
//
// The package implements two Bubble Tea programs:
//
//   - [Model]: live view of a running engine with the best candidate next
//     to the target, generation counters and a fitness curve
//   - [Picker]: numbered pattern menu shown when no pattern is given
//
// Grids are drawn by [Canvas] using upper half-block cells, so every
// terminal row holds two pixel rows.
//
// # Key Bindings
//
//	q     - Stop the run and exit
//	T     - Cycle color themes
//	D     - Toggle the diff view (per-pixel distance to the target)
//	1-4   - Pick a pattern (picker only)
package viz
