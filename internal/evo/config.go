package evo

import "fmt"

const (
	DefaultWidth              = 32
	DefaultHeight             = 32
	DefaultPopulationSize     = 200
	DefaultMutationRate       = 0.03
	DefaultMutationStrength   = 25
	DefaultCrossoverRate      = 0.6
	DefaultMaxGenerations     = 5000
	DefaultTargetFitness      = 0.96
	DefaultCheckpointInterval = 500
	DefaultTournamentSize     = 3
)

// Config holds the run-level knobs. It is fixed once the engine is built.
type Config struct {
	Width              int
	Height             int
	PopulationSize     int
	MutationRate       float64
	MutationStrength   int
	CrossoverRate      float64
	MaxGenerations     int
	TargetFitness      float64
	CheckpointInterval int // 0 disables periodic checkpoints
	TournamentSize     int
	Workers            int // >1 evaluates fitness on a worker pool
}

func DefaultConfig() Config {
	return Config{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		PopulationSize:     DefaultPopulationSize,
		MutationRate:       DefaultMutationRate,
		MutationStrength:   DefaultMutationStrength,
		CrossoverRate:      DefaultCrossoverRate,
		MaxGenerations:     DefaultMaxGenerations,
		TargetFitness:      DefaultTargetFitness,
		CheckpointInterval: DefaultCheckpointInterval,
		TournamentSize:     DefaultTournamentSize,
		Workers:            1,
	}
}

func (c Config) GridSize() int {
	return c.Width * c.Height
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.PopulationSize < 1:
		return fmt.Errorf("%w: population size must be at least 1, got %d", ErrInvalidConfig, c.PopulationSize)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation rate must be in [0,1], got %f", ErrInvalidConfig, c.MutationRate)
	case c.MutationStrength < 0:
		return fmt.Errorf("%w: mutation strength must be non-negative, got %d", ErrInvalidConfig, c.MutationStrength)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return fmt.Errorf("%w: crossover rate must be in [0,1], got %f", ErrInvalidConfig, c.CrossoverRate)
	case c.MaxGenerations < 0:
		return fmt.Errorf("%w: max generations must be non-negative, got %d", ErrInvalidConfig, c.MaxGenerations)
	case c.TargetFitness < 0 || c.TargetFitness > 1:
		return fmt.Errorf("%w: target fitness must be in [0,1], got %f", ErrInvalidConfig, c.TargetFitness)
	case c.CheckpointInterval < 0:
		return fmt.Errorf("%w: checkpoint interval must be non-negative, got %d", ErrInvalidConfig, c.CheckpointInterval)
	case c.TournamentSize < 1:
		return fmt.Errorf("%w: tournament size must be at least 1, got %d", ErrInvalidConfig, c.TournamentSize)
	}
	return nil
}
