package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/san-kum/evoimg/internal/evo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPattern          = "gradient"
	DefaultProgressInterval = 100
)

type Config struct {
	Pattern          string          `yaml:"pattern"`
	Seed             int64           `yaml:"seed"`
	Grid             GridConfig      `yaml:"grid"`
	Evolution        EvolutionConfig `yaml:"evolution"`
	Output           OutputConfig    `yaml:"output"`
	ProgressInterval int             `yaml:"progress_interval"`
}

type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type EvolutionConfig struct {
	PopulationSize   int     `yaml:"population_size"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationStrength int     `yaml:"mutation_strength"`
	CrossoverRate    float64 `yaml:"crossover_rate"`
	MaxGenerations   int     `yaml:"max_generations"`
	TargetFitness    float64 `yaml:"target_fitness"`
	TournamentSize   int     `yaml:"tournament_size"`
	Workers          int     `yaml:"workers"`
}

type OutputConfig struct {
	CheckpointInterval int  `yaml:"checkpoint_interval"`
	Scale              int  `yaml:"scale"`
	HTML               bool `yaml:"html"`
	Sheet              bool `yaml:"sheet"`
}

func DefaultConfig() *Config {
	return &Config{
		Pattern: DefaultPattern,
		Grid: GridConfig{
			Width:  evo.DefaultWidth,
			Height: evo.DefaultHeight,
		},
		Evolution: EvolutionConfig{
			PopulationSize:   evo.DefaultPopulationSize,
			MutationRate:     evo.DefaultMutationRate,
			MutationStrength: evo.DefaultMutationStrength,
			CrossoverRate:    evo.DefaultCrossoverRate,
			MaxGenerations:   evo.DefaultMaxGenerations,
			TargetFitness:    evo.DefaultTargetFitness,
			TournamentSize:   evo.DefaultTournamentSize,
			Workers:          1,
		},
		Output: OutputConfig{
			CheckpointInterval: evo.DefaultCheckpointInterval,
			Scale:              1,
			HTML:               true,
			Sheet:              true,
		},
		ProgressInterval: DefaultProgressInterval,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Keys missing from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a copy that can be edited without touching presets.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Engine converts the file-level config into engine knobs. Workers <= 0
// means one worker per CPU.
func (c *Config) Engine() evo.Config {
	workers := c.Evolution.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return evo.Config{
		Width:              c.Grid.Width,
		Height:             c.Grid.Height,
		PopulationSize:     c.Evolution.PopulationSize,
		MutationRate:       c.Evolution.MutationRate,
		MutationStrength:   c.Evolution.MutationStrength,
		CrossoverRate:      c.Evolution.CrossoverRate,
		MaxGenerations:     c.Evolution.MaxGenerations,
		TargetFitness:      c.Evolution.TargetFitness,
		CheckpointInterval: c.Output.CheckpointInterval,
		TournamentSize:     c.Evolution.TournamentSize,
		Workers:            workers,
	}
}

func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return err
	}
	if c.Output.Scale < 1 {
		return fmt.Errorf("output scale must be at least 1, got %d", c.Output.Scale)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress interval must be non-negative, got %d", c.ProgressInterval)
	}
	return nil
}
