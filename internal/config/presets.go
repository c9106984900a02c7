package config

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"quick": {
		Pattern: DefaultPattern,
		Grid:    GridConfig{Width: 32, Height: 32},
		Evolution: EvolutionConfig{
			PopulationSize: 50, MutationRate: 0.05, MutationStrength: 40, CrossoverRate: 0.6,
			MaxGenerations: 500, TargetFitness: 0.9, TournamentSize: 3, Workers: 1,
		},
		Output:           OutputConfig{CheckpointInterval: 100, Scale: 1, HTML: true, Sheet: true},
		ProgressInterval: 50,
	},
	"long": {
		Pattern: DefaultPattern,
		Grid:    GridConfig{Width: 32, Height: 32},
		Evolution: EvolutionConfig{
			PopulationSize: 300, MutationRate: 0.02, MutationStrength: 20, CrossoverRate: 0.7,
			MaxGenerations: 20000, TargetFitness: 0.98, TournamentSize: 3, Workers: 0,
		},
		Output:           OutputConfig{CheckpointInterval: 1000, Scale: 1, HTML: true, Sheet: true},
		ProgressInterval: 500,
	},
	"exploit": {
		Pattern: DefaultPattern,
		Grid:    GridConfig{Width: 32, Height: 32},
		Evolution: EvolutionConfig{
			PopulationSize: 100, MutationRate: 0.01, MutationStrength: 10, CrossoverRate: 0.3,
			MaxGenerations: 5000, TargetFitness: 0.96, TournamentSize: 5, Workers: 1,
		},
		Output:           OutputConfig{CheckpointInterval: 500, Scale: 1, HTML: true, Sheet: true},
		ProgressInterval: 100,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
