package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/evoimg/internal/evo"
	"github.com/san-kum/evoimg/internal/optim"
	"github.com/san-kum/evoimg/internal/pattern"
	"github.com/spf13/cobra"
)

const (
	paramMutationRate     = "mutation_rate"
	paramCrossoverRate    = "crossover_rate"
	paramMutationStrength = "mutation_strength"
	paramPopulationSize   = "population_size"
)

// sweepAxes turns the non-empty sweep flags into grid search axes.
func sweepAxes() ([]string, [][]float64) {
	var (
		names  []string
		ranges [][]float64
	)
	add := func(name string, values []float64) {
		if len(values) > 0 {
			names = append(names, name)
			ranges = append(ranges, values)
		}
	}
	add(paramMutationRate, sweepMutationRates)
	add(paramCrossoverRate, sweepCrossoverRates)
	add(paramMutationStrength, intsToFloats(sweepStrengths))
	add(paramPopulationSize, intsToFloats(sweepPopulationSizes))
	return names, ranges
}

func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func applyParams(cfg evo.Config, params map[string]float64) evo.Config {
	if v, ok := params[paramMutationRate]; ok {
		cfg.MutationRate = v
	}
	if v, ok := params[paramCrossoverRate]; ok {
		cfg.CrossoverRate = v
	}
	if v, ok := params[paramMutationStrength]; ok {
		cfg.MutationStrength = int(v)
	}
	if v, ok := params[paramPopulationSize]; ok {
		cfg.PopulationSize = int(v)
	}
	return cfg
}

// sweepObjective runs one headless evolution per combination with the same
// seed and scores it by its best fitness.
func sweepObjective(base evo.Config, target evo.Grid, seed int64) optim.Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		eng, err := evo.New(applyParams(base, params), target, rand.New(rand.NewSource(seed)))
		if err != nil {
			return 0, err
		}
		res, err := eng.Run(ctx)
		if err != nil {
			return 0, err
		}
		return res.BestFitness, nil
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	kind, err := pattern.Parse(args[0])
	if err != nil {
		return err
	}
	target, err := pattern.Render(kind, cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return err
	}

	names, ranges := sweepAxes()
	if len(names) == 0 {
		return fmt.Errorf("nothing to sweep: set at least one of --mutation-rates, --crossover-rates, --mutation-strengths, --populations")
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	logger := newLogger()
	logger.Info("sweeping", "pattern", target.Name, "combinations", search.Size(), "generations", cfg.Evolution.MaxGenerations, "seed", cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, score, trials, err := search.Search(ctx, sweepObjective(cfg.Engine(), target.Grid, cfg.Seed))
	if err != nil && len(trials) == 0 {
		return err
	}
	if err != nil {
		logger.Warn("sweep incomplete", "trials", len(trials), "err", err)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t", name)
	}
	fmt.Fprintln(w, "BEST FITNESS")
	for _, t := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		if t.Err != nil {
			fmt.Fprintf(w, "error: %v\n", t.Err)
			continue
		}
		fmt.Fprintf(w, "%.4f\n", t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best != nil {
		keys := make([]string, 0, len(best))
		for k := range best {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(out, "\nbest:")
		for _, k := range keys {
			fmt.Fprintf(out, " %s=%g", k, best[k])
		}
		fmt.Fprintf(out, " (fitness %.4f)\n", score)
	}
	return nil
}
