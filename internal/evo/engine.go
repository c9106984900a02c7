package evo

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Checkpoint artifact names.
const (
	InitialCheckpointName = "initial_random.png"
	FinalCheckpointName   = "best_final.png"
)

// Persister writes a raster buffer to an image artifact at path.
type Persister interface {
	Persist(raster []byte, width, height int, path string) error
}

// Engine runs a generational genetic algorithm over a fixed population.
//
// Candidates live in two pre-allocated buffers. Offspring are written into
// the spare buffer, the elite is moved into slot 0 and the buffers swap, so
// pixel data is only copied when a new candidate is materialised.
type Engine struct {
	cfg        Config
	target     Grid
	rng        Rand
	population []*Candidate
	spare      []*Candidate
	generation int

	observers []Observer
	persister Persister
	outputDir string
	logger    *log.Logger

	initial     *Candidate
	history     []GenerationStats
	checkpoints []string
	failed      []string
}

// Result summarises a finished (or cancelled) run.
type Result struct {
	Generations       int
	BestFitness       float64
	Best              *Candidate
	Initial           *Candidate // best of generation 0
	Converged         bool
	Elapsed           time.Duration
	History           []GenerationStats
	Checkpoints       []string
	FailedCheckpoints []string
}

// New validates cfg, checks target against the grid size and builds a
// randomised population at generation 0.
func New(cfg Config, target Grid, rng Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	if len(target) != cfg.GridSize() {
		return nil, fmt.Errorf("%w: target has %d colors, grid %dx%d needs %d",
			ErrDimensionMismatch, len(target), cfg.Width, cfg.Height, cfg.GridSize())
	}

	n := cfg.GridSize()
	e := &Engine{
		cfg:        cfg,
		target:     target.Clone(),
		rng:        rng,
		population: make([]*Candidate, cfg.PopulationSize),
		spare:      make([]*Candidate, cfg.PopulationSize),
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard),
	}
	for i := range e.population {
		e.population[i] = NewCandidate(n)
		e.population[i].Randomize(rng)
		e.spare[i] = NewCandidate(n)
	}
	return e, nil
}

func (e *Engine) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Engine) SetPersister(p Persister)   { e.persister = p }
func (e *Engine) SetOutputDir(dir string)    { e.outputDir = dir }
func (e *Engine) Config() Config             { return e.cfg }
func (e *Engine) Generation() int            { return e.generation }
func (e *Engine) Target() Grid               { return e.target }
func (e *Engine) Population() []*Candidate   { return e.population }
func (e *Engine) History() []GenerationStats { return e.history }

func (e *Engine) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	e.logger = l
}

// Best returns the candidate at index 0. It is the fittest only right
// after EvaluateAndRank.
func (e *Engine) Best() *Candidate {
	return e.population[0]
}

// EvaluateAndRank scores every candidate and sorts the population by
// fitness, descending.
func (e *Engine) EvaluateAndRank() error {
	if err := evaluateAll(e.population, e.target, e.cfg.Workers); err != nil {
		return err
	}
	sort.SliceStable(e.population, func(i, j int) bool {
		return e.population[i].Fitness > e.population[j].Fitness
	})
	return nil
}

// Select runs one tournament over the current population and returns the
// winner's index.
func (e *Engine) Select() int {
	return Tournament(e.rng, e.population, e.cfg.TournamentSize)
}

// reproduce writes one offspring into dst: crossover of two tournament
// winners with probability CrossoverRate, otherwise a clone of one winner,
// then mutation in both cases.
func (e *Engine) reproduce(dst *Candidate) {
	if e.rng.Float64() < e.cfg.CrossoverRate {
		p1 := e.population[e.Select()]
		p2 := e.population[e.Select()]
		CrossoverInto(dst, p1, p2, e.rng)
	} else {
		dst.CopyFrom(e.population[e.Select()])
	}
	dst.Mutate(e.rng, e.cfg.MutationRate, e.cfg.MutationStrength)
}

// Advance replaces the population with the next generation. Slot 0 holds
// the unmutated elite; every other slot is an independent offspring.
func (e *Engine) Advance() {
	for i := 1; i < len(e.spare); i++ {
		e.reproduce(e.spare[i])
	}
	e.spare[0], e.population[0] = e.population[0], e.spare[0]
	e.population, e.spare = e.spare, e.population
	e.generation++
}

// Snapshot persists the current best candidate as name inside the output
// directory. Failures are logged and reported as false; they never stop a run.
func (e *Engine) Snapshot(name string) bool {
	if e.persister == nil {
		return false
	}
	path := filepath.Join(e.outputDir, name)
	if err := e.persister.Persist(e.Best().Raster(), e.cfg.Width, e.cfg.Height, path); err != nil {
		e.logger.Warn("checkpoint failed", "path", path, "err", err)
		e.failed = append(e.failed, path)
		return false
	}
	e.logger.Debug("checkpoint saved", "path", path)
	e.checkpoints = append(e.checkpoints, path)
	return true
}

// Run evaluates the initial population, then advances until the generation
// cap or the target fitness is reached. Cancelling ctx stops between
// generations and returns the partial result with ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.logger.Info("starting evolution",
		"population", e.cfg.PopulationSize,
		"mutation_rate", e.cfg.MutationRate,
		"crossover_rate", e.cfg.CrossoverRate,
		"target_fitness", e.cfg.TargetFitness,
	)

	if err := e.EvaluateAndRank(); err != nil {
		return nil, &GenerationError{Generation: e.generation, Wrapped: err}
	}
	e.initial = e.Best().Clone()
	e.notify(start)
	e.checkpoint()

	for e.generation < e.cfg.MaxGenerations && e.Best().Fitness < e.cfg.TargetFitness {
		select {
		case <-ctx.Done():
			return e.result(start), ctx.Err()
		default:
		}

		e.Advance()
		if err := e.EvaluateAndRank(); err != nil {
			return nil, &GenerationError{Generation: e.generation, Wrapped: err}
		}
		e.notify(start)
		e.checkpoint()
	}

	res := e.result(start)
	if res.Converged {
		e.logger.Info("target fitness reached", "generation", res.Generations, "best", formatFitness(res.BestFitness))
	} else {
		e.logger.Info("generation cap reached", "generation", res.Generations, "best", formatFitness(res.BestFitness))
	}
	return res, nil
}

func (e *Engine) checkpoint() {
	switch {
	case e.generation == 0:
		e.Snapshot(InitialCheckpointName)
	case e.cfg.CheckpointInterval > 0 && e.generation%e.cfg.CheckpointInterval == 0:
		e.Snapshot(ProgressCheckpointName(e.generation))
	}
}

func (e *Engine) notify(start time.Time) {
	stats := e.stats(start)
	e.history = append(e.history, stats)
	for _, o := range e.observers {
		o.OnGeneration(stats)
	}
}

func (e *Engine) stats(start time.Time) GenerationStats {
	sum := 0.0
	for _, c := range e.population {
		sum += c.Fitness
	}
	return GenerationStats{
		Generation: e.generation,
		Best:       e.population[0].Fitness,
		Mean:       sum / float64(len(e.population)),
		Worst:      e.population[len(e.population)-1].Fitness,
		Elapsed:    time.Since(start),
	}
}

func (e *Engine) result(start time.Time) *Result {
	best := e.Best()
	return &Result{
		Generations:       e.generation,
		BestFitness:       best.Fitness,
		Best:              best.Clone(),
		Initial:           e.initial,
		Converged:         best.Fitness >= e.cfg.TargetFitness,
		Elapsed:           time.Since(start),
		History:           append([]GenerationStats(nil), e.history...),
		Checkpoints:       append([]string(nil), e.checkpoints...),
		FailedCheckpoints: append([]string(nil), e.failed...),
	}
}

// ProgressCheckpointName is the artifact name for a periodic checkpoint.
func ProgressCheckpointName(generation int) string {
	return fmt.Sprintf("progress_gen_%d.png", generation)
}

func formatFitness(f float64) string {
	return fmt.Sprintf("%.4f", f)
}
