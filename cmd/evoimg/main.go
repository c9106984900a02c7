package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/evoimg/internal/config"
	"github.com/san-kum/evoimg/internal/evo"
	"github.com/san-kum/evoimg/internal/export"
	"github.com/san-kum/evoimg/internal/pattern"
	"github.com/san-kum/evoimg/internal/storage"
	"github.com/san-kum/evoimg/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
	quiet   bool

	preset     string
	configFile string
	seed       int64

	width              int
	height             int
	population         int
	mutationRate       float64
	mutationStrength   int
	crossoverRate      float64
	generations        int
	targetFitness      float64
	tournamentSize     int
	checkpointInterval int
	workers            int
	scale              int
	progressInterval   int

	theme      string
	exportOut  string
	exportSVG  bool
	plotHeight int

	sweepMutationRates   []float64
	sweepCrossoverRates  []float64
	sweepStrengths       []int
	sweepPopulationSizes []int
)

// main registers the evoimg commands and exits with status 1 on error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "evoimg",
		Short:        "evolve pixel images toward target patterns",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".evoimg", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	runCmd := &cobra.Command{
		Use:   "run [pattern]",
		Short: "evolve an image toward a target pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEvolution,
	}
	addEvolutionFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [pattern]",
		Short: "evolve with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addEvolutionFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme")

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "list target patterns",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, k := range pattern.Kinds() {
				fmt.Fprintf(out, "  %d. %-13s %s\n", int(k), k.String(), k.Label())
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPOP\tMUT\tSTR\tCROSS\tGENS\tTARGET")
			for _, name := range names {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.3f\t%d\t%.2f\t%d\t%.2f\n",
					name,
					p.Evolution.PopulationSize,
					p.Evolution.MutationRate,
					p.Evolution.MutationStrength,
					p.Evolution.CrossoverRate,
					p.Evolution.MaxGenerations,
					p.Evolution.TargetFitness,
				)
			}
			w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run details",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot fitness history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height in rows")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and history as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportSVG, "svg", false, "also write SVG renderings into the run directory")

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "rebuild the contact sheet and HTML viewer from saved images",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [pattern]",
		Short: "grid search GA parameters on short headless runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addEvolutionFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepMutationRates, "mutation-rates", nil, "mutation rates to try")
	sweepCmd.Flags().Float64SliceVar(&sweepCrossoverRates, "crossover-rates", nil, "crossover rates to try")
	sweepCmd.Flags().IntSliceVar(&sweepStrengths, "mutation-strengths", nil, "mutation strengths to try")
	sweepCmd.Flags().IntSliceVar(&sweepPopulationSizes, "populations", nil, "population sizes to try")

	rootCmd.AddCommand(runCmd, liveCmd, patternsCmd, presetsCmd, listCmd, showCmd, plotCmd, exportCmd, reportCmd, sweepCmd)
	return rootCmd
}

func addEvolutionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().IntVar(&width, "width", evo.DefaultWidth, "grid width")
	cmd.Flags().IntVar(&height, "height", evo.DefaultHeight, "grid height")
	cmd.Flags().IntVar(&population, "population", evo.DefaultPopulationSize, "population size")
	cmd.Flags().Float64Var(&mutationRate, "mutation-rate", evo.DefaultMutationRate, "per-pixel mutation probability")
	cmd.Flags().IntVar(&mutationStrength, "mutation-strength", evo.DefaultMutationStrength, "maximum channel change per mutation")
	cmd.Flags().Float64Var(&crossoverRate, "crossover-rate", evo.DefaultCrossoverRate, "crossover probability")
	cmd.Flags().IntVar(&generations, "generations", evo.DefaultMaxGenerations, "generation cap")
	cmd.Flags().Float64Var(&targetFitness, "target-fitness", evo.DefaultTargetFitness, "stop at this fitness")
	cmd.Flags().IntVar(&tournamentSize, "tournament", evo.DefaultTournamentSize, "tournament size")
	cmd.Flags().IntVar(&checkpointInterval, "checkpoint-interval", evo.DefaultCheckpointInterval, "generations between progress images (0 disables)")
	cmd.Flags().IntVar(&workers, "workers", 1, "fitness workers (0 = one per CPU)")
	cmd.Flags().IntVar(&scale, "scale", 1, "PNG upscale factor")
	cmd.Flags().IntVar(&progressInterval, "progress-interval", config.DefaultProgressInterval, "generations between progress log lines")
}

func newLogger() *log.Logger {
	return newLoggerTo(os.Stderr)
}

func newLoggerTo(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "evoimg",
	})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, names)
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("population") {
		cfg.Evolution.PopulationSize = population
	}
	if flags.Changed("mutation-rate") {
		cfg.Evolution.MutationRate = mutationRate
	}
	if flags.Changed("mutation-strength") {
		cfg.Evolution.MutationStrength = mutationStrength
	}
	if flags.Changed("crossover-rate") {
		cfg.Evolution.CrossoverRate = crossoverRate
	}
	if flags.Changed("generations") {
		cfg.Evolution.MaxGenerations = generations
	}
	if flags.Changed("target-fitness") {
		cfg.Evolution.TargetFitness = targetFitness
	}
	if flags.Changed("tournament") {
		cfg.Evolution.TournamentSize = tournamentSize
	}
	if flags.Changed("checkpoint-interval") {
		cfg.Output.CheckpointInterval = checkpointInterval
	}
	if flags.Changed("workers") {
		cfg.Evolution.Workers = workers
	}
	if flags.Changed("scale") {
		cfg.Output.Scale = scale
	}
	if flags.Changed("progress-interval") {
		cfg.ProgressInterval = progressInterval
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePattern prefers the positional argument, then a pattern named in
// the config file, then the interactive picker.
func resolvePattern(args []string, cfg *config.Config) (pattern.Kind, error) {
	if len(args) > 0 {
		return pattern.Parse(args[0])
	}
	if configFile != "" && cfg.Pattern != "" {
		return pattern.Parse(cfg.Pattern)
	}

	final, err := tea.NewProgram(viz.NewPicker()).Run()
	if err != nil {
		return pattern.Gradient, err
	}
	kind, ok := final.(viz.Picker).Choice()
	if !ok {
		return pattern.Gradient, errors.New("no pattern chosen")
	}
	return kind, nil
}

// session is one prepared run: target rendered, run directory reserved and
// engine wired to the PNG writer.
type session struct {
	cfg    *config.Config
	target pattern.Pattern
	store  *storage.Store
	runID  string
	runDir string
	engine *evo.Engine
	logger *log.Logger
}

func newSession(ctx context.Context, cfg *config.Config, kind pattern.Kind, logger *log.Logger) (*session, error) {
	target, err := pattern.Render(kind, cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return nil, err
	}

	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}

	runID, runDir, err := st.NewRun(target.Name)
	if err != nil {
		st.Close()
		return nil, err
	}

	writer := export.NewPNGWriter(cfg.Output.Scale)
	targetPath := filepath.Join(runDir, TargetImageName)
	if err := writer.Persist(target.Grid.Raster(), target.Width, target.Height, targetPath); err != nil {
		logger.Warn("could not save target image", "path", targetPath, "err", err)
	}

	eng, err := evo.New(cfg.Engine(), target.Grid, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		st.Close()
		return nil, err
	}
	eng.SetLogger(logger)
	eng.SetPersister(writer)
	eng.SetOutputDir(runDir)

	return &session{
		cfg:    cfg,
		target: target,
		store:  st,
		runID:  runID,
		runDir: runDir,
		engine: eng,
		logger: logger,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func runEvolution(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	kind, err := resolvePattern(args, cfg)
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(ctx, cfg, kind, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("target pattern", "pattern", s.target.Label, "size", fmt.Sprintf("%dx%d", s.target.Width, s.target.Height), "seed", cfg.Seed)
	s.engine.AddObserver(&evo.ProgressLogger{Logger: logger, Interval: cfg.ProgressInterval})

	res, runErr := s.engine.Run(ctx)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("evolution interrupted", "generation", res.Generations, "err", runErr)
	}

	// Saving must not be cut short by the interrupt that stopped the run.
	files, err := s.finish(context.WithoutCancel(ctx), res)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), s, res, files)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	kind, err := resolvePattern(args, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The terminal belongs to the TUI; logs go to the run directory.
	s, err := newSession(ctx, cfg, kind, log.New(io.Discard))
	if err != nil {
		return err
	}
	defer s.Close()

	logFile, err := os.Create(filepath.Join(s.runDir, LogFileName))
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLoggerTo(logFile)
	s.logger = logger
	s.engine.SetLogger(logger)
	s.engine.AddObserver(&evo.ProgressLogger{Logger: logger, Interval: cfg.ProgressInterval})

	model := viz.NewModel(s.target.Label, s.target.Grid, s.engine.Config(), cancel)
	model.SetTheme(theme)
	p := tea.NewProgram(model, tea.WithAltScreen())
	s.engine.AddObserver(&viz.Forwarder{Send: p.Send, Engine: s.engine, Interval: 50 * time.Millisecond})

	type outcome struct {
		res *evo.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.engine.Run(ctx)
		p.Send(viz.DoneMsg{Result: res, Err: err})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	out := <-done
	if out.res == nil {
		return out.err
	}

	files, err := s.finish(context.Background(), out.res)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), s, out.res, files)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATTERN\tTIME\tGENS\tBEST\tCONVERGED\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%v\t%d\n",
			run.ID,
			run.Pattern,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Generations,
			run.BestFitness,
			run.Converged,
			run.Seed,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", meta.ID)
	fmt.Fprintf(w, "pattern\t%s\n", meta.Pattern)
	fmt.Fprintf(w, "time\t%s\n", meta.Timestamp.Format(time.DateTime))
	fmt.Fprintf(w, "seed\t%d\n", meta.Seed)
	fmt.Fprintf(w, "grid\t%dx%d\n", meta.Width, meta.Height)
	fmt.Fprintf(w, "population\t%d\n", meta.PopulationSize)
	fmt.Fprintf(w, "mutation\trate %.3f, strength %d\n", meta.MutationRate, meta.MutationStrength)
	fmt.Fprintf(w, "crossover\t%.2f\n", meta.CrossoverRate)
	fmt.Fprintf(w, "generations\t%d / %d\n", meta.Generations, meta.MaxGenerations)
	fmt.Fprintf(w, "best fitness\t%.4f (target %.2f)\n", meta.BestFitness, meta.TargetFitness)
	fmt.Fprintf(w, "converged\t%v\n", meta.Converged)
	fmt.Fprintf(w, "elapsed\t%v\n", meta.Elapsed.Round(time.Millisecond))
	if meta.FailedCheckpoints > 0 {
		fmt.Fprintf(w, "failed checkpoints\t%d\n", meta.FailedCheckpoints)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	files, err := runFiles(st.RunDir(meta.ID))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nfiles in %s:\n", st.RunDir(meta.ID))
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(cmd.Context(), meta.ID)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("no data to plot")
	}

	best, mean := fitnessSeries(history)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "pattern: %s\n", meta.Pattern)
	fmt.Fprintf(out, "generations: %d\n\n", len(history)-1)

	graph := asciigraph.PlotMany([][]float64{best, mean},
		asciigraph.Height(plotHeight),
		asciigraph.Width(80),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption("best (green) / mean (yellow) fitness"),
	)
	fmt.Fprintln(out, graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(cmd.Context(), meta.ID)
	if err != nil {
		return err
	}

	if exportSVG {
		written, err := writeSVGs(st.RunDir(meta.ID), history)
		if err != nil {
			return err
		}
		for _, f := range written {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", f)
		}
	}

	if exportOut == "" {
		return storage.ExportJSON(cmd.OutOrStdout(), meta, history)
	}
	if err := storage.ExportJSONFile(exportOut, meta, history); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", exportOut)
	return nil
}

func reportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	files, err := rebuildReport(st.RunDir(meta.ID), meta)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f)
	}
	return nil
}

func openStore(ctx context.Context) (*storage.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}
