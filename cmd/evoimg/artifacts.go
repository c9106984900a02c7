package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/evoimg/internal/evo"
	"github.com/san-kum/evoimg/internal/export"
	"github.com/san-kum/evoimg/internal/storage"
)

const (
	TargetImageName = "target_image.png"
	SheetName       = "sheet.png"
	ViewerName      = "view_images.html"
	LogFileName     = "run.log"
	BestSVGName     = "best_final.svg"
	FitnessSVGName  = "fitness.svg"
)

// finish writes the final image, the sheet and the viewer, then records
// the run in the catalogue. Artifact failures are logged; only a failed
// catalogue write is returned.
func (s *session) finish(ctx context.Context, res *evo.Result) ([]string, error) {
	s.engine.Snapshot(evo.FinalCheckpointName)

	w, h := s.target.Width, s.target.Height

	if s.cfg.Output.Sheet {
		tiles := []export.Tile{
			{Label: "Target", Raster: s.target.Grid.Raster()},
			{Label: "Initial", Raster: res.Initial.Raster()},
			{Label: fmt.Sprintf("Gen %d", res.Generations), Raster: res.Best.Raster()},
		}
		path := filepath.Join(s.runDir, SheetName)
		if err := export.WriteContactSheet(path, tiles, w, h, export.DefaultViewerScale); err != nil {
			s.logger.Warn("could not write contact sheet", "path", path, "err", err)
		}
	}

	if s.cfg.Output.HTML {
		names := []string{TargetImageName}
		for _, p := range res.Checkpoints {
			names = append(names, filepath.Base(p))
		}
		names = append(names, evo.FinalCheckpointName)

		path := filepath.Join(s.runDir, ViewerName)
		v := export.Viewer{
			Pattern:     s.target.Label,
			Generations: res.Generations,
			BestFitness: res.BestFitness,
			Width:       w,
			Height:      h,
			Scale:       export.DefaultViewerScale,
			Images:      viewerImages(names),
		}
		if err := export.WriteViewer(path, v); err != nil {
			s.logger.Warn("could not write viewer", "path", path, "err", err)
		}
	}

	meta := storage.NewMetadata(s.runID, s.target.Name, s.cfg.Seed, s.engine.Config(), res)
	if err := s.store.Save(ctx, meta, res.History); err != nil {
		return nil, fmt.Errorf("save run %s: %w", s.runID, err)
	}
	s.logger.Debug("run saved", "id", s.runID)

	return runFiles(s.runDir)
}

func printSummary(out io.Writer, s *session, res *evo.Result, files []string) {
	fmt.Fprintln(out, "\nEvolution complete!")
	fmt.Fprintf(out, "Run: %s\n", s.runID)
	fmt.Fprintf(out, "Final generation: %d\n", res.Generations)
	fmt.Fprintf(out, "Best fitness: %.4f\n", res.BestFitness)
	fmt.Fprintf(out, "Similarity to target: %.2f%%\n", res.BestFitness*100)
	if res.Converged {
		fmt.Fprintln(out, "Target fitness reached")
	} else {
		fmt.Fprintln(out, "Stopped before reaching target fitness")
	}
	if n := len(res.FailedCheckpoints); n > 0 {
		fmt.Fprintf(out, "Failed checkpoints: %d\n", n)
	}
	fmt.Fprintf(out, "\nFiles created in %s:\n", s.runDir)
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f)
	}
}

// viewerImages titles artifact file names in display order.
func viewerImages(names []string) []export.ViewerImage {
	images := make([]export.ViewerImage, 0, len(names))
	for _, name := range names {
		images = append(images, export.ViewerImage{Title: imageTitle(name), Src: name})
	}
	return images
}

func imageTitle(name string) string {
	switch name {
	case TargetImageName:
		return "Target Pattern"
	case evo.InitialCheckpointName:
		return "Initial Random (Gen 0)"
	case evo.FinalCheckpointName:
		return "Final Best"
	}
	if gen, ok := progressGeneration(name); ok {
		return fmt.Sprintf("Generation %d", gen)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func progressGeneration(name string) (int, bool) {
	var gen int
	if _, err := fmt.Sscanf(name, "progress_gen_%d.png", &gen); err != nil {
		return 0, false
	}
	return gen, true
}

// runFiles lists the regular files of a run directory by name.
func runFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// progressImages returns the periodic checkpoints in a run directory
// ordered by generation.
func progressImages(dir string) ([]string, error) {
	files, err := runFiles(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		name string
		gen  int
	}
	found := make([]entry, 0)
	for _, f := range files {
		if gen, ok := progressGeneration(f); ok {
			found = append(found, entry{f, gen})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].gen < found[j].gen })

	names := make([]string, len(found))
	for i, e := range found {
		names[i] = e.name
	}
	return names, nil
}

// rebuildReport recreates the sheet and the viewer from the PNGs already
// in a run directory. Missing images are skipped.
func rebuildReport(dir string, meta *storage.RunMetadata) ([]string, error) {
	progress, err := progressImages(dir)
	if err != nil {
		return nil, err
	}

	ordered := []string{TargetImageName, evo.InitialCheckpointName}
	ordered = append(ordered, progress...)
	ordered = append(ordered, evo.FinalCheckpointName)

	var (
		tiles     []export.Tile
		present   []string
		tileW     int
		tileH     int
		sheetable = map[string]bool{
			TargetImageName:           true,
			evo.InitialCheckpointName: true,
			evo.FinalCheckpointName:   true,
		}
	)
	for _, name := range ordered {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		present = append(present, name)
		if !sheetable[name] {
			continue
		}
		raster, w, h, err := export.ReadRaster(path)
		if err != nil {
			return nil, err
		}
		if tileW == 0 {
			tileW, tileH = w, h
		}
		if w != tileW || h != tileH {
			continue
		}
		tiles = append(tiles, export.Tile{Label: imageTitle(name), Raster: raster})
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	written := make([]string, 0, 2)

	if len(tiles) > 0 {
		sheetScale := 1
		if tileW > 0 && meta.Width*export.DefaultViewerScale > tileW {
			sheetScale = meta.Width * export.DefaultViewerScale / tileW
		}
		path := filepath.Join(dir, SheetName)
		if err := export.WriteContactSheet(path, tiles, tileW, tileH, sheetScale); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, ViewerName)
	v := export.Viewer{
		Pattern:     meta.Pattern,
		Generations: meta.Generations,
		BestFitness: meta.BestFitness,
		Width:       meta.Width,
		Height:      meta.Height,
		Scale:       export.DefaultViewerScale,
		Images:      viewerImages(present),
	}
	if err := export.WriteViewer(path, v); err != nil {
		return nil, err
	}
	written = append(written, path)
	return written, nil
}

func fitnessSeries(history []storage.GenerationRecord) (best, mean []float64) {
	best = make([]float64, len(history))
	mean = make([]float64, len(history))
	for i, rec := range history {
		best[i] = rec.Best
		mean[i] = rec.Mean
	}
	return best, mean
}

// writeSVGs renders the final image and the fitness curve as SVG next to
// the run's PNGs.
func writeSVGs(dir string, history []storage.GenerationRecord) ([]string, error) {
	written := make([]string, 0, 2)

	finalPath := filepath.Join(dir, evo.FinalCheckpointName)
	if raster, w, h, err := export.ReadRaster(finalPath); err == nil {
		svg, err := export.RasterToSVG(raster, w, h, 10)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, BestSVGName)
		if err := export.WriteSVG(path, svg); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	best, mean := fitnessSeries(history)
	if svg := export.FitnessCurveSVG([]export.Series{
		{Values: best, Color: "#00ff88"},
		{Values: mean, Color: "#ffcc00"},
	}, 800, 300); svg != "" {
		path := filepath.Join(dir, FitnessSVGName)
		if err := export.WriteSVG(path, svg); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
