package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/san-kum/evoimg/internal/evo"

	_ "modernc.org/sqlite"
)

const dbFile = "runs.db"

var (
	ErrRunNotFound    = errors.New("storage: run not found")
	ErrNotInitialized = errors.New("storage: store not initialized")
)

// Store keeps one artifact directory per run under baseDir and a SQLite
// catalogue of run outcomes and fitness history.
type Store struct {
	baseDir string

	mu sync.Mutex
	db *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, dbFile))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id                 TEXT PRIMARY KEY,
			pattern            TEXT NOT NULL,
			created_at         INTEGER NOT NULL,
			seed               INTEGER NOT NULL,
			width              INTEGER NOT NULL,
			height             INTEGER NOT NULL,
			population_size    INTEGER NOT NULL,
			mutation_rate      REAL NOT NULL,
			mutation_strength  INTEGER NOT NULL,
			crossover_rate     REAL NOT NULL,
			max_generations    INTEGER NOT NULL,
			target_fitness     REAL NOT NULL,
			generations        INTEGER NOT NULL,
			best_fitness       REAL NOT NULL,
			converged          INTEGER NOT NULL,
			elapsed_ns         INTEGER NOT NULL,
			failed_checkpoints INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id     TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best       REAL NOT NULL,
			mean       REAL NOT NULL,
			worst      REAL NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}

type RunMetadata struct {
	ID                string        `json:"id"`
	Pattern           string        `json:"pattern"`
	Timestamp         time.Time     `json:"timestamp"`
	Seed              int64         `json:"seed"`
	Width             int           `json:"width"`
	Height            int           `json:"height"`
	PopulationSize    int           `json:"population_size"`
	MutationRate      float64       `json:"mutation_rate"`
	MutationStrength  int           `json:"mutation_strength"`
	CrossoverRate     float64       `json:"crossover_rate"`
	MaxGenerations    int           `json:"max_generations"`
	TargetFitness     float64       `json:"target_fitness"`
	Generations       int           `json:"generations"`
	BestFitness       float64       `json:"best_fitness"`
	Converged         bool          `json:"converged"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	FailedCheckpoints int           `json:"failed_checkpoints"`
}

// NewMetadata fills the run outcome fields from an engine result.
func NewMetadata(id, pattern string, seed int64, cfg evo.Config, res *evo.Result) RunMetadata {
	return RunMetadata{
		ID:                id,
		Pattern:           pattern,
		Timestamp:         time.Now(),
		Seed:              seed,
		Width:             cfg.Width,
		Height:            cfg.Height,
		PopulationSize:    cfg.PopulationSize,
		MutationRate:      cfg.MutationRate,
		MutationStrength:  cfg.MutationStrength,
		CrossoverRate:     cfg.CrossoverRate,
		MaxGenerations:    cfg.MaxGenerations,
		TargetFitness:     cfg.TargetFitness,
		Generations:       res.Generations,
		BestFitness:       res.BestFitness,
		Converged:         res.Converged,
		Elapsed:           res.Elapsed,
		FailedCheckpoints: len(res.FailedCheckpoints),
	}
}

type GenerationRecord struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Worst      float64 `json:"worst"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// NewRun reserves a unique run id and creates its artifact directory.
func (s *Store) NewRun(pattern string) (string, string, error) {
	base := fmt.Sprintf("%s_%s", pattern, time.Now().Format("20060102_150405"))
	for i := 0; i < 1000; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := s.RunDir(id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("storage: could not allocate run id for %s", base)
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Save records a finished run and its per-generation history in one
// transaction, replacing any previous record with the same id.
func (s *Store) Save(ctx context.Context, meta RunMetadata, history []evo.GenerationStats) (err error) {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, pattern, created_at, seed, width, height, population_size,
			mutation_rate, mutation_strength, crossover_rate, max_generations,
			target_fitness, generations, best_fitness, converged, elapsed_ns,
			failed_checkpoints
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generations = excluded.generations,
			best_fitness = excluded.best_fitness,
			converged = excluded.converged,
			elapsed_ns = excluded.elapsed_ns,
			failed_checkpoints = excluded.failed_checkpoints
	`,
		meta.ID, meta.Pattern, meta.Timestamp.UnixNano(), meta.Seed, meta.Width, meta.Height,
		meta.PopulationSize, meta.MutationRate, meta.MutationStrength, meta.CrossoverRate,
		meta.MaxGenerations, meta.TargetFitness, meta.Generations, meta.BestFitness,
		boolToInt(meta.Converged), int64(meta.Elapsed), meta.FailedCheckpoints,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", meta.ID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM generations WHERE run_id = ?`, meta.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO generations (run_id, generation, best, mean, worst, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range history {
		if _, err = stmt.ExecContext(ctx, meta.ID, g.Generation, g.Best, g.Mean, g.Worst, int64(g.Elapsed)); err != nil {
			return fmt.Errorf("insert generation %d: %w", g.Generation, err)
		}
	}

	return tx.Commit()
}

const selectRun = `
	SELECT id, pattern, created_at, seed, width, height, population_size,
		mutation_rate, mutation_strength, crossover_rate, max_generations,
		target_fitness, generations, best_fitness, converged, elapsed_ns,
		failed_checkpoints
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunMetadata, error) {
	var (
		meta      RunMetadata
		createdAt int64
		converged int
		elapsed   int64
	)
	err := row.Scan(
		&meta.ID, &meta.Pattern, &createdAt, &meta.Seed, &meta.Width, &meta.Height,
		&meta.PopulationSize, &meta.MutationRate, &meta.MutationStrength, &meta.CrossoverRate,
		&meta.MaxGenerations, &meta.TargetFitness, &meta.Generations, &meta.BestFitness,
		&converged, &elapsed, &meta.FailedCheckpoints,
	)
	if err != nil {
		return RunMetadata{}, err
	}
	meta.Timestamp = time.Unix(0, createdAt)
	meta.Converged = converged != 0
	meta.Elapsed = time.Duration(elapsed)
	return meta, nil
}

// List returns every recorded run, oldest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectRun+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	meta, err := scanRun(db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistory(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, best, mean, worst, elapsed_ns
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]GenerationRecord, 0)
	for rows.Next() {
		var (
			rec     GenerationRecord
			elapsed int64
		)
		if err := rows.Scan(&rec.Generation, &rec.Best, &rec.Mean, &rec.Worst, &elapsed); err != nil {
			return nil, err
		}
		rec.ElapsedMs = float64(elapsed) / float64(time.Millisecond)
		history = append(history, rec)
	}
	return history, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
