// Package runstore persists simulation runs to sqlite: one row per run,
// per-atom phase-space samples at the configured cadence, and per-sample
// aggregate statistics. The schema is managed by embedded migrations.
package runstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/engine"
	"github.com/lattice-works/coolant/internal/monitoring"
	"github.com/lattice-works/coolant/internal/units"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the run database.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and brings
// its schema up to the latest migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp applies all pending schema migrations. It is a no-op when the
// schema is already at the latest version.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// Closing m would close the underlying DB connection, so we don't.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate run store: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back run store: %w", err)
	}
	return nil
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger routes golang-migrate output through the monitoring logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...any) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// Run is one row of the runs table: a single engine execution together with
// the scenario it was built from.
type Run struct {
	ID             string
	Name           string
	Species        string
	AtomCount      int
	BeamCount      int
	Timestep       float64
	Steps          uint64
	Seed           uint64
	StartedAtUnix  float64
	FinishedAtUnix *float64 // nil while the run is still going
	ConfigJSON     string
}

// CreateRun inserts a new run row. An empty ID is assigned a fresh UUID and
// a zero start time is stamped with the current wall clock; both are written
// back into run.
func (s *Store) CreateRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAtUnix == 0 {
		run.StartedAtUnix = nowUnix()
	}

	_, err := s.Exec(
		`INSERT INTO runs (
			run_id, name, species, atom_count, beam_count,
			timestep, steps, seed, started_at, finished_at, config_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Species, run.AtomCount, run.BeamCount,
		run.Timestep, int64(run.Steps), int64(run.Seed), run.StartedAtUnix,
		run.FinishedAtUnix, run.ConfigJSON,
	)
	if err != nil {
		return fmt.Errorf("create run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(runID string) error {
	res, err := s.Exec(`UPDATE runs SET finished_at = ? WHERE run_id = ?`, nowUnix(), runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

// Run fetches a single run row.
func (s *Store) Run(runID string) (*Run, error) {
	row := s.QueryRow(
		`SELECT run_id, name, species, atom_count, beam_count,
			timestep, steps, seed, started_at, finished_at, config_json
		FROM runs WHERE run_id = ?`, runID)

	run, err := scanRun(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("fetch run %s: %w", runID, err)
	}
	return run, nil
}

// Runs lists stored runs, most recent first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.Query(
		`SELECT run_id, name, species, atom_count, beam_count,
			timestep, steps, seed, started_at, finished_at, config_json
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var (
		run   Run
		steps int64
		seed  int64
	)
	err := scan(
		&run.ID, &run.Name, &run.Species, &run.AtomCount, &run.BeamCount,
		&run.Timestep, &steps, &seed, &run.StartedAtUnix,
		&run.FinishedAtUnix, &run.ConfigJSON,
	)
	if err != nil {
		return nil, err
	}
	// Seeds round-trip through their int64 image; sqlite has no uint64.
	run.Steps = uint64(steps)
	run.Seed = uint64(seed)
	return &run, nil
}

// RecordStats appends one step_stats row from an engine snapshot.
func (s *Store) RecordStats(runID string, snap engine.Snapshot) error {
	meanScattered := 0.0
	if snap.Atoms > 0 {
		meanScattered = float64(snap.Scattered) / float64(snap.Atoms)
	}

	_, err := s.Exec(
		`INSERT INTO step_stats (
			run_id, step, time, mean_speed, rms_speed,
			temperature_uk, mean_scattered, dark_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, int64(snap.Step), snap.Time, snap.MeanSpeed, snap.RMSSpeed,
		units.KelvinToMicroKelvin(snap.Temperature), meanScattered, snap.Dark,
	)
	if err != nil {
		return fmt.Errorf("record stats for run %s step %d: %w", runID, snap.Step, err)
	}
	return nil
}

// StepStat is one aggregate row recorded at the sampling cadence.
type StepStat struct {
	Step          uint64
	Time          float64
	MeanSpeed     float64
	RMSSpeed      float64
	TemperatureUK float64
	MeanScattered float64
	DarkCount     int
}

// StepStats returns every aggregate row for a run in step order.
func (s *Store) StepStats(runID string) ([]StepStat, error) {
	rows, err := s.Query(
		`SELECT step, time, mean_speed, rms_speed, temperature_uk, mean_scattered, dark_count
		FROM step_stats WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch stats for run %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []StepStat
	for rows.Next() {
		var (
			st   StepStat
			step int64
		)
		err := rows.Scan(&step, &st.Time, &st.MeanSpeed, &st.RMSSpeed,
			&st.TemperatureUK, &st.MeanScattered, &st.DarkCount)
		if err != nil {
			return nil, fmt.Errorf("fetch stats for run %s: %w", runID, err)
		}
		st.Step = uint64(step)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch stats for run %s: %w", runID, err)
	}
	return stats, nil
}

// RecordSamples stores the position and velocity of every atom in the cloud,
// one row per atom, inside a single transaction.
func (s *Store) RecordSamples(runID string, step uint64, cloud *atoms.Cloud) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("record samples for run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO samples (run_id, step, atom, x, y, z, vx, vy, vz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("record samples for run %s: %w", runID, err)
	}
	defer stmt.Close()

	for i := 0; i < cloud.Len(); i++ {
		p := cloud.Position[i]
		v := cloud.Velocity[i]
		if _, err := stmt.Exec(runID, int64(step), i, p.X, p.Y, p.Z, v.X, v.Y, v.Z); err != nil {
			tx.Rollback()
			return fmt.Errorf("record samples for run %s: atom %d: %w", runID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record samples for run %s: %w", runID, err)
	}
	return nil
}

// Sample is one atom's stored phase-space point.
type Sample struct {
	Step     uint64
	Atom     int
	Position r3.Vec
	Velocity r3.Vec
}

// Samples returns the stored cloud snapshot for one sampled step, in atom
// order.
func (s *Store) Samples(runID string, step uint64) ([]Sample, error) {
	rows, err := s.Query(
		`SELECT atom, x, y, z, vx, vy, vz
		FROM samples WHERE run_id = ? AND step = ? ORDER BY atom`,
		runID, int64(step))
	if err != nil {
		return nil, fmt.Errorf("fetch samples for run %s step %d: %w", runID, step, err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		sm := Sample{Step: step}
		err := rows.Scan(&sm.Atom, &sm.Position.X, &sm.Position.Y, &sm.Position.Z,
			&sm.Velocity.X, &sm.Velocity.Y, &sm.Velocity.Z)
		if err != nil {
			return nil, fmt.Errorf("fetch samples for run %s step %d: %w", runID, step, err)
		}
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch samples for run %s step %d: %w", runID, step, err)
	}
	return samples, nil
}

// SampledSteps returns the distinct steps for which a run has stored cloud
// samples, ascending.
func (s *Store) SampledSteps(runID string) ([]uint64, error) {
	rows, err := s.Query(
		`SELECT DISTINCT step FROM samples WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch sampled steps for run %s: %w", runID, err)
	}
	defer rows.Close()

	var steps []uint64
	for rows.Next() {
		var step int64
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("fetch sampled steps for run %s: %w", runID, err)
		}
		steps = append(steps, uint64(step))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch sampled steps for run %s: %w", runID, err)
	}
	return steps, nil
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) * 1e-9
}
