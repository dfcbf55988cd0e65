// Package engine composes the simulation: it owns the stage order of a
// step, the batched worker pool the stages run on, and the resources every
// stage shares. One Step advances the whole cloud by one timestep; stages
// run in strict sequence with a barrier between them, parallel over atom
// batches within each stage.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/cooling"
	"github.com/lattice-works/coolant/internal/dynamics"
	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/magnetics"
	"github.com/lattice-works/coolant/internal/monitoring"
	"github.com/lattice-works/coolant/internal/species"
)

// DefaultBatchSize is the number of atoms per worker batch.
const DefaultBatchSize = 1024

// Config assembles an Engine. Cloud and Transition are required; zero
// values elsewhere select the documented defaults.
type Config struct {
	// Cloud is the atom population to advance.
	Cloud *atoms.Cloud

	// Transition is the cooling transition shared by every atom.
	Transition species.Transition

	// Beams is the initial cooling beam set. More may be added between
	// steps with AddBeam, up to BeamCapacity.
	Beams []*laser.Beam

	// FieldSources contribute to the magnetic field sample, summed.
	FieldSources []magnetics.Source

	// Timestep in s. Default 1e-6.
	Timestep float64

	// BeamCapacity is the number of sampler slots reserved per atom.
	// Default laser.DefaultBeamCapacity.
	BeamCapacity int

	// BatchSize is the number of atoms per parallel batch. Default
	// DefaultBatchSize.
	BatchSize int

	// Workers is the pool size. Default runtime.NumCPU().
	Workers int

	// Seed for the per-worker random sources.
	Seed uint64

	// Fluctuations selects Poisson photon statistics; nil means on.
	// Off copies the expectation, giving a deterministic force.
	Fluctuations *bool

	// Emission gates the spontaneous-emission recoil; nil means the
	// default, enabled with the explicit threshold at five photons.
	Emission *cooling.EmissionForce

	// Repump enables dark-state loss; nil disables it.
	Repump *cooling.RepumpLoss

	// Gravity adds each atom's weight to the force accumulator.
	Gravity bool
}

func (c Config) timestep() float64 {
	if c.Timestep > 0 {
		return c.Timestep
	}
	return dynamics.DefaultTimestep().Delta
}

func (c Config) beamCapacity() int {
	if c.BeamCapacity > 0 {
		return c.BeamCapacity
	}
	return laser.DefaultBeamCapacity
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c Config) fluctuations() bool {
	return c.Fluctuations == nil || *c.Fluctuations
}

func (c Config) emission() cooling.EmissionForce {
	if c.Emission != nil {
		return *c.Emission
	}
	return cooling.DefaultEmissionForce()
}

// Engine drives the cloud through simulation steps.
type Engine struct {
	cloud      *atoms.Cloud
	samplers   *cooling.Samplers
	beams      []*laser.Beam
	sources    []magnetics.Source
	transition species.Transition

	dt           float64
	batch        int
	fluctuations bool
	emission     cooling.EmissionForce
	repump       *cooling.RepumpLoss
	gravity      bool

	pool *pool
	step dynamics.Step
}

// New validates the configuration, assigns beam slots, and starts the
// worker pool. Callers must Close the engine when done with it.
func New(cfg Config) (*Engine, error) {
	if cfg.Cloud == nil {
		return nil, fmt.Errorf("engine: config needs a cloud")
	}
	if cfg.Transition.Gamma <= 0 || cfg.Transition.Frequency <= 0 {
		return nil, fmt.Errorf("engine: config needs a physical transition (frequency %g Hz, gamma %g rad/s)",
			cfg.Transition.Frequency, cfg.Transition.Gamma)
	}
	if r := cfg.Repump; r != nil && (r.DepumpChance < 0 || r.DepumpChance > 1) {
		return nil, fmt.Errorf("engine: depump chance %g outside [0,1]", r.DepumpChance)
	}

	capacity := cfg.beamCapacity()
	if err := laser.IndexBeams(cfg.Beams, capacity); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		cloud:        cfg.Cloud,
		samplers:     cooling.NewSamplers(cfg.Cloud.Len(), capacity),
		beams:        cfg.Beams,
		sources:      cfg.FieldSources,
		transition:   cfg.Transition,
		dt:           cfg.timestep(),
		batch:        cfg.batchSize(),
		fluctuations: cfg.fluctuations(),
		emission:     cfg.emission(),
		repump:       cfg.Repump,
		gravity:      cfg.Gravity,
		pool:         newPool(cfg.workers(), cfg.Seed),
	}
	return e, nil
}

// Close stops the worker pool. The engine must not be stepped afterwards.
func (e *Engine) Close() {
	e.pool.close()
}

// Cloud returns the population the engine advances.
func (e *Engine) Cloud() *atoms.Cloud { return e.cloud }

// Samplers exposes the per-step sampler tables. Contents are valid for the
// step most recently completed.
func (e *Engine) Samplers() *cooling.Samplers { return e.samplers }

// Beams returns the current beam set.
func (e *Engine) Beams() []*laser.Beam { return e.beams }

// Timestep returns the integration interval in s.
func (e *Engine) Timestep() float64 { return e.dt }

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() uint64 { return e.step.N }

// Time returns the simulated elapsed time in s.
func (e *Engine) Time() float64 { return float64(e.step.N) * e.dt }

// AddBeam registers another cooling beam. It takes effect at the next
// Step, which assigns it a trailing sampler slot. Must not be called while
// a Step is in flight.
func (e *Engine) AddBeam(b *laser.Beam) error {
	if len(e.beams)+1 > e.samplers.Capacity() {
		return fmt.Errorf("engine: %w: %d beams, capacity %d",
			laser.ErrBeamCapacity, len(e.beams)+1, e.samplers.Capacity())
	}
	e.beams = append(e.beams, b)
	return nil
}

// Step advances the simulation by one timestep, running every stage in
// dependency order over the full cloud.
func (e *Engine) Step() error {
	n := e.cloud.Len()

	// Move atoms under the forces accumulated last step, retiring those
	// forces for the trailing velocity half-step.
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		dynamics.IntegratePositions(e.cloud, e.dt, lo, hi)
	})
	e.step.N++

	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		e.cloud.ClearForce(lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		magnetics.Sample(e.cloud.Field, e.cloud.Position, e.sources, lo, hi)
	})

	// Slot assignment and the shared mask are serial: they touch beam
	// state, not atom state.
	if err := laser.IndexBeams(e.beams, e.samplers.Capacity()); err != nil {
		return fmt.Errorf("engine: step %d: %w", e.step.N, err)
	}
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		e.samplers.Reset(lo, hi)
	})
	laser.FillMask(e.samplers.Mask, e.beams)

	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.SampleIntensities(e.samplers, e.beams, e.cloud.Position, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.DopplerShifts(e.samplers, e.beams, e.cloud.Velocity, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.ZeemanShifts(e.samplers, e.transition, e.cloud.Field, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.CombineDetunings(e.samplers, e.beams, e.transition, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.RateCoefficients(e.samplers, e.beams, e.transition, e.cloud.Field, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.SolvePopulations(e.samplers, e.transition, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.MeanTotalPhotons(e.samplers, e.transition, e.dt, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.ExpectedPhotons(e.samplers, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, rng *rand.Rand) {
		cooling.ActualPhotons(e.samplers, e.fluctuations, rng, lo, hi)
	})

	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		cooling.AbsorptionForces(e.samplers, e.beams, e.cloud.Force, e.cloud.Dark, e.dt, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, rng *rand.Rand) {
		cooling.RepumpRoll(e.samplers, e.repump, e.cloud.Dark, rng, lo, hi)
	})
	e.pool.each(n, e.batch, func(lo, hi int, rng *rand.Rand) {
		cooling.EmissionForces(e.samplers, e.transition, e.emission, e.cloud.Force, e.dt, rng, lo, hi)
	})
	if e.gravity {
		e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
			dynamics.Gravity(e.cloud, lo, hi)
		})
	}

	e.pool.each(n, e.batch, func(lo, hi int, _ *rand.Rand) {
		dynamics.IntegrateVelocities(e.cloud, e.dt, lo, hi)
	})
	return nil
}

// Run advances the simulation the given number of steps, checking the
// context between steps so a signal can stop a long run cleanly.
func (e *Engine) Run(ctx context.Context, steps int) error {
	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("engine: stopped after %d of %d steps: %w", i, steps, err)
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	monitoring.Logf("engine: %d steps (%d atoms) in %s", steps, e.cloud.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}
