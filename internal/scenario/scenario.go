// Package scenario describes a simulation run as a JSON document and
// materialises it: the initial thermal cloud, the cooling beam set, the
// magnetic field sources, and the engine configuration that ties them
// together. Fields omitted from the JSON keep their defaults, so partial
// scenarios are safe.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/species"
)

// Vec is a JSON-friendly 3-vector.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// CloudSpec shapes the initial atom cloud: positions uniform in a ball,
// velocities thermal at the given temperature.
type CloudSpec struct {
	RadiusMetres      *float64 `json:"radius_metres,omitempty"`
	TemperatureMicroK *float64 `json:"temperature_microkelvin,omitempty"`
}

// QuadrupoleSpec is the anti-Helmholtz trapping field.
type QuadrupoleSpec struct {
	GradientGaussPerCm *float64 `json:"gradient_gauss_per_cm,omitempty"`
	Axis               *Vec     `json:"axis,omitempty"`
	Centre             *Vec     `json:"centre,omitempty"`
}

// MOTSpec is the standard six-beam arrangement: a counter-propagating pair
// along the quadrupole axis and two orthogonal transverse pairs, total
// power split evenly.
type MOTSpec struct {
	DetuningMHz     *float64 `json:"detuning_mhz,omitempty"`
	TotalPowerWatts *float64 `json:"total_power_watts,omitempty"`
	ERadiusMetres   *float64 `json:"e_radius_metres,omitempty"`
}

// BeamSpec describes one explicit cooling beam.
type BeamSpec struct {
	DetuningMHz   float64 `json:"detuning_mhz"`
	Polarization  int     `json:"polarization"`
	Direction     Vec     `json:"direction"`
	PowerWatts    float64 `json:"power_watts"`
	ERadiusMetres float64 `json:"e_radius_metres"`
	Intersection  *Vec    `json:"intersection,omitempty"`
}

// EmissionSpec gates the spontaneous-emission recoil force.
type EmissionSpec struct {
	Enabled           *bool   `json:"enabled,omitempty"`
	ExplicitThreshold *uint64 `json:"explicit_threshold,omitempty"`
}

// Scenario is the root run description.
type Scenario struct {
	Name            *string  `json:"name,omitempty"`
	Species         *string  `json:"species,omitempty"`
	AtomCount       *int     `json:"atom_count,omitempty"`
	Seed            *uint64  `json:"seed,omitempty"`
	TimestepSeconds *float64 `json:"timestep_seconds,omitempty"`
	Steps           *int     `json:"steps,omitempty"`
	BeamCapacity    *int     `json:"beam_capacity,omitempty"`
	BatchSize       *int     `json:"batch_size,omitempty"`
	Workers         *int     `json:"workers,omitempty"`

	Cloud          *CloudSpec      `json:"cloud,omitempty"`
	Quadrupole     *QuadrupoleSpec `json:"quadrupole,omitempty"`
	BiasFieldGauss *Vec            `json:"bias_field_gauss,omitempty"`
	MOT            *MOTSpec        `json:"mot,omitempty"`
	Beams          []BeamSpec      `json:"beams,omitempty"`

	Fluctuations       *bool         `json:"fluctuations,omitempty"`
	EmissionForce      *EmissionSpec `json:"emission_force,omitempty"`
	RepumpDepumpChance *float64      `json:"repump_depump_chance,omitempty"`
	Gravity            *bool         `json:"gravity,omitempty"`

	// SampleEvery is the snapshot cadence in steps.
	SampleEvery *int `json:"sample_every,omitempty"`
}

// Helper functions to create pointers for optional fields.
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// Load reads and validates a scenario from a JSON file. Omitted fields
// keep their defaults via the Get* accessors.
func Load(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scenario file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scenario file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s := &Scenario{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// Validate checks every field that is set. It reports the first problem so
// the error names a single offending value.
func (s *Scenario) Validate() error {
	if _, err := species.Lookup(s.GetSpecies()); err != nil {
		return err
	}
	if s.AtomCount != nil && *s.AtomCount <= 0 {
		return fmt.Errorf("atom_count must be positive, got %d", *s.AtomCount)
	}
	if s.TimestepSeconds != nil && *s.TimestepSeconds <= 0 {
		return fmt.Errorf("timestep_seconds must be positive, got %g", *s.TimestepSeconds)
	}
	if s.Steps != nil && *s.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", *s.Steps)
	}
	if s.BeamCapacity != nil && *s.BeamCapacity <= 0 {
		return fmt.Errorf("beam_capacity must be positive, got %d", *s.BeamCapacity)
	}
	if s.SampleEvery != nil && *s.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d", *s.SampleEvery)
	}
	if s.RepumpDepumpChance != nil && (*s.RepumpDepumpChance < 0 || *s.RepumpDepumpChance > 1) {
		return fmt.Errorf("repump_depump_chance must be between 0 and 1, got %g", *s.RepumpDepumpChance)
	}

	if c := s.Cloud; c != nil {
		if c.RadiusMetres != nil && *c.RadiusMetres <= 0 {
			return fmt.Errorf("cloud radius_metres must be positive, got %g", *c.RadiusMetres)
		}
		if c.TemperatureMicroK != nil && *c.TemperatureMicroK < 0 {
			return fmt.Errorf("cloud temperature_microkelvin must be non-negative, got %g", *c.TemperatureMicroK)
		}
	}
	if q := s.Quadrupole; q != nil {
		if q.GradientGaussPerCm != nil && *q.GradientGaussPerCm == 0 {
			return fmt.Errorf("quadrupole gradient_gauss_per_cm must be non-zero when a quadrupole is configured")
		}
		if q.Axis != nil && q.Axis.r3() == (r3.Vec{}) {
			return fmt.Errorf("quadrupole axis must be non-zero")
		}
	}
	if m := s.MOT; m != nil {
		if m.TotalPowerWatts != nil && *m.TotalPowerWatts <= 0 {
			return fmt.Errorf("mot total_power_watts must be positive, got %g", *m.TotalPowerWatts)
		}
		if m.ERadiusMetres != nil && *m.ERadiusMetres <= 0 {
			return fmt.Errorf("mot e_radius_metres must be positive, got %g", *m.ERadiusMetres)
		}
	}
	for i, b := range s.Beams {
		if b.Polarization != 1 && b.Polarization != -1 {
			return fmt.Errorf("beam %d: polarization must be +1 or -1, got %d", i, b.Polarization)
		}
		if b.Direction.r3() == (r3.Vec{}) {
			return fmt.Errorf("beam %d: direction must be non-zero", i)
		}
		if b.PowerWatts <= 0 {
			return fmt.Errorf("beam %d: power_watts must be positive, got %g", i, b.PowerWatts)
		}
		if b.ERadiusMetres <= 0 {
			return fmt.Errorf("beam %d: e_radius_metres must be positive, got %g", i, b.ERadiusMetres)
		}
	}

	totalBeams := len(s.Beams)
	if s.MOT != nil {
		totalBeams += 6
	}
	if totalBeams > s.GetBeamCapacity() {
		return fmt.Errorf("%w: scenario configures %d beams, capacity %d",
			laser.ErrBeamCapacity, totalBeams, s.GetBeamCapacity())
	}
	return nil
}

// GetName returns the run name or the default.
func (s *Scenario) GetName() string {
	if s.Name == nil || *s.Name == "" {
		return "run"
	}
	return *s.Name
}

// GetSpecies returns the species name or the default.
func (s *Scenario) GetSpecies() string {
	if s.Species == nil {
		return "Sr88"
	}
	return *s.Species
}

// GetAtomCount returns the atom count or the default.
func (s *Scenario) GetAtomCount() int {
	if s.AtomCount == nil {
		return 1000
	}
	return *s.AtomCount
}

// GetSeed returns the run seed or the default.
func (s *Scenario) GetSeed() uint64 {
	if s.Seed == nil {
		return 1
	}
	return *s.Seed
}

// GetTimestepSeconds returns the integration interval or the default.
func (s *Scenario) GetTimestepSeconds() float64 {
	if s.TimestepSeconds == nil {
		return 1e-6
	}
	return *s.TimestepSeconds
}

// GetSteps returns the run length in steps or the default.
func (s *Scenario) GetSteps() int {
	if s.Steps == nil {
		return 10000
	}
	return *s.Steps
}

// GetBeamCapacity returns the sampler slot capacity or the default.
func (s *Scenario) GetBeamCapacity() int {
	if s.BeamCapacity == nil {
		return laser.DefaultBeamCapacity
	}
	return *s.BeamCapacity
}

// GetBatchSize returns the parallel batch size, zero meaning the engine
// default.
func (s *Scenario) GetBatchSize() int {
	if s.BatchSize == nil {
		return 0
	}
	return *s.BatchSize
}

// GetWorkers returns the worker count, zero meaning the engine default.
func (s *Scenario) GetWorkers() int {
	if s.Workers == nil {
		return 0
	}
	return *s.Workers
}

// GetCloudRadius returns the initial cloud radius in m.
func (s *Scenario) GetCloudRadius() float64 {
	if s.Cloud == nil || s.Cloud.RadiusMetres == nil {
		return 1e-3
	}
	return *s.Cloud.RadiusMetres
}

// GetCloudTemperatureMicroK returns the initial temperature in microkelvin.
func (s *Scenario) GetCloudTemperatureMicroK() float64 {
	if s.Cloud == nil || s.Cloud.TemperatureMicroK == nil {
		return 1000 // 1 mK
	}
	return *s.Cloud.TemperatureMicroK
}

// GetQuadrupoleAxis returns the quadrupole symmetry axis.
func (s *Scenario) GetQuadrupoleAxis() r3.Vec {
	if s.Quadrupole == nil || s.Quadrupole.Axis == nil {
		return r3.Vec{Z: 1}
	}
	return s.Quadrupole.Axis.r3()
}

// GetQuadrupoleCentre returns the field node position.
func (s *Scenario) GetQuadrupoleCentre() r3.Vec {
	if s.Quadrupole == nil || s.Quadrupole.Centre == nil {
		return r3.Vec{}
	}
	return s.Quadrupole.Centre.r3()
}

// GetQuadrupoleGradient returns the radial gradient in Gauss/cm.
func (s *Scenario) GetQuadrupoleGradient() float64 {
	if s.Quadrupole == nil || s.Quadrupole.GradientGaussPerCm == nil {
		return 15.0
	}
	return *s.Quadrupole.GradientGaussPerCm
}

// GetMOTDetuningMHz returns the six-beam detuning or the default, one
// linewidth red for the default species.
func (s *Scenario) GetMOTDetuningMHz() float64 {
	if s.MOT == nil || s.MOT.DetuningMHz == nil {
		return -32.0
	}
	return *s.MOT.DetuningMHz
}

// GetMOTTotalPower returns the six-beam total power in W.
func (s *Scenario) GetMOTTotalPower() float64 {
	if s.MOT == nil || s.MOT.TotalPowerWatts == nil {
		return 0.06
	}
	return *s.MOT.TotalPowerWatts
}

// GetMOTERadius returns the six-beam 1/e radius in m.
func (s *Scenario) GetMOTERadius() float64 {
	if s.MOT == nil || s.MOT.ERadiusMetres == nil {
		return 0.01
	}
	return *s.MOT.ERadiusMetres
}

// GetFluctuations returns whether photon counts draw from Poisson
// statistics.
func (s *Scenario) GetFluctuations() bool {
	if s.Fluctuations == nil {
		return true
	}
	return *s.Fluctuations
}

// GetEmissionEnabled returns whether emission recoil is applied.
func (s *Scenario) GetEmissionEnabled() bool {
	if s.EmissionForce == nil || s.EmissionForce.Enabled == nil {
		return true
	}
	return *s.EmissionForce.Enabled
}

// GetEmissionThreshold returns the explicit-kick threshold.
func (s *Scenario) GetEmissionThreshold() uint64 {
	if s.EmissionForce == nil || s.EmissionForce.ExplicitThreshold == nil {
		return 5
	}
	return *s.EmissionForce.ExplicitThreshold
}

// GetGravity returns whether gravity is applied.
func (s *Scenario) GetGravity() bool {
	if s.Gravity == nil {
		return false
	}
	return *s.Gravity
}

// GetSampleEvery returns the snapshot cadence in steps.
func (s *Scenario) GetSampleEvery() int {
	if s.SampleEvery == nil {
		return 100
	}
	return *s.SampleEvery
}
