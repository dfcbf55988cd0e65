package scenario

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/cooling"
	"github.com/lattice-works/coolant/internal/engine"
	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/magnetics"
	"github.com/lattice-works/coolant/internal/monitoring"
	"github.com/lattice-works/coolant/internal/species"
	"github.com/lattice-works/coolant/internal/units"
)

// initSeedStream separates the initial-condition draws from the engine's
// worker streams, which use the run seed with small stream ids.
const initSeedStream = 0x696e6974

// Build materialises the scenario into an engine configuration: the
// thermal cloud, the beam set, the field sources and the run options.
func (s *Scenario) Build() (engine.Config, error) {
	if err := s.Validate(); err != nil {
		return engine.Config{}, err
	}
	sp, err := species.Lookup(s.GetSpecies())
	if err != nil {
		return engine.Config{}, err
	}

	rng := rand.New(rand.NewPCG(s.GetSeed(), initSeedStream))
	cloud := buildCloud(rng, sp, s.GetAtomCount(), s.GetCloudRadius(), s.GetCloudTemperatureMicroK())

	fluct := s.GetFluctuations()
	emission := cooling.EmissionForce{
		Enabled:           s.GetEmissionEnabled(),
		ExplicitThreshold: s.GetEmissionThreshold(),
	}
	cfg := engine.Config{
		Cloud:        cloud,
		Transition:   sp.Transition,
		Beams:        s.buildBeams(sp.Transition),
		FieldSources: s.buildSources(),
		Timestep:     s.GetTimestepSeconds(),
		BeamCapacity: s.GetBeamCapacity(),
		BatchSize:    s.GetBatchSize(),
		Workers:      s.GetWorkers(),
		Seed:         s.GetSeed(),
		Fluctuations: &fluct,
		Emission:     &emission,
		Gravity:      s.GetGravity(),
	}
	if s.RepumpDepumpChance != nil {
		cfg.Repump = &cooling.RepumpLoss{DepumpChance: *s.RepumpDepumpChance}
	}

	monitoring.Logf("scenario %q: %s, %d atoms, %d beams, %d steps at %gs",
		s.GetName(), sp.Name, cloud.Len(), len(cfg.Beams), s.GetSteps(), s.GetTimestepSeconds())
	return cfg, nil
}

// buildCloud draws the initial conditions: positions uniform in a ball of
// the given radius, velocities Maxwell-Boltzmann at the given temperature
// (independent per-axis normals with sigma = sqrt(kB*T/m)).
func buildCloud(rng *rand.Rand, sp species.Species, n int, radius, tempMicroK float64) *atoms.Cloud {
	cloud := atoms.NewCloud(n, sp.MassAMU)
	sigma := math.Sqrt(units.Boltzmann * units.MicroKelvinToKelvin(tempMicroK) / (sp.MassAMU * units.AMU))
	thermal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := 0; i < n; i++ {
		cloud.Position[i] = pointInBall(rng, thermal, radius)
		cloud.Velocity[i] = r3.Vec{
			X: sigma * thermal.Rand(),
			Y: sigma * thermal.Rand(),
			Z: sigma * thermal.Rand(),
		}
	}
	return cloud
}

// pointInBall draws a position uniformly inside a ball: an isotropic
// direction from three normals, a radius from the cube root of a uniform.
func pointInBall(rng *rand.Rand, normal distuv.Normal, radius float64) r3.Vec {
	v := r3.Vec{X: normal.Rand(), Y: normal.Rand(), Z: normal.Rand()}
	norm := r3.Norm(v)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(radius*math.Cbrt(rng.Float64())/norm, v)
}

func (s *Scenario) buildBeams(t species.Transition) []*laser.Beam {
	var beams []*laser.Beam
	if s.MOT != nil {
		beams = append(beams, s.motBeams(t)...)
	}
	for _, spec := range s.Beams {
		beams = append(beams, buildBeam(t, spec))
	}
	return beams
}

func buildBeam(t species.Transition, spec BeamSpec) *laser.Beam {
	light := laser.ForTransition(t, spec.DetuningMHz, spec.Polarization)
	var intersection r3.Vec
	if spec.Intersection != nil {
		intersection = spec.Intersection.r3()
	}
	return &laser.Beam{
		Light:   light,
		Profile: laser.NewGaussianBeam(intersection, spec.Direction.r3(), spec.PowerWatts, spec.ERadiusMetres, light.Wavelength),
	}
}

// motBeams builds the standard six-beam arrangement crossed at the
// quadrupole centre: the counter-propagating pair along the coil axis
// drives sigma-, the four transverse beams sigma+, matching the doubled
// field gradient along the axis.
func (s *Scenario) motBeams(t species.Transition) []*laser.Beam {
	axis := r3.Unit(s.GetQuadrupoleAxis())
	e1, e2 := magnetics.TransverseBasis(axis)
	centre := s.GetQuadrupoleCentre()
	power := s.GetMOTTotalPower() / 6.0
	radius := s.GetMOTERadius()
	det := s.GetMOTDetuningMHz()

	arms := []struct {
		dir r3.Vec
		pol int
	}{
		{axis, -1},
		{axis.Scale(-1), -1},
		{e1, 1},
		{e1.Scale(-1), 1},
		{e2, 1},
		{e2.Scale(-1), 1},
	}
	beams := make([]*laser.Beam, 0, len(arms))
	for _, a := range arms {
		light := laser.ForTransition(t, det, a.pol)
		beams = append(beams, &laser.Beam{
			Light:   light,
			Profile: laser.NewGaussianBeam(centre, a.dir, power, radius, light.Wavelength),
		})
	}
	return beams
}

func (s *Scenario) buildSources() []magnetics.Source {
	var sources []magnetics.Source
	if s.Quadrupole != nil {
		sources = append(sources, magnetics.QuadrupoleGaussPerCm(
			s.GetQuadrupoleGradient(), s.GetQuadrupoleCentre(), s.GetQuadrupoleAxis()))
	}
	if s.BiasFieldGauss != nil {
		sources = append(sources, magnetics.UniformGauss(s.BiasFieldGauss.r3()))
	}
	return sources
}
