package cooling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/species"
	"github.com/lattice-works/coolant/internal/units"
)

// AbsorptionForces accumulates the directed radiation-pressure force: one
// recoil hbar*k per scattered photon, along the beam, spread over the
// timestep. Dark atoms are outside the cooling cycle and take no
// absorption force.
func AbsorptionForces(s *Samplers, beams []*laser.Beam, force []r3.Vec, dark []bool, dt float64, lo, hi int) {
	var cache [BeamCacheSize]cachedBeam
	for base := 0; base < len(beams); base += BeamCacheSize {
		n := fillBeamCache(&cache, beams, base)
		for atom := lo; atom < hi; atom++ {
			if dark[atom] {
				continue
			}
			row, _ := s.Row(atom)
			for i := 0; i < n; i++ {
				b := &cache[i]
				impulse := s.Actual[row+b.slot] * units.Hbar / dt * b.wavenumber
				force[atom] = r3.Add(force[atom], r3.Scale(impulse, b.direction))
			}
		}
	}
}

// EmissionForces accumulates the isotropic recoil random walk of
// spontaneous emission. Above the explicit threshold the summed kicks
// follow the closed-form distribution of a three-dimensional random walk
// (Hsiung, Hsiung and Gordus, 1960): three independent normal components
// with variance total*kick^2/3. At or below the threshold each photon's
// recoil direction is drawn explicitly on the unit sphere.
//
// Dark atoms are not excluded here: photons they scattered earlier in the
// step still carried away momentum.
func EmissionForces(s *Samplers, t species.Transition, opt EmissionForce, force []r3.Vec, dt float64, rng *rand.Rand, lo, hi int) {
	if !opt.Enabled {
		return
	}
	omega := 2.0 * math.Pi * t.Frequency
	kick := units.Hbar * omega / (units.C * dt)
	for atom := lo; atom < hi; atom++ {
		total := s.TotalActual(atom)
		if total == 0 {
			continue
		}
		if total > opt.ExplicitThreshold {
			normal := distuv.Normal{
				Mu:    0,
				Sigma: math.Sqrt(float64(total) * kick * kick / 3.0),
				Src:   rng,
			}
			force[atom] = r3.Add(force[atom], r3.Vec{X: normal.Rand(), Y: normal.Rand(), Z: normal.Rand()})
		} else {
			for range total {
				force[atom] = r3.Add(force[atom], r3.Scale(kick, unitSphere(rng)))
			}
		}
	}
}

// unitSphere draws a uniformly distributed unit vector by the Marsaglia
// (1972) rejection method.
func unitSphere(rng *rand.Rand) r3.Vec {
	for {
		a := 2.0*rng.Float64() - 1.0
		b := 2.0*rng.Float64() - 1.0
		s := a*a + b*b
		if s >= 1.0 {
			continue
		}
		root := math.Sqrt(1.0 - s)
		return r3.Vec{X: 2.0 * a * root, Y: 2.0 * b * root, Z: 1.0 - 2.0*s}
	}
}
