package cooling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lattice-works/coolant/internal/species"
)

// poissonFloor is the expectation below which a slot is treated as having
// scattered nothing. Draws this small contribute no measurable force and
// the Poisson construction degenerates numerically.
const poissonFloor = 1.0e-5

// MeanTotalPhotons computes each atom's mean photon count over all beams
// for this step: timestep * gamma * excited fraction.
func MeanTotalPhotons(s *Samplers, t species.Transition, dt float64, lo, hi int) {
	for atom := lo; atom < hi; atom++ {
		s.Total[atom] = dt * t.Gamma * s.Population[atom].Excited
	}
}

// ExpectedPhotons apportions the mean total across the filled slots in
// proportion to each slot's rate share. Atoms whose summed rate is zero
// are skipped: there is nothing to apportion and the division would be
// meaningless.
func ExpectedPhotons(s *Samplers, lo, hi int) {
	for atom := lo; atom < hi; atom++ {
		row, _ := s.Row(atom)
		sum := 0.0
		for slot := 0; slot < s.capacity; slot++ {
			if s.Mask[slot] {
				sum += s.Rate[row+slot]
			}
		}
		if sum <= 0 || math.IsNaN(sum) {
			continue
		}
		total := s.Total[atom]
		for slot := 0; slot < s.capacity; slot++ {
			if s.Mask[slot] {
				s.Expected[row+slot] = s.Rate[row+slot] / sum * total
			}
		}
	}
}

// ActualPhotons fixes the photon count each beam actually scattered this
// step. With fluctuations off the expectation is used verbatim; with
// fluctuations on each filled slot draws from a Poisson distribution with
// the expectation as its mean. Unset or sub-threshold expectations count
// as zero scattered. Unfilled slots keep the zero written by Reset, so
// whole-row sums are always finite.
func ActualPhotons(s *Samplers, fluctuations bool, rng *rand.Rand, lo, hi int) {
	for atom := lo; atom < hi; atom++ {
		row, _ := s.Row(atom)
		for slot := 0; slot < s.capacity; slot++ {
			if !s.Mask[slot] {
				continue
			}
			lambda := s.Expected[row+slot]
			switch {
			case math.IsNaN(lambda):
				s.Actual[row+slot] = 0
			case !fluctuations:
				s.Actual[row+slot] = lambda
			case lambda <= poissonFloor:
				s.Actual[row+slot] = 0
			default:
				s.Actual[row+slot] = distuv.Poisson{Lambda: lambda, Src: rng}.Rand()
			}
		}
	}
}

// TotalActual returns the integer photon count atom scattered this step:
// the floor of the summed per-beam actual counts.
func (s *Samplers) TotalActual(atom int) uint64 {
	row, end := s.Row(atom)
	sum := floats.Sum(s.Actual[row:end])
	if sum <= 0 || math.IsNaN(sum) {
		return 0
	}
	return uint64(sum)
}
