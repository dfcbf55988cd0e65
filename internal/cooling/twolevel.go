package cooling

import (
	"github.com/lattice-works/coolant/internal/species"
)

// SolvePopulations computes the steady-state two-level population split
// from the summed rate coefficients of the filled slots:
//
//	excited = sum / (gamma + 2*sum)
//
// At zero rate the atom is fully in the ground state. As the summed rate
// grows without bound the excited fraction approaches the saturation limit
// of one half, never exceeding it.
func SolvePopulations(s *Samplers, t species.Transition, lo, hi int) {
	for atom := lo; atom < hi; atom++ {
		row, _ := s.Row(atom)
		sum := 0.0
		for slot := 0; slot < s.capacity; slot++ {
			if s.Mask[slot] {
				sum += s.Rate[row+slot]
			}
		}
		excited := sum / (t.Gamma + 2.0*sum)
		s.Population[atom] = Population{Ground: 1.0 - excited, Excited: excited}
	}
}
