package cooling

import (
	"github.com/lattice-works/coolant/internal/magnetics"
	"github.com/lattice-works/coolant/internal/species"
	"github.com/lattice-works/coolant/internal/units"
)

// ZeemanShifts converts each atom's local field magnitude into the angular
// shift of the three transition components. The shift is per atom, not per
// beam: it depends only on the field at the atom.
func ZeemanShifts(s *Samplers, t species.Transition, fields []magnetics.FieldSample, lo, hi int) {
	for atom := lo; atom < hi; atom++ {
		b := fields[atom].Magnitude
		s.Zeeman[atom] = ZeemanShift{
			SigmaPlus:  t.MuPlus / units.Hbar * b,
			SigmaMinus: t.MuMinus / units.Hbar * b,
			Pi:         t.MuZero / units.Hbar * b,
		}
	}
}
