package cooling

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
)

// DopplerShifts projects each atom's velocity onto each beam's wavevector,
// giving the apparent angular frequency shift in rad/s. Positive when the
// atom moves along the beam.
func DopplerShifts(s *Samplers, beams []*laser.Beam, velocities []r3.Vec, lo, hi int) {
	var cache [BeamCacheSize]cachedBeam
	for base := 0; base < len(beams); base += BeamCacheSize {
		n := fillBeamCache(&cache, beams, base)
		for atom := lo; atom < hi; atom++ {
			row, _ := s.Row(atom)
			v := velocities[atom]
			for i := 0; i < n; i++ {
				b := &cache[i]
				s.Doppler[row+b.slot] = r3.Dot(v, r3.Scale(b.wavenumber, b.direction))
			}
		}
	}
}
