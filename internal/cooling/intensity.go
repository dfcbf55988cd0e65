package cooling

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
)

// SampleIntensities evaluates every beam's spatial profile at every atom
// position in [lo,hi), filling the Intensity table in W/m^2.
func SampleIntensities(s *Samplers, beams []*laser.Beam, positions []r3.Vec, lo, hi int) {
	var cache [BeamCacheSize]cachedBeam
	for base := 0; base < len(beams); base += BeamCacheSize {
		n := fillBeamCache(&cache, beams, base)
		for atom := lo; atom < hi; atom++ {
			row, _ := s.Row(atom)
			p := positions[atom]
			for i := 0; i < n; i++ {
				s.Intensity[row+cache[i].slot] = cache[i].profile.IntensityAt(p)
			}
		}
	}
}
