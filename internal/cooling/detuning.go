package cooling

import (
	"math"

	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/species"
)

// CombineDetunings merges laser frequency, Doppler shift and Zeeman shift
// into the three total detunings per slot, in rad/s:
//
//	base        = omega_laser - omega_transition - doppler
//	sigma+/-/pi = base - zeeman shift of that component
func CombineDetunings(s *Samplers, beams []*laser.Beam, t species.Transition, lo, hi int) {
	omega0 := 2.0 * math.Pi * t.Frequency
	var cache [BeamCacheSize]cachedBeam
	for base := 0; base < len(beams); base += BeamCacheSize {
		n := fillBeamCache(&cache, beams, base)
		for atom := lo; atom < hi; atom++ {
			row, _ := s.Row(atom)
			z := s.Zeeman[atom]
			for i := 0; i < n; i++ {
				b := &cache[i]
				without := b.angularFreq - omega0 - s.Doppler[row+b.slot]
				s.Detuning[row+b.slot] = Detuning{
					SigmaPlus:  without - z.SigmaPlus,
					SigmaMinus: without - z.SigmaMinus,
					Pi:         without - z.Pi,
				}
			}
		}
	}
}
