package cooling

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/magnetics"
	"github.com/lattice-works/coolant/internal/species"
)

// float64Eps is the machine epsilon for float64 (2^-52).
const float64Eps = 0x1p-52

// RateCoefficients computes the Lorentzian scattering-rate coefficient of
// every beam slot, in Hz. The three polarization channels are projected
// onto the local quantization axis (the field direction) through
// costheta; at near-zero field there is no preferred axis and costheta is
// defined as zero rather than dividing by a vanishing norm.
//
// This is the dominant cost centre of the whole engine: O(atoms x beams)
// with three Lorentzians per pair.
func RateCoefficients(s *Samplers, beams []*laser.Beam, t species.Transition, fields []magnetics.FieldSample, lo, hi int) {
	halfGammaSq := (t.Gamma / 2.0) * (t.Gamma / 2.0)
	var cache [BeamCacheSize]cachedBeam
	for base := 0; base < len(beams); base += BeamCacheSize {
		n := fillBeamCache(&cache, beams, base)
		for atom := lo; atom < hi; atom++ {
			row, _ := s.Row(atom)
			field := fields[atom]
			magSq := field.Magnitude * field.Magnitude
			var fieldDir r3.Vec
			if magSq >= 10.0*float64Eps {
				fieldDir = r3.Unit(field.Field)
			}
			for i := 0; i < n; i++ {
				b := &cache[i]
				costheta := 0.0
				if magSq >= 10.0*float64Eps {
					costheta = r3.Dot(b.direction, fieldDir)
				}
				prefactor := t.RatePrefactor * s.Intensity[row+b.slot]
				d := s.Detuning[row+b.slot]

				plus := 0.25 * (b.polarization*costheta + 1.0) * (b.polarization*costheta + 1.0) * prefactor /
					(d.SigmaPlus*d.SigmaPlus + halfGammaSq)
				minus := 0.25 * (b.polarization*costheta - 1.0) * (b.polarization*costheta - 1.0) * prefactor /
					(d.SigmaMinus*d.SigmaMinus + halfGammaSq)
				pi := 0.5 * (1.0 - costheta*costheta) * prefactor /
					(d.Pi*d.Pi + halfGammaSq)

				s.Rate[row+b.slot] = plus + minus + pi
			}
		}
	}
}
