package cooling

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
)

// BeamCacheSize bounds how many beams are staged into a stack array before
// each atom loop. Chunking the beam list keeps per-beam parameter reads out
// of the hot per-atom loop; re-reading beam structs inside the innermost
// loop measured slower than staging them up front.
const BeamCacheSize = 16

// cachedBeam is the slice of beam state the hot loops touch, copied by
// value so the inner loop never follows a pointer.
type cachedBeam struct {
	slot         int
	direction    r3.Vec // unit
	wavenumber   float64
	polarization float64
	// angularFreq is the laser's angular frequency 2*pi*c/lambda, rad/s.
	angularFreq float64
	profile     laser.GaussianBeam
}

// fillBeamCache stages the window beams[base:base+BeamCacheSize] into dst,
// skipping beams that have not been given a slot, and returns the count.
func fillBeamCache(dst *[BeamCacheSize]cachedBeam, beams []*laser.Beam, base int) int {
	end := base + BeamCacheSize
	if end > len(beams) {
		end = len(beams)
	}
	n := 0
	for _, b := range beams[base:end] {
		if !b.Index.Initiated {
			continue
		}
		dst[n] = cachedBeam{
			slot:         b.Index.Slot,
			direction:    r3.Unit(b.Profile.Direction),
			wavenumber:   b.Light.Wavenumber(),
			polarization: float64(b.Light.Polarization),
			angularFreq:  2.0 * math.Pi * b.Light.Frequency(),
			profile:      b.Profile,
		}
		n++
	}
	return n
}
