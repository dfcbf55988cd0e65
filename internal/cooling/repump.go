package cooling

import (
	"math"
	"math/rand/v2"
)

// RepumpRoll probabilistically flags bright atoms dark. An atom that
// scattered n photons this step leaves the cooling cycle with probability
// 1-(1-DepumpChance)^n, the chance that at least one of those events
// pumped it into a state the cooling light cannot address. The transition
// is one-way: nothing in this engine clears the flag.
func RepumpRoll(s *Samplers, loss *RepumpLoss, dark []bool, rng *rand.Rand, lo, hi int) {
	if loss == nil {
		return
	}
	for atom := lo; atom < hi; atom++ {
		if dark[atom] {
			continue
		}
		n := s.Total[atom]
		if math.IsNaN(n) || n <= 0 {
			continue
		}
		pDark := 1.0 - math.Pow(1.0-loss.DepumpChance, n)
		if rng.Float64() < pDark {
			dark[atom] = true
		}
	}
}
