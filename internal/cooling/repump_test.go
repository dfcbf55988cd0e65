package cooling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repumpSamplers(atomCount int, total float64) *Samplers {
	s := NewSamplers(atomCount, 1)
	s.Reset(0, atomCount)
	s.Mask[0] = true
	for atom := 0; atom < atomCount; atom++ {
		s.Total[atom] = total
	}
	return s
}

func TestRepumpNilLossIsDisabled(t *testing.T) {
	s := repumpSamplers(4, 1e6)
	dark := make([]bool, 4)
	RepumpRoll(s, nil, dark, testRNG(), 0, 4)
	for atom, d := range dark {
		assert.False(t, d, "atom %d went dark with repump loss disabled", atom)
	}
}

func TestRepumpChanceBounds(t *testing.T) {
	t.Run("zero chance never darkens", func(t *testing.T) {
		s := repumpSamplers(200, 50)
		dark := make([]bool, 200)
		RepumpRoll(s, &RepumpLoss{DepumpChance: 0}, dark, testRNG(), 0, 200)
		for atom, d := range dark {
			require.False(t, d, "atom %d went dark at zero depump chance", atom)
		}
	})

	t.Run("unit chance always darkens scattering atoms", func(t *testing.T) {
		s := repumpSamplers(200, 1)
		dark := make([]bool, 200)
		RepumpRoll(s, &RepumpLoss{DepumpChance: 1}, dark, testRNG(), 0, 200)
		for atom, d := range dark {
			require.True(t, d, "atom %d stayed bright at unit depump chance", atom)
		}
	})
}

func TestRepumpSkipsNonScatteringAtoms(t *testing.T) {
	s := repumpSamplers(3, 0)
	s.Total[1] = math.NaN()
	s.Total[2] = -1
	dark := make([]bool, 3)
	RepumpRoll(s, &RepumpLoss{DepumpChance: 1}, dark, testRNG(), 0, 3)
	for atom, d := range dark {
		assert.False(t, d, "atom %d went dark without scattering (total %g)", atom, s.Total[atom])
	}
}

func TestRepumpDarkAtomsStayDark(t *testing.T) {
	s := repumpSamplers(2, 1)
	dark := []bool{true, true}
	RepumpRoll(s, &RepumpLoss{DepumpChance: 0}, dark, testRNG(), 0, 2)
	assert.Equal(t, []bool{true, true}, dark)
}

func TestRepumpLossRateMatchesChance(t *testing.T) {
	// One photon per step at DepumpChance 0.5 darkens half the cloud;
	// with 20000 atoms the sample proportion sits within 0.02 of 0.5
	// far past the five sigma level.
	const atomCount = 20000
	s := repumpSamplers(atomCount, 1)
	dark := make([]bool, atomCount)
	RepumpRoll(s, &RepumpLoss{DepumpChance: 0.5}, dark, testRNG(), 0, atomCount)

	count := 0
	for _, d := range dark {
		if d {
			count++
		}
	}
	assert.InDelta(t, 0.5, float64(count)/atomCount, 0.02)
}

func TestRepumpMultiplePhotonsCompound(t *testing.T) {
	// Ten photons at DepumpChance 0.2 give survival 0.8^10 ~ 0.107.
	const atomCount = 20000
	s := repumpSamplers(atomCount, 10)
	dark := make([]bool, atomCount)
	RepumpRoll(s, &RepumpLoss{DepumpChance: 0.2}, dark, testRNG(), 0, atomCount)

	bright := 0
	for _, d := range dark {
		if !d {
			bright++
		}
	}
	want := math.Pow(0.8, 10)
	assert.InDelta(t, want, float64(bright)/atomCount, 0.02)
}
