package cooling

import (
	"math"
	"testing"

	"github.com/lattice-works/coolant/internal/species"
)

func TestSaturationAsymptote(t *testing.T) {
	tr := species.Rubidium87().Transition
	s := NewSamplers(1, 4)
	s.Reset(0, 1)
	s.Mask[0], s.Mask[1] = true, true

	// Drive the summed rate far beyond gamma; the excited fraction must
	// approach the saturation limit of one half from below.
	s.Rate[0] = 1e6 * tr.Gamma
	s.Rate[1] = 1e6 * tr.Gamma
	SolvePopulations(s, tr, 0, 1)

	excited := s.Population[0].Excited
	if math.Abs(excited-0.5) > 0.5*0.01 {
		t.Errorf("excited = %g; want 0.5 within 1%%", excited)
	}
	if excited >= 0.5 {
		t.Errorf("excited = %g; saturation limit must be approached from below", excited)
	}
}

func TestZeroRateLeavesGroundState(t *testing.T) {
	tr := species.Strontium88().Transition
	s := NewSamplers(2, 4)
	s.Reset(0, 2)
	s.Mask[0] = true
	s.Rate[0] = 0                // atom 0, slot 0
	s.Rate[s.Capacity()] = 1e-30 // atom 1, slot 0: negligible but nonzero

	SolvePopulations(s, tr, 0, 2)

	if p := s.Population[0]; p.Excited != 0 || p.Ground != 1 {
		t.Errorf("zero rate population = %+v; want ground=1 excited=0", p)
	}
	if p := s.Population[1]; p.Excited <= 0 || p.Excited > 1e-30 {
		t.Errorf("tiny rate excited = %g; want small positive", p.Excited)
	}
}

func TestPopulationsIgnoreUnfilledSlots(t *testing.T) {
	tr := species.Rubidium87().Transition
	s := NewSamplers(1, 8)
	s.Reset(0, 1)
	s.Mask[2] = true

	// Unfilled slots hold NaN from Reset; only slot 2 may contribute.
	s.Rate[2] = tr.Gamma / 2.0
	SolvePopulations(s, tr, 0, 1)

	want := (tr.Gamma / 2.0) / (tr.Gamma + tr.Gamma)
	if got := s.Population[0].Excited; math.Abs(got-want) > 1e-12 {
		t.Errorf("excited = %g; want %g (NaN leaked from an unfilled slot?)", got, want)
	}
}
