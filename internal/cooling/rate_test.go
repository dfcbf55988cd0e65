package cooling

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/magnetics"
	"github.com/lattice-works/coolant/internal/species"
)

// runRestingAtom drives the deterministic stages for one atom at rest at
// the origin in zero field, lit by a single +z beam at the given detuning
// (in units of linewidth) and saturation ratio. It returns the samplers
// after population and mean-photon evaluation.
func runRestingAtom(t *testing.T, tr species.Transition, detuningOverGamma, satRatio, dt float64) *Samplers {
	t.Helper()

	detuningMHz := detuningOverGamma * tr.Linewidth / 1e6
	beam := &laser.Beam{
		Light:   laser.ForTransition(tr, detuningMHz, 1),
		Profile: laser.FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1}, satRatio*tr.SaturationIntensity, 5e-3),
	}
	beams := []*laser.Beam{beam}
	if err := laser.IndexBeams(beams, 4); err != nil {
		t.Fatalf("IndexBeams: %v", err)
	}

	s := NewSamplers(1, 4)
	s.Reset(0, 1)
	laser.FillMask(s.Mask, beams)

	positions := []r3.Vec{{}}
	velocities := []r3.Vec{{}}
	fields := []magnetics.FieldSample{{}}

	SampleIntensities(s, beams, positions, 0, 1)
	DopplerShifts(s, beams, velocities, 0, 1)
	ZeemanShifts(s, tr, fields, 0, 1)
	CombineDetunings(s, beams, tr, 0, 1)
	RateCoefficients(s, beams, tr, fields, 0, 1)
	SolvePopulations(s, tr, 0, 1)
	MeanTotalPhotons(s, tr, dt, 0, 1)
	return s
}

// analyticRate is the closed-form two-level scattering rate
// (gamma/2)*s / (1 + s + 4(delta/gamma)^2) with s = I/Isat.
func analyticRate(gamma, satRatio, detuningOverGamma float64) float64 {
	return gamma / 2.0 * satRatio / (1.0 + satRatio + 4.0*detuningOverGamma*detuningOverGamma)
}

func TestScatteringRateMatchesAnalyticForm(t *testing.T) {
	tr := species.Rubidium87().Transition
	const dt = 1e-6

	for _, detuning := range []float64{-2, -1, 0, 1, 2} {
		for _, sat := range []float64{1, 2, 3, 4, 5} {
			name := fmt.Sprintf("delta=%+.0fGamma/sat=%.0f", detuning, sat)
			t.Run(name, func(t *testing.T) {
				s := runRestingAtom(t, tr, detuning, sat, dt)

				got := s.Total[0] / dt
				want := analyticRate(tr.Gamma, sat, detuning)
				if rel := math.Abs(got-want) / want; rel > 1e-3 {
					t.Errorf("scattering rate = %g, analytic %g (rel err %.2e)", got, want, rel)
				}
			})
		}
	}
}

func TestConcreteResonantScenario(t *testing.T) {
	// One atom at rest, one +z sigma+ beam on resonance at I = Isat:
	// the excited fraction settles at 1/4 and the atom scatters
	// gamma/4 photons per second.
	tr := species.Strontium88().Transition
	const dt = 1e-6
	s := runRestingAtom(t, tr, 0, 1, dt)

	if got := s.Population[0].Excited; math.Abs(got-0.25) > 0.25*0.01 {
		t.Errorf("excited fraction = %g; want 0.25 within 1%%", got)
	}
	if got, want := s.Total[0]/dt, tr.Gamma/4.0; math.Abs(got-want) > want*0.01 {
		t.Errorf("photons/dt = %g; want %g within 1%%", got, want)
	}
	if g, e := s.Population[0].Ground, s.Population[0].Excited; math.Abs(g+e-1.0) > 1e-12 {
		t.Errorf("populations do not sum to 1: ground=%g excited=%g", g, e)
	}
}

func TestRatePolarizationProjection(t *testing.T) {
	// With the field along the beam axis, sigma+ light on a sigma+-only
	// geometry scatters entirely through the sigma+ channel: costheta=1
	// gives channel weights (1, 0, 0).
	tr := species.Strontium88().Transition
	beam := &laser.Beam{
		Light:   laser.ForTransition(tr, 0, 1),
		Profile: laser.FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1}, tr.SaturationIntensity, 5e-3),
	}
	beams := []*laser.Beam{beam}
	if err := laser.IndexBeams(beams, 4); err != nil {
		t.Fatal(err)
	}

	s := NewSamplers(1, 4)
	s.Reset(0, 1)
	laser.FillMask(s.Mask, beams)

	positions := []r3.Vec{{}}
	fields := []magnetics.FieldSample{{Field: r3.Vec{Z: 1e-4}, Magnitude: 1e-4}}

	SampleIntensities(s, beams, positions, 0, 1)
	DopplerShifts(s, beams, []r3.Vec{{}}, 0, 1)
	ZeemanShifts(s, tr, fields, 0, 1)
	CombineDetunings(s, beams, tr, 0, 1)
	RateCoefficients(s, beams, tr, fields, 0, 1)

	// All scattering goes through the sigma+ Lorentzian at detuning
	// -zeeman.sigma+ (laser on bare resonance, up to float64 rounding of
	// the optical frequency).
	z := s.Zeeman[0]
	pref := tr.RatePrefactor * tr.SaturationIntensity
	want := pref / (z.SigmaPlus*z.SigmaPlus + tr.Gamma*tr.Gamma/4.0)
	if got := s.Rate[0]; math.Abs(got-want) > 1e-6*want {
		t.Errorf("rate = %g; want pure sigma+ channel %g", got, want)
	}
}

func TestRateZeroFieldUsesUniformProjection(t *testing.T) {
	// In zero field costheta is defined as zero: weights (1/4, 1/4, 1/2)
	// against identical detunings collapse to a single Lorentzian.
	tr := species.Rubidium87().Transition
	s := runRestingAtom(t, tr, 1, 2, 1e-6)

	delta := tr.Gamma // detuning of one linewidth in angular units
	pref := tr.RatePrefactor * 2 * tr.SaturationIntensity
	want := pref / (delta*delta + tr.Gamma*tr.Gamma/4.0)
	if got := s.Rate[0]; math.Abs(got-want) > 1e-6*want {
		t.Errorf("rate = %g; want %g", got, want)
	}
}
