package laser

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/species"
	"github.com/lattice-works/coolant/internal/units"
)

func TestGaussianBeamProfile(t *testing.T) {
	const power, eRadius = 1.0, 2.0e-3
	b := FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1}, power/(math.Pi*eRadius*eRadius), eRadius)

	peak := power / (math.Pi * eRadius * eRadius)
	if got := b.IntensityAt(r3.Vec{}); math.Abs(got-peak) > 1e-9*peak {
		t.Errorf("on-axis intensity = %g; want %g", got, peak)
	}

	// At one 1/e radius off axis the intensity drops by e.
	if got := b.IntensityAt(r3.Vec{X: eRadius}); math.Abs(got-peak/math.E) > 1e-9*peak {
		t.Errorf("intensity at ERadius = %g; want %g", got, peak/math.E)
	}

	// A collimated beam does not spread along the axis.
	if got := b.IntensityAt(r3.Vec{Z: 10.0}); math.Abs(got-peak) > 1e-9*peak {
		t.Errorf("on-axis intensity at z=10 = %g; want %g (collimated)", got, peak)
	}
}

func TestGaussianBeamRayleighSpread(t *testing.T) {
	const power, eRadius, wavelength = 0.5, 1.0e-3, 780.0e-9
	b := NewGaussianBeam(r3.Vec{}, r3.Vec{Z: 1}, power, eRadius, wavelength)

	zr := ComputeRayleighRange(wavelength, eRadius)
	if want := 2.0 * math.Pi * eRadius * eRadius / wavelength; math.Abs(zr-want) > 1e-9*want {
		t.Fatalf("rayleigh range = %g; want %g", zr, want)
	}

	// One Rayleigh range downstream the cross-section doubles, halving
	// the on-axis intensity.
	peak := power / (math.Pi * eRadius * eRadius)
	if got := b.IntensityAt(r3.Vec{Z: zr}); math.Abs(got-peak/2) > 1e-9*peak {
		t.Errorf("on-axis intensity at z=zR = %g; want %g", got, peak/2)
	}
}

func TestCircularMaskBlocksCentre(t *testing.T) {
	b := FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1}, 100.0, 2.0e-3)
	b.Mask = &CircularMask{Radius: 1.0e-3}

	if got := b.IntensityAt(r3.Vec{X: 0.5e-3}); got != 0 {
		t.Errorf("intensity inside mask = %g; want 0", got)
	}
	if got := b.IntensityAt(r3.Vec{X: 1.5e-3}); got <= 0 {
		t.Errorf("intensity outside mask = %g; want > 0", got)
	}
}

func TestEllipticalProfileConservesPeakScaling(t *testing.T) {
	const eRadius = 1.0e-3
	round := FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1}, 50.0, eRadius)
	elliptical := round
	elliptical.Ellipticity = 0.6
	elliptical.Frame = &TransverseFrame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}}

	// The stretch redistributes intensity between the axes but keeps the
	// profile normalised: wider along x, compressed along y, scaled at
	// the centre by exactly 1 (the 1/semiMajor factor under dist^2 and
	// the unchanged area prefactor cancel at the origin).
	if got, want := elliptical.IntensityAt(r3.Vec{}), round.IntensityAt(r3.Vec{}); math.Abs(got-want) > 1e-9*want {
		t.Errorf("elliptical on-axis intensity = %g; want %g", got, want)
	}
	if gx, gy := elliptical.IntensityAt(r3.Vec{X: eRadius}), elliptical.IntensityAt(r3.Vec{Y: eRadius}); gx <= gy {
		t.Errorf("expected slower falloff along semi-major x: x=%g y=%g", gx, gy)
	}
}

func TestForTransition(t *testing.T) {
	tr := species.Rubidium87().Transition

	resonant := ForTransition(tr, 0, 1)
	if want := units.C / tr.Frequency; math.Abs(resonant.Wavelength-want) > 1e-18 {
		t.Errorf("resonant wavelength = %g; want %g", resonant.Wavelength, want)
	}

	red := ForTransition(tr, -12.0, -1)
	if red.Wavelength <= resonant.Wavelength {
		t.Error("red detuning should lengthen the wavelength")
	}
	if red.Polarization != -1 {
		t.Errorf("polarization = %d; want -1", red.Polarization)
	}

	k := resonant.Wavenumber()
	if want := 2.0 * math.Pi / resonant.Wavelength; math.Abs(k-want) > 1e-9 {
		t.Errorf("wavenumber = %g; want %g", k, want)
	}
}
