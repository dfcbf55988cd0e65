// Package laser describes the cooling beams: their optical frequency and
// polarization, their Gaussian spatial profile, and the dense slot index
// that ties each beam to its column in the per-atom sampler tables.
package laser

import (
	"math"

	"github.com/lattice-works/coolant/internal/species"
	"github.com/lattice-works/coolant/internal/units"
)

// DefaultBeamCapacity is the default number of sampler slots reserved per
// atom. Simulations with more beams must raise the capacity explicitly.
const DefaultBeamCapacity = 16

// CoolingLight is the optical frequency and polarization of one beam.
type CoolingLight struct {
	// Wavelength in m.
	Wavelength float64

	// Polarization is +1 for sigma+ light and -1 for sigma- light,
	// defined with respect to the propagation direction.
	Polarization int
}

// Frequency returns the optical frequency, in Hz.
func (c CoolingLight) Frequency() float64 {
	return units.C / c.Wavelength
}

// Wavenumber returns the angular wavenumber 2*pi/lambda, in rad/m.
func (c CoolingLight) Wavenumber() float64 {
	return 2.0 * math.Pi / c.Wavelength
}

// ForTransition builds a CoolingLight detuned from a transition by the
// given amount in MHz. Negative detunings are red of resonance, the usual
// operating point of a MOT.
func ForTransition(t species.Transition, detuningMHz float64, polarization int) CoolingLight {
	return CoolingLight{
		Wavelength:   units.C / (t.Frequency + detuningMHz*1e6),
		Polarization: polarization,
	}
}
