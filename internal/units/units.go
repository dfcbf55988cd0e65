// Package units provides the physical constants shared by the simulation.
// All values are SI. Simulation state is kept in SI throughout; conversions
// from laboratory units (Gauss, MHz, amu, uK) happen at the configuration
// boundary and nowhere else.
package units

const (
	// Hbar is the reduced Planck constant, in J s.
	Hbar = 1.0545718e-34

	// C is the speed of light in vacuum, in m/s.
	C = 2.998e8

	// Boltzmann is the Boltzmann constant, in J/K.
	Boltzmann = 1.38e-23

	// BohrMagneton is the Bohr magneton, in J/T.
	BohrMagneton = 9.274e-24

	// AMU is the unified atomic mass unit, in kg.
	AMU = 1.6605e-27

	// G is the standard acceleration due to gravity, in m/s^2.
	G = 9.80665
)

// GaussToTesla converts a magnetic field value from Gauss to Tesla.
func GaussToTesla(gauss float64) float64 { return gauss * 1e-4 }

// GaussPerCmToTeslaPerM converts a field gradient from Gauss/cm to Tesla/m.
func GaussPerCmToTeslaPerM(gradient float64) float64 { return gradient * 0.01 }

// MicroKelvinToKelvin converts a temperature from uK to K.
func MicroKelvinToKelvin(uk float64) float64 { return uk * 1e-6 }

// KelvinToMicroKelvin converts a temperature from K to uK.
func KelvinToMicroKelvin(k float64) float64 { return k * 1e6 }
