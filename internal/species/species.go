// Package species defines the atomic cooling transitions the simulation can
// drive. A transition is pure data: construct it once, share it by value.
package species

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lattice-works/coolant/internal/units"
)

// Transition holds the constants of one cooling transition. Gamma and
// RatePrefactor are derived at construction; use NewTransition rather than a
// struct literal so they are always consistent with the base values.
type Transition struct {
	// Frequency of the transition, in Hz.
	Frequency float64

	// Linewidth is the natural linewidth, in Hz.
	Linewidth float64

	// SaturationIntensity, in W/m^2.
	SaturationIntensity float64

	// MuPlus, MuMinus and MuZero are the magnetic shifts of the sigma+,
	// sigma- and pi components per unit field, in J/T.
	MuPlus, MuMinus, MuZero float64

	// Gamma is the angular linewidth 2*pi*Linewidth, in rad/s.
	Gamma float64

	// RatePrefactor is Gamma^3/(8*SaturationIntensity), the common factor
	// of every Lorentzian scattering channel.
	RatePrefactor float64
}

// NewTransition builds a Transition and derives Gamma and RatePrefactor.
func NewTransition(frequency, linewidth, saturationIntensity, muPlus, muMinus, muZero float64) Transition {
	gamma := 2.0 * math.Pi * linewidth
	return Transition{
		Frequency:           frequency,
		Linewidth:           linewidth,
		SaturationIntensity: saturationIntensity,
		MuPlus:              muPlus,
		MuMinus:             muMinus,
		MuZero:              muZero,
		Gamma:               gamma,
		RatePrefactor:       gamma * gamma * gamma / (8.0 * saturationIntensity),
	}
}

// Species couples a cooling transition with the atomic mass.
type Species struct {
	Name string

	// MassAMU is the atomic mass in atomic mass units. The integrator
	// converts to kg with units.AMU.
	MassAMU float64

	Transition Transition
}

// Strontium88 is the 461 nm blue MOT line of strontium-88.
func Strontium88() Species {
	return Species{
		Name:    "Sr88",
		MassAMU: 88,
		Transition: NewTransition(
			650_759_219_088_937.0, // Hz
			32e6,                  // Hz
			430.0,                 // W/m^2
			units.BohrMagneton, -units.BohrMagneton, 0,
		),
	}
}

// Rubidium87 is the 780 nm D2 line of rubidium-87.
func Rubidium87() Species {
	return Species{
		Name:    "Rb87",
		MassAMU: 87,
		Transition: NewTransition(
			384_228_115_202_521.0, // Hz
			6.065e6,               // Hz
			16.69,                 // W/m^2
			units.BohrMagneton, -units.BohrMagneton, 0,
		),
	}
}

var registry = map[string]func() Species{
	"sr88": Strontium88,
	"rb87": Rubidium87,
}

// Lookup resolves a species by its configuration name (case-insensitive).
// Unknown names are a configuration error and must abort setup.
func Lookup(name string) (Species, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Species{}, fmt.Errorf("unknown species %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names lists the registered species names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, registry[k]().Name)
	}
	sort.Strings(names)
	return names
}
