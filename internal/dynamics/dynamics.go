// Package dynamics advances the atom cloud under its accumulated forces
// with the velocity-verlet scheme. The position half runs before the force
// stages of a step and retires each atom's force into OldForce; the
// velocity half runs last, averaging the retired and freshly accumulated
// forces.
package dynamics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/units"
)

// Timestep is the integration interval shared by every stage of a step.
type Timestep struct {
	// Delta in s.
	Delta float64
}

// DefaultTimestep returns the 1 microsecond interval that resolves the
// excited-state lifetime of the usual cooling transitions.
func DefaultTimestep() Timestep {
	return Timestep{Delta: 1e-6}
}

// Step counts completed integration steps.
type Step struct {
	N uint64
}

// IntegratePositions advances positions a full interval using the current
// velocity and force, then retires the force into OldForce for the
// trailing velocity half-step. Runs before the force accumulators are
// cleared.
func IntegratePositions(c *atoms.Cloud, dt float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		mass := c.MassAMU[i] * units.AMU
		c.Position[i] = r3.Add(
			r3.Add(c.Position[i], r3.Scale(dt, c.Velocity[i])),
			r3.Scale(dt*dt/(2.0*mass), c.Force[i]))
		c.OldForce[i] = c.Force[i]
	}
}

// IntegrateVelocities applies the two velocity half-steps at once: the
// average of the force that moved the atom here and the force accumulated
// at the new position.
func IntegrateVelocities(c *atoms.Cloud, dt float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		mass := c.MassAMU[i] * units.AMU
		avg := r3.Add(c.Force[i], c.OldForce[i])
		c.Velocity[i] = r3.Add(c.Velocity[i], r3.Scale(dt/(2.0*mass), avg))
	}
}

// Gravity accumulates each atom's weight along -z.
func Gravity(c *atoms.Cloud, lo, hi int) {
	for i := lo; i < hi; i++ {
		c.AddForce(i, r3.Vec{Z: -c.MassAMU[i] * units.AMU * units.G})
	}
}
