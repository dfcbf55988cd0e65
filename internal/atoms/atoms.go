// Package atoms holds the simulated atom population as a struct of arrays.
// Every per-atom quantity is a parallel slice indexed by atom; stages
// iterate index ranges so the population can be split into batches without
// any per-atom locking.
package atoms

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/magnetics"
)

// Cloud is the atom population. All slices share one length and one index
// space. Force is an accumulator: cleared at the top of each step, then
// added to by every force-contributing stage in sequence.
type Cloud struct {
	Position []r3.Vec
	Velocity []r3.Vec
	Force    []r3.Vec

	// OldForce holds the previous step's force for the velocity-verlet
	// velocity update.
	OldForce []r3.Vec

	// MassAMU is the atomic mass in atomic mass units, not kg.
	MassAMU []float64

	// Dark marks atoms that have been pumped out of the cooling cycle.
	// The transition is one way; only an external repump clears it.
	Dark []bool

	// Field is the local magnetic field sample, refreshed every step by
	// the magnetics stage before any cooling stage runs.
	Field []magnetics.FieldSample
}

// NewCloud allocates a cloud of n atoms sharing a single mass.
func NewCloud(n int, massAMU float64) *Cloud {
	c := &Cloud{
		Position: make([]r3.Vec, n),
		Velocity: make([]r3.Vec, n),
		Force:    make([]r3.Vec, n),
		OldForce: make([]r3.Vec, n),
		MassAMU:  make([]float64, n),
		Dark:     make([]bool, n),
		Field:    make([]magnetics.FieldSample, n),
	}
	for i := range c.MassAMU {
		c.MassAMU[i] = massAMU
	}
	return c
}

// Len returns the number of atoms.
func (c *Cloud) Len() int { return len(c.Position) }

// ClearForce zeroes the force accumulators in [lo,hi).
func (c *Cloud) ClearForce(lo, hi int) {
	for i := lo; i < hi; i++ {
		c.Force[i] = r3.Vec{}
	}
}

// AddForce accumulates f onto atom i. Safe under the batching scheme
// because each atom index belongs to exactly one batch per stage.
func (c *Cloud) AddForce(i int, f r3.Vec) {
	c.Force[i] = r3.Add(c.Force[i], f)
}

// DarkCount returns the number of atoms currently flagged dark.
func (c *Cloud) DarkCount() int {
	n := 0
	for _, d := range c.Dark {
		if d {
			n++
		}
	}
	return n
}
