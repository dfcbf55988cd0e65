package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/units"
)

// Snapshot is a cloud summary taken after a completed step. It is the
// record the run store persists and the report charts draw from.
type Snapshot struct {
	// Step and simulated Time (s) at which the snapshot was taken.
	Step uint64
	Time float64

	// Atoms in the cloud and how many are currently dark.
	Atoms int
	Dark  int

	// MeanPosition of the cloud, in m.
	MeanPosition r3.Vec

	// MeanSpeed and RMSSpeed over all atoms, in m/s.
	MeanSpeed float64
	RMSSpeed  float64

	// Temperature from the velocity spread about the mean, in K.
	Temperature float64

	// Scattered is the total photon count of the last completed step.
	Scattered uint64
}

// Snapshot summarises the cloud as of the last completed step.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Step:  e.step.N,
		Time:  e.Time(),
		Atoms: e.cloud.Len(),
		Dark:  e.cloud.DarkCount(),
	}
	n := e.cloud.Len()
	if n == 0 {
		return snap
	}

	var meanV, meanP r3.Vec
	for i := 0; i < n; i++ {
		meanV = r3.Add(meanV, e.cloud.Velocity[i])
		meanP = r3.Add(meanP, e.cloud.Position[i])
	}
	meanV = r3.Scale(1.0/float64(n), meanV)
	snap.MeanPosition = r3.Scale(1.0/float64(n), meanP)

	// Temperature from equipartition: sum m|v - <v>|^2 = 3 N kB T.
	var speed, speed2, weighted float64
	for i := 0; i < n; i++ {
		v := e.cloud.Velocity[i]
		speed += r3.Norm(v)
		speed2 += r3.Norm2(v)
		dv := r3.Sub(v, meanV)
		weighted += e.cloud.MassAMU[i] * units.AMU * r3.Norm2(dv)
	}
	snap.MeanSpeed = speed / float64(n)
	snap.RMSSpeed = math.Sqrt(speed2 / float64(n))
	snap.Temperature = weighted / (3.0 * float64(n) * units.Boltzmann)

	for i := 0; i < n; i++ {
		snap.Scattered += e.samplers.TotalActual(i)
	}
	return snap
}
