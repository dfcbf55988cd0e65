// Package cooling implements the rate-equation force engine: the staged,
// per-atom, per-beam pipeline that turns velocity, position and local
// magnetic field into scattered photons and radiation-pressure forces.
//
// Stages are plain functions over an atom index range [lo,hi). They carry
// no state of their own; everything flows through the Samplers tables and
// the atom cloud. The caller (internal/engine) owns stage ordering and the
// barrier between stages; every stage here assumes all of its inputs were
// written earlier in the same step.
package cooling

import (
	"math"
)

// Detuning is one sampler slot's total detuning against the three Zeeman
// components, in rad/s.
type Detuning struct {
	SigmaPlus, SigmaMinus, Pi float64
}

// ZeemanShift is the per-atom angular shift of each transition component,
// in rad/s.
type ZeemanShift struct {
	SigmaPlus, SigmaMinus, Pi float64
}

// Population is the steady-state two-level population split. Ground and
// Excited sum to one once solved.
type Population struct {
	Ground, Excited float64
}

// Samplers holds everything the cooling stages write, laid out as flat
// row-major tables: row = atom, column = beam slot, stride = Capacity.
// Slot contents are recomputed every step; the slot identity is stable for
// the life of the owning beam.
type Samplers struct {
	atoms    int
	capacity int

	// Per (atom, slot), stride capacity.
	Doppler   []float64
	Intensity []float64
	Detuning  []Detuning
	Rate      []float64
	Expected  []float64
	Actual    []float64

	// Per atom.
	Zeeman     []ZeemanShift
	Population []Population
	Total      []float64

	// Mask is shared by all atoms: filled[slot] == true iff an active
	// beam owns the slot. Recomputed each step by laser.FillMask.
	Mask []bool
}

// NewSamplers allocates tables for atomCount atoms and the given beam slot
// capacity.
func NewSamplers(atomCount, capacity int) *Samplers {
	n := atomCount * capacity
	return &Samplers{
		atoms:      atomCount,
		capacity:   capacity,
		Doppler:    make([]float64, n),
		Intensity:  make([]float64, n),
		Detuning:   make([]Detuning, n),
		Rate:       make([]float64, n),
		Expected:   make([]float64, n),
		Actual:     make([]float64, n),
		Zeeman:     make([]ZeemanShift, atomCount),
		Population: make([]Population, atomCount),
		Total:      make([]float64, atomCount),
		Mask:       make([]bool, capacity),
	}
}

// Atoms returns the number of rows.
func (s *Samplers) Atoms() int { return s.atoms }

// Capacity returns the number of beam slots per atom.
func (s *Samplers) Capacity() int { return s.capacity }

// Row returns the [start,end) range of atom's slots in the flat tables.
func (s *Samplers) Row(atom int) (int, int) {
	start := atom * s.capacity
	return start, start + s.capacity
}

// Reset returns every per-step sampler for atoms [lo,hi) to its unset
// sentinel. NaN marks "not computed this step" so that a scheduling bug
// surfaces as NaN downstream instead of a silent zero; Actual starts at
// zero because unfilled slots legitimately scatter nothing.
func (s *Samplers) Reset(lo, hi int) {
	nan := math.NaN()
	for atom := lo; atom < hi; atom++ {
		start, end := s.Row(atom)
		for i := start; i < end; i++ {
			s.Doppler[i] = nan
			s.Intensity[i] = nan
			s.Detuning[i] = Detuning{SigmaPlus: nan, SigmaMinus: nan, Pi: nan}
			s.Rate[i] = nan
			s.Expected[i] = nan
			s.Actual[i] = 0
		}
		s.Zeeman[atom] = ZeemanShift{SigmaPlus: nan, SigmaMinus: nan, Pi: nan}
		s.Population[atom] = Population{Ground: nan, Excited: nan}
		s.Total[atom] = nan
	}
}
