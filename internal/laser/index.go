package laser

import (
	"errors"
	"fmt"
)

// ErrBeamCapacity is returned when the configured beams cannot all be given
// sampler slots. This is a configuration error: setup must abort rather
// than silently truncate the beam set.
var ErrBeamCapacity = errors.New("beam count exceeds sampler capacity")

// Index ties a beam to its column in the per-atom sampler tables. A zero
// Index is uninitiated; IndexBeams assigns the slot exactly once.
type Index struct {
	Slot      int
	Initiated bool
}

// Beam is one cooling-beam entity: optics, spatial profile and slot index.
type Beam struct {
	Light   CoolingLight
	Profile GaussianBeam
	Index   Index
}

// IndexBeams assigns slots to any uninitiated beams. Assignment is
// additive: initiated beams keep their slot forever, new beams take the
// next free trailing slots. This keeps sampler columns stable for the
// whole life of a beam even when beams are added mid-run.
func IndexBeams(beams []*Beam, capacity int) error {
	if len(beams) > capacity {
		return fmt.Errorf("%w: %d beams configured, capacity %d", ErrBeamCapacity, len(beams), capacity)
	}
	next := 0
	for _, b := range beams {
		if b.Index.Initiated && b.Index.Slot >= next {
			next = b.Index.Slot + 1
		}
	}
	for _, b := range beams {
		if b.Index.Initiated {
			continue
		}
		if next >= capacity {
			return fmt.Errorf("%w: no free slot below capacity %d", ErrBeamCapacity, capacity)
		}
		b.Index = Index{Slot: next, Initiated: true}
		next++
	}
	return nil
}

// FillMask recomputes which sampler slots are owned by an active beam.
// mask must have the configured capacity. filled[i] == true iff some
// active beam currently holds slot i.
func FillMask(mask []bool, beams []*Beam) {
	for i := range mask {
		mask[i] = false
	}
	for _, b := range beams {
		if b.Index.Initiated {
			mask[b.Index.Slot] = true
		}
	}
}
