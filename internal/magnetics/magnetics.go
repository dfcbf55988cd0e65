// Package magnetics supplies the local magnetic field seen by each atom.
// The cooling engine only ever consumes a sampled field vector and its
// cached magnitude; field sources live here so scenarios can compose them.
package magnetics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/units"
)

// FieldSample is the field at one atom's position.
type FieldSample struct {
	// Field vector, in Tesla.
	Field r3.Vec

	// Magnitude is the cached Euclidean norm of Field, in Tesla. Cached
	// because three downstream stages read it per atom per step.
	Magnitude float64
}

// Source contributes a magnetic field vector at a point in space.
type Source interface {
	// FieldAt returns the field at position p, in Tesla.
	FieldAt(p r3.Vec) r3.Vec
}

// Uniform is a constant bias field.
type Uniform struct {
	Field r3.Vec
}

// UniformGauss builds a Uniform field with components given in Gauss.
func UniformGauss(components r3.Vec) Uniform {
	return Uniform{Field: r3.Vec{
		X: units.GaussToTesla(components.X),
		Y: units.GaussToTesla(components.Y),
		Z: units.GaussToTesla(components.Z),
	}}
}

// UniformTesla builds a Uniform field with components given in Tesla.
func UniformTesla(components r3.Vec) Uniform {
	return Uniform{Field: components}
}

// FieldAt implements Source.
func (u Uniform) FieldAt(r3.Vec) r3.Vec { return u.Field }

// Quadrupole is a three-dimensional quadrupole field centred on a node.
// In the frame of the symmetry axis the field is B = g*(x, y, -2z), the
// standard anti-Helmholtz MOT configuration.
type Quadrupole struct {
	// Gradient along the radial directions, in T/m. The gradient along
	// the symmetry axis is -2x this value.
	Gradient float64

	// Centre is the field node, in m.
	Centre r3.Vec

	axis, e1, e2 r3.Vec
}

// NewQuadrupole builds a quadrupole with the gradient in T/m about the given
// axis. The axis need not be normalised.
func NewQuadrupole(gradient float64, centre, axis r3.Vec) Quadrupole {
	a := r3.Unit(axis)
	e1, e2 := TransverseBasis(a)
	return Quadrupole{Gradient: gradient, Centre: centre, axis: a, e1: e1, e2: e2}
}

// TransverseBasis returns an orthonormal pair perpendicular to axis. Beam
// arrangements use the same pair so optics and coils agree on geometry.
func TransverseBasis(axis r3.Vec) (r3.Vec, r3.Vec) {
	a := r3.Unit(axis)
	// Seed with whichever cardinal direction is furthest from the axis,
	// so the cross products stay well conditioned.
	seed := r3.Vec{X: 1}
	if math.Abs(a.X) > math.Abs(a.Y) {
		seed = r3.Vec{Y: 1}
	}
	e1 := r3.Unit(r3.Cross(a, seed))
	return e1, r3.Cross(a, e1)
}

// QuadrupoleGaussPerCm builds a quadrupole with the gradient given in
// Gauss/cm, the unit coil specifications are quoted in.
func QuadrupoleGaussPerCm(gradient float64, centre, axis r3.Vec) Quadrupole {
	return NewQuadrupole(units.GaussPerCmToTeslaPerM(gradient), centre, axis)
}

// FieldAt implements Source.
func (q Quadrupole) FieldAt(p r3.Vec) r3.Vec {
	rel := r3.Sub(p, q.Centre)
	d1 := r3.Dot(rel, q.e1)
	d2 := r3.Dot(rel, q.e2)
	da := r3.Dot(rel, q.axis)
	b := r3.Scale(q.Gradient*d1, q.e1)
	b = r3.Add(b, r3.Scale(q.Gradient*d2, q.e2))
	return r3.Add(b, r3.Scale(-2.0*q.Gradient*da, q.axis))
}

// Sample sums every source at each atom position in [lo,hi) and caches the
// magnitude. Samples are overwritten, not accumulated across steps.
func Sample(samples []FieldSample, positions []r3.Vec, sources []Source, lo, hi int) {
	for i := lo; i < hi; i++ {
		var b r3.Vec
		for _, s := range sources {
			b = r3.Add(b, s.FieldAt(positions[i]))
		}
		samples[i] = FieldSample{Field: b, Magnitude: r3.Norm(b)}
	}
}
