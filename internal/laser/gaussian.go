package laser

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CircularMask is an opaque disc coaxial with a beam, blocking the central
// portion out to Radius. Used to carve dark-spot beams.
type CircularMask struct {
	// Radius of the masked region, in m.
	Radius float64
}

// TransverseFrame fixes the transverse axes of an elliptical beam. Both
// vectors should be perpendicular to the propagation direction; they are
// normalised before use.
type TransverseFrame struct {
	X, Y r3.Vec
}

// GaussianBeam is the spatial intensity profile of one beam propagating in
// vacuum. Attenuation and refraction are not modelled.
type GaussianBeam struct {
	// Intersection is a point the beam axis passes through, in m.
	Intersection r3.Vec

	// Direction of propagation. Normalised on use, so it need not be unit.
	Direction r3.Vec

	// ERadius is the radius at which intensity falls to 1/e of peak, in m.
	// The more commonly quoted 1/e^2 radius is ERadius*sqrt(2).
	ERadius float64

	// Power of the beam, in W.
	Power float64

	// RayleighRange is the axial distance over which the cross-section
	// doubles, in m. Use math.Inf(1) for a collimated beam.
	RayleighRange float64

	// Ellipticity is sqrt(1-(b/a)^2) of the transverse intensity profile;
	// zero for a symmetric beam. Requires Frame to take effect.
	Ellipticity float64

	// Mask, when non-nil, blocks the beam inside Mask.Radius of the axis.
	Mask *CircularMask

	// Frame, when non-nil, orients the transverse ellipse axes. When nil
	// the profile is treated as circularly symmetric.
	Frame *TransverseFrame
}

// NewGaussianBeam builds a collimation-corrected beam: direction is
// normalised and the Rayleigh range derived from the wavelength.
func NewGaussianBeam(intersection, direction r3.Vec, power, eRadius, wavelength float64) GaussianBeam {
	return GaussianBeam{
		Intersection:  intersection,
		Direction:     r3.Unit(direction),
		ERadius:       eRadius,
		Power:         power,
		RayleighRange: ComputeRayleighRange(wavelength, eRadius),
	}
}

// FromPeakIntensity builds a collimated beam from its peak intensity in
// W/m^2 instead of total power.
func FromPeakIntensity(intersection, direction r3.Vec, peakIntensity, eRadius float64) GaussianBeam {
	std := eRadius / math.Sqrt2
	return GaussianBeam{
		Intersection:  intersection,
		Direction:     r3.Unit(direction),
		ERadius:       eRadius,
		Power:         2.0 * math.Pi * std * std * peakIntensity,
		RayleighRange: math.Inf(1),
	}
}

// ComputeRayleighRange returns the Rayleigh range 2*pi*ERadius^2/lambda.
func ComputeRayleighRange(wavelength, eRadius float64) float64 {
	return 2.0 * math.Pi * eRadius * eRadius / wavelength
}

// IntensityAt returns the beam intensity at position p, in W/m^2.
func (b GaussianBeam) IntensityAt(p r3.Vec) float64 {
	dir := r3.Unit(b.Direction)
	rel := r3.Sub(p, b.Intersection)

	var z, dist2 float64
	if b.Frame != nil {
		x := r3.Dot(rel, r3.Unit(b.Frame.X))
		y := r3.Dot(rel, r3.Unit(b.Frame.Y))
		z = r3.Dot(rel, dir)
		semiMajor := 1.0 / math.Sqrt(1.0-b.Ellipticity*b.Ellipticity)
		// The 1/semiMajor factor keeps total beam power unchanged by
		// the transverse stretch.
		dist2 = (x*x + (y*semiMajor)*(y*semiMajor)) / semiMajor
	} else {
		// Ellipticity is ignored without a frame to orient it.
		z = r3.Dot(rel, dir)
		dist2 = r3.Norm2(r3.Cross(dir, rel))
	}

	power := b.Power
	if b.Mask != nil && math.Sqrt(dist2) < b.Mask.Radius {
		power = 0
	}

	spread := 1.0 + (z/b.RayleighRange)*(z/b.RayleighRange)
	area := math.Pi * b.ERadius * b.ERadius * spread
	return power / area * math.Exp(-dist2/(b.ERadius*b.ERadius*spread))
}
