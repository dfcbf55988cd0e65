package dynamics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/units"
)

// stepUnder runs n whole verlet steps with the force recomputed by apply
// between the position and velocity halves, the same ordering the engine
// uses.
func stepUnder(c *atoms.Cloud, dt float64, n int, apply func(*atoms.Cloud)) {
	for step := 0; step < n; step++ {
		IntegratePositions(c, dt, 0, c.Len())
		c.ClearForce(0, c.Len())
		apply(c)
		IntegrateVelocities(c, dt, 0, c.Len())
	}
}

func TestConstantForceTrajectory(t *testing.T) {
	const (
		dt    = 1e-6
		steps = 1000
		fz    = 1e-21
	)
	c := atoms.NewCloud(1, 88)
	c.AddForce(0, r3.Vec{Z: fz})

	stepUnder(c, dt, steps, func(c *atoms.Cloud) {
		c.AddForce(0, r3.Vec{Z: fz})
	})

	// Verlet reproduces uniformly accelerated motion exactly.
	a := fz / (88 * units.AMU)
	elapsed := float64(steps) * dt
	wantZ := 0.5 * a * elapsed * elapsed
	wantV := a * elapsed
	if got := c.Position[0].Z; math.Abs(got-wantZ) > 1e-9*wantZ {
		t.Errorf("z = %g; want %g", got, wantZ)
	}
	if got := c.Velocity[0].Z; math.Abs(got-wantV) > 1e-9*wantV {
		t.Errorf("vz = %g; want %g", got, wantV)
	}
	if c.Position[0].X != 0 || c.Position[0].Y != 0 {
		t.Errorf("transverse drift: position = %+v", c.Position[0])
	}
}

func TestGravityFreeFall(t *testing.T) {
	const (
		dt    = 1e-5
		steps = 2000
	)
	c := atoms.NewCloud(2, 87)
	c.MassAMU[1] = 133
	Gravity(c, 0, 2)

	stepUnder(c, dt, steps, func(c *atoms.Cloud) {
		Gravity(c, 0, c.Len())
	})

	// Weight scales with mass, acceleration does not.
	elapsed := float64(steps) * dt
	wantV := -units.G * elapsed
	for i := 0; i < 2; i++ {
		if got := c.Velocity[i].Z; math.Abs(got-wantV) > 1e-9*math.Abs(wantV) {
			t.Errorf("atom %d vz = %g; want %g regardless of mass", i, got, wantV)
		}
		wantZ := -0.5 * units.G * elapsed * elapsed
		if got := c.Position[i].Z; math.Abs(got-wantZ) > 1e-9*math.Abs(wantZ) {
			t.Errorf("atom %d z = %g; want %g", i, got, wantZ)
		}
	}
}

func TestGravityAccumulatesOntoExistingForce(t *testing.T) {
	c := atoms.NewCloud(1, 88)
	c.AddForce(0, r3.Vec{X: 1e-22, Z: 1e-22})
	Gravity(c, 0, 1)

	weight := 88 * units.AMU * units.G
	if got := c.Force[0].Z; math.Abs(got-(1e-22-weight)) > 1e-30 {
		t.Errorf("fz = %g; want prior force minus weight %g", got, 1e-22-weight)
	}
	if c.Force[0].X != 1e-22 {
		t.Errorf("fx = %g; want untouched", c.Force[0].X)
	}
}

func TestVelocityUpdateAveragesOldAndNewForce(t *testing.T) {
	const dt = 1e-6
	c := atoms.NewCloud(1, 100)
	c.OldForce[0] = r3.Vec{X: 4e-21}
	c.Force[0] = r3.Vec{X: 2e-21}

	IntegrateVelocities(c, dt, 0, 1)

	want := (4e-21 + 2e-21) / 2.0 / (100 * units.AMU) * dt
	if got := c.Velocity[0].X; math.Abs(got-want) > 1e-12*want {
		t.Errorf("vx = %g; want %g", got, want)
	}
}

func TestPositionUpdateRetiresForce(t *testing.T) {
	const dt = 1e-6
	c := atoms.NewCloud(1, 88)
	c.Velocity[0] = r3.Vec{X: 10}
	c.AddForce(0, r3.Vec{Y: 3e-21})

	IntegratePositions(c, dt, 0, 1)

	if got := c.Position[0].X; math.Abs(got-10*dt) > 1e-15 {
		t.Errorf("x = %g; want %g from drift", got, 10*dt)
	}
	wantY := 3e-21 / (88 * units.AMU) * dt * dt / 2.0
	if got := c.Position[0].Y; math.Abs(got-wantY) > 1e-9*wantY {
		t.Errorf("y = %g; want %g from the force half-step", got, wantY)
	}
	if c.OldForce[0] != (r3.Vec{Y: 3e-21}) {
		t.Errorf("old force = %+v; want the retired force", c.OldForce[0])
	}
}

// A harmonic oscillator keeps verlet honest: wrong half-step factors show
// up immediately as energy drift.
func TestHarmonicOscillatorConservesEnergy(t *testing.T) {
	const (
		dt        = 1e-6
		amplitude = 1e-3
	)
	mass := 88 * units.AMU
	omega := 2.0 * math.Pi * 1e3
	k := mass * omega * omega
	spring := func(c *atoms.Cloud) {
		c.AddForce(0, r3.Scale(-k, c.Position[0]))
	}

	c := atoms.NewCloud(1, 88)
	c.Position[0] = r3.Vec{X: amplitude}
	spring(c)

	energy := func() float64 {
		v := c.Velocity[0]
		x := c.Position[0]
		return 0.5*mass*r3.Norm2(v) + 0.5*k*r3.Norm2(x)
	}
	e0 := energy()

	steps := int(math.Round(2.0 * math.Pi / omega / dt)) // one period
	stepUnder(c, dt, steps, spring)

	if rel := math.Abs(energy()-e0) / e0; rel > 1e-3 {
		t.Errorf("energy drifted by %g over one period; want < 1e-3", rel)
	}
	if got := c.Position[0].X; math.Abs(got-amplitude) > 1e-3*amplitude {
		t.Errorf("x after one period = %g; want back at %g", got, amplitude)
	}
}

func TestDefaultTimestep(t *testing.T) {
	if got := DefaultTimestep().Delta; got != 1e-6 {
		t.Errorf("default delta = %g; want 1e-6", got)
	}
}
