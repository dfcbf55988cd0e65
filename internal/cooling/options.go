package cooling

// EmissionForce gates the spontaneous-emission recoil stage.
type EmissionForce struct {
	Enabled bool

	// ExplicitThreshold is the per-step photon count above which the
	// random walk switches from explicit per-photon unit-sphere draws to
	// the closed-form Gaussian kick. The approximation improves with
	// photon count while the explicit path's cost grows linearly.
	ExplicitThreshold uint64
}

// DefaultEmissionForce enables emission recoil with the switch-over at
// five photons per step.
func DefaultEmissionForce() EmissionForce {
	return EmissionForce{Enabled: true, ExplicitThreshold: 5}
}

// RepumpLoss enables the dark-state roll. DepumpChance is the chance that
// a single scattering event pumps the atom out of the cooling cycle. A nil
// *RepumpLoss disables repump loss entirely.
type RepumpLoss struct {
	DepumpChance float64
}
