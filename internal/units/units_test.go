package units

import "testing"

func TestLabUnitConversions(t *testing.T) {
	if got := GaussToTesla(1.0); got != 1e-4 {
		t.Errorf("GaussToTesla(1) = %g; want 1e-4", got)
	}
	if got := GaussPerCmToTeslaPerM(15.0); got != 0.15 {
		t.Errorf("GaussPerCmToTeslaPerM(15) = %g; want 0.15", got)
	}
	if got := MicroKelvinToKelvin(300); got != 3e-4 {
		t.Errorf("MicroKelvinToKelvin(300) = %g; want 3e-4", got)
	}
}

func TestConstantsAreSane(t *testing.T) {
	// Guard against transposition typos in the constant table: these ratios
	// are order-of-magnitude physics that any edit should preserve.
	if Hbar <= 0 || Hbar > 1e-33 {
		t.Errorf("Hbar = %g out of range", Hbar)
	}
	if C < 2.9e8 || C > 3.1e8 {
		t.Errorf("C = %g out of range", C)
	}
	if recoil := Hbar / AMU; recoil < 1e-8 || recoil > 1e-6 {
		t.Errorf("Hbar/AMU = %g out of expected range", recoil)
	}
}
