// Command sweep checks the rate-equation kernel against closed-form
// two-level theory. It sweeps the laser detuning for a single resting atom,
// prints and saves the simulated versus analytic excited fractions, and can
// plot both curves.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lattice-works/coolant/internal/atoms"
	"github.com/lattice-works/coolant/internal/cooling"
	"github.com/lattice-works/coolant/internal/engine"
	"github.com/lattice-works/coolant/internal/laser"
	"github.com/lattice-works/coolant/internal/species"
)

func main() {
	speciesName := flag.String("species", "sr88", "Species to sweep (sr88, rb87)")
	detStart := flag.Float64("det-start", -64, "Start detuning (MHz)")
	detEnd := flag.Float64("det-end", 64, "End detuning (MHz)")
	detStep := flag.Float64("det-step", 2, "Detuning step (MHz)")
	saturation := flag.Float64("saturation", 1.0, "Peak intensity in units of the saturation intensity")
	output := flag.String("output", "", "Output CSV filename (defaults to sweep-<timestamp>.csv)")
	plotFile := flag.String("plot", "", "Write a PNG of both curves to this path")

	flag.Parse()

	sp, err := species.Lookup(*speciesName)
	if err != nil {
		log.Fatalf("Invalid species: %v", err)
	}
	if *saturation <= 0 {
		log.Fatalf("Saturation must be positive, got %g", *saturation)
	}

	detunings := generateRange(*detStart, *detEnd, *detStep)
	log.Printf("Sweeping %s over %d detunings at s = %g", sp.Name, len(detunings), *saturation)

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("sweep-%s.csv", time.Now().Format("20060102-150405"))
	}
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Could not create output file %s: %v", filename, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"detuning_mhz", "excited_sim", "excited_theory", "rate_sim_hz", "rate_theory_hz", "rel_error"}
	if err := w.Write(header); err != nil {
		log.Fatalf("Could not write CSV header: %v", err)
	}

	simPts := make(plotter.XYs, 0, len(detunings))
	theoryPts := make(plotter.XYs, 0, len(detunings))
	maxRelErr := 0.0

	for _, det := range detunings {
		sim, err := solveExcited(sp, det, *saturation)
		if err != nil {
			log.Fatalf("Sweep failed at %g MHz: %v", det, err)
		}
		theory := analyticExcited(sp.Transition, det, *saturation)

		relErr := math.Abs(sim-theory) / theory
		if relErr > maxRelErr {
			maxRelErr = relErr
		}

		row := []string{
			strconv.FormatFloat(det, 'g', -1, 64),
			strconv.FormatFloat(sim, 'g', 8, 64),
			strconv.FormatFloat(theory, 'g', 8, 64),
			strconv.FormatFloat(sim*sp.Transition.Gamma, 'g', 8, 64),
			strconv.FormatFloat(theory*sp.Transition.Gamma, 'g', 8, 64),
			strconv.FormatFloat(relErr, 'e', 3, 64),
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("Could not write CSV row: %v", err)
		}

		simPts = append(simPts, plotter.XY{X: det, Y: sim})
		theoryPts = append(theoryPts, plotter.XY{X: det, Y: theory})
	}

	log.Printf("Wrote %s; max relative error vs theory: %.3e", filename, maxRelErr)

	if *plotFile != "" {
		if err := writeSweepPlot(*plotFile, sp.Name, *saturation, simPts, theoryPts); err != nil {
			log.Fatalf("Could not write plot: %v", err)
		}
		log.Printf("Wrote %s", *plotFile)
	}
}

// solveExcited steps a single resting atom once under one beam of the given
// detuning and intensity, with photon-number fluctuations and recoil kicks
// disabled, and reads back the steady-state excited fraction.
func solveExcited(sp species.Species, detMHz, saturation float64) (float64, error) {
	cloud := atoms.NewCloud(1, sp.MassAMU)
	light := laser.ForTransition(sp.Transition, detMHz, 1)
	beam := &laser.Beam{
		Light: light,
		Profile: laser.FromPeakIntensity(r3.Vec{}, r3.Vec{Z: 1},
			saturation*sp.Transition.SaturationIntensity, 5e-3),
	}

	off := false
	eng, err := engine.New(engine.Config{
		Cloud:        cloud,
		Transition:   sp.Transition,
		Beams:        []*laser.Beam{beam},
		Fluctuations: &off,
		Emission:     &cooling.EmissionForce{},
		Workers:      1,
	})
	if err != nil {
		return 0, err
	}
	defer eng.Close()

	if err := eng.Step(); err != nil {
		return 0, err
	}
	return eng.Samplers().Population[0].Excited, nil
}

// analyticExcited is the closed-form two-level steady state
// (s/2) / (1 + s + 4 (delta/gamma)^2).
func analyticExcited(t species.Transition, detMHz, saturation float64) float64 {
	x := 2.0 * math.Pi * detMHz * 1e6 / t.Gamma
	return (saturation / 2.0) / (1.0 + saturation + 4.0*x*x)
}

func writeSweepPlot(path, name string, saturation float64, sim, theory plotter.XYs) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s excited fraction, s = %g", name, saturation)
	p.X.Label.Text = "Detuning (MHz)"
	p.Y.Label.Text = "Excited fraction"

	simLine, err := plotter.NewLine(sim)
	if err != nil {
		return err
	}
	simLine.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	simLine.Width = vg.Points(1.5)

	theoryLine, err := plotter.NewLine(theory)
	if err != nil {
		return err
	}
	theoryLine.Color = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	theoryLine.Width = vg.Points(1)
	theoryLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(simLine, theoryLine)
	p.Legend.Add("simulated", simLine)
	p.Legend.Add("theory", theoryLine)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func generateRange(start, end, step float64) []float64 {
	if step <= 0 {
		step = 1
	}
	var result []float64
	for v := start; v <= end+1e-9; v += step {
		result = append(result, v)
	}
	return result
}
