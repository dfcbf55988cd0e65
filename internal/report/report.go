// Package report renders run artifacts from stored statistics: an
// interactive HTML page of line charts and a static PNG cooling curve.
package report

import (
	"fmt"
	"image/color"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lattice-works/coolant/internal/runstore"
)

// WriteHTML renders the run's recorded statistics as a page of line charts:
// temperature, mean and RMS speed, photons scattered per atom, and the dark
// atom count, each against simulated time.
func WriteHTML(path string, run runstore.Run, stats []runstore.StepStat) error {
	if len(stats) == 0 {
		return fmt.Errorf("html report: run %s has no recorded statistics", run.ID)
	}

	x := timeAxis(stats)
	subtitle := fmt.Sprintf("%s, %d atoms, %d beams, seed %d",
		run.Species, run.AtomCount, run.BeamCount, run.Seed)

	temperature := newLine("Cloud Temperature", subtitle, "T (uK)")
	temperature.SetXAxis(x).
		AddSeries("temperature", series(stats, func(st runstore.StepStat) float64 {
			return st.TemperatureUK
		}), charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	speed := newLine("Cloud Speed", "mean and RMS over all atoms", "v (m/s)")
	speed.SetXAxis(x).
		AddSeries("mean", series(stats, func(st runstore.StepStat) float64 {
			return st.MeanSpeed
		})).
		AddSeries("rms", series(stats, func(st runstore.StepStat) float64 {
			return st.RMSSpeed
		}))

	scattered := newLine("Scattering", "photons per atom in the sampled step", "photons")
	scattered.SetXAxis(x).
		AddSeries("scattered", series(stats, func(st runstore.StepStat) float64 {
			return st.MeanScattered
		}))

	dark := newLine("Dark Atoms", "atoms pumped into the dark state", "atoms")
	dark.SetXAxis(x).
		AddSeries("dark", series(stats, func(st runstore.StepStat) float64 {
			return float64(st.DarkCount)
		}))

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("coolant run: %s", run.Name)
	page.AddCharts(temperature, speed, scattered, dark)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("html report: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render html report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("html report: %w", err)
	}
	return nil
}

func newLine(title, subtitle, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (ms)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

func timeAxis(stats []runstore.StepStat) []string {
	x := make([]string, len(stats))
	for i, st := range stats {
		x[i] = strconv.FormatFloat(st.Time*1e3, 'f', 3, 64)
	}
	return x
}

func series(stats []runstore.StepStat, value func(runstore.StepStat) float64) []opts.LineData {
	data := make([]opts.LineData, len(stats))
	for i, st := range stats {
		data[i] = opts.LineData{Value: value(st)}
	}
	return data
}

// WritePNG renders the cooling curve (temperature against simulated time) as
// a static image. The output format follows the file extension, so .png and
// .pdf both work.
func WritePNG(path, title string, stats []runstore.StepStat) error {
	if len(stats) == 0 {
		return fmt.Errorf("cooling curve: no recorded statistics")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (ms)"
	p.Y.Label.Text = "T (uK)"

	pts := make(plotter.XYs, len(stats))
	for i, st := range stats {
		pts[i] = plotter.XY{X: st.Time * 1e3, Y: st.TemperatureUK}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("cooling curve: %w", err)
	}
	line.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	line.Width = vg.Points(1.5)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save cooling curve: %w", err)
	}
	return nil
}
