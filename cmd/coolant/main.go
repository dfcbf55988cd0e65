// Command coolant runs a laser-cooling scenario: it loads a scenario JSON
// file, steps the engine, persists samples and statistics to sqlite, and
// optionally renders report artifacts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lattice-works/coolant/internal/engine"
	"github.com/lattice-works/coolant/internal/monitoring"
	"github.com/lattice-works/coolant/internal/report"
	"github.com/lattice-works/coolant/internal/runstore"
	"github.com/lattice-works/coolant/internal/scenario"
	"github.com/lattice-works/coolant/internal/version"
)

var (
	configPath  = flag.String("config", "", "Scenario JSON file (required)")
	dbPath      = flag.String("db", "coolant_runs.db", "Run database path")
	htmlPath    = flag.String("html", "", "Write an HTML report to this path")
	pngPath     = flag.String("png", "", "Write a PNG cooling curve to this path")
	quiet       = flag.Bool("quiet", false, "Suppress progress logging")
	showVersion = flag.Bool("version", false, "Print the build version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *configPath == "" {
		log.Fatal("a scenario file is required: coolant -config scenario.json")
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	scn, err := scenario.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	cfg, err := scn.Build()
	if err != nil {
		log.Fatalf("Failed to build scenario: %v", err)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	store, err := runstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgJSON, err := json.Marshal(scn)
	if err != nil {
		log.Fatalf("Failed to encode scenario: %v", err)
	}
	run := &runstore.Run{
		Name:       scn.GetName(),
		Species:    scn.GetSpecies(),
		AtomCount:  cfg.Cloud.Len(),
		BeamCount:  len(cfg.Beams),
		Timestep:   cfg.Timestep,
		Steps:      uint64(scn.GetSteps()),
		Seed:       scn.GetSeed(),
		ConfigJSON: string(cfgJSON),
	}
	if err := store.CreateRun(run); err != nil {
		log.Fatalf("Failed to create run: %v", err)
	}
	monitoring.Logf("run %s started", run.ID)

	if err := simulate(ctx, eng, store, run.ID, scn.GetSteps(), scn.GetSampleEvery()); err != nil {
		log.Fatalf("Run %s failed: %v", run.ID, err)
	}

	if err := store.FinishRun(run.ID); err != nil {
		log.Fatalf("Failed to finish run: %v", err)
	}

	snap := eng.Snapshot()
	monitoring.Logf("run %s finished: T = %.1f uK, %d of %d atoms dark",
		run.ID, snap.Temperature*1e6, snap.Dark, snap.Atoms)

	if *htmlPath == "" && *pngPath == "" {
		return
	}

	stats, err := store.StepStats(run.ID)
	if err != nil {
		log.Fatalf("Failed to read run statistics: %v", err)
	}

	// Artifacts are independent of each other, so render them concurrently.
	var g errgroup.Group
	if *htmlPath != "" {
		g.Go(func() error { return report.WriteHTML(*htmlPath, *run, stats) })
	}
	if *pngPath != "" {
		g.Go(func() error { return report.WritePNG(*pngPath, scn.GetName(), stats) })
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if *htmlPath != "" {
		monitoring.Logf("wrote %s", *htmlPath)
	}
	if *pngPath != "" {
		monitoring.Logf("wrote %s", *pngPath)
	}
}

// simulate steps the engine to completion, recording cloud samples and
// aggregate statistics every sampleEvery steps (and at the start and end).
func simulate(ctx context.Context, eng *engine.Engine, store *runstore.Store, runID string, steps, sampleEvery int) error {
	if err := record(store, runID, eng); err != nil {
		return err
	}

	start := time.Now()
	for s := 1; s <= steps; s++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("interrupted after %d of %d steps: %w", s-1, steps, ctx.Err())
		default:
		}

		if err := eng.Step(); err != nil {
			return err
		}
		if s%sampleEvery == 0 || s == steps {
			if err := record(store, runID, eng); err != nil {
				return err
			}
		}
	}
	monitoring.Logf("completed %d steps in %s", steps, time.Since(start).Round(time.Millisecond))
	return nil
}

func record(store *runstore.Store, runID string, eng *engine.Engine) error {
	snap := eng.Snapshot()
	if err := store.RecordStats(runID, snap); err != nil {
		return err
	}
	return store.RecordSamples(runID, snap.Step, eng.Cloud())
}
