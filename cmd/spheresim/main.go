package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spheresim/internal/analysis"
	"github.com/san-kum/spheresim/internal/automation"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/export"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/scene"
	"github.com/san-kum/spheresim/internal/sim"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/san-kum/spheresim/internal/viz"
	"github.com/spf13/cobra"
)

const maxPlots = 6

var (
	dataDir    string
	dt         float64
	duration   float64
	seed       int64
	numBodies  int
	configFile string
	frameRate  int
	stopOnGoal bool
	outFile    string
	heightFile string
	trackFile  string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	perturb    float64
	phaseBody  int
	xAxis      string
	yAxis      string
)

// main registers the commands and opens the preset menu when no subcommand
// is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "spheresim",
		Short: "sphere physics lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(0, frameRate)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spheresim", "data directory")
	rootCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().BoolVar(&stopOnGoal, "stop-on-goal", false, "end the run when the goal fires")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&phaseBody, "body", 0, "body index")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "y", fmt.Sprintf("field for the x-axis %v", analysis.Fields))
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "field for the y-axis")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "run a scene and write its final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "svg file (default <scene>.svg)")
	snapshotCmd.Flags().StringVar(&heightFile, "height", "", "also plot the first body's height to this svg")
	snapshotCmd.Flags().StringVar(&trackFile, "track", "", "also plot the first body's path seen from above to this svg")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run an automation scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep one physics parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", fmt.Sprintf("parameter %v", automation.SweepParams))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default: scene)")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: scene)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run trials with jittered spawn positions",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "spawn jitter")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: time based)")
	monteCarloCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default: scene)")
	monteCarloCmd.Flags().Float64Var(&duration, "time", 0, "duration (default: scene)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportJSONCmd, exportCSVCmd,
		presetsCmd, benchCmd, snapshotCmd, batchCmd, sweepCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&numBodies, "bodies", 0, "number of random bodies")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// loadScene resolves the scene from --config or a preset name, then applies
// the flags the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) == 1:
		cfg, err = config.GetPreset(args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("give a scene name or --config (presets: %v)", config.ListPresets())
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("bodies") {
		cfg.SetRandomBodies(numBodies)
	}
	return cfg, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s (%d bodies)...\n", cfg.Scene, cfg.TotalBodies())
	start := time.Now()

	result, err := automation.Run(ctx, cfg, stopOnGoal, nil)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted: %v\n", err)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Scene, cfg.Dt, cfg.Duration, cfg.Seed, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.GoalTime >= 0 {
		fmt.Printf("goal: %.2fs\n", result.GoalTime)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	build := func() (*game.Session, error) { return scene.Build(cfg.Clone()) }
	return viz.RunLive(cfg.Scene, build, cfg.Dt, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tBODIES\tGOAL")

	for _, run := range runs {
		goal := "-"
		if run.GoalTime >= 0 {
			goal = fmt.Sprintf("%.2fs", run.GoalTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			goal,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(states))

	for b := 0; b < min(meta.Bodies, maxPlots); b++ {
		data := make([]float64, 0, len(states))
		for _, s := range states {
			if b < s.Bodies() {
				data = append(data, s.Height(b))
			}
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d height", b)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%d samples, dt=%.4f)\n\n", meta.ID, len(states), meta.Dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tBOUNCES\tRESTITUTION\tFREQ\tFINAL_Y")
	for b := 0; b < meta.Bodies; b++ {
		heights := make([]float64, 0, len(states))
		for _, s := range states {
			if b < s.Bodies() {
				heights = append(heights, s.Height(b))
			}
		}
		if len(heights) == 0 {
			continue
		}

		bounces := analysis.Bounces(states, times, b)
		e := "-"
		if v, ok := analysis.Restitution(bounces, 0.5); ok {
			e = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%.3fHz\t%.4f\n",
			b, len(bounces), e, analysis.DominantFrequency(heights, meta.Dt), heights[len(heights)-1])
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	xi, err := analysis.FieldIndex(xAxis)
	if err != nil {
		return err
	}
	yi, err := analysis.FieldIndex(yAxis)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.PhasePortrait(states, phaseBody, xi, yi)
	if portrait == nil || len(portrait.Points) == 0 {
		return fmt.Errorf("no samples for body %d", phaseBody)
	}
	fmt.Printf("body %d: %s vs %s\n\n", phaseBody, yAxis, xAxis)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 80, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	f, err := os.Open(st.StatesPath(args[0]))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDURATION\tPLAYER\tGOAL")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.1fs\t%t\t%t\n",
			name, cfg.TotalBodies(), cfg.Duration, cfg.Player != config.NoPlayer, cfg.Goal != nil)
	}
	return w.Flush()
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	durations := []float64{1.0, 5.0}
	dts := []float64{0.001, 0.01, 0.02}

	fmt.Printf("benchmarking %s (%d bodies)\n\n", base.Scene, base.TotalBodies())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	quiet := log.New(io.Discard, "", 0)
	for _, dur := range durations {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Dt = step
			cfg.Duration = dur

			start := time.Now()
			frames, err := automation.Bench(context.Background(), cfg, quiet)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(frames) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, frames, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	session, err := scene.Build(cfg)
	if err != nil {
		return err
	}
	s := sim.New(session)
	for _, m := range metrics.Standard(cfg.Gravity) {
		s.AddMetric(m)
	}
	simCfg := sim.DefaultConfig()
	simCfg.Dt = cfg.Dt
	simCfg.Duration = cfg.Duration

	ctx, cancel := interruptContext()
	defer cancel()
	result, err := s.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = cfg.Scene + ".svg"
	}
	svg := export.CanvasToSVG(viz.Snapshot(session, 80, 24), 4)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s at t=%.2fs\n", path, session.Time)

	if heightFile != "" {
		plot := export.TrajectoryToSVG(export.HeightSeries(result, 0), 800, 300, "#00ffff")
		if err := os.WriteFile(heightFile, []byte(plot), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", heightFile)
	}
	if trackFile != "" {
		plot := export.TrajectoryToSVG(export.GroundTrack(result, 0), 600, 600, "#ff00ff")
		if err := os.WriteFile(trackFile, []byte(plot), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", trackFile)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	results, err := automation.RunScenario(ctx, scenario, st, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSEED\tSTEPS\tGOAL\tENERGY")
	for _, r := range results {
		goal := "-"
		if r.Result.GoalTime >= 0 {
			goal = fmt.Sprintf("%.2fs", r.Result.GoalTime)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%.4f\n",
			r.Step, r.RunID, r.Seed, r.Result.StepsTaken, goal, r.Result.Metrics["energy"])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Preset:    args[0],
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Dt:        dt,
		Duration:  duration,
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, sweep, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tENERGY_LOSS\tPENETRATION\tRESTING\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%.2f\n",
			r.ParamValue, r.Metrics["energy"], r.Metrics["energy_loss"], r.Metrics["max_penetration"], r.Metrics["resting"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg := &automation.MonteCarloConfig{
		Preset:       args[0],
		Perturbation: perturb,
		NumTrials:    trials,
		Dt:           dt,
		Duration:     duration,
		Seed:         seed,
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("stable: %d\nunstable: %d\n", stable, unstable)
	return nil
}
