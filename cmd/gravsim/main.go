package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	// Overrides applied on top of a preset or config file
	steps       int
	g           float64
	sampleEvery int
	interval    time.Duration
	name        string
	theme       string
	// Analysis
	pairI int
	pairJ int
	// SVG export
	outFile   string
	svgWidth  int
	svgHeight int
	// init
	initPreset string
	// sweep
	gMin   float64
	gMax   float64
	points int
	// monte carlo
	perturbation float64
	trials       int
	seed         int64
	// bench
	benchBodies []int
	benchSteps  int
)

const defaultSource = "planets"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "2d gravitational n-body simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the live view of the classic four-body system
			return runLive(cmd, []string{defaultSource})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset|config.yaml]",
		Short: "run a headless simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addOverrideFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "", "run name")

	liveCmd := &cobra.Command{
		Use:   "live [preset|config.yaml]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addOverrideFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", config.DefaultInterval, "time between steps")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeSpace.Name, fmt.Sprintf("color theme (%s)", strings.Join(viz.ThemeNames(), ", ")))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period from the separation spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&pairI, "i", 0, "first body")
	analyzeCmd.Flags().IntVar(&pairJ, "j", 1, "second body")

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

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter config file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", defaultSource, "preset to start from")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every simulation in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset|config.yaml]",
		Short: "sweep the gravitational constant",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&gMin, "g-min", 0.25, "smallest G")
	sweepCmd.Flags().Float64Var(&gMax, "g-max", 1.0, "largest G")
	sweepCmd.Flags().IntVar(&points, "points", 4, "number of G values")
	sweepCmd.Flags().IntVar(&steps, "steps", 0, "steps per run (0 keeps the source value)")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset|config.yaml]",
		Short: "perturb initial velocities and count stable outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "max velocity change per axis")
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().IntVar(&steps, "steps", 0, "steps per trial (0 keeps the source value)")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput for growing body counts",
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchBodies, "bodies", []int{4, 64, 256, 1024}, "body counts")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per size")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initCmd, batchCmd, sweepCmd, mcCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&g, "g", dynamo.DefaultG, "gravitational constant")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record every nth step")
}

// loadConfig resolves the source and applies any flags the user set
// explicitly; unset flags keep the file or preset value.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	source := defaultSource
	if len(args) > 0 {
		source = args[0]
	}
	cfg, err := experiment.Resolve(source)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("g") {
		cfg.G = g
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("interval") {
		cfg.Interval = interval
	}
	if flags.Changed("name") {
		cfg.Name = name
	}
	return cfg, cfg.Validate()
}

// stepsOverride returns --steps when given and 0 otherwise, since several
// commands share the flag variable.
func stepsOverride(cmd *cobra.Command) int {
	if cmd.Flags().Changed("steps") {
		return steps
	}
	return 0
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d bodies, %d steps\n", cfg.Name, len(cfg.Bodies), cfg.Steps)

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	if stepErr := result.Err(); stepErr != nil {
		fmt.Printf("halted: %v\n", stepErr)
	}

	runID, err := st.Save(experiment.Metadata(cfg), result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%v)\n", result.StepsTaken, elapsed.Round(time.Millisecond))
	fmt.Printf("samples: %d\n\n", len(result.Snapshots))
	return printMetrics(result.Metrics)
}

func printMetrics(metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", k, metrics[k])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if theme != "" && !slices.Contains(viz.ThemeNames(), theme) {
		return fmt.Errorf("unknown theme: %s (available: %v)", theme, viz.ThemeNames())
	}

	m, err := viz.NewModel(cfg)
	if err != nil {
		return err
	}
	m = m.WithTheme(theme)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		fmt.Printf("halted at step %d: %v\n", fm.Simulation().Steps(), fm.Err())
	}
	return nil
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tBODIES\tSTEPS\tG\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "halted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3g\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Masses),
			run.Steps,
			run.G,
			status,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(snaps) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, snaps, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(snaps))

	center := dynamo.V(meta.Center[0], meta.Center[1])
	maxPlots := 4
	n := len(meta.Masses)
	if n > maxPlots {
		n = maxPlots
	}

	for i := 0; i < n; i++ {
		data := analysis.Series(snaps, func(s dynamo.Snapshot) float64 {
			return s.Bodies[i].Position.Sub(center).Len()
		})
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d distance from center (m=%g)", i, meta.Masses[i])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	energy := analysis.Series(snaps, func(s dynamo.Snapshot) float64 {
		return dynamo.KineticEnergy(s.Bodies) + dynamo.PotentialEnergy(s.Bodies, meta.G)
	})
	if finite(energy) {
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		))
	}

	return nil
}

func finite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// uniform drops samples off the sampling grid, such as the final state of
// a run whose length is not a multiple of the sample interval.
func uniform(snaps []dynamo.Snapshot, every int) []dynamo.Snapshot {
	if every < 1 {
		return snaps
	}
	out := make([]dynamo.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Step%every == 0 {
			out = append(out, s)
		}
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if pairI == pairJ || pairI < 0 || pairJ < 0 || pairI >= len(meta.Masses) || pairJ >= len(meta.Masses) {
		return fmt.Errorf("invalid body pair %d,%d for %d bodies", pairI, pairJ, len(meta.Masses))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("pair: %d-%d\n\n", pairI, pairJ)

	data := analysis.Separation(uniform(snaps, meta.SampleEvery), pairI, pairJ)
	ps := analysis.PowerSpectrum(data)
	if len(ps) < 4 {
		return fmt.Errorf("not enough samples for analysis")
	}

	graph := asciigraph.Plot(ps[:len(ps)/2],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (separation)"),
	)
	fmt.Println(graph)
	fmt.Println()

	period, ok := analysis.DominantPeriod(data)
	if !ok {
		fmt.Println("no dominant period")
		return nil
	}
	fmt.Printf("dominant period: %.1f steps\n", period*float64(meta.SampleEvery))
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
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, snaps)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	if err := storage.WriteCSV(w, snaps); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoriesToSVG(export.Paths(snaps), meta.Colors, svgWidth, svgHeight)
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tSTEPS\tTOTAL MASS")
	for _, p := range config.ListPresets() {
		cfg := config.GetPreset(p)
		total := 0.0
		for _, b := range cfg.Bodies {
			total += b.Mass
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\n", p, len(cfg.Bodies), cfg.Steps, total)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.GetPreset(initPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s from preset %s\n", path, initPreset)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	outcomes, err := automation.RunScenario(cmd.Context(), scenario, st, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTEPS\tENERGY DRIFT\tSTATUS")
	for _, o := range outcomes {
		status := "ok"
		if o.Result.Err() != nil {
			status = "halted"
		}
		fmt.Fprintf(w, "%s\t%d\t%.3g\t%s\n", o.RunID, o.Result.StepsTaken, o.Result.Metrics["energy_drift"], status)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	results, err := automation.RunSweep(cmd.Context(), &automation.GSweep{
		Source:   args[0],
		GMin:     gMin,
		GMax:     gMax,
		NumSteps: points,
		Steps:    stepsOverride(cmd),
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "G\tSTEPS\tBOUND\tMIN SEP\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "halted"
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.3f\t%.3g\t%s\n", r.G, r.StepsTaken, r.Metrics["bound_fraction"], r.Metrics["min_separation"], status)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Source:       args[0],
		Perturbation: perturbation,
		NumTrials:    trials,
		Steps:        stepsOverride(cmd),
		Seed:         seed,
	}, os.Stdout)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d\nunstable: %d\n", stable, unstable)
	if len(results) > 0 {
		fmt.Printf("stable fraction: %.2f\n", float64(stable)/float64(len(results)))
	}
	return nil
}

// ring places n equal bodies on a circle with enough tangential speed to
// keep them from collapsing straight in.
func ring(n int) []dynamo.BodySpec {
	specs := make([]dynamo.BodySpec, n)
	radius := 50.0 * float64(n)
	for i := range specs {
		a := 2 * math.Pi * float64(i) / float64(n)
		specs[i] = dynamo.BodySpec{
			Mass:     10,
			Position: dynamo.V(radius*math.Cos(a), radius*math.Sin(a)),
			Velocity: dynamo.V(-math.Sin(a), math.Cos(a)).Scale(0.5),
		}
	}
	return specs
}

func runBench(cmd *cobra.Command, args []string) error {
	fmt.Printf("benchmarking %d steps per size\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tMODE\tTIME\tSTEPS/SEC")

	for _, n := range benchBodies {
		for _, parallel := range []bool{false, true} {
			cfg := dynamo.DefaultConfig()
			mode := "parallel"
			if !parallel {
				cfg.ParallelThreshold = 0
				mode = "serial"
			} else if n < cfg.ParallelThreshold {
				continue
			}

			sim, err := dynamo.New(ring(n), cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < benchSteps; i++ {
				if err := sim.Step(); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%v\t%.0f\n", n, mode, elapsed.Round(time.Microsecond), float64(benchSteps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
