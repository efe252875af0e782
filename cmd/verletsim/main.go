package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/verletsim/internal/automation"
	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/export"
	"github.com/san-kum/verletsim/internal/metrics"
	"github.com/san-kum/verletsim/internal/optim"
	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/storage"
	"github.com/san-kum/verletsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	capacity   int
	subSteps   int
	frameDt    float64
	duration   float64
	policy     string
	response   float64
	fillCeil   float64
	interval   float64
	radiusMin  float64
	radiusMax  float64
	// Live view
	frameRate int
	theme     string
	// Ensemble
	numRuns int
	// Export destination, stdout when empty
	outPath string
	noSave  bool
	// SVG output
	svgPath string
	svgSize int
	// Sweep
	sweepParams []string
	sweepMetric string
)

// main registers the verletsim commands and exits 1 if the selected
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "verletsim",
		Short:        "verlet particle container simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verletsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store its diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the run")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final frame as svg")
	runCmd.Flags().IntVar(&svgSize, "svg-size", 900, "svg width and height in pixels")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "target frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot fill, population and contacts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the fill curve as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame throughput across sub-step counts and capacities",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	addSimFlags(benchCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several seeds in parallel and compare them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search solver parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", []string{"sub_steps=1,4,8", "response=0.5,0.75,1"}, "name=v1,v2,... ("+strings.Join(optim.Params, ", ")+")")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_overlap", "metric to minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario and store the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the runs")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, benchCmd, ensembleCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	f.Int64Var(&seed, "seed", def.Seed, "random seed")
	f.IntVar(&capacity, "capacity", def.Capacity, "maximum number of particles")
	f.IntVar(&subSteps, "substeps", def.SubSteps, "sub-steps per frame")
	f.Float64Var(&frameDt, "dt", def.FrameDt, "frame timestep")
	f.Float64Var(&duration, "time", def.Duration, "duration in seconds")
	f.StringVar(&policy, "policy", def.Collision.Policy, "collision policy (mass, equal)")
	f.Float64Var(&response, "response", def.Collision.Response, "collision response coefficient")
	f.Float64Var(&fillCeil, "fill", def.Spawn.FillCeiling, "fill ceiling in percent")
	f.Float64Var(&interval, "interval", def.Spawn.MinInterval, "minimum seconds between spawns")
	f.Float64Var(&radiusMin, "rmin", def.Spawn.RadiusMin, "minimum spawn radius")
	f.Float64Var(&radiusMax, "rmax", def.Spawn.RadiusMax, "maximum spawn radius")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "canonical"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("substeps") {
		cfg.SubSteps = subSteps
	}
	if flags.Changed("dt") {
		cfg.FrameDt = frameDt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("policy") {
		cfg.Collision.Policy = policy
	}
	if flags.Changed("response") {
		cfg.Collision.Response = response
	}
	if flags.Changed("fill") {
		cfg.Spawn.FillCeiling = fillCeil
	}
	if flags.Changed("interval") {
		cfg.Spawn.MinInterval = interval
	}
	if flags.Changed("rmin") {
		cfg.Spawn.RadiusMin = radiusMin
	}
	if flags.Changed("rmax") {
		cfg.Spawn.RadiusMax = radiusMax
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, name, nil
}

func newSimulator(cfg *config.Config) (*sim.Simulator, sim.Config, error) {
	sc, err := cfg.Sim()
	if err != nil {
		return nil, sc, err
	}
	s, err := sim.New(sc)
	return s, sc, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, sc, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(true) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frames := cfg.Frames()
	fmt.Printf("running %s: %d frames of %.4fs, %d sub-steps, seed %d\n",
		name, frames, cfg.FrameDt, cfg.SubSteps, cfg.Seed)

	start := time.Now()
	result, err := s.RunFrames(ctx, frames, cfg.FrameDt)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frames\t%d\n", result.Final.Frame)
	fmt.Fprintf(w, "active\t%d / %d\n", result.Final.Active, result.Final.Capacity)
	fmt.Fprintf(w, "fill\t%.2f%%\n", result.Final.FillPercent)
	fmt.Fprintf(w, "contacts\t%d\n", result.Final.Contacts)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed.Round(time.Millisecond))
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "%s\t%.4f\n", k, result.Metrics[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if svgPath != "" {
		svg := export.SnapshotSVG(s.Boundary(), result.Particles, svgSize)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nsnapshot: %s\n", svgPath)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg.FrameDt, sc, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, _, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.FPS = frameRate
	opts.Theme = theme
	return viz.Run(s, name, opts)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tSUBSTEPS\tPOLICY\tACTIVE\tFILL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s %.2f\t%d/%d\t%.1f%%\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.SubSteps,
			run.Policy,
			run.Response,
			run.Final.Active,
			run.Capacity,
			run.Final.FillPercent,
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
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(sim.Stats) float64
	}{
		{"fill % vs frame", func(s sim.Stats) float64 { return s.FillPercent }},
		{"active particles vs frame", func(s sim.Stats) float64 { return float64(s.Active) }},
		{"contacts vs frame", func(s sim.Stats) float64 { return float64(s.Contacts) }},
	}
	for _, sr := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = sr.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" {
		fill := make([]float64, len(frames))
		for i, f := range frames {
			fill[i] = f.FillPercent
		}
		svg := export.SeriesToSVG(fill, 800, 300, "#00ff88")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("fill curve: %s\n", svgPath)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.Export(args[0], os.Stdout)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.Export(args[0], f); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUBSTEPS\tPOLICY\tRADIUS\tFILL\tINTERVAL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s %.2f\t%g-%g\t%.0f%%\t%gs\n",
			name,
			p.SubSteps,
			p.Collision.Policy,
			p.Collision.Response,
			p.Spawn.RadiusMin,
			p.Spawn.RadiusMax,
			p.Spawn.FillCeiling,
			p.Spawn.MinInterval,
		)
	}
	return w.Flush()
}

func benchSolver(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	subs := []int{1, 4, 8}
	caps := []int{250, 500, 1000}
	frames := cfg.Frames()

	fmt.Printf("benchmarking %s: %d frames of %.4fs\n\n", name, frames, cfg.FrameDt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tCAPACITY\tACTIVE\tTIME\tFRAMES/SEC")

	for _, k := range subs {
		for _, c := range caps {
			run := *cfg
			run.SubSteps, run.Capacity = k, c
			s, _, err := newSimulator(&run)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := s.RunFrames(context.Background(), frames, run.FrameDt)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
				k, c, result.Final.Active, elapsed.Round(time.Millisecond),
				float64(frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("ensemble %s: %d runs, seeds %d..%d\n\n", name, numRuns, cfg.Seed, cfg.Seed+int64(numRuns)-1)
	results, err := sim.NewEnsemble(sc, numRuns, cfg.Seed).
		WithMetrics(func() []sim.Metric { return metrics.Default(false) }).
		Run(ctx, cfg.Frames(), cfg.FrameDt)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tACTIVE\tFILL\tCONTACTS\tENERGY\tVIOLATION")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.2f%%\t%.1f\t%.1f\t%.3f\n",
			r.Seed,
			r.Final.Active,
			r.Final.FillPercent,
			r.Metrics["contacts"],
			r.Metrics["kinetic_energy"],
			r.Metrics["boundary_violation"],
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, arg := range sweepParams {
		n, vals, err := parseParam(arg)
		if err != nil {
			return err
		}
		names = append(names, n)
		ranges = append(ranges, vals)
	}

	fmt.Printf("sweeping %s over %v, minimizing %s\n\n", name, names, sweepMetric)
	best, trials, err := optim.NewGridSearch(names, ranges).Search(context.Background(), cfg, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t")+"\tACTIVE\t"+strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[n])
		}
		fmt.Fprintf(w, "%d\t%.4f\n", tr.Final.Active, tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %v -> %.4f\n", best.Params, best.Value)
	return nil
}

// parseParam splits "name=v1,v2" into its name and values.
func parseParam(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2", arg)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in --param %q: %w", arg, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = automation.RunScenario(ctx, sc, func(i int, r automation.StepResult) error {
		fmt.Printf("step %d/%d %s: %d active, %.2f%% fill\n",
			i+1, len(sc.Steps), r.Name, r.Result.Final.Active, r.Result.Final.FillPercent)
		if st == nil {
			return nil
		}
		runID, err := st.Save(r.Name, r.Config.FrameDt, r.Sim, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  saved: %s\n", runID)
		return nil
	})
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
