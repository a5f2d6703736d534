package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/automation"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/reporters"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	log      = zerolog.Nop()

	configFile  string
	preset      string
	integrator  string
	temperature float64
	friction    float64
	timestep    float64
	steps       int
	interval    int
	seed        int64
	particles   int
	noMinimize  bool
	quiet       bool
	csvPath     string
	sqlitePath  string
	failFast    bool

	plotSeries []string
	svgPrefix  string
	snapshot   string
	skip       int
	temps      []float64
	replicas   int
	outFile    string
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "mdsim",
		Short:         "langevin molecular dynamics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("MDSIM_DATA", ".mdsim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("MDSIM_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model[/preset]]",
		Short: "minimize and run dynamics, then save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "log reports instead of printing a table")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "also write reports to this csv file")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also write reports to this sqlite database")
	runCmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort on the first reporter error")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final positions to this svg file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energies and temperature of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSeries, "series", []string{"total", "temperature"}, "series to plot (potential, kinetic, total, temperature)")
	plotCmd.Flags().StringVar(&svgPrefix, "svg", "", "also write <prefix>_<series>.svg files")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "equipartition check and energy spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&skip, "skip", 10, "reports discarded as equilibration")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model[/preset]]",
		Short: "run with a live terminal dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [model[/preset]]",
		Short: "compare bath and measured temperature over a range of targets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&temps, "temps", []float64{100, 200, 300, 400}, "target temperatures (K)")
	sweepCmd.Flags().IntVar(&skip, "skip", 10, "reports discarded as equilibration")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model[/preset]]",
		Short: "run independent replicas concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&replicas, "replicas", 4, "number of replicas")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario and save every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and reports to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, presetsCmd, liveCmd, sweepCmd, ensembleCmd, scenarioCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogger(w io.Writer) error {
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset of the model")
	cmd.Flags().StringVar(&integrator, "integrator", "langevin", "integrator (langevin, verlet)")
	cmd.Flags().Float64Var(&temperature, "temp", config.DefaultTemperature, "bath temperature (K)")
	cmd.Flags().Float64Var(&friction, "friction", config.DefaultFriction, "friction coefficient (1/ps)")
	cmd.Flags().Float64Var(&timestep, "dt", config.DefaultTimestep, "timestep (ps)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultTotalSteps, "number of steps")
	cmd.Flags().IntVar(&interval, "interval", config.DefaultReportInterval, "steps between reports")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	cmd.Flags().BoolVar(&noMinimize, "no-minimize", false, "skip energy minimization")
}

// resolveConfig picks the base config from --config, a model/preset argument
// or the defaults, then applies every flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var (
		cfg   *config.Config
		model string
	)

	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, model = c, c.ForceField.Kind
	case len(args) > 0:
		name := preset
		model = args[0]
		if m, p, ok := strings.Cut(args[0], "/"); ok {
			model, name = m, p
		}
		if name == "" {
			presets := config.ListPresets(model)
			if len(presets) == 0 {
				return nil, "", fmt.Errorf("no presets for model: %s (available: %v)", model, config.ListModels())
			}
			name = presets[0]
		}
		cfg = config.GetPreset(model, name)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(model))
		}
	default:
		cfg = config.DefaultConfig()
		model = cfg.ForceField.Kind
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("temp") {
		cfg.Temperature = temperature
	}
	if flags.Changed("friction") {
		cfg.Friction = friction
	}
	if flags.Changed("dt") {
		cfg.Timestep = timestep
	}
	if flags.Changed("steps") {
		cfg.TotalSteps = steps
	}
	if flags.Changed("interval") {
		cfg.ReportInterval = interval
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = particles
		cfg.Particles.Masses = nil
	}
	if flags.Changed("no-minimize") {
		cfg.Minimize.Enabled = !noMinimize
	}
	if flags.Lookup("quiet") != nil && flags.Changed("quiet") {
		cfg.Reporters.Console = !quiet
	}
	if flags.Lookup("csv") != nil && flags.Changed("csv") {
		cfg.Reporters.CSV = csvPath
	}
	if flags.Lookup("sqlite") != nil && flags.Changed("sqlite") {
		cfg.Reporters.SQLite = sqlitePath
	}
	if flags.Lookup("fail-fast") != nil && flags.Changed("fail-fast") {
		cfg.Reporters.FailFast = failFast
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, model, nil
}

// sinks closes every reporter that holds a file. Close is safe to call twice.
type sinks []io.Closer

func (s *sinks) Close() error {
	var errs []error
	for _, c := range *s {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	*s = nil
	return errors.Join(errs...)
}

// buildReporters opens the sinks named in the config. The returned function
// closes the ones that hold files.
func buildReporters(cfg *config.Config, runID string, stdout io.Writer) ([]md.Reporter, func() error, error) {
	var (
		reps    []md.Reporter
		closers sinks
	)

	if cfg.Reporters.Console {
		reps = append(reps, reporters.NewConsole(stdout))
	} else {
		reps = append(reps, reporters.NewLog(log, zerolog.InfoLevel))
	}
	if cfg.Reporters.CSV != "" {
		w, err := reporters.CreateCSV(cfg.Reporters.CSV)
		if err != nil {
			return nil, nil, err
		}
		reps = append(reps, w)
		closers = append(closers, w)
	}
	if cfg.Reporters.SQLite != "" {
		db, err := reporters.OpenSQLite(cfg.Reporters.SQLite, runID)
		if err != nil {
			return nil, nil, errors.Join(err, closers.Close())
		}
		reps = append(reps, db)
		closers = append(closers, db)
	}
	return reps, closers.Close, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, model, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runID := storage.NewRunID(model)
	reps, closeReporters, err := buildReporters(cfg, runID, out)
	if err != nil {
		return err
	}
	defer closeReporters()

	exp := experiment.New(cfg).WithLogger(log)
	if err := exp.Setup(reps...); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(out, "running %s (%d particles, %s)...\n", model, cfg.NumParticles(), cfg.Integrator)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	if err := closeReporters(); err != nil {
		log.Warn().Err(err).Msg("closing reporters")
	}

	if _, err := st.SaveRun(runID, model, cfg, result, runErr); err != nil {
		return err
	}

	if snapshot != "" {
		if err := writeSnapshot(exp.GetSimulation(), snapshot); err != nil {
			return err
		}
	}

	if m := exp.Minimized(); m != nil {
		fmt.Fprintf(out, "minimized: %.4f -> %.4f kJ/mol in %d iterations (max force %.3g)\n",
			m.InitialEnergy, m.FinalEnergy, m.Iterations, m.MaxForce)
	}
	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	if result != nil {
		fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
		printMetrics(out, result.Metrics)
	}

	return runErr
}

func writeSnapshot(s *sim.Simulation, path string) error {
	state := s.Integrator().State()
	var box [3]md.Vec3
	if b, ok := s.Integrator().Evaluator().(md.Boxed); ok {
		box = b.Box()
	}
	return os.WriteFile(path, []byte(export.PositionsSVG(state.Positions, box, 600, "#00ccff")), 0644)
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tCREATED\tN\tSTEPS\tTEMP\tINTEG\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1fK\t%s\t%s\n",
			run.ID,
			run.Model,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.StepsTaken,
			run.Temperature,
			run.Integrator,
			run.Status,
		)
	}

	return w.Flush()
}

func seriesOf(reports []md.Report, name string) ([]float64, error) {
	var pick func(md.Report) float64
	switch name {
	case "potential":
		pick = func(r md.Report) float64 { return r.PotentialEnergy }
	case "kinetic":
		pick = func(r md.Report) float64 { return r.KineticEnergy }
	case "total":
		pick = func(r md.Report) float64 { return r.TotalEnergy }
	case "temperature":
		pick = func(r md.Report) float64 { return r.Temperature }
	default:
		return nil, fmt.Errorf("unknown series %q", name)
	}

	data := make([]float64, len(reports))
	for i, r := range reports {
		data[i] = pick(r)
	}
	return data, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	reports, err := st.LoadReports(runID)
	if err != nil {
		return err
	}
	if len(reports) < 2 {
		return fmt.Errorf("not enough data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "model: %s (%s, %.1fK)\n", meta.Model, meta.Integrator, meta.Temperature)
	fmt.Fprintf(out, "reports: %d\n\n", len(reports))

	for _, name := range plotSeries {
		data, err := seriesOf(reports, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs report"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)

		if svgPrefix != "" {
			path := fmt.Sprintf("%s_%s.svg", svgPrefix, name)
			if err := os.WriteFile(path, []byte(export.SeriesSVG(data, 800, 300, "#00ff88")), 0644); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)
		}
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
	reports, err := st.LoadReports(runID)
	if err != nil {
		return err
	}
	if len(reports) < 4 {
		return fmt.Errorf("not enough reports to analyze")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "model: %s\n\n", meta.Model)

	if skip >= len(reports) {
		skip = len(reports) / 2
	}
	eq, err := analysis.Equipartition(reports, meta.Temperature, skip)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "temperature: %.2f ± %.2f K (target %.1f K, deviation %.2f%%, %d samples)\n",
		eq.Mean, eq.StdErr, eq.Target, 100*eq.RelativeDeviation, eq.Samples)

	potential, _ := seriesOf(reports[skip:], "potential")
	total, _ := seriesOf(reports[skip:], "total")
	sampleDt := reports[1].Time - reports[0].Time

	tau := analysis.CorrelationTime(potential, len(potential)/2)
	fmt.Fprintf(out, "potential energy correlation time: %.2f reports (%.4f ps)\n", tau, tau*sampleDt)

	drift := 0.0
	if len(total) > 1 {
		drift = total[len(total)-1] - total[0]
	}
	fmt.Fprintf(out, "total energy change: %.4g kJ/mol\n\n", drift)

	ps := analysis.PowerSpectrum(potential)
	if len(ps) > 2 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (potential energy)"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	if freq := analysis.DominantFrequency(potential, sampleDt); freq > 0 {
		fmt.Fprintf(out, "dominant frequency: %.3f 1/ps\n", freq)
		fmt.Fprintf(out, "period: %.3f ps\n", 1.0/freq)
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	models := config.ListModels()
	if len(args) > 0 {
		models = args
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", model)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", model)
		for _, p := range presets {
			cfg := config.GetPreset(model, p)
			fmt.Fprintf(out, "  %-10s %4d particles  %6.1fK  %s\n", p, cfg.NumParticles(), cfg.Temperature, cfg.Integrator)
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, model, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	// the dashboard owns the terminal
	cfg.Reporters.Console = false
	exp := experiment.New(cfg).WithLogger(zerolog.Nop())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	s := exp.GetSimulation()
	if cfg.Minimize.Enabled {
		if _, err := s.Minimize(ctx, cfg.Minimize.MaxIterations, cfg.Minimize.Tolerance); err != nil {
			return err
		}
	}

	title := fmt.Sprintf("%s · %d particles · %.0fK", model, cfg.NumParticles(), cfg.Temperature)
	result, runErr := viz.Run(ctx, s, title, cfg.TotalSteps, cfg.ReportInterval, tea.WithAltScreen())

	runID, err := st.Save(model, cfg, result, runErr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run id: %s (%s)\n", runID, storage.Status(result, runErr))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, model, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Reporters.Console = false

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %s over %v K\n\n", model, temps)

	results, err := automation.RunTemperatureSweep(ctx, &automation.TemperatureSweep{
		Base:         cfg,
		Temperatures: temps,
		Skip:         skip,
	}, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tMEASURED\tSTDERR\tDEVIATION")
	for _, r := range results {
		fmt.Fprintf(w, "%.1fK\t%.2fK\t%.2fK\t%.2f%%\n", r.Target, r.Mean, r.StdErr, 100*r.RelativeDeviation)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, model, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %d replicas of %s...\n\n", replicas, model)

	start := time.Now()
	results, runErr := automation.RunEnsemble(ctx, cfg, experiment.NewRegistry(), replicas)
	if results == nil {
		return runErr
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMEAN TEMP\tFINAL ENERGY\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.2fK\t%.4f\t%v\n", r.Seed, r.MeanTemperature, r.FinalEnergy, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.EnsembleStats(results)
	fmt.Fprintf(out, "\nstable: %d, unstable: %d, elapsed: %v\n", stable, unstable, time.Since(start))
	return runErr
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Fprintf(out, "%s\n", scenario.Description)
	}

	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), log)
	for _, r := range results {
		runID, err := st.Save(strings.ReplaceAll(r.Name, "/", "-"), r.Config, r.Result, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-20s %s (%d steps)\n", r.Name, runID, r.Result.StepsTaken)
	}
	return runErr
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if outFile == "" {
		return st.ExportJSON(args[0], cmd.OutOrStdout())
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(args[0], f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
