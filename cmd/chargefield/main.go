package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/config"
	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/export"
	"github.com/san-kum/chargefield/internal/field"
	"github.com/san-kum/chargefield/internal/metrics"
	"github.com/san-kum/chargefield/internal/observability"
	"github.com/san-kum/chargefield/internal/storage"
	"github.com/san-kum/chargefield/internal/tui"
	"github.com/san-kum/chargefield/internal/viz"
)

var (
	configFile string
	presetName string
	dataDir    string
	logLevel   string
	logFormat  string

	stepSize   float64
	maxSteps   int
	integrator string
	workers    int
	save       bool
	plot       bool

	cols, rows int

	outFile    string
	svgWidth   int
	svgHeight  int
	heatMap    bool
	saturation float64

	theme string

	// scene is resolved once per invocation by the root pre-run hook.
	scene *config.Config
)

var errPointArgs = errors.New("points must be given as x y pairs")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Negative coordinates look like shorthand flags to pflag, so point
// arguments go after "--" when the first one is negative.
const pointExample = `  chargefield --preset dipole probe 0.5 0.5
  chargefield --preset dipole probe -- -1 0.25
  chargefield --preset dipole trace -- -0.5 0.5 1.5 0`

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chargefield",
		Short:         "electrostatic field sampling and equipotential tracing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScene(cmd)
			if err != nil {
				return err
			}
			scene = cfg
			observability.InitializeLogger(cfg.Log)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if strings.Contains(err.Error(), "unknown shorthand flag") {
			return fmt.Errorf("%w (put negative coordinates after --)", err)
		}
		return err
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "scene file (yaml)")
	pf.StringVar(&presetName, "preset", "", "built-in scene, see `presets`")
	pf.StringVar(&dataDir, "data", ".chargefield", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "console", "console or json")

	probeCmd := &cobra.Command{
		Use:     "probe [x] [y]",
		Short:   "potential and field at a point",
		Example: pointExample,
		Args:    cobra.ExactArgs(2),
		RunE:    runProbe,
	}

	traceCmd := &cobra.Command{
		Use:     "trace [x y ...]",
		Short:   "trace equipotentials through seeds (scene seeds if none given)",
		Example: pointExample,
		RunE:    runTrace,
	}
	addTracerFlags(traceCmd)
	traceCmd.Flags().IntVar(&workers, "workers", 0, "parallel tracers (0 = GOMAXPROCS)")
	traceCmd.Flags().BoolVar(&save, "save", false, "store the run under --data")
	traceCmd.Flags().BoolVar(&plot, "plot", true, "plot potential drift along each line")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "sample the potential on a lattice",
		RunE:  runGrid,
	}
	gridCmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "lattice columns")
	gridCmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "lattice rows")

	svgCmd := &cobra.Command{
		Use:     "svg [x y ...]",
		Short:   "render traced lines to svg",
		Example: pointExample,
		RunE:    runSVG,
	}
	addTracerFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "chargefield.svg", "output path")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")
	svgCmd.Flags().BoolVar(&heatMap, "heat", true, "draw potential heat map")
	svgCmd.Flags().Float64Var(&saturation, "saturation", 20, "potential drawn at full color")
	svgCmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "heat map columns")
	svgCmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "heat map rows")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHARGES\tSEEDS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\n", name, len(p.Charges), len(p.Seeds))
			}
			return w.Flush()
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeField.Name, "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	rootCmd.AddCommand(probeCmd, traceCmd, gridCmd, svgCmd, listCmd, showCmd, presetsCmd, liveCmd)
	return rootCmd
}

func addTracerFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&stepSize, "step", config.DefaultStepSize, "arc length per step")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step cap per direction")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "euler or rk4")
}

// loadScene starts from defaults, then the preset, then the config file.
// Flags only override what the user set explicitly.
func loadScene(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("step") {
		cfg.Tracer.StepSize = stepSize
	}
	if flags.Changed("max-steps") {
		cfg.Tracer.MaxSteps = maxSteps
	}
	if flags.Changed("integrator") {
		cfg.Tracer.Integrator = integrator
	}
	if flags.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if flags.Changed("rows") {
		cfg.Grid.Rows = rows
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePoints(args []string) ([]r2.Vec, error) {
	if len(args)%2 != 0 {
		return nil, errPointArgs
	}
	pts := make([]r2.Vec, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		x, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad x %q: %w", args[i], err)
		}
		y, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad y %q: %w", args[i+1], err)
		}
		pts = append(pts, r2.Vec{X: x, Y: y})
	}
	return pts, nil
}

func sceneSeeds(args []string) ([]r2.Vec, error) {
	if len(args) == 0 {
		return scene.SeedPoints(), nil
	}
	return parsePoints(args)
}

func runProbe(cmd *cobra.Command, args []string) error {
	pts, err := parsePoints(args)
	if err != nil {
		return err
	}
	p := pts[0]
	charges := scene.ChargeSet().Charges()

	v := field.Potential(charges, p)
	e := field.Field(charges, p)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Title.Render(scene.Name))
	fmt.Fprintln(out, viz.KV("point    ", fmt.Sprintf("(%g, %g)", p.X, p.Y)))
	fmt.Fprintln(out, viz.KV("potential", fmt.Sprintf("%.6g", v)))
	fmt.Fprintln(out, viz.KV("field    ", fmt.Sprintf("(%.6g, %.6g)", e.X, e.Y)))
	fmt.Fprintln(out, viz.KV("|E|      ", fmt.Sprintf("%.6g", r2.Norm(e))))
	return nil
}

func traceScene(seeds []r2.Vec) ([]equipotential.Line, field.Charges, error) {
	log := observability.GetLogger()
	charges := field.Charges(scene.ChargeSet().Charges())

	tracer, err := equipotential.New(charges, scene.TracerConfig(), log)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	lines, err := tracer.TraceParallel(context.Background(), seeds, workers)
	if err != nil {
		return nil, nil, err
	}
	log.Info("traced scene",
		zap.String("scene", scene.Name),
		zap.Int("lines", len(lines)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lines, charges, nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	seeds, err := sceneSeeds(args)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("scene %s has no seeds; pass x y pairs", scene.Name)
	}

	lines, charges, err := traceScene(seeds)
	if err != nil {
		return err
	}

	values := make([]map[string]float64, len(lines))
	for i, l := range lines {
		values[i] = metrics.Evaluate(l, metrics.Default(charges, scene.Tracer.MinField)...)
		printLine(i, l, values[i])
		if plot && !l.Degenerate() {
			fmt.Println(asciigraph.Plot(driftProfile(charges, l),
				asciigraph.Height(6),
				asciigraph.Width(70),
				asciigraph.Caption("potential drift along line"),
			))
			fmt.Println()
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(scene, lines, values)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

var (
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Bold(true)
)

func printLine(i int, l equipotential.Line, values map[string]float64) {
	state := openStyle.Render(l.Forward.String() + "/" + l.Backward.String())
	if l.Closed {
		state = closedStyle.Render("closed")
	}
	fmt.Printf("%s seed (%g, %g)  %s  %s  %s\n",
		viz.Title.Render(fmt.Sprintf("#%d", i)),
		l.Seed.X, l.Seed.Y,
		viz.KV("V", fmt.Sprintf("%.5g", l.Potential)),
		viz.KV("points", fmt.Sprint(len(l.Points))),
		state,
	)
	if l.Degenerate() {
		fmt.Println(viz.Subtle.Render("  field vanishes at seed"))
		return
	}
	fmt.Printf("  %s  %s  %s\n",
		viz.KV("length", fmt.Sprintf("%.4f", values["length"])),
		viz.KV("drift", fmt.Sprintf("%.2e", values["potential_drift"])),
		viz.KV("orthogonality", fmt.Sprintf("%.2e", values["orthogonality"])),
	)
}

func driftProfile(eval field.Evaluator, l equipotential.Line) []float64 {
	out := make([]float64, len(l.Points))
	for i, p := range l.Points {
		out[i] = eval.Potential(p) - l.Potential
	}
	return out
}

// shades run from low to high potential magnitude.
const shades = " .:-=+*#%@"

func runGrid(cmd *cobra.Command, args []string) error {
	set := scene.ChargeSet()
	g, err := field.NewGrid(scene.FieldBounds(), scene.Grid.Cols, scene.Grid.Rows)
	if err != nil {
		return err
	}
	g.Reset(set.Charges())

	lo, hi := g.Range()
	scale := math.Max(math.Abs(lo), math.Abs(hi))
	// Log scale keeps structure visible away from the charges.
	norm := func(v float64) float64 {
		if scale == 0 {
			return 0
		}
		return math.Log1p(math.Abs(v)) / math.Log1p(scale)
	}

	pos := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	neg := lipgloss.NewStyle().Foreground(lipgloss.Color("#4488ff"))

	var b strings.Builder
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			v, _ := g.At(col, row)
			idx := min(int(norm(v)*float64(len(shades)-1)), len(shades)-1)
			ch := string(shades[idx])
			if v < 0 {
				b.WriteString(neg.Render(ch))
			} else {
				b.WriteString(pos.Render(ch))
			}
		}
		b.WriteByte('\n')
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %dx%d", scene.Name, g.Cols(), g.Rows())))
	fmt.Print(viz.Panel.Render(strings.TrimSuffix(b.String(), "\n")))
	fmt.Println()
	fmt.Println(viz.KV("potential range", fmt.Sprintf("%.4g .. %.4g", lo, hi)))
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	seeds, err := sceneSeeds(args)
	if err != nil {
		return err
	}
	lines, charges, err := traceScene(seeds)
	if err != nil {
		return err
	}

	var g *field.Grid
	if heatMap {
		g, err = field.NewGrid(scene.FieldBounds(), scene.Grid.Cols, scene.Grid.Rows)
		if err != nil {
			return err
		}
		g.Reset(charges)
	}

	opts := export.DefaultSVGOptions()
	opts.Width, opts.Height = svgWidth, svgHeight
	opts.Saturation = saturation

	svg := export.LinesToSVG(scene.FieldBounds(), lines, charges, g, opts)
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d lines)\n", outFile, len(lines))
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tCHARGES\tLINES\tSTEP\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Charges),
			len(run.Lines),
			run.StepSize,
			run.Integrator,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	polylines, err := st.LoadLines(runID)
	if err != nil {
		return err
	}

	charges := make(field.Charges, len(meta.Charges))
	for i, c := range meta.Charges {
		charges[i] = charge.Charge{ID: charge.ID(i + 1), Position: r2.Vec{X: c.X, Y: c.Y}, Q: c.Q}
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.KV("scene", meta.Scene))
	fmt.Println(viz.KV("time ", meta.Timestamp.Format(time.RFC3339)))
	fmt.Println()

	for i, lm := range meta.Lines {
		fmt.Printf("%s seed (%g, %g)  %s  %s  %s/%s\n",
			viz.Title.Render(fmt.Sprintf("#%d", i)),
			lm.Seed[0], lm.Seed[1],
			viz.KV("V", fmt.Sprintf("%.5g", lm.Potential)),
			viz.KV("points", fmt.Sprint(lm.Points)),
			lm.Forward, lm.Backward,
		)
		if i >= len(polylines) || len(polylines[i]) < 2 {
			continue
		}
		l := equipotential.Line{Potential: lm.Potential, Points: polylines[i]}
		fmt.Println(asciigraph.Plot(driftProfile(charges, l),
			asciigraph.Height(6),
			asciigraph.Width(70),
			asciigraph.Caption("potential drift along line"),
		))
		fmt.Println()
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.Options{
		Config: scene,
		Logger: observability.GetLogger(),
		Theme:  theme,
	})
}
