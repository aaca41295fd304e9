// Package tui is the interactive terminal view: charges are moved, added and
// removed with the keyboard while a sampled potential grid follows them
// incrementally and traced equipotentials are redrawn.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/config"
	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
	"github.com/san-kum/chargefield/internal/metrics"
	"github.com/san-kum/chargefield/internal/tracker"
	"github.com/san-kum/chargefield/internal/viz"
)

const frameInterval = 33 * time.Millisecond

type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Theme  string
	// Saturation is the potential magnitude shaded at full color.
	Saturation float64
}

type Model struct {
	cfg    *config.Config
	log    *zap.Logger
	set    *charge.Set
	track  *tracker.Tracker
	grid   *field.Grid
	tracer *equipotential.Tracer
	canvas *viz.Canvas
	theme  viz.Theme
	sat    float64

	seeds    []r2.Vec
	lines    []equipotential.Line
	selected charge.ID
	cursor   r2.Vec
	step     float64

	dirty      bool
	lastDeltas int
	frames     int
	status     string
}

func New(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("tui")

	set := cfg.ChargeSet()
	tracer, err := equipotential.New(field.Live(set), cfg.TracerConfig(), log)
	if err != nil {
		return nil, err
	}
	b := cfg.FieldBounds()
	grid, err := field.NewGrid(b, cfg.Grid.Cols, cfg.Grid.Rows)
	if err != nil {
		return nil, err
	}

	track := tracker.New(log)
	track.Attach(set)

	sat := opts.Saturation
	if sat <= 0 {
		sat = 2 * field.K
	}

	m := &Model{
		cfg:    cfg,
		log:    log,
		set:    set,
		track:  track,
		grid:   grid,
		tracer: tracer,
		canvas: viz.NewCanvas(cfg.Grid.Cols, cfg.Grid.Rows, b),
		theme:  viz.GetTheme(opts.Theme),
		sat:    sat,
		seeds:  cfg.SeedPoints(),
		cursor: b.Center(),
		step:   math.Max(b.Width(), b.Height()) / 50,
		dirty:  true,
	}
	if ids := set.IDs(); len(ids) > 0 {
		m.selected = ids[0]
	}
	m.frame()
	return m, nil
}

// Run blocks until the user quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case tickMsg:
		m.frame()
		return m, tick()
	}
	return m, nil
}

// frame drains pending deltas into the grid and retraces when anything
// changed since the last frame.
func (m *Model) frame() {
	m.frames++
	n := m.grid.Sync(m.track)
	if n > 0 {
		m.lastDeltas = n
		m.dirty = true
	}
	if !m.dirty {
		return
	}
	m.dirty = false

	lines, err := m.tracer.TraceParallel(context.Background(), m.seeds, 0)
	if err != nil {
		m.log.Warn("trace failed", zap.Error(err))
		return
	}
	m.lines = lines
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit

	case "up", "k":
		m.moveSelected(r2.Vec{Y: m.step})
	case "down", "j":
		m.moveSelected(r2.Vec{Y: -m.step})
	case "left", "h":
		m.moveSelected(r2.Vec{X: -m.step})
	case "right", "l":
		m.moveSelected(r2.Vec{X: m.step})

	case "w":
		m.cursor = r2.Add(m.cursor, r2.Vec{Y: m.step})
	case "s":
		m.cursor = r2.Add(m.cursor, r2.Vec{Y: -m.step})
	case "a":
		m.cursor = r2.Add(m.cursor, r2.Vec{X: -m.step})
	case "d":
		m.cursor = r2.Add(m.cursor, r2.Vec{X: m.step})

	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)

	case "+", "=":
		m.selected = m.set.Add(m.cursor, 1)
		m.status = fmt.Sprintf("added %s", m.selected)
	case "-", "_":
		m.selected = m.set.Add(m.cursor, -1)
		m.status = fmt.Sprintf("added %s", m.selected)
	case "x", "delete":
		m.removeSelected()

	case "t", "enter":
		m.seeds = append(m.seeds, m.cursor)
		m.dirty = true
		m.status = fmt.Sprintf("seed %.2f,%.2f", m.cursor.X, m.cursor.Y)
	case "c":
		m.seeds = nil
		m.lines = nil
		m.status = "cleared lines"

	case "r":
		m.track.Rebuild()
		m.grid.Reset(nil)
		m.status = "rebuilt"
	case "T":
		m.theme = viz.NextTheme(m.theme)
		m.status = "theme " + m.theme.Name
	}
	return nil
}

func (m *Model) moveSelected(d r2.Vec) {
	c, ok := m.set.Get(m.selected)
	if !ok {
		m.status = "no charge selected"
		return
	}
	if err := m.set.Move(c.ID, r2.Add(c.Position, d)); err != nil {
		m.log.Debug("move failed", zap.Error(err))
	}
}

func (m *Model) removeSelected() {
	if err := m.set.Remove(m.selected); err != nil {
		m.status = "no charge selected"
		return
	}
	m.status = fmt.Sprintf("removed %s", m.selected)
	m.selected = 0
	if ids := m.set.IDs(); len(ids) > 0 {
		m.selected = ids[len(ids)-1]
	}
}

func (m *Model) cycle(dir int) {
	ids := m.set.IDs()
	if len(ids) == 0 {
		m.selected = 0
		return
	}
	idx := 0
	for i, id := range ids {
		if id == m.selected {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(ids)) % len(ids)
	m.selected = ids[idx]
}

func (m *Model) View() string {
	canvas := m.renderCanvas()
	side := m.renderPanel()
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", side) + "\n" + m.renderHelp()
}

func (m *Model) renderCanvas() string {
	c := m.canvas
	c.Clear()
	for _, l := range m.lines {
		c.DrawPolyline(l.Points)
	}

	kinds := make(map[[2]int]lipgloss.Color)
	for _, ch := range m.set.Charges() {
		glyph, color := '●', m.theme.Positive
		if ch.Q < 0 {
			color = m.theme.Negative
		}
		if ch.ID == m.selected {
			glyph = '◉'
		}
		c.Mark(ch.Position, glyph)
		col, row := c.Cell(ch.Position)
		kinds[[2]int{col, row}] = color
	}
	c.Mark(m.cursor, '✛')
	col, row := c.Cell(m.cursor)
	kinds[[2]int{col, row}] = m.theme.Cursor

	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			style := lipgloss.NewStyle().Foreground(m.theme.Line)
			if color, ok := kinds[[2]int{col, row}]; ok {
				style = style.Foreground(color).Bold(true)
			}
			if m.theme.HeatMap {
				style = style.Background(viz.HeatColor(m.grid.Potential(m.grid.Index(col, row)), m.sat))
			}
			b.WriteString(style.Render(string(c.Rune(col, row))))
		}
		if row < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return viz.Panel.Render(b.String())
}

func (m *Model) renderPanel() string {
	var b strings.Builder
	b.WriteString(viz.GradientText("chargefield", "#00ffff", "#ff00ff"))
	b.WriteString("  " + viz.Subtle.Render(m.cfg.Name) + "\n\n")

	b.WriteString(viz.KV("charges ", fmt.Sprint(m.set.Len())) + "\n")
	if c, ok := m.set.Get(m.selected); ok {
		b.WriteString(viz.KV("selected", fmt.Sprintf("%s q=%+.2f", c.ID, c.Q)) + "\n")
		b.WriteString(viz.KV("        ", fmt.Sprintf("(%.2f, %.2f)", c.Position.X, c.Position.Y)) + "\n")
	} else {
		b.WriteString(viz.KV("selected", "none") + "\n\n")
	}

	charges := m.set.Charges()
	v := field.Potential(charges, m.cursor)
	e := field.Field(charges, m.cursor)
	b.WriteString("\n" + viz.KV("cursor  ", fmt.Sprintf("(%.2f, %.2f)", m.cursor.X, m.cursor.Y)) + "\n")
	b.WriteString(viz.KV("V       ", fmt.Sprintf("%.4g", v)) + "\n")
	b.WriteString(viz.KV("|E|     ", fmt.Sprintf("%.4g", r2.Norm(e))) + "\n")

	lo, hi := m.grid.Range()
	b.WriteString("\n" + viz.KV("grid V  ", fmt.Sprintf("%.3g .. %.3g", lo, hi)) + "\n")
	b.WriteString(viz.KV("deltas  ", fmt.Sprint(m.lastDeltas)) + "\n")
	b.WriteString(viz.KV("lines   ", fmt.Sprint(len(m.lines))) + "\n")

	if len(m.lines) > 0 {
		last := m.lines[len(m.lines)-1]
		b.WriteString(viz.KV("last    ", fmt.Sprintf("%d pts %s/%s", len(last.Points), last.Forward, last.Backward)) + "\n")
		b.WriteString(viz.MetricLabel.Render("drift   ") + viz.Sparkline(m.driftProfile(last), 24) + "\n")
		drift := metrics.Evaluate(last, metrics.NewPotentialDrift(field.Charges(charges)))["potential_drift"]
		b.WriteString(viz.KV("max     ", fmt.Sprintf("%.2e", drift)) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + viz.Warn.Render(m.status))
	}
	return viz.Panel.Width(36).Render(b.String())
}

func (m *Model) driftProfile(l equipotential.Line) []float64 {
	charges := m.set.Charges()
	out := make([]float64, len(l.Points))
	for i, p := range l.Points {
		out[i] = math.Abs(field.Potential(charges, p) - l.Potential)
	}
	return out
}

func (m *Model) renderHelp() string {
	return viz.KeyHint.Render(
		"arrows move charge · tab select · +/- add · x remove · wasd cursor · t trace · c clear · r rebuild · T theme · q quit")
}

// Lines returns the equipotentials currently on screen.
func (m *Model) Lines() []equipotential.Line { return m.lines }

// Grid exposes the incrementally maintained potential samples.
func (m *Model) Grid() *field.Grid { return m.grid }

func (m *Model) Set() *charge.Set { return m.set }

func (m *Model) Selected() charge.ID { return m.selected }

func (m *Model) Cursor() r2.Vec { return m.cursor }

func (m *Model) Pending() int { return m.track.Len() }
