package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/config"
	"github.com/san-kum/chargefield/internal/equipotential"
)

var (
	ErrCorruptRun = errors.New("storage: corrupt run data")
	ErrBadRunID   = errors.New("storage: run id must be a plain directory name")
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type LineMetadata struct {
	Seed      [2]float64         `json:"seed"`
	Potential float64            `json:"potential"`
	Points    int                `json:"points"`
	Closed    bool               `json:"closed"`
	Forward   string             `json:"forward"`
	Backward  string             `json:"backward"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

type RunMetadata struct {
	ID         string                `json:"id"`
	Scene      string                `json:"scene"`
	Timestamp  time.Time             `json:"timestamp"`
	Charges    []config.ChargeConfig `json:"charges"`
	StepSize   float64               `json:"step_size"`
	Integrator string                `json:"integrator"`
	Lines      []LineMetadata        `json:"lines"`
}

// Save writes metadata.json and lines.csv under a fresh run directory.
// metrics may be nil or hold one map per line.
func (s *Store) Save(cfg *config.Config, lines []equipotential.Line, metrics []map[string]float64) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", slug(cfg.Name), ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Name,
		Timestamp:  ts,
		Charges:    cfg.Charges,
		StepSize:   cfg.Tracer.StepSize,
		Integrator: cfg.Tracer.Integrator,
		Lines:      make([]LineMetadata, len(lines)),
	}
	for i, l := range lines {
		meta.Lines[i] = LineMetadata{
			Seed:      [2]float64{l.Seed.X, l.Seed.Y},
			Potential: l.Potential,
			Points:    len(l.Points),
			Closed:    l.Closed,
			Forward:   l.Forward.String(),
			Backward:  l.Backward.String(),
		}
		if i < len(metrics) {
			meta.Lines[i].Metrics = metrics[i]
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeLines(filepath.Join(runDir, "lines.csv"), lines); err != nil {
		return "", err
	}
	return runID, nil
}

// slug reduces a scene name to characters safe in a single path element.
func slug(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-_")
	if out == "" {
		return "scene"
	}
	return out
}

func checkRunID(runID string) error {
	if runID == "" || runID == "." || runID == ".." || runID != filepath.Base(runID) {
		return fmt.Errorf("%w: %q", ErrBadRunID, runID)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(path string, lines []equipotential.Line) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"line", "x", "y"}); err != nil {
		return err
	}
	for i, l := range lines {
		idx := strconv.Itoa(i)
		for _, p := range l.Points {
			row := []string{
				idx,
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}
	return &meta, nil
}

// LoadLines reads back the polylines of a run, indexed like metadata.Lines.
func (s *Store) LoadLines(runID string) ([][]r2.Vec, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "lines.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
	}

	lines := make([][]r2.Vec, len(meta.Lines))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrCorruptRun, i, len(rec))
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil || idx < 0 || idx >= len(lines) {
			return nil, fmt.Errorf("%w: row %d has bad line index %q", ErrCorruptRun, i, rec[0])
		}
		x, errX := strconv.ParseFloat(rec[1], 64)
		y, errY := strconv.ParseFloat(rec[2], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: row %d has bad coordinates", ErrCorruptRun, i)
		}
		lines[idx] = append(lines[idx], r2.Vec{X: x, Y: y})
	}
	return lines, nil
}
