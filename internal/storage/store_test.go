package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/config"
	"github.com/san-kum/chargefield/internal/equipotential"
)

func sampleLines() []equipotential.Line {
	return []equipotential.Line{
		{
			Seed:      r2.Vec{X: 1},
			Potential: 9,
			Points:    []r2.Vec{{X: 1}, {X: 0.5, Y: 0.8660254037844386}, {X: 1}},
			Closed:    true,
			Forward:   equipotential.Closed,
			Backward:  equipotential.Closed,
		},
		{
			Seed:     r2.Vec{},
			Points:   []r2.Vec{{}},
			Forward:  equipotential.Degenerate,
			Backward: equipotential.Degenerate,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.GetPreset("single")
	metrics := []map[string]float64{{"length": 2}}

	runID, err := st.Save(cfg, sampleLines(), metrics)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "single", meta.Scene)
	assert.Equal(t, "rk4", meta.Integrator)
	require.Len(t, meta.Lines, 2)
	assert.Equal(t, 3, meta.Lines[0].Points)
	assert.Equal(t, "closed", meta.Lines[0].Forward)
	assert.Equal(t, 2.0, meta.Lines[0].Metrics["length"])
	assert.Nil(t, meta.Lines[1].Metrics)

	lines, err := st.LoadLines(runID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, sampleLines()[0].Points, lines[0])
	assert.Equal(t, []r2.Vec{{}}, lines[1])
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	st.now = func() time.Time {
		calls++
		return base.Add(-time.Duration(calls) * time.Minute)
	}

	first, err := st.Save(config.GetPreset("single"), sampleLines(), nil)
	require.NoError(t, err)
	second, err := st.Save(config.GetPreset("dipole"), sampleLines(), nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(config.GetPreset("single"), sampleLines(), nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "lines.csv"))
}

func TestLoadLinesCorrupt(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(config.GetPreset("single"), sampleLines(), nil)
	require.NoError(t, err)

	csvPath := filepath.Join(dir, runID, "lines.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("line,x,y\n7,1,2\n"), 0644))

	_, err = st.LoadLines(runID)
	assert.ErrorIs(t, err, ErrCorruptRun)
}

func TestSaveKeepsRunInsideBaseDir(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "data")
	st := New(base)
	require.NoError(t, st.Init())

	tests := []struct {
		name string
		want string
	}{
		{"../x", "x"},
		{"..", "scene"},
		{"a/b/../../../escape", "escape"},
		{"my scene!", "my-scene"},
		{"", "scene"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetPreset("single")
			cfg.Name = tt.name

			runID, err := st.Save(cfg, sampleLines(), nil)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(runID, tt.want+"_"), "run id %q", runID)
			assert.Equal(t, filepath.Base(runID), runID)

			_, err = os.Stat(filepath.Join(base, runID, "metadata.json"))
			require.NoError(t, err)

			meta, err := st.Load(runID)
			require.NoError(t, err)
			assert.Equal(t, tt.name, meta.Scene)
		})
	}

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing written next to the data dir")
}

func TestLoadRejectsPathRunID(t *testing.T) {
	st := New(t.TempDir())

	for _, id := range []string{"", "..", "../other", "a/b"} {
		_, err := st.Load(id)
		assert.ErrorIs(t, err, ErrBadRunID, "run id %q", id)
	}
}
