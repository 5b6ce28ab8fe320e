package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/integrators"
	"github.com/san-kum/rklab/internal/metrics"
	"gonum.org/v1/gonum/mat"
)

func sampleSeries(t *testing.T) []Series {
	t.Helper()
	times := []float64{0, 0.5, 1}

	euler, err := dynamo.FromStates(times, []dynamo.State{{0, 1}, {0.5, 1}, {1, 0.75}})
	if err != nil {
		t.Fatal(err)
	}
	mid, err := dynamo.FromStates(times, []dynamo.State{{0, 1}, {0.5, 0.875}, {0.1 + 0.2, 0.7}})
	if err != nil {
		t.Fatal(err)
	}
	return []Series{{Method: "euler", Trajectory: euler}, {Method: "midpoint", Trajectory: mid}}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	series := sampleSeries(t)
	meta := RunMetadata{
		Problem:   "harmonic",
		T0:        0,
		Tf:        1,
		InitState: []float64{0, 1},
		Baseline:  "exact",
		Errors: map[string]metrics.Summary{
			"euler": {MaxAbs: 0.2, Final: 0.15, RMS: 0.1},
		},
	}

	runID, err := st.Save(meta, series)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Problem != "harmonic" || loaded.Points != 3 {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if len(loaded.Methods) != 2 || loaded.Methods[1] != "midpoint" {
		t.Errorf("unexpected methods %v", loaded.Methods)
	}
	if loaded.Errors["euler"].Final != 0.15 {
		t.Errorf("expected final error 0.15, got %f", loaded.Errors["euler"].Final)
	}

	back, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 series, got %d", len(back))
	}
	for i := range series {
		if back[i].Method != series[i].Method {
			t.Errorf("series %d: expected %s, got %s", i, series[i].Method, back[i].Method)
		}
		if !mat.Equal(back[i].Trajectory.Matrix(), series[i].Trajectory.Matrix()) {
			t.Errorf("series %s did not round-trip exactly", series[i].Method)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Problem: "harmonic"}, sampleSeries(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{Problem: "damped"}, sampleSeries(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Problem != "harmonic" {
		t.Errorf("expected runs in save order, got %s first", runs[0].Problem)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Problem: "harmonic"}, sampleSeries(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "states.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, runID, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "time,euler.x0,euler.x1,midpoint.x0,midpoint.x1\n"
	if !bytes.HasPrefix(data, []byte(want)) {
		t.Errorf("unexpected header in %q", data)
	}
}

func TestStoreSaveRejectsMismatchedGrids(t *testing.T) {
	series := sampleSeries(t)
	short, _ := dynamo.FromStates([]float64{0}, []dynamo.State{{0, 1}})
	series = append(series, Series{Method: "reference", Trajectory: short})

	if _, err := New(t.TempDir()).Save(RunMetadata{Problem: "harmonic"}, series); err == nil {
		t.Error("expected error for series on different grids")
	}
	if _, err := New(t.TempDir()).Save(RunMetadata{Problem: "harmonic"}, nil); err == nil {
		t.Error("expected error for empty run")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := &RunMetadata{ID: "harmonic_1", Problem: "harmonic", Baseline: "exact"}

	if err := ExportJSON(&buf, meta, sampleSeries(t)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(data.Times) != 3 {
		t.Errorf("expected 3 times, got %d", len(data.Times))
	}
	rows := data.Series["midpoint"]
	if len(rows) != 2 || rows[1][1] == nil || *rows[1][1] != 0.875 {
		t.Errorf("unexpected midpoint rows %v", rows)
	}
}

func TestExportJSONDivergedRun(t *testing.T) {
	// Euler with h=50 on y''=-y multiplies the amplitude by ~50 per step
	// and overflows long before the end of the grid.
	span := dynamo.Span{T0: 0, Tf: 10000}
	traj, err := integrators.SolveEuler(func(t float64, y dynamo.State) dynamo.State {
		return dynamo.State{y[1], -y[0]}
	}, span, dynamo.State{0, 1}, integrators.Linspace(0, 10000, 201))
	if err != nil {
		t.Fatal(err)
	}
	if traj.Final().IsValid() {
		t.Fatalf("expected a diverged run, final state %v", traj.Final())
	}

	st := New(t.TempDir())
	meta := RunMetadata{
		Problem:  "harmonic",
		Baseline: "exact",
		Errors: map[string]metrics.Summary{
			"euler": {MaxAbs: math.Inf(1), Final: math.NaN(), RMS: math.Inf(1)},
		},
	}
	runID, err := st.Save(meta, []Series{{Method: "euler", Trajectory: traj}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, loaded, series); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	rows := data.Series["euler"]
	if len(rows) != 2 || len(rows[0]) != 201 {
		t.Fatalf("unexpected shape %d rows", len(rows))
	}
	if rows[0][1] == nil || *rows[0][1] != 50 {
		t.Errorf("expected y(50) = 50, got %v", rows[0][1])
	}
	if rows[0][200] != nil || rows[1][200] != nil {
		t.Error("expected null for the non-finite final state")
	}
	if _, ok := data.Errors["euler"]; ok {
		t.Error("non-finite error summary should not be exported")
	}
}

func TestWriteCSVFullPrecision(t *testing.T) {
	times := []float64{0, 1e-3}
	traj, err := dynamo.FromStates(times, []dynamo.State{{0}, {1.234567891e-9}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Series{{Method: "euler", Trajectory: traj}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := "time,euler.x0\n0,0\n0.001,1.234567891e-09\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	short, _ := dynamo.FromStates([]float64{0}, []dynamo.State{{0}})
	err = WriteCSV(&bytes.Buffer{}, []Series{{Method: "euler", Trajectory: traj}, {Method: "midpoint", Trajectory: short}})
	if err == nil {
		t.Error("expected error for series on different grids")
	}
	if err := WriteCSV(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for no series")
	}
}

func TestStoreDropsNonFiniteErrors(t *testing.T) {
	st := New(t.TempDir())
	meta := RunMetadata{
		Problem: "harmonic",
		Errors: map[string]metrics.Summary{
			"euler":    {MaxAbs: math.Inf(1), Final: math.NaN(), RMS: math.NaN()},
			"midpoint": {MaxAbs: 0.1, Final: 0.1, RMS: 0.05},
		},
	}

	runID, err := st.Save(meta, sampleSeries(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := loaded.Errors["euler"]; ok {
		t.Error("non-finite summary should not be stored")
	}
	if loaded.Errors["midpoint"].MaxAbs != 0.1 {
		t.Error("finite summary should be stored")
	}
}
