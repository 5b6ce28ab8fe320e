package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                     `json:"id"`
	Problem   string                     `json:"problem"`
	Timestamp time.Time                  `json:"timestamp"`
	T0        float64                    `json:"t0"`
	Tf        float64                    `json:"tf"`
	Points    int                        `json:"points"`
	InitState []float64                  `json:"init_state"`
	Methods   []string                   `json:"methods"`
	Baseline  string                     `json:"baseline"`
	Errors    map[string]metrics.Summary `json:"errors"`
}

// Series is one method's trajectory as persisted.
type Series struct {
	Method     string
	Trajectory *dynamo.Trajectory
}

// Save writes the metadata and every series on a shared time grid. Series
// must all use the grid of the first one.
func (s *Store) Save(meta RunMetadata, series []Series) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("nothing to save")
	}
	times := series[0].Trajectory.Times
	for _, sr := range series[1:] {
		if len(sr.Trajectory.Times) != len(times) {
			return "", fmt.Errorf("series %s: %w", sr.Method, dynamo.ErrInvalidGrid)
		}
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Problem, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Points = len(times)
	meta.Methods = make([]string, len(series))
	for i, sr := range series {
		meta.Methods[i] = sr.Method
	}
	meta.Errors = finiteErrors(meta.Errors)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), series); err != nil {
		return "", err
	}

	return runID, nil
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

func writeStates(path string, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteCSV(f, series)
}

// WriteCSV writes series sharing one grid as a time column followed by
// one "method.xI" column per state component, at full precision.
func WriteCSV(out io.Writer, series []Series) error {
	if len(series) == 0 {
		return fmt.Errorf("nothing to write")
	}
	times := series[0].Trajectory.Times

	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, sr := range series {
		if len(sr.Trajectory.Times) != len(times) {
			return fmt.Errorf("series %s: %w", sr.Method, dynamo.ErrInvalidGrid)
		}
		n, _ := sr.Trajectory.Dims()
		for i := 0; i < n; i++ {
			header = append(header, fmt.Sprintf("%s.x%d", sr.Method, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for j, t := range times {
		row := []string{formatFloat(t)}
		for _, sr := range series {
			n, _ := sr.Trajectory.Dims()
			for i := 0; i < n; i++ {
				row = append(row, formatFloat(sr.Trajectory.At(i, j)))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// finiteErrors drops summaries JSON cannot carry (a diverged method).
func finiteErrors(in map[string]metrics.Summary) map[string]metrics.Summary {
	out := make(map[string]metrics.Summary, len(in))
	for method, s := range in {
		if isFinite(s.MaxAbs) && isFinite(s.Final) && isFinite(s.RMS) {
			out[method] = s
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatFloat keeps full precision so a stored run reloads bit for bit.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads back the trajectories of a run, in the order they were
// saved.
func (s *Store) LoadSeries(runID string) ([]Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: no samples", runID)
	}

	header := records[0]
	if len(header) < 2 || header[0] != "time" {
		return nil, fmt.Errorf("run %s: malformed header", runID)
	}

	// group columns by method, keeping first-seen order
	var order []string
	columns := make(map[string][]int)
	for c := 1; c < len(header); c++ {
		method, _, ok := strings.Cut(header[c], ".")
		if !ok {
			return nil, fmt.Errorf("run %s: malformed column %q", runID, header[c])
		}
		if _, seen := columns[method]; !seen {
			order = append(order, method)
		}
		columns[method] = append(columns[method], c)
	}

	rows := records[1:]
	times := make([]float64, len(rows))
	values := make([][]float64, len(rows))
	for r, record := range rows {
		values[r] = make([]float64, len(record))
		for c, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, r+1, err)
			}
			values[r][c] = v
		}
		times[r] = values[r][0]
	}

	out := make([]Series, 0, len(order))
	for _, method := range order {
		cols := columns[method]
		states := make([]dynamo.State, len(rows))
		for r := range rows {
			x := make(dynamo.State, len(cols))
			for i, c := range cols {
				x[i] = values[r][c]
			}
			states[r] = x
		}
		traj, err := dynamo.FromStates(times, states)
		if err != nil {
			return nil, fmt.Errorf("run %s method %s: %w", runID, method, err)
		}
		out = append(out, Series{Method: method, Trajectory: traj})
	}

	return out, nil
}
