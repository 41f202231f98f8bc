package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/spheresim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var stateFields = [sim.StrideBody]string{"x", "y", "z", "vx", "vy", "vz"}

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

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Bodies    int                `json:"bodies"`
	Steps     int                `json:"steps"`
	GoalTime  float64            `json:"goal_time"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes result to a new run directory and returns its id.
func (s *Store) Save(scene string, dt float64, duration float64, seed int64, result *sim.Result) (string, error) {
	now := s.now()
	name := runName(scene)
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; exists(runDir); n++ {
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     scene,
		Timestamp: now,
		Seed:      seed,
		Dt:        dt,
		Duration:  duration,
		Bodies:    maxBodies(result.States),
		Steps:     result.StepsTaken,
		GoalTime:  result.GoalTime,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

// runName turns a scene name into a single path element so a run
// directory always lands directly under the base dir.
func runName(scene string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, scene)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "run"
	}
	return name
}

// WriteCSV writes one row per recorded state. Bodies added during the run
// leave their columns empty in earlier rows.
func WriteCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	n := maxBodies(result.States)
	header := make([]string, 0, 1+n*sim.StrideBody)
	header = append(header, "time")
	for b := 0; b < n; b++ {
		for _, f := range stateFields {
			header = append(header, fmt.Sprintf("b%d_%s", b, f))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, state := range result.States {
		row := make([]string, len(header))
		row[0] = strconv.FormatFloat(result.Times[i], 'f', 6, 64)
		for j, val := range state {
			row[j+1] = strconv.FormatFloat(val, 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func maxBodies(states []sim.State) int {
	n := 0
	for _, s := range states {
		if s.Bodies() > n {
			n = s.Bodies()
		}
	}
	return n
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
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

// StatesPath is the CSV file of a run.
func (s *Store) StatesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statesFile)
}

// LoadStates reads the recorded states back. Empty cells of late-added
// bodies are dropped, so earlier rows can be shorter.
func (s *Store) LoadStates(runID string) ([]sim.State, []float64, error) {
	file, err := os.Open(s.StatesPath(runID))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []sim.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]sim.State, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make(sim.State, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}
