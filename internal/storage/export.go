package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/spheresim/internal/sim"
)

type ExportData struct {
	Scene    string             `json:"scene"`
	Seed     int64              `json:"seed"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	GoalTime float64            `json:"goal_time"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// NewExportData combines a run's metadata with its recorded states.
func NewExportData(meta *RunMetadata, states []sim.State, times []float64) ExportData {
	data := ExportData{
		Scene:    meta.Scene,
		Seed:     meta.Seed,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    meta.Steps,
		GoalTime: meta.GoalTime,
		Times:    times,
		States:   make([][]float64, len(states)),
		Metrics:  meta.Metrics,
	}
	for i, s := range states {
		data.States[i] = s
	}
	return data
}

// Export loads a stored run and returns it ready for encoding.
func (s *Store) Export(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return ExportData{}, err
	}
	return NewExportData(meta, states, times), nil
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
