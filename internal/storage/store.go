package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
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
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	G           float64            `json:"g"`
	Center      [2]float64         `json:"center"`
	Masses      []float64          `json:"masses"`
	Colors      []string           `json:"colors,omitempty"`
	Steps       int                `json:"steps"`
	SampleEvery int                `json:"sample_every"`
	Metrics     map[string]float64 `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// Save writes metadata.json and states.csv into a new run directory. The
// run ID and timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	}
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	if err := result.Err(); err != nil {
		meta.Error = err.Error()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := WriteCSV(w, result.Snapshots); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// WriteCSV writes one row per snapshot: the step, then x, y, vx, vy for
// every body.
func WriteCSV(w *csv.Writer, snaps []dynamo.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	header := []string{"step"}
	for i := range snaps[0].Bodies {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range snaps {
		row := []string{strconv.Itoa(snap.Step)}
		for _, b := range snap.Bodies {
			row = append(row,
				strconv.FormatFloat(b.Position.X, 'g', -1, 64),
				strconv.FormatFloat(b.Position.Y, 'g', -1, 64),
				strconv.FormatFloat(b.Velocity.X, 'g', -1, 64),
				strconv.FormatFloat(b.Velocity.Y, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns all readable runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSnapshots reads states.csv back. Masses come from the metadata since
// they never change during a run.
func (s *Store) LoadSnapshots(runID string) ([]dynamo.Snapshot, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	n := len(meta.Masses)
	snaps := make([]dynamo.Snapshot, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != 1+4*n {
			return nil, fmt.Errorf("states.csv line %d: expected %d fields, got %d", line+2, 1+4*n, len(record))
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
		}

		vals := make([]float64, 4*n)
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
			}
		}

		bodies := make([]dynamo.BodyState, n)
		for i := range bodies {
			bodies[i] = dynamo.BodyState{
				Mass:     meta.Masses[i],
				Position: dynamo.V(vals[i*4], vals[i*4+1]),
				Velocity: dynamo.V(vals[i*4+2], vals[i*4+3]),
			}
		}
		snaps = append(snaps, dynamo.Snapshot{Step: step, Bodies: bodies})
	}

	return snaps, nil
}
