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

	"github.com/san-kum/verletsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"frame", "time", "active", "fill_percent", "contacts"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one stored headless run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	FrameDt   float64            `json:"frame_dt"`
	Frames    int                `json:"frames"`
	SubSteps  int                `json:"sub_steps"`
	Capacity  int                `json:"capacity"`
	Policy    string             `json:"policy"`
	Response  float64            `json:"response"`
	Final     sim.Stats          `json:"final"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewMetadata fills everything except ID and Timestamp, which Save assigns.
func NewMetadata(name string, frameDt float64, cfg sim.Config, result *sim.Result) RunMetadata {
	return RunMetadata{
		Name:     name,
		Seed:     result.Seed,
		FrameDt:  frameDt,
		Frames:   len(result.Frames),
		SubSteps: cfg.SubSteps,
		Capacity: cfg.Capacity,
		Policy:   cfg.Policy.String(),
		Response: cfg.Response,
		Final:    result.Final,
		Metrics:  result.Metrics,
	}
}

func (s *Store) Save(name string, frameDt float64, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; dirExists(runDir); i++ {
		runID = fmt.Sprintf("%s_%d_%d", name, now.UnixMilli(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := NewMetadata(name, frameDt, cfg, result)
	meta.ID = runID
	meta.Timestamp = now

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeFrames(path string, frames []sim.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, st := range frames {
		row := []string{
			strconv.Itoa(st.Frame),
			strconv.FormatFloat(st.Time, 'f', 6, 64),
			strconv.Itoa(st.Active),
			strconv.FormatFloat(st.FillPercent, 'f', 4, 64),
			strconv.Itoa(st.Contacts),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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

// LoadFrames reads the per-frame diagnostics of a run. Rows that fail to
// parse are skipped.
func (s *Store) LoadFrames(runID string) ([]sim.Stats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
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
		return []sim.Stats{}, nil
	}

	frames := make([]sim.Stats, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		st, err := parseFrame(rec)
		if err != nil {
			continue
		}
		frames = append(frames, st)
	}
	return frames, nil
}

func parseFrame(rec []string) (sim.Stats, error) {
	var st sim.Stats
	var err error
	if st.Frame, err = strconv.Atoi(rec[0]); err != nil {
		return st, err
	}
	if st.Time, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return st, err
	}
	if st.Active, err = strconv.Atoi(rec[2]); err != nil {
		return st, err
	}
	if st.FillPercent, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return st, err
	}
	if st.Contacts, err = strconv.Atoi(rec[4]); err != nil {
		return st, err
	}
	return st, nil
}
