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
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

var csvHeader = []string{"frame", "time", "body", "x", "y", "z", "vx", "vy", "vz", "sleeping"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Frames      int                `json:"frames"`
	SimTime     float64            `json:"sim_time"`
	FrameRate   float64            `json:"frame_rate"`
	MaxDelta    float32            `json:"max_delta"`
	Gravity     mgl32.Vec3         `json:"gravity"`
	Bodies      []string           `json:"bodies"`
	SetupErrors []string           `json:"setup_errors,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and frames.csv under a new run directory. An
// empty meta.ID is replaced by a fresh UUID.
func (s *Store) Save(meta RunMetadata, trace *Trace) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
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

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	if trace != nil {
		for _, smp := range trace.Samples {
			if err := w.Write(encodeSample(smp)); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func encodeSample(s Sample) []string {
	f := func(v float32) string { return strconv.FormatFloat(float64(v), 'f', 6, 32) }
	return []string{
		strconv.Itoa(s.Frame),
		strconv.FormatFloat(s.Time, 'f', 6, 64),
		s.Body,
		f(s.Position.X()), f(s.Position.Y()), f(s.Position.Z()),
		f(s.Velocity.X()), f(s.Velocity.Y()), f(s.Velocity.Z()),
		strconv.FormatBool(s.Sleeping),
	}
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrace reads frames.csv back. Malformed rows are skipped.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := &Trace{}
	for i := 1; i < len(records); i++ {
		smp, ok := decodeSample(records[i])
		if !ok {
			continue
		}
		trace.Samples = append(trace.Samples, smp)
	}
	return trace, nil
}

func decodeSample(rec []string) (Sample, bool) {
	if len(rec) != len(csvHeader) {
		return Sample{}, false
	}
	frame, err := strconv.Atoi(rec[0])
	if err != nil {
		return Sample{}, false
	}
	t, err := strconv.ParseFloat(rec[1], 64)
	if err != nil {
		return Sample{}, false
	}
	var vals [6]float32
	for i := range vals {
		v, err := strconv.ParseFloat(rec[3+i], 32)
		if err != nil {
			return Sample{}, false
		}
		vals[i] = float32(v)
	}
	sleeping, err := strconv.ParseBool(rec[9])
	if err != nil {
		return Sample{}, false
	}
	return Sample{
		Frame:    frame,
		Time:     t,
		Body:     rec[2],
		Position: mgl32.Vec3{vals[0], vals[1], vals[2]},
		Velocity: mgl32.Vec3{vals[3], vals[4], vals[5]},
		Sleeping: sleeping,
	}, true
}
