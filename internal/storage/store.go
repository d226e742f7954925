// Package storage keeps simulation runs on disk.
//
// Every run owns a directory <base>/<runID> holding metadata.json, one
// .npy file per time series and, for polymer runs with snapshots
// enabled, SVG frames under frames/<stage>/.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/polymd/internal/config"
)

// Run kinds.
const (
	KindPolymer = "polymer"
	KindWalk    = "walk"
	KindFlock   = "flock"
)

// Series names, stored as <name>.npy.
const (
	SeriesRg         = "radius_of_gyration"
	SeriesRgRMS      = "radius_of_gyration_rms"
	SeriesEfficiency = "efficiency"

	SeriesFlockRg      = "flock_radius_of_gyration"
	SeriesAlignment    = "alignment"
	SeriesPolarization = "polarization"
)

const metadataFile = "metadata.json"

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type StageMetadata struct {
	Index     int     `json:"index"`
	Parameter string  `json:"parameter,omitempty"`
	Value     float64 `json:"value"`
	N         int     `json:"n"`
	Seed      int64   `json:"seed"`
	Steps     int     `json:"steps"`
	Elapsed   float64 `json:"elapsed_seconds"`
	Metrics   Metrics `json:"metrics"`
}

type RunMetadata struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Study      string          `json:"study,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Seed       int64           `json:"seed"`
	Parameter  string          `json:"parameter,omitempty"`
	Values     []float64       `json:"values,omitempty"`
	CarryState bool            `json:"carry_state,omitempty"`
	Stages     []StageMetadata `json:"stages,omitempty"`
	Metrics    Metrics         `json:"metrics,omitempty"`
	Series     []string        `json:"series"`
	Frames     int             `json:"frames,omitempty"`
	Config     *config.Config  `json:"config"`
}

// Run is an open run directory.
type Run struct {
	ID  string
	Dir string
}

// Create allocates a new run directory named after name and the
// current time. Path separators in name are replaced so the run always
// lands directly under the base directory.
func (s *Store) Create(name string) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	base := fmt.Sprintf("%s_%d", runName(name), time.Now().Unix())
	id := base
	for k := 2; ; k++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return &Run{ID: id, Dir: dir}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		id = fmt.Sprintf("%s_%d", base, k)
	}
}

func runName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
	if name == "" || strings.Trim(name, ".") == "" {
		return "run"
	}
	return name
}

// WriteSeries stores m as <name>.npy.
func (r *Run) WriteSeries(name string, m *mat.Dense) error {
	f, err := os.Create(filepath.Join(r.Dir, name+".npy"))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := npyio.Write(f, m); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// WriteMetadata replaces metadata.json atomically. A failed write
// leaves any previous file intact.
func (r *Run) WriteMetadata(meta *RunMetadata) error {
	meta.ID = r.ID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	f, err := os.CreateTemp(r.Dir, ".metadata-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(r.Dir, metadataFile))
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads <name>.npy of a run.
func (s *Store) LoadSeries(runID, name string) (*mat.Dense, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name+".npy"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, name)
		}
		return nil, err
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &m, nil
}
