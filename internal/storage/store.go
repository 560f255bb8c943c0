package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/sim"
	"github.com/san-kum/fluidsim/internal/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile  = "metadata.json"
	framesFile    = "frames.csv"
	positionsFile = "positions.csv"
	perfFile      = "perf.csv"
)

// finalFrame marks the end-of-run positions in positions.csv.
const finalFrame = -1

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
	ID              string             `json:"id"`
	Preset          string             `json:"preset"`
	Timestamp       time.Time          `json:"timestamp"`
	Particles       int                `json:"particles"`
	Frames          int                `json:"frames"`
	SimTime         float64            `json:"sim_time"`
	ElapsedSeconds  float64            `json:"elapsed_seconds"`
	FramesPerSecond float64            `json:"frames_per_second"`
	Params          fluid.Params       `json:"params"`
	Metrics         map[string]float64 `json:"metrics"`
}

// PositionRecord is one row of positions.csv. Frame is -1 for the final
// positions of the run.
type PositionRecord struct {
	Frame int     `csv:"frame"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
}

// Save writes a run record under a fresh directory and returns its ID.
// The record is an output artifact: it holds statistics and positions, not
// a resumable solver state.
func (s *Store) Save(preset string, p fluid.Params, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(preset, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Preset:          preset,
		Timestamp:       now,
		Particles:       len(result.Final),
		Frames:          result.FramesRun,
		SimTime:         float64(result.FramesRun) * p.FrameTime,
		ElapsedSeconds:  result.Elapsed.Seconds(),
		FramesPerSecond: result.FramesPerSecond(),
		Params:          p,
		Metrics:         result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), positionRecords(result)); err != nil {
		return "", err
	}
	if len(result.Perf) > 0 {
		if err := writeCSV(filepath.Join(runDir, perfFile), result.Perf); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) newRunDir(preset string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", preset, now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func positionRecords(result *sim.Result) []PositionRecord {
	n := len(result.Final)
	for _, kf := range result.Keyframes {
		n += len(kf.Positions)
	}
	records := make([]PositionRecord, 0, n)
	for _, kf := range result.Keyframes {
		for i, pos := range kf.Positions {
			records = append(records, PositionRecord{Frame: kf.Frame, Index: i, X: pos.X, Y: pos.Y})
		}
	}
	for i, pos := range result.Final {
		records = append(records, PositionRecord{Frame: finalFrame, Index: i, X: pos.X, Y: pos.Y})
	}
	return records
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

	sort.Slice(runs, func(i, j int) bool {
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.FrameStats, error) {
	var frames []sim.FrameStats
	if err := readCSV(filepath.Join(s.baseDir, runID, framesFile), &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *Store) LoadPerf(runID string) ([]telemetry.PerfStatsCSV, error) {
	var rows []telemetry.PerfStatsCSV
	err := readCSV(filepath.Join(s.baseDir, runID, perfFile), &rows)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

// LoadPositions returns the stored keyframes in frame order and the final
// positions of the run.
func (s *Store) LoadPositions(runID string) ([]sim.Keyframe, []r2.Vec, error) {
	var records []PositionRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, positionsFile), &records); err != nil {
		return nil, nil, err
	}

	var keyframes []sim.Keyframe
	var final []r2.Vec
	for _, rec := range records {
		pos := r2.Vec{X: rec.X, Y: rec.Y}
		if rec.Frame == finalFrame {
			final = append(final, pos)
			continue
		}
		if len(keyframes) == 0 || keyframes[len(keyframes)-1].Frame != rec.Frame {
			keyframes = append(keyframes, sim.Keyframe{Frame: rec.Frame})
		}
		kf := &keyframes[len(keyframes)-1]
		kf.Positions = append(kf.Positions, pos)
	}
	return keyframes, final, nil
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

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}
