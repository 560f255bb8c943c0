package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fluidsim/internal/sim"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ExportData struct {
	Run       RunMetadata      `json:"run"`
	Frames    []sim.FrameStats `json:"frames"`
	Positions []Position       `json:"final_positions"`
}

// Export gathers a stored run into a single document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	_, final, err := s.LoadPositions(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:       *meta,
		Frames:    frames,
		Positions: make([]Position, len(final)),
	}
	for i, p := range final {
		data.Positions[i] = Position{X: p.X, Y: p.Y}
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
