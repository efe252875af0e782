package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/sim"
)

type ExportData struct {
	Run       RunMetadata      `json:"run"`
	Frames    []sim.Stats      `json:"frames"`
	Particles []ParticleRecord `json:"particles,omitempty"`
}

// ParticleRecord is the exported form of a particle's final state.
type ParticleRecord struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	R      uint8   `json:"r"`
	G      uint8   `json:"g"`
	B      uint8   `json:"b"`
}

func Records(ps []dynamo.Particle) []ParticleRecord {
	out := make([]ParticleRecord, len(ps))
	for i, p := range ps {
		out[i] = ParticleRecord{
			X:      p.Pos.X,
			Y:      p.Pos.Y,
			Radius: p.Radius,
			R:      p.Color.R,
			G:      p.Color.G,
			B:      p.Color.B,
		}
	}
	return out
}

func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// Export loads a stored run and writes it as JSON. Stored runs carry no
// particle state, so Particles is empty.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, ExportData{Run: *meta, Frames: frames})
}
