package storage

import (
	"encoding/json"
	"io"

	"gonum.org/v1/gonum/mat"
)

type ExportData struct {
	Metadata *RunMetadata     `json:"metadata"`
	Series   map[string][]Row `json:"series"`
}

// ExportJSON writes a run's metadata and every series as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: meta,
		Series:   make(map[string][]Row, len(meta.Series)),
	}
	for _, name := range meta.Series {
		m, err := s.LoadSeries(runID, name)
		if err != nil {
			return err
		}
		data.Series[name] = rows(m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func rows(m *mat.Dense) []Row {
	r, _ := m.Dims()
	out := make([]Row, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
