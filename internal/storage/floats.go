package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// encoding/json rejects NaN and ±Inf. Diverged runs produce them, so
// they are stored as the strings "NaN", "+Inf" and "-Inf".

// Metrics is a metric map that survives non-finite values.
type Metrics map[string]float64

func (m Metrics) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = jsonFloat(v)
	}
	return json.Marshal(out)
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	out := make(Metrics, len(raw))
	for k, v := range raw {
		f, err := parseFloat(v)
		if err != nil {
			return fmt.Errorf("metric %s: %w", k, err)
		}
		out[k] = f
	}
	*m = out
	return nil
}

// Row is one exported series row.
type Row []float64

func (r Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	out := make([]any, len(r))
	for i, v := range r {
		out[i] = jsonFloat(v)
	}
	return json.Marshal(out)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}
	out := make(Row, len(raw))
	for i, v := range raw {
		f, err := parseFloat(v)
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = f
	}
	*r = out
	return nil
}

func jsonFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

func parseFloat(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unexpected value %v", v)
	}
}
