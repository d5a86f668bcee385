package fitcommon

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TracePoint is one recorded acceleration sample: seconds since trace start
// and raw acceleration along the bowing axis.
type TracePoint struct {
	TimeS float64
	Accel float64
}

// LoadTraceCSV reads a two-column "time_s,accel" CSV recording. A header row
// is skipped when the first field does not parse as a number.
func LoadTraceCSV(path string) ([]TracePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]TracePoint, 0, len(rows))
	for i, row := range rows {
		t, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%s row %d: bad time %q", path, i+1, row[0])
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad accel %q", path, i+1, row[1])
		}
		out = append(out, TracePoint{TimeS: t, Accel: a})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no samples", path)
	}
	return out, nil
}

// LoadOnsetsJSON reads a JSON array of labeled onset times in seconds.
func LoadOnsetsJSON(path string) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var onsets []float64
	if err := json.Unmarshal(b, &onsets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return onsets, nil
}
