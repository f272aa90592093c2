package report

import (
	"encoding/json"
	"os"
	"time"
)

// New creates an empty run report with defaults.
func New(image1, image2, outDir string) *Run {
	return &Run{
		Version:     SupportedRunVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Image1:      image1,
		Image2:      image2,
		OutDir:      outDir,
	}
}

// ComputeTotals recalculates aggregate totals from the level entries.
func (r *Run) ComputeTotals() {
	var t Totals
	t.LevelCount = len(r.Levels)
	for _, l := range r.Levels {
		t.TotalElapsedMs += l.ElapsedMs
		if l.CacheHit {
			t.CacheHits++
		}
	}
	r.Totals = t
}

// WriteJSON serializes the run report to a JSON file with stable ordering
// and a trailing newline.
func WriteJSON(r *Run, path string) error {
	r.ComputeTotals()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a run report from path.
func ReadJSON(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
