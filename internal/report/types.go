// Package report defines the JSON summary of an estimate run: one entry
// per pyramid level plus aggregate totals, written alongside the .flo
// outputs and consumed by the validate/stats commands.
package report

// Run is the top-level output of a flowsgm estimate invocation.
type Run struct {
	Version     int         `json:"version"`
	GeneratedAt string      `json:"generated_at"`
	Image1      string      `json:"image1"`
	Image2      string      `json:"image2"`
	OutDir      string      `json:"out_dir"`
	BuildInfo   *BuildInfo  `json:"build_info,omitempty"`
	Levels      []LevelStats `json:"levels"`
	Totals      Totals      `json:"totals"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers int `json:"workers"`
	Rx      int `json:"rx"`
	Ry      int `json:"ry"`
	Ra      int `json:"ra"`
	P1      int `json:"p1"`
	P2      int `json:"p2"`
}

// LevelStats describes one pyramid level's output.
type LevelStats struct {
	Level        int     `json:"level"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	ElapsedMs    int64   `json:"elapsed_ms"`
	MeanMinC     float64 `json:"mean_min_c"`
	DefaultCostFraction float64 `json:"default_cost_fraction"` // fraction of cost-volume entries equal to the border sentinel cost
	FlowPath     string  `json:"flow_path"`
	VizPath      string  `json:"viz_path,omitempty"`
	CacheKey     string  `json:"cache_key"`
	CacheHit     bool    `json:"cache_hit"`
}

// Totals aggregates metrics across all levels.
type Totals struct {
	LevelCount    int   `json:"level_count"`
	TotalElapsedMs int64 `json:"total_elapsed_ms"`
	CacheHits     int   `json:"cache_hits"`
}

// SupportedRunVersion is the current report schema version.
const SupportedRunVersion = 1
