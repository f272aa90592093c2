package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/flowsgm/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_report>",
	Short: "Display statistics for a completed flowsgm run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "flowsgm.report.json")
	}

	r, err := report.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	printRunStats(r)
	return nil
}

func printRunStats(r *report.Run) {
	fmt.Println()
	fmt.Printf("  Report version:  %d\n", r.Version)
	fmt.Printf("  Generated:       %s\n", r.GeneratedAt)
	fmt.Printf("  Image 1:         %s\n", r.Image1)
	fmt.Printf("  Image 2:         %s\n", r.Image2)
	if r.BuildInfo != nil {
		fmt.Printf("  Params:          rx=%d ry=%d ra=%d p1=%d p2=%d\n",
			r.BuildInfo.Rx, r.BuildInfo.Ry, r.BuildInfo.Ra, r.BuildInfo.P1, r.BuildInfo.P2)
	}
	fmt.Println()

	fmt.Printf("  Levels:          %d\n", r.Totals.LevelCount)
	fmt.Printf("  Total time:      %d ms\n", r.Totals.TotalElapsedMs)
	fmt.Printf("  Cache hits:      %d / %d\n", r.Totals.CacheHits, r.Totals.LevelCount)
	fmt.Println()

	fmt.Println("  Per-level breakdown:")
	for _, lvl := range r.Levels {
		hit := " "
		if lvl.CacheHit {
			hit = "✓"
		}
		fmt.Printf("    [%s] level %-2d  %5dx%-5d  meanMinC=%-7.2f  defaultCost=%.1f%%  %dms\n",
			hit, lvl.Level, lvl.Width, lvl.Height, lvl.MeanMinC, lvl.DefaultCostFraction*100, lvl.ElapsedMs)
	}
	fmt.Println()

	var warnings []string
	for _, lvl := range r.Levels {
		if lvl.FlowPath == "" {
			warnings = append(warnings, fmt.Sprintf("level %d has no flow_path", lvl.Level))
		}
		if lvl.MeanMinC > 50 {
			warnings = append(warnings, fmt.Sprintf("level %d has high mean cost (%.1f) — check frame alignment", lvl.Level, lvl.MeanMinC))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}
