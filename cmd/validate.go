package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/flowsgm/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report_path>",
	Short: "Validate a flowsgm run report and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	reportPath := args[0]

	r, err := report.ReadJSON(reportPath)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	baseDir := filepath.Dir(reportPath)
	errs := validateRun(r, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d levels — all referenced files present\n", r.Totals.LevelCount)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateRun(r *report.Run, baseDir string) []string {
	var errs []string

	if r.Version != report.SupportedRunVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}

	seenLevels := map[int]bool{}
	for i, lvl := range r.Levels {
		if lvl.Width <= 0 || lvl.Height <= 0 {
			errs = append(errs, fmt.Sprintf("level[%d]: invalid dimensions %dx%d", i, lvl.Width, lvl.Height))
		}
		if seenLevels[lvl.Level] {
			errs = append(errs, fmt.Sprintf("level[%d]: duplicate level index %d", i, lvl.Level))
		}
		seenLevels[lvl.Level] = true

		if lvl.FlowPath == "" {
			errs = append(errs, fmt.Sprintf("level[%d]: missing flow_path", i))
			continue
		}
		if _, err := statReferenced(baseDir, lvl.FlowPath); err != nil {
			errs = append(errs, fmt.Sprintf("level[%d]: flow file not found: %s", i, lvl.FlowPath))
		}
		if lvl.VizPath != "" {
			if _, err := statReferenced(baseDir, lvl.VizPath); err != nil {
				errs = append(errs, fmt.Sprintf("level[%d]: viz file not found: %s", i, lvl.VizPath))
			}
		}
	}

	if r.Totals.LevelCount != len(r.Levels) {
		errs = append(errs, fmt.Sprintf("totals.level_count mismatch: %d != %d", r.Totals.LevelCount, len(r.Levels)))
	}

	return errs
}

// statReferenced stats a path referenced by a report: an absolute path (the
// common case, since the estimate command writes absolute paths into the
// report) is used as-is, and a relative path is resolved against the
// report's directory.
func statReferenced(baseDir, path string) (os.FileInfo, error) {
	if filepath.IsAbs(path) {
		return os.Stat(path)
	}
	return os.Stat(filepath.Join(baseDir, path))
}
