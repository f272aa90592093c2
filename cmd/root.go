package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flowsgm",
	Short: "Dense optical-flow estimation via census cost volumes and Semi-Global Matching",
	Long: `flowsgm estimates a dense displacement field between two frames using a
census-transform cost volume aggregated with Semi-Global Matching over a
coarse-to-fine image pyramid.

Writes Middlebury .flo fields per pyramid level, optional color-wheel
visualizations, and a JSON run report.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"flowsgm %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[flowsgm] "+format+"\n", args...)
	}
}
