package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/flowsgm/internal/cache"
	"github.com/AnyUserName/flowsgm/internal/flow"
	"github.com/AnyUserName/flowsgm/internal/ioimg"
	"github.com/AnyUserName/flowsgm/internal/pipeline"
	"github.com/AnyUserName/flowsgm/internal/profile"
	"github.com/AnyUserName/flowsgm/internal/pyramid"
	"github.com/AnyUserName/flowsgm/internal/report"
)

var (
	estOutDir     string
	estLevels     int
	estRx         int
	estRy         int
	estRa         int
	estP1         int
	estP2         int
	estSubPixel   bool
	estDiagonal   bool
	estPasses     int
	estAdaptiveP2 bool
	estCacheDir   string
	estViz        bool
	estProfile    string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <img1> <img2>",
	Short: "Estimate dense optical flow between two frames",
	Long: `Builds a coarse-to-fine image pyramid over the two input frames and
estimates a dense displacement field at each level using a census cost
volume aggregated with Semi-Global Matching.

Writes one .flo field per level to --out, optional color-wheel PNG
visualizations, and a flowsgm.report.json run report.`,
	Args: cobra.ExactArgs(2),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estOutDir, "out", "o", "./flowsgm_out", "output directory")
	estimateCmd.Flags().IntVar(&estLevels, "levels", 3, "pyramid level count")
	estimateCmd.Flags().IntVar(&estRx, "rx", 4, "search half-window, x axis")
	estimateCmd.Flags().IntVar(&estRy, "ry", 4, "search half-window, y axis")
	estimateCmd.Flags().IntVar(&estRa, "ra", 2, "cost aggregation half-window")
	estimateCmd.Flags().IntVar(&estP1, "p1", 2, "SGM small-penalty P1")
	estimateCmd.Flags().IntVar(&estP2, "p2", 24, "SGM large-penalty P2")
	estimateCmd.Flags().BoolVar(&estSubPixel, "subpixel", true, "enable sub-pixel refinement")
	estimateCmd.Flags().BoolVar(&estDiagonal, "diagonal", true, "enable diagonal SGM paths (8-path)")
	estimateCmd.Flags().IntVar(&estPasses, "passes", 2, "SGM raster passes, 1 or 2")
	estimateCmd.Flags().BoolVar(&estAdaptiveP2, "adaptive-p2", true, "attenuate P2 across sharp intensity edges")
	estimateCmd.Flags().StringVar(&estCacheDir, "cache", "", "cache directory (disabled if empty)")
	estimateCmd.Flags().BoolVar(&estViz, "viz", false, "also write a color-wheel visualization PNG per level")
	estimateCmd.Flags().StringVar(&estProfile, "profile", "", "named parameter preset (fast, balanced, quality); overrides --levels/--rx/.../--adaptive-p2 when set")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(_ *cobra.Command, args []string) error {
	img1Path, img2Path := args[0], args[1]
	start := time.Now()

	absOut, err := filepath.Abs(estOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	logVerbose("image1:  %s", img1Path)
	logVerbose("image2:  %s", img2Path)
	logVerbose("out:     %s", absOut)

	fp, err := pipeline.DecodeFramePair(img1Path, img2Path)
	if err != nil {
		return err
	}
	I1, I2, w1, h1 := fp.I1, fp.I2, fp.W1, fp.H1

	p := flow.Params{
		Rx: estRx, Ry: estRy, Ra: estRa,
		P1: estP1, P2: estP2,
		EnableDiagonal: estDiagonal,
		TotalPass:      estPasses,
		AdaptiveP2:     estAdaptiveP2,
		SubPixelRefine: estSubPixel,
	}
	if estProfile != "" {
		prof := profile.Get(estProfile)
		p = prof.Apply(p)
		estLevels = prof.Levels
		logVerbose("profile: %s", prof.Name)
	}
	logVerbose("levels:  %d  rx=%d ry=%d ra=%d p1=%d p2=%d", estLevels, p.Rx, p.Ry, p.Ra, p.P1, p.P2)

	if err := ensureDir(absOut); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var cacheDir *cache.Dir
	if estCacheDir != "" {
		cacheDir, err = cache.Open(estCacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	res, err := pyramid.Run(I1, I2, w1, h1, estLevels, p)
	if err != nil {
		return fmt.Errorf("pyramid: %w", err)
	}

	run := report.New(img1Path, img2Path, absOut)
	run.BuildInfo = &report.BuildInfo{Rx: p.Rx, Ry: p.Ry, Ra: p.Ra, P1: p.P1, P2: p.P2}

	for i, f := range res.Levels {
		levelStart := time.Now()
		floPath := filepath.Join(absOut, fmt.Sprintf("level%d.flo", i))
		if err := ioimg.WriteFlo(f, floPath); err != nil {
			return fmt.Errorf("level %d: write flo: %w", i, err)
		}

		stat := report.LevelStats{
			Level: i, Width: f.W, Height: f.H,
			MeanMinC: meanMinC(f), DefaultCostFraction: f.DefaultCostFraction,
			FlowPath: floPath,
		}
		if cacheDir != nil {
			key, err := cache.NewKeyFromFiles(img1Path, img2Path, i, p)
			if err != nil {
				return fmt.Errorf("level %d: cache key: %w", i, err)
			}
			stat.CacheKey = string(key)
			stat.CacheHit = cacheDir.Has(key)
			if !stat.CacheHit {
				if err := cacheDir.MarkComplete(key); err != nil {
					return fmt.Errorf("level %d: mark cache complete: %w", i, err)
				}
			}
		}

		if estViz {
			vizPath := filepath.Join(absOut, fmt.Sprintf("level%d.viz.png", i))
			u, v := densePlanes(f)
			if err := ioimg.WriteColorWheelPNG(u, v, f.W, f.H, 0, vizPath); err != nil {
				return fmt.Errorf("level %d: write viz: %w", i, err)
			}
			stat.VizPath = vizPath
		}

		stat.ElapsedMs = time.Since(levelStart).Milliseconds()
		run.Levels = append(run.Levels, stat)
	}

	reportPath := filepath.Join(absOut, "flowsgm.report.json")
	if err := report.WriteJSON(run, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printEstimateReport(run, time.Since(start))
	return nil
}

func meanMinC(f *flow.Field) float64 {
	if len(f.MinC) == 0 {
		return 0
	}
	var sum uint64
	for _, c := range f.MinC {
		sum += uint64(c)
	}
	return float64(sum) / float64(len(f.MinC))
}

func densePlanes(f *flow.Field) (u, v []float32) {
	Wy := 2*f.Ry + 1
	u = make([]float32, len(f.BestD))
	v = make([]float32, len(f.BestD))
	for i, d := range f.BestD {
		ox := int(d)/Wy - f.Rx
		oy := int(d)%Wy - f.Ry
		u[i] = float32(ox) + float32(f.MvSub[0][i])
		v[i] = float32(oy) + float32(f.MvSub[1][i])
	}
	return u, v
}

func printEstimateReport(r *report.Run, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            flowsgm estimate complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("  Levels:      %d\n", r.Totals.LevelCount)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if r.BuildInfo != nil {
		fmt.Printf("  Params:      rx=%d ry=%d ra=%d p1=%d p2=%d\n",
			r.BuildInfo.Rx, r.BuildInfo.Ry, r.BuildInfo.Ra, r.BuildInfo.P1, r.BuildInfo.P2)
	}
	fmt.Println()

	for _, lvl := range r.Levels {
		fmt.Printf("    level %d: %4dx%-4d  meanMinC=%.2f  %s\n",
			lvl.Level, lvl.Width, lvl.Height, lvl.MeanMinC, lvl.FlowPath)
	}
	fmt.Println()

	fmt.Printf("  Report:      %s\n", filepath.Join(r.OutDir, "flowsgm.report.json"))
	fmt.Println()
}
