// Package pyramid drives coarse-to-fine flow estimation: it builds an
// image pyramid from a full-resolution frame pair, estimates flow at the
// coarsest level with a zero hint, then refines level by level, upsampling
// each level's result into the next level's hint.
package pyramid

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/flowsgm/internal/flow"
	"github.com/AnyUserName/flowsgm/internal/ioimg"
)

// Level is one pyramid rung: the grayscale pair at that resolution plus a
// hint field. Build sets HintX/HintY (to zero) only on the coarsest level
// and leaves them nil on finer levels; Run computes the upsampled hints for
// those levels itself without storing them here.
type Level struct {
	W, H     int
	I1, I2   []uint8
	HintX    []float64
	HintY    []float64
}

// Build constructs an N-level pyramid (coarsest first) from full-resolution
// grayscale planes I1, I2 of shape W*H, downscaling by half at each level.
// The coarsest level's hint is zero.
func Build(I1, I2 []uint8, W, H, levels int) ([]Level, error) {
	if levels < 1 {
		return nil, fmt.Errorf("pyramid: levels must be >= 1, got %d", levels)
	}

	img1 := grayImage(I1, W, H)
	img2 := grayImage(I2, W, H)

	// Resolutions from finest (index 0) to coarsest (index levels-1).
	type dims struct{ w, h int }
	sizes := make([]dims, levels)
	sizes[0] = dims{W, H}
	for i := 1; i < levels; i++ {
		w := sizes[i-1].w / 2
		h := sizes[i-1].h / 2
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		sizes[i] = dims{w, h}
	}

	out := make([]Level, levels)
	for i := levels - 1; i >= 0; i-- {
		d := sizes[i]
		var g1, g2 []uint8
		if d.w == W && d.h == H {
			g1, g2 = I1, I2
		} else {
			g1 = ioimg.ToGray(imaging.Resize(img1, d.w, d.h, imaging.Lanczos))
			g2 = ioimg.ToGray(imaging.Resize(img2, d.w, d.h, imaging.Lanczos))
		}
		out[levels-1-i] = Level{W: d.w, H: d.h, I1: g1, I2: g2}
	}

	out[0].HintX = make([]float64, out[0].W*out[0].H)
	out[0].HintY = make([]float64, out[0].W*out[0].H)
	return out, nil
}

// grayImage wraps a row-major grayscale plane as a standard image.Gray so
// it can be resized via imaging.Resize.
func grayImage(I []uint8, W, H int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, W, H))
	for y := 0; y < H; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+W], I[y*W:(y+1)*W])
	}
	return img
}

// UpsampleHint scales a hint field from (srcW, srcH) to (dstW, dstH),
// bilinearly interpolating and rescaling displacement magnitude by the
// resolution ratio so a motion of k source pixels becomes a motion of
// roughly k*(dstW/srcW) destination pixels.
func UpsampleHint(src []float64, srcW, srcH, dstW, dstH int, scale float64) []float64 {
	out := make([]float64, dstW*dstH)
	if srcW == 0 || srcH == 0 {
		return out
	}
	sx := float64(srcW) / float64(dstW)
	sy := float64(srcH) / float64(dstH)

	for y := 0; y < dstH; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := clampInt(int(fy), 0, srcH-1)
		y1 := clampInt(y0+1, 0, srcH-1)
		ty := fy - float64(y0)
		if ty < 0 {
			ty = 0
		}
		for x := 0; x < dstW; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := clampInt(int(fx), 0, srcW-1)
			x1 := clampInt(x0+1, 0, srcW-1)
			tx := fx - float64(x0)
			if tx < 0 {
				tx = 0
			}

			v00 := src[y0*srcW+x0]
			v01 := src[y0*srcW+x1]
			v10 := src[y1*srcW+x0]
			v11 := src[y1*srcW+x1]
			v0 := v00*(1-tx) + v01*tx
			v1 := v10*(1-tx) + v11*tx
			out[y*dstW+x] = (v0*(1-ty) + v1*ty) * scale
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Result is the final, full-resolution flow.Field plus every intermediate
// level's field, coarsest first, matching the order Build produces levels.
type Result struct {
	Levels []*flow.Field
}

// Run executes the full coarse-to-fine loop: Build the pyramid, estimate
// at the coarsest level with a zero hint, then for each finer level
// upsample the previous level's displacement into a hint and estimate
// again.
func Run(I1, I2 []uint8, W, H, levels int, p flow.Params) (*Result, error) {
	lvls, err := Build(I1, I2, W, H, levels)
	if err != nil {
		return nil, err
	}

	res := &Result{Levels: make([]*flow.Field, levels)}
	var prev *flow.Field
	var prevW, prevH int

	for i, lvl := range lvls {
		var hintX, hintY []float64
		if prev == nil {
			hintX = make([]float64, lvl.W*lvl.H)
			hintY = make([]float64, lvl.W*lvl.H)
		} else {
			scale := float64(lvl.W) / float64(prevW)
			hintX = UpsampleHint(denseX(prev), prevW, prevH, lvl.W, lvl.H, scale)
			hintY = UpsampleHint(denseY(prev), prevW, prevH, lvl.W, lvl.H, scale)
		}

		f, err := flow.Estimate(lvl.I1, lvl.I2, lvl.W, lvl.H, hintX, hintY, lvl.W, lvl.H, p)
		if err != nil {
			return nil, fmt.Errorf("level %d/%d: %w", i+1, levels, err)
		}
		res.Levels[i] = f
		prev = f
		prevW, prevH = lvl.W, lvl.H
	}
	return res, nil
}

// denseX/denseY reconstruct a full displacement plane (integer offset plus
// sub-pixel correction) from a flow.Field, for feeding the next pyramid
// level as a hint.
func denseX(f *flow.Field) []float64 {
	Wy := 2*f.Ry + 1
	out := make([]float64, f.W*f.H)
	for i, d := range f.BestD {
		ox := int(d)/Wy - f.Rx
		out[i] = float64(ox) + f.MvSub[0][i]
	}
	return out
}

func denseY(f *flow.Field) []float64 {
	Wy := 2*f.Ry + 1
	out := make([]float64, f.W*f.H)
	for i, d := range f.BestD {
		oy := int(d)%Wy - f.Ry
		out[i] = float64(oy) + f.MvSub[1][i]
	}
	return out
}
