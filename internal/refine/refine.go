// Package refine selects the per-pixel minimum-cost label from the combined
// SGM score tensor and, optionally, fits a parabola along each label axis
// to produce a fractional sub-pixel offset.
package refine

import "runtime"

// Result holds the per-pixel argmin outputs.
type Result struct {
	BestD []uint32 // W*H, argmin label
	MinC  []uint32 // W*H, S at BestD
	MvSub [2][]float64 // W*H each: [0]=x-axis offset, [1]=y-axis offset
}

// NewResult allocates a Result sized for W*H pixels.
func NewResult(W, H int) *Result {
	return &Result{
		BestD: make([]uint32, W*H),
		MinC:  make([]uint32, W*H),
		MvSub: [2][]float64{make([]float64, W*H), make([]float64, W*H)},
	}
}

// Run computes bestD/minC for every pixel, and — if subPixel is true — the
// parabolic sub-pixel offsets along both label axes. S has shape W*H*D,
// D=Wx*Wy, label d = dxIdx*Wy + dyIdx.
func Run(S []uint32, W, H, Wx, Wy int, subPixel bool, out *Result) {
	D := Wx * Wy
	if len(S) != W*H*D {
		panic("refine: S has wrong length")
	}
	if len(out.BestD) != W*H || len(out.MinC) != W*H {
		panic("refine: out has wrong length")
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > H {
		workers = H
	}
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || H == 0 {
		runRows(S, W, H, Wx, Wy, subPixel, 0, H, out)
		return
	}

	rowsPerWorker := (H + workers - 1) / workers
	done := make(chan struct{}, workers)
	n := 0
	for y0 := 0; y0 < H; y0 += rowsPerWorker {
		y1 := y0 + rowsPerWorker
		if y1 > H {
			y1 = H
		}
		n++
		go func(y0, y1 int) {
			runRows(S, W, H, Wx, Wy, subPixel, y0, y1, out)
			done <- struct{}{}
		}(y0, y1)
	}
	for i := 0; i < n; i++ {
		<-done
	}
}

func runRows(S []uint32, W, H, Wx, Wy int, subPixel bool, y0, y1 int, out *Result) {
	D := Wx * Wy
	for y := y0; y < y1; y++ {
		for x := 0; x < W; x++ {
			base := (y*W + x) * D
			row := S[base : base+D]

			best := 0
			bestVal := row[0]
			for d := 1; d < D; d++ {
				if row[d] < bestVal {
					bestVal = row[d]
					best = d
				}
			}

			idx := y*W + x
			out.BestD[idx] = uint32(best)
			out.MinC[idx] = bestVal

			if !subPixel {
				out.MvSub[0][idx] = 0
				out.MvSub[1][idx] = 0
				continue
			}

			dxIdx := best / Wy
			dyIdx := best % Wy

			out.MvSub[1][idx] = axisOffset(row, best, dyIdx, Wy, 1)
			out.MvSub[0][idx] = axisOffset(row, best, dxIdx, Wx, Wy)
		}
	}
}

// axisOffset fits the literal source parabola along one label axis: pos is
// the index along that axis (length axisLen), stride is the S-index step
// between adjacent labels along the axis. Returns 0 on the axis boundary or
// when the fit is degenerate (denom == 0), per §4.4/§7.
func axisOffset(row []uint32, bestD, pos, axisLen, stride int) float64 {
	if pos <= 0 || pos >= axisLen-1 {
		return 0
	}
	c0 := float64(row[bestD])
	cL := float64(row[bestD-stride])
	cR := float64(row[bestD+stride])

	var denom float64
	if cR < cL {
		denom = c0 - cL
	} else {
		denom = c0 - cR
	}
	if denom == 0 {
		return 0
	}
	return (cR - cL) / denom / 2
}
