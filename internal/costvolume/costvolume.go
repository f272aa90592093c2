// Package costvolume builds the dense per-pixel, per-label matching-cost
// tensor C[y, x, d] that the SGM aggregator consumes. Costs are census
// Hamming distances averaged over a square aggregation window, with the
// search window recentered per pixel on a hint motion field.
package costvolume

import (
	"math"
	"math/bits"
	"runtime"
)

// DefaultCost is the fixed sentinel cost charged for any aggregation-window
// or hint-warped sample that falls outside the image. Not configurable.
const DefaultCost = 5

// Dims returns the label-axis size D = (2*rx+1)*(2*ry+1).
func Dims(rx, ry int) int {
	return (2*rx + 1) * (2*ry + 1)
}

// Label returns the linearized label index for offset (ox, oy), x-offset
// being the slow axis: d = (ox+rx)*(2*ry+1) + (oy+ry).
func Label(ox, oy, rx, ry int) int {
	return (ox+rx)*(2*ry+1) + (oy + ry)
}

// Build fills C (length W*H*D, D = Dims(rx,ry)) with the aggregated census
// Hamming cost for every reference pixel and every candidate offset in the
// search window, recentered per pixel by the hint field (mvx, mvy), each of
// shape Wh x Hh with stride Wh, Wh >= W and Hh >= H.
func Build(cen1, cen2 []uint32, W, H int, mvx, mvy []float64, Wh, Hh int, ra, rx, ry int, C []uint8) {
	D := Dims(rx, ry)
	if len(C) != W*H*D {
		panic("costvolume: C has wrong length")
	}
	if Wh < W || Hh < H {
		panic("costvolume: hint field smaller than image")
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > H {
		workers = H
	}
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || H == 0 {
		buildRows(cen1, cen2, W, H, mvx, mvy, Wh, ra, rx, ry, D, 0, H, C)
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
			buildRows(cen1, cen2, W, H, mvx, mvy, Wh, ra, rx, ry, D, y0, y1, C)
			done <- struct{}{}
		}(y0, y1)
	}
	for i := 0; i < n; i++ {
		<-done
	}
}

func buildRows(cen1, cen2 []uint32, W, H int, mvx, mvy []float64, Wh, ra, rx, ry, D, y0, y1 int, C []uint8) {
	n := (2*ra + 1) * (2*ra + 1)
	for y := y0; y < y1; y++ {
		for x := 0; x < W; x++ {
			hmvx := mvx[y*Wh+x]
			hmvy := mvy[y*Wh+x]
			ptrC := C[(y*W+x)*D : (y*W+x)*D+D]

			d := 0
			for ox := -rx; ox <= rx; ox++ {
				for oy := -ry; oy <= ry; oy++ {
					sum := 0
					for ay := -ra; ay <= ra; ay++ {
						y1p := y + ay
						for ax := -ra; ax <= ra; ax++ {
							x1p := x + ax
							if y1p < 0 || y1p >= H || x1p < 0 || x1p >= W {
								sum += DefaultCost
								continue
							}
							y2 := roundHalfUp(float64(y1p+oy) + hmvy)
							x2 := roundHalfUp(float64(x1p+ox) + hmvx)
							if y2 < 0 || y2 >= H || x2 < 0 || x2 >= W {
								sum += DefaultCost
								continue
							}
							cenCode1 := cen1[y1p*W+x1p]
							cenCode2 := cen2[y2*W+x2]
							sum += bits.OnesCount32(cenCode1 ^ cenCode2)
						}
					}
					ptrC[d] = saturateU8(roundHalfUp(float64(sum) / float64(n)))
					d++
				}
			}
		}
	}
}

// roundHalfUp implements floor(v + 0.5), i.e. round-half-up, matching the
// source's C "int(x + 0.5)" convention but correct for negative inputs too
// (truncating conversion biases negative values toward zero instead).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func saturateU8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
