// Package sgm implements the Semi-Global Matching path aggregator: two
// raster passes over up to four directions (horizontal, vertical, and the
// two diagonals), each accumulating a dynamic-programming path cost that
// couples neighboring pixels' displacement labels through small/large
// smoothness penalties and a hint-differential warp.
package sgm

import "math"

// AdaptiveP2Threshold is the intensity-difference threshold above which the
// smoothness penalty P2 is attenuated when adaptive P2 is enabled.
const AdaptiveP2Threshold = 50

// AdaptiveP2Divisor is the attenuation factor applied to P2 across a sharp
// intensity edge.
const AdaptiveP2Divisor = 8

// Aggregate accumulates path costs for every enabled direction over
// totalPass raster passes into S (length W*H*D, D=Wx*Wy), given the
// precomputed cost volume C (same shape) and hint field (mvx, mvy) of
// shape Wh x Hh (Wh>=W, Hh>=H, stride Wh). I1 supplies the intensities used
// by adaptive P2. S must already be zeroed by the caller; Aggregate only
// adds to it, so repeated calls (e.g. across passes) are safe to compose.
func Aggregate(C []uint8, I1 []uint8, W, H, Wx, Wy int, mvx, mvy []float64, Wh, Hh int,
	P1, P2 int, enableDiagonal bool, totalPass int, adaptiveP2Enabled bool, S []uint32) {

	D := Wx * Wy
	if len(C) != W*H*D {
		panic("sgm: C has wrong length")
	}
	if len(S) != W*H*D {
		panic("sgm: S has wrong length")
	}
	if len(I1) != W*H {
		panic("sgm: I1 has wrong length")
	}
	if Wh < W || Hh < H {
		panic("sgm: hint field smaller than image")
	}
	if totalPass != 1 && totalPass != 2 {
		panic("sgm: totalPass must be 1 or 2")
	}
	if P1 <= 0 || P1 >= P2 {
		panic("sgm: requires 0 < P1 < P2")
	}

	buf := newBuffers(W, D)

	for pass := 0; pass < totalPass; pass++ {
		buf.resetPass()

		ystart, yend, ystep := 0, H, 1
		xstart, xend, xstep := 0, W, 1
		if pass == 1 {
			ystart, yend, ystep = H-1, -1, -1
			xstart, xend, xstep = W-1, -1, -1
		}

		for y := ystart; y != yend; y += ystep {
			for x := xstart; x != xend; x += xstep {
				off := (y*W + x) * D
				pixelC := C[off : off+D]

				l1Cur, l1Pre := buf.l1.cura(), buf.l1.prea()

				l3CurRow, l3PreRow := buf.l3.cura(), buf.l3.prea()
				l3Cur := rowLane(l3CurRow, x, D)
				l3Pre := rowLane(l3PreRow, x, D)

				var l2Cur, l2Pre, l4Cur, l4Pre []PathCost
				if enableDiagonal {
					l2CurRow, l2PreRow := buf.l2.cura(), buf.l2.prea()
					l2Cur = rowLane(l2CurRow, x, D)
					l4CurRow, l4PreRow := buf.l4.cura(), buf.l4.prea()
					l4Cur = rowLane(l4CurRow, x, D)
					if x != xstart {
						l2Pre = rowLane(l2PreRow, x-xstep, D)
					}
					if x != xend-xstep {
						l4Pre = rowLane(l4PreRow, x+xstep, D)
					}
				}

				if x == xstart {
					seed(l1Cur, pixelC, D)
					if enableDiagonal {
						seed(l2Cur, pixelC, D)
					}
				}
				if y == ystart {
					seed(l3Cur, pixelC, D)
					if enableDiagonal {
						seed(l2Cur, pixelC, D)
						seed(l4Cur, pixelC, D)
					}
				}
				if x == xend-xstep && enableDiagonal {
					seed(l4Cur, pixelC, D)
				}

				if x != xstart {
					dx := mvx[y*Wh+x] - mvx[y*Wh+x-xstep]
					dy := mvy[y*Wh+x] - mvy[y*Wh+x-xstep]
					p2 := effectiveP2(P2, adaptiveP2Enabled, int(I1[y*W+x]), int(I1[y*W+x-xstep]))
					sgmStep(l1Cur, l1Pre, pixelC, dx, dy, Wx, Wy, P1, p2)
				}
				if y != ystart {
					dx := mvx[y*Wh+x] - mvx[(y-ystep)*Wh+x]
					dy := mvy[y*Wh+x] - mvy[(y-ystep)*Wh+x]
					p2 := effectiveP2(P2, adaptiveP2Enabled, int(I1[y*W+x]), int(I1[(y-ystep)*W+x]))
					sgmStep(l3Cur, l3Pre, pixelC, dx, dy, Wx, Wy, P1, p2)
				}
				if enableDiagonal {
					if x != xstart && y != ystart {
						dx := mvx[y*Wh+x] - mvx[(y-ystep)*Wh+x-xstep]
						dy := mvy[y*Wh+x] - mvy[(y-ystep)*Wh+x-xstep]
						p2 := effectiveP2(P2, adaptiveP2Enabled, int(I1[y*W+x]), int(I1[(y-ystep)*W+x-xstep]))
						sgmStep(l2Cur, l2Pre, pixelC, dx, dy, Wx, Wy, P1, p2)
					}
					if x != xend-xstep && y != ystart {
						dx := mvx[y*Wh+x] - mvx[(y-ystep)*Wh+x+xstep]
						dy := mvy[y*Wh+x] - mvy[(y-ystep)*Wh+x+xstep]
						p2 := effectiveP2(P2, adaptiveP2Enabled, int(I1[y*W+x]), int(I1[(y-ystep)*W+x+xstep]))
						sgmStep(l4Cur, l4Pre, pixelC, dx, dy, Wx, Wy, P1, p2)
					}
				}

				for d := 0; d < D; d++ {
					S[off+d] += uint32(l1Cur[d]) + uint32(l3Cur[d])
				}
				if enableDiagonal {
					for d := 0; d < D; d++ {
						S[off+d] += uint32(l2Cur[d]) + uint32(l4Cur[d])
					}
				}

				buf.l1.flip()
			}
			buf.l3.flip()
			if enableDiagonal {
				buf.l2.flip()
				buf.l4.flip()
			}
		}
	}
}

// seed initializes a leading-edge lane with the local matching cost and a
// zero running minimum, per §4.3's boundary initialization rule.
func seed(lane []PathCost, C []uint8, D int) {
	for i := 0; i < D; i++ {
		lane[i] = PathCost(C[i])
	}
	lane[D] = 0
}

func effectiveP2(P2 int, adaptive bool, pixCur, pixPre int) int {
	if !adaptive {
		return P2
	}
	diff := pixCur - pixPre
	if diff < 0 {
		diff = -diff
	}
	if diff > AdaptiveP2Threshold {
		return P2 / AdaptiveP2Divisor
	}
	return P2
}

// sgmStep computes one direction's path cost for the pixel at the current
// scan position, given the previous position's finished path cost Lpre and
// the hint differential (dx, dy) between the two positions' hint vectors.
func sgmStep(L, Lpre []PathCost, C []uint8, dx, dy float64, Wx, Wy, P1, P2 int) {
	D := Wx * Wy
	LpreMin := int(Lpre[D])
	minPath := 0
	first := true

	for sx := 0; sx < Wx; sx++ {
		for sy := 0; sy < Wy; sy++ {
			d := sx*Wy + sy
			xpre := roundHalfUp(float64(sx) + dx)
			ypre := roundHalfUp(float64(sy) + dy)

			min1 := LpreMin + P2
			if xpre >= 0 && xpre < Wx && ypre >= 0 && ypre < Wy {
				min1 = int(Lpre[xpre*Wy+ypre])
			}

			min2 := LpreMin + P2
			for k := -2; k <= 2; k++ {
				ty := ypre + k
				if ty < 0 || ty >= Wy {
					continue
				}
				for m := -2; m <= 2; m++ {
					if k == 0 && m == 0 {
						continue
					}
					tx := xpre + m
					if tx < 0 || tx >= Wx {
						continue
					}
					cand := int(Lpre[tx*Wy+ty]) + P1
					if cand < min2 {
						min2 = cand
					}
				}
			}

			// min3 is retained for fidelity with the source recurrence,
			// which computes it identically to the P2 ceiling; it never
			// changes the result of best below.
			min3 := LpreMin + P2

			best := min1
			if min2 < best {
				best = min2
			}
			if min3 < best {
				best = min3
			}

			val := int(C[d]) + best - LpreMin
			L[d] = PathCost(val)
			if first || val < minPath {
				minPath = val
				first = false
			}
		}
	}
	L[D] = PathCost(minPath)
}

// roundHalfUp implements floor(v + 0.5), the round-half-up convention
// pinned for the hint-differential rounding in §4.3 (matches §4.2's
// costvolume rounding so both stages agree on negative-value handling).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
