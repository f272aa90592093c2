package costvolume

import "testing"

func TestLabel_Bijection(t *testing.T) {
	rx, ry := 2, 3
	D := Dims(rx, ry)
	seen := make([]bool, D)
	for ox := -rx; ox <= rx; ox++ {
		for oy := -ry; oy <= ry; oy++ {
			d := Label(ox, oy, rx, ry)
			if d < 0 || d >= D {
				t.Fatalf("offset (%d,%d): label %d out of range [0,%d)", ox, oy, d, D)
			}
			if seen[d] {
				t.Fatalf("offset (%d,%d): label %d visited twice", ox, oy, d)
			}
			seen[d] = true
		}
	}
	for d, s := range seen {
		if !s {
			t.Fatalf("label %d never visited", d)
		}
	}
}

func zeroHint(W, H int) (mvx, mvy []float64) {
	mvx = make([]float64, W*H)
	mvy = make([]float64, W*H)
	return
}

func TestBuild_BorderCostBoundedByMaxPopcount(t *testing.T) {
	W, H := 6, 6
	cen1 := make([]uint32, W*H)
	cen2 := make([]uint32, W*H)
	for i := range cen1 {
		cen1[i] = uint32(i * 12345)
		cen2[i] = uint32(i*12345) ^ 0xFF
	}
	mvx, mvy := zeroHint(W, H)
	ra, rx, ry := 2, 1, 1
	D := Dims(rx, ry)
	C := make([]uint8, W*H*D)
	Build(cen1, cen2, W, H, mvx, mvy, W, H, ra, rx, ry, C)

	// Corner pixel (0,0): aggregation window mostly out of image. Every
	// out-of-range sample contributes DefaultCost and every in-range sample
	// a popcount of at most 24, so the averaged cost cannot exceed 24 (it
	// can exceed DefaultCost: here 9 in-range samples of 8 plus 16 of 5
	// average to 6).
	d := Label(0, 0, rx, ry)
	c := C[(0*W+0)*D+d]
	if int(c) > 24 {
		t.Errorf("corner cost %d exceeds max possible popcount", c)
	}
}

func TestBuild_IdentityZeroCost(t *testing.T) {
	W, H := 10, 10
	cen := make([]uint32, W*H)
	for i := range cen {
		cen[i] = uint32(i*97 + 3)
	}
	mvx, mvy := zeroHint(W, H)
	ra, rx, ry := 1, 1, 1
	D := Dims(rx, ry)
	C := make([]uint8, W*H*D)
	Build(cen, cen, W, H, mvx, mvy, W, H, ra, rx, ry, C)

	d0 := Label(0, 0, rx, ry)
	// Interior pixels (away from border) should have exactly zero cost at
	// offset (0,0) since cen1 == cen2 and the hint is zero.
	for y := ra; y < H-ra; y++ {
		for x := ra; x < W-ra; x++ {
			c := C[(y*W+x)*D+d0]
			if c != 0 {
				t.Fatalf("pixel (%d,%d): expected zero cost at identity offset, got %d", x, y, c)
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	W, H := 20, 16
	cen1 := make([]uint32, W*H)
	cen2 := make([]uint32, W*H)
	for i := range cen1 {
		cen1[i] = uint32(i * 37)
		cen2[i] = uint32(i*37 + 17)
	}
	mvx, mvy := zeroHint(W, H)
	ra, rx, ry := 2, 3, 2
	D := Dims(rx, ry)
	C1 := make([]uint8, W*H*D)
	C2 := make([]uint8, W*H*D)
	Build(cen1, cen2, W, H, mvx, mvy, W, H, ra, rx, ry, C1)
	Build(cen1, cen2, W, H, mvx, mvy, W, H, ra, rx, ry, C2)
	for i := range C1 {
		if C1[i] != C2[i] {
			t.Fatalf("index %d: non-deterministic %d vs %d", i, C1[i], C2[i])
		}
	}
}

func TestRoundHalfUp_Negative(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0.4, 0},
		{0.5, 1},
		{0.9, 1},
		{-0.4, 0},
		{-0.5, 0},
		{-0.6, -1},
		{-1.5, -1},
	}
	for _, c := range cases {
		got := roundHalfUp(c.in)
		if got != c.want {
			t.Errorf("roundHalfUp(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
