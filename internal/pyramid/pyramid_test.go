package pyramid

import (
	"testing"

	"github.com/AnyUserName/flowsgm/internal/flow"
)

func rampGray(W, H int) []uint8 {
	I := make([]uint8, W*H)
	for y := 0; y < H; y++ {
		for x := 0; x < W; x++ {
			I[y*W+x] = uint8((3 * (x + y)) % 256)
		}
	}
	return I
}

func TestBuild_LevelCountAndFinestIsLast(t *testing.T) {
	W, H := 32, 24
	I1 := rampGray(W, H)
	I2 := rampGray(W, H)

	lvls, err := Build(I1, I2, W, H, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(lvls) != 3 {
		t.Fatalf("len(lvls)=%d, want 3", len(lvls))
	}
	if lvls[2].W != W || lvls[2].H != H {
		t.Errorf("finest (last) level dims: got %dx%d, want %dx%d", lvls[2].W, lvls[2].H, W, H)
	}
	if lvls[0].W >= lvls[1].W || lvls[1].W >= lvls[2].W {
		t.Errorf("levels not monotonically refining: %d, %d, %d", lvls[0].W, lvls[1].W, lvls[2].W)
	}
}

func TestBuild_RejectsZeroLevels(t *testing.T) {
	I := rampGray(4, 4)
	if _, err := Build(I, I, 4, 4, 0); err == nil {
		t.Fatalf("expected error for levels=0")
	}
}

func TestUpsampleHint_ConstantFieldStaysConstant(t *testing.T) {
	src := make([]float64, 4*4)
	for i := range src {
		src[i] = 2.5
	}
	out := UpsampleHint(src, 4, 4, 8, 8, 2.0)
	for i, v := range out {
		if v < 4.9 || v > 5.1 {
			t.Fatalf("index %d: got %v, want ~5.0 (2.5 scaled by 2)", i, v)
		}
	}
}

func TestRun_IdentityFramesYieldZeroOffsetAtEveryLevel(t *testing.T) {
	W, H := 16, 16
	I1 := rampGray(W, H)
	I2 := rampGray(W, H)
	p := flow.Params{Rx: 1, Ry: 1, Ra: 0, P1: 1, P2: 4, TotalPass: 1}

	res, err := Run(I1, I2, W, H, 2, p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Levels) != 2 {
		t.Fatalf("len(res.Levels)=%d, want 2", len(res.Levels))
	}
	zeroLabel := uint32((0+p.Rx)*(2*p.Ry+1) + (0 + p.Ry))
	for li, f := range res.Levels {
		for i, d := range f.BestD {
			if d != zeroLabel {
				t.Fatalf("level %d pixel %d: bestD=%d, want %d (zero offset)", li, i, d, zeroLabel)
			}
		}
	}
}
