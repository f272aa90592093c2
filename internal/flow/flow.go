// Package flow is the core facade: it wires the census transform, the
// cost-volume builder, the SGM path aggregator, and the argmin/sub-pixel
// refiner into a single pure function over one image pair and one hint
// field. It has no file, network, or CLI surface — callers (the pyramid
// driver, the CLI) own all of that.
package flow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AnyUserName/flowsgm/internal/census"
	"github.com/AnyUserName/flowsgm/internal/costvolume"
	"github.com/AnyUserName/flowsgm/internal/refine"
	"github.com/AnyUserName/flowsgm/internal/sgm"
)

// Params bundles every tunable of a single Estimate call.
type Params struct {
	Rx, Ry         int  // search half-window, x and y
	Ra             int  // aggregation half-window
	P1, P2         int  // SGM penalties, 0 < P1 < P2
	EnableDiagonal bool // 4-path vs 8-path aggregation
	TotalPass      int  // 1 or 2
	AdaptiveP2     bool
	SubPixelRefine bool
}

// Field is the result of one Estimate call: a dense per-pixel label field
// plus the optional sub-pixel correction, labeled with the Params that
// produced it so downstream consumers (pyramid, report, .flo writer) don't
// need a side channel.
type Field struct {
	W, H   int
	Rx, Ry int
	BestD  []uint32
	MinC   []uint32
	MvSub  [2][]float64 // [0]=x, [1]=y
	Params Params

	// DefaultCostFraction is the fraction of (pixel, label) entries in the
	// cost volume whose value equals the border sentinel
	// (costvolume.DefaultCost) — a coarse diagnostic for how much of the
	// search fell outside the valid image. An entry whose in-image samples
	// happen to average to the same value is counted too.
	DefaultCostFraction float64
}

var (
	// ErrBadHintShape is returned when the hint field is smaller than the image.
	ErrBadHintShape = errors.New("flow: hint field smaller than image")
	// ErrBadPenalties is returned when P1/P2 don't satisfy 0 < P1 < P2.
	ErrBadPenalties = errors.New("flow: requires 0 < P1 < P2")
	// ErrBadPassCount is returned when TotalPass is not 1 or 2.
	ErrBadPassCount = errors.New("flow: TotalPass must be 1 or 2")
	// ErrShapeMismatch is returned when I1/I2 disagree with the declared W*H.
	ErrShapeMismatch = errors.New("flow: image/hint slice length mismatch")
)

func (p Params) dims() int { return (2*p.Rx + 1) * (2*p.Ry + 1) }

func (p Params) validate(W, H, Wh, Hh int) error {
	if Wh < W || Hh < H {
		return ErrBadHintShape
	}
	if p.P1 <= 0 || p.P1 >= p.P2 {
		return ErrBadPenalties
	}
	if p.TotalPass != 1 && p.TotalPass != 2 {
		return ErrBadPassCount
	}
	return nil
}

// scratch holds the level-sized buffers Estimate needs; pooled across
// Estimate calls within one process (e.g. pyramid levels) to amortize
// allocation, the same role the teacher's workBuf pool plays for thumbhash.
type scratch struct {
	cen1, cen2 []uint32
	C          []uint8
	S          []uint32
}

var scratchPool = sync.Pool{New: func() any { return new(scratch) }}

func growU32(s []uint32, n int) []uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]uint32, n)
}

func growU8(s []uint8, n int) []uint8 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]uint8, n)
}

func zeroU32(s []uint32) {
	for i := range s {
		s[i] = 0
	}
}

// Estimate computes a dense flow Field for one image pair. I1, I2 are W*H
// intensity planes; mvx, mvy are the hint field's two planes, shape Wh*Hh
// (Wh>=W, Hh>=H). Returns a precondition error (see the Err* values above)
// with no partial output on failure.
func Estimate(I1, I2 []uint8, W, H int, mvx, mvy []float64, Wh, Hh int, p Params) (*Field, error) {
	if err := p.validate(W, H, Wh, Hh); err != nil {
		return nil, err
	}
	if len(I1) != W*H || len(I2) != W*H {
		return nil, fmt.Errorf("%w: I1/I2", ErrShapeMismatch)
	}
	if len(mvx) != Wh*Hh || len(mvy) != Wh*Hh {
		return nil, fmt.Errorf("%w: hint planes", ErrShapeMismatch)
	}

	D := p.dims()

	sc := scratchPool.Get().(*scratch)
	defer scratchPool.Put(sc)

	sc.cen1 = growU32(sc.cen1, W*H)
	sc.cen2 = growU32(sc.cen2, W*H)
	sc.C = growU8(sc.C, W*H*D)
	sc.S = growU32(sc.S, W*H*D)
	zeroU32(sc.S)

	cen1u32 := sc.cen1
	cen2u32 := sc.cen2

	census.Transform(I1, W, H, cen1u32)
	census.Transform(I2, W, H, cen2u32)

	costvolume.Build(cen1u32, cen2u32, W, H, mvx, mvy, Wh, Hh, p.Ra, p.Rx, p.Ry, sc.C)

	sgm.Aggregate(sc.C, I1, W, H, 2*p.Rx+1, 2*p.Ry+1, mvx, mvy, Wh, Hh,
		p.P1, p.P2, p.EnableDiagonal, p.TotalPass, p.AdaptiveP2, sc.S)

	out := refine.NewResult(W, H)
	refine.Run(sc.S, W, H, 2*p.Rx+1, 2*p.Ry+1, p.SubPixelRefine, out)

	return &Field{
		W: W, H: H, Rx: p.Rx, Ry: p.Ry,
		BestD: out.BestD, MinC: out.MinC, MvSub: out.MvSub,
		Params:              p,
		DefaultCostFraction: defaultCostFraction(sc.C),
	}, nil
}

func defaultCostFraction(C []uint8) float64 {
	if len(C) == 0 {
		return 0
	}
	var hits int
	for _, c := range C {
		if c == costvolume.DefaultCost {
			hits++
		}
	}
	return float64(hits) / float64(len(C))
}
