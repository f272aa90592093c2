package ioimg

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/flowsgm/internal/flow"
)

func TestToGray_FlatColorYieldsFlatIntensity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	gray := ToGray(img)
	for i, v := range gray {
		if v != 100 {
			t.Fatalf("pixel %d: got %d, want 100", i, v)
		}
	}
}

func TestToGray_LumaWeighting(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	gray := ToGray(img)
	r := lumaR
	want := uint8(r*255 + 0.5)
	if gray[0] != want {
		t.Errorf("pure red: got %d, want %d", gray[0], want)
	}
}

func TestToGray_GrayFastPath(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 10)
	}
	gray := ToGray(img)
	if len(gray) != 6 {
		t.Fatalf("len=%d, want 6", len(gray))
	}
}

func TestFlo_RoundTrip(t *testing.T) {
	W, H, Rx, Ry := 4, 3, 2, 2
	Wy := 2*Ry + 1
	D := (2*Rx + 1) * Wy
	f := &flow.Field{
		W: W, H: H, Rx: Rx, Ry: Ry,
		BestD: make([]uint32, W*H),
		MinC:  make([]uint32, W*H),
		MvSub: [2][]float64{make([]float64, W*H), make([]float64, W*H)},
	}
	for i := range f.BestD {
		ox, oy := 1, -1
		f.BestD[i] = uint32((ox+Rx)*Wy + (oy + Ry))
		f.MvSub[0][i] = 0.25
		f.MvSub[1][i] = -0.5
	}
	_ = D

	dir := t.TempDir()
	path := filepath.Join(dir, "test.flo")
	if err := WriteFlo(f, path); err != nil {
		t.Fatalf("WriteFlo: %v", err)
	}

	u, v, w, h, err := ReadFlo(path)
	if err != nil {
		t.Fatalf("ReadFlo: %v", err)
	}
	if w != W || h != H {
		t.Fatalf("dims: got %dx%d, want %dx%d", w, h, W, H)
	}
	for i := range u {
		if got, want := float64(u[i]), 1.25; absDiff(got, want) > 1e-4 {
			t.Fatalf("u[%d]=%v, want %v", i, got, want)
		}
		if got, want := float64(v[i]), -1.5; absDiff(got, want) > 1e-4 {
			t.Fatalf("v[%d]=%v, want %v", i, got, want)
		}
	}
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

func TestFlo_BadMagicRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.flo")
	if err := os.WriteFile(path, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, _, err := ReadFlo(path); err == nil {
		t.Fatalf("expected error for corrupt .flo magic")
	}
}

func TestWriteColorWheelPNG_Smoke(t *testing.T) {
	W, H := 3, 3
	u := make([]float32, W*H)
	v := make([]float32, W*H)
	u[4] = 2
	v[4] = -1

	dir := t.TempDir()
	path := filepath.Join(dir, "viz.png")
	if err := WriteColorWheelPNG(u, v, W, H, 0, path); err != nil {
		t.Fatalf("WriteColorWheelPNG: %v", err)
	}
}
