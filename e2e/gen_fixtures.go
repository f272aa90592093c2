//go:build ignore

// gen_fixtures creates a synthetic textured frame pair for the E2E smoke
// test: a base frame and a frame shifted by a known integer offset, so the
// expected flow estimate is known ahead of time.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

const shiftX = 3

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(dir, 0o755)

	base := textured(128, 96)
	writeImage(filepath.Join(dir, "frame0.png"), base)
	writeImage(filepath.Join(dir, "frame1.png"), shifted(base, shiftX))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] wrote frame0.png/frame1.png (shift=%d,0) to %s\n", shiftX, dir)
}

// textured renders a checkerboard-plus-ramp pattern with enough local
// structure for the census transform to produce non-degenerate codes
// everywhere (a flat image has zero Hamming distance for every offset).
func textured(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := (x*7 + y*13) % 256
			if (x/8+y/8)%2 == 0 {
				v = (v + 96) % 256
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// shifted returns a copy of src translated by dx pixels along x, clamping
// at the border (replicating the edge column rather than wrapping).
func shifted(src *image.Gray, dx int) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx := x - dx
			if sx < b.Min.X {
				sx = b.Min.X
			}
			if sx >= b.Max.X {
				sx = b.Max.X - 1
			}
			out.SetGray(x, y, src.GrayAt(sx, y))
		}
	}
	return out
}

func writeImage(path string, img *image.Gray) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}
