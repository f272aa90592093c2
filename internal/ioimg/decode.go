// Package ioimg decodes frame images into the grayscale intensity planes
// the flow core operates on, and encodes flow fields back out as .flo
// files and color-wheel visualization PNGs.
package ioimg

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Luma coefficients for the standard Rec. 601 grayscale conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// DecodeGray loads the image at path and returns its Rec. 601 grayscale
// plane plus its dimensions.
func DecodeGray(path string) (gray []uint8, w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	return ToGray(img), img.Bounds().Dx(), img.Bounds().Dy(), nil
}

// ToGray converts any image.Image to a row-major Rec. 601 grayscale plane.
func ToGray(img image.Image) []uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]uint8, w*h)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			srcRow := g.Pix[(y)*g.Stride : (y)*g.Stride+w]
			copy(out[y*w:(y+1)*w], srcRow)
		}
		return out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA() returns 16-bit-scaled channels; reduce to 8-bit before
			// applying the luma weights.
			v := lumaR*float64(r>>8) + lumaG*float64(g>>8) + lumaB*float64(b>>8)
			out[y*w+x] = uint8(v + 0.5)
		}
	}
	return out
}
