package ioimg

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// WriteColorWheelPNG renders a (u, v) displacement field as a standard
// optical-flow color wheel: hue encodes direction, saturation encodes
// magnitude relative to maxMag (use 0 to auto-scale to the field's own
// maximum magnitude).
func WriteColorWheelPNG(u, v []float32, w, h int, maxMag float64, path string) error {
	if maxMag <= 0 {
		for i := range u {
			mag := math.Hypot(float64(u[i]), float64(v[i]))
			if mag > maxMag {
				maxMag = mag
			}
		}
		if maxMag == 0 {
			maxMag = 1
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			r, g, b := flowColor(float64(u[i]), float64(v[i]), maxMag)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return png.Encode(f, img)
}

// flowColor maps a displacement (u, v) to an RGB color: angle selects hue
// around the wheel, magnitude (clamped to maxMag) selects saturation.
func flowColor(u, v, maxMag float64) (r, g, b uint8) {
	angle := math.Atan2(v, u)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	mag := math.Hypot(u, v) / maxMag
	if mag > 1 {
		mag = 1
	}
	hue := angle / (2 * math.Pi)
	cr, cg, cb := hsvToRGB(hue, mag, 1)
	return cr, cg, cb
}

// hsvToRGB converts HSV in [0,1]^3 to 8-bit RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return uint8(r*255 + 0.5), uint8(g*255 + 0.5), uint8(b*255 + 0.5)
}
