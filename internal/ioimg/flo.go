package ioimg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/AnyUserName/flowsgm/internal/flow"
)

// floMagic is the Middlebury .flo format's sentinel float, used to detect
// endianness and file corruption on read.
const floMagic = 202021.25

// WriteFlo writes a flow.Field as a Middlebury .flo file: the field is
// first densified from (BestD, MvSub) into per-pixel (u, v) float32
// displacement vectors (integer offset plus sub-pixel correction), then
// written magic/width/height followed by interleaved (u, v) float32 rows.
func WriteFlo(f *flow.Field, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, float32(floMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(f.W)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(f.H)); err != nil {
		return err
	}

	Wy := 2*f.Ry + 1
	for i := 0; i < f.W*f.H; i++ {
		ox := int(f.BestD[i])/Wy - f.Rx
		oy := int(f.BestD[i])%Wy - f.Ry
		u := float32(ox) + float32(f.MvSub[0][i])
		v := float32(oy) + float32(f.MvSub[1][i])
		if err := binary.Write(w, binary.LittleEndian, u); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadFlo loads a Middlebury .flo file's (u, v) planes and dimensions.
func ReadFlo(path string) (u, v []float32, w, h int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var magic float32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, nil, 0, 0, err
	}
	if math.Abs(float64(magic)-floMagic) > 1e-3 {
		return nil, nil, 0, 0, fmt.Errorf("%s: bad .flo magic %v", path, magic)
	}

	var w32, h32 int32
	if err := binary.Read(r, binary.LittleEndian, &w32); err != nil {
		return nil, nil, 0, 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h32); err != nil {
		return nil, nil, 0, 0, err
	}
	w, h = int(w32), int(h32)

	u = make([]float32, w*h)
	v = make([]float32, w*h)
	for i := 0; i < w*h; i++ {
		if err := binary.Read(r, binary.LittleEndian, &u[i]); err != nil {
			return nil, nil, 0, 0, err
		}
		if err := binary.Read(r, binary.LittleEndian, &v[i]); err != nil {
			return nil, nil, 0, 0, err
		}
	}
	return u, v, w, h, nil
}
