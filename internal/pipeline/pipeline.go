// Package pipeline decodes the two frames named on the CLI concurrently.
//
// A flowsgm run only ever has two input images (unlike the batch/directory
// build this package's worker pool originally fanned out over), so each
// frame is decoded on its own goroutine and the call waits for both. If
// either decode fails, the error is returned and neither frame's result is
// kept.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/AnyUserName/flowsgm/internal/ioimg"
)

// FramePair is the result of decoding both input images.
type FramePair struct {
	I1, I2 []uint8
	W1, H1 int
	W2, H2 int
}

// DecodeFramePair decodes path1 and path2 to grayscale planes concurrently,
// one goroutine per frame joined by a sync.WaitGroup (no semaphore: there
// are only ever two sources).
func DecodeFramePair(path1, path2 string) (FramePair, error) {
	var fp FramePair
	var err1, err2 error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		fp.I1, fp.W1, fp.H1, err1 = ioimg.DecodeGray(path1)
	}()
	go func() {
		defer wg.Done()
		fp.I2, fp.W2, fp.H2, err2 = ioimg.DecodeGray(path2)
	}()
	wg.Wait()

	if err1 != nil {
		return FramePair{}, fmt.Errorf("decode %s: %w", path1, err1)
	}
	if err2 != nil {
		return FramePair{}, fmt.Errorf("decode %s: %w", path2, err2)
	}
	if fp.W1 != fp.W2 || fp.H1 != fp.H2 {
		return FramePair{}, fmt.Errorf("frame size mismatch: %dx%d vs %dx%d", fp.W1, fp.H1, fp.W2, fp.H2)
	}
	return fp, nil
}
