// Package cache provides content-addressed on-disk markers for per-level
// pyramid outputs, keyed by the image bytes, level index, and the flow
// parameters that produced them, so a rerun can tell which levels were
// already computed. Only a completion marker is stored per key; no flow
// output is kept in the cache and nothing here skips recomputation.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/flowsgm/internal/flow"
)

// Key is a stable digest identifying one pyramid level's cached output.
type Key string

// NewKey derives a Key from the two level images' raw bytes, the level
// index, and the flow parameters. Any change to any of these changes the
// key; identical inputs always yield the same key.
func NewKey(img1, img2 []byte, level int, p flow.Params) Key {
	h := xxhash.New()
	h.Write(img1)
	h.Write(img2)
	writeParams(h, level, p)
	return digestKey(h)
}

// NewKeyFromFiles derives a Key the same way NewKey does, but streams the
// two image files straight into the hash instead of reading them fully
// into memory first — the only caller, cmd/estimate.go, only ever needs
// the digest, not the bytes.
func NewKeyFromFiles(path1, path2 string, level int, p flow.Params) (Key, error) {
	h := xxhash.New()
	for _, path := range [2]string{path1, path2} {
		if err := copyFileInto(h, path); err != nil {
			return "", err
		}
	}
	writeParams(h, level, p)
	return digestKey(h), nil
}

func copyFileInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func writeParams(h io.Writer, level int, p flow.Params) {
	writeInt(h, level)
	writeInt(h, p.Rx)
	writeInt(h, p.Ry)
	writeInt(h, p.Ra)
	writeInt(h, p.P1)
	writeInt(h, p.P2)
	writeInt(h, p.TotalPass)
	writeBool(h, p.EnableDiagonal)
	writeBool(h, p.AdaptiveP2)
	writeBool(h, p.SubPixelRefine)
}

func writeInt(h io.Writer, v int) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(int64(v)))
	h.Write(b[:])
}

func writeBool(h io.Writer, v bool) {
	if v {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

// digestKey renders the accumulated xxHash64 state as a 16-character hex
// string — the full 8-byte digest, not a truncation.
func digestKey(h *xxhash.Digest) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h.Sum64())
	return Key(hex.EncodeToString(b[:]))
}

// Dir is a cache root: one subdirectory per Key under root.
type Dir struct {
	root string
}

// Open returns a Dir rooted at root, creating root if needed.
func Open(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

// Path returns the directory reserved for the given key, creating it if
// it doesn't already exist.
func (d *Dir) Path(key Key) (string, error) {
	p := filepath.Join(d.root, string(key))
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// Has reports whether a cache entry's marker file already exists, i.e.
// whether the level identified by key was previously marked complete.
func (d *Dir) Has(key Key) bool {
	_, err := os.Stat(filepath.Join(d.root, string(key), ".complete"))
	return err == nil
}

// MarkComplete writes the marker file that Has checks for, creating the
// key's directory if needed.
func (d *Dir) MarkComplete(key Key) error {
	p, err := d.Path(key)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p, ".complete"), nil, 0o644)
}
