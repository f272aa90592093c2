// Package profile holds named presets of flow.Params, the same "pick one
// name instead of ten flags" convenience the teacher's profile package gave
// image-variant builds, reworked around search-window/penalty/pass-count
// tuning instead of target widths and encode quality.
package profile

import "github.com/AnyUserName/flowsgm/internal/flow"

// Profile bundles a pyramid level count with a flow.Params tuning.
type Profile struct {
	Name   string
	Levels int
	Params flow.Params
}

// Built-in profiles, in increasing order of search cost.
var profiles = map[string]Profile{
	"fast": {
		Name:   "fast",
		Levels: 2,
		Params: flow.Params{
			Rx: 2, Ry: 2, Ra: 1,
			P1: 2, P2: 16,
			EnableDiagonal: false,
			TotalPass:      1,
			AdaptiveP2:     false,
			SubPixelRefine: true,
		},
	},
	"balanced": {
		Name:   "balanced",
		Levels: 3,
		Params: flow.Params{
			Rx: 4, Ry: 4, Ra: 2,
			P1: 2, P2: 24,
			EnableDiagonal: true,
			TotalPass:      2,
			AdaptiveP2:     true,
			SubPixelRefine: true,
		},
	},
	"quality": {
		Name:   "quality",
		Levels: 4,
		Params: flow.Params{
			Rx: 7, Ry: 7, Ra: 3,
			P1: 3, P2: 32,
			EnableDiagonal: true,
			TotalPass:      2,
			AdaptiveP2:     true,
			SubPixelRefine: true,
		},
	},
}

// Get returns a profile by name. Falls back to "balanced" if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["balanced"]
	p.Name = name // preserve requested name so callers can report the miss
	return p
}

// Apply returns p's own Params, overriding base entirely — a selected
// profile replaces per-flag tuning rather than layering on top of it.
func (p Profile) Apply(base flow.Params) flow.Params {
	return p.Params
}
