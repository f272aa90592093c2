package profile

import "testing"

func TestGet_KnownNamesRoundtripName(t *testing.T) {
	for _, name := range []string{"fast", "balanced", "quality"} {
		p := Get(name)
		if p.Name != name {
			t.Errorf("Get(%q).Name = %q", name, p.Name)
		}
		if p.Levels <= 0 {
			t.Errorf("Get(%q).Levels = %d, want > 0", name, p.Levels)
		}
		if p.Params.P1 >= p.Params.P2 {
			t.Errorf("Get(%q): P1 (%d) >= P2 (%d)", name, p.Params.P1, p.Params.P2)
		}
	}
}

func TestGet_UnknownNameFallsBackToBalanced(t *testing.T) {
	p := Get("nonexistent")
	if p.Name != "nonexistent" {
		t.Errorf("Name = %q, want request preserved", p.Name)
	}
	if p.Params != profiles["balanced"].Params {
		t.Errorf("unknown profile should fall back to balanced params")
	}
}

func TestApply_OverridesBaseEntirely(t *testing.T) {
	base := profiles["fast"].Params
	got := Get("quality").Apply(base)
	if got != profiles["quality"].Params {
		t.Errorf("Apply did not return the selected profile's params")
	}
}

func TestProfiles_IncreasingCostOrdering(t *testing.T) {
	fast, quality := profiles["fast"], profiles["quality"]
	if fast.Params.Rx >= quality.Params.Rx || fast.Params.Ry >= quality.Params.Ry {
		t.Errorf("expected fast search window to be smaller than quality's")
	}
	if fast.Levels >= quality.Levels {
		t.Errorf("expected fast to use fewer pyramid levels than quality")
	}
}
