package timeline

import "testing"

func TestClipAt_Boundaries(t *testing.T) {
	l := ComputeLayout(testClips())

	clipID, local, ok := l.ClipAt(0)
	if !ok || clipID != "a" || local != 0 {
		t.Errorf("ClipAt(0) = (%s, %v, %v), want (a, 0, true)", clipID, local, ok)
	}

	clipID, local, ok = l.ClipAt(100)
	if !ok || clipID != "c" {
		t.Fatalf("ClipAt(100) = (%s, %v, %v), want clip c", clipID, local, ok)
	}
	if !almostEqual(local, l.Entry("c").SafeDuration) {
		t.Errorf("ClipAt(100) local = %v, want safe duration %v", local, l.Entry("c").SafeDuration)
	}
}

func TestClipAt_MidSequence(t *testing.T) {
	// 50% of 30s lands at 15s: past A (ends 10) and past B's floor slot
	// (ends 10.01), 5 seconds into C.
	l := ComputeLayout(testClips())

	clipID, local, ok := l.ClipAt(50)
	if !ok {
		t.Fatal("ClipAt(50) not ok")
	}
	if clipID != "c" {
		t.Errorf("ClipAt(50) clip = %s, want c", clipID)
	}
	if !almostEqual(local, 5) {
		t.Errorf("ClipAt(50) local = %v, want 5", local)
	}
}

func TestClipAt_ClampsPercent(t *testing.T) {
	l := ComputeLayout(testClips())

	clipID, local, _ := l.ClipAt(-20)
	if clipID != "a" || local != 0 {
		t.Errorf("ClipAt(-20) = (%s, %v), want (a, 0)", clipID, local)
	}

	clipID, _, _ = l.ClipAt(250)
	if clipID != "c" {
		t.Errorf("ClipAt(250) clip = %s, want c", clipID)
	}
}

func TestClipAt_EmptyAndZeroTotal(t *testing.T) {
	if _, _, ok := (Layout{}).ClipAt(50); ok {
		t.Error("ClipAt on empty layout must not resolve")
	}

	// All durations unknown: actual total is 0, seeking is a no-op.
	l := ComputeLayout([]*Clip{{ID: "x"}, {ID: "y"}})
	if _, _, ok := l.ClipAt(50); ok {
		t.Error("ClipAt with zero actual total must not resolve")
	}
}

func TestPercentFor_Inverse(t *testing.T) {
	l := ComputeLayout(testClips())

	p, ok := l.PercentFor("c", 5)
	if !ok || !almostEqual(p, 50) {
		t.Errorf("PercentFor(c, 5) = (%v, %v), want (50, true)", p, ok)
	}

	// Local time beyond the clip is clamped to its safe duration.
	p, ok = l.PercentFor("a", 9999)
	if !ok || !almostEqual(p, 10.0/30*100) {
		t.Errorf("PercentFor(a, 9999) = (%v, %v), want clip end", p, ok)
	}

	if _, ok := l.PercentFor("missing", 0); ok {
		t.Error("PercentFor(missing) must not resolve")
	}
}

func TestSeekRoundTrip(t *testing.T) {
	// Round-trip law holds whenever all durations are known and positive.
	l := ComputeLayout([]*Clip{
		{ID: "a", Duration: 3.5},
		{ID: "b", Duration: 12},
		{ID: "c", Duration: 0.25},
		{ID: "d", Duration: 48},
	})

	for p := 0.0; p <= 100; p += 2.5 {
		clipID, local, ok := l.ClipAt(p)
		if !ok {
			t.Fatalf("ClipAt(%v) not ok", p)
		}
		back, ok := l.PercentFor(clipID, local)
		if !ok {
			t.Fatalf("PercentFor(%s, %v) not ok", clipID, local)
		}
		if !almostEqual(back, p) {
			t.Errorf("round trip %v -> (%s, %v) -> %v", p, clipID, local, back)
		}
	}
}

func TestStartPercent(t *testing.T) {
	l := ComputeLayout(testClips())

	p, ok := l.StartPercent("c")
	if !ok || !almostEqual(p, 10.0/30*100) {
		t.Errorf("StartPercent(c) = (%v, %v), want 33.33", p, ok)
	}
	if _, ok := l.StartPercent("missing"); ok {
		t.Error("StartPercent(missing) must not resolve")
	}
}
