package timeline

import (
	"os"
	"strings"
	"testing"

	"github.com/cutroom/cutroom-agent/internal/media"
)

func newTestEngine(t *testing.T) (*Engine, *recordSurface) {
	t.Helper()
	surface := &recordSurface{}
	return NewEngine(Config{Surface: surface}), surface
}

// importSequence builds the A(10,t0) B(0,t1) C(20,t0) sequence with the
// first clip already active.
func importSequence(t *testing.T, e *Engine, surface *recordSurface) (a, b, c ClipInfo) {
	t.Helper()

	a, err := e.ImportClip("A", nil, "1.0 MiB", "video/mp4")
	if err != nil {
		t.Fatalf("ImportClip(A) error = %v", err)
	}
	b, err = e.ImportClip("B", nil, "2.0 MiB", "video/webm")
	if err != nil {
		t.Fatalf("ImportClip(B) error = %v", err)
	}
	c, err = e.ImportClip("C", nil, "3.0 MiB", "video/mp4")
	if err != nil {
		t.Fatalf("ImportClip(C) error = %v", err)
	}

	e.SetClipDuration(a.ID, 10)
	e.SetClipDuration(c.ID, 20)
	e.Place(b.ID, 1, c.ID, PositionBefore) // track 1, order unchanged

	e.MetadataReady(a.ID, 10)
	surface.reset()
	return a, b, c
}

func TestEngine_FirstImportBecomesActive(t *testing.T) {
	e, surface := newTestEngine(t)

	clip, err := e.ImportClip("first", nil, "5.0 MiB", "video/mp4")
	if err != nil {
		t.Fatalf("ImportClip() error = %v", err)
	}

	snap := e.Snapshot()
	if snap.ActiveClipID != clip.ID {
		t.Errorf("ActiveClipID = %s, want %s", snap.ActiveClipID, clip.ID)
	}
	if snap.State != AwaitingLoad {
		t.Errorf("State = %v, want AwaitingLoad", snap.State)
	}
	if len(surface.loads) != 1 || surface.loads[0] != clip.ID {
		t.Errorf("loads = %v, want [%s]", surface.loads, clip.ID)
	}

	second, _ := e.ImportClip("second", nil, "1.0 MiB", "video/mp4")
	if snap := e.Snapshot(); snap.ActiveClipID == second.ID {
		t.Error("second import stole the active target")
	}
}

func TestEngine_DurationArrivesAfterLayout(t *testing.T) {
	e, _ := newTestEngine(t)

	clip, _ := e.ImportClip("late", nil, "1.0 MiB", "video/mp4")
	before := e.Snapshot()
	if before.ActualTotal != 0 {
		t.Fatalf("ActualTotal before probe = %v, want 0", before.ActualTotal)
	}
	if !almostEqual(before.Entries[0].WidthPercent, 100) {
		t.Errorf("unknown-duration clip width = %v, want 100", before.Entries[0].WidthPercent)
	}

	e.SetClipDuration(clip.ID, 12.5)

	after := e.Snapshot()
	if !almostEqual(after.ActualTotal, 12.5) {
		t.Errorf("ActualTotal after probe = %v, want 12.5", after.ActualTotal)
	}
	if !almostEqual(after.Clips[0].Duration, 12.5) {
		t.Errorf("clip duration = %v, want 12.5", after.Clips[0].Duration)
	}
}

func TestEngine_SetClipDuration_UnknownID(t *testing.T) {
	e, _ := newTestEngine(t)
	e.ImportClip("a", nil, "1.0 MiB", "video/mp4")

	// Probe resolving after the clip was removed must not disturb anything.
	e.SetClipDuration("gone", 99)

	if snap := e.Snapshot(); snap.ActualTotal != 0 {
		t.Errorf("ActualTotal = %v, want 0", snap.ActualTotal)
	}
}

func TestEngine_MetadataRecordsDuration(t *testing.T) {
	e, surface := newTestEngine(t)

	// No prober configured: the surface metadata event is the only
	// duration source, as when ffprobe is not installed.
	clip, _ := e.ImportClip("cam", nil, "1.0 MiB", "video/mp4")
	e.MetadataReady(clip.ID, 10)

	snap := e.Snapshot()
	if snap.Clips[0].Duration != 10 {
		t.Errorf("Duration = %v, want 10 from surface metadata", snap.Clips[0].Duration)
	}
	if snap.ActualTotal != 10 {
		t.Errorf("ActualTotal = %v, want 10", snap.ActualTotal)
	}

	e.SeekGlobal(50)
	if got := surface.lastSeek(); got != 5 {
		t.Errorf("seek target = %v, want 5", got)
	}

	e.TimeUpdated(8)
	if got := e.Snapshot().Percent; !almostEqual(got, 80) {
		t.Errorf("Percent = %v, want 80", got)
	}
}

func TestEngine_SeekGlobalAcrossClips(t *testing.T) {
	e, surface := newTestEngine(t)
	_, _, c := importSequence(t, e, surface)

	e.SeekGlobal(50) // 15s: lands 5s into C

	snap := e.Snapshot()
	if snap.ActiveClipID != c.ID {
		t.Errorf("active = %s, want C", snap.ActiveClipID)
	}
	if snap.State != AwaitingLoad {
		t.Errorf("state = %v, want AwaitingLoad during swap", snap.State)
	}
	if !almostEqual(snap.Percent, 50) {
		t.Errorf("percent = %v, want 50", snap.Percent)
	}
	if len(surface.loads) != 1 || surface.loads[0] != c.ID {
		t.Fatalf("loads = %v, want [C]", surface.loads)
	}

	e.MetadataReady(c.ID, 20)

	if !almostEqual(surface.lastSeek(), 5) {
		t.Errorf("surface seek = %v, want 5", surface.lastSeek())
	}
	if snap := e.Snapshot(); snap.State != Active {
		t.Errorf("state = %v, want Active after metadata", snap.State)
	}
}

func TestEngine_SeekGlobalWithinActiveClip(t *testing.T) {
	e, surface := newTestEngine(t)
	importSequence(t, e, surface)

	e.SeekGlobal(10) // 3s into A, already active and loaded

	if len(surface.loads) != 0 {
		t.Errorf("seek within active clip reloaded the surface: %v", surface.loads)
	}
	if len(surface.seeks) != 1 || !almostEqual(surface.seeks[0], 3) {
		t.Errorf("seeks = %v, want [3]", surface.seeks)
	}
}

func TestEngine_SeekGlobalEmptyTimeline(t *testing.T) {
	e, surface := newTestEngine(t)

	e.SeekGlobal(50)

	if len(surface.loads)+len(surface.seeks) != 0 {
		t.Error("seek on empty timeline touched the surface")
	}
	if snap := e.Snapshot(); snap.Percent != 0 {
		t.Errorf("percent = %v, want 0", snap.Percent)
	}
}

func TestEngine_TimeUpdatedSyncsScrubber(t *testing.T) {
	e, surface := newTestEngine(t)
	importSequence(t, e, surface)

	e.TimeUpdated(6) // 6s into A of 30s total

	if snap := e.Snapshot(); !almostEqual(snap.Percent, 20) {
		t.Errorf("percent = %v, want 20", snap.Percent)
	}
}

func TestEngine_TimeUpdatedIgnoredWhileLoading(t *testing.T) {
	e, surface := newTestEngine(t)
	_, _, c := importSequence(t, e, surface)

	e.SeekGlobal(50) // now awaiting C's metadata
	e.TimeUpdated(2) // stale event from the old surface content

	if snap := e.Snapshot(); !almostEqual(snap.Percent, 50) {
		t.Errorf("percent = %v, want 50 untouched", snap.Percent)
	}
	e.MetadataReady(c.ID, 20)
}

func TestEngine_EndedAdvancesInGlobalOrder(t *testing.T) {
	e, surface := newTestEngine(t)
	a, b, _ := importSequence(t, e, surface)

	// A ends; the successor in the global sequence is B even though it
	// sits on the other track.
	e.Ended()

	snap := e.Snapshot()
	if snap.ActiveClipID != b.ID {
		t.Errorf("active = %s, want B (next in global order)", snap.ActiveClipID)
	}
	if len(surface.loads) != 1 || surface.loads[0] != b.ID {
		t.Errorf("loads = %v, want [B]", surface.loads)
	}
	if !almostEqual(snap.Percent, 10.0/30*100) {
		t.Errorf("percent = %v, want B start", snap.Percent)
	}

	// B's pending local time is 0.
	e.MetadataReady(b.ID, 0)
	if !almostEqual(surface.lastSeek(), 0) {
		t.Errorf("seek = %v, want 0", surface.lastSeek())
	}
	_ = a
}

func TestEngine_EndedOnLastClipIsTerminal(t *testing.T) {
	e, surface := newTestEngine(t)
	_, _, c := importSequence(t, e, surface)

	e.SelectClip(c.ID)
	e.MetadataReady(c.ID, 20)
	surface.reset()

	e.Ended()

	snap := e.Snapshot()
	if snap.ActiveClipID != c.ID {
		t.Errorf("active = %s, want C unchanged", snap.ActiveClipID)
	}
	if !almostEqual(snap.Percent, 100) {
		t.Errorf("percent = %v, want 100", snap.Percent)
	}
	if len(surface.loads) != 0 {
		t.Errorf("terminal ended reloaded the surface: %v", surface.loads)
	}

	// No further auto-advance.
	e.Ended()
	if snap := e.Snapshot(); !almostEqual(snap.Percent, 100) {
		t.Errorf("percent after second ended = %v, want 100", snap.Percent)
	}
}

func TestEngine_PlaceReordersAndRelayouts(t *testing.T) {
	e, surface := newTestEngine(t)
	a, b, _ := importSequence(t, e, surface)

	e.Place(b.ID, 0, a.ID, PositionBefore)

	snap := e.Snapshot()
	if snap.Clips[0].ID != b.ID || snap.Clips[0].Track != 0 {
		t.Errorf("clips[0] = %+v, want B on track 0", snap.Clips[0])
	}
	if snap.Entries[0].ClipID != b.ID || snap.Entries[0].Start != 0 {
		t.Errorf("entries[0] = %+v, want B at start 0", snap.Entries[0])
	}
	if snap.Entries[1].ClipID != a.ID || !almostEqual(snap.Entries[1].Start, 0) {
		// B has no actual duration, so A still starts at 0 actual seconds.
		t.Errorf("entries[1] = %+v, want A at actual start 0", snap.Entries[1])
	}
	if !almostEqual(snap.Entries[1].LayoutStart, MinSlotDuration) {
		t.Errorf("A layout start = %v, want %v", snap.Entries[1].LayoutStart, MinSlotDuration)
	}
}

func TestEngine_RemoveActiveClipFallsBackToHead(t *testing.T) {
	e, surface := newTestEngine(t)
	a, b, _ := importSequence(t, e, surface)

	if err := e.RemoveClip(a.ID); err != nil {
		t.Fatalf("RemoveClip() error = %v", err)
	}

	snap := e.Snapshot()
	if snap.ActiveClipID != b.ID {
		t.Errorf("active = %s, want new head B", snap.ActiveClipID)
	}
	if len(surface.loads) != 1 || surface.loads[0] != b.ID {
		t.Errorf("loads = %v, want [B]", surface.loads)
	}
	if len(snap.Clips) != 2 {
		t.Errorf("clip count = %d, want 2", len(snap.Clips))
	}
}

func TestEngine_RemoveLastClipGoesIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	clip, _ := e.ImportClip("only", nil, "1.0 MiB", "video/mp4")

	if err := e.RemoveClip(clip.ID); err != nil {
		t.Fatalf("RemoveClip() error = %v", err)
	}

	snap := e.Snapshot()
	if snap.State != Idle {
		t.Errorf("state = %v, want Idle", snap.State)
	}
	if snap.Percent != 0 || len(snap.Clips) != 0 {
		t.Errorf("snapshot = %+v, want empty", snap)
	}
}

func TestEngine_RemoveUnknownClip(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.RemoveClip("ghost"); err != ErrClipNotFound {
		t.Errorf("RemoveClip(ghost) error = %v, want ErrClipNotFound", err)
	}
}

func TestEngine_ResourceLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	dir := t.TempDir()

	resA, _, err := media.Stage(dir, "a.mp4", strings.NewReader("aaaa"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	resB, _, err := media.Stage(dir, "b.mp4", strings.NewReader("bbbb"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	a, _ := e.ImportClip("a", resA, "4 B", "video/mp4")
	e.ImportClip("b", resB, "4 B", "video/mp4")

	if err := e.RemoveClip(a.ID); err != nil {
		t.Fatalf("RemoveClip() error = %v", err)
	}
	if _, err := os.Stat(resA.Path()); !os.IsNotExist(err) {
		t.Error("removed clip's media still staged")
	}

	// Teardown releases the survivors, and only them; the already-released
	// resource must not be touched again.
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(resB.Path()); !os.IsNotExist(err) {
		t.Error("teardown left staged media behind")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestEngine_ClipMedia(t *testing.T) {
	e, _ := newTestEngine(t)
	res, _, err := media.Stage(t.TempDir(), "x.webm", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	clip, _ := e.ImportClip("x", res, "1 B", "video/webm")

	path, mimeType, ok := e.ClipMedia(clip.ID)
	if !ok || path != res.Path() || mimeType != "video/webm" {
		t.Errorf("ClipMedia = (%s, %s, %v)", path, mimeType, ok)
	}
	if _, _, ok := e.ClipMedia("ghost"); ok {
		t.Error("ClipMedia(ghost) resolved")
	}
}

func TestEngine_OnChangeNotified(t *testing.T) {
	surface := &recordSurface{}
	e := NewEngine(Config{Surface: surface})

	var snaps []Snapshot
	e.SetOnChange(func(s Snapshot) { snaps = append(snaps, s) })

	clip, _ := e.ImportClip("a", nil, "1.0 MiB", "video/mp4")
	e.SetClipDuration(clip.ID, 5)
	e.SeekGlobal(40)

	if len(snaps) != 3 {
		t.Fatalf("observer called %d times, want 3", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if !almostEqual(last.Percent, 40) {
		t.Errorf("last snapshot percent = %v, want 40", last.Percent)
	}
}
