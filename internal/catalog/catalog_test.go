package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dailies-server/internal/command"
	"dailies-server/internal/probe"
)

// probeRunner fakes ffprobe: it answers with canned JSON per filename and
// fails for names listed in failFor.
type probeRunner struct {
	failFor map[string]bool
	calls   int
}

func (p *probeRunner) Run(_ context.Context, _ string, args ...string) (command.Result, error) {
	p.calls++
	path := args[len(args)-1]
	name := filepath.Base(path)
	if p.failFor[name] {
		return command.Result{ExitCode: 1, Stderr: "moov atom not found"}, nil
	}
	out := fmt.Sprintf(`{
		"streams": [
			{"index":0,"codec_name":"h264","codec_type":"video","width":1920,"height":1080,"r_frame_rate":"24/1"},
			{"index":1,"codec_name":"aac","codec_type":"audio","sample_rate":"48000","channels":2}
		],
		"format": {"filename":%q,"duration":"10.000000","size":"1000"}
	}`, path)
	return command.Result{ExitCode: 0, Stdout: out}, nil
}

func (p *probeRunner) RunStream(ctx context.Context, _ func(string), name string, args ...string) (command.Result, error) {
	return p.Run(ctx, name, args...)
}

func newTestCatalog(t *testing.T, runner command.Runner) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	dailies := filepath.Join(dir, "dailies")
	if err := os.MkdirAll(dailies, 0o755); err != nil {
		t.Fatal(err)
	}
	cat := New(probe.New(runner, "ffprobe"), nil, "demo", dailies, "", filepath.Join(dir, "database.json"))
	return cat, dailies
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEligible(t *testing.T) {
	eligible := []string{"a.mp4", "b.MOV", "c.AVI", "d.Mp4"}
	for _, name := range eligible {
		if !Eligible(name) {
			t.Errorf("Expected %q to be eligible", name)
		}
	}
	ineligible := []string{"a.mkv", "notes.txt", "a.jpg", "noext"}
	for _, name := range ineligible {
		if Eligible(name) {
			t.Errorf("Expected %q to be ineligible", name)
		}
	}
}

func TestRefreshMatchesDirectory(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "one.mp4", "two.mov", "skip.txt")

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", cat.Len())
	}
	if !cat.Has("one.mp4") || !cat.Has("two.mov") {
		t.Error("Expected both eligible files to be catalogued")
	}
	if cat.Has("skip.txt") {
		t.Error("Expected ineligible file to be skipped")
	}

	entry := cat.Get("one.mp4")
	if entry == nil {
		t.Fatal("Expected entry for one.mp4")
	}
	if entry.Project != "demo" {
		t.Errorf("Expected project slug demo, got %s", entry.Project)
	}
	if entry.Video == nil || entry.Video.Codec != "h264" {
		t.Errorf("Unexpected video summary: %+v", entry.Video)
	}
	if entry.DurationSeconds != 10 {
		t.Errorf("Expected duration 10, got %g", entry.DurationSeconds)
	}
}

func TestRefreshDropsRemovedFiles(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "keep.mp4", "gone.mp4")

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", cat.Len())
	}

	if err := os.Remove(filepath.Join(dailies, "gone.mp4")); err != nil {
		t.Fatal(err)
	}
	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Second refresh failed: %v", err)
	}

	if cat.Len() != 1 {
		t.Errorf("Expected 1 entry after removal, got %d", cat.Len())
	}
	if cat.Has("gone.mp4") {
		t.Error("Expected removed file to be dropped from the catalog")
	}
}

func TestProbeFailureYieldsDegradedEntry(t *testing.T) {
	runner := &probeRunner{failFor: map[string]bool{"corrupt.mp4": true}}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "good.mp4", "corrupt.mp4")

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// The pass completes with both entries; the failed one is degraded.
	if cat.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", cat.Len())
	}

	degraded := cat.Get("corrupt.mp4")
	if degraded == nil {
		t.Fatal("Expected degraded entry for corrupt.mp4")
	}
	if degraded.Error == "" {
		t.Error("Expected error field on degraded entry")
	}
	if degraded.Video != nil {
		t.Error("Expected no video summary on degraded entry")
	}

	good := cat.Get("good.mp4")
	if good == nil || good.Error != "" {
		t.Errorf("Expected clean entry for good.mp4, got %+v", good)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "b.mp4", "a.mp4")

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	originalKeys := cat.Index().Keys()

	// A second catalog over the same paths loads the persisted index without
	// touching the prober.
	loadRunner := &probeRunner{}
	reloaded := New(probe.New(loadRunner, "ffprobe"), nil, "demo", dailies, "", cat.indexPath)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loadRunner.calls != 0 {
		t.Errorf("Expected load from disk without probing, got %d probe calls", loadRunner.calls)
	}
	if !reflect.DeepEqual(reloaded.Index().Keys(), originalKeys) {
		t.Errorf("Expected key order %v, got %v", originalKeys, reloaded.Index().Keys())
	}

	entry := reloaded.Get("a.mp4")
	if entry == nil || entry.Video == nil || entry.Video.Width != 1920 {
		t.Errorf("Expected metadata to survive the round trip, got %+v", entry)
	}
}

func TestLoadMissingIndexRebuildsAndSaves(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "one.mp4")

	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Expected rebuild to find 1 entry, got %d", cat.Len())
	}
	if _, err := os.Stat(cat.indexPath); err != nil {
		t.Errorf("Expected index file to be written: %v", err)
	}
}

func TestLoadCorruptIndexRebuilds(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)
	writeFiles(t, dailies, "one.mp4")
	if err := os.WriteFile(cat.indexPath, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Expected rebuild from corrupt index, got %d entries", cat.Len())
	}

	// The rebuild persisted a valid index.
	data, err := os.ReadFile(cat.indexPath)
	if err != nil {
		t.Fatal(err)
	}
	var check map[string]json.RawMessage
	if err := json.Unmarshal(data, &check); err != nil {
		t.Errorf("Expected rewritten index to be valid JSON: %v", err)
	}
}

func TestMissingDailiesDirIsEmpty(t *testing.T) {
	runner := &probeRunner{}
	dir := t.TempDir()
	cat := New(probe.New(runner, "ffprobe"), nil, "demo",
		filepath.Join(dir, "does-not-exist"), "", filepath.Join(dir, "database.json"))

	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh of missing directory failed: %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("Expected empty catalog, got %d entries", cat.Len())
	}
}

func TestVideoPath(t *testing.T) {
	runner := &probeRunner{}
	cat, dailies := newTestCatalog(t, runner)

	expected := filepath.Join(dailies, "clip.mp4")
	if got := cat.VideoPath("clip.mp4"); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}
