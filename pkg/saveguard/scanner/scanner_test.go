package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/saveguard/pkg/saveguard/resolve"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// fakeCatalog is an in-memory Catalog for tests.
type fakeCatalog struct {
	entries map[string][]types.SaveTemplate
	order   []string

	// gate, when non-nil, blocks Games() until closed. Used to hold a
	// scan in flight while testing the busy guard.
	gate chan struct{}
}

func (c *fakeCatalog) Games() []string {
	if c.gate != nil {
		<-c.gate
	}
	return c.order
}

func (c *fakeCatalog) PathsFor(name string) []types.SaveTemplate {
	return c.entries[name]
}

// newTestScanner builds a scanner whose <documents> placeholder points at
// a temp directory, returning the scanner and that directory.
func newTestScanner(t *testing.T, catalog *fakeCatalog) (*Scanner, string) {
	t.Helper()

	docs := t.TempDir()
	resolver := &resolve.Resolver{
		Dirs:     resolve.Dirs{Documents: docs, Home: docs},
		Username: "tester",
	}
	return New(catalog, resolver), docs
}

// writeFile creates a file with content of the given size.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanAllDetectsSingleFile(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Foo"},
		entries: map[string][]types.SaveTemplate{
			"Foo": {{Path: "<documents>/Foo/save.dat", Tags: []string{"save"}}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	writeFile(t, filepath.Join(docs, "Foo", "save.dat"), 120)

	games, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}

	if len(games) != 1 {
		t.Fatalf("expected 1 detected game, got %d", len(games))
	}
	g := games[0]
	if g.Name != "Foo" {
		t.Errorf("Name = %q, want Foo", g.Name)
	}
	if g.TotalSizeBytes != 120 {
		t.Errorf("TotalSizeBytes = %d, want 120", g.TotalSizeBytes)
	}
	if len(g.Paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(g.Paths))
	}
	p := g.Paths[0]
	if !p.Exists || p.FileCount != 1 || p.TotalSizeBytes != 120 {
		t.Errorf("path = %+v, want exists with 1 file of 120 bytes", p)
	}
	if g.LastModified == nil {
		t.Error("LastModified should be set for an existing path")
	}
}

func TestScanAllSuppressesEmptyDirectories(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Bar"},
		entries: map[string][]types.SaveTemplate{
			"Bar": {{Path: "<documents>/Bar/saves"}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	if err := os.MkdirAll(filepath.Join(docs, "Bar", "saves"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	games, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(games) != 0 {
		t.Errorf("empty save directory should be suppressed, got %d games", len(games))
	}
}

func TestScanAllSuppressesMissingPaths(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Ghost"},
		entries: map[string][]types.SaveTemplate{
			"Ghost": {{Path: "<documents>/DoesNotExist/save.dat"}},
		},
	}
	s, _ := newTestScanner(t, catalog)

	games, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(games) != 0 {
		t.Errorf("missing paths should be suppressed, got %d games", len(games))
	}
}

func TestScanAllSortsBySizeDescending(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Small", "Big", "Medium"},
		entries: map[string][]types.SaveTemplate{
			"Small":  {{Path: "<documents>/Small/save.dat"}},
			"Big":    {{Path: "<documents>/Big/save.dat"}},
			"Medium": {{Path: "<documents>/Medium/save.dat"}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	writeFile(t, filepath.Join(docs, "Small", "save.dat"), 10)
	writeFile(t, filepath.Join(docs, "Big", "save.dat"), 1000)
	writeFile(t, filepath.Join(docs, "Medium", "save.dat"), 100)

	games, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	for i := 1; i < len(games); i++ {
		if games[i-1].TotalSizeBytes < games[i].TotalSizeBytes {
			t.Errorf("results not sorted descending at index %d: %d < %d",
				i, games[i-1].TotalSizeBytes, games[i].TotalSizeBytes)
		}
	}
	if games[0].Name != "Big" {
		t.Errorf("largest game first, got %q", games[0].Name)
	}
}

func TestScanGameMeasuresDirectoriesRecursively(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Nested"},
		entries: map[string][]types.SaveTemplate{
			"Nested": {{Path: "<documents>/Nested"}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	writeFile(t, filepath.Join(docs, "Nested", "a.sav"), 10)
	writeFile(t, filepath.Join(docs, "Nested", "slot1", "b.sav"), 20)
	writeFile(t, filepath.Join(docs, "Nested", "slot1", "deep", "c.sav"), 30)

	game, ok := s.ScanGame("Nested")
	if !ok {
		t.Fatal("ScanGame() returned not ok")
	}
	if game.TotalSizeBytes != 60 {
		t.Errorf("TotalSizeBytes = %d, want 60", game.TotalSizeBytes)
	}
	if game.Paths[0].FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", game.Paths[0].FileCount)
	}
}

func TestScanGameWildcardPattern(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Steam"},
		entries: map[string][]types.SaveTemplate{
			"Steam": {{Path: "<documents>/userdata/<storeUserId>/remote"}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	writeFile(t, filepath.Join(docs, "userdata", "12345", "remote", "save.bin"), 64)
	writeFile(t, filepath.Join(docs, "userdata", "67890", "remote", "save.bin"), 32)

	game, ok := s.ScanGame("Steam")
	if !ok {
		t.Fatal("ScanGame() returned not ok")
	}
	if game.Paths[0].FileCount != 2 {
		t.Errorf("FileCount = %d, want 2 (one per store user)", game.Paths[0].FileCount)
	}
	if game.TotalSizeBytes != 96 {
		t.Errorf("TotalSizeBytes = %d, want 96", game.TotalSizeBytes)
	}
}

func TestScanGameUnknown(t *testing.T) {
	catalog := &fakeCatalog{entries: map[string][]types.SaveTemplate{}}
	s, _ := newTestScanner(t, catalog)

	if _, ok := s.ScanGame("Nope"); ok {
		t.Error("ScanGame() on unknown game should return false")
	}
}

func TestScanGameCustomPath(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Modded"},
		entries: map[string][]types.SaveTemplate{
			"Modded": {{Path: "<documents>/Modded/official"}},
		},
	}
	s, docs := newTestScanner(t, catalog)
	writeFile(t, filepath.Join(docs, "custom", "save.dat"), 50)
	s.AddCustomPath("Modded", "<documents>/custom/save.dat")

	game, ok := s.ScanGame("Modded")
	if !ok {
		t.Fatal("ScanGame() returned not ok")
	}
	if len(game.Paths) != 2 {
		t.Fatalf("expected manifest + custom path, got %d paths", len(game.Paths))
	}
	if game.TotalSizeBytes != 50 {
		t.Errorf("TotalSizeBytes = %d, want 50", game.TotalSizeBytes)
	}
}

func TestScanAllRejectsConcurrentInvocation(t *testing.T) {
	gate := make(chan struct{})
	catalog := &fakeCatalog{
		order: []string{},
		gate:  gate,
	}
	s, _ := newTestScanner(t, catalog)

	type scanResult struct {
		games []types.DetectedGame
		err   error
	}
	first := make(chan scanResult, 1)
	go func() {
		games, err := s.ScanAll(context.Background())
		first <- scanResult{games, err}
	}()

	// Wait until the first scan has acquired the guard.
	for !s.scanning.Load() {
		time.Sleep(time.Millisecond)
	}

	if _, err := s.ScanAll(context.Background()); err != ErrScanInProgress {
		t.Errorf("second ScanAll() error = %v, want ErrScanInProgress", err)
	}

	close(gate)
	res := <-first
	if res.err != nil {
		t.Errorf("in-flight scan failed after rejected overlap: %v", res.err)
	}
}

func TestScanAllReleasesGuardAfterCompletion(t *testing.T) {
	catalog := &fakeCatalog{order: []string{}}
	s, _ := newTestScanner(t, catalog)

	for i := 0; i < 3; i++ {
		if _, err := s.ScanAll(context.Background()); err != nil {
			t.Fatalf("ScanAll() iteration %d error = %v", i, err)
		}
	}
}

func TestScanAllReleasesGuardOnCancellation(t *testing.T) {
	catalog := &fakeCatalog{
		order: []string{"Foo"},
		entries: map[string][]types.SaveTemplate{
			"Foo": {{Path: "<documents>/Foo"}},
		},
	}
	s, _ := newTestScanner(t, catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ScanAll(ctx); err == nil {
		t.Fatal("ScanAll() with cancelled context should fail")
	}

	// The guard must be released even on the error path.
	if _, err := s.ScanAll(context.Background()); err != nil {
		t.Errorf("ScanAll() after cancellation error = %v, want nil", err)
	}
}
