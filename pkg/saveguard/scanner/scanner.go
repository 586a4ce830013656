// Package scanner turns manifest save templates into concrete detection
// results by resolving placeholders, evaluating globs, and measuring what
// exists on disk. Scanning is best-effort per path: unreadable entries
// are skipped rather than aborting the surrounding scan.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/resolve"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// ErrScanInProgress is returned when a full scan is requested while one
// is already running in this process.
var ErrScanInProgress = errors.New("scan already in progress")

// logger is the package-level logger for scan operations.
var logger = logging.Get("scanner")

// Catalog is the manifest view the scanner consumes. It is a read-only
// borrow of the manifest store's current snapshot for the duration of a
// scan.
type Catalog interface {
	Games() []string
	PathsFor(name string) []types.SaveTemplate
}

// Scanner detects game saves on disk from a manifest catalog.
type Scanner struct {
	catalog  Catalog
	resolver *resolve.Resolver

	// custom maps game names to extra user-configured templates merged
	// into that game's manifest templates.
	custom map[string][]string

	// scanning is the process-wide single-flight guard for full scans.
	// It is acquired before the walk starts and released on every exit
	// path, so the guard can never leak into a permanently busy state.
	scanning atomic.Bool
}

// New creates a Scanner over the given catalog. The resolver may be nil,
// in which case host-environment resolution is used.
func New(catalog Catalog, resolver *resolve.Resolver) *Scanner {
	if resolver == nil {
		resolver = resolve.NewOSResolver()
	}
	return &Scanner{
		catalog:  catalog,
		resolver: resolver,
		custom:   make(map[string][]string),
	}
}

// AddCustomPath registers an extra template for a game, evaluated after
// the game's manifest templates.
func (s *Scanner) AddCustomPath(game, template string) {
	s.custom[game] = append(s.custom[game], template)
}

// ScanAll detects saves for every game in the catalog. Games with no
// existing, non-empty save path are suppressed. Results are ordered by
// aggregate size, largest first.
//
// Only one full scan may run at a time per process; overlapping calls
// fail immediately with ErrScanInProgress without affecting the
// in-flight scan.
func (s *Scanner) ScanAll(ctx context.Context) ([]types.DetectedGame, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	start := time.Now()
	names := s.catalog.Games()

	detected := make([]types.DetectedGame, 0)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		game, ok := s.ScanGame(name)
		if !ok {
			continue
		}
		if game.HasSaves() {
			detected = append(detected, game)
		}
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].TotalSizeBytes > detected[j].TotalSizeBytes
	})

	logger.Info("scan complete",
		"known_games", len(names),
		"detected", len(detected),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return detected, nil
}

// ScanGame detects saves for one game. The second return value is false
// when the game has no templates at all (unknown game). The result is
// returned even when nothing exists on disk; callers filter with
// DetectedGame.HasSaves.
func (s *Scanner) ScanGame(name string) (types.DetectedGame, bool) {
	templates := s.catalog.PathsFor(name)
	for _, tmpl := range s.custom[name] {
		templates = append(templates, types.SaveTemplate{Path: tmpl})
	}
	if len(templates) == 0 {
		return types.DetectedGame{}, false
	}

	game := types.DetectedGame{
		Name:  name,
		Paths: make([]types.DetectedSavePath, 0, len(templates)),
	}

	var latest time.Time
	for _, tmpl := range templates {
		detected, modTime := s.scanPath(tmpl)
		game.TotalSizeBytes += detected.TotalSizeBytes
		if detected.Exists && modTime.After(latest) {
			latest = modTime
		}
		game.Paths = append(game.Paths, detected)
	}

	if !latest.IsZero() {
		game.LastModified = &latest
	}

	return game, true
}

// scanPath evaluates one template against the filesystem. The returned
// time is the newest modification time among the pattern's top-level
// matches; it is zero when nothing matched.
func (s *Scanner) scanPath(tmpl types.SaveTemplate) (types.DetectedSavePath, time.Time) {
	resolved := s.resolver.Expand(tmpl.Path)

	detected := types.DetectedSavePath{
		Pattern:      tmpl.Path,
		ResolvedPath: resolved,
	}

	matches, err := filepath.Glob(resolved)
	if err != nil {
		// Bad pattern syntax: report as non-existent rather than failing.
		logger.Debug("glob pattern rejected", "pattern", resolved, "error", err)
		return detected, time.Time{}
	}

	var latest time.Time
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			// Disappeared between glob and stat, or unreadable. Skip.
			continue
		}

		detected.Exists = true
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}

		if info.IsDir() {
			count, size := measureDir(match)
			detected.FileCount += count
			detected.TotalSizeBytes += size
		} else if info.Mode().IsRegular() {
			detected.FileCount++
			detected.TotalSizeBytes += info.Size()
		}
	}

	return detected, latest
}

// measureDir walks a directory tree and totals every regular file
// beneath it. Symlinks are not followed; per-entry errors are skipped so
// one unreadable file cannot blank out the rest of a save folder.
func measureDir(root string) (int, int64) {
	var count, size atomic.Int64

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("walk error skipped", "path", path, "error", err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		count.Add(1)
		size.Add(info.Size())
		return nil
	})
	if err != nil {
		logger.Debug("walk failed", "root", root, "error", err)
	}

	return int(count.Load()), size.Load()
}
