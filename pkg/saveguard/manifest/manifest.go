// Package manifest acquires and caches the community save-location
// catalog. The catalog is an externally maintained YAML document mapping
// game names to path templates with metadata tags; its schema is an
// upstream contract and is parsed defensively, never redesigned.
package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// DefaultURL is the upstream location of the community manifest.
const DefaultURL = "https://raw.githubusercontent.com/mtkennerly/ludusavi-manifest/master/data/manifest.yaml"

// maxAge is how old a cached manifest may be before a re-fetch is
// attempted.
const maxAge = 7 * 24 * time.Hour

// fetchTimeout bounds a single manifest download.
const fetchTimeout = 60 * time.Second

// logger is the package-level logger for manifest operations.
var logger = logging.Get("manifest")

// DefaultCachePath returns the manifest cache location under XDG cache home.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, "saveguard", "manifest.yaml")
}

// Options configures a Store. Zero values select defaults.
type Options struct {
	// URL is the remote manifest location. Empty uses DefaultURL.
	URL string

	// CachePath is where fetched manifests are persisted. Empty uses
	// DefaultCachePath().
	CachePath string

	// HTTPClient is the client used for fetching. Nil uses a client
	// with a sensible timeout.
	HTTPClient *http.Client
}

// Store fetches, caches, and queries the save-location manifest.
// Load populates the in-memory snapshot; the query methods operate on
// that snapshot and are safe to call repeatedly. The snapshot is
// replaced wholesale on every Load.
type Store struct {
	url       string
	cachePath string
	client    *http.Client

	games map[string]Game
	names []string // stable iteration order for the current snapshot
}

// NewStore creates a manifest store with the given options.
func NewStore(opts Options) *Store {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.CachePath == "" {
		opts.CachePath = DefaultCachePath()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Store{
		url:       opts.URL,
		cachePath: opts.CachePath,
		client:    opts.HTTPClient,
		games:     make(map[string]Game),
	}
}

// Load acquires a manifest snapshot. When the cache is missing or older
// than seven days it attempts a remote fetch, writing the raw bytes back
// to the cache before parsing. Fetch failures fall back to the cached
// copy; with no usable cache the snapshot is simply empty. Load fails
// soft on network and parse problems: detection proceeds with zero
// known games rather than erroring out the caller. The only error Load
// returns is the caller's own context cancellation.
func (s *Store) Load(ctx context.Context) error {
	if s.stale() {
		content, err := s.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("manifest fetch failed, falling back to cache", "error", err)
		} else {
			s.writeCache(content)
			s.replaceSnapshot(content)
			return nil
		}
	}

	content, err := os.ReadFile(s.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("manifest cache unreadable", "path", s.cachePath, "error", err)
		}
		s.replaceSnapshot(nil)
		return nil
	}

	s.replaceSnapshot(content)
	return nil
}

// stale reports whether the cache is absent or older than maxAge.
func (s *Store) stale() bool {
	info, err := os.Stat(s.cachePath)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > maxAge
}

// fetch downloads the manifest document.
func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building manifest request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("manifest fetch returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading manifest body: %w", err)
	}

	return content, nil
}

// writeCache persists the raw fetched bytes. The cache always reflects
// the latest successful fetch regardless of whether it parses.
func (s *Store) writeCache(content []byte) {
	dir := filepath.Dir(s.cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("creating manifest cache directory failed", "error", err)
		return
	}
	if err := os.WriteFile(s.cachePath, content, 0o644); err != nil {
		logger.Warn("writing manifest cache failed", "error", err)
	}
}

// replaceSnapshot parses content and swaps in the resulting snapshot.
// Parsing is all-or-nothing: any malformed entry empties the snapshot
// rather than keeping a partial catalog.
func (s *Store) replaceSnapshot(content []byte) {
	games := parse(content)

	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)

	s.games = games
	s.names = names

	logger.Info("manifest snapshot loaded", "games", len(names))
}

// Games returns all game names in the snapshot's iteration order.
func (s *Store) Games() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Search returns the game names containing query, case-insensitively.
func (s *Store) Search(query string) []string {
	q := strings.ToLower(query)
	var out []string
	for _, name := range s.names {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

// PathsFor returns the save templates for a game, in a stable order.
// Unknown games yield an empty slice.
func (s *Store) PathsFor(name string) []types.SaveTemplate {
	game, ok := s.games[name]
	if !ok {
		return nil
	}

	paths := make([]string, 0, len(game.Files))
	for path := range game.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	templates := make([]types.SaveTemplate, 0, len(paths))
	for _, path := range paths {
		templates = append(templates, types.SaveTemplate{
			Path: path,
			Tags: game.Files[path].Tags,
		})
	}
	return templates
}
