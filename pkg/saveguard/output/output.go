// Package output provides formatters for displaying detection and upload
// results in various output formats (pretty, plain, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.FormatScan(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// ScanReport contains the complete detection output for formatting.
type ScanReport struct {
	// Games contains the detected games, sorted by size descending.
	Games []types.DetectedGame `json:"games" yaml:"games"`

	// KnownGames is the number of games in the manifest snapshot.
	KnownGames int `json:"known_games" yaml:"known_games"`

	// Elapsed is the total scan duration.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// TotalSize returns the sum of all detected game sizes.
func (r *ScanReport) TotalSize() int64 {
	var total int64
	for _, g := range r.Games {
		total += g.TotalSizeBytes
	}
	return total
}

// UploadReport contains the outcome of one upload batch for formatting.
type UploadReport struct {
	// Results holds one entry per requested game, in request order.
	Results []types.UploadResult `json:"results" yaml:"results"`
}

// Succeeded returns the number of successful uploads.
func (r *UploadReport) Succeeded() int {
	var n int
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// FormatScan writes a detection report to the buffer.
	FormatScan(w *bytes.Buffer, r *ScanReport) error

	// FormatUploads writes an upload batch report to the buffer.
	FormatUploads(w *bytes.Buffer, r *UploadReport) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
