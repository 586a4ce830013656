package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"INFO", LevelInfo, false},
		{"bogus", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestInitAndGet(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "saveguard.log")

	cfg := Config{
		Level: "debug",
		Path:  logPath,
		Components: map[string]string{
			"scanner": "warn",
		},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() {
		if err := Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	logger := Get("manifest")
	logger.Info("fetch complete", "games", 3)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "fetch complete") {
		t.Errorf("log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), "manifest") {
		t.Errorf("log file missing component prefix, got: %s", data)
	}
}

func TestLoggerObtainedBeforeInitWrites(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "saveguard.log")

	// Package-level vars capture loggers long before Init runs.
	early := Get("early-component")
	early.Warn("discarded before init")

	cfg := Config{Level: "debug", Path: logPath}
	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	early.Warn("written after init")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if strings.Contains(string(data), "discarded before init") {
		t.Error("pre-init message should have been discarded")
	}
	if !strings.Contains(string(data), "written after init") {
		t.Errorf("logger obtained before Init did not write after Init, got: %s", data)
	}
}

func TestWithDerivedLoggerPicksUpInit(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "saveguard.log")

	derived := Get("derived-component").With("job", "backup")

	cfg := Config{Level: "debug", Path: logPath}
	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	derived.Info("derived message")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "derived message") {
		t.Errorf("With-derived logger did not write after Init, got: %s", data)
	}
	if !strings.Contains(string(data), "job") {
		t.Errorf("bound context missing from log line, got: %s", data)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "saveguard.log")

	cfg := Config{
		Level: "debug",
		Path:  logPath,
		Components: map[string]string{
			"uploader": "error",
		},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Close() }()

	logger := Get("uploader")
	logger.Info("suppressed message")
	logger.Error("surfaced message")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if strings.Contains(string(data), "suppressed message") {
		t.Error("info message leaked through error-level component override")
	}
	if !strings.Contains(string(data), "surfaced message") {
		t.Error("error message missing from log file")
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")

	w, err := NewRotatingWriter(logPath, RotationConfig{MaxSize: 64})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 4; i++ {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) < 2 {
		t.Errorf("expected rotation to produce multiple files, got %d", len(entries))
	}
}

func TestRotatingWriterCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "deep", "app.log")

	w, err := NewRotatingWriter(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
