package types

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"0", 0, false},
		{"512B", 512, false},
		{"100K", 100 * KiB, false},
		{"100KiB", 100 * KiB, false},
		{"50M", 50 * MiB, false},
		{"50MB", 50 * MiB, false},
		{"2G", 2 * GiB, false},
		{"1.5M", int64(1.5 * float64(MiB)), false},
		{"  10K  ", 10 * KiB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10X", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSize(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestDetectedGameHasSaves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []DetectedSavePath
		want  bool
	}{
		{
			name: "existing path with files",
			paths: []DetectedSavePath{
				{Exists: true, FileCount: 3, TotalSizeBytes: 100},
			},
			want: true,
		},
		{
			name: "existing but empty path",
			paths: []DetectedSavePath{
				{Exists: true, FileCount: 0},
			},
			want: false,
		},
		{
			name: "missing path",
			paths: []DetectedSavePath{
				{Exists: false},
			},
			want: false,
		},
		{
			name: "one of several qualifies",
			paths: []DetectedSavePath{
				{Exists: false},
				{Exists: true, FileCount: 1, TotalSizeBytes: 10},
			},
			want: true,
		},
		{
			name:  "no paths",
			paths: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DetectedGame{Name: "game", Paths: tt.paths}
			if got := g.HasSaves(); got != tt.want {
				t.Errorf("HasSaves() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectedGamePrimaryPath(t *testing.T) {
	t.Parallel()

	g := DetectedGame{}
	if got := g.PrimaryPath(); got != "" {
		t.Errorf("PrimaryPath() on empty game = %q, want empty", got)
	}

	now := time.Now()
	g = DetectedGame{
		Paths: []DetectedSavePath{
			{ResolvedPath: "/saves/a"},
			{ResolvedPath: "/saves/b"},
		},
		LastModified: &now,
	}
	if got := g.PrimaryPath(); got != "/saves/a" {
		t.Errorf("PrimaryPath() = %q, want /saves/a", got)
	}
}
