// Package archive builds the compressed save archive for one detected
// game and computes its content checksum.
//
// Archive layout note: files matched directly by a template are stored
// flat under their base name, while directory matches preserve their
// internal relative structure. The asymmetry is part of the archive
// contract consumed by the remote side; do not "fix" it.
package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// logger is the package-level logger for archive operations.
var logger = logging.Get("archive")

// Build writes a zip archive of every file matched by the game's
// existing save paths to destPath. Individual files that vanish or turn
// unreadable between detection and archiving are skipped; only failures
// of the archive itself are returned.
func Build(game types.DetectedGame, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(out)

	for _, detected := range game.Paths {
		if !detected.Exists {
			continue
		}

		matches, err := filepath.Glob(detected.ResolvedPath)
		if err != nil {
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				logger.Debug("match skipped during archive", "path", match, "error", err)
				continue
			}

			if info.IsDir() {
				if err := addDir(zw, match); err != nil {
					_ = zw.Close()
					_ = out.Close()
					return err
				}
			} else if info.Mode().IsRegular() {
				// Top-level file matches are stored flat by base name.
				if err := addFile(zw, match, filepath.Base(match)); err != nil {
					_ = zw.Close()
					_ = out.Close()
					return err
				}
			}
		}
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// addDir recursively adds every regular file beneath base, preserving
// the directory's internal relative layout so restoring the archive
// reproduces the save folder.
func addDir(zw *zip.Writer, base string) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, keep the rest of the folder.
			logger.Debug("entry skipped during archive", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		name := strings.ReplaceAll(rel, string(filepath.Separator), "/")

		return addFile(zw, path, name)
	})
}

// addFile streams one file into the archive under the given entry name.
// Files that cannot be opened are skipped.
func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		logger.Debug("file skipped during archive", "path", path, "error", err)
		return nil
	}
	defer func() { _ = src.Close() }()

	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	if info, err := src.Stat(); err == nil {
		header.Modified = info.ModTime()
	}

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %q to archive: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing %q to archive: %w", name, err)
	}
	return nil
}

// Checksum computes the hex-encoded SHA-256 of the file at path. It is
// computed over the finished archive bytes, so it is sensitive to the
// archive format, not just the source file contents.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening archive for checksum: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing archive: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SanitizeName converts a game name into a safe archive file name.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		default:
			return r
		}
	}, name)
}
