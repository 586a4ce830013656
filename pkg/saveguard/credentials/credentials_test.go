package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "token"))

	if _, err := store.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Token() on empty store error = %v, want ErrNotAuthenticated", err)
	}

	if err := store.Save("device-token-abc"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "device-token-abc" {
		t.Errorf("Token() = %q, want device-token-abc", token)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() after delete error = %v, want ErrNotAuthenticated", err)
	}
}

func TestFileStoreDeleteMissingToken(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err := store.Delete(); err != nil {
		t.Errorf("Delete() on missing token error = %v, want nil", err)
	}
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  tok-1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "tok-1" {
		t.Errorf("Token() = %q, want tok-1", token)
	}
}

func TestFileStorePermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path)
	if err := store.Save("secret"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}
