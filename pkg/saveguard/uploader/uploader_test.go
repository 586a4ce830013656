package uploader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// detectedGame builds a DetectedGame backed by one real save file.
func detectedGame(t *testing.T, name string) types.DetectedGame {
	t.Helper()

	dir := t.TempDir()
	savePath := filepath.Join(dir, "save.dat")
	require.NoError(t, os.WriteFile(savePath, []byte("savedata"), 0o644))

	return types.DetectedGame{
		Name: name,
		Paths: []types.DetectedSavePath{
			{
				Pattern:        "<documents>/" + name + "/save.dat",
				ResolvedPath:   savePath,
				Exists:         true,
				FileCount:      1,
				TotalSizeBytes: 8,
			},
		},
		TotalSizeBytes: 8,
	}
}

func TestUploadGameFormFieldOrder(t *testing.T) {
	var partNames []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reader, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}
			partNames = append(partNames, part.FormName())
			_ = part.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "secret-token", WithHTTPClient(srv.Client()), WithTempDir(t.TempDir()))

	result := u.UploadGame(context.Background(), detectedGame(t, "OrderedGame"), "profile-1")
	require.True(t, result.Success, "message: %s", result.Message)

	assert.Equal(t, []string{"slotName", "localPath", "checksum", "saveFile"}, partNames)
}

func TestUploadGameSuccess(t *testing.T) {
	var gotAuth, gotSlot, gotChecksum, gotPath string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSlot = r.FormValue("slotName")
		gotChecksum = r.FormValue("checksum")
		gotPath = r.FormValue("localPath")

		file, header, err := r.FormFile("saveFile")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "application/zip", header.Header.Get("Content-Type"))
		gotFile = make([]byte, header.Size)
		_, _ = file.Read(gotFile)

		assert.True(t, strings.HasPrefix(r.URL.Path, "/api/devices/upload/"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "upload_id": "up-123", "save_version": {"id": "v-1", "version_number": 7}}`))
	}))
	defer srv.Close()

	tempDir := t.TempDir()
	u := New(srv.URL, "secret-token", WithHTTPClient(srv.Client()), WithTempDir(tempDir))

	game := detectedGame(t, "MyGame")
	result := u.UploadGame(context.Background(), game, "profile-1")

	assert.True(t, result.Success, "message: %s", result.Message)
	assert.Equal(t, "MyGame", result.GameName)
	require.NotNil(t, result.UploadID)
	assert.Equal(t, "up-123", *result.UploadID)
	require.NotNil(t, result.VersionNumber)
	assert.Equal(t, 7, *result.VersionNumber)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "MyGame Auto-Backup", gotSlot)
	assert.Len(t, gotChecksum, 64)
	assert.Equal(t, game.PrimaryPath(), gotPath)
	assert.NotEmpty(t, gotFile)
}

func TestUploadGameRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	u := New(srv.URL, "token", WithHTTPClient(srv.Client()), WithTempDir(t.TempDir()))
	result := u.UploadGame(context.Background(), detectedGame(t, "Rejected"), "profile-1")

	assert.False(t, result.Success)
	assert.Equal(t, "quota exceeded", result.Message)
	assert.Nil(t, result.UploadID)
	assert.Nil(t, result.VersionNumber)
}

func TestUploadGameNetworkError(t *testing.T) {
	// Endpoint that is not listening.
	u := New("http://127.0.0.1:1", "token", WithTempDir(t.TempDir()))
	result := u.UploadGame(context.Background(), detectedGame(t, "Offline"), "profile-1")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestUploadGameSuccessWithoutOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "token", WithHTTPClient(srv.Client()), WithTempDir(t.TempDir()))
	result := u.UploadGame(context.Background(), detectedGame(t, "Minimal"), "profile-1")

	assert.True(t, result.Success)
	assert.Nil(t, result.UploadID, "upload id is optional even on success")
	assert.Nil(t, result.VersionNumber, "version number is optional even on success")
}

func TestUploadGameRemovesTempArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tempDir := t.TempDir()
	u := New(srv.URL, "token", WithHTTPClient(srv.Client()), WithTempDir(tempDir))

	_ = u.UploadGame(context.Background(), detectedGame(t, "Cleanup"), "profile-1")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary archive must be removed after every attempt")
}

func TestUploadSavesOneResultPerGameInOrder(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("corrupt archive"))
			return
		}
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	u := New(srv.URL, "token", WithHTTPClient(srv.Client()), WithTempDir(t.TempDir()))

	games := []types.DetectedGame{
		detectedGame(t, "First"),
		detectedGame(t, "Second"),
		detectedGame(t, "Third"),
	}
	results := u.UploadSaves(context.Background(), games, "profile-1")

	require.Len(t, results, len(games))
	assert.Equal(t, "First", results[0].GameName)
	assert.Equal(t, "Second", results[1].GameName)
	assert.Equal(t, "Third", results[2].GameName)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "corrupt archive", results[1].Message)
	assert.True(t, results[2].Success, "failure in one game must not block the rest of the batch")
}
