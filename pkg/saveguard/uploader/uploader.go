// Package uploader packages detected saves into archives and transmits
// them to the remote store. Every business-level outcome, including
// remote rejection, is captured in the returned UploadResult rather than
// surfaced as an error; a failure in one game never blocks the rest of a
// batch.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/saveguard/pkg/saveguard/archive"
	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// uploadTimeout bounds a single archive transmission.
const uploadTimeout = 5 * time.Minute

// logger is the package-level logger for upload operations.
var logger = logging.Get("uploader")

// Uploader transmits save archives to a per-profile upload endpoint,
// authenticated with a bearer credential supplied by the caller.
type Uploader struct {
	baseURL string
	token   string
	client  *http.Client

	// tempDir is where archives are staged. Empty uses os.TempDir.
	tempDir string
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithHTTPClient overrides the HTTP client used for uploads.
func WithHTTPClient(client *http.Client) Option {
	return func(u *Uploader) { u.client = client }
}

// WithTempDir overrides the staging directory for archives.
func WithTempDir(dir string) Option {
	return func(u *Uploader) { u.tempDir = dir }
}

// New creates an Uploader for the given endpoint and bearer token.
func New(baseURL, token string, opts ...Option) *Uploader {
	u := &Uploader{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: uploadTimeout},
		tempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// uploadResponse is the remote's reply to a successful upload. Both the
// upload ID and save version are optional even on success.
type uploadResponse struct {
	Success     bool    `json:"success"`
	UploadID    *string `json:"upload_id"`
	SaveVersion *struct {
		ID            string `json:"id"`
		VersionNumber int    `json:"version_number"`
	} `json:"save_version"`
}

// UploadSaves uploads each game sequentially, one completing before the
// next begins. It returns exactly one result per input game, in input
// order; per-game failures are captured in their own result and never
// abort the batch.
func (u *Uploader) UploadSaves(ctx context.Context, games []types.DetectedGame, profileID string) []types.UploadResult {
	results := make([]types.UploadResult, 0, len(games))
	for _, game := range games {
		results = append(results, u.UploadGame(ctx, game, profileID))
	}
	return results
}

// UploadGame builds, checksums, and transmits one game's archive. The
// temporary archive is removed once the exchange completes, success or
// failure.
func (u *Uploader) UploadGame(ctx context.Context, game types.DetectedGame, profileID string) types.UploadResult {
	result := types.UploadResult{GameName: game.Name}

	zipName := archive.SanitizeName(game.Name) + ".zip"
	zipPath := filepath.Join(u.tempDir, zipName)
	defer func() {
		if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing temporary archive failed", "path", zipPath, "error", err)
		}
	}()

	if err := archive.Build(game, zipPath); err != nil {
		result.Message = fmt.Sprintf("building archive: %v", err)
		return result
	}

	checksum, err := archive.Checksum(zipPath)
	if err != nil {
		result.Message = fmt.Sprintf("checksumming archive: %v", err)
		return result
	}

	body, contentType, size, err := u.buildForm(game, zipPath, zipName, checksum)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	endpoint := fmt.Sprintf("%s/api/devices/upload/%s", u.baseURL, profileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		result.Message = fmt.Sprintf("building upload request: %v", err)
		return result
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+u.token)

	resp, err := u.client.Do(req)
	if err != nil {
		result.Message = fmt.Sprintf("uploading archive: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(resp.Body)
		// Surface the remote's error text verbatim.
		result.Message = string(bytes.TrimSpace(errText))
		if result.Message == "" {
			result.Message = fmt.Sprintf("upload rejected with status %d", resp.StatusCode)
		}
		logger.Warn("upload rejected", "game", game.Name, "status", resp.StatusCode)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("Uploaded %d bytes successfully", size)

	var remote uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err == nil {
		result.UploadID = remote.UploadID
		if remote.SaveVersion != nil {
			version := remote.SaveVersion.VersionNumber
			result.VersionNumber = &version
		}
	}

	logger.Info("upload complete", "game", game.Name, "bytes", size, "checksum", checksum)
	return result
}

// buildForm assembles the multipart body: slot label, local path hint,
// checksum, and the archive bytes. Returns the body, its content type,
// and the archive size.
func (u *Uploader) buildForm(game types.DetectedGame, zipPath, zipName, checksum string) (io.Reader, string, int64, error) {
	content, err := os.ReadFile(zipPath)
	if err != nil {
		return nil, "", 0, fmt.Errorf("reading archive: %w", err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	// Fields go out in a fixed order: slotName, localPath, checksum.
	fields := []struct {
		name  string
		value string
	}{
		{"slotName", game.Name + " Auto-Backup"},
		{"localPath", game.PrimaryPath()},
		{"checksum", checksum},
	}
	for _, field := range fields {
		if err := form.WriteField(field.name, field.value); err != nil {
			return nil, "", 0, fmt.Errorf("writing form field %q: %w", field.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="saveFile"; filename=%q`, zipName))
	header.Set("Content-Type", "application/zip")

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", 0, fmt.Errorf("creating archive part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", 0, fmt.Errorf("writing archive part: %w", err)
	}

	if err := form.Close(); err != nil {
		return nil, "", 0, fmt.Errorf("finalizing form: %w", err)
	}

	return &buf, form.FormDataContentType(), int64(len(content)), nil
}
