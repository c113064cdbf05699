// Package downloader provides functionality to download archives from URLs.
package downloader

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ErrDownloadFailed reports any transport failure: connection error, non-200
// status, or a short write while saving the body.
var ErrDownloadFailed = errors.New("download failed")

// DownloadToFile fetches url and writes the body to destPath. The body is
// streamed into a temp file in the destination directory and renamed into
// place only on success, so a failed download never leaves a partial file at
// destPath.
func DownloadToFile(url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download dir for %s: %w", destPath, err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrDownloadFailed, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status code %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create download temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: reading body from %s: %v", ErrDownloadFailed, url, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close download temp file: %w", err)
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move download into place at %s: %w", destPath, err)
	}
	return nil
}
