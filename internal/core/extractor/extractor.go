// Package extractor unpacks downloaded archives into install directories.
// Supported formats are selected by file extension: .tar.gz, .tgz, .tar and
// .zip.
package extractor

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedArchive reports a file extension no extractor handles.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	// ErrExtractionFailed reports a failure while unpacking a supported
	// archive.
	ErrExtractionFailed = errors.New("extraction failed")
)

// suffixes in match order; .tar.gz must precede .tar and .gz.
var suffixes = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// ArchiveSuffix returns the recognized archive suffix of name, or ok=false
// when the name matches no supported format.
func ArchiveSuffix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return s, true
		}
	}
	return "", false
}

// Extract unpacks archivePath into destDir, creating it if needed. The
// format is chosen by extension; an unrecognized extension fails with
// ErrUnsupportedArchive.
func Extract(archivePath, destDir string) error {
	suffix, ok := ArchiveSuffix(archivePath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create dest dir %s: %w", destDir, err)
	}

	var err error
	switch suffix {
	case ".tar.gz", ".tgz":
		err = extractTar(archivePath, destDir, true)
	case ".tar":
		err = extractTar(archivePath, destDir, false)
	case ".zip":
		err = extractZip(archivePath, destDir)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExtractionFailed, filepath.Base(archivePath), err)
	}
	return nil
}

// securePath joins name under destDir and rejects entries that would escape
// it via .. components. The "./" entry GNU tar puts at the start of archives
// cleans to destDir itself and is allowed.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	clean := filepath.Clean(destDir)
	if target != clean && !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

// secureLinkTarget rejects symlink entries whose target resolves outside
// destDir, either as an absolute path or through .. components. A later
// archive entry written through such a link would land outside the tree.
func secureLinkTarget(destDir, linkPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("illegal link target: %s", linkname)
	}
	resolved := filepath.Join(filepath.Dir(linkPath), linkname)
	clean := filepath.Clean(destDir)
	if resolved != clean && !strings.HasPrefix(resolved, clean+string(os.PathSeparator)) {
		return fmt.Errorf("illegal link target: %s", linkname)
	}
	return nil
}

func extractTar(archivePath, destDir string, gzipped bool) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = archiveFile.Close() }()

	var reader io.Reader = archiveFile
	if gzipped {
		gzipReader, err := gzip.NewReader(archiveFile)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := secureLinkTarget(destDir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
		default:
			// Skip char/block devices, fifos and the rest.
			continue
		}
	}
	return nil
}

func extractZip(archivePath, destDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	for _, f := range zipReader.File {
		target, err := securePath(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		err = writeEntry(target, rc, f.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(outFile, r); err != nil {
		_ = outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return outFile.Close()
}
