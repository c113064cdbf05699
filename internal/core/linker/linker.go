// Package linker publishes a package's executables by symlinking them into
// the shared bin directory.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Linker creates name-addressable symlinks for an installed package tree.
type Linker struct {
	// BinDir receives one symlink per executable, named after its base name.
	BinDir string
	// DryRun computes and returns link paths without touching the
	// filesystem.
	DryRun bool
}

// New returns a linker targeting binDir.
func New(binDir string, dryRun bool) *Linker {
	return &Linker{BinDir: binDir, DryRun: dryRun}
}

// Link locates the bin directory of the tree rooted at installDir and links
// every directly contained executable regular file into BinDir, overwriting
// existing links of the same name. It returns the created link paths in
// directory-listing order, and found=false (with an empty link set) when the
// tree has no bin directory, which is not an error.
//
// The bin directory is looked for directly under installDir first. Failing
// that, the first immediate subdirectory in listing order is tried once:
// archives whose top level is a single wrapper directory (toolx-1.0/bin/...)
// are accommodated, but no further candidates are scanned.
func (l *Linker) Link(installDir string) (links []string, found bool, err error) {
	binDir, err := findBinDir(installDir)
	if err != nil {
		return nil, false, err
	}
	if binDir == "" {
		return nil, false, nil
	}

	entries, err := os.ReadDir(binDir)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read bin dir %s: %w", binDir, err)
	}

	if !l.DryRun {
		if err := os.MkdirAll(l.BinDir, 0o755); err != nil {
			return nil, true, fmt.Errorf("failed to create bin dir %s: %w", l.BinDir, err)
		}
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return links, true, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}

		target := filepath.Join(binDir, entry.Name())
		linkPath := filepath.Join(l.BinDir, entry.Name())
		if !l.DryRun {
			// Last write wins when two packages ship a same-named
			// executable.
			if err := os.Remove(linkPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return links, true, fmt.Errorf("failed to replace link %s: %w", linkPath, err)
			}
			if err := os.Symlink(target, linkPath); err != nil {
				return links, true, fmt.Errorf("failed to create link %s: %w", linkPath, err)
			}
		}
		links = append(links, linkPath)
	}
	return links, true, nil
}

// findBinDir returns the bin directory for the tree at installDir, or ""
// when there is none. Only the first immediate subdirectory is considered
// as a wrapper; first-found wins over exhaustive search.
func findBinDir(installDir string) (string, error) {
	direct := filepath.Join(installDir, "bin")
	if isDir(direct) {
		return direct, nil
	}

	entries, err := os.ReadDir(installDir)
	if err != nil {
		return "", fmt.Errorf("failed to read install dir %s: %w", installDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(installDir, entry.Name(), "bin")
		if isDir(nested) {
			return nested, nil
		}
		// First subdirectory without a bin dir ends the search.
		return "", nil
	}
	return "", nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
