package engine

import (
	"errors"
	"fmt"
	"os"
)

// RemoveResult reports what a removal cleaned up.
type RemoveResult struct {
	Name         string
	Version      string
	LinksRemoved int
}

// Remove reverses an install: recorded bin links first, then the install
// directory, then the manifest. The manifest delete is the commit point for
// "no longer installed", so a removal interrupted partway is safe to retry.
func (e *Engine) Remove(name string) (*RemoveResult, error) {
	m, err := e.manifests.Read(name)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotInstalled, name)
	}

	if e.settings.DryRun {
		e.infof("dry-run: would remove %d link(s), %s and the manifest for %s",
			len(m.BinLinks), m.InstallDir, name)
		return &RemoveResult{Name: m.Name, Version: m.Version, LinksRemoved: len(m.BinLinks)}, nil
	}

	removed := 0
	for _, link := range m.BinLinks {
		// Lstat, not Stat: a link whose target is already gone still needs
		// removing.
		if _, err := os.Lstat(link); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.Remove(link); err != nil {
			return nil, fmt.Errorf("failed to remove link %s: %w", link, err)
		}
		e.debugf("removed link %s", link)
		removed++
	}

	if dirExists(m.InstallDir) {
		if err := os.RemoveAll(m.InstallDir); err != nil {
			return nil, fmt.Errorf("failed to remove install dir %s: %w", m.InstallDir, err)
		}
	}

	if err := e.manifests.Delete(name); err != nil {
		return nil, err
	}

	e.infof("Removed %s %s (%d link(s) cleaned up)", m.Name, m.Version, removed)
	return &RemoveResult{Name: m.Name, Version: m.Version, LinksRemoved: removed}, nil
}
