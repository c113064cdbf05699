package engine

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/omar9devx/vmpkg/internal/core/downloader"
	"github.com/omar9devx/vmpkg/internal/core/extractor"
	"github.com/omar9devx/vmpkg/internal/core/hasher"
	"github.com/omar9devx/vmpkg/internal/core/manifest"
)

// InstallResult reports what an install did (or, under dry-run, would do).
type InstallResult struct {
	Name       string
	Version    string
	InstallDir string
	BinLinks   []string
	// Skipped is true when the package was already installed and reinstall
	// was not requested; nothing was touched.
	Skipped bool
}

// Install fetches, unpacks and links the named package. The package must be
// registered first. With reinstall, any existing install is torn down and
// rebuilt; without it, an already-installed package is a no-op success.
//
// The manifest is the authority for the skip decision. An install directory
// left behind without a manifest by an interrupted run is stale state and is
// cleaned up and reinstalled by a plain install.
func (e *Engine) Install(name string, reinstall bool) (*InstallResult, error) {
	entry, err := e.registry.Find(name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %q (register it first)", ErrPackageNotFound, name)
	}

	installDir := e.settings.InstallDir(name, entry.Version)
	cachePath := e.cachePath(name, entry.Version, entry.URL)
	e.debugf("resolved %s@%s url=%s install_dir=%s", name, entry.Version, entry.URL, installDir)

	m, err := e.manifests.Read(name)
	if err != nil {
		return nil, err
	}
	if m != nil && !reinstall {
		e.warnf("%s %s is already installed; use reinstall to force", name, m.Version)
		return &InstallResult{
			Name:       m.Name,
			Version:    m.Version,
			InstallDir: m.InstallDir,
			BinLinks:   m.BinLinks,
			Skipped:    true,
		}, nil
	}
	if m == nil && dirExists(installDir) && !reinstall {
		// A tree without a manifest means a prior run was interrupted
		// between extraction and the manifest write.
		e.warnf("found stale install directory %s without a manifest; rebuilding", installDir)
		reinstall = true
	}

	if e.settings.DryRun {
		return e.dryRunInstall(entry.Name, entry.Version, entry.URL, installDir)
	}

	e.infof("Downloading %s from %s", name, entry.URL)
	if err := downloader.DownloadToFile(entry.URL, cachePath); err != nil {
		return nil, err
	}

	if reinstall && dirExists(installDir) {
		e.debugf("removing existing install directory %s", installDir)
		if err := os.RemoveAll(installDir); err != nil {
			return nil, fmt.Errorf("failed to remove existing install dir %s: %w", installDir, err)
		}
	}

	e.infof("Extracting %s", path.Base(cachePath))
	if err := extractor.Extract(cachePath, installDir); err != nil {
		return nil, err
	}

	archiveHash, err := hasher.FileSHA256(cachePath)
	if err != nil {
		e.warnf("could not hash archive for %s: %v", name, err)
		archiveHash = ""
	}

	links, binFound, err := e.linker.Link(installDir)
	if err != nil {
		return nil, err
	}
	if !binFound {
		e.warnf("%s has no bin directory; no executables were linked", name)
	}

	// Commit point: the package counts as installed once this write lands.
	if err := e.manifests.Write(manifest.Manifest{
		Name:          name,
		Version:       entry.Version,
		InstallDir:    installDir,
		BinLinks:      links,
		ArchiveSHA256: archiveHash,
	}); err != nil {
		return nil, err
	}

	e.infof("Installed %s %s (%d executable(s) linked)", name, entry.Version, len(links))
	return &InstallResult{
		Name:       name,
		Version:    entry.Version,
		InstallDir: installDir,
		BinLinks:   links,
	}, nil
}

// dryRunInstall reports the actions a real install would take. Steps that
// need the archive on disk are skipped; if an extracted tree already exists
// the linker still computes the would-be link paths.
func (e *Engine) dryRunInstall(name, version, url, installDir string) (*InstallResult, error) {
	e.infof("dry-run: would download %s to %s", url, e.cachePath(name, version, url))
	e.infof("dry-run: would extract into %s", installDir)

	var links []string
	if dirExists(installDir) {
		var err error
		links, _, err = e.linker.Link(installDir)
		if err != nil {
			return nil, err
		}
	}
	e.infof("dry-run: would link %d executable(s) and write manifest for %s", len(links), name)
	return &InstallResult{
		Name:       name,
		Version:    version,
		InstallDir: installDir,
		BinLinks:   links,
	}, nil
}

// cachePath derives the archive cache location. The suffix comes from the
// recognized archive extension of the URL path (query strings ignored); an
// unrecognized URL keeps its raw extension and fails later, at extraction.
func (e *Engine) cachePath(name, version, rawURL string) string {
	urlPath := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		urlPath = u.Path
	}
	suffix, ok := extractor.ArchiveSuffix(urlPath)
	if !ok {
		suffix = path.Ext(urlPath)
	}
	return filepath.Join(e.settings.CacheDir(), name+"-"+version+suffix)
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
