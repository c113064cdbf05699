// Package engine_test exercises the full install/remove lifecycle against a
// temporary root and a mock HTTP archive server.
package engine_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omar9devx/vmpkg/internal/core/config"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// buildTarGz returns a .tar.gz archive with the given name→content entries.
// Entries whose name is under a bin/ directory get the executable bit.
func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		mode := int64(0o644)
		if strings.Contains(name, "/bin/") {
			mode = 0o755
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     mode,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// newTestEngine wires an engine against a fresh root with captured output.
func newTestEngine(t *testing.T) (*engine.Engine, config.Settings, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	settings := config.Settings{
		RootDir: root,
		BinDir:  filepath.Join(root, "bin"),
	}
	eng := engine.New(settings)
	var stderr bytes.Buffer
	eng.Stdout = &bytes.Buffer{}
	eng.Stderr = &stderr
	return eng, settings, &stderr
}

// serveArchives starts a server mapping URL paths to archive bytes.
func serveArchives(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := archives[r.URL.Path]; ok {
			_, _ = w.Write(body)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestInstall_EndToEnd(t *testing.T) {
	t.Parallel()
	eng, settings, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg":  "#!/bin/sh\necho rg\n",
			"rg-14.1.0/LICENSE": "MIT\n",
		}),
	})

	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", "search tool"))

	res, err := eng.Install("rg", false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "14.1.0", res.Version)
	assert.True(t, strings.HasSuffix(res.InstallDir, "rg-14.1.0"), "install dir must end in name-version")
	require.Len(t, res.BinLinks, 1)
	assert.Equal(t, filepath.Join(settings.BinDir, "rg"), res.BinLinks[0])

	target, err := os.Readlink(res.BinLinks[0])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(res.InstallDir, "rg-14.1.0", "bin", "rg"), target)

	m, err := eng.Manifests().Read("rg")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "14.1.0", m.Version)
	assert.Equal(t, res.InstallDir, m.InstallDir)
	assert.Equal(t, res.BinLinks, m.BinLinks)
	assert.True(t, strings.HasPrefix(m.ArchiveSHA256, "sha256:"))

	_, err = os.Stat(filepath.Join(settings.CacheDir(), "rg-14.1.0.tar.gz"))
	assert.NoError(t, err, "the downloaded archive stays in the cache")
}

func TestInstall_URLWithQueryString(t *testing.T) {
	t.Parallel()
	eng, settings, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz?token=abc123", ""))

	res, err := eng.Install("rg", false)
	require.NoError(t, err, "a query string must not defeat archive format detection")
	require.Len(t, res.BinLinks, 1)

	_, err = os.Stat(filepath.Join(settings.CacheDir(), "rg-14.1.0.tar.gz"))
	assert.NoError(t, err, "the cache filename must not carry the query string")
}

func TestInstall_SecondCallIsNoOp(t *testing.T) {
	t.Parallel()
	eng, settings, stderr := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	_, err := eng.Install("rg", false)
	require.NoError(t, err)

	manifestPath := filepath.Join(settings.ManifestDir(), "rg.manifest")
	before, err := os.ReadFile(manifestPath)
	require.NoError(t, err)

	res, err := eng.Install("rg", false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Contains(t, stderr.String(), "already installed")

	after, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a skipped install must not rewrite the manifest")
}

func TestInstall_UnregisteredPackage(t *testing.T) {
	t.Parallel()
	eng, settings, _ := newTestEngine(t)

	_, err := eng.Install("doesnotexist", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPackageNotFound)

	m, readErr := eng.Manifests().Read("doesnotexist")
	require.NoError(t, readErr)
	assert.Nil(t, m)
	_, statErr := os.Stat(settings.CacheDir())
	assert.True(t, os.IsNotExist(statErr), "a failed resolve must not create the cache dir")
	_, statErr = os.Stat(settings.PkgsDir())
	assert.True(t, os.IsNotExist(statErr), "a failed resolve must not create the pkgs dir")
}

func TestInstall_DownloadFailureLeavesNoManifest(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)
	server := serveArchives(t, nil) // every path 404s
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	_, err := eng.Install("rg", false)
	require.Error(t, err)

	m, readErr := eng.Manifests().Read("rg")
	require.NoError(t, readErr)
	assert.Nil(t, m)
}

func TestInstall_NoBinDirectory(t *testing.T) {
	t.Parallel()
	eng, _, stderr := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/headerlib.tar.gz": buildTarGz(t, map[string]string{
			"headerlib-1.0/include/header.h": "#pragma once\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("headerlib", "1.0", server.URL+"/headerlib.tar.gz", ""))

	res, err := eng.Install("headerlib", false)
	require.NoError(t, err, "a package without executables installs fine")
	assert.Empty(t, res.BinLinks)
	assert.Contains(t, stderr.String(), "no bin directory")

	m, err := eng.Manifests().Read("headerlib")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Empty(t, m.BinLinks)
}

func TestInstall_UnsupportedArchiveExtension(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.rar": []byte("whatever"),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.rar", ""))

	_, err := eng.Install("rg", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestInstall_StaleDirectoryWithoutManifestIsRebuilt(t *testing.T) {
	t.Parallel()
	eng, settings, stderr := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	// Simulate an interrupted earlier run: tree present, no manifest.
	staleDir := settings.InstallDir("rg", "14.1.0")
	require.NoError(t, os.MkdirAll(staleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staleDir, "leftover"), []byte("junk"), 0o644))

	res, err := eng.Install("rg", false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Contains(t, stderr.String(), "stale install directory")

	_, statErr := os.Stat(filepath.Join(staleDir, "leftover"))
	assert.True(t, os.IsNotExist(statErr), "the stale tree must be replaced, not merged into")
	m, err := eng.Manifests().Read("rg")
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestReinstall_ReplacesExistingTree(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	first, err := eng.Install("rg", false)
	require.NoError(t, err)

	stray := filepath.Join(first.InstallDir, "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("tampered"), 0o644))

	res, err := eng.Install("rg", true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	_, statErr := os.Stat(stray)
	assert.True(t, os.IsNotExist(statErr), "reinstall must rebuild the tree from scratch")
}

func TestRemove_AfterInstall(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	installed, err := eng.Install("rg", false)
	require.NoError(t, err)

	res, err := eng.Remove("rg")
	require.NoError(t, err)
	assert.Equal(t, 1, res.LinksRemoved)

	m, err := eng.Manifests().Read("rg")
	require.NoError(t, err)
	assert.Nil(t, m, "no manifest may remain after removal")
	_, statErr := os.Stat(installed.InstallDir)
	assert.True(t, os.IsNotExist(statErr), "no install dir may remain after removal")
	for _, link := range installed.BinLinks {
		_, statErr := os.Lstat(link)
		assert.True(t, os.IsNotExist(statErr), "no bin link may remain after removal")
	}
}

func TestRemove_NotInstalled(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)

	_, err := eng.Remove("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNotInstalled)
}

func TestRemove_ToleratesManuallyDeletedLinks(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t)
	server := serveArchives(t, map[string][]byte{
		"/rg.tar.gz": buildTarGz(t, map[string]string{
			"rg-14.1.0/bin/rg": "#!/bin/sh\n",
		}),
	})
	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", server.URL+"/rg.tar.gz", ""))

	installed, err := eng.Install("rg", false)
	require.NoError(t, err)
	require.Len(t, installed.BinLinks, 1)
	require.NoError(t, os.Remove(installed.BinLinks[0]))

	res, err := eng.Remove("rg")
	require.NoError(t, err, "a link deleted behind our back is skipped silently")
	assert.Equal(t, 0, res.LinksRemoved)
}

func TestInstall_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	settings := config.Settings{
		RootDir: root,
		BinDir:  filepath.Join(root, "bin"),
		DryRun:  true,
	}
	eng := engine.New(settings)
	eng.Stdout = &bytes.Buffer{}
	eng.Stderr = &bytes.Buffer{}

	require.NoError(t, eng.Registry().Upsert("rg", "14.1.0", "https://x/rg.tar.gz", ""))

	res, err := eng.Install("rg", false)
	require.NoError(t, err)
	assert.Empty(t, res.BinLinks)

	m, err := eng.Manifests().Read("rg")
	require.NoError(t, err)
	assert.Nil(t, m, "dry-run must not write a manifest")
	_, statErr := os.Stat(settings.CacheDir())
	assert.True(t, os.IsNotExist(statErr), "dry-run must not download")
	_, statErr = os.Stat(settings.PkgsDir())
	assert.True(t, os.IsNotExist(statErr), "dry-run must not extract")
}

func TestInstall_DryRunReportsLinksForExtractedTree(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	settings := config.Settings{
		RootDir: root,
		BinDir:  filepath.Join(root, "bin"),
		DryRun:  true,
	}
	eng := engine.New(settings)
	eng.Stdout = &bytes.Buffer{}
	eng.Stderr = &bytes.Buffer{}

	require.NoError(t, eng.Registry().Upsert("toolx", "1.0", "https://x/toolx.tar.gz", ""))

	// A tree already extracted by an earlier run: the dry run must report
	// the links it would create over it.
	exe := filepath.Join(settings.InstallDir("toolx", "1.0"), "bin", "toolx")
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	res, err := eng.Install("toolx", false)
	require.NoError(t, err)
	require.Len(t, res.BinLinks, 1)
	assert.Equal(t, filepath.Join(settings.BinDir, "toolx"), res.BinLinks[0])

	_, statErr := os.Lstat(res.BinLinks[0])
	assert.True(t, os.IsNotExist(statErr), "dry-run must not create links")
	m, err := eng.Manifests().Read("toolx")
	require.NoError(t, err)
	assert.Nil(t, m, "dry-run must not write a manifest")
}
