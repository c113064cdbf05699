// Package config holds the process-wide settings for vmpkg. Settings are an
// explicit value threaded into every component constructor rather than
// ambient globals, so tests can point each component at its own root.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the optional per-root settings file, read from
// <root>/config.toml when present.
const ConfigFileName = "config.toml"

// Settings is the full configuration for one vmpkg invocation.
type Settings struct {
	// RootDir is the state root: registry, db/, cache/ and pkgs/ live here.
	RootDir string `toml:"root_dir"`
	// BinDir is the shared directory that receives executable symlinks.
	BinDir string `toml:"bin_dir"`

	DryRun    bool `toml:"dry_run"`
	AssumeYes bool `toml:"assume_yes"`
	Quiet     bool `toml:"quiet"`
	Debug     bool `toml:"debug"`
}

// Default returns settings rooted under the user's home directory
// (~/.vmpkg with links in ~/.vmpkg/bin).
func Default() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, ".vmpkg")
	return Settings{
		RootDir: root,
		BinDir:  filepath.Join(root, "bin"),
	}
}

// Load returns Default overlaid with <rootDir>/config.toml if the file
// exists. A missing file is not an error; a malformed one is.
func Load(rootDir string) (Settings, error) {
	s := Default()
	if rootDir != "" {
		s.RootDir = rootDir
		s.BinDir = filepath.Join(rootDir, "bin")
	}

	path := filepath.Join(s.RootDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return s, err
	}
	// The command line outranks the file: a root_dir key in config.toml
	// cannot redirect state away from the root the flags named.
	if rootDir != "" {
		s.RootDir = rootDir
	}
	if !md.IsDefined("bin_dir") {
		s.BinDir = filepath.Join(s.RootDir, "bin")
	}
	return s, nil
}

// RegistryPath is the flat-file package catalog.
func (s Settings) RegistryPath() string {
	return filepath.Join(s.RootDir, "registry")
}

// ManifestDir holds one .manifest file per installed package.
func (s Settings) ManifestDir() string {
	return filepath.Join(s.RootDir, "db")
}

// CacheDir holds downloaded archives.
func (s Settings) CacheDir() string {
	return filepath.Join(s.RootDir, "cache")
}

// PkgsDir holds the extracted install directories.
func (s Settings) PkgsDir() string {
	return filepath.Join(s.RootDir, "pkgs")
}

// InstallDir is the deterministic extraction target for a package version.
func (s Settings) InstallDir(name, version string) string {
	return filepath.Join(s.PkgsDir(), name+"-"+version)
}
