// Package manifest persists the record of what is installed. One small
// key=value file per package under the db directory is the source of truth
// for "installed": no manifest, not installed, whatever is on disk.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Suffix is the manifest file extension.
const Suffix = ".manifest"

// UnknownField is rendered by List for entries it cannot parse.
const UnknownField = "unknown"

// ErrCorrupt reports a manifest file that exists but is missing a required
// field.
var ErrCorrupt = errors.New("corrupt manifest")

// Manifest records one installed package and the side effects installing it
// had on the filesystem.
type Manifest struct {
	Name       string
	Version    string
	InstallDir string
	// BinLinks are the absolute symlink paths created for this package, in
	// the order they were created. May be empty.
	BinLinks []string
	// ArchiveSHA256 is the integrity hash of the downloaded archive,
	// "sha256:<hex>". Optional: manifests written by older versions lack it.
	ArchiveSHA256 string
}

// ListEntry is one row of List output.
type ListEntry struct {
	Name    string
	Version string
}

// Store keeps one manifest file per package under Dir.
type Store struct {
	Dir string
}

// New returns a store rooted at dir. The directory is created on first
// write.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+Suffix)
}

// Write serializes m and replaces any existing manifest for m.Name
// wholesale, via temp file and rename.
func (s *Store) Write(m Manifest) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create manifest dir %s: %w", s.Dir, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "name=%s\n", m.Name)
	fmt.Fprintf(&b, "version=%s\n", m.Version)
	fmt.Fprintf(&b, "install_dir=%s\n", m.InstallDir)
	fmt.Fprintf(&b, "bin_links=%s\n", strings.Join(m.BinLinks, ";"))
	if m.ArchiveSHA256 != "" {
		fmt.Fprintf(&b, "archive_sha256=%s\n", m.ArchiveSHA256)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+m.Name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create manifest temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest for %s: %w", m.Name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close manifest temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(m.Name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace manifest for %s: %w", m.Name, err)
	}
	return nil
}

// Read returns the manifest for name, or nil when no manifest file exists
// (the package is not installed). A file that exists but is missing one of
// name, version or install_dir fails with ErrCorrupt; a missing bin_links
// key alone is tolerated and read as an empty link list.
func (s *Store) Read(name string) (*Manifest, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest for %s: %w", name, err)
	}

	fields := parseFields(data)
	m := &Manifest{}
	var ok bool
	if m.Name, ok = fields["name"]; !ok {
		return nil, fmt.Errorf("%w: %s missing field %q", ErrCorrupt, name, "name")
	}
	if m.Version, ok = fields["version"]; !ok {
		return nil, fmt.Errorf("%w: %s missing field %q", ErrCorrupt, name, "version")
	}
	if m.InstallDir, ok = fields["install_dir"]; !ok {
		return nil, fmt.Errorf("%w: %s missing field %q", ErrCorrupt, name, "install_dir")
	}
	if links, ok := fields["bin_links"]; ok && links != "" {
		m.BinLinks = strings.Split(links, ";")
	}
	m.ArchiveSHA256 = fields["archive_sha256"]
	return m, nil
}

// Delete removes the manifest for name. Deleting a manifest that does not
// exist is not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete manifest for %s: %w", name, err)
	}
	return nil
}

// List returns (name, version) for every manifest in the store, sorted by
// name. A manifest that cannot be parsed is reported with UnknownField
// values rather than hiding the rest of the listing.
func (s *Store) List() ([]ListEntry, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest dir %s: %w", s.Dir, err)
	}

	var out []ListEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Suffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Suffix)
		le := ListEntry{Name: name, Version: UnknownField}
		if m, err := s.Read(name); err == nil && m != nil {
			le.Name = m.Name
			le.Version = m.Version
		}
		out = append(out, le)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func parseFields(data []byte) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields
}
