// Package registry implements the flat-file package catalog. Each record is
// one pipe-separated line (name|version|url|description); lines starting
// with '#' and blank lines are preserved across rewrites but never matched.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FieldSeparator splits the four record fields. It may not appear in a
// package name.
const FieldSeparator = "|"

// DefaultDescription is stored when a registration omits the description.
const DefaultDescription = "no description"

// ErrInvalidName reports a package name that cannot serve as a record key:
// empty, dot-only, or containing the field separator, path characters or
// newlines.
var ErrInvalidName = errors.New("invalid package name")

const initialContent = `# vmpkg registry: name|version|url|description
# example|1.0.0|https://example.com/example-1.0.0.tar.gz|example package
`

// Entry is one registry record.
type Entry struct {
	Name        string
	Version     string
	URL         string
	Description string
}

// Store reads and rewrites the registry file at Path. The zero value is not
// usable; construct with New.
type Store struct {
	Path string
}

// New returns a store backed by the given file path. The file itself is
// created lazily on first use.
func New(path string) *Store {
	return &Store{Path: path}
}

// Find returns the first record whose name equals name, or nil when the
// registry has no such record. A missing registry file is initialized, not
// an error.
func (s *Store) Find(name string) (*Entry, error) {
	lines, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		e, ok := parseLine(line)
		if ok && e.Name == name {
			return &e, nil
		}
	}
	return nil, nil
}

// Search returns every record whose name or description contains pattern,
// case-insensitively, in file order.
func (s *Store) Search(pattern string) ([]Entry, error) {
	lines, err := s.load()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(pattern)
	var matches []Entry
	for _, line := range lines {
		e, ok := parseLine(line)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// Upsert replaces any existing record for name and appends the new one at
// the end. Comments, blank lines and other records are copied through
// unchanged. The rewrite goes through a temp file and rename so a crash
// mid-write never truncates the registry.
func (s *Store) Upsert(name, version, url, description string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q must not be empty or contain separators, path characters or newlines", ErrInvalidName, name)
	}
	if description == "" {
		description = DefaultDescription
	}

	lines, err := s.load()
	if err != nil {
		return err
	}

	var out []string
	for _, line := range lines {
		if e, ok := parseLine(line); ok && e.Name == name {
			continue
		}
		out = append(out, line)
	}
	out = append(out, strings.Join([]string{name, version, url, description}, FieldSeparator))

	return s.flush(out)
}

// load returns the registry's lines, creating the file with its header when
// it does not exist yet.
func (s *Store) load() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.initialize(); err != nil {
			return nil, err
		}
		data = []byte(initialContent)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", s.Path, err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

func (s *Store) initialize() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create registry dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(initialContent), 0o644); err != nil {
		return fmt.Errorf("failed to initialize registry %s: %w", s.Path, err)
	}
	return nil
}

func (s *Store) flush(lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".registry-*")
	if err != nil {
		return fmt.Errorf("failed to create registry temp file: %w", err)
	}
	tmpName := tmp.Name()

	content := strings.Join(lines, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write registry temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close registry temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry %s: %w", s.Path, err)
	}
	return nil
}

// validName reports whether name can serve both as a record key and as a
// file name component. Registered names later become manifest file names and
// install directory segments, so path separators are as unacceptable as the
// field separator or line breaks.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, FieldSeparator+"/\\\n\r")
}

// parseLine splits one registry line into an Entry. Comments, blank lines
// and lines with fewer than four fields report ok=false.
func parseLine(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false
	}
	fields := strings.SplitN(trimmed, FieldSeparator, 4)
	if len(fields) < 4 {
		return Entry{}, false
	}
	return Entry{
		Name:        fields[0],
		Version:     fields[1],
		URL:         fields[2],
		Description: fields[3],
	}, true
}
