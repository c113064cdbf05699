// Package engine sequences the package lifecycle: registry lookup, download,
// extraction, bin linking and manifest bookkeeping. It is the only component
// that calls the others; the CLI layer above it deals purely in the result
// and error values returned here.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/omar9devx/vmpkg/internal/core/config"
	"github.com/omar9devx/vmpkg/internal/core/linker"
	"github.com/omar9devx/vmpkg/internal/core/manifest"
	"github.com/omar9devx/vmpkg/internal/core/registry"
)

var (
	// ErrPackageNotFound reports an install of a name the registry does not
	// know.
	ErrPackageNotFound = errors.New("package not found in registry")
	// ErrNotInstalled reports a remove of a package with no manifest.
	ErrNotInstalled = errors.New("package is not installed")
)

// Engine drives installs and removals against one configured root.
type Engine struct {
	settings  config.Settings
	registry  *registry.Store
	manifests *manifest.Store
	linker    *linker.Linker

	// Stdout and Stderr receive progress and warning output. They default
	// to the process streams; tests swap in buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// New wires an engine for the given settings.
func New(s config.Settings) *Engine {
	return &Engine{
		settings:  s,
		registry:  registry.New(s.RegistryPath()),
		manifests: manifest.New(s.ManifestDir()),
		linker:    linker.New(s.BinDir, s.DryRun),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Registry exposes the catalog for register/search/info operations.
func (e *Engine) Registry() *registry.Store { return e.registry }

// Manifests exposes the installed-package store for list/info operations.
func (e *Engine) Manifests() *manifest.Store { return e.manifests }

func (e *Engine) infof(format string, args ...any) {
	if e.settings.Quiet {
		return
	}
	_, _ = fmt.Fprintf(e.Stdout, format+"\n", args...)
}

func (e *Engine) warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.Stderr, "Warning: "+format+"\n", args...)
}

func (e *Engine) debugf(format string, args ...any) {
	if !e.settings.Debug {
		return
	}
	_, _ = fmt.Fprintf(e.Stderr, "debug: "+format+"\n", args...)
}
