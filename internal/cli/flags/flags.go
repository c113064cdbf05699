// Package flags defines the global CLI flags and turns them into Settings.
package flags

import (
	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/core/config"
)

// Global returns the flags accepted by every vmpkg command.
func Global() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "root",
			Usage: "State root directory (registry, db, cache, pkgs)",
		},
		&cli.StringFlag{
			Name:  "bin-dir",
			Usage: "Directory that receives executable symlinks",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report intended actions without performing them",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Assume yes for confirmation prompts",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress progress output",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug output",
		},
	}
}

// Settings builds the effective configuration: defaults, then the optional
// config.toml under the root, then command-line flags on top.
func Settings(c *cli.Context) (config.Settings, error) {
	s, err := config.Load(c.String("root"))
	if err != nil {
		return s, err
	}
	if v := c.String("bin-dir"); v != "" {
		s.BinDir = v
	}
	if c.Bool("dry-run") {
		s.DryRun = true
	}
	if c.Bool("yes") {
		s.AssumeYes = true
	}
	if c.Bool("quiet") {
		s.Quiet = true
	}
	if c.Bool("debug") {
		s.Debug = true
	}
	return s, nil
}
