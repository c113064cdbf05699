package register

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
	"github.com/omar9devx/vmpkg/internal/core/registry"
)

// NewRegisterCommand creates the cli.Command for "register".
func NewRegisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Adds or updates a package in the registry",
		ArgsUsage: "<name> <version> <url> [description]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return cli.Exit("Error: register requires <name> <version> <url>.", 1)
			}
			name := c.Args().Get(0)
			version := c.Args().Get(1)
			url := c.Args().Get(2)
			description := c.Args().Get(3)

			settings, err := flags.Settings(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			eng := engine.New(settings)

			if settings.DryRun {
				fmt.Printf("dry-run: would register %s %s from %s\n", name, version, url)
				return nil
			}

			if err := eng.Registry().Upsert(name, version, url, description); err != nil {
				if errors.Is(err, registry.ErrInvalidName) {
					return cli.Exit(fmt.Sprintf("Error: invalid package name %q: names must not contain %q, path characters or newlines.", name, registry.FieldSeparator), 1)
				}
				return cli.Exit(fmt.Sprintf("Error registering %s: %v", name, err), 1)
			}
			if !settings.Quiet {
				fmt.Printf("Registered %s %s\n", name, version)
			}
			return nil
		},
	}
}
