package info

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// NewInfoCommand creates the cli.Command for "info".
func NewInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Shows registry and install details for a package",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing package name argument.", 1)
			}
			name := c.Args().First()

			settings, err := flags.Settings(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			eng := engine.New(settings)

			entry, err := eng.Registry().Find(name)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error reading registry: %v", err), 1)
			}
			if entry == nil {
				return cli.Exit(fmt.Sprintf("Error: package %q is not registered.", name), 1)
			}

			nameColor := color.New(color.FgWhite, color.Bold).SprintFunc()
			labelColor := color.New(color.FgCyan).SprintFunc()
			fmt.Printf("%s %s\n", nameColor(entry.Name), entry.Version)
			fmt.Printf("%s %s\n", labelColor("url:"), entry.URL)
			fmt.Printf("%s %s\n", labelColor("description:"), entry.Description)

			m, err := eng.Manifests().Read(name)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error reading manifest for %s: %v", name, err), 1)
			}
			if m == nil {
				fmt.Printf("%s not installed\n", labelColor("status:"))
				return nil
			}
			fmt.Printf("%s installed (%s)\n", labelColor("status:"), m.Version)
			fmt.Printf("%s %s\n", labelColor("install dir:"), m.InstallDir)
			for _, link := range m.BinLinks {
				fmt.Printf("%s %s\n", labelColor("link:"), link)
			}
			return nil
		},
	}
}
