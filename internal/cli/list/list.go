package list

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// NewListCommand creates the cli.Command for "list".
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Displays installed packages",
		Action: func(c *cli.Context) error {
			settings, err := flags.Settings(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			eng := engine.New(settings)

			entries, err := eng.Manifests().List()
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error listing installed packages: %v", err), 1)
			}
			if len(entries) == 0 {
				fmt.Println("No packages installed.")
				return nil
			}

			nameColor := color.New(color.FgWhite, color.Bold).SprintFunc()
			versionColor := color.New(color.FgYellow).SprintFunc()
			for _, entry := range entries {
				fmt.Printf("%s %s\n", nameColor(entry.Name), versionColor(entry.Version))
			}
			return nil
		},
	}
}
