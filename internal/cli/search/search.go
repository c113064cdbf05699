package search

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// NewSearchCommand creates the cli.Command for "search".
func NewSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Finds registry entries matching a pattern",
		ArgsUsage: "<pattern>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing search pattern argument.", 1)
			}
			pattern := c.Args().First()

			settings, err := flags.Settings(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			eng := engine.New(settings)

			matches, err := eng.Registry().Search(pattern)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error searching registry: %v", err), 1)
			}
			if len(matches) == 0 {
				fmt.Printf("No registry entries match %q.\n", pattern)
				return nil
			}

			nameColor := color.New(color.FgWhite, color.Bold).SprintFunc()
			versionColor := color.New(color.FgYellow).SprintFunc()
			descColor := color.New(color.FgHiBlack).SprintFunc()
			for _, m := range matches {
				fmt.Printf("%s %s  %s\n", nameColor(m.Name), versionColor(m.Version), descColor(m.Description))
			}
			return nil
		},
	}
}
