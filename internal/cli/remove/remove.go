package remove

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// NewRemoveCommand creates the cli.Command for "remove".
func NewRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Removes an installed package, its tree and its links",
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

			if !settings.AssumeYes && !settings.DryRun {
				if !confirm(fmt.Sprintf("Remove %s and its linked executables?", name)) {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if _, err := eng.Remove(name); err != nil {
				if errors.Is(err, engine.ErrNotInstalled) {
					return cli.Exit(fmt.Sprintf("Error: package %q is not installed.", name), 1)
				}
				return cli.Exit(fmt.Sprintf("Error removing %s: %v", name, err), 1)
			}
			return nil
		},
	}
}

// confirm asks a y/N question on stdin. Anything but an explicit yes is no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
