package install

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/core/engine"
)

// NewInstallCommand creates the cli.Command for "install".
func NewInstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Downloads, unpacks and links a registered package",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reinstall",
				Usage: "Tear down any existing install first",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, c.Bool("reinstall"))
		},
	}
}

// NewReinstallCommand creates the cli.Command for "reinstall", a shorthand
// for install --reinstall.
func NewReinstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "reinstall",
		Usage:     "Reinstalls a package, replacing its current tree",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			return run(c, true)
		},
	}
}

func run(c *cli.Context, reinstall bool) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: Missing package name argument.", 1)
	}
	name := c.Args().First()

	settings, err := flags.Settings(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
	}
	eng := engine.New(settings)

	res, err := eng.Install(name, reinstall)
	if err != nil {
		if errors.Is(err, engine.ErrPackageNotFound) {
			return cli.Exit(fmt.Sprintf("Error: package %q is not registered. Run 'vmpkg register' first.", name), 1)
		}
		return cli.Exit(fmt.Sprintf("Error installing %s: %v", name, err), 1)
	}

	if !settings.Quiet && !res.Skipped && len(res.BinLinks) > 0 {
		fmt.Println("Linked executables:")
		for _, link := range res.BinLinks {
			fmt.Printf("  %s\n", link)
		}
	}
	return nil
}
