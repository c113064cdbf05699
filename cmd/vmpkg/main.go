package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/omar9devx/vmpkg/internal/cli/flags"
	"github.com/omar9devx/vmpkg/internal/cli/info"
	"github.com/omar9devx/vmpkg/internal/cli/install"
	"github.com/omar9devx/vmpkg/internal/cli/list"
	"github.com/omar9devx/vmpkg/internal/cli/register"
	"github.com/omar9devx/vmpkg/internal/cli/remove"
	"github.com/omar9devx/vmpkg/internal/cli/search"
	"github.com/omar9devx/vmpkg/internal/cli/self"
	"github.com/omar9devx/vmpkg/internal/cli/sysinfo"
)

// version is overridden at build time via -ldflags.
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "vmpkg",
		Usage:   "A user-space package manager for prebuilt tool archives",
		Version: version,
		Flags:   flags.Global(),
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			register.NewRegisterCommand(),
			install.NewInstallCommand(),
			install.NewReinstallCommand(),
			remove.NewRemoveCommand(),
			list.NewListCommand(),
			search.NewSearchCommand(),
			info.NewInfoCommand(),
			sysinfo.NewSysinfoCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
