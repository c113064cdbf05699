package sysinfo

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	coresysinfo "github.com/omar9devx/vmpkg/internal/core/sysinfo"
)

// NewSysinfoCommand creates the cli.Command for "sysinfo".
func NewSysinfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "sysinfo",
		Usage: "Displays a summary of the host system",
		Action: func(c *cli.Context) error {
			report, err := coresysinfo.Collect(c.Context)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error collecting system information: %v", err), 1)
			}

			label := color.New(color.FgCyan, color.Bold).SprintFunc()
			fmt.Printf("%s %s (%s/%s)\n", label("host:"), report.Hostname, report.OS, report.Arch)
			if report.Platform != "" {
				fmt.Printf("%s %s\n", label("platform:"), report.Platform)
			}
			if report.KernelVersion != "" {
				fmt.Printf("%s %s\n", label("kernel:"), report.KernelVersion)
			}
			if report.MemoryTotal > 0 {
				fmt.Printf("%s %s / %s\n", label("memory:"),
					humanBytes(report.MemoryUsed), humanBytes(report.MemoryTotal))
			}
			for _, d := range report.Disks {
				fmt.Printf("%s %s %s / %s\n", label("disk:"),
					d.Mountpoint, humanBytes(d.Used), humanBytes(d.Total))
			}
			for _, iface := range report.Interfaces {
				if len(iface.Addrs) == 0 {
					continue
				}
				fmt.Printf("%s %s %s\n", label("net:"),
					iface.Name, strings.Join(iface.Addrs, ", "))
			}
			return nil
		},
	}
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
